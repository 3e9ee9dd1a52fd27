package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Composite/internal/app"
	"github.com/dkeye/Composite/internal/app/orch"
)

func (ctl *StateWSController) writePump(ctx context.Context, c *WsStateConn) {
	period := ctl.PingPeriod
	if period <= 0 {
		period = DefaultPingPeriod
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *StateWSController) readPump(ctx context.Context, cancel context.CancelFunc, sid app.SessionID, comp *orch.Composite, c *WsStateConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		cancel()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				return
			}
			ctl.handleSignal(sid, comp, c, data)
		}
	}
}

func (ctl *StateWSController) handleSignal(sid app.SessionID, comp *orch.Composite, c *WsStateConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(c, "bad_payload")
		return
	}

	switch env.Type {
	case "ping":
		ctl.handlePing(c)
	case "whoami":
		ctl.handleWhoAmI(comp, c)
	default:
		ctl.handleIntent(sid, comp, c, data)
	}
}

func (ctl *StateWSController) handleIntent(sid app.SessionID, comp *orch.Composite, c *WsStateConn, data []byte) {
	if ctl.Limiter != nil && !ctl.Limiter.Allow(sid) {
		ctl.sendError(c, "rate_limited")
		return
	}
	action, err := DecodeIntent(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad intent")
		ctl.sendError(c, err.Error())
		return
	}
	comp.Store().Dispatch(action)
}

func (ctl *StateWSController) sendJSON(c *WsStateConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
