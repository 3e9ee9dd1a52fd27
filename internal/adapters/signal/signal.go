// Package signal is the websocket side of the host bridge: it streams
// composite snapshots and host events to the page and takes intents back.
package signal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Composite/internal/app"
	"github.com/dkeye/Composite/internal/app/orch"
	"github.com/dkeye/Composite/internal/core"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

const (
	DefaultSendBuffer = 32
	DefaultPingPeriod = 30 * time.Second
	DefaultReadLimit  = 64 << 10
)

// SnapshotFrame is what the page receives for every published state.
type SnapshotFrame struct {
	Type   string        `json:"type"`
	Seq    uint64        `json:"seq"`
	Action string        `json:"action,omitempty"`
	State  core.AppState `json:"state"`
}

func NewSnapshotFrame(s core.Snapshot) SnapshotFrame {
	f := SnapshotFrame{Type: "snapshot", Seq: s.Seq, State: s.State}
	if s.Action != nil {
		f.Action = core.Name(s.Action)
	}
	return f
}

type StateWSController struct {
	Orch       *orch.Orchestrator
	Limiter    *IntentRateLimiter
	SendBuffer int
	PingPeriod time.Duration
	ReadLimit  int64
}

func NewStateWSController(o *orch.Orchestrator, limiter *IntentRateLimiter) *StateWSController {
	return &StateWSController{
		Orch:       o,
		Limiter:    limiter,
		SendBuffer: DefaultSendBuffer,
		PingPeriod: DefaultPingPeriod,
		ReadLimit:  DefaultReadLimit,
	}
}

type WsStateConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *WsStateConn) TrySend(f []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsStateConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleState upgrades the request and serves the session's composite on
// it until either side goes away.
func (ctl *StateWSController) HandleState(ctx context.Context, c *gin.Context) {
	sid := app.SessionID(c.GetString("client_token"))
	logger := log.With().Str("module", "signal").Str("sid", string(sid)).Logger()
	logger.Info().Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error().Err(err).Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	buf := ctl.SendBuffer
	if buf <= 0 {
		buf = DefaultSendBuffer
	}
	conn := &WsStateConn{conn: ws, send: make(chan []byte, buf)}
	comp := ctl.Orch.Acquire(sid)

	ctx, cancel := context.WithCancel(ctx)
	if feed, ok := comp.Events().(*EventFeed); ok {
		for _, ev := range feed.Recent() {
			ctl.push(sid, conn, ev)
		}
		stop := feed.Subscribe(func(ev HostEvent) { ctl.push(sid, conn, ev) })
		go func() {
			<-ctx.Done()
			stop()
		}()
	}

	go ctl.writePump(ctx, conn)
	go ctl.streamState(ctx, sid, comp.Store(), conn)
	go ctl.readPump(ctx, cancel, sid, comp, conn)
}

func (ctl *StateWSController) streamState(ctx context.Context, sid app.SessionID, store *core.Store, conn *WsStateConn) {
	for snap := range store.Stream(ctx) {
		ctl.push(sid, conn, NewSnapshotFrame(snap))
	}
}

// push encodes v and queues it. A full buffer is settled by the policy:
// the frame is dropped or the connection closed.
func (ctl *StateWSController) push(sid app.SessionID, conn *WsStateConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("push marshal")
		return
	}
	err = conn.TrySend(b)
	if !errors.Is(err, ErrBackpressure) {
		return
	}
	if ctl.Orch.OnBackPressure(sid, "ws") {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("slow subscriber closed")
		conn.Close()
		return
	}
	log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("frame dropped")
}
