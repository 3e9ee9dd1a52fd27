package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Composite/internal/adapters/livekit"
	"github.com/dkeye/Composite/internal/adapters/signal"
	"github.com/dkeye/Composite/internal/app"
	"github.com/dkeye/Composite/internal/app/orch"
	"github.com/dkeye/Composite/internal/app/viewmodel"
	"github.com/dkeye/Composite/internal/domain"
)

const (
	maxActionBody = 16 << 10
	tokenTTL      = 6 * time.Hour
)

type api struct {
	orch    *orch.Orchestrator
	limiter *signal.IntentRateLimiter
	livekit *livekit.Hub
}

type participantsResponse struct {
	Grid   []viewmodel.CellView                      `json:"grid"`
	Local  viewmodel.ParticipantsListCellViewModel   `json:"local"`
	Remote []viewmodel.ParticipantsListCellViewModel `json:"remote"`
	Lobby  []viewmodel.ParticipantsListCellViewModel `json:"lobby"`
}

func sessionID(c *gin.Context) app.SessionID {
	return app.SessionID(c.GetString(clientTokenKey))
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (a *api) composite(c *gin.Context) *orch.Composite {
	return a.orch.Acquire(sessionID(c))
}

func (a *api) state(c *gin.Context) {
	c.JSON(http.StatusOK, signal.NewSnapshotFrame(a.composite(c).Store().Snapshot()))
}

// events streams snapshots as server-sent events until the client leaves.
func (a *api) events(c *gin.Context) {
	frames := a.composite(c).Store().Stream(c.Request.Context())
	c.Stream(func(w io.Writer) bool {
		snap, ok := <-frames
		if !ok {
			return false
		}
		c.SSEvent("snapshot", signal.NewSnapshotFrame(snap))
		return true
	})
}

func (a *api) action(c *gin.Context) {
	sid := sessionID(c)
	if a.limiter != nil && !a.limiter.Allow(sid) {
		abort(c, http.StatusTooManyRequests, "rate_limited")
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxActionBody))
	if err != nil {
		abort(c, http.StatusBadRequest, "bad_payload")
		return
	}
	action, err := signal.DecodeIntent(body)
	if err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Str("sid", string(sid)).Msg("bad intent")
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	a.composite(c).Store().Dispatch(action)
	c.Status(http.StatusAccepted)
}

func (a *api) participants(c *gin.Context) {
	vm, ok := a.composite(c).Router().Calling()
	if !ok {
		abort(c, http.StatusConflict, "not_in_call")
		return
	}
	list := vm.List()
	c.JSON(http.StatusOK, participantsResponse{
		Grid:   vm.Grid().Views(),
		Local:  list.LocalParticipant(),
		Remote: list.SortedRemote(),
		Lobby:  list.LobbyParticipants(),
	})
}

func (a *api) viewData(c *gin.Context) {
	var vd domain.ParticipantViewData
	if err := c.ShouldBindJSON(&vd); err != nil {
		abort(c, http.StatusBadRequest, "bad_payload")
		return
	}
	if err := a.composite(c).ViewData().Set(c.Param("id"), vd); err != nil {
		abort(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *api) release(c *gin.Context) {
	sid := sessionID(c)
	released := a.orch.Release(sid)
	if a.limiter != nil {
		a.limiter.Forget(sid)
	}
	c.JSON(http.StatusOK, gin.H{"released": released})
}

func (a *api) livekitHook(c *gin.Context) {
	ev, err := a.livekit.Receive(c.Request)
	if err != nil {
		log.Warn().Err(err).Str("module", "adapters.http").Msg("livekit webhook rejected")
		abort(c, http.StatusUnauthorized, "invalid_webhook")
		return
	}
	a.livekit.HandleEvent(ev)
	c.Status(http.StatusOK)
}

func (a *api) livekitToken(c *gin.Context) {
	comp := a.composite(c)
	name := comp.Store().State().LocalUserState.DisplayName
	token, err := a.livekit.Token(string(sessionID(c)), name, tokenTTL)
	if errors.Is(err, livekit.ErrMissingCredentials) {
		abort(c, http.StatusNotImplemented, err.Error())
		return
	}
	if err != nil {
		abort(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
