// Package calling turns user intents into calls on the calling engine and
// feeds the outcomes back to the store.
package calling

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/dkeye/Composite/internal/core"
	"github.com/dkeye/Composite/internal/domain"
)

// Service is the calling engine as seen from the composite.
type Service interface {
	StartCall(ctx context.Context) error
	EndCall(ctx context.Context) error
	Hold(ctx context.Context) error
	Resume(ctx context.Context) error

	// StartCamera returns the identifier of the local video stream.
	StartCamera(ctx context.Context) (string, error)
	StopCamera(ctx context.Context) error
	PauseCamera(ctx context.Context) error
	SwitchCamera(ctx context.Context) (domain.CameraDevice, error)

	MuteMicrophone(ctx context.Context) error
	UnmuteMicrophone(ctx context.Context) error
}

// Handler runs engine calls off the store goroutine. Each intent gets its
// own goroutine; results are dispatched through the middleware API.
type Handler struct {
	service Service
	log     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     conc.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewHandler(service Service) *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		service: service,
		log:     log.With().Str("module", "app.calling").Logger(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Close cancels in-flight engine calls and waits for them.
func (h *Handler) Close() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	h.cancel()
	h.wg.Wait()
}

func (h *Handler) Middleware() core.Middleware {
	return func(api core.MiddlewareAPI) func(next core.Dispatcher) core.Dispatcher {
		return func(next core.Dispatcher) core.Dispatcher {
			return func(action core.Action) {
				before := api.State()
				next(action)
				if job := h.intent(before, action); job != nil {
					h.run(api, core.Name(action), job)
				}
			}
		}
	}
}

// intent maps an action to the engine call it requests, if any. before is
// the state the action was applied to.
func (h *Handler) intent(before core.AppState, action core.Action) func(context.Context) core.Action {
	s := h.service
	switch action.(type) {
	case core.CallStartRequested:
		// The engine joins muted; a microphone previewed on is unmuted once in.
		unmute := before.LocalUserState.AudioState.Operation == core.AudioOn
		return func(ctx context.Context) core.Action {
			if err := s.StartCall(ctx); err != nil {
				return core.FatalErrorUpdated{InternalError: domain.CallJoinFailed, Err: err}
			}
			if !unmute {
				return nil
			}
			if err := s.UnmuteMicrophone(ctx); err != nil {
				return core.MicrophoneOnFailed{Err: domain.NewFailure(domain.MicrophoneOnFailed, err)}
			}
			return core.MicrophoneMuteStateUpdated{Muted: false}
		}
	case core.CallEndRequested:
		return func(ctx context.Context) core.Action {
			if err := s.EndCall(ctx); err != nil {
				return core.FatalErrorUpdated{InternalError: domain.CallEndFailed, Err: err}
			}
			return nil
		}
	case core.HoldRequested:
		return func(ctx context.Context) core.Action {
			if err := s.Hold(ctx); err != nil {
				return core.StatusErrorAndCallReset{InternalError: domain.CallHoldFailed, Err: err}
			}
			return nil
		}
	case core.ResumeRequested:
		return func(ctx context.Context) core.Action {
			if err := s.Resume(ctx); err != nil {
				return core.StatusErrorAndCallReset{InternalError: domain.CallResumeFailed, Err: err}
			}
			return nil
		}

	case core.CameraOnTriggered, core.CameraPreviewOnTriggered:
		return h.startCamera
	case core.CameraOffTriggered:
		return func(ctx context.Context) core.Action {
			if err := s.StopCamera(ctx); err != nil {
				return core.CameraOffFailed{Err: domain.NewFailure(domain.CameraOffFailed, err)}
			}
			return core.CameraOffSucceeded{}
		}
	case core.CameraSwitchTriggered:
		previous := before.LocalUserState.CameraState.Device
		return func(ctx context.Context) core.Action {
			device, err := s.SwitchCamera(ctx)
			if err != nil {
				return core.CameraSwitchFailed{Previous: previous, Err: domain.NewFailure(domain.CameraSwitchFailed, err)}
			}
			return core.CameraSwitchSucceeded{Device: device}
		}

	case core.MicrophoneOnTriggered:
		return func(ctx context.Context) core.Action {
			if err := s.UnmuteMicrophone(ctx); err != nil {
				return core.MicrophoneOnFailed{Err: domain.NewFailure(domain.MicrophoneOnFailed, err)}
			}
			return core.MicrophoneMuteStateUpdated{Muted: false}
		}
	case core.MicrophoneOffTriggered:
		return func(ctx context.Context) core.Action {
			if err := s.MuteMicrophone(ctx); err != nil {
				return core.MicrophoneOffFailed{Err: domain.NewFailure(domain.MicrophoneOffFailed, err)}
			}
			return core.MicrophoneMuteStateUpdated{Muted: true}
		}

	case core.BackgroundEntered:
		if before.LocalUserState.CameraState.Operation != core.CameraOn {
			return nil
		}
		return func(ctx context.Context) core.Action {
			if err := s.PauseCamera(ctx); err != nil {
				return core.CameraPausedFailed{Err: domain.NewFailure(domain.CameraPauseFailed, err)}
			}
			return core.CameraPausedSucceeded{}
		}
	case core.ForegroundEntered:
		if before.LocalUserState.CameraState.Operation != core.CameraPaused {
			return nil
		}
		return h.startCamera
	}
	return nil
}

func (h *Handler) startCamera(ctx context.Context) core.Action {
	id, err := h.service.StartCamera(ctx)
	if err != nil {
		return core.CameraOnFailed{Err: domain.NewFailure(domain.CameraOnFailed, err)}
	}
	return core.CameraOnSucceeded{VideoStreamID: id}
}

func (h *Handler) run(api core.MiddlewareAPI, name string, job func(context.Context) core.Action) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		h.log.Warn().Str("action", name).Msg("handler closed, intent dropped")
		return
	}
	h.wg.Go(func() {
		result := job(h.ctx)
		if result == nil {
			return
		}
		if h.ctx.Err() != nil {
			h.log.Debug().Str("action", name).Str("result", core.Name(result)).Msg("result after close dropped")
			return
		}
		h.log.Debug().Str("action", name).Str("result", core.Name(result)).Msg("engine call finished")
		api.Dispatch(result)
	})
}
