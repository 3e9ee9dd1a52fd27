package manager

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Composite/internal/core"
	"github.com/dkeye/Composite/internal/domain"
)

// ErrorManager reports ErrorState changes to the host. It reacts only when
// the internal error differs from the last one it saw, so a repeated error
// from an unrelated event is not reported twice.
type ErrorManager struct {
	store  Store
	events EventsHandler
	log    zerolog.Logger

	// owned by the subscriber goroutine
	last   domain.InternalError
	cancel func()
}

func NewErrorManager(store Store, events EventsHandler) *ErrorManager {
	return &ErrorManager{
		store:  store,
		events: events,
		log:    log.With().Str("module", "manager.error").Logger(),
	}
}

func (m *ErrorManager) Start() {
	m.cancel = m.store.Subscribe("error-manager", func(s core.Snapshot) { m.receive(s.State.ErrorState) })
}

func (m *ErrorManager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *ErrorManager) receive(st core.ErrorState) {
	if st.InternalError == m.last {
		return
	}
	m.last = st.InternalError

	switch st.ErrorCategory {
	case core.ErrorCategoryFatal:
		if code, ok := st.InternalError.ErrorCode(); ok {
			m.events.OnError(domain.CompositeError{Code: code, Err: st.Error})
		}
		m.log.Error().Err(st.InternalError).Msg("fatal error, exiting composite")
		m.store.Dispatch(core.CompositeExit{})
	case core.ErrorCategoryCallState:
		code, ok := st.InternalError.ErrorCode()
		if !ok {
			m.log.Info().Str("error", string(st.InternalError)).Msg("call state error not reported")
			return
		}
		m.log.Warn().Err(st.InternalError).Str("code", string(code)).Msg("call state error")
		m.events.OnError(domain.CompositeError{Code: code, Err: st.Error})
	}
}
