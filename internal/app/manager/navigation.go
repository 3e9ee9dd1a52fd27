package manager

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Composite/internal/core"
	"github.com/dkeye/Composite/internal/domain"
)

// NavigationManager forwards call status changes to the host and reports
// the dismissal once navigation reaches exit.
type NavigationManager struct {
	store  Store
	events EventsHandler
	log    zerolog.Logger

	// owned by the subscriber goroutine
	status    domain.CallingStatus
	dismissed bool
	cancel    func()
}

func NewNavigationManager(store Store, events EventsHandler) *NavigationManager {
	return &NavigationManager{
		store:  store,
		events: events,
		status: domain.CallingStatusNone,
		log:    log.With().Str("module", "manager.navigation").Logger(),
	}
}

func (m *NavigationManager) Start() {
	m.cancel = m.store.Subscribe("navigation-manager", func(s core.Snapshot) { m.receive(s.State) })
}

func (m *NavigationManager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *NavigationManager) receive(st core.AppState) {
	if st.CallingState.Status != m.status {
		m.status = st.CallingState.Status
		m.log.Info().Str("status", string(m.status)).Msg("call state changed")
		m.events.OnCallStateChanged(m.status)
	}
	if st.NavigationState.Status == core.NavigationExit && !m.dismissed {
		m.dismissed = true
		m.log.Info().Msg("composite dismissed")
		m.events.OnDismissed()
	}
}
