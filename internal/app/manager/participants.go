package manager

import (
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Composite/internal/core"
	"github.com/dkeye/Composite/internal/domain"
)

// ParticipantViewDataStore holds host-supplied presentation overrides keyed
// by participant identifier. Entries for participants who left are pruned.
type ParticipantViewDataStore struct {
	mu   sync.RWMutex
	data map[string]domain.ParticipantViewData
}

func NewParticipantViewDataStore() *ParticipantViewDataStore {
	return &ParticipantViewDataStore{data: make(map[string]domain.ParticipantViewData)}
}

func (s *ParticipantViewDataStore) Set(id string, vd domain.ParticipantViewData) error {
	if vd.DisplayName != "" {
		name, err := domain.NormalizeDisplayName(vd.DisplayName)
		if err != nil {
			return err
		}
		vd.DisplayName = name
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = vd
	return nil
}

func (s *ParticipantViewDataStore) ViewData(id string) (domain.ParticipantViewData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vd, ok := s.data[id]
	return vd, ok
}

func (s *ParticipantViewDataStore) Remove(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.data, id)
	}
}

func (s *ParticipantViewDataStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// RemoteParticipantsManager turns roster replacements into join events and
// prunes view data of participants who left.
type RemoteParticipantsManager struct {
	store    Store
	events   EventsHandler
	viewData *ParticipantViewDataStore
	log      zerolog.Logger

	// owned by the subscriber goroutine
	lastStamp time.Time
	ids       map[string]struct{}
	cancel    func()
}

func NewRemoteParticipantsManager(store Store, events EventsHandler, viewData *ParticipantViewDataStore) *RemoteParticipantsManager {
	return &RemoteParticipantsManager{
		store:    store,
		events:   events,
		viewData: viewData,
		ids:      make(map[string]struct{}),
		log:      log.With().Str("module", "manager.participants").Logger(),
	}
}

func (m *RemoteParticipantsManager) Start() {
	m.cancel = m.store.Subscribe("remote-participants-manager", func(s core.Snapshot) {
		m.receive(s.State.RemoteParticipantsState)
	})
}

func (m *RemoteParticipantsManager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *RemoteParticipantsManager) receive(st core.RemoteParticipantsState) {
	if st.LastUpdateTimeStamp.Equal(m.lastStamp) {
		return
	}
	m.lastStamp = st.LastUpdateTimeStamp

	current := make(map[string]struct{}, len(st.ParticipantInfoList))
	var joined []string
	for _, p := range st.ParticipantInfoList {
		current[p.UserIdentifier] = struct{}{}
		if _, ok := m.ids[p.UserIdentifier]; !ok {
			joined = append(joined, p.UserIdentifier)
		}
	}
	var removed []string
	for id := range m.ids {
		if _, ok := current[id]; !ok {
			removed = append(removed, id)
		}
	}
	m.ids = current

	if len(joined) > 0 {
		slices.Sort(joined)
		m.log.Debug().Strs("user_ids", joined).Msg("participants joined")
		m.events.OnRemoteParticipantJoined(joined)
	}
	if len(removed) > 0 && m.viewData != nil {
		m.viewData.Remove(removed...)
		m.log.Debug().Strs("user_ids", removed).Msg("pruned view data")
	}
}
