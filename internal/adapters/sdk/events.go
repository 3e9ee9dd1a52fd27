// Package sdk translates calling-engine callbacks into store actions. Engine
// error types never cross this boundary; they are folded into the internal
// error taxonomy first.
package sdk

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Composite/internal/core"
	"github.com/dkeye/Composite/internal/domain"
)

var ErrUnknownParticipant = errors.New("unknown participant")

// DefaultRosterThrottle is the window roster pushes are coalesced in when
// throttling is enabled.
const DefaultRosterThrottle = 1250 * time.Millisecond

type Dispatcher interface {
	Dispatch(core.Action)
}

// RemoteParticipant is an engine's view of one remote participant.
type RemoteParticipant struct {
	Identifier        string
	DisplayName       string
	IsMuted           bool
	IsSpeaking        bool
	Status            domain.ParticipantStatus
	CameraStream      *domain.VideoStreamInfoModel
	ScreenShareStream *domain.VideoStreamInfoModel
}

func (p RemoteParticipant) model(stamp time.Time) domain.ParticipantInfoModel {
	return domain.ParticipantInfoModel{
		UserIdentifier:              p.Identifier,
		DisplayName:                 p.DisplayName,
		IsSpeaking:                  p.IsSpeaking,
		IsMuted:                     p.IsMuted,
		IsRemoteUser:                true,
		RecentSpeakingStamp:         stamp,
		Status:                      p.Status,
		ScreenShareVideoStreamModel: p.ScreenShareStream,
		CameraVideoStreamModel:      p.CameraStream,
	}
}

// EndReason is the engine's call-end code pair.
type EndReason struct {
	Code    int
	Subcode int
}

// DetermineErrorType maps a call-end reason to the code reported to the
// host. An empty code means the call ended without an error.
func DetermineErrorType(previous domain.CallingStatus, reason EndReason) domain.ErrorCode {
	switch {
	case reason.Code == 0:
		if (reason.Subcode == 5300 || reason.Subcode == 5000) && previous == domain.CallingStatusConnected {
			return domain.ErrorCodeCallEvicted
		}
	case reason.Code == 401:
		return domain.ErrorCodeTokenExpired
	case reason.Code == 487:
		// Cancelled by the local side: leave quietly.
		return domain.ErrorCodeNone
	case reason.Code > 0:
		if previous == domain.CallingStatusConnected {
			return domain.ErrorCodeCallEnd
		}
		return domain.ErrorCodeCallJoin
	}
	return domain.ErrorCodeNone
}

type Option func(*EventsHandler)

// WithThrottle coalesces roster pushes: the first goes out at once and
// later ones inside the window collapse into the latest roster.
func WithThrottle(window time.Duration) Option {
	return func(h *EventsHandler) { h.throttle = window }
}

func WithClock(now func() time.Time) Option {
	return func(h *EventsHandler) { h.now = now }
}

// EventsHandler keeps the roster in join order and dispatches complete
// snapshots of it. Methods are safe for concurrent use.
type EventsHandler struct {
	store    Dispatcher
	log      zerolog.Logger
	now      func() time.Time
	throttle time.Duration

	mu        sync.Mutex
	order     []string
	roster    map[string]domain.ParticipantInfoModel
	previous  domain.CallingStatus
	muted     *bool
	recording *bool
	transcr   *bool
	callID    string

	lastPush time.Time
	timer    *time.Timer
}

func NewEventsHandler(store Dispatcher, opts ...Option) *EventsHandler {
	h := &EventsHandler{
		store:    store,
		log:      log.With().Str("module", "adapters.sdk").Logger(),
		now:      time.Now,
		roster:   make(map[string]domain.ParticipantInfoModel),
		previous: domain.CallingStatusNone,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Reset forgets everything about the previous call.
func (h *EventsHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.order = nil
	h.roster = make(map[string]domain.ParticipantInfoModel)
	h.previous = domain.CallingStatusNone
	h.muted, h.recording, h.transcr = nil, nil, nil
	h.callID = ""
	h.lastPush = time.Time{}
}

// ParticipantsUpdated applies removals then additions. New participants
// start with an epoch speaking stamp so they rank last.
func (h *EventsHandler) ParticipantsUpdated(added, removed []RemoteParticipant) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, p := range removed {
		if _, ok := h.roster[p.Identifier]; !ok {
			continue
		}
		delete(h.roster, p.Identifier)
		h.order = slices.DeleteFunc(h.order, func(id string) bool { return id == p.Identifier })
	}
	for _, p := range added {
		if p.Identifier == "" {
			continue
		}
		if _, ok := h.roster[p.Identifier]; !ok {
			h.order = append(h.order, p.Identifier)
		}
		h.roster[p.Identifier] = p.model(time.Unix(0, 0).UTC())
	}
	h.log.Debug().Int("added", len(added)).Int("removed", len(removed)).Int("roster", len(h.order)).Msg("participants updated")
	h.pushLocked()
}

// ParticipantChanged refreshes one participant. speakingChanged marks a
// speaking transition; starting to speak stamps the participant with now.
func (h *EventsHandler) ParticipantChanged(p RemoteParticipant, speakingChanged bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	prev, ok := h.roster[p.Identifier]
	if !ok {
		return fmt.Errorf("participant %q: %w", p.Identifier, ErrUnknownParticipant)
	}
	stamp := prev.RecentSpeakingStamp
	if speakingChanged && p.IsSpeaking {
		stamp = h.now()
	}
	h.roster[p.Identifier] = p.model(stamp)
	h.pushLocked()
	return nil
}

// Participant returns the last known model for id.
func (h *EventsHandler) Participant(id string) (domain.ParticipantInfoModel, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.roster[id]
	return m, ok
}

func (h *EventsHandler) snapshotLocked() []domain.ParticipantInfoModel {
	list := make([]domain.ParticipantInfoModel, 0, len(h.order))
	for _, id := range h.order {
		list = append(list, h.roster[id])
	}
	return list
}

func (h *EventsHandler) pushLocked() {
	if h.throttle <= 0 {
		h.store.Dispatch(core.ParticipantListUpdated{Participants: h.snapshotLocked()})
		return
	}
	if h.timer != nil {
		// A trailing push is already scheduled and will carry this roster.
		return
	}
	now := h.now()
	if elapsed := now.Sub(h.lastPush); h.lastPush.IsZero() || elapsed >= h.throttle {
		h.lastPush = now
		h.store.Dispatch(core.ParticipantListUpdated{Participants: h.snapshotLocked()})
		return
	}
	h.timer = time.AfterFunc(h.throttle-now.Sub(h.lastPush), h.flush)
}

func (h *EventsHandler) flush() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timer == nil {
		return
	}
	h.timer = nil
	h.lastPush = h.now()
	h.store.Dispatch(core.ParticipantListUpdated{Participants: h.snapshotLocked()})
}

// CallStateChanged reports the new call status and, when the call ended,
// classifies the end reason. Unknown status strings become none.
func (h *EventsHandler) CallStateChanged(status string, reason EndReason) {
	h.mu.Lock()
	defer h.mu.Unlock()

	current := domain.ParseCallingStatus(status)
	code := DetermineErrorType(h.previous, reason)
	h.previous = current

	logger := h.log.With().Str("status", string(current)).Logger()
	h.store.Dispatch(core.StateUpdated{Status: current})

	if code != domain.ErrorCodeNone {
		kind := code.InternalError()
		err := domain.NewFailure(kind, fmt.Errorf("call ended with code %d/%d", reason.Code, reason.Subcode))
		logger.Warn().Err(err).Str("code", string(code)).Msg("call ended with error")
		if kind.IsFatal() {
			h.store.Dispatch(core.FatalErrorUpdated{InternalError: kind, Err: err})
		} else {
			h.store.Dispatch(core.StatusErrorAndCallReset{InternalError: kind, Err: err})
		}
		return
	}
	if current == domain.CallingStatusDisconnected || current == domain.CallingStatusRemoteHold {
		logger.Info().Msg("call ended")
		h.store.Dispatch(core.CompositeExit{})
	}
}

func (h *EventsHandler) RecordingChanged(active bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if changed(&h.recording, active) {
		h.store.Dispatch(core.RecordingStateUpdated{Active: active})
	}
}

func (h *EventsHandler) TranscriptionChanged(active bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if changed(&h.transcr, active) {
		h.store.Dispatch(core.TranscriptionStateUpdated{Active: active})
	}
}

func (h *EventsHandler) LocalMuteChanged(muted bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if changed(&h.muted, muted) {
		h.store.Dispatch(core.MicrophoneMuteStateUpdated{Muted: muted})
	}
}

func (h *EventsHandler) CallIDChanged(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if id == "" || id == h.callID {
		return
	}
	h.callID = id
	h.store.Dispatch(core.CallIDUpdated{CallID: id})
}

func changed(last **bool, v bool) bool {
	if *last != nil && **last == v {
		return false
	}
	*last = &v
	return true
}
