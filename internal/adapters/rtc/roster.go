package rtc

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Composite/internal/adapters/sdk"
	"github.com/dkeye/Composite/internal/domain"
)

// Events is the part of the sdk events handler the SFU client reports to.
type Events interface {
	Reset()
	ParticipantsUpdated(added, removed []sdk.RemoteParticipant)
	ParticipantChanged(p sdk.RemoteParticipant, speakingChanged bool) error
	CallStateChanged(status string, reason sdk.EndReason)
	CallIDChanged(id string)
}

// roster mirrors the SFU room membership. Remote media is keyed by the
// stream id of the track, which the SFU sets to the member id.
type roster struct {
	events Events
	name   string
	log    zerolog.Logger

	mu      sync.Mutex
	selfID  string
	members map[string]*sdk.RemoteParticipant
}

func newRoster(events Events, name string) *roster {
	return &roster{
		events:  events,
		name:    name,
		log:     log.With().Str("module", "rtc.roster").Logger(),
		members: make(map[string]*sdk.RemoteParticipant),
	}
}

func remote(m Member) *sdk.RemoteParticipant {
	return &sdk.RemoteParticipant{
		Identifier:  m.ID,
		DisplayName: m.Username,
		Status:      domain.ParticipantStatusConnected,
	}
}

// apply folds a membership frame into the roster.
func (r *roster) apply(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch msg.Type {
	case "room_state":
		r.roomStateLocked(msg.Members)
	case "member_joined":
		if msg.User == nil || msg.User.ID == r.selfID {
			return
		}
		if _, ok := r.members[msg.User.ID]; ok {
			return
		}
		p := remote(*msg.User)
		r.members[p.Identifier] = p
		r.events.ParticipantsUpdated([]sdk.RemoteParticipant{*p}, nil)
	case "member_left":
		if msg.User == nil {
			return
		}
		p, ok := r.members[msg.User.ID]
		if !ok {
			return
		}
		delete(r.members, msg.User.ID)
		r.events.ParticipantsUpdated(nil, []sdk.RemoteParticipant{*p})
	case "member_updated":
		if msg.User == nil {
			return
		}
		p, ok := r.members[msg.User.ID]
		if !ok || p.DisplayName == msg.User.Username {
			return
		}
		p.DisplayName = msg.User.Username
		r.changedLocked(p, false)
	}
}

// roomStateLocked diffs a full membership list against the roster. The
// room state includes the local member; the first entry carrying the local
// name is taken to be it.
func (r *roster) roomStateLocked(members []Member) {
	if r.selfID == "" {
		for _, m := range members {
			if m.Username == r.name {
				r.selfID = m.ID
				break
			}
		}
	}
	seen := make(map[string]struct{}, len(members))
	var added, removed []sdk.RemoteParticipant
	for _, m := range members {
		if m.ID == "" || m.ID == r.selfID {
			continue
		}
		seen[m.ID] = struct{}{}
		if _, ok := r.members[m.ID]; ok {
			continue
		}
		p := remote(m)
		r.members[m.ID] = p
		added = append(added, *p)
	}
	for id, p := range r.members {
		if _, ok := seen[id]; !ok {
			delete(r.members, id)
			removed = append(removed, *p)
		}
	}
	if len(added) > 0 || len(removed) > 0 {
		r.events.ParticipantsUpdated(added, removed)
	}
}

func (r *roster) changedLocked(p *sdk.RemoteParticipant, speakingChanged bool) {
	if err := r.events.ParticipantChanged(*p, speakingChanged); err != nil {
		r.log.Warn().Err(err).Str("user_id", p.Identifier).Msg("participant change dropped")
	}
}

// video records a remote video stream starting (stream non-nil) or ending.
func (r *roster) video(id string, kind domain.MediaStreamType, stream *domain.VideoStreamInfoModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.members[id]
	if !ok {
		return
	}
	if kind == domain.MediaStreamScreenSharing {
		p.ScreenShareStream = stream
	} else {
		p.CameraStream = stream
	}
	r.changedLocked(p, false)
}

func (r *roster) speaking(id string, speaking bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.members[id]
	if !ok || p.IsSpeaking == speaking {
		return
	}
	p.IsSpeaking = speaking
	r.changedLocked(p, true)
}

func (r *roster) muted(id string, muted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.members[id]
	if !ok || p.IsMuted == muted {
		return
	}
	p.IsMuted = muted
	r.changedLocked(p, false)
}

func (r *roster) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selfID = ""
	clear(r.members)
}
