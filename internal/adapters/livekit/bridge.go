// Package livekit feeds a LiveKit room into a composite. Room membership
// arrives as webhook events, active speakers as SpeakerInfo updates; both
// become roster events on the sdk handler.
package livekit

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	"github.com/livekit/protocol/webhook"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/dkeye/Composite/internal/adapters/sdk"
	"github.com/dkeye/Composite/internal/domain"
)

var ErrMissingCredentials = errors.New("livekit api key and secret are required")

const maxWebhookBody = 1 << 20

const (
	eventRoomStarted       = "room_started"
	eventRoomFinished      = "room_finished"
	eventParticipantJoined = "participant_joined"
	eventParticipantLeft   = "participant_left"
	eventTrackPublished    = "track_published"
	eventTrackUnpublished  = "track_unpublished"
)

// Events is the part of the sdk events handler the bridge reports to.
type Events interface {
	ParticipantsUpdated(added, removed []sdk.RemoteParticipant)
	ParticipantChanged(p sdk.RemoteParticipant, speakingChanged bool) error
	CallStateChanged(status string, reason sdk.EndReason)
	CallIDChanged(id string)
}

type Config struct {
	APIKey    string
	APISecret string
	// Room limits the bridge to one room; empty accepts every room.
	Room string
}

// Bridge keeps the LiveKit view of a room and translates changes to it.
type Bridge struct {
	cfg    Config
	events Events
	keys   auth.KeyProvider
	log    zerolog.Logger

	mu      sync.Mutex
	members map[string]sdk.RemoteParticipant
	sids    map[string]string
}

func NewBridge(cfg Config, events Events) *Bridge {
	b := &Bridge{
		cfg:     cfg,
		events:  events,
		log:     log.With().Str("module", "adapters.livekit").Str("room", cfg.Room).Logger(),
		members: make(map[string]sdk.RemoteParticipant),
		sids:    make(map[string]string),
	}
	if cfg.APIKey != "" && cfg.APISecret != "" {
		b.keys = auth.NewSimpleKeyProvider(cfg.APIKey, cfg.APISecret)
	}
	return b
}

// Token mints a join token for the bridge room.
func (b *Bridge) Token(identity, name string, ttl time.Duration) (string, error) {
	if b.keys == nil {
		return "", ErrMissingCredentials
	}
	canPublish := true
	canSubscribe := true
	at := auth.NewAccessToken(b.cfg.APIKey, b.cfg.APISecret)
	at.AddGrant(&auth.VideoGrant{
		RoomJoin:     true,
		Room:         b.cfg.Room,
		CanPublish:   &canPublish,
		CanSubscribe: &canSubscribe,
	}).
		SetIdentity(identity).
		SetName(name).
		SetValidFor(ttl)
	token, err := at.ToJWT()
	if err != nil {
		return "", fmt.Errorf("livekit token: %w", err)
	}
	return token, nil
}

// Receive reads a webhook request. With credentials the signature is
// verified; without them the body is decoded as is.
func (b *Bridge) Receive(r *http.Request) (*livekit.WebhookEvent, error) {
	if b.keys != nil {
		return webhook.ReceiveWebhookEvent(r, b.keys)
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		return nil, err
	}
	ev := &livekit.WebhookEvent{}
	if err := protojson.Unmarshal(body, ev); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	return ev, nil
}

// HandleEvent applies one webhook event. Events for other rooms are
// ignored.
func (b *Bridge) HandleEvent(ev *livekit.WebhookEvent) {
	if b.cfg.Room != "" && ev.GetRoom().GetName() != b.cfg.Room {
		return
	}
	logger := b.log.With().Str("event", ev.GetEvent()).Logger()

	switch ev.GetEvent() {
	case eventRoomStarted:
		b.events.CallIDChanged(ev.GetRoom().GetSid())
	case eventRoomFinished:
		b.reset()
		b.events.CallStateChanged(string(domain.CallingStatusDisconnected), sdk.EndReason{})
	case eventParticipantJoined:
		p, fresh := b.upsert(ev.GetParticipant())
		if fresh {
			b.events.ParticipantsUpdated([]sdk.RemoteParticipant{p}, nil)
		} else {
			b.changed(p, false, &logger)
		}
	case eventParticipantLeft:
		if p, ok := b.remove(ev.GetParticipant()); ok {
			b.events.ParticipantsUpdated(nil, []sdk.RemoteParticipant{p})
		}
	case eventTrackPublished, eventTrackUnpublished:
		if p, fresh := b.upsert(ev.GetParticipant()); !fresh {
			b.changed(p, false, &logger)
		} else {
			b.events.ParticipantsUpdated([]sdk.RemoteParticipant{p}, nil)
		}
	default:
		logger.Debug().Msg("ignored webhook event")
	}
}

// SpeakersChanged applies an active speaker update.
func (b *Bridge) SpeakersChanged(speakers []*livekit.SpeakerInfo) {
	for _, s := range speakers {
		b.mu.Lock()
		identity, ok := b.sids[s.GetSid()]
		p, known := b.members[identity]
		if !ok || !known || p.IsSpeaking == s.GetActive() {
			b.mu.Unlock()
			continue
		}
		p.IsSpeaking = s.GetActive()
		b.members[identity] = p
		b.mu.Unlock()
		b.changed(p, true, &b.log)
	}
}

func (b *Bridge) changed(p sdk.RemoteParticipant, speaking bool, logger *zerolog.Logger) {
	if err := b.events.ParticipantChanged(p, speaking); err != nil {
		logger.Warn().Err(err).Str("user_id", p.Identifier).Msg("participant change dropped")
	}
}

func (b *Bridge) upsert(info *livekit.ParticipantInfo) (sdk.RemoteParticipant, bool) {
	p := Participant(info)
	b.mu.Lock()
	defer b.mu.Unlock()
	prev, ok := b.members[p.Identifier]
	if ok {
		p.IsSpeaking = prev.IsSpeaking
	}
	b.members[p.Identifier] = p
	b.sids[info.GetSid()] = p.Identifier
	return p, !ok
}

func (b *Bridge) remove(info *livekit.ParticipantInfo) (sdk.RemoteParticipant, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.members[info.GetIdentity()]
	if !ok {
		return p, false
	}
	delete(b.members, info.GetIdentity())
	delete(b.sids, info.GetSid())
	return p, true
}

func (b *Bridge) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.members)
	clear(b.sids)
}

// Participant converts a LiveKit participant. A participant without a
// microphone track counts as muted.
func Participant(info *livekit.ParticipantInfo) sdk.RemoteParticipant {
	p := sdk.RemoteParticipant{
		Identifier:  info.GetIdentity(),
		DisplayName: info.GetName(),
		IsMuted:     true,
		Status:      participantStatus(info.GetState()),
	}
	if p.DisplayName == "" {
		p.DisplayName = p.Identifier
	}
	for _, t := range info.GetTracks() {
		switch t.GetSource() {
		case livekit.TrackSource_MICROPHONE:
			p.IsMuted = t.GetMuted()
		case livekit.TrackSource_CAMERA:
			if !t.GetMuted() {
				p.CameraStream = &domain.VideoStreamInfoModel{
					VideoStreamIdentifier: t.GetSid(),
					MediaStreamType:       domain.MediaStreamCameraVideo,
				}
			}
		case livekit.TrackSource_SCREEN_SHARE:
			p.ScreenShareStream = &domain.VideoStreamInfoModel{
				VideoStreamIdentifier: t.GetSid(),
				MediaStreamType:       domain.MediaStreamScreenSharing,
			}
		}
	}
	return p
}

func participantStatus(s livekit.ParticipantInfo_State) domain.ParticipantStatus {
	switch s {
	case livekit.ParticipantInfo_JOINING:
		return domain.ParticipantStatusConnecting
	case livekit.ParticipantInfo_JOINED, livekit.ParticipantInfo_ACTIVE:
		return domain.ParticipantStatusConnected
	case livekit.ParticipantInfo_DISCONNECTED:
		return domain.ParticipantStatusDisconnected
	}
	return domain.ParticipantStatusUnknown
}
