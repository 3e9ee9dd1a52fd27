// Package rtc is a calling engine backed by a WebRTC SFU: it joins a room
// over a websocket signalling channel, publishes the local microphone and
// camera tracks and turns the room membership and remote media into
// roster events.
package rtc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/dkeye/Composite/internal/adapters/sdk"
	"github.com/dkeye/Composite/internal/domain"
)

var (
	ErrNotInCall     = errors.New("not in a call")
	ErrAlreadyInCall = errors.New("already in a call")
	ErrNoSignalURL   = errors.New("no signal url configured")
)

const DefaultPingPeriod = 20 * time.Second

// End reasons reported for failures the SFU has no code for.
var (
	reasonJoinRejected = sdk.EndReason{Code: 400}
	reasonLost         = sdk.EndReason{Code: 503}
	reasonEvicted      = sdk.EndReason{Subcode: 5300}
)

type Config struct {
	SignalURL   string
	Room        string
	DisplayName string
	ICEServers  []string
	PingPeriod  time.Duration
}

// Service implements the calling engine. One call runs at a time; a new
// call may start once the previous one has ended.
type Service struct {
	cfg    Config
	events Events
	roster *roster
	log    zerolog.Logger
	now    func() time.Time

	audio *LocalTrack
	video *LocalTrack

	mu        sync.Mutex
	call      *call
	camera    domain.CameraDevice
	held      bool
	heldVideo TrackState
}

// call is the per-call transport state.
type call struct {
	signal    *Signaller
	conn      *Connection
	cancel    context.CancelFunc
	wg        conc.WaitGroup
	connected bool
	leaving   bool
	ending    bool
}

func NewService(cfg Config, events Events) (*Service, error) {
	if cfg.PingPeriod <= 0 {
		cfg.PingPeriod = DefaultPingPeriod
	}
	audio, err := webrtc.NewTrackLocalStaticRTP(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}, "audio", "local")
	if err != nil {
		return nil, fmt.Errorf("audio track: %w", err)
	}
	video, err := webrtc.NewTrackLocalStaticRTP(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}, "camera", "local")
	if err != nil {
		return nil, fmt.Errorf("video track: %w", err)
	}
	return &Service{
		cfg:    cfg,
		events: events,
		roster: newRoster(events, cfg.DisplayName),
		log:    log.With().Str("module", "rtc.service").Str("room", cfg.Room).Logger(),
		now:    time.Now,
		audio:  NewLocalTrack(audio, TrackStateMuted),
		video:  NewLocalTrack(video, TrackStateStopped),
		camera: domain.CameraFront,
	}, nil
}

func (s *Service) StartCall(ctx context.Context) error {
	if s.cfg.SignalURL == "" {
		return ErrNoSignalURL
	}
	s.mu.Lock()
	if s.call != nil {
		s.mu.Unlock()
		return ErrAlreadyInCall
	}
	callCtx, cancel := context.WithCancel(context.Background())
	c := &call{cancel: cancel}
	s.call = c
	s.held = false
	s.mu.Unlock()

	s.events.Reset()
	s.roster.reset()
	s.events.CallStateChanged(string(domain.CallingStatusConnecting), sdk.EndReason{})

	if err := s.connect(ctx, callCtx, c); err != nil {
		s.teardown(c)
		return fmt.Errorf("start call: %w", err)
	}
	s.log.Info().Msg("offer sent")
	return nil
}

func (s *Service) connect(ctx, callCtx context.Context, c *call) error {
	sig, err := DialSignal(ctx, s.cfg.SignalURL,
		func(m Message) { s.handle(c, m) },
		func(err error) { s.signalDone(c, err) },
	)
	if err != nil {
		return fmt.Errorf("dial signal: %w", err)
	}
	conn, err := NewConnection(WebRTCConfig(s.cfg.ICEServers), s.cfg.Room)
	if err != nil {
		sig.Close()
		return fmt.Errorf("peer connection: %w", err)
	}
	s.mu.Lock()
	c.signal, c.conn = sig, conn
	s.mu.Unlock()

	conn.OnICECandidate(func(ci webrtc.ICECandidateInit) {
		if err := sig.Candidate(ci); err != nil {
			s.log.Warn().Err(err).Msg("send candidate")
		}
	})
	conn.OnTrack(func(trackCtx context.Context, track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		c.wg.Go(func() { s.monitor(trackCtx, track, receiver) })
	})
	conn.OnStateChange(func(st webrtc.PeerConnectionState) { s.peerState(c, st) })
	conn.Start(callCtx)

	for _, t := range []*LocalTrack{s.audio, s.video} {
		sender, err := conn.AddTrack(t.Track)
		if err != nil {
			return fmt.Errorf("add %s track: %w", t.Track.ID(), err)
		}
		if err := t.Attach(sender); err != nil {
			return fmt.Errorf("attach %s track: %w", t.Track.ID(), err)
		}
	}

	if err := sig.Join(s.cfg.Room, s.cfg.DisplayName); err != nil {
		return fmt.Errorf("join: %w", err)
	}
	offer, err := conn.CreateOffer(ctx)
	if err != nil {
		return fmt.Errorf("offer: %w", err)
	}
	if err := sig.Offer(offer.SDP); err != nil {
		return fmt.Errorf("send offer: %w", err)
	}

	c.wg.Go(func() { s.ping(callCtx, sig) })
	return nil
}

func (s *Service) ping(ctx context.Context, sig *Signaller) {
	t := time.NewTicker(s.cfg.PingPeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := sig.Ping(); err != nil {
				s.log.Debug().Err(err).Msg("ping")
			}
		}
	}
}

// handle runs on the signal read goroutine.
func (s *Service) handle(c *call, m Message) {
	switch m.Type {
	case "room_state":
		s.events.CallIDChanged(m.Room)
		s.roster.apply(m)
	case "member_joined", "member_left", "member_updated":
		s.roster.apply(m)
	case "answer":
		if err := s.conn(c).ApplyAnswer(m.SDP); err != nil {
			s.log.Error().Err(err).Msg("apply answer")
			go s.finish(c, reasonLost)
		}
	case "candidate":
		if err := s.conn(c).AddICECandidate(m.ICECandidate()); err != nil {
			s.log.Error().Err(err).Msg("add ice candidate")
		}
	case "error":
		s.log.Warn().Str("error", m.Error).Msg("signal error")
		s.mu.Lock()
		connected := c.connected
		s.mu.Unlock()
		if !connected {
			go s.finish(c, reasonJoinRejected)
		}
	case "left":
		s.mu.Lock()
		leaving := c.leaving
		s.mu.Unlock()
		if !leaving {
			go s.finish(c, reasonEvicted)
		}
	case "pong", "whoami":
	default:
		s.log.Debug().Str("type", m.Type).Msg("unhandled signal")
	}
}

func (s *Service) conn(c *call) *Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.conn
}

func (s *Service) signalDone(c *call, err error) {
	s.mu.Lock()
	ending := c.ending
	s.mu.Unlock()
	if !ending {
		s.log.Warn().Err(err).Msg("signal lost")
		go s.finish(c, reasonLost)
	}
}

func (s *Service) peerState(c *call, st webrtc.PeerConnectionState) {
	switch st {
	case webrtc.PeerConnectionStateConnected:
		s.mu.Lock()
		first := !c.connected && !c.ending
		c.connected = true
		held := s.held
		s.mu.Unlock()
		if first && !held {
			s.events.CallStateChanged(string(domain.CallingStatusConnected), sdk.EndReason{})
		}
	case webrtc.PeerConnectionStateFailed:
		go s.finish(c, reasonLost)
	}
}

// monitor follows one remote track: audio feeds the speaking detector and
// the mute flag, video the member's stream model.
func (s *Service) monitor(ctx context.Context, track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
	id := track.StreamID()
	logger := s.log.With().Str("user_id", id).Str("track_id", track.ID()).Logger()

	if track.Kind() == webrtc.RTPCodecTypeAudio {
		s.roster.muted(id, false)
		monitorTrack(ctx, track, receiver, func(speaking bool) { s.roster.speaking(id, speaking) }, s.now, &logger)
		s.roster.muted(id, true)
		return
	}

	kind := domain.MediaStreamCameraVideo
	if strings.HasPrefix(track.ID(), "screen") {
		kind = domain.MediaStreamScreenSharing
	}
	s.roster.video(id, kind, &domain.VideoStreamInfoModel{
		VideoStreamIdentifier: track.ID(),
		MediaStreamType:       kind,
	})
	monitorTrack(ctx, track, receiver, nil, s.now, &logger)
	s.roster.video(id, kind, nil)
}

// finish ends the call once and reports why.
func (s *Service) finish(c *call, reason sdk.EndReason) {
	if !s.teardown(c) {
		return
	}
	s.log.Info().Int("code", reason.Code).Int("subcode", reason.Subcode).Msg("call ended")
	s.events.CallStateChanged(string(domain.CallingStatusDisconnected), reason)
}

// teardown closes the transport of c. It reports false when c was already
// torn down.
func (s *Service) teardown(c *call) bool {
	s.mu.Lock()
	if c.ending {
		s.mu.Unlock()
		return false
	}
	c.ending = true
	if s.call == c {
		s.call = nil
	}
	s.mu.Unlock()

	s.audio.Detach()
	s.video.Detach()
	c.cancel()
	if c.conn != nil {
		_ = c.conn.Close()
	}
	if c.signal != nil {
		c.signal.Close()
	}
	c.wg.Wait()
	return true
}

func (s *Service) current() (*call, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.call == nil {
		return nil, ErrNotInCall
	}
	return s.call, nil
}

// EndCall leaves the room. Without a call it only reports the disconnect so
// the composite can exit.
func (s *Service) EndCall(context.Context) error {
	c, err := s.current()
	if err != nil {
		s.events.CallStateChanged(string(domain.CallingStatusDisconnected), sdk.EndReason{})
		return nil
	}
	s.mu.Lock()
	c.leaving = true
	sig := c.signal
	s.mu.Unlock()
	if sig != nil {
		if err := sig.Leave(); err != nil {
			s.log.Debug().Err(err).Msg("leave")
		}
	}
	s.finish(c, sdk.EndReason{})
	return nil
}

// Hold stops sending media. The SFU has no hold state; the room keeps the
// member.
func (s *Service) Hold(context.Context) error {
	if _, err := s.current(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.held {
		s.mu.Unlock()
		return nil
	}
	s.held = true
	s.heldVideo = s.video.State()
	s.mu.Unlock()

	if err := s.audio.Set(TrackStateMuted); err != nil {
		return err
	}
	if err := s.video.Set(TrackStateStopped); err != nil {
		return err
	}
	s.events.CallStateChanged(string(domain.CallingStatusLocalHold), sdk.EndReason{})
	return nil
}

// Resume restores the camera as it was before hold. The microphone stays
// muted until the user unmutes.
func (s *Service) Resume(context.Context) error {
	if _, err := s.current(); err != nil {
		return err
	}
	s.mu.Lock()
	if !s.held {
		s.mu.Unlock()
		return nil
	}
	s.held = false
	video := s.heldVideo
	s.mu.Unlock()

	if err := s.video.Set(video); err != nil {
		return err
	}
	s.events.CallStateChanged(string(domain.CallingStatusConnected), sdk.EndReason{})
	return nil
}

func (s *Service) StartCamera(context.Context) (string, error) {
	if err := s.video.Set(TrackStateLive); err != nil {
		return "", err
	}
	s.mu.Lock()
	id := s.video.Track.ID() + "-" + string(s.camera)
	s.mu.Unlock()
	return id, nil
}

func (s *Service) StopCamera(context.Context) error {
	return s.video.Set(TrackStateStopped)
}

func (s *Service) PauseCamera(context.Context) error {
	return s.video.Set(TrackStateMuted)
}

// SwitchCamera flips between the front and back camera.
func (s *Service) SwitchCamera(context.Context) (domain.CameraDevice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.camera == domain.CameraFront {
		s.camera = domain.CameraBack
	} else {
		s.camera = domain.CameraFront
	}
	return s.camera, nil
}

func (s *Service) MuteMicrophone(context.Context) error {
	return s.audio.Set(TrackStateMuted)
}

func (s *Service) UnmuteMicrophone(context.Context) error {
	return s.audio.Set(TrackStateLive)
}

// Close drops the current call without reporting it.
func (s *Service) Close() error {
	s.mu.Lock()
	c := s.call
	s.mu.Unlock()
	if c != nil {
		s.teardown(c)
	}
	return nil
}
