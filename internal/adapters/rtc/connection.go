package rtc

import (
	"context"
	"fmt"

	"github.com/pion/interceptor"
	"github.com/pion/sdp/v3"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultICEServers is used when the configuration names none.
var DefaultICEServers = []string{"stun:stun.l.google.com:19302"}

func WebRTCConfig(iceServers []string) webrtc.Configuration {
	if len(iceServers) == 0 {
		iceServers = DefaultICEServers
	}
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: iceServers}},
	}
}

// newAPI registers the default codecs and interceptors plus the RFC 6464
// audio level header extension the speaking monitor reads.
func newAPI() (*webrtc.API, error) {
	m := &webrtc.MediaEngine{}
	if err := m.RegisterDefaultCodecs(); err != nil {
		return nil, fmt.Errorf("register codecs: %w", err)
	}
	if err := m.RegisterHeaderExtension(
		webrtc.RTPHeaderExtensionCapability{URI: sdp.AudioLevelURI},
		webrtc.RTPCodecTypeAudio,
	); err != nil {
		return nil, fmt.Errorf("register audio level extension: %w", err)
	}
	ir := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(m, ir); err != nil {
		return nil, fmt.Errorf("register interceptors: %w", err)
	}
	return webrtc.NewAPI(webrtc.WithMediaEngine(m), webrtc.WithInterceptorRegistry(ir)), nil
}

// Connection is the client side peer connection to the SFU. The client
// always offers; the SFU answers.
type Connection struct {
	pc     *webrtc.PeerConnection
	log    zerolog.Logger
	cancel context.CancelFunc

	onICE    func(webrtc.ICECandidateInit)
	onTrack  func(ctx context.Context, track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver)
	onState  func(webrtc.PeerConnectionState)
	onClosed func()
}

func NewConnection(cfg webrtc.Configuration, room string) (*Connection, error) {
	api, err := newAPI()
	if err != nil {
		return nil, err
	}
	pc, err := api.NewPeerConnection(cfg)
	if err != nil {
		return nil, err
	}
	return &Connection{
		pc:  pc,
		log: log.With().Str("module", "rtc.connection").Str("room", room).Logger(),
	}, nil
}

// Start wires the peer connection callbacks. Track contexts are cancelled
// once ICE fails or the connection closes.
func (c *Connection) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		c.log.Info().Str("ice_state", s.String()).Msg("ICE state")
		if s == webrtc.ICEConnectionStateFailed || s == webrtc.ICEConnectionStateClosed {
			cancel()
		}
	})

	c.pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		c.log.Info().Str("peer_connection_state", s.String()).Msg("peer state")
		if c.onState != nil {
			c.onState(s)
		}
		if s == webrtc.PeerConnectionStateFailed || s == webrtc.PeerConnectionStateClosed {
			if c.onClosed != nil {
				c.onClosed()
			}
		}
	})

	c.pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		if cand != nil && c.onICE != nil {
			c.onICE(cand.ToJSON())
		}
	})

	c.pc.OnTrack(func(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
		c.log.Info().
			Str("kind", track.Kind().String()).
			Str("track_id", track.ID()).
			Str("stream_id", track.StreamID()).
			Msg("remote track")
		if c.onTrack != nil {
			c.onTrack(ctx, track, receiver)
		}
	})
}

// AddTrack adds a send-receive transceiver for a local track and returns
// its sender so the track can later be swapped out without renegotiation.
func (c *Connection) AddTrack(track webrtc.TrackLocal) (*webrtc.RTPSender, error) {
	tr, err := c.pc.AddTransceiverFromTrack(track, webrtc.RTPTransceiverInit{
		Direction: webrtc.RTPTransceiverDirectionSendrecv,
	})
	if err != nil {
		return nil, err
	}
	return tr.Sender(), nil
}

// CreateOffer creates the local offer and waits for ICE gathering, so the
// returned description carries every candidate.
func (c *Connection) CreateOffer(ctx context.Context) (*webrtc.SessionDescription, error) {
	offer, err := c.pc.CreateOffer(nil)
	if err != nil {
		return nil, err
	}
	gatherComplete := webrtc.GatheringCompletePromise(c.pc)
	if err := c.pc.SetLocalDescription(offer); err != nil {
		return nil, err
	}
	select {
	case <-gatherComplete:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return c.pc.LocalDescription(), nil
}

func (c *Connection) ApplyAnswer(sdp string) error {
	return c.pc.SetRemoteDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: sdp})
}

func (c *Connection) AddICECandidate(ci webrtc.ICECandidateInit) error {
	return c.pc.AddICECandidate(ci)
}

func (c *Connection) OnICECandidate(fn func(webrtc.ICECandidateInit)) { c.onICE = fn }

// OnTrack sets the callback for remote tracks.
func (c *Connection) OnTrack(fn func(ctx context.Context, track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver)) {
	c.onTrack = fn
}

func (c *Connection) OnStateChange(fn func(webrtc.PeerConnectionState)) { c.onState = fn }

// OnClosed sets the callback run when the connection fails or closes.
func (c *Connection) OnClosed(fn func()) { c.onClosed = fn }

func (c *Connection) Close() error {
	if c.cancel != nil {
		c.cancel()
	}
	if err := c.pc.Close(); err != nil {
		c.log.Error().Err(err).Msg("close error")
		return err
	}
	c.log.Info().Msg("closed")
	return nil
}
