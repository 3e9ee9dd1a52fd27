package rtc

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrSignalClosed = errors.New("signal connection closed")
)

const (
	signalSendBuffer = 32
	signalWriteWait  = 5 * time.Second
)

// Member is a room member as the SFU reports it.
type Member struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Message is the union of every frame the SFU sends. Only the fields the
// frame type uses are set.
type Message struct {
	Type     string   `json:"type"`
	Room     string   `json:"room,omitempty"`
	RoomName string   `json:"room_name,omitempty"`
	Members  []Member `json:"members,omitempty"`
	Count    int      `json:"count,omitempty"`
	User     *Member  `json:"user,omitempty"`
	Username string   `json:"username,omitempty"`
	SDP      string   `json:"sdp,omitempty"`
	Error    string   `json:"error,omitempty"`

	Candidate     string `json:"candidate,omitempty"`
	SDPMid        string `json:"sdpMid,omitempty"`
	SDPMLineIndex uint16 `json:"sdpMLineIndex,omitempty"`
}

func (m Message) ICECandidate() webrtc.ICECandidateInit {
	ci := webrtc.ICECandidateInit{Candidate: m.Candidate}
	if m.SDPMid != "" {
		ci.SDPMid = &m.SDPMid
	}
	idx := m.SDPMLineIndex
	ci.SDPMLineIndex = &idx
	return ci
}

// Signaller is the websocket client side of the SFU signalling protocol.
type Signaller struct {
	conn *websocket.Conn
	send chan []byte
	log  zerolog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// DialSignal connects to url and starts the pumps. handle runs on the read
// goroutine for every frame; onDone runs once with the read error when the
// connection goes away.
func DialSignal(ctx context.Context, url string, handle func(Message), onDone func(error)) (*Signaller, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	s := &Signaller{
		conn: ws,
		send: make(chan []byte, signalSendBuffer),
		log:  log.With().Str("module", "rtc.signal").Str("url", url).Logger(),
		done: make(chan struct{}),
	}
	go s.writePump()
	go s.readPump(handle, onDone)
	return s, nil
}

func (s *Signaller) writePump() {
	for data := range s.send {
		if err := s.conn.SetWriteDeadline(time.Now().Add(signalWriteWait)); err != nil {
			s.log.Error().Err(err).Msg("writePump set deadline")
			return
		}
		if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.log.Error().Err(err).Msg("writePump write error")
			return
		}
	}
}

func (s *Signaller) readPump(handle func(Message), onDone func(error)) {
	var err error
	defer func() {
		s.Close()
		close(s.done)
		if onDone != nil {
			onDone(err)
		}
	}()
	for {
		var data []byte
		_, data, err = s.conn.ReadMessage()
		if err != nil {
			s.log.Debug().Err(err).Msg("readPump closing")
			return
		}
		var msg Message
		if jerr := json.Unmarshal(data, &msg); jerr != nil {
			s.log.Error().Err(jerr).Msg("bad json")
			continue
		}
		handle(msg)
	}
}

// Send queues v without blocking.
func (s *Signaller) Send(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrSignalClosed
	}
	select {
	case s.send <- b:
	default:
		return ErrBackpressure
	}
	return nil
}

func (s *Signaller) Join(room, name string) error {
	return s.Send(map[string]string{"type": "join", "room": room, "name": name})
}

func (s *Signaller) Leave() error { return s.Send(map[string]string{"type": "leave"}) }

func (s *Signaller) Ping() error { return s.Send(map[string]string{"type": "ping"}) }

func (s *Signaller) Offer(sdp string) error {
	return s.Send(map[string]string{"type": "offer", "sdp": sdp})
}

func (s *Signaller) Candidate(ci webrtc.ICECandidateInit) error {
	msg := Message{Type: "candidate", Candidate: ci.Candidate}
	if ci.SDPMid != nil {
		msg.SDPMid = *ci.SDPMid
	}
	if ci.SDPMLineIndex != nil {
		msg.SDPMLineIndex = *ci.SDPMLineIndex
	}
	return s.Send(msg)
}

// Close stops the write pump and the socket. The read pump then exits with
// the read error.
func (s *Signaller) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	_ = s.conn.Close()
}

// Done is closed once the read pump has exited.
func (s *Signaller) Done() <-chan struct{} { return s.done }
