package rtc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Composite/internal/adapters/sdk"
	"github.com/dkeye/Composite/internal/domain"
)

func levelPacket(t *testing.T, id uint8, level uint8) *rtp.Packet {
	t.Helper()
	payload, err := rtp.AudioLevelExtension{Level: level, Voice: true}.Marshal()
	require.NoError(t, err)
	pkt := &rtp.Packet{Header: rtp.Header{Version: 2}}
	require.NoError(t, pkt.Header.SetExtension(id, payload))
	return pkt
}

func TestAudioLevel(t *testing.T) {
	t.Parallel()

	level, ok := audioLevel(levelPacket(t, 3, 42), 3)
	require.True(t, ok)
	require.Equal(t, uint8(42), level)

	_, ok = audioLevel(levelPacket(t, 3, 42), 4)
	require.False(t, ok)
	_, ok = audioLevel(levelPacket(t, 3, 42), 0)
	require.False(t, ok)
}

func TestSpeakingDetector(t *testing.T) {
	t.Parallel()

	d := speakingDetector{threshold: 50, hold: 100 * time.Millisecond}
	t0 := time.Unix(100, 0)

	speaking, changed := d.observe(127, t0)
	require.False(t, speaking)
	require.False(t, changed)

	speaking, changed = d.observe(30, t0.Add(10*time.Millisecond))
	require.True(t, speaking)
	require.True(t, changed)

	// Quiet packets inside the hold keep the speaker active.
	speaking, changed = d.observe(120, t0.Add(60*time.Millisecond))
	require.True(t, speaking)
	require.False(t, changed)

	speaking, changed = d.observe(120, t0.Add(200*time.Millisecond))
	require.False(t, speaking)
	require.True(t, changed)
}

func TestLocalTrackWithoutSender(t *testing.T) {
	t.Parallel()

	track, err := webrtc.NewTrackLocalStaticRTP(webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}, "audio", "local")
	require.NoError(t, err)
	lt := NewLocalTrack(track, TrackStateMuted)
	require.Equal(t, TrackStateMuted, lt.State())
	require.NoError(t, lt.Set(TrackStateLive))
	require.Equal(t, "live", lt.State().String())
}

type fakeEvents struct {
	mu      sync.Mutex
	added   []string
	removed []string
	changed []sdk.RemoteParticipant
	states  []string
	callIDs []string
}

func (f *fakeEvents) Reset() {}

func (f *fakeEvents) ParticipantsUpdated(added, removed []sdk.RemoteParticipant) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range added {
		f.added = append(f.added, p.Identifier)
	}
	for _, p := range removed {
		f.removed = append(f.removed, p.Identifier)
	}
}

func (f *fakeEvents) ParticipantChanged(p sdk.RemoteParticipant, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changed = append(f.changed, p)
	return nil
}

func (f *fakeEvents) CallStateChanged(status string, _ sdk.EndReason) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, status)
}

func (f *fakeEvents) CallIDChanged(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callIDs = append(f.callIDs, id)
}

func (f *fakeEvents) snapshot() fakeEvents {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fakeEvents{
		added:   append([]string(nil), f.added...),
		removed: append([]string(nil), f.removed...),
		changed: append([]sdk.RemoteParticipant(nil), f.changed...),
		callIDs: append([]string(nil), f.callIDs...),
	}
}

func user(id, name string) *Member { return &Member{ID: id, Username: name} }

func TestRosterMembership(t *testing.T) {
	t.Parallel()

	ev := &fakeEvents{}
	r := newRoster(ev, "me")

	r.apply(Message{Type: "room_state", Members: []Member{
		{ID: "a", Username: "Ann"},
		{ID: "self", Username: "me"},
		{ID: "b", Username: "Bob"},
	}})
	require.Equal(t, []string{"a", "b"}, ev.snapshot().added)

	r.apply(Message{Type: "member_joined", User: user("c", "Cid")})
	r.apply(Message{Type: "member_joined", User: user("c", "Cid")})
	r.apply(Message{Type: "member_joined", User: user("self", "me")})
	r.apply(Message{Type: "member_left", User: user("a", "Ann")})
	r.apply(Message{Type: "member_updated", User: user("b", "Robert")})

	got := ev.snapshot()
	require.Equal(t, []string{"a", "b", "c"}, got.added)
	require.Equal(t, []string{"a"}, got.removed)
	require.Len(t, got.changed, 1)
	require.Equal(t, "Robert", got.changed[0].DisplayName)

	// A later room state drops members it no longer lists.
	r.apply(Message{Type: "room_state", Members: []Member{{ID: "self", Username: "me"}, {ID: "c", Username: "Cid"}}})
	require.Equal(t, []string{"a", "b"}, ev.snapshot().removed)
}

func TestRosterMedia(t *testing.T) {
	t.Parallel()

	ev := &fakeEvents{}
	r := newRoster(ev, "me")
	r.apply(Message{Type: "member_joined", User: user("a", "Ann")})

	r.speaking("a", true)
	r.speaking("a", true)
	r.muted("a", true)
	r.video("a", domain.MediaStreamScreenSharing, &domain.VideoStreamInfoModel{
		VideoStreamIdentifier: "screen-1",
		MediaStreamType:       domain.MediaStreamScreenSharing,
	})
	r.speaking("ghost", true)

	got := ev.snapshot().changed
	require.Len(t, got, 3)
	require.True(t, got[0].IsSpeaking)
	require.True(t, got[1].IsMuted)
	require.NotNil(t, got[2].ScreenShareStream)
	require.Nil(t, got[2].CameraStream)
}

// sfu is a scripted signalling server: it answers join with a room state
// and records every frame type it receives.
type sfu struct {
	mu    sync.Mutex
	types []string
}

func (s *sfu) received() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.types...)
}

func (s *sfu) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{}
	ws, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer ws.Close()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var msg map[string]any
		if json.Unmarshal(data, &msg) != nil {
			continue
		}
		typ, _ := msg["type"].(string)
		s.mu.Lock()
		s.types = append(s.types, typ)
		s.mu.Unlock()
		switch typ {
		case "join":
			_ = ws.WriteJSON(Message{
				Type:    "room_state",
				Room:    msg["room"].(string),
				Members: []Member{{ID: "u1", Username: "Ann"}, {ID: "me-id", Username: msg["name"].(string)}},
				Count:   2,
			})
		case "ping":
			_ = ws.WriteJSON(Message{Type: "pong"})
		}
	}
}

func TestSignallerRoundTrip(t *testing.T) {
	t.Parallel()

	server := &sfu{}
	ts := httptest.NewServer(server)
	defer ts.Close()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")

	msgs := make(chan Message, 8)
	done := make(chan error, 1)
	sig, err := DialSignal(context.Background(), url,
		func(m Message) { msgs <- m },
		func(err error) { done <- err },
	)
	require.NoError(t, err)

	require.NoError(t, sig.Join("lobby", "me"))
	state := <-msgs
	require.Equal(t, "room_state", state.Type)
	require.Equal(t, "lobby", state.Room)
	require.Len(t, state.Members, 2)

	require.NoError(t, sig.Ping())
	require.Equal(t, "pong", (<-msgs).Type)

	sig.Close()
	require.ErrorIs(t, sig.Send("late"), ErrSignalClosed)
	select {
	case <-sig.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("read pump did not stop")
	}
	require.Equal(t, []string{"join", "ping"}, server.received())
}

func TestStartCallWithoutSignalURL(t *testing.T) {
	t.Parallel()

	ev := &fakeEvents{}
	s, err := NewService(Config{Room: "lobby"}, ev)
	require.NoError(t, err)
	require.ErrorIs(t, s.StartCall(context.Background()), ErrNoSignalURL)
	require.ErrorIs(t, s.Hold(context.Background()), ErrNotInCall)

	// Camera and microphone work before a call as a local preview.
	id, err := s.StartCamera(context.Background())
	require.NoError(t, err)
	require.Equal(t, "camera-front", id)
	dev, err := s.SwitchCamera(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.CameraBack, dev)
	require.NoError(t, s.UnmuteMicrophone(context.Background()))
	require.Equal(t, TrackStateLive, s.audio.State())

	require.NoError(t, s.EndCall(context.Background()))
	require.Equal(t, []string{"disconnected"}, ev.states)
	require.NoError(t, s.Close())
}

func TestAudioRouteRecordsSelection(t *testing.T) {
	t.Parallel()

	r := NewAudioRoute("")
	require.Equal(t, domain.AudioDeviceSpeaker, r.CurrentDevice())
	require.NoError(t, r.SwitchTo(domain.AudioDeviceHeadphones))
	require.Equal(t, domain.AudioDeviceHeadphones, r.CurrentDevice())
	require.False(t, r.OtherAudioPlaying())
}
