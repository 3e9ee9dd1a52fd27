package rtc

import (
	"sync"
	"sync/atomic"

	"github.com/pion/webrtc/v4"
)

type TrackState int32

const (
	TrackStateLive TrackState = iota
	TrackStateMuted
	TrackStateStopped
)

func (s TrackState) String() string {
	switch s {
	case TrackStateLive:
		return "live"
	case TrackStateMuted:
		return "muted"
	}
	return "stopped"
}

// LocalTrack is one outgoing track. While it is not live its sender carries
// no track, so the SFU stops forwarding without a renegotiation.
type LocalTrack struct {
	Track *webrtc.TrackLocalStaticRTP
	state atomic.Int32

	mu     sync.Mutex
	sender *webrtc.RTPSender
}

func NewLocalTrack(track *webrtc.TrackLocalStaticRTP, initial TrackState) *LocalTrack {
	t := &LocalTrack{Track: track}
	t.state.Store(int32(initial))
	return t
}

func (t *LocalTrack) State() TrackState { return TrackState(t.state.Load()) }

// Attach binds the track to a sender and applies the current state.
func (t *LocalTrack) Attach(sender *webrtc.RTPSender) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sender = sender
	return t.applyLocked()
}

// Detach forgets the sender once its connection is gone.
func (t *LocalTrack) Detach() {
	t.mu.Lock()
	t.sender = nil
	t.mu.Unlock()
}

// Set changes the state and applies it to the attached sender, if any. The
// previous state is kept when the sender refuses the change.
func (t *LocalTrack) Set(state TrackState) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev := t.state.Swap(int32(state))
	if err := t.applyLocked(); err != nil {
		t.state.Store(prev)
		return err
	}
	return nil
}

func (t *LocalTrack) applyLocked() error {
	if t.sender == nil {
		return nil
	}
	if t.State() == TrackStateLive {
		return t.sender.ReplaceTrack(t.Track)
	}
	return t.sender.ReplaceTrack(nil)
}
