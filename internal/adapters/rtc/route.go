package rtc

import (
	"sync"

	"github.com/dkeye/Composite/internal/domain"
)

// AudioRoute is the audio route of a server-side peer. Playback happens in
// the browser, so a switch only records the selection.
type AudioRoute struct {
	mu      sync.Mutex
	current domain.AudioDeviceType
}

func NewAudioRoute(initial domain.AudioDeviceType) *AudioRoute {
	if initial == "" {
		initial = domain.AudioDeviceSpeaker
	}
	return &AudioRoute{current: initial}
}

func (r *AudioRoute) CurrentDevice() domain.AudioDeviceType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *AudioRoute) SwitchTo(device domain.AudioDeviceType) error {
	r.mu.Lock()
	r.current = device
	r.mu.Unlock()
	return nil
}

// OtherAudioPlaying is always false; nothing else shares the peer's output.
func (r *AudioRoute) OtherAudioPlaying() bool { return false }
