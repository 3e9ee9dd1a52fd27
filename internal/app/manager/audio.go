package manager

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/dkeye/Composite/internal/core"
	"github.com/dkeye/Composite/internal/domain"
)

// AudioRouter is the platform audio route.
type AudioRouter interface {
	CurrentDevice() domain.AudioDeviceType
	SwitchTo(device domain.AudioDeviceType) error
	OtherAudioPlaying() bool
}

const DefaultEngagePollInterval = time.Second

type AudioSessionOption func(*AudioSessionManager)

// WithEngagePollInterval sets how often an interrupted session checks
// whether it can take the audio back.
func WithEngagePollInterval(d time.Duration) AudioSessionOption {
	return func(m *AudioSessionManager) { m.poll = d }
}

// AudioSessionManager applies requested audio routes, reports route
// changes made by the platform and recovers from interruptions.
type AudioSessionManager struct {
	store  Store
	router AudioRouter
	poll   time.Duration
	log    zerolog.Logger

	mu           sync.Mutex
	device       core.AudioDeviceSelectionStatus
	session      core.AudioSessionStatus
	stopDetector context.CancelFunc
	cancel       func()
	wg           conc.WaitGroup
}

func NewAudioSessionManager(store Store, router AudioRouter, opts ...AudioSessionOption) *AudioSessionManager {
	m := &AudioSessionManager{
		store:  store,
		router: router,
		poll:   DefaultEngagePollInterval,
		log:    log.With().Str("module", "manager.audio").Logger(),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start asks for the route the platform currently uses, then follows state.
func (m *AudioSessionManager) Start() {
	m.cancel = m.store.Subscribe("audio-session-manager", func(s core.Snapshot) { m.receive(s.State) })
	m.store.Dispatch(core.AudioDeviceChangeRequested{Device: m.router.CurrentDevice()})
}

func (m *AudioSessionManager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Lock()
	m.stopEngageDetectorLocked()
	m.mu.Unlock()
	m.wg.Wait()
}

// RouteChanged is called by the platform when the route moved on its own.
func (m *AudioSessionManager) RouteChanged(device domain.AudioDeviceType) {
	if m.store.State().LocalUserState.AudioState.Device == core.SelectedStatus(device) {
		return
	}
	m.log.Info().Str("device", string(device)).Msg("route changed by platform")
	m.store.Dispatch(core.AudioDeviceChangeSucceeded{Device: device})
}

func (m *AudioSessionManager) Interrupted() {
	m.store.Dispatch(core.AudioInterrupted{})
}

func (m *AudioSessionManager) InterruptionEnded() {
	m.store.Dispatch(core.AudioInterruptEnded{})
}

func (m *AudioSessionManager) receive(st core.AppState) {
	m.mu.Lock()
	device := st.LocalUserState.AudioState.Device
	deviceChanged := device != m.device
	m.device = device

	session := st.AudioSessionState.Status
	if session != m.session {
		m.session = session
		if session == core.AudioSessionInterrupted {
			m.startEngageDetectorLocked()
		} else {
			m.stopEngageDetectorLocked()
		}
	}
	m.mu.Unlock()

	if !deviceChanged {
		return
	}
	if requested, ok := device.Requested(); ok {
		m.switchTo(requested)
	}
}

func (m *AudioSessionManager) switchTo(device domain.AudioDeviceType) {
	if err := m.router.SwitchTo(device); err != nil {
		m.log.Warn().Err(err).Str("device", string(device)).Msg("audio route switch failed")
		m.store.Dispatch(core.AudioDeviceChangeFailed{Err: domain.NewFailure(domain.AudioDeviceSwitchFailed, err)})
		return
	}
	m.store.Dispatch(core.AudioDeviceChangeSucceeded{Device: device})
}

func (m *AudioSessionManager) startEngageDetectorLocked() {
	if m.stopDetector != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.stopDetector = cancel
	m.wg.Go(func() {
		t := time.NewTicker(m.poll)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if m.router.OtherAudioPlaying() {
					continue
				}
				m.log.Debug().Msg("audio free again")
				m.store.Dispatch(core.AudioEngaged{})
				return
			}
		}
	})
}

func (m *AudioSessionManager) stopEngageDetectorLocked() {
	if m.stopDetector != nil {
		m.stopDetector()
		m.stopDetector = nil
	}
}
