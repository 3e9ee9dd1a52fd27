package viewmodel

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Composite/internal/core"
	"github.com/dkeye/Composite/internal/domain"
)

// Screen is a view model owned by the router for one navigation status.
type Screen interface {
	Name() string
	Close()
}

// SetupView is what the setup screen renders.
type SetupView struct {
	DisplayName     string                          `json:"displayName"`
	IsJoinRequested bool                            `json:"isJoinRequested"`
	Camera          core.CameraOperationalStatus    `json:"camera"`
	Microphone      core.AudioOperationalStatus     `json:"microphone"`
	AudioDevice     core.AudioDeviceSelectionStatus `json:"audioDevice"`
	ErrorCategory   core.ErrorCategory              `json:"errorCategory"`
}

// SetupViewModel backs the pre-call screen: device preview and join.
type SetupViewModel struct {
	store  Store
	log    zerolog.Logger
	cancel func()

	mu   sync.RWMutex
	view SetupView
}

func NewSetupViewModel(store Store) *SetupViewModel {
	vm := &SetupViewModel{
		store: store,
		log:   log.With().Str("module", "viewmodel.setup").Logger(),
	}
	vm.cancel = store.Subscribe("setup-view", func(s core.Snapshot) { vm.receive(s.State) })
	return vm
}

func (vm *SetupViewModel) Name() string { return "setup" }

func (vm *SetupViewModel) Close() { vm.cancel() }

func (vm *SetupViewModel) View() SetupView {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.view
}

func (vm *SetupViewModel) receive(st core.AppState) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.view.DisplayName = st.LocalUserState.DisplayName
	vm.view.Camera = st.LocalUserState.CameraState.Operation
	vm.view.Microphone = st.LocalUserState.AudioState.Operation
	vm.view.AudioDevice = st.LocalUserState.AudioState.Device
	vm.view.ErrorCategory = st.ErrorState.ErrorCategory
	// A failed join lets the user try again.
	if st.ErrorState.ErrorCategory != core.ErrorCategoryNone {
		vm.view.IsJoinRequested = false
	}
}

// JoinCall starts the call and hands over to the calling screen. Repeated
// taps while a join is in flight are ignored.
func (vm *SetupViewModel) JoinCall() {
	vm.mu.Lock()
	if vm.view.IsJoinRequested {
		vm.mu.Unlock()
		return
	}
	vm.view.IsJoinRequested = true
	vm.mu.Unlock()

	vm.log.Info().Msg("join requested")
	vm.store.Dispatch(core.CallStartRequested{})
	vm.store.Dispatch(core.CallingViewLaunched{})
}

func (vm *SetupViewModel) ToggleCameraPreview() {
	if vm.store.State().LocalUserState.CameraState.Operation == core.CameraOn {
		vm.store.Dispatch(core.CameraOffTriggered{})
		return
	}
	vm.store.Dispatch(core.CameraPreviewOnTriggered{})
}

func (vm *SetupViewModel) ToggleMicrophonePreview() {
	if vm.store.State().LocalUserState.AudioState.Operation == core.AudioOn {
		vm.store.Dispatch(core.MicrophonePreviewOff{})
		return
	}
	vm.store.Dispatch(core.MicrophonePreviewOn{})
}

func (vm *SetupViewModel) SelectAudioDevice(d domain.AudioDeviceType) {
	vm.store.Dispatch(core.AudioDeviceChangeRequested{Device: d})
}

func (vm *SetupViewModel) Dismiss() {
	vm.store.Dispatch(core.DismissSetup{})
}

// CallingViewModel backs the in-call screen and owns the grid and list.
type CallingViewModel struct {
	store  Store
	grid   *ParticipantGridViewModel
	list   *ParticipantsListViewModel
	log    zerolog.Logger
	cancel func()
}

func NewCallingViewModel(store Store, layout GridLayout, viewData ViewDataLookup) *CallingViewModel {
	st := store.State()
	vm := &CallingViewModel{
		store: store,
		grid:  NewParticipantGridViewModel(layout, viewData),
		list:  NewParticipantsListViewModel(st.LocalUserState, viewData),
		log:   log.With().Str("module", "viewmodel.calling").Logger(),
	}
	vm.grid.OnAnnouncement(func(msg string) {
		vm.log.Info().Str("announcement", msg).Msg("roster")
	})
	vm.cancel = store.Subscribe("calling-view", func(s core.Snapshot) {
		vm.grid.Update(s.State.CallingState, s.State.RemoteParticipantsState)
		vm.list.Update(s.State.LocalUserState, s.State.RemoteParticipantsState)
	})
	return vm
}

func (vm *CallingViewModel) Name() string { return "calling" }

func (vm *CallingViewModel) Close() { vm.cancel() }

func (vm *CallingViewModel) Grid() *ParticipantGridViewModel { return vm.grid }

func (vm *CallingViewModel) List() *ParticipantsListViewModel { return vm.list }

func (vm *CallingViewModel) EndCall() {
	vm.store.Dispatch(core.CallEndRequested{})
}

func (vm *CallingViewModel) ToggleMicrophone() {
	if vm.store.State().LocalUserState.AudioState.Operation == core.AudioOn {
		vm.store.Dispatch(core.MicrophoneOffTriggered{})
		return
	}
	vm.store.Dispatch(core.MicrophoneOnTriggered{})
}

func (vm *CallingViewModel) ToggleCamera() {
	if vm.store.State().LocalUserState.CameraState.Operation == core.CameraOn {
		vm.store.Dispatch(core.CameraOffTriggered{})
		return
	}
	vm.store.Dispatch(core.CameraOnTriggered{})
}

func (vm *CallingViewModel) SelectAudioDevice(d domain.AudioDeviceType) {
	vm.store.Dispatch(core.AudioDeviceChangeRequested{Device: d})
}

func (vm *CallingViewModel) ToggleHold() {
	if vm.store.State().CallingState.Status == domain.CallingStatusLocalHold {
		vm.store.Dispatch(core.ResumeRequested{})
		return
	}
	vm.store.Dispatch(core.HoldRequested{})
}
