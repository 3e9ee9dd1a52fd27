package viewmodel

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Composite/internal/core"
	"github.com/dkeye/Composite/internal/domain"
)

type recorder struct {
	mu    sync.Mutex
	names []string
}

func (r *recorder) middleware() core.Middleware {
	return func(core.MiddlewareAPI) func(core.Dispatcher) core.Dispatcher {
		return func(next core.Dispatcher) core.Dispatcher {
			return func(a core.Action) {
				r.mu.Lock()
				r.names = append(r.names, core.Name(a))
				r.mu.Unlock()
				next(a)
			}
		}
	}
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

func newStore(t *testing.T, opts ...core.StoreOption) *core.Store {
	t.Helper()
	s := core.NewStore(core.NewAppState(core.InitialOptions{DisplayName: "Me"}), opts...)
	t.Cleanup(s.Close)
	return s
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestSetupJoinCall(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	store := newStore(t, core.WithMiddleware(rec.middleware()))
	vm := NewSetupViewModel(store)
	defer vm.Close()

	eventually(t, func() bool { return vm.View().DisplayName == "Me" })

	vm.JoinCall()
	vm.JoinCall()
	require.True(t, vm.View().IsJoinRequested)
	require.Equal(t, core.NavigationInCall, store.State().NavigationState.Status)
	require.Equal(t, []string{"CallStartRequested", "CallingViewLaunched"}, rec.seen())

	// A reset sends the user back to setup with the join button enabled.
	store.Dispatch(core.StatusErrorAndCallReset{InternalError: domain.CallEvicted})
	require.Equal(t, core.NavigationSetup, store.State().NavigationState.Status)
	eventually(t, func() bool { return !vm.View().IsJoinRequested })

	vm.JoinCall()
	require.True(t, vm.View().IsJoinRequested)
}

func TestSetupPreviewToggles(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	vm := NewSetupViewModel(store)
	defer vm.Close()

	vm.ToggleMicrophonePreview()
	require.Equal(t, core.AudioOn, store.State().LocalUserState.AudioState.Operation)
	vm.ToggleMicrophonePreview()
	require.Equal(t, core.AudioOff, store.State().LocalUserState.AudioState.Operation)

	vm.ToggleCameraPreview()
	camera := store.State().LocalUserState.CameraState
	require.Equal(t, core.CameraPending, camera.Operation)
	require.Equal(t, core.TransmissionLocal, camera.Transmission)

	vm.SelectAudioDevice(domain.AudioDeviceSpeaker)
	require.Equal(t, core.SpeakerRequested, store.State().LocalUserState.AudioState.Device)

	vm.Dismiss()
	require.Equal(t, core.NavigationExit, store.State().NavigationState.Status)
}

func TestCallingViewModel(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	store := newStore(t, core.WithMiddleware(rec.middleware()))
	vm := NewCallingViewModel(store, GridCompact, nil)
	defer vm.Close()

	store.Dispatch(core.StateUpdated{Status: domain.CallingStatusConnected})
	store.Dispatch(core.ParticipantListUpdated{Participants: []domain.ParticipantInfoModel{
		participant("b"), participant("a"),
	}})
	eventually(t, func() bool { return vm.Grid().GridsCount() == 2 })
	eventually(t, func() bool { return len(vm.List().Participants()) == 2 })

	vm.ToggleMicrophone()
	require.Equal(t, core.AudioPending, store.State().LocalUserState.AudioState.Operation)
	store.Dispatch(core.MicrophoneMuteStateUpdated{Muted: false})
	vm.ToggleMicrophone()

	vm.ToggleCamera()
	require.Equal(t, core.TransmissionRemote, store.State().LocalUserState.CameraState.Transmission)

	vm.ToggleHold()
	vm.EndCall()

	require.Subset(t, rec.seen(), []string{
		"MicrophoneOnTriggered",
		"MicrophoneOffTriggered",
		"CameraOnTriggered",
		"HoldRequested",
		"CallEndRequested",
	})
}
