package calling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Composite/internal/core"
	"github.com/dkeye/Composite/internal/domain"
)

type fakeService struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeService) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.fail[name]
}

func (f *fakeService) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeService) StartCall(context.Context) error { return f.record("StartCall") }
func (f *fakeService) EndCall(context.Context) error   { return f.record("EndCall") }
func (f *fakeService) Hold(context.Context) error      { return f.record("Hold") }
func (f *fakeService) Resume(context.Context) error    { return f.record("Resume") }
func (f *fakeService) StopCamera(context.Context) error {
	return f.record("StopCamera")
}
func (f *fakeService) PauseCamera(context.Context) error {
	return f.record("PauseCamera")
}
func (f *fakeService) MuteMicrophone(context.Context) error {
	return f.record("MuteMicrophone")
}
func (f *fakeService) UnmuteMicrophone(context.Context) error {
	return f.record("UnmuteMicrophone")
}

func (f *fakeService) StartCamera(context.Context) (string, error) {
	if err := f.record("StartCamera"); err != nil {
		return "", err
	}
	return "local-video", nil
}

func (f *fakeService) SwitchCamera(context.Context) (domain.CameraDevice, error) {
	if err := f.record("SwitchCamera"); err != nil {
		return "", err
	}
	return domain.CameraBack, nil
}

func setup(t *testing.T, fail map[string]error) (*core.Store, *fakeService) {
	t.Helper()
	svc := &fakeService{fail: fail}
	h := NewHandler(svc)
	store := core.NewStore(core.NewAppState(core.InitialOptions{}), core.WithMiddleware(h.Middleware()))
	t.Cleanup(func() {
		h.Close()
		store.Close()
	})
	return store, svc
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestCameraLifecycle(t *testing.T) {
	t.Parallel()

	store, svc := setup(t, nil)
	camera := func() core.CameraState { return store.State().LocalUserState.CameraState }

	store.Dispatch(core.CameraOnTriggered{})
	eventually(t, func() bool { return camera().Operation == core.CameraOn })
	require.Equal(t, "local-video", store.State().LocalUserState.LocalVideoStreamIdentifier)

	store.Dispatch(core.BackgroundEntered{})
	eventually(t, func() bool { return camera().Operation == core.CameraPaused })

	store.Dispatch(core.ForegroundEntered{})
	eventually(t, func() bool { return camera().Operation == core.CameraOn })

	store.Dispatch(core.CameraSwitchTriggered{})
	eventually(t, func() bool { return camera().Device == core.CameraDeviceBack })

	store.Dispatch(core.CameraOffTriggered{})
	eventually(t, func() bool { return camera().Operation == core.CameraOff })

	require.Equal(t, []string{"StartCamera", "PauseCamera", "StartCamera", "SwitchCamera", "StopCamera"}, svc.called())
}

func TestBackgroundWithCameraOffIsIgnored(t *testing.T) {
	t.Parallel()

	store, svc := setup(t, nil)
	store.Dispatch(core.BackgroundEntered{})
	store.Dispatch(core.ForegroundEntered{})
	require.Never(t, func() bool { return len(svc.called()) > 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestCameraFailures(t *testing.T) {
	t.Parallel()

	store, _ := setup(t, map[string]error{
		"StartCamera":  errors.New("no device"),
		"SwitchCamera": errors.New("single camera"),
	})

	store.Dispatch(core.CameraSwitchTriggered{})
	eventually(t, func() bool { return store.State().ErrorState.InternalError == domain.CameraSwitchFailed })
	require.Equal(t, core.CameraDeviceFront, store.State().LocalUserState.CameraState.Device)

	store.Dispatch(core.CameraOnTriggered{})
	eventually(t, func() bool { return store.State().LocalUserState.CameraState.Operation == core.CameraError })
	require.Equal(t, domain.CameraOnFailed, store.State().ErrorState.InternalError)
	require.Equal(t, core.ErrorCategoryCallState, store.State().ErrorState.ErrorCategory)
}

func TestMicrophone(t *testing.T) {
	t.Parallel()

	store, _ := setup(t, map[string]error{"MuteMicrophone": errors.New("stuck")})
	audio := func() core.AudioOperationalStatus { return store.State().LocalUserState.AudioState.Operation }

	store.Dispatch(core.MicrophoneOnTriggered{})
	eventually(t, func() bool { return audio() == core.AudioOn })

	store.Dispatch(core.MicrophoneOffTriggered{})
	eventually(t, func() bool { return store.State().ErrorState.InternalError == domain.MicrophoneOffFailed })
	require.Equal(t, core.AudioOn, audio())
}

func TestCallFailures(t *testing.T) {
	t.Parallel()

	t.Run("join is fatal", func(t *testing.T) {
		t.Parallel()
		store, _ := setup(t, map[string]error{"StartCall": errors.New("rejected")})
		store.Dispatch(core.CallStartRequested{})
		eventually(t, func() bool { return store.State().ErrorState.ErrorCategory == core.ErrorCategoryFatal })
		require.Equal(t, domain.CallJoinFailed, store.State().ErrorState.InternalError)
	})

	t.Run("end is fatal", func(t *testing.T) {
		t.Parallel()
		store, _ := setup(t, map[string]error{"EndCall": errors.New("gone")})
		store.Dispatch(core.CallEndRequested{})
		eventually(t, func() bool { return store.State().ErrorState.InternalError == domain.CallEndFailed })
	})

	t.Run("hold resets the call", func(t *testing.T) {
		t.Parallel()
		store, _ := setup(t, map[string]error{"Hold": errors.New("busy")})
		store.Dispatch(core.CallingViewLaunched{})
		store.Dispatch(core.HoldRequested{})
		eventually(t, func() bool { return store.State().ErrorState.InternalError == domain.CallHoldFailed })
		require.Equal(t, core.NavigationSetup, store.State().NavigationState.Status)
	})

	t.Run("successful join dispatches nothing", func(t *testing.T) {
		t.Parallel()
		store, svc := setup(t, nil)
		store.Dispatch(core.CallStartRequested{})
		eventually(t, func() bool { return len(svc.called()) == 1 })
		seq := store.Snapshot().Seq
		require.Never(t, func() bool { return store.Snapshot().Seq != seq }, 50*time.Millisecond, 5*time.Millisecond)
	})
}

func TestCameraOffAndPauseFailuresKeepTheirKind(t *testing.T) {
	t.Parallel()

	store, _ := setup(t, map[string]error{
		"StopCamera":  errors.New("busy"),
		"PauseCamera": errors.New("busy"),
	})
	camera := func() core.CameraState { return store.State().LocalUserState.CameraState }

	store.Dispatch(core.CameraOnTriggered{})
	eventually(t, func() bool { return camera().Operation == core.CameraOn })
	store.Dispatch(core.BackgroundEntered{})
	eventually(t, func() bool { return camera().Operation == core.CameraError })
	require.Equal(t, string(domain.CameraPauseFailed), domain.CodeOf(camera().Error))

	store.Dispatch(core.CameraOffTriggered{})
	eventually(t, func() bool { return camera().Operation == core.CameraError && camera().Error != nil })
	require.Equal(t, string(domain.CameraOffFailed), domain.CodeOf(camera().Error))
}

func TestJoinAppliesPreviewedMicrophone(t *testing.T) {
	t.Parallel()

	t.Run("previewed on", func(t *testing.T) {
		t.Parallel()
		store, svc := setup(t, nil)
		store.Dispatch(core.MicrophonePreviewOn{})
		store.Dispatch(core.CallStartRequested{})
		eventually(t, func() bool { return len(svc.called()) == 2 })
		require.Equal(t, []string{"StartCall", "UnmuteMicrophone"}, svc.called())
		require.Equal(t, core.AudioOn, store.State().LocalUserState.AudioState.Operation)
	})

	t.Run("unmute failure", func(t *testing.T) {
		t.Parallel()
		store, _ := setup(t, map[string]error{"UnmuteMicrophone": errors.New("no input")})
		store.Dispatch(core.MicrophonePreviewOn{})
		store.Dispatch(core.CallStartRequested{})
		eventually(t, func() bool { return store.State().ErrorState.InternalError == domain.MicrophoneOnFailed })
		require.Equal(t, core.AudioOff, store.State().LocalUserState.AudioState.Operation)
	})
}
