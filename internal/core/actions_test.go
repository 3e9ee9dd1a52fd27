package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Composite/internal/domain"
)

// everyAction returns one value of every action case.
func everyAction() []Action {
	p := domain.ParticipantInfoModel{UserIdentifier: "u1", DisplayName: "Ann", IsRemoteUser: true}
	boom := errors.New("boom")
	return []Action{
		CallStartRequested{}, CallEndRequested{}, SetupCall{}, DismissSetup{}, CallingViewLaunched{},
		StateUpdated{Status: domain.CallingStatusConnected},
		CallIDUpdated{CallID: "call-1"},
		CallStartTimeUpdated{At: time.Unix(100, 0)},
		RecordingStateUpdated{Active: true},
		TranscriptionStateUpdated{Active: true},
		HoldRequested{}, ResumeRequested{},

		CameraPreviewOnTriggered{}, CameraOnTriggered{}, CameraOffTriggered{},
		CameraOnSucceeded{VideoStreamID: "v1"}, CameraOnFailed{Err: boom},
		CameraOffSucceeded{}, CameraOffFailed{Err: boom},
		CameraPausedSucceeded{}, CameraPausedFailed{Err: boom},
		CameraSwitchTriggered{}, CameraSwitchSucceeded{Device: domain.CameraBack},
		CameraSwitchFailed{Previous: CameraDeviceFront, Err: boom},
		MicrophoneOnTriggered{}, MicrophoneOffTriggered{}, MicrophonePreviewOn{}, MicrophonePreviewOff{},
		MicrophoneOnFailed{Err: boom}, MicrophoneOffFailed{Err: boom},
		MicrophoneMuteStateUpdated{Muted: true},
		AudioDeviceChangeRequested{Device: domain.AudioDeviceSpeaker},
		AudioDeviceChangeSucceeded{Device: domain.AudioDeviceSpeaker},
		AudioDeviceChangeFailed{Err: boom},
		DisplayNameUpdated{Name: "Bob"},
		ParticipantRoleUpdated{Role: domain.RolePresenter},

		AudioPermissionRequested{}, AudioPermissionGranted{}, AudioPermissionDenied{}, AudioPermissionNotAsked{},
		CameraPermissionRequested{}, CameraPermissionGranted{}, CameraPermissionDenied{}, CameraPermissionNotAsked{},

		ForegroundEntered{}, BackgroundEntered{},

		FatalErrorUpdated{InternalError: domain.CallJoinFailed, Err: boom},
		StatusErrorAndCallReset{InternalError: domain.CallEvicted},

		CompositeExit{}, ChatViewLaunched{}, ChatViewHeadless{},
		ShowEndCallConfirmation{}, ShowAudioSelection{}, ShowMoreOptions{}, ShowSupportForm{},
		ShowSupportShare{}, ShowParticipants{}, ShowParticipantActions{Participant: p}, HideDrawer{},

		ParticipantListUpdated{Participants: []domain.ParticipantInfoModel{p}},
		DominantSpeakersUpdated{Speakers: []string{"u1"}},

		AudioInterrupted{}, AudioInterruptEnded{}, AudioEngaged{},

		NetworkQualityUpdated{Quality: domain.NetworkQualityPoor},
		MediaDiagnosticUpdated{Diagnostic: domain.DiagnosticCameraFrozen, Active: true},

		CaptionsStartRequested{}, CaptionsStarted{}, CaptionsStopped{},
		CaptionsReceived{Caption: Caption{SpeakerID: "u1", Text: "hi"}},
		CaptionsFailed{Err: boom},

		RttMessageReceived{Message: RttMessage{SenderID: "u1", Text: "h"}},
		RttSendRequested{Text: "hello"},

		ToastShown{Notification: ToastNotification{Kind: ToastInfo, Message: "m"}},
		ToastDismissed{},

		ButtonVisibilityUpdated{Button: ButtonCamera, Visible: false},
		ButtonEnabledUpdated{Button: ButtonCamera, Enabled: false},
	}
}

func TestEqualComparesErrorsByCode(t *testing.T) {
	t.Parallel()

	a := FatalErrorUpdated{InternalError: domain.CallJoinFailed, Err: domain.NewFailure(domain.CallJoinFailed, errors.New("socket reset"))}
	b := FatalErrorUpdated{InternalError: domain.CallJoinFailed, Err: domain.NewFailure(domain.CallJoinFailed, errors.New("timeout"))}
	require.True(t, Equal(a, b))

	c := FatalErrorUpdated{InternalError: domain.CallJoinFailed, Err: domain.NewFailure(domain.CallEndFailed, nil)}
	require.False(t, Equal(a, c))

	// Two uncoded errors share the "unknown" code.
	require.True(t, Equal(CameraOnFailed{Err: errors.New("x")}, CameraOnFailed{Err: errors.New("y")}))
	require.False(t, Equal(CameraOnFailed{Err: errors.New("x")}, CameraOnFailed{}))
}

func TestEqualStructural(t *testing.T) {
	t.Parallel()

	for _, a := range everyAction() {
		require.True(t, Equal(a, a), Name(a))
	}

	require.True(t, Equal(StateUpdated{Status: domain.CallingStatusConnected}, StateUpdated{Status: domain.CallingStatusConnected}))
	require.False(t, Equal(StateUpdated{Status: domain.CallingStatusConnected}, StateUpdated{Status: domain.CallingStatusInLobby}))
	require.False(t, Equal(CameraOnTriggered{}, CameraOffTriggered{}))
	require.False(t, Equal(CameraOnFailed{}, CameraOffFailed{}))
	require.True(t, Equal(nil, nil))
	require.False(t, Equal(CompositeExit{}, nil))

	p := domain.ParticipantInfoModel{UserIdentifier: "u1", RecentSpeakingStamp: time.Unix(5, 0)}
	q := p
	q.RecentSpeakingStamp = time.Unix(5, 0).In(time.FixedZone("x", 3600))
	require.True(t, Equal(
		ParticipantListUpdated{Participants: []domain.ParticipantInfoModel{p}},
		ParticipantListUpdated{Participants: []domain.ParticipantInfoModel{q}},
	))
}

func TestName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "StateUpdated", Name(StateUpdated{}))
	require.Equal(t, "CompositeExit", Name(CompositeExit{}))
	require.Equal(t, "<nil>", Name(nil))
}
