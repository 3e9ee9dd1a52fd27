package core

import (
	"slices"

	"github.com/dkeye/Composite/internal/domain"
)

// Permission.
type (
	AudioPermissionRequested  struct{ permissionCase }
	AudioPermissionGranted    struct{ permissionCase }
	AudioPermissionDenied     struct{ permissionCase }
	AudioPermissionNotAsked   struct{ permissionCase }
	CameraPermissionRequested struct{ permissionCase }
	CameraPermissionGranted   struct{ permissionCase }
	CameraPermissionDenied    struct{ permissionCase }
	CameraPermissionNotAsked  struct{ permissionCase }
)

// Lifecycle.
type (
	ForegroundEntered struct{ lifecycleCase }
	BackgroundEntered struct{ lifecycleCase }
)

// Error.
type (
	FatalErrorUpdated struct {
		errorCase
		InternalError domain.InternalError
		Err           error
	}

	// StatusErrorAndCallReset reports a call-ending error and resets the
	// call, the roster and navigation back to setup.
	StatusErrorAndCallReset struct {
		errorCase
		InternalError domain.InternalError
		Err           error
	}
)

func (a FatalErrorUpdated) equal(other Action) bool {
	o, ok := other.(FatalErrorUpdated)
	return ok && a.InternalError == o.InternalError && sameError(a.Err, o.Err)
}

func (a StatusErrorAndCallReset) equal(other Action) bool {
	o, ok := other.(StatusErrorAndCallReset)
	return ok && a.InternalError == o.InternalError && sameError(a.Err, o.Err)
}

// Navigation.
type (
	CompositeExit    struct{ navigationCase }
	ChatViewLaunched struct{ navigationCase }
	ChatViewHeadless struct{ navigationCase }

	ShowEndCallConfirmation struct{ navigationCase }
	ShowAudioSelection      struct{ navigationCase }
	ShowMoreOptions         struct{ navigationCase }
	ShowSupportForm         struct{ navigationCase }
	ShowSupportShare        struct{ navigationCase }
	ShowParticipants        struct{ navigationCase }
	ShowParticipantActions  struct {
		navigationCase
		Participant domain.ParticipantInfoModel
	}
	HideDrawer struct{ navigationCase }
)

func (a ShowParticipantActions) equal(other Action) bool {
	o, ok := other.(ShowParticipantActions)
	return ok && a.Participant.Equal(o.Participant)
}

// Remote participants.
type (
	// ParticipantListUpdated carries a complete roster snapshot.
	ParticipantListUpdated struct {
		remoteParticipantsCase
		Participants []domain.ParticipantInfoModel
	}

	DominantSpeakersUpdated struct {
		remoteParticipantsCase
		Speakers []string
	}
)

func (a ParticipantListUpdated) equal(other Action) bool {
	o, ok := other.(ParticipantListUpdated)
	return ok && sameParticipants(a.Participants, o.Participants)
}

func (a DominantSpeakersUpdated) equal(other Action) bool {
	o, ok := other.(DominantSpeakersUpdated)
	return ok && slices.Equal(a.Speakers, o.Speakers)
}

// Audio session.
type (
	AudioInterrupted    struct{ audioSessionCase }
	AudioInterruptEnded struct{ audioSessionCase }
	AudioEngaged        struct{ audioSessionCase }
)

// Diagnostics.
type (
	NetworkQualityUpdated struct {
		diagnosticsCase
		Quality domain.NetworkQuality
	}
	MediaDiagnosticUpdated struct {
		diagnosticsCase
		Diagnostic domain.MediaDiagnostic
		Active     bool
	}
)

// Captions.
type (
	CaptionsStartRequested struct{ captionsCase }
	CaptionsStarted        struct{ captionsCase }
	CaptionsStopped        struct{ captionsCase }
	CaptionsReceived       struct {
		captionsCase
		Caption Caption
	}
	CaptionsFailed struct {
		captionsCase
		Err error
	}
)

func (a CaptionsReceived) equal(other Action) bool {
	o, ok := other.(CaptionsReceived)
	return ok && a.Caption.equal(o.Caption)
}

func (a CaptionsFailed) equal(other Action) bool {
	o, ok := other.(CaptionsFailed)
	return ok && sameError(a.Err, o.Err)
}

// Real-time text.
type (
	RttMessageReceived struct {
		rttCase
		Message RttMessage
	}
	RttSendRequested struct {
		rttCase
		Text string
	}
)

func (a RttMessageReceived) equal(other Action) bool {
	o, ok := other.(RttMessageReceived)
	return ok && a.Message.equal(o.Message)
}

// Toast.
type (
	ToastShown struct {
		toastCase
		Notification ToastNotification
	}
	ToastDismissed struct{ toastCase }
)

// Button view data.
type (
	ButtonVisibilityUpdated struct {
		buttonViewDataCase
		Button  Button
		Visible bool
	}
	ButtonEnabledUpdated struct {
		buttonViewDataCase
		Button  Button
		Enabled bool
	}
)
