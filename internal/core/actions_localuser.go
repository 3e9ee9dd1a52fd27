package core

import "github.com/dkeye/Composite/internal/domain"

type (
	CameraPreviewOnTriggered struct{ localUserCase }
	CameraOnTriggered        struct{ localUserCase }
	CameraOffTriggered       struct{ localUserCase }

	CameraOnSucceeded struct {
		localUserCase
		VideoStreamID string
	}
	CameraOnFailed struct {
		localUserCase
		Err error
	}
	CameraOffSucceeded struct{ localUserCase }
	CameraOffFailed    struct {
		localUserCase
		Err error
	}
	CameraPausedSucceeded struct{ localUserCase }
	CameraPausedFailed    struct {
		localUserCase
		Err error
	}

	CameraSwitchTriggered struct{ localUserCase }
	CameraSwitchSucceeded struct {
		localUserCase
		Device domain.CameraDevice
	}
	CameraSwitchFailed struct {
		localUserCase
		Previous CameraDeviceSelectionStatus
		Err      error
	}

	MicrophoneOnTriggered  struct{ localUserCase }
	MicrophoneOffTriggered struct{ localUserCase }
	MicrophonePreviewOn    struct{ localUserCase }
	MicrophonePreviewOff   struct{ localUserCase }
	MicrophoneOnFailed     struct {
		localUserCase
		Err error
	}
	MicrophoneOffFailed struct {
		localUserCase
		Err error
	}
	MicrophoneMuteStateUpdated struct {
		localUserCase
		Muted bool
	}

	AudioDeviceChangeRequested struct {
		localUserCase
		Device domain.AudioDeviceType
	}
	AudioDeviceChangeSucceeded struct {
		localUserCase
		Device domain.AudioDeviceType
	}
	AudioDeviceChangeFailed struct {
		localUserCase
		Err error
	}

	DisplayNameUpdated struct {
		localUserCase
		Name string
	}
	ParticipantRoleUpdated struct {
		localUserCase
		Role domain.ParticipantRole
	}
)

func (a CameraOnFailed) equal(other Action) bool {
	o, ok := other.(CameraOnFailed)
	return ok && sameError(a.Err, o.Err)
}

func (a CameraOffFailed) equal(other Action) bool {
	o, ok := other.(CameraOffFailed)
	return ok && sameError(a.Err, o.Err)
}

func (a CameraPausedFailed) equal(other Action) bool {
	o, ok := other.(CameraPausedFailed)
	return ok && sameError(a.Err, o.Err)
}

func (a CameraSwitchFailed) equal(other Action) bool {
	o, ok := other.(CameraSwitchFailed)
	return ok && a.Previous == o.Previous && sameError(a.Err, o.Err)
}

func (a MicrophoneOnFailed) equal(other Action) bool {
	o, ok := other.(MicrophoneOnFailed)
	return ok && sameError(a.Err, o.Err)
}

func (a MicrophoneOffFailed) equal(other Action) bool {
	o, ok := other.(MicrophoneOffFailed)
	return ok && sameError(a.Err, o.Err)
}

func (a AudioDeviceChangeFailed) equal(other Action) bool {
	o, ok := other.(AudioDeviceChangeFailed)
	return ok && sameError(a.Err, o.Err)
}
