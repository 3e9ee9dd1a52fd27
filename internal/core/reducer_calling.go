package core

import "github.com/dkeye/Composite/internal/domain"

func ReduceCalling(state CallingState, action Action) CallingState {
	switch a := action.(type) {
	case StateUpdated:
		state.Status = a.Status
	case RecordingStateUpdated:
		state.IsRecordingActive = a.Active
	case TranscriptionStateUpdated:
		state.IsTranscriptionActive = a.Active
	case CallIDUpdated:
		state.CallID = a.CallID
	case CallStartTimeUpdated:
		state.CallStartDate = a.At
	case CallStartRequested:
		state.Status = domain.CallingStatusNone
	case StatusErrorAndCallReset:
		return CallingState{Status: domain.CallingStatusNone}
	}
	return state
}

func ReduceLocalUser(state LocalUserState, action Action) LocalUserState {
	switch a := action.(type) {
	case CameraPreviewOnTriggered:
		state.CameraState.Operation = CameraPending
		state.CameraState.Transmission = TransmissionLocal
		state.CameraState.Error = nil
	case CameraOnTriggered:
		state.CameraState.Operation = CameraPending
		state.CameraState.Transmission = TransmissionRemote
		state.CameraState.Error = nil
	case CameraOffTriggered:
		state.CameraState.Operation = CameraPending
		state.CameraState.Error = nil
	case CameraOnSucceeded:
		state.CameraState.Operation = CameraOn
		state.LocalVideoStreamIdentifier = a.VideoStreamID
	case CameraOffSucceeded:
		state.CameraState.Operation = CameraOff
		state.LocalVideoStreamIdentifier = ""
	case CameraPausedSucceeded:
		state.CameraState.Operation = CameraPaused
	case CameraOnFailed:
		state.CameraState.Operation = CameraError
		state.CameraState.Error = a.Err
	case CameraOffFailed:
		state.CameraState.Operation = CameraError
		state.CameraState.Error = a.Err
	case CameraPausedFailed:
		state.CameraState.Operation = CameraError
		state.CameraState.Error = a.Err

	case CameraSwitchTriggered:
		state.CameraState.Device = CameraDeviceSwitching
	case CameraSwitchSucceeded:
		state.CameraState.Device = CameraDeviceFront
		if a.Device == domain.CameraBack {
			state.CameraState.Device = CameraDeviceBack
		}
	case CameraSwitchFailed:
		state.CameraState.Device = a.Previous
		state.CameraState.Error = a.Err

	case MicrophoneOnTriggered, MicrophoneOffTriggered:
		state.AudioState.Operation = AudioPending
		state.AudioState.Error = nil
	case MicrophonePreviewOn:
		state.AudioState.Operation = AudioOn
	case MicrophonePreviewOff:
		state.AudioState.Operation = AudioOff
	case MicrophoneMuteStateUpdated:
		state.AudioState.Operation = AudioOn
		if a.Muted {
			state.AudioState.Operation = AudioOff
		}
	case MicrophoneOnFailed:
		state.AudioState.Operation = AudioOff
		state.AudioState.Error = a.Err
	case MicrophoneOffFailed:
		state.AudioState.Operation = AudioOn
		state.AudioState.Error = a.Err

	// No pairing check between requested and selected devices: the OS may
	// reroute on its own and the last report wins.
	case AudioDeviceChangeRequested:
		state.AudioState.Device = RequestedStatus(a.Device)
	case AudioDeviceChangeSucceeded:
		state.AudioState.Device = SelectedStatus(a.Device)
		state.AudioState.Error = nil
	case AudioDeviceChangeFailed:
		state.AudioState.Device = AudioDeviceError
		state.AudioState.Error = a.Err

	case DisplayNameUpdated:
		state.DisplayName = a.Name
	case ParticipantRoleUpdated:
		state.ParticipantRole = a.Role
	}
	return state
}
