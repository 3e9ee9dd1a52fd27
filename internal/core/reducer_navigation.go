package core

import "github.com/dkeye/Composite/internal/domain"

// ReduceNavigation drives the screen state machine. Exit is terminal:
// the host tears the composite down from there.
func ReduceNavigation(state NavigationState, action Action) NavigationState {
	if state.Status == NavigationExit {
		return state
	}
	switch a := action.(type) {
	case CallingViewLaunched:
		state.Status = NavigationInCall
	case ChatViewLaunched:
		state.Status = NavigationInChat
	case ChatViewHeadless:
		state.Status = NavigationHeadless
	case CompositeExit, DismissSetup:
		return NavigationState{Status: NavigationExit}
	case StatusErrorAndCallReset:
		return NavigationState{Status: NavigationSetup}

	case ShowEndCallConfirmation:
		state.EndCallConfirmationVisible = true
	case ShowAudioSelection:
		state.AudioSelectionVisible = true
	case ShowMoreOptions:
		state.MoreOptionsVisible = true
	case ShowSupportForm:
		state.SupportFormVisible = true
	case ShowSupportShare:
		state.SupportShareSheetVisible = true
	case ShowParticipants:
		state.ParticipantsVisible = true
	case ShowParticipantActions:
		p := a.Participant
		state.ParticipantActionsVisible = true
		state.SelectedParticipant = &p
	case HideDrawer:
		return NavigationState{Status: state.Status}
	}
	return state
}

// ReduceError classifies failures. Only a fresh call boundary clears them.
func ReduceError(state ErrorState, action Action) ErrorState {
	switch a := action.(type) {
	case FatalErrorUpdated:
		return ErrorState{InternalError: a.InternalError, Error: a.Err, ErrorCategory: ErrorCategoryFatal}
	case StatusErrorAndCallReset:
		return callStateError(a.InternalError, a.Err)
	case CameraOnFailed:
		return callStateError(domain.CameraOnFailed, a.Err)
	case CameraSwitchFailed:
		return callStateError(domain.CameraSwitchFailed, a.Err)
	case MicrophoneOnFailed:
		return callStateError(domain.MicrophoneOnFailed, a.Err)
	case MicrophoneOffFailed:
		return callStateError(domain.MicrophoneOffFailed, a.Err)
	case AudioDeviceChangeFailed:
		return callStateError(domain.AudioDeviceSwitchFailed, a.Err)
	case CallStartRequested, CallingViewLaunched:
		return ErrorState{ErrorCategory: ErrorCategoryNone}
	}
	return state
}

func callStateError(kind domain.InternalError, err error) ErrorState {
	return ErrorState{InternalError: kind, Error: err, ErrorCategory: ErrorCategoryCallState}
}
