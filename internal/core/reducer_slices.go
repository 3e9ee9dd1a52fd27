package core

import "slices"

func ReducePermission(state PermissionState, action Action) PermissionState {
	switch action.(type) {
	case AudioPermissionRequested:
		state.AudioPermission = PermissionRequesting
	case AudioPermissionGranted:
		state.AudioPermission = PermissionGranted
	case AudioPermissionDenied:
		state.AudioPermission = PermissionDenied
	case AudioPermissionNotAsked:
		state.AudioPermission = PermissionNotAsked
	case CameraPermissionRequested:
		state.CameraPermission = PermissionRequesting
	case CameraPermissionGranted:
		state.CameraPermission = PermissionGranted
	case CameraPermissionDenied:
		state.CameraPermission = PermissionDenied
	case CameraPermissionNotAsked:
		state.CameraPermission = PermissionNotAsked
	}
	return state
}

func ReduceLifeCycle(state LifeCycleState, action Action) LifeCycleState {
	switch action.(type) {
	case ForegroundEntered:
		state.CurrentStatus = AppForeground
	case BackgroundEntered:
		state.CurrentStatus = AppBackground
	}
	return state
}

func ReduceAudioSession(state AudioSessionState, action Action) AudioSessionState {
	switch action.(type) {
	case AudioInterrupted:
		state.Status = AudioSessionInterrupted
	case AudioInterruptEnded, AudioEngaged:
		state.Status = AudioSessionActive
	}
	return state
}

// NewRemoteParticipantsReducer handles the dominant-speaker feed. Roster
// replacement is done by the root reducer.
func NewRemoteParticipantsReducer(now Clock) Reducer[RemoteParticipantsState] {
	return func(state RemoteParticipantsState, action Action) RemoteParticipantsState {
		if a, ok := action.(DominantSpeakersUpdated); ok {
			state.DominantSpeakers = slices.Clone(a.Speakers)
			state.DominantSpeakersModifiedTimestamp = now()
		}
		return state
	}
}

func ReduceDiagnostics(state DiagnosticsState, action Action) DiagnosticsState {
	switch a := action.(type) {
	case NetworkQualityUpdated:
		state.NetworkQuality = a.Quality
	case MediaDiagnosticUpdated:
		i := slices.Index(state.Active, a.Diagnostic)
		switch {
		case a.Active && i < 0:
			state.Active = append(slices.Clip(state.Active), a.Diagnostic)
		case !a.Active && i >= 0:
			state.Active = slices.Delete(slices.Clone(state.Active), i, i+1)
		}
	}
	return state
}

func ReduceCaptions(state CaptionsState, action Action) CaptionsState {
	switch a := action.(type) {
	case CaptionsStartRequested:
		state.Status = CaptionsStarting
		state.Error = nil
	case CaptionsStarted:
		state.Status = CaptionsOn
	case CaptionsStopped:
		return CaptionsState{Status: CaptionsOff}
	case CaptionsReceived:
		state.Entries = upsertPartial(state.Entries, a.Caption, func(c Caption) bool {
			return c.SpeakerID == a.Caption.SpeakerID && !c.IsFinal
		})
	case CaptionsFailed:
		state.Status = CaptionsFailure
		state.Error = a.Err
	}
	return state
}

// NewRttReducer stamps locally sent messages with now.
func NewRttReducer(now Clock) Reducer[RttState] {
	return func(state RttState, action Action) RttState {
		switch a := action.(type) {
		case RttMessageReceived:
			state.Messages = upsertPartial(state.Messages, a.Message, func(m RttMessage) bool {
				return m.SenderID == a.Message.SenderID && m.IsLocal == a.Message.IsLocal && !m.IsFinal
			})
		case RttSendRequested:
			msg := RttMessage{Text: a.Text, IsFinal: true, IsLocal: true, At: now()}
			state.Messages = upsertPartial(state.Messages, msg, func(RttMessage) bool { return false })
		}
		return state
	}
}

// upsertPartial replaces the latest entry matching partial or appends v,
// keeping at most MaxCaptionEntries. The input slice is never written to.
func upsertPartial[T any](entries []T, v T, partial func(T) bool) []T {
	next := slices.Clone(entries)
	for i := len(next) - 1; i >= 0; i-- {
		if partial(next[i]) {
			next[i] = v
			return next
		}
	}
	next = append(next, v)
	if over := len(next) - MaxCaptionEntries; over > 0 {
		next = slices.Delete(next, 0, over)
	}
	return next
}

func ReduceToast(state ToastState, action Action) ToastState {
	switch a := action.(type) {
	case ToastShown:
		n := a.Notification
		return ToastState{Notification: &n}
	case ToastDismissed:
		return ToastState{}
	}
	return state
}

func ReduceButtonViewData(state ButtonViewDataState, action Action) ButtonViewDataState {
	switch a := action.(type) {
	case ButtonVisibilityUpdated:
		return state.with(a.Button, func(s ButtonState) ButtonState {
			s.Visible = a.Visible
			return s
		})
	case ButtonEnabledUpdated:
		return state.with(a.Button, func(s ButtonState) ButtonState {
			s.Enabled = a.Enabled
			return s
		})
	}
	return state
}
