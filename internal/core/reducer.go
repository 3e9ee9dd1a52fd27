package core

import (
	"slices"
	"sync/atomic"
	"time"

	"github.com/dkeye/Composite/internal/domain"
)

// Reducer maps a slice and an action to the next slice. Actions a reducer
// does not recognise return the input unchanged.
type Reducer[S any] func(S, Action) S

// Clock supplies the version stamps written into state.
type Clock func() time.Time

// MonotonicClock returns a clock whose readings strictly increase, even
// when the wall clock stalls or steps back.
func MonotonicClock() Clock {
	var last atomic.Int64
	return func() time.Time {
		for {
			prev := last.Load()
			now := time.Now().UnixNano()
			if now <= prev {
				now = prev + 1
			}
			if last.CompareAndSwap(prev, now) {
				return time.Unix(0, now)
			}
		}
	}
}

type ReducerOption func(*AppStateReducer)

// WithClock replaces the stamp source. Tests use it to get deterministic stamps.
func WithClock(c Clock) ReducerOption {
	return func(r *AppStateReducer) { r.now = c }
}

// AppStateReducer composes the slice reducers into the root reducer.
type AppStateReducer struct {
	now Clock

	calling            Reducer[CallingState]
	localUser          Reducer[LocalUserState]
	permission         Reducer[PermissionState]
	lifeCycle          Reducer[LifeCycleState]
	audioSession       Reducer[AudioSessionState]
	navigation         Reducer[NavigationState]
	errors             Reducer[ErrorState]
	remoteParticipants Reducer[RemoteParticipantsState]
	diagnostics        Reducer[DiagnosticsState]
	captions           Reducer[CaptionsState]
	rtt                Reducer[RttState]
	toast              Reducer[ToastState]
	buttons            Reducer[ButtonViewDataState]
}

func NewAppStateReducer(opts ...ReducerOption) *AppStateReducer {
	r := &AppStateReducer{now: MonotonicClock()}
	for _, o := range opts {
		o(r)
	}
	r.calling = ReduceCalling
	r.localUser = ReduceLocalUser
	r.permission = ReducePermission
	r.lifeCycle = ReduceLifeCycle
	r.audioSession = ReduceAudioSession
	r.navigation = ReduceNavigation
	r.errors = ReduceError
	r.remoteParticipants = NewRemoteParticipantsReducer(r.now)
	r.diagnostics = ReduceDiagnostics
	r.captions = ReduceCaptions
	r.rtt = NewRttReducer(r.now)
	r.toast = ReduceToast
	r.buttons = ReduceButtonViewData
	return r
}

// Reduce runs every slice reducer against its own slice, then applies the
// two roster-level replacements.
func (r *AppStateReducer) Reduce(state AppState, action Action) AppState {
	next := AppState{
		CallingState:            r.calling(state.CallingState, action),
		LocalUserState:          r.localUser(state.LocalUserState, action),
		DefaultUserState:        state.DefaultUserState,
		PermissionState:         r.permission(state.PermissionState, action),
		LifeCycleState:          r.lifeCycle(state.LifeCycleState, action),
		AudioSessionState:       r.audioSession(state.AudioSessionState, action),
		NavigationState:         r.navigation(state.NavigationState, action),
		ErrorState:              r.errors(state.ErrorState, action),
		RemoteParticipantsState: r.remoteParticipants(state.RemoteParticipantsState, action),
		DiagnosticsState:        r.diagnostics(state.DiagnosticsState, action),
		CaptionsState:           r.captions(state.CaptionsState, action),
		RttState:                r.rtt(state.RttState, action),
		ToastState:              r.toast(state.ToastState, action),
		ButtonViewDataState:     r.buttons(state.ButtonViewDataState, action),
	}

	switch a := action.(type) {
	case ParticipantListUpdated:
		prev := state.RemoteParticipantsState
		next.RemoteParticipantsState = RemoteParticipantsState{
			ParticipantInfoList:               slices.Clone(a.Participants),
			LastUpdateTimeStamp:               r.now(),
			DominantSpeakers:                  prev.DominantSpeakers,
			DominantSpeakersModifiedTimestamp: prev.DominantSpeakersModifiedTimestamp,
		}
		if next.RemoteParticipantsState.ParticipantInfoList == nil {
			next.RemoteParticipantsState.ParticipantInfoList = []domain.ParticipantInfoModel{}
		}
	case StatusErrorAndCallReset:
		next.RemoteParticipantsState = RemoteParticipantsState{
			ParticipantInfoList: []domain.ParticipantInfoModel{},
			LastUpdateTimeStamp: r.now(),
		}
	}
	return next
}
