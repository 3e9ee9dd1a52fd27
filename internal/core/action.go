package core

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dkeye/Composite/internal/domain"
)

// Action is a closed union of every event that may change AppState.
// Only types declared in this package satisfy it.
type Action interface {
	isAction()
}

type (
	CallingAction interface {
		Action
		calling()
	}
	LocalUserAction interface {
		Action
		localUser()
	}
	PermissionAction interface {
		Action
		permission()
	}
	LifecycleAction interface {
		Action
		lifecycle()
	}
	ErrorAction interface {
		Action
		failure()
	}
	NavigationAction interface {
		Action
		navigation()
	}
	RemoteParticipantsAction interface {
		Action
		remoteParticipants()
	}
	AudioSessionAction interface {
		Action
		audioSession()
	}
	DiagnosticsAction interface {
		Action
		diagnostics()
	}
	CaptionsAction interface {
		Action
		captions()
	}
	RttAction interface {
		Action
		rtt()
	}
	ToastAction interface {
		Action
		toast()
	}
	ButtonViewDataAction interface {
		Action
		buttonViewData()
	}
)

// Markers embedded by the concrete cases.
type (
	callingCase            struct{}
	localUserCase          struct{}
	permissionCase         struct{}
	lifecycleCase          struct{}
	errorCase              struct{}
	navigationCase         struct{}
	remoteParticipantsCase struct{}
	audioSessionCase       struct{}
	diagnosticsCase        struct{}
	captionsCase           struct{}
	rttCase                struct{}
	toastCase              struct{}
	buttonViewDataCase     struct{}
)

func (callingCase) isAction() {}
func (callingCase) calling() {}
func (localUserCase) isAction() {}
func (localUserCase) localUser() {}
func (permissionCase) isAction() {}
func (permissionCase) permission() {}
func (lifecycleCase) isAction() {}
func (lifecycleCase) lifecycle() {}
func (errorCase) isAction() {}
func (errorCase) failure() {}
func (navigationCase) isAction() {}
func (navigationCase) navigation() {}
func (remoteParticipantsCase) isAction() {}
func (remoteParticipantsCase) remoteParticipants() {}
func (audioSessionCase) isAction() {}
func (audioSessionCase) audioSession() {}
func (diagnosticsCase) isAction() {}
func (diagnosticsCase) diagnostics() {}
func (captionsCase) isAction() {}
func (captionsCase) captions() {}
func (rttCase) isAction() {}
func (rttCase) rtt() {}
func (toastCase) isAction() {}
func (toastCase) toast() {}
func (buttonViewDataCase) isAction() {}
func (buttonViewDataCase) buttonViewData() {}

// equaler is implemented by cases whose payload is not comparable with ==
// or carries an error.
type equaler interface {
	equal(other Action) bool
}

// Equal compares two actions structurally. Error payloads compare by
// domain.CodeOf only, so two failures of the same kind are equal even
// when the underlying platform errors differ.
func Equal(a, b Action) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if e, ok := a.(equaler); ok {
		return e.equal(b)
	}
	if _, ok := b.(equaler); ok {
		return false
	}
	return a == b
}

func sameError(a, b error) bool {
	return domain.CodeOf(a) == domain.CodeOf(b)
}

func sameParticipants(a, b []domain.ParticipantInfoModel) bool {
	return slices.EqualFunc(a, b, domain.ParticipantInfoModel.Equal)
}

// Name returns the case name of an action, e.g. "StateUpdated".
func Name(a Action) string {
	if a == nil {
		return "<nil>"
	}
	n := fmt.Sprintf("%T", a)
	if i := strings.LastIndexByte(n, '.'); i >= 0 {
		n = n[i+1:]
	}
	return n
}
