// Package manager holds the side-effecting observers of the store. Each one
// subscribes to snapshots, talks to the outside world and reports back only
// through dispatched actions.
package manager

//go:generate mockgen -destination=mocks/events_mock.go -package=mocks github.com/dkeye/Composite/internal/app/manager EventsHandler

import (
	"github.com/dkeye/Composite/internal/core"
	"github.com/dkeye/Composite/internal/domain"
)

// EventsHandler is implemented by the hosting application.
type EventsHandler interface {
	OnError(err domain.CompositeError)
	OnRemoteParticipantJoined(ids []string)
	OnCallStateChanged(status domain.CallingStatus)
	OnDismissed()
}

// Store is the slice of *core.Store the managers need.
type Store interface {
	Dispatch(core.Action)
	State() core.AppState
	Subscribe(name string, fn func(core.Snapshot)) (cancel func())
}

// NopEventsHandler ignores every event.
type NopEventsHandler struct{}

func (NopEventsHandler) OnError(domain.CompositeError)           {}
func (NopEventsHandler) OnRemoteParticipantJoined([]string)      {}
func (NopEventsHandler) OnCallStateChanged(domain.CallingStatus) {}
func (NopEventsHandler) OnDismissed()                            {}
