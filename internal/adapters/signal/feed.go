package signal

import (
	"sync"

	"github.com/dkeye/Composite/internal/domain"
)

const feedHistory = 32

// HostEvent is a composite notification as sent to the host page.
type HostEvent struct {
	Type    string   `json:"type"`
	Event   string   `json:"event"`
	Code    string   `json:"code,omitempty"`
	Message string   `json:"message,omitempty"`
	IDs     []string `json:"ids,omitempty"`
	Status  string   `json:"status,omitempty"`
}

// EventFeed is the host events handler of a browser session. It keeps the
// latest events for late subscribers and fans new ones out.
type EventFeed struct {
	mu     sync.Mutex
	subs   map[int]func(HostEvent)
	next   int
	recent []HostEvent
}

func NewEventFeed() *EventFeed {
	return &EventFeed{subs: make(map[int]func(HostEvent))}
}

// Subscribe registers fn for new events. fn runs on the notifying
// goroutine and must not block.
func (f *EventFeed) Subscribe(fn func(HostEvent)) (cancel func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

func (f *EventFeed) Recent() []HostEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]HostEvent(nil), f.recent...)
}

func (f *EventFeed) publish(ev HostEvent) {
	ev.Type = "event"
	f.mu.Lock()
	f.recent = append(f.recent, ev)
	if len(f.recent) > feedHistory {
		f.recent = f.recent[len(f.recent)-feedHistory:]
	}
	subs := make([]func(HostEvent), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()
	for _, fn := range subs {
		fn(ev)
	}
}

func (f *EventFeed) OnError(err domain.CompositeError) {
	ev := HostEvent{Event: "error", Code: string(err.Code)}
	if err.Err != nil {
		ev.Message = err.Err.Error()
	}
	f.publish(ev)
}

func (f *EventFeed) OnRemoteParticipantJoined(ids []string) {
	f.publish(HostEvent{Event: "remoteParticipantJoined", IDs: append([]string(nil), ids...)})
}

func (f *EventFeed) OnCallStateChanged(status domain.CallingStatus) {
	f.publish(HostEvent{Event: "callStateChanged", Status: string(status)})
}

func (f *EventFeed) OnDismissed() {
	f.publish(HostEvent{Event: "dismissed"})
}
