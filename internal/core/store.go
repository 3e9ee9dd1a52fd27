package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/gammazero/deque"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

var ErrStoreClosed = errors.New("store closed")

// Snapshot is one published state together with the action that produced it.
// Seq starts at 0 for the initial state and grows by one per reduction.
type Snapshot struct {
	Seq    uint64   `json:"seq"`
	Action Action   `json:"-"`
	State  AppState `json:"state"`
}

// Dispatcher hands an action to the next stage of the chain.
type Dispatcher func(Action)

// MiddlewareAPI is what middleware sees of the store. Its Dispatch only
// enqueues, so it is safe to call from inside the chain.
type MiddlewareAPI interface {
	Dispatch(Action)
	State() AppState
}

// Middleware wraps the dispatch chain. It runs on the store goroutine and
// must not block; long work belongs in a goroutine that dispatches later.
type Middleware func(api MiddlewareAPI) func(next Dispatcher) Dispatcher

type StoreOption func(*Store)

func WithMiddleware(mws ...Middleware) StoreOption {
	return func(s *Store) { s.middleware = append(s.middleware, mws...) }
}

func WithReducer(r *AppStateReducer) StoreOption {
	return func(s *Store) { s.reducer = r }
}

type envelope struct {
	action  Action
	applied chan struct{}
}

// Store owns the AppState. A single goroutine applies actions in arrival
// order; readers get whole snapshots and never see a partial update.
type Store struct {
	reducer    *AppStateReducer
	middleware []Middleware
	chain      Dispatcher

	inbox    *mailbox[envelope]
	done     chan struct{}
	loopDone chan struct{}
	closed   atomic.Bool
	once     sync.Once

	mu      sync.RWMutex
	current Snapshot
	subs    map[uint64]*subscriber
	nextSub uint64

	wg  conc.WaitGroup
	log zerolog.Logger
}

func NewStore(initial AppState, opts ...StoreOption) *Store {
	s := &Store{
		inbox:    newMailbox[envelope](),
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
		current:  Snapshot{State: initial},
		subs:     make(map[uint64]*subscriber),
		log:      log.With().Str("module", "core.store").Logger(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.reducer == nil {
		s.reducer = NewAppStateReducer()
	}

	api := storeAPI{s}
	chain := Dispatcher(s.reduce)
	for i := len(s.middleware) - 1; i >= 0; i-- {
		chain = s.middleware[i](api)(chain)
	}
	s.chain = chain

	go s.run()
	return s
}

// Dispatch applies the action and returns once the new snapshot is
// published, so State() afterwards reflects it. Calling Dispatch from
// middleware would deadlock; use MiddlewareAPI.Dispatch there.
func (s *Store) Dispatch(action Action) {
	if err := s.DispatchContext(context.Background(), action); err != nil {
		s.log.Warn().Err(err).Str("action", Name(action)).Msg("dispatch dropped")
	}
}

// DispatchContext is Dispatch with cancellation. The action may still be
// applied after ctx is done; only the wait is abandoned.
func (s *Store) DispatchContext(ctx context.Context, action Action) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	env := envelope{action: action, applied: make(chan struct{})}
	s.inbox.push(env)
	select {
	case <-env.applied:
		return nil
	case <-s.done:
		return ErrStoreClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// enqueue is the non-blocking dispatch used by middleware.
func (s *Store) enqueue(action Action) {
	if s.closed.Load() {
		s.log.Warn().Str("action", Name(action)).Msg("dispatch after close dropped")
		return
	}
	s.inbox.push(envelope{action: action})
}

func (s *Store) State() AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.State
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) run() {
	defer close(s.loopDone)
	for {
		select {
		case <-s.done:
			return
		case <-s.inbox.wake:
		}
		for _, env := range s.inbox.drain() {
			s.chain(env.action)
			if env.applied != nil {
				close(env.applied)
			}
		}
	}
}

// reduce is the tail of the chain.
func (s *Store) reduce(action Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Snapshot{
		Seq:    s.current.Seq + 1,
		Action: action,
		State:  s.reducer.Reduce(s.current.State, action),
	}
	for _, sub := range s.subs {
		sub.queue.push(s.current)
	}
}

// Subscribe delivers the current snapshot and then every later one, in
// order, on a goroutine owned by the subscriber. Slow subscribers queue;
// nothing is dropped. The returned func stops delivery.
func (s *Store) Subscribe(name string, fn func(Snapshot)) (cancel func()) {
	return s.subscribe(name, fn, nil)
}

func (s *Store) subscribe(name string, fn func(Snapshot), onDone func()) func() {
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		s.log.Warn().Str("subscriber", name).Msg("subscribe after close ignored")
		if onDone != nil {
			onDone()
		}
		return func() {}
	}
	id := s.nextSub
	s.nextSub++
	sub := &subscriber{
		name:   name,
		fn:     fn,
		queue:  newMailbox[Snapshot](),
		stop:   make(chan struct{}),
		onDone: onDone,
	}
	sub.queue.push(s.current)
	s.subs[id] = sub
	s.wg.Go(sub.run)
	s.mu.Unlock()
	s.log.Debug().Str("subscriber", name).Msg("subscribed")

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
		sub.cancel()
	}
}

// Stream exposes the subscription as a channel. The channel is closed once
// ctx is done or the store is closed; consumers must keep reading until then.
func (s *Store) Stream(ctx context.Context) <-chan Snapshot {
	out := make(chan Snapshot)
	cancel := s.subscribe("stream", func(snap Snapshot) {
		select {
		case out <- snap:
		case <-ctx.Done():
		}
	}, func() { close(out) })
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-s.done:
		}
	}()
	return out
}

// Close stops the store, delivers what subscribers still have queued and
// waits for their goroutines to finish. Safe to call more than once.
func (s *Store) Close() {
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.done)
		<-s.loopDone

		s.mu.Lock()
		subs := s.subs
		s.subs = make(map[uint64]*subscriber)
		s.mu.Unlock()
		for _, sub := range subs {
			sub.shutdown()
		}
		s.wg.Wait()
		s.log.Debug().Uint64("seq", s.Snapshot().Seq).Msg("store closed")
	})
}

type storeAPI struct{ s *Store }

func (a storeAPI) Dispatch(action Action) { a.s.enqueue(action) }
func (a storeAPI) State() AppState        { return a.s.State() }

type subscriber struct {
	name      string
	fn        func(Snapshot)
	queue     *mailbox[Snapshot]
	stop      chan struct{}
	stopOnce  sync.Once
	cancelled atomic.Bool
	onDone    func()
}

func (sub *subscriber) run() {
	if sub.onDone != nil {
		defer sub.onDone()
	}
	for {
		select {
		case <-sub.queue.wake:
			sub.deliver()
		case <-sub.stop:
			sub.deliver()
			return
		}
	}
}

func (sub *subscriber) deliver() {
	for _, snap := range sub.queue.drain() {
		if sub.cancelled.Load() {
			return
		}
		sub.fn(snap)
	}
}

func (sub *subscriber) cancel() {
	sub.cancelled.Store(true)
	sub.shutdown()
}

func (sub *subscriber) shutdown() {
	sub.stopOnce.Do(func() { close(sub.stop) })
}

// mailbox is an unbounded queue with a level-triggered wake signal.
type mailbox[T any] struct {
	mu    sync.Mutex
	items deque.Deque[T]
	wake  chan struct{}
}

func newMailbox[T any]() *mailbox[T] {
	return &mailbox[T]{wake: make(chan struct{}, 1)}
}

func (q *mailbox[T]) push(v T) {
	q.mu.Lock()
	q.items.PushBack(v)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// drain empties the queue, returning its items oldest first.
func (q *mailbox[T]) drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.Len() == 0 {
		return nil
	}
	items := make([]T, 0, q.items.Len())
	for q.items.Len() > 0 {
		items = append(items, q.items.PopFront())
	}
	return items
}
