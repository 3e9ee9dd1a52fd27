// Package orch assembles a composite: the store, its middleware, the
// managers reacting to state, and the router owning the screen view models.
package orch

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Composite/internal/adapters/sdk"
	"github.com/dkeye/Composite/internal/app/calling"
	"github.com/dkeye/Composite/internal/app/manager"
	"github.com/dkeye/Composite/internal/app/viewmodel"
	"github.com/dkeye/Composite/internal/core"
)

// ServiceFactory builds the calling engine for a composite. The engine
// reports back through events.
type ServiceFactory func(id uuid.UUID, events *sdk.EventsHandler) (calling.Service, error)

type Options struct {
	Initial        core.InitialOptions
	Layout         viewmodel.GridLayout
	UIThrottle     time.Duration
	RosterThrottle time.Duration

	// Events receives host-facing notifications. Nil means nobody listens.
	Events manager.EventsHandler
	// NewService is optional; without it intents only change local state.
	NewService ServiceFactory
	// AudioRouter is optional; without it device requests stay pending.
	AudioRouter manager.AudioRouter
	Clock       core.Clock
	// OnEngine lets other roster sources report to the engine events handler.
	OnEngine func(events *sdk.EventsHandler)
	// OnClose runs last when the composite is closed.
	OnClose func()
}

// Composite is one running call UI: everything hangs off its store.
type Composite struct {
	id       uuid.UUID
	store    *core.Store
	router   *Router
	engine   *sdk.EventsHandler
	events   manager.EventsHandler
	viewData *manager.ParticipantViewDataStore
	audio    *manager.AudioSessionManager
	handler  *calling.Handler
	service  calling.Service
	log      zerolog.Logger

	stops   []func()
	onClose func()
}

func NewComposite(opts Options) *Composite {
	c := &Composite{
		id:       uuid.New(),
		viewData: manager.NewParticipantViewDataStore(),
		onClose:  opts.OnClose,
	}
	c.log = log.With().Str("module", "orch.composite").Str("composite", c.id.String()).Logger()

	events := opts.Events
	if events == nil {
		events = manager.NopEventsHandler{}
	}
	c.events = events
	window := opts.UIThrottle
	if window <= 0 {
		window = core.DefaultThrottleWindow
	}

	mws := []core.Middleware{
		core.LoggingMiddleware(),
		core.ThrottleMiddleware(window, core.DrawerThrottleKey),
	}
	// The engine needs somewhere to report to before the store exists, so
	// its events handler dispatches through a late-bound forwarder.
	fwd := &forwarder{}
	c.engine = sdk.NewEventsHandler(fwd, sdk.WithThrottle(opts.RosterThrottle))
	if opts.OnEngine != nil {
		opts.OnEngine(c.engine)
	}
	if opts.NewService != nil {
		svc, err := opts.NewService(c.id, c.engine)
		if err != nil {
			c.log.Error().Err(err).Msg("calling service unavailable, running local only")
		} else {
			c.service = svc
			c.handler = calling.NewHandler(svc)
			mws = append(mws, c.handler.Middleware())
		}
	}

	var reducerOpts []core.ReducerOption
	if opts.Clock != nil {
		reducerOpts = append(reducerOpts, core.WithClock(opts.Clock))
	}
	c.store = core.NewStore(core.NewAppState(opts.Initial),
		core.WithMiddleware(mws...),
		core.WithReducer(core.NewAppStateReducer(reducerOpts...)),
	)
	fwd.store = c.store

	errs := manager.NewErrorManager(c.store, events)
	remote := manager.NewRemoteParticipantsManager(c.store, events, c.viewData)
	nav := manager.NewNavigationManager(c.store, events)
	errs.Start()
	remote.Start()
	nav.Start()
	c.stops = append(c.stops, errs.Stop, remote.Stop, nav.Stop)

	if opts.AudioRouter != nil {
		c.audio = manager.NewAudioSessionManager(c.store, opts.AudioRouter)
		c.audio.Start()
		c.stops = append(c.stops, c.audio.Stop)
	}

	layout := opts.Layout
	if layout == "" {
		layout = viewmodel.GridCompact
	}
	c.router = NewRouter(c.store, layout, c.viewData)
	c.router.Start()
	c.stops = append(c.stops, c.router.Stop)

	c.launch()
	c.log.Info().Str("status", string(c.store.State().NavigationState.Status)).Msg("composite launched")
	return c
}

// launch turns the launch preferences into intents. Previews go first so
// a skipped setup joins with them in place.
func (c *Composite) launch() {
	st := c.store.State()
	if st.DefaultUserState.MicrophoneOn {
		c.store.Dispatch(core.MicrophonePreviewOn{})
	}
	if st.DefaultUserState.CameraOn {
		c.store.Dispatch(core.CameraPreviewOnTriggered{})
	}
	if st.CallingState.OperationStatus == core.OperationSkipSetupRequested {
		c.log.Info().Msg("setup skipped, joining")
		c.store.Dispatch(core.CallStartRequested{})
	}
}

func (c *Composite) ID() uuid.UUID { return c.id }

func (c *Composite) Store() *core.Store { return c.store }

func (c *Composite) Router() *Router { return c.router }

// Engine is where a calling engine reports its callbacks.
func (c *Composite) Engine() *sdk.EventsHandler { return c.engine }

// Events is the host events handler the composite reports to.
func (c *Composite) Events() manager.EventsHandler { return c.events }

func (c *Composite) ViewData() *manager.ParticipantViewDataStore { return c.viewData }

// Audio is nil when the composite runs without an audio router.
func (c *Composite) Audio() *manager.AudioSessionManager { return c.audio }

// Close tears the composite down: the engine first, then subscribers in
// reverse start order, then the store.
func (c *Composite) Close() {
	if c.handler != nil {
		c.handler.Close()
	}
	if closer, ok := c.service.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			c.log.Warn().Err(err).Msg("calling service close")
		}
	}
	for i := len(c.stops) - 1; i >= 0; i-- {
		c.stops[i]()
	}
	c.store.Close()
	if c.onClose != nil {
		c.onClose()
	}
	c.log.Info().Msg("composite closed")
}

type forwarder struct {
	store *core.Store
}

func (f *forwarder) Dispatch(a core.Action) { f.store.Dispatch(a) }
