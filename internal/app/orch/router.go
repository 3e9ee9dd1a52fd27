package orch

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Composite/internal/app/viewmodel"
	"github.com/dkeye/Composite/internal/core"
)

// Router follows the navigation status and owns the view model of the
// current screen. The previous screen is closed before the next is built,
// so at most one screen is subscribed to the store at any time.
type Router struct {
	store    viewmodel.Store
	layout   viewmodel.GridLayout
	viewData viewmodel.ViewDataLookup
	log      zerolog.Logger

	mu        sync.RWMutex
	status    core.NavigationStatus
	navigated bool
	current   viewmodel.Screen
	cancel    func()
	stopped   bool
}

func NewRouter(store viewmodel.Store, layout viewmodel.GridLayout, viewData viewmodel.ViewDataLookup) *Router {
	return &Router{
		store:    store,
		layout:   layout,
		viewData: viewData,
		log:      log.With().Str("module", "orch.router").Logger(),
	}
}

func (r *Router) Start() {
	r.cancel = r.store.Subscribe("router", func(s core.Snapshot) {
		r.navigate(s.State.NavigationState.Status)
	})
}

// Stop cancels the subscription and closes the current screen.
func (r *Router) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	r.replaceLocked(nil)
}

func (r *Router) navigate(status core.NavigationStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped || (r.navigated && status == r.status) {
		return
	}
	r.status = status
	r.navigated = true
	r.replaceLocked(nil)

	var next viewmodel.Screen
	switch status {
	case core.NavigationSetup:
		next = viewmodel.NewSetupViewModel(r.store)
	case core.NavigationInCall:
		next = viewmodel.NewCallingViewModel(r.store, r.layout, r.viewData)
	}
	r.replaceLocked(next)
	r.log.Info().Str("status", string(status)).Msg("navigated")
}

func (r *Router) replaceLocked(next viewmodel.Screen) {
	if r.current != nil {
		r.current.Close()
	}
	r.current = next
}

func (r *Router) Status() core.NavigationStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Current is nil on exit and on screens without a view model.
func (r *Router) Current() viewmodel.Screen {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

func (r *Router) Setup() (*viewmodel.SetupViewModel, bool) {
	vm, ok := r.Current().(*viewmodel.SetupViewModel)
	return vm, ok
}

func (r *Router) Calling() (*viewmodel.CallingViewModel, bool) {
	vm, ok := r.Current().(*viewmodel.CallingViewModel)
	return vm, ok
}
