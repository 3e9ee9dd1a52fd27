package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Composite/internal/app"
)

// Orchestrator hands every client session its own composite and owns the
// backpressure policy for their snapshot streams.
type Orchestrator struct {
	Registry *app.Registry[*Composite]
	Policy   app.Policy

	// Options builds the composite options for a new session.
	Options func(sid app.SessionID) Options
}

func NewOrchestrator(policy app.Policy, options func(sid app.SessionID) Options) *Orchestrator {
	return &Orchestrator{
		Registry: app.NewRegistry[*Composite](),
		Policy:   policy,
		Options:  options,
	}
}

// Acquire returns the composite bound to sid, launching one if needed.
func (o *Orchestrator) Acquire(sid app.SessionID) *Composite {
	c, created := o.Registry.GetOrCreate(sid, func() *Composite {
		return NewComposite(o.Options(sid))
	})
	if created {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("composite", c.ID().String()).Msg("composite acquired")
	}
	return c
}

func (o *Orchestrator) Lookup(sid app.SessionID) (*Composite, bool) {
	return o.Registry.Get(sid)
}

// Release closes the composite of sid. A later Acquire starts a fresh one.
func (o *Orchestrator) Release(sid app.SessionID) bool {
	return o.Registry.Unbind(sid)
}

// OnBackPressure applies the policy to a slow subscriber and reports
// whether it should be disconnected.
func (o *Orchestrator) OnBackPressure(sid app.SessionID, subscriber string) bool {
	if o.Policy == nil {
		return false
	}
	switch o.Policy.OnBackPressure(sid, subscriber) {
	case app.KickMember:
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Str("subscriber", subscriber).Msg("slow subscriber kicked")
		return true
	case app.DropFrame, app.NoAction:
	}
	return false
}

func (o *Orchestrator) Close() {
	o.Registry.CloseAll()
}
