package app

import "fmt"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickMember
)

// Policy decides what happens to a stream subscriber whose send buffer is
// full.
type Policy interface {
	OnBackPressure(sid SessionID, subscriber string) BackpressureAction
}

// SimplePolicy disconnects slow subscribers; they resync from a fresh
// snapshot when they reconnect.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(SessionID, string) BackpressureAction {
	return KickMember
}

// DropPolicy skips the frame and keeps the subscriber. Snapshots are whole
// states, so the next delivered one supersedes what was lost.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(SessionID, string) BackpressureAction {
	return DropFrame
}

// ParsePolicy maps a config value to a policy.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "", "close":
		return SimplePolicy{}, nil
	case "drop":
		return DropPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown backpressure policy %q", name)
}
