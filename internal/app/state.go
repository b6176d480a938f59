// Package app holds process-wide lifecycle state.
package app

import "sync/atomic"

// State reports readiness. It starts false and flips to true once, after
// startup wiring and warm-up; it is never reset.
type State struct {
	ready atomic.Bool
}

func NewState() *State { return &State{} }

// MarkReady reports whether this call flipped the flag.
func (s *State) MarkReady() bool {
	return s.ready.CompareAndSwap(false, true)
}

func (s *State) Ready() bool { return s.ready.Load() }
