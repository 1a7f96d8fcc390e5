// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package peer implements the channel state machine (component 4.I):
// new -> handshaking -> established -> idle -> purged.
package peer

import (
	"fmt"
	"sync"
)

// State is a channel's position in its lifecycle.
type State int

// Recognized states, in the order a channel normally progresses
// through them.
const (
	StateNew State = iota
	StateHandshaking
	StateEstablished
	StateIdle
	StatePurged
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateHandshaking:
		return "handshaking"
	case StateEstablished:
		return "established"
	case StateIdle:
		return "idle"
	case StatePurged:
		return "purged"
	default:
		return "unknown"
	}
}

// validTransitions enumerates the edges the reference channel state
// machine allows. Any state may transition to purged directly
// (explicit erase); everything else follows the documented handshake
// and activity lifecycle.
var validTransitions = map[State]map[State]bool{
	StateNew:         {StateHandshaking: true, StatePurged: true},
	StateHandshaking: {StateEstablished: true, StatePurged: true},
	StateEstablished: {StateIdle: true, StatePurged: true},
	StateIdle:        {StateEstablished: true, StatePurged: true},
	StatePurged:      {},
}

// ErrInvalidTransition is returned by Machine.Transition when the
// requested move isn't one of validTransitions' edges.
type ErrInvalidTransition struct {
	From, To State
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("peer: invalid state transition %s -> %s", e.From, e.To)
}

// Machine tracks one channel's current state and enforces the
// lifecycle's legal transitions. Safe for concurrent use.
type Machine struct {
	mu    sync.Mutex
	state State
}

// New returns a Machine starting in StateNew.
func New() *Machine {
	return &Machine{state: StateNew}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Transition attempts to move to next, returning ErrInvalidTransition
// if the move isn't legal from the current state. Idle->established is
// allowed, matching a channel resuming traffic before it's purged.
func (m *Machine) Transition(next State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == next {
		return nil
	}
	if !validTransitions[m.state][next] {
		return &ErrInvalidTransition{From: m.state, To: next}
	}
	m.state = next
	return nil
}
