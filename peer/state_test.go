// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import "testing"

func TestNewMachineStartsAtNew(t *testing.T) {
	m := New()
	if m.State() != StateNew {
		t.Fatalf("initial state = %s, want new", m.State())
	}
}

func TestFullLifecycleTransitions(t *testing.T) {
	m := New()
	steps := []State{StateHandshaking, StateEstablished, StateIdle, StateEstablished, StatePurged}
	for _, s := range steps {
		if err := m.Transition(s); err != nil {
			t.Fatalf("transition to %s: %v", s, err)
		}
	}
	if m.State() != StatePurged {
		t.Fatalf("final state = %s, want purged", m.State())
	}
}

func TestAnyStateCanBePurged(t *testing.T) {
	// Each state is reached along the valid lifecycle path before purging.
	paths := [][]State{
		nil,
		{StateHandshaking},
		{StateHandshaking, StateEstablished},
		{StateHandshaking, StateEstablished, StateIdle},
	}
	for _, path := range paths {
		m := New()
		for _, step := range path {
			if err := m.Transition(step); err != nil {
				t.Fatalf("setup transition to %s: %v", step, err)
			}
		}
		s := m.State()
		if err := m.Transition(StatePurged); err != nil {
			t.Fatalf("transition to purged from %s: %v", s, err)
		}
	}
}

func TestInvalidTransitionRejected(t *testing.T) {
	m := New()
	if err := m.Transition(StateEstablished); err == nil {
		t.Fatal("expected new -> established to be rejected without a handshake")
	}
}

func TestPurgedStateIsTerminal(t *testing.T) {
	m := New()
	m.Transition(StatePurged)
	if err := m.Transition(StateNew); err == nil {
		t.Fatal("expected purged -> new to be rejected")
	}
}

func TestSameStateTransitionIsNoop(t *testing.T) {
	m := New()
	if err := m.Transition(StateNew); err != nil {
		t.Fatalf("transitioning to the same state should succeed: %v", err)
	}
}
