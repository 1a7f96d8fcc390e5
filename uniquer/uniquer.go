// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package uniquer interns decoded blocks and votes behind weak references
// so that repeated network traffic naming the same content converges on a
// single shared value instead of allocating a fresh copy per message.
// Entries are reclaimed automatically once nothing else holds them live;
// cleanupProbes stale map entries opportunistically on every insert rather
// than running a dedicated sweep goroutine.
package uniquer

import (
	"sync"
	"weak"

	"github.com/decred/vigil-netcore/chainhash"
	"github.com/decred/vigil-netcore/wire"
)

// cleanupProbes is the number of random map entries examined for staleness
// on every call to Unique that registers a new entry, mirroring the reference interner's opportunistic
// per-insert cleanup rather than a background sweep.
const cleanupProbes = 2

// weakRef weak-references the heap object a *T pointer designates. A
// weakRef must always be built from a pointer the caller itself holds,
// never from the address of a local copy, or its target's liveness
// stops tracking what the caller actually retains.
type weakRef[T any] struct {
	wp weak.Pointer[T]
}

func newWeakRef[T any](v *T) weakRef[T] {
	return weakRef[T]{wp: weak.Make(v)}
}

func (r weakRef[T]) value() *T {
	return r.wp.Value()
}

// blockWeakRef weak-references whichever concrete pointer type backs a
// wire.Block value. wire.Block is an interface implemented by five
// distinct pointer-receiver struct types, so weak-referencing it
// directly would mean weak-referencing the two-word interface box
// itself rather than the struct the caller's own copy of that
// interface points to. Type-switching onto the concrete type first
// lets weak.Make track the real pointee.
type blockWeakRef struct {
	value func() wire.Block
}

func newBlockWeakRef(b wire.Block) blockWeakRef {
	switch v := b.(type) {
	case *wire.SendBlock:
		return blockWeakRef{value: weakBlockAccessor(v)}
	case *wire.ReceiveBlock:
		return blockWeakRef{value: weakBlockAccessor(v)}
	case *wire.OpenBlock:
		return blockWeakRef{value: weakBlockAccessor(v)}
	case *wire.ChangeBlock:
		return blockWeakRef{value: weakBlockAccessor(v)}
	case *wire.StateBlock:
		return blockWeakRef{value: weakBlockAccessor(v)}
	default:
		// No other concrete type implements wire.Block. Keep a strong
		// reference rather than pretend to intern something we can't
		// weak-reference correctly.
		return blockWeakRef{value: func() wire.Block { return b }}
	}
}

func weakBlockAccessor[T any](v *T) func() wire.Block {
	ref := newWeakRef(v)
	return func() wire.Block {
		p := ref.value()
		if p == nil {
			return nil
		}
		return any(p).(wire.Block)
	}
}

// BlockUniquer interns wire.Block values by content hash.
type BlockUniquer struct {
	mu      sync.Mutex
	entries map[chainhash.Hash]blockWeakRef
}

// NewBlockUniquer returns an empty BlockUniquer.
func NewBlockUniquer() *BlockUniquer {
	return &BlockUniquer{entries: make(map[chainhash.Hash]blockWeakRef)}
}

// Unique returns the canonical shared instance for b's content hash,
// registering b as that instance if none is currently live.
func (u *BlockUniquer) Unique(b wire.Block) wire.Block {
	if b == nil {
		return nil
	}
	key := b.Hash()

	u.mu.Lock()
	defer u.mu.Unlock()

	if ref, ok := u.entries[key]; ok {
		if existing := ref.value(); existing != nil {
			return existing
		}
	}
	u.entries[key] = newBlockWeakRef(b)
	u.cleanup()
	return b
}

func (u *BlockUniquer) cleanup() {
	if len(u.entries) == 0 {
		return
	}
	// Map iteration order is randomized per runtime start, so taking the
	// first cleanupProbes keys from a range is already the random-offset
	// probe the reference interner performs explicitly.
	probed := 0
	for k, ref := range u.entries {
		if probed >= cleanupProbes {
			break
		}
		probed++
		if ref.value() == nil {
			delete(u.entries, k)
		}
	}
}

// Stats reports the number of entries currently in the map, for
// diagnostics. Entries whose value has been collected but not yet
// pruned are included in the count.
func (u *BlockUniquer) Stats() map[string]int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return map[string]int{"entries": len(u.entries)}
}

// VoteUniquer interns wire.Vote values by full hash, delegating each vote's
// first entry, when that entry carries a block, to a BlockUniquer so the same block content
// shared between a publish and a vote converges on one instance.
type VoteUniquer struct {
	blocks *BlockUniquer

	mu      sync.Mutex
	entries map[chainhash.Hash]weakRef[wire.Vote]
}

// NewVoteUniquer returns an empty VoteUniquer backed by blocks for
// block-entry canonicalization.
func NewVoteUniquer(blocks *BlockUniquer) *VoteUniquer {
	return &VoteUniquer{
		blocks:  blocks,
		entries: make(map[chainhash.Hash]weakRef[wire.Vote]),
	}
}

// Unique returns the canonical shared instance for v's full hash,
// registering v as that instance if none is currently live. If v's first
// entry carries a full block, that block is first canonicalized through
// the uniquer's BlockUniquer.
func (u *VoteUniquer) Unique(v *wire.Vote) *wire.Vote {
	if v == nil || len(v.Entries) == 0 {
		return v
	}
	if first := v.Entries[0]; first.Block != nil {
		v.Entries[0].Block = u.blocks.Unique(first.Block)
	}

	key := v.FullHash()

	u.mu.Lock()
	defer u.mu.Unlock()

	if ref, ok := u.entries[key]; ok {
		if existing := ref.value(); existing != nil {
			return existing
		}
	}
	u.entries[key] = newWeakRef(v)
	u.cleanup()
	return v
}

func (u *VoteUniquer) cleanup() {
	if len(u.entries) == 0 {
		return
	}
	// Map iteration order is randomized per runtime start, so taking the
	// first cleanupProbes keys from a range is already the random-offset
	// probe the reference interner performs explicitly.
	probed := 0
	for k, ref := range u.entries {
		if probed >= cleanupProbes {
			break
		}
		probed++
		if ref.value() == nil {
			delete(u.entries, k)
		}
	}
}

// Stats reports the number of entries currently in the map, for
// diagnostics. Entries whose value has been collected but not yet
// pruned are included in the count.
func (u *VoteUniquer) Stats() map[string]int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return map[string]int{"entries": len(u.entries)}
}
