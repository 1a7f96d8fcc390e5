// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package uniquer

import (
	"runtime"
	"testing"

	"github.com/decred/vigil-netcore/chainhash"
	"github.com/decred/vigil-netcore/wire"
)

func testBlock(b byte) *wire.SendBlock {
	var prev, dest chainhash.Hash
	prev[0], dest[0] = b, b+1
	return &wire.SendBlock{Previous: prev, Destination: dest}
}

func TestBlockUniquerDedupes(t *testing.T) {
	u := NewBlockUniquer()
	a := testBlock(1)
	b := testBlock(1)
	got1 := u.Unique(a)
	got2 := u.Unique(b)
	if got1 != got2 {
		t.Fatal("expected Unique to return the same instance for identical content")
	}
	if stats := u.Stats(); stats["entries"] != 1 {
		t.Fatalf("entries = %d, want 1", stats["entries"])
	}
}

func TestBlockUniquerDistinctContent(t *testing.T) {
	u := NewBlockUniquer()
	got1 := u.Unique(testBlock(1))
	got2 := u.Unique(testBlock(2))
	if got1 == got2 {
		t.Fatal("expected distinct content to produce distinct instances")
	}
}

func TestBlockUniquerRetainsLiveEntryAcrossGC(t *testing.T) {
	u := NewBlockUniquer()
	a := testBlock(1)
	got1 := u.Unique(a)
	runtime.GC()
	got2 := u.Unique(testBlock(1))
	if got1 != got2 {
		t.Fatal("expected a live caller-held instance to survive a GC and dedupe")
	}
	runtime.KeepAlive(a)
}

func TestBlockUniquerReclaimsDeadEntries(t *testing.T) {
	u := NewBlockUniquer()
	for i := 0; i < 64; i++ {
		u.Unique(testBlock(byte(i)))
	}
	runtime.GC()
	for i := 0; i < 64; i++ {
		u.Unique(testBlock(byte(i + 100)))
	}
	stats := u.Stats()
	if stats["entries"] >= 128 {
		t.Fatalf("entries = %d, expected some reclamation after GC", stats["entries"])
	}
}

func TestVoteUniquerDedupesAndCanonicalizesBlock(t *testing.T) {
	blocks := NewBlockUniquer()
	votes := NewVoteUniquer(blocks)

	v1 := &wire.Vote{Sequence: 1, Entries: []wire.VoteEntry{{Block: testBlock(9)}}}
	v2 := &wire.Vote{Sequence: 1, Entries: []wire.VoteEntry{{Block: testBlock(9)}}}

	got1 := votes.Unique(v1)
	got2 := votes.Unique(v2)
	if got1 != got2 {
		t.Fatal("expected identical votes to dedupe to the same instance")
	}
	if got1.Entries[0].Block != got2.Entries[0].Block {
		t.Fatal("expected block entries to canonicalize to the same instance")
	}
}

func TestVoteUniquerRetainsLiveEntryAcrossGC(t *testing.T) {
	votes := NewVoteUniquer(NewBlockUniquer())
	v1 := &wire.Vote{Sequence: 1, Entries: []wire.VoteEntry{{Hash: chainhash.HashH([]byte("x"))}}}
	got1 := votes.Unique(v1)
	runtime.GC()
	got2 := votes.Unique(&wire.Vote{Sequence: 1, Entries: []wire.VoteEntry{{Hash: chainhash.HashH([]byte("x"))}}})
	if got1 != got2 {
		t.Fatal("expected a live caller-held vote to survive a GC and dedupe")
	}
	runtime.KeepAlive(v1)
}

func TestVoteUniquerHashOnlyPassthrough(t *testing.T) {
	votes := NewVoteUniquer(NewBlockUniquer())
	v := &wire.Vote{Sequence: 1, Entries: []wire.VoteEntry{{Hash: chainhash.HashH([]byte("x"))}}}
	got := votes.Unique(v)
	if got != v {
		t.Fatal("expected a fresh hash-only vote to be returned as its own canonical instance")
	}
}
