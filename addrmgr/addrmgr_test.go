// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"net/netip"
	"testing"
	"time"

	"github.com/decred/vigil-netcore/chainhash"
)

func ep(ip string, port uint16) netip.AddrPort {
	return netip.AddrPortFrom(netip.MustParseAddr(ip), port)
}

func TestInsertReturnsExistingChannel(t *testing.T) {
	r := New(10, false)
	c1, ok := r.Insert(ep("::1", 1000), 18)
	if !ok {
		t.Fatal("expected insert to succeed")
	}
	c2, ok := r.Insert(ep("::1", 1000), 18)
	if !ok || c1 != c2 {
		t.Fatal("expected second insert at same endpoint to return the same channel")
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
}

func TestInsertEnforcesPerIPCap(t *testing.T) {
	r := New(2, false)
	addr := "fe80::1"
	for i := uint16(0); i < 2; i++ {
		if _, ok := r.Insert(ep(addr, 1000+i), 18); !ok {
			t.Fatalf("insert %d should have succeeded under cap", i)
		}
	}
	if _, ok := r.Insert(ep(addr, 1002), 18); ok {
		t.Fatal("expected insert to be rejected once per-IP cap is reached")
	}
}

func TestUnlimitedPerIPSkipsCap(t *testing.T) {
	r := New(1, true)
	addr := "fe80::1"
	for i := uint16(0); i < 5; i++ {
		if _, ok := r.Insert(ep(addr, 1000+i), 18); !ok {
			t.Fatalf("insert %d should have succeeded with unlimitedPerIP", i)
		}
	}
}

func TestEraseRemovesFromAllIndexes(t *testing.T) {
	r := New(10, false)
	e := ep("::1", 1000)
	r.Insert(e, 18)
	var id chainhash.Hash
	id[0] = 1
	r.Modify(e, func(c *Channel) {
		c.NodeID = id
		c.HasNodeID = true
	})
	if len(r.FindByNodeID(id)) != 1 {
		t.Fatal("expected channel indexed by node id before erase")
	}
	r.Erase(e)
	if _, ok := r.Find(e); ok {
		t.Fatal("expected channel to be gone after erase")
	}
	if len(r.FindByNodeID(id)) != 0 {
		t.Fatal("expected node id index cleared after erase")
	}
}

func TestModifyReindexesNodeID(t *testing.T) {
	r := New(10, false)
	e := ep("::1", 1000)
	r.Insert(e, 18)

	var id chainhash.Hash
	id[0] = 7
	r.Modify(e, func(c *Channel) {
		c.NodeID = id
		c.HasNodeID = true
	})

	found := r.FindByNodeID(id)
	if len(found) != 1 || found[0].Endpoint != e {
		t.Fatalf("expected channel findable by node id, got %v", found)
	}
}

func TestCleanNodeIDForEndpointKeepsNewerPort(t *testing.T) {
	r := New(10, false)
	var id chainhash.Hash
	id[0] = 9

	oldEp := ep("fe80::1", 1000)
	newEp := ep("fe80::1", 2000)
	r.Insert(oldEp, 18)
	r.Insert(newEp, 18)
	r.Modify(oldEp, func(c *Channel) { c.NodeID = id; c.HasNodeID = true })
	r.Modify(newEp, func(c *Channel) { c.NodeID = id; c.HasNodeID = true })

	r.CleanNodeIDForEndpoint(newEp, id)

	if _, ok := r.Find(oldEp); ok {
		t.Fatal("expected the older-port channel to be removed")
	}
	if _, ok := r.Find(newEp); !ok {
		t.Fatal("expected the newer-port channel to remain")
	}
}

func TestRandomSetReturnsDistinctChannels(t *testing.T) {
	r := New(100, true)
	for i := uint16(0); i < 20; i++ {
		r.Insert(ep("::1", 1000+i), 18)
	}
	sampled := r.RandomSet(5)
	if len(sampled) != 5 {
		t.Fatalf("RandomSet(5) returned %d channels, want 5", len(sampled))
	}
	seen := make(map[*Channel]bool)
	for _, c := range sampled {
		if seen[c] {
			t.Fatal("RandomSet returned a duplicate channel")
		}
		seen[c] = true
	}
}

func TestRandomFillZeroPadsRemainder(t *testing.T) {
	r := New(10, false)
	r.Insert(ep("::1", 1000), 18)
	target := make([]netip.AddrPort, 8)
	r.RandomFill(target)

	nonZero := 0
	for _, e := range target {
		if e.IsValid() {
			nonZero++
		}
	}
	if nonZero != 1 {
		t.Fatalf("expected exactly 1 filled endpoint, got %d", nonZero)
	}
}

func TestBootstrapPeerPrefersOldestAttemptAboveMinVersion(t *testing.T) {
	r := New(10, false)
	now := time.Now()
	low, _ := r.Insert(ep("::1", 1000), 17)
	old, _ := r.Insert(ep("::2", 1000), 18)
	recent, _ := r.Insert(ep("::3", 1000), 18)

	low.LastBootstrapAttempt = now.Add(-time.Hour)
	old.LastBootstrapAttempt = now.Add(-time.Minute)
	recent.LastBootstrapAttempt = now

	got, ok := r.BootstrapPeer(18)
	if !ok {
		t.Fatal("expected a bootstrap peer")
	}
	if got != old.Endpoint {
		t.Fatalf("BootstrapPeer returned %v, want the older eligible peer %v", got, old.Endpoint)
	}
}

func TestPurgeRemovesStaleChannels(t *testing.T) {
	r := New(10, false)
	stale, _ := r.Insert(ep("::1", 1000), 18)
	fresh, _ := r.Insert(ep("::2", 1000), 18)

	stale.LastPacketReceived = time.Now().Add(-time.Hour)
	fresh.LastPacketReceived = time.Now()

	removed := r.Purge(time.Now().Add(-time.Minute))
	if removed != 1 {
		t.Fatalf("Purge removed %d, want 1", removed)
	}
	if _, ok := r.Find(stale.Endpoint); ok {
		t.Fatal("expected stale channel to be purged")
	}
	if _, ok := r.Find(fresh.Endpoint); !ok {
		t.Fatal("expected fresh channel to survive purge")
	}
}

func TestKeepaliveTargetsOrderedOldestFirst(t *testing.T) {
	r := New(10, false)
	a, _ := r.Insert(ep("::1", 1000), 18)
	b, _ := r.Insert(ep("::2", 1000), 18)

	now := time.Now()
	a.LastPacketReceived = now.Add(-time.Hour)
	b.LastPacketReceived = now.Add(-2 * time.Hour)

	targets := r.KeepaliveTargets(time.Minute)
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}
	if targets[0] != b || targets[1] != a {
		t.Fatal("expected targets ordered oldest-last-packet-received first")
	}
}
