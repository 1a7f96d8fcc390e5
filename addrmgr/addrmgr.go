// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package addrmgr implements the peer channel registry (component 4.D):
// a table of known UDP peer channels indexed by endpoint and node ID,
// with per-IP connection caps, bootstrap-peer selection, random
// sampling for keepalive fan-out, and idle-channel purging.
package addrmgr

import (
	"net/netip"
	"sort"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/decred/vigil-netcore/chainhash"
	"github.com/decred/vigil-netcore/peer"
	"github.com/decred/vigil-netcore/prand"
)

// log is the package-level diagnostic logger, set via UseLogger.
var log = slog.Disabled

// UseLogger sets the package-wide logger used for registry diagnostics
// such as purge counts and per-IP cap rejections.
func UseLogger(logger slog.Logger) {
	log = logger
}

// DefaultMaxPeersPerIP bounds how many distinct channels a single IP
// address may occupy in the registry. The reference node defines this
// cap but its numeric value was not present in the retrieved sources;
// this is an informed default rather than a value read off a constant.
const DefaultMaxPeersPerIP = 10

// Channel is one known peer: its UDP endpoint, negotiated protocol
// version, authenticated node ID (once handshake completes), and the
// bookkeeping timestamps the registry's indexes and purge logic use.
type Channel struct {
	Endpoint       netip.AddrPort
	NetworkVersion uint8
	NodeID         chainhash.Hash
	HasNodeID      bool

	LastPacketReceived   time.Time
	LastPacketSent       time.Time
	LastBootstrapAttempt time.Time

	// State tracks this channel's position in the new -> handshaking ->
	// established -> idle -> purged lifecycle.
	State *peer.Machine
}

// Registry is the peer channel table. The zero value is not usable; use
// New. A Registry is safe for concurrent use.
type Registry struct {
	mu sync.Mutex

	maxPerIP       int
	unlimitedPerIP bool

	byEndpoint map[netip.AddrPort]*Channel
	byNodeID   map[chainhash.Hash]map[*Channel]struct{}
	ipCounts   map[netip.Addr]int
	order      []*Channel // insertion order, for random sampling
}

// New returns an empty Registry enforcing maxPerIP distinct channels per
// source IP, unless unlimitedPerIP is set (the reference node skips the
// cap entirely on its test network).
func New(maxPerIP int, unlimitedPerIP bool) *Registry {
	if maxPerIP <= 0 {
		maxPerIP = DefaultMaxPeersPerIP
	}
	return &Registry{
		maxPerIP:       maxPerIP,
		unlimitedPerIP: unlimitedPerIP,
		byEndpoint:     make(map[netip.AddrPort]*Channel),
		byNodeID:       make(map[chainhash.Hash]map[*Channel]struct{}),
		ipCounts:       make(map[netip.Addr]int),
	}
}

// Endpoints returns every currently registered endpoint, in no
// particular order, matching udp_channels::store_all's endpoint
// collection pass.
func (r *Registry) Endpoints() []netip.AddrPort {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]netip.AddrPort, 0, len(r.byEndpoint))
	for ep := range r.byEndpoint {
		out = append(out, ep)
	}
	return out
}

// Len returns the number of channels currently registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byEndpoint)
}

// MaxIPConnectionsReached reports whether ep's address has already
// reached the per-IP cap, matching udp_channels::max_ip_connections.
func (r *Registry) MaxIPConnectionsReached(ep netip.AddrPort) bool {
	if r.unlimitedPerIP {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ipCounts[ep.Addr()] >= r.maxPerIP
}

// Insert returns the existing channel for ep, or registers and returns a
// new one at the given protocol version. The second return is false if
// ep's IP is already at the per-IP cap and no channel was created.
func (r *Registry) Insert(ep netip.AddrPort, networkVersion uint8) (*Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byEndpoint[ep]; ok {
		return existing, true
	}
	if !r.unlimitedPerIP && r.ipCounts[ep.Addr()] >= r.maxPerIP {
		log.Debugf("rejecting %s: per-IP cap of %d reached", ep, r.maxPerIP)
		return nil, false
	}

	c := &Channel{Endpoint: ep, NetworkVersion: networkVersion, State: peer.New()}
	r.byEndpoint[ep] = c
	r.ipCounts[ep.Addr()]++
	r.order = append(r.order, c)
	return c, true
}

// Erase removes the channel at ep, if any.
func (r *Registry) Erase(ep netip.AddrPort) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.eraseLocked(ep)
}

func (r *Registry) eraseLocked(ep netip.AddrPort) {
	c, ok := r.byEndpoint[ep]
	if !ok {
		return
	}
	delete(r.byEndpoint, ep)
	if c.State != nil {
		_ = c.State.Transition(peer.StatePurged)
	}
	if n := r.ipCounts[ep.Addr()]; n <= 1 {
		delete(r.ipCounts, ep.Addr())
	} else {
		r.ipCounts[ep.Addr()] = n - 1
	}
	if c.HasNodeID {
		delete(r.byNodeID[c.NodeID], c)
		if len(r.byNodeID[c.NodeID]) == 0 {
			delete(r.byNodeID, c.NodeID)
		}
	}
	for i, oc := range r.order {
		if oc == c {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Find returns the channel at ep, if any.
func (r *Registry) Find(ep netip.AddrPort) (*Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byEndpoint[ep]
	return c, ok
}

// FindByNodeID returns every channel currently authenticated to nodeID.
// The index is non-unique: the same node ID can appear from more than
// one endpoint briefly, until CleanNodeID resolves the duplicate.
func (r *Registry) FindByNodeID(nodeID chainhash.Hash) []*Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.byNodeID[nodeID]
	out := make([]*Channel, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// Modify applies fn to the channel at ep under the registry lock,
// re-indexing by node ID if fn assigns one. It reports whether a
// channel was found.
func (r *Registry) Modify(ep netip.AddrPort, fn func(*Channel)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byEndpoint[ep]
	if !ok {
		return false
	}
	if c.HasNodeID {
		delete(r.byNodeID[c.NodeID], c)
	}
	fn(c)
	if c.HasNodeID {
		if r.byNodeID[c.NodeID] == nil {
			r.byNodeID[c.NodeID] = make(map[*Channel]struct{})
		}
		r.byNodeID[c.NodeID][c] = struct{}{}
	}
	return true
}

// CleanNodeID removes every channel currently indexed under nodeID,
// matching udp_channels::clean_node_id(account).
func (r *Registry) CleanNodeID(nodeID chainhash.Hash) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.byNodeID[nodeID] {
		r.eraseLocked(c.Endpoint)
	}
}

// CleanNodeIDForEndpoint removes the first channel found that shares
// nodeID and ep's IP address but has a different port (at most one
// channel is removed per call),
// matching udp_channels::clean_node_id(endpoint, account): a node
// reconnecting from a new port on the same address supersedes its
// earlier registration.
func (r *Registry) CleanNodeIDForEndpoint(ep netip.AddrPort, nodeID chainhash.Hash) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for c := range r.byNodeID[nodeID] {
		if c.Endpoint.Addr() == ep.Addr() && c.Endpoint.Port() != ep.Port() {
			r.eraseLocked(c.Endpoint)
			return
		}
	}
}

// RandomSet returns up to count distinct channels chosen uniformly at
// random, matching udp_channels::random_set's bounded-attempt sampling
// (it gives up after 2*count draws rather than looping indefinitely).
func (r *Registry) RandomSet(count int) []*Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.order) == 0 || count <= 0 {
		return nil
	}

	seen := make(map[*Channel]struct{}, count)
	result := make([]*Channel, 0, count)
	cutoff := count * 2
	for i := 0; i < cutoff && len(result) < count; i++ {
		idx := prand.IntN(len(r.order))
		c := r.order[idx]
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		result = append(result, c)
	}
	return result
}

// RandomFill fills target with up to len(target) randomly sampled
// endpoints, zero-filling any remaining slots, matching
// udp_channels::random_fill.
func (r *Registry) RandomFill(target []netip.AddrPort) {
	peers := r.RandomSet(len(target))
	var zero netip.AddrPort
	for i := range target {
		target[i] = zero
	}
	for i, c := range peers {
		target[i] = c.Endpoint
	}
}

// BootstrapPeer returns the endpoint of the channel with the oldest
// LastBootstrapAttempt whose negotiated version is at least minVersion,
// and stamps its attempt time to now, matching
// udp_channels::bootstrap_peer. The second return is false if no
// eligible channel exists.
func (r *Registry) BootstrapPeer(minVersion uint8) (netip.AddrPort, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var best *Channel
	for _, c := range r.byEndpoint {
		if c.NetworkVersion < minVersion {
			continue
		}
		if best == nil || c.LastBootstrapAttempt.Before(best.LastBootstrapAttempt) {
			best = c
		}
	}
	if best == nil {
		return netip.AddrPort{}, false
	}
	best.LastBootstrapAttempt = time.Now()
	return best.Endpoint, true
}

// Purge removes every channel whose LastPacketReceived is older than
// cutoff, matching udp_channels::purge, and returns how many were
// removed. A zero LastPacketReceived (never received from) is treated
// as older than any cutoff.
func (r *Registry) Purge(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stale []netip.AddrPort
	for ep, c := range r.byEndpoint {
		if c.LastPacketReceived.Before(cutoff) {
			stale = append(stale, ep)
		}
	}
	for _, ep := range stale {
		r.eraseLocked(ep)
	}
	if len(stale) > 0 {
		log.Infof("purged %d stale channels", len(stale))
	}
	return len(stale)
}

// KeepaliveTargets returns every channel that hasn't been heard from
// since period ago, oldest first, matching the ordered scan
// udp_channels::ongoing_keepalive uses to decide who needs a keepalive.
// Eligible established channels are marked idle, matching the
// established -> idle lifecycle transition.
func (r *Registry) KeepaliveTargets(period time.Duration) []*Channel {
	r.mu.Lock()
	cutoff := time.Now().Add(-period)
	out := make([]*Channel, 0, len(r.byEndpoint))
	for _, c := range r.byEndpoint {
		if c.LastPacketReceived.Before(cutoff) {
			out = append(out, c)
			if c.State != nil && c.State.State() == peer.StateEstablished {
				_ = c.State.Transition(peer.StateIdle)
			}
		}
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].LastPacketReceived.Before(out[j].LastPacketReceived)
	})
	return out
}
