// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package connmgr implements the SYN-cookie handshake and the periodic
// peer lifecycle task (component 4.F): keepalive fan-out and
// handshake-driven channel authentication.
package connmgr

import (
	"crypto/ed25519"
	"net/netip"
	"sync"
	"time"

	"github.com/decred/vigil-netcore/chainhash"
	"github.com/decred/vigil-netcore/prand"
	"github.com/decred/vigil-netcore/wire"
)

// cookieEntry is an outstanding cookie bound to one endpoint.
type cookieEntry struct {
	cookie   prand.Cookie256
	assigned time.Time
}

// CookieStore assigns and validates SYN cookies used to authenticate the
// node ID claimed in a node_id_handshake response, without requiring a
// prior TCP-style connection setup. Entries older than cutoff are
// treated as expired and are never validated successfully.
type CookieStore struct {
	mu     sync.Mutex
	cutoff time.Duration
	byEP   map[netip.AddrPort]cookieEntry
}

// NewCookieStore returns a CookieStore expiring cookies after cutoff
// (5s in the reference node's network parameters).
func NewCookieStore(cutoff time.Duration) *CookieStore {
	return &CookieStore{
		cutoff: cutoff,
		byEP:   make(map[netip.AddrPort]cookieEntry),
	}
}

// Assign issues a fresh cookie for ep, replacing any outstanding one,
// and returns it as the query half of a node_id_handshake.
func (s *CookieStore) Assign(ep netip.AddrPort) chainhash.Hash {
	c := prand.NewCookie256()
	s.mu.Lock()
	s.byEP[ep] = cookieEntry{cookie: c, assigned: time.Now()}
	s.mu.Unlock()
	return chainhash.Hash(c)
}

// Validate reports whether sig is a valid Ed25519 signature by nodeID
// over the outstanding, unexpired cookie for ep. The cookie is consumed
// (removed) regardless of outcome, matching the reference's one-shot
// cookie semantics: a handshake response is only ever checked once.
func (s *CookieStore) Validate(ep netip.AddrPort, nodeID chainhash.Hash, sig wire.Signature) bool {
	s.mu.Lock()
	entry, ok := s.byEP[ep]
	delete(s.byEP, ep)
	s.mu.Unlock()

	if !ok {
		return false
	}
	if time.Since(entry.assigned) > s.cutoff {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(nodeID[:]), entry.cookie[:], sig[:])
}

// Purge drops every outstanding cookie older than cutoff, returning the
// count removed. Callers typically run this from the timer queue
// alongside registry purging.
func (s *CookieStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoffTime := time.Now().Add(-s.cutoff)
	removed := 0
	for ep, e := range s.byEP {
		if e.assigned.Before(cutoffTime) {
			delete(s.byEP, ep)
			removed++
		}
	}
	return removed
}
