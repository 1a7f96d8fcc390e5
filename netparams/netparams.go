// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package netparams defines the per-network parameter sets that the rest
// of this module treats as ambient context: wire magic, peer-timing
// constants, and the vote cache bound. It plays the role the teacher's
// node/chaincfg package plays for a full node, scaled down to what the
// networking core needs.
package netparams

import (
	"time"

	"github.com/decred/vigil-netcore/wire"
)

// Params bundles every network-specific constant the networking core
// consults. A node selects exactly one Params value at startup and treats
// it as read-only for the process lifetime.
type Params struct {
	// Name identifies the network for logging and CLI selection.
	Name string

	// Magic is the wire header's network identifier.
	Magic wire.Network

	// Period is the base keepalive/peer-iteration interval (component
	// 4.F): every Period, the peer lifecycle task walks the channel
	// registry for stale peers.
	Period time.Duration

	// HalfPeriod is half of Period, used to jitter scheduled sends.
	HalfPeriod time.Duration

	// IdleTimeout is how long a channel may go without a received packet
	// before it's considered idle.
	IdleTimeout time.Duration

	// Cutoff is the channel-registry purge threshold: entries whose
	// last-packet-received time is older than now minus Cutoff are
	// erased (component 4.D, purge).
	Cutoff time.Duration

	// SynCookieCutoff is how long an issued handshake cookie remains
	// valid (component 4.F).
	SynCookieCutoff time.Duration

	// BackupInterval is how often the ledger would be backed up; carried
	// as ambient context even though the ledger itself is out of scope.
	BackupInterval time.Duration

	// MaxWeightSamples bounds the representative weight sampling history.
	MaxWeightSamples int

	// WeightPeriod is the sampling interval, in seconds, for
	// representative weight snapshots.
	WeightPeriod int

	// MaxCache is the vote uniquer's upper bound on cached entries before
	// cleanup pressure increases; mirrors voting_constants.max_cache.
	MaxCache int
}

// Test is the in-process test network: short periods, a tiny vote cache,
// and the 'R','A' wire magic.
var Test = Params{
	Name:             "test",
	Magic:            wire.NetworkTest,
	Period:           1 * time.Second,
	HalfPeriod:       500 * time.Millisecond,
	IdleTimeout:      15 * time.Second,
	Cutoff:           5 * time.Second,
	SynCookieCutoff:  5 * time.Second,
	BackupInterval:   5 * time.Minute,
	MaxWeightSamples: 864,
	WeightPeriod:     5 * 60,
	MaxCache:         2,
}

// Beta is the public beta network: live-network timing, beta wire magic.
var Beta = Params{
	Name:             "beta",
	Magic:            wire.NetworkBeta,
	Period:           60 * time.Second,
	HalfPeriod:       30 * time.Second,
	IdleTimeout:      120 * time.Second,
	Cutoff:           300 * time.Second,
	SynCookieCutoff:  5 * time.Second,
	BackupInterval:   5 * time.Minute,
	MaxWeightSamples: 864,
	WeightPeriod:     5 * 60,
	MaxCache:         4 * 1024,
}

// Live is the production network.
var Live = Params{
	Name:             "live",
	Magic:            wire.NetworkLive,
	Period:           60 * time.Second,
	HalfPeriod:       30 * time.Second,
	IdleTimeout:      120 * time.Second,
	Cutoff:           300 * time.Second,
	SynCookieCutoff:  5 * time.Second,
	BackupInterval:   5 * time.Minute,
	MaxWeightSamples: 4032,
	WeightPeriod:     5 * 60,
	MaxCache:         4 * 1024,
}

// ByName returns the Params registered under name and true, or the zero
// Params and false if name names no known network.
func ByName(name string) (Params, bool) {
	switch name {
	case Test.Name:
		return Test, true
	case Beta.Name:
		return Beta, true
	case Live.Name:
		return Live, true
	default:
		return Params{}, false
	}
}
