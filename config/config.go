// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package config holds the versioned, serializable configuration records
// for the networking core: which network to join and how the address
// registry, connection manager, and transport should be sized and
// bounded. It follows the same Version/Normalize/Validate discipline as
// stats.Config, scaled up to a whole node.
package config

import (
	"net/netip"

	"github.com/decred/vigil-netcore/netparams"
	"github.com/decred/vigil-netcore/stats"
	"github.com/pkg/errors"
)

// configVersion is bumped whenever Config's on-disk shape changes.
const configVersion = 1

// DefaultPort is the UDP port the transport binds when Config.Port is
// left at zero, matching the reference node's default peering port.
const DefaultPort = 7075

// DefaultMaxPeersPerIP mirrors addrmgr.DefaultMaxPeersPerIP; duplicated
// here as a literal so this package doesn't need to import addrmgr only
// for a constant.
const DefaultMaxPeersPerIP = 10

// DefaultIOWorkers is how many receive-loop goroutines the transport
// starts when Config.IOWorkers is left at zero.
const DefaultIOWorkers = 1

// Config is the top-level, serializable configuration for one node's
// networking core.
type Config struct {
	Version int `toml:"version" json:"version"`

	// Network selects the parameter set returned by netparams.ByName.
	// One of "live", "beta", "test".
	Network string `toml:"network" json:"network"`

	// Port is the UDP port the transport binds. Zero means DefaultPort.
	Port uint16 `toml:"port" json:"port"`

	// AllowLocal disables the transport's reserved-address filter, for
	// running multiple peers against each other on one host.
	AllowLocal bool `toml:"allow_local" json:"allow_local"`

	// IOWorkers is how many concurrent receive-loop goroutines the
	// transport runs. Zero means DefaultIOWorkers.
	IOWorkers int `toml:"io_workers" json:"io_workers"`

	// MaxPeersPerIP bounds how many channels the address registry keeps
	// for a single remote IP. Zero means DefaultMaxPeersPerIP.
	MaxPeersPerIP int `toml:"max_peers_per_ip" json:"max_peers_per_ip"`

	// UnlimitedPeersPerIP disables the per-IP cap entirely, overriding
	// MaxPeersPerIP. Intended for test networks only.
	UnlimitedPeersPerIP bool `toml:"unlimited_peers_per_ip" json:"unlimited_peers_per_ip"`

	// PreconfiguredPeers seeds the address registry at startup, the way
	// the reference node's preconfigured_peers list does for a network
	// with no working DNS seed yet.
	PreconfiguredPeers []string `toml:"preconfigured_peers" json:"preconfigured_peers"`

	// PeerDbFilename names the persisted peer database path, used by
	// connmgr.StoreAll/restore at shutdown and startup.
	PeerDbFilename string `toml:"peer_db_filename" json:"peer_db_filename"`

	// Stats is the embedded stats engine configuration.
	Stats stats.Config `toml:"stats" json:"stats"`
}

// DefaultConfig returns a Config for the live network with the reference
// node's usual defaults.
func DefaultConfig() Config {
	return Config{
		Version:        configVersion,
		Network:        "live",
		Port:           DefaultPort,
		IOWorkers:      DefaultIOWorkers,
		MaxPeersPerIP:  DefaultMaxPeersPerIP,
		PeerDbFilename: "peers.db",
		Stats:          stats.DefaultConfig(),
	}
}

// Normalize fills in zero-valued fields with their defaults, the way a
// freshly-decoded but partially-specified config file should be treated
// before Validate runs.
func (c *Config) Normalize() {
	if c.Version == 0 {
		c.Version = configVersion
	}
	if c.Network == "" {
		c.Network = "live"
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.IOWorkers == 0 {
		c.IOWorkers = DefaultIOWorkers
	}
	if c.MaxPeersPerIP == 0 {
		c.MaxPeersPerIP = DefaultMaxPeersPerIP
	}
	if c.PeerDbFilename == "" {
		c.PeerDbFilename = "peers.db"
	}
	c.Stats.Normalize()
}

// Validate reports an error if c cannot be used to construct a running
// node, and resolves the selected network's Params as a side effect so
// callers don't need a second lookup.
func (c Config) Validate() (netparams.Params, error) {
	params, ok := netparams.ByName(c.Network)
	if !ok {
		return netparams.Params{}, errors.Errorf("config: unrecognized network %q", c.Network)
	}
	if c.IOWorkers < 0 {
		return netparams.Params{}, errors.New("config: io_workers must not be negative")
	}
	if c.MaxPeersPerIP <= 0 && !c.UnlimitedPeersPerIP {
		return netparams.Params{}, errors.New("config: max_peers_per_ip must be positive unless unlimited_peers_per_ip is set")
	}
	for _, raw := range c.PreconfiguredPeers {
		if _, err := netip.ParseAddrPort(raw); err != nil {
			return netparams.Params{}, errors.Wrapf(err, "config: invalid preconfigured peer %q", raw)
		}
	}
	if err := c.Stats.Validate(); err != nil {
		return netparams.Params{}, err
	}
	return params, nil
}

// PreconfiguredEndpoints parses PreconfiguredPeers, discarding entries
// that fail to parse. Callers that need a hard error over a malformed
// entry should rely on Validate having already run.
func (c Config) PreconfiguredEndpoints() []netip.AddrPort {
	eps := make([]netip.AddrPort, 0, len(c.PreconfiguredPeers))
	for _, raw := range c.PreconfiguredPeers {
		if ep, err := netip.ParseAddrPort(raw); err == nil {
			eps = append(eps, ep)
		}
	}
	return eps
}
