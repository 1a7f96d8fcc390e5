// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import "testing"

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestNormalizeFillsZeroValues(t *testing.T) {
	var cfg Config
	cfg.Normalize()

	if cfg.Network != "live" {
		t.Errorf("network = %q, want live", cfg.Network)
	}
	if cfg.Port != DefaultPort {
		t.Errorf("port = %d, want %d", cfg.Port, DefaultPort)
	}
	if cfg.IOWorkers != DefaultIOWorkers {
		t.Errorf("io workers = %d, want %d", cfg.IOWorkers, DefaultIOWorkers)
	}
	if cfg.MaxPeersPerIP != DefaultMaxPeersPerIP {
		t.Errorf("max peers per ip = %d, want %d", cfg.MaxPeersPerIP, DefaultMaxPeersPerIP)
	}
	if cfg.PeerDbFilename == "" {
		t.Error("peer db filename left empty")
	}
}

func TestValidateRejectsUnrecognizedNetwork(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Network = "nonexistent"
	if _, err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unrecognized network")
	}
}

func TestValidateRejectsZeroCapWithoutUnlimitedFlag(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPeersPerIP = 0
	if _, err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero max peers per ip without unlimited flag")
	}

	cfg.UnlimitedPeersPerIP = true
	if _, err := cfg.Validate(); err != nil {
		t.Fatalf("unlimited_peers_per_ip should permit a zero cap: %v", err)
	}
}

func TestValidateRejectsMalformedPreconfiguredPeer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PreconfiguredPeers = []string{"not-an-endpoint"}
	if _, err := cfg.Validate(); err == nil {
		t.Fatal("expected error for malformed preconfigured peer")
	}
}

func TestValidateReturnsResolvedParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Network = "test"
	params, err := cfg.Validate()
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if params.Name != "test" {
		t.Errorf("resolved params name = %q, want test", params.Name)
	}
}

func TestPreconfiguredEndpointsSkipsMalformedEntries(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PreconfiguredPeers = []string{"127.0.0.1:7075", "garbage", "[::1]:7076"}

	eps := cfg.PreconfiguredEndpoints()
	if len(eps) != 2 {
		t.Fatalf("got %d endpoints, want 2", len(eps))
	}
}
