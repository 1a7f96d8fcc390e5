// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"crypto/ed25519"
	"os"

	"github.com/decred/vigil-netcore/chainhash"
	"github.com/decred/vigil-netcore/wire"
	"github.com/pkg/errors"
)

// identity is this node's Ed25519 node-id keypair, satisfying
// connmgr.Signer. The node-id is distinct from any wallet or
// representative key; it only authenticates handshake responses.
type identity struct {
	public  ed25519.PublicKey
	private ed25519.PrivateKey
}

// loadOrCreateIdentity reads a 32-byte seed from path, or generates and
// persists a fresh one if path does not exist yet. Wallet key management
// proper is out of scope; this is only the transport-layer node-id.
func loadOrCreateIdentity(path string) (*identity, error) {
	seed, err := os.ReadFile(path)
	if err == nil {
		if len(seed) != ed25519.SeedSize {
			return nil, errors.Errorf("identity: %s has %d bytes, want %d", path, len(seed), ed25519.SeedSize)
		}
		priv := ed25519.NewKeyFromSeed(seed)
		return &identity{public: priv.Public().(ed25519.PublicKey), private: priv}, nil
	}
	if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "identity: reading %s", path)
	}

	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, errors.Wrap(err, "identity: generating node-id keypair")
	}
	if err := os.WriteFile(path, priv.Seed(), 0o600); err != nil {
		return nil, errors.Wrapf(err, "identity: persisting %s", path)
	}
	return &identity{public: pub, private: priv}, nil
}

// NodeID returns the node-id's public key as a chainhash.Hash, the wire
// representation connmgr and the handshake codec share.
func (id *identity) NodeID() chainhash.Hash {
	var h chainhash.Hash
	copy(h[:], id.public)
	return h
}

// Sign produces the Ed25519 signature over cookie that
// connmgr.CookieStore.Validate checks against the claimed node-id.
func (id *identity) Sign(cookie chainhash.Hash) wire.Signature {
	var sig wire.Signature
	copy(sig[:], ed25519.Sign(id.private, cookie[:]))
	return sig
}
