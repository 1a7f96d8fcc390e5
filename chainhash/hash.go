// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the 256-bit content-addressing hash type used
// throughout the networking core to identify blocks and votes.
package chainhash

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// HashSize is the number of bytes used for content hashes (BLAKE2b-256).
const HashSize = 32

// Hash is a 256-bit content hash, stored and compared as raw bytes.
type Hash [HashSize]byte

// String returns the Hash as a hex-encoded string.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether the hash is the all-zero value.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// SetBytes sets the bytes of the hash to the passed slice, which must be
// exactly HashSize bytes long.
func (h *Hash) SetBytes(newHash []byte) error {
	if len(newHash) != HashSize {
		return fmt.Errorf("invalid hash length of %d, want %d", len(newHash), HashSize)
	}
	copy(h[:], newHash)
	return nil
}

// NewHash returns a new Hash from a byte slice, returning an error if the
// slice is not exactly HashSize bytes long.
func NewHash(newHash []byte) (*Hash, error) {
	var h Hash
	if err := h.SetBytes(newHash); err != nil {
		return nil, err
	}
	return &h, nil
}

// Hasher accumulates data and produces a BLAKE2b-256 digest, mirroring the
// incremental blake2b_init/update/final sequence the reference node uses so
// multi-field hashes (votes, in particular) can be composed without an
// intermediate buffer allocation.
type Hasher struct {
	h blake2bHash
}

type blake2bHash interface {
	Write(p []byte) (int, error)
	Sum(b []byte) []byte
}

// NewHasher returns a Hasher ready to accumulate input for a 256-bit BLAKE2b
// digest.
func NewHasher() *Hasher {
	h, err := blake2b.New256(nil)
	if err != nil {
		// Only returns an error for unsupported output sizes or keys; 32
		// bytes with no key is always supported.
		panic(err)
	}
	return &Hasher{h: h}
}

// Write adds data to the running hash.
func (h *Hasher) Write(p []byte) {
	_, _ = h.h.Write(p)
}

// Sum returns the final hash.
func (h *Hasher) Sum() Hash {
	var out Hash
	copy(out[:], h.h.Sum(nil))
	return out
}

// HashB computes the BLAKE2b-256 hash of the given data and returns it as a
// byte slice.
func HashB(data []byte) []byte {
	h := blake2b.Sum256(data)
	return h[:]
}

// HashH computes the BLAKE2b-256 hash of the given data and returns it as a
// Hash.
func HashH(data []byte) Hash {
	return Hash(blake2b.Sum256(data))
}
