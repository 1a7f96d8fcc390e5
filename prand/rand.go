// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package prand is the networking core's sole source of non-deterministic
// randomness: registry sampling (component 4.D random_set/random_fill),
// SYN cookie generation (component 4.F), and bounded rejection sampling.
// It plays the role the teacher's node/crypto/rand module plays for a
// full node — a single generator, seeded once at startup, rather than scattering
// crypto/rand reads across every caller.
package prand

import (
	cryptorand "crypto/rand"
	"math/rand/v2"
	"sync"
)

// generator is a process-wide ChaCha8 source seeded once from the
// operating system's CSPRNG at startup and never reseeded. A single shared *rand.Rand, guarded by a
// mutex, is simpler and fast enough for this module's call volumes
// (per-keepalive sampling, per-handshake cookie issuance) — nowhere here
// needs the throughput that would justify a per-goroutine source.
var generator = struct {
	mu sync.Mutex
	r  *rand.Rand
}{r: rand.New(newChaCha8())}

func newChaCha8() rand.Source {
	var seed [32]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		// crypto/rand.Read only fails if the system CSPRNG is
		// unavailable, a condition this module cannot recover from.
		panic("prand: system entropy source unavailable: " + err.Error())
	}
	return rand.NewChaCha8(seed)
}

// Uint64 returns a uniformly distributed 64-bit value.
func Uint64() uint64 {
	generator.mu.Lock()
	defer generator.mu.Unlock()
	return generator.r.Uint64()
}

// IntN returns a uniformly distributed value in [0, n). It panics if n <= 0.
func IntN(n int) int {
	generator.mu.Lock()
	defer generator.mu.Unlock()
	return generator.r.IntN(n)
}

// Cookie256 is a 256-bit SYN cookie as assigned during the node_id
// handshake (component 4.F).
type Cookie256 [32]byte

// NewCookie256 returns a fresh random 256-bit cookie.
func NewCookie256() Cookie256 {
	var c Cookie256
	generator.mu.Lock()
	for i := 0; i < len(c); i += 8 {
		v := generator.r.Uint64()
		c[i] = byte(v)
		c[i+1] = byte(v >> 8)
		c[i+2] = byte(v >> 16)
		c[i+3] = byte(v >> 24)
		c[i+4] = byte(v >> 32)
		c[i+5] = byte(v >> 40)
		c[i+6] = byte(v >> 48)
		c[i+7] = byte(v >> 56)
	}
	generator.mu.Unlock()
	return c
}
