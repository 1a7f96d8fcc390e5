// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package connmgr

import (
	"crypto/ed25519"
	"net/netip"
	"testing"
	"time"

	"github.com/decred/vigil-netcore/chainhash"
	"github.com/decred/vigil-netcore/wire"
)

func ep(ip string, port uint16) netip.AddrPort {
	return netip.AddrPortFrom(netip.MustParseAddr(ip), port)
}

func TestAssignAndValidateRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	var nodeID chainhash.Hash
	copy(nodeID[:], pub)

	s := NewCookieStore(5 * time.Second)
	e := ep("::1", 1000)
	cookie := s.Assign(e)

	var sig wire.Signature
	copy(sig[:], ed25519.Sign(priv, cookie[:]))

	if !s.Validate(e, nodeID, sig) {
		t.Fatal("expected a correctly signed cookie to validate")
	}
}

func TestValidateRejectsWrongSigner(t *testing.T) {
	_, priv, _ := ed25519.GenerateKey(nil)
	otherPub, _, _ := ed25519.GenerateKey(nil)
	var otherID chainhash.Hash
	copy(otherID[:], otherPub)

	s := NewCookieStore(5 * time.Second)
	e := ep("::1", 1000)
	cookie := s.Assign(e)

	var sig wire.Signature
	copy(sig[:], ed25519.Sign(priv, cookie[:]))

	if s.Validate(e, otherID, sig) {
		t.Fatal("expected validation to fail for a different claimed node id")
	}
}

func TestValidateIsOneShot(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(nil)
	var nodeID chainhash.Hash
	copy(nodeID[:], pub)

	s := NewCookieStore(5 * time.Second)
	e := ep("::1", 1000)
	cookie := s.Assign(e)
	var sig wire.Signature
	copy(sig[:], ed25519.Sign(priv, cookie[:]))

	if !s.Validate(e, nodeID, sig) {
		t.Fatal("first validation should succeed")
	}
	if s.Validate(e, nodeID, sig) {
		t.Fatal("second validation of a consumed cookie should fail")
	}
}

func TestValidateRejectsExpiredCookie(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(nil)
	var nodeID chainhash.Hash
	copy(nodeID[:], pub)

	s := NewCookieStore(5 * time.Millisecond)
	e := ep("::1", 1000)
	cookie := s.Assign(e)
	var sig wire.Signature
	copy(sig[:], ed25519.Sign(priv, cookie[:]))

	time.Sleep(10 * time.Millisecond)
	if s.Validate(e, nodeID, sig) {
		t.Fatal("expected an expired cookie to fail validation")
	}
}

func TestPurgeRemovesExpiredCookies(t *testing.T) {
	s := NewCookieStore(5 * time.Millisecond)
	s.Assign(ep("::1", 1000))
	s.Assign(ep("::2", 1000))
	time.Sleep(10 * time.Millisecond)

	if got := s.Purge(); got != 2 {
		t.Fatalf("Purge() = %d, want 2", got)
	}
}
