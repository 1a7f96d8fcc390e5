// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package connmgr

import (
	"net/netip"
	"testing"

	"github.com/decred/vigil-netcore/addrmgr"
)

type memTx struct {
	cleared bool
	puts    []netip.AddrPort
}

type memStore struct {
	committed  []netip.AddrPort
	rolledBack bool
}

func (s *memStore) BeginWriteTx() (WriteTx, error) { return &memTx{}, nil }

func (s *memStore) Commit(tx WriteTx) error {
	t := tx.(*memTx)
	s.committed = t.puts
	return nil
}

func (s *memStore) Rollback(tx WriteTx) error {
	s.rolledBack = true
	return nil
}

func (s *memStore) PeerClear(tx WriteTx) error {
	tx.(*memTx).cleared = true
	return nil
}

func (s *memStore) PeerPut(tx WriteTx, ep netip.AddrPort) error {
	t := tx.(*memTx)
	t.puts = append(t.puts, ep)
	return nil
}

func TestStoreAllPersistsEveryEndpoint(t *testing.T) {
	registry := addrmgr.New(10, false)
	registry.Insert(ep("::1", 1000), 18)
	registry.Insert(ep("::2", 1000), 18)

	store := &memStore{}
	if err := StoreAll(store, registry, true); err != nil {
		t.Fatalf("StoreAll: %v", err)
	}
	if len(store.committed) != 2 {
		t.Fatalf("committed %d endpoints, want 2", len(store.committed))
	}
}

func TestStoreAllSkipsEmptyRegistry(t *testing.T) {
	registry := addrmgr.New(10, false)
	store := &memStore{}
	if err := StoreAll(store, registry, true); err != nil {
		t.Fatalf("StoreAll: %v", err)
	}
	if store.committed != nil {
		t.Fatal("expected no transaction for an empty registry")
	}
}
