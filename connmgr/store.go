// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package connmgr

import (
	"net/netip"

	"github.com/decred/vigil-netcore/addrmgr"
)

// WriteTx is a single persistence transaction over the peer store. It
// must be committed or rolled back by the caller; PeerStore.Commit and
// PeerStore.Rollback apply to the transaction that produced it.
type WriteTx interface{}

// PeerStore persists the channel registry's known endpoints across
// restarts. It plays the role the reference node's block_store plays
// for peers alone (peer_clear/peer_put under a single write
// transaction); the ledger/storage engine proper is out of scope here.
type PeerStore interface {
	BeginWriteTx() (WriteTx, error)
	Commit(tx WriteTx) error
	Rollback(tx WriteTx) error

	// PeerClear removes every persisted endpoint.
	PeerClear(tx WriteTx) error
	// PeerPut persists ep.
	PeerPut(tx WriteTx, ep netip.AddrPort) error
}

// StoreAll persists every endpoint currently in registry, optionally
// clearing prior entries first, matching udp_channels::store_all: the
// registry's lock is released before the write transaction begins so
// that a slow store backend never blocks registry reads.
func StoreAll(store PeerStore, registry *addrmgr.Registry, clearFirst bool) error {
	endpoints := registry.Endpoints()
	if len(endpoints) == 0 {
		return nil
	}

	tx, err := store.BeginWriteTx()
	if err != nil {
		return err
	}
	if clearFirst {
		if err := store.PeerClear(tx); err != nil {
			store.Rollback(tx)
			return err
		}
	}
	for _, ep := range endpoints {
		if err := store.PeerPut(tx, ep); err != nil {
			store.Rollback(tx)
			return err
		}
	}
	return store.Commit(tx)
}
