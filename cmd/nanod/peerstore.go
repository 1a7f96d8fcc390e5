// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"io"
	"net/netip"
	"os"

	"github.com/decred/vigil-netcore/addrmgr"
	"github.com/decred/vigil-netcore/connmgr"
	"github.com/pkg/errors"
)

// filePeerStore is the smallest possible connmgr.PeerStore: the peer
// list lives in one file of back-to-back addrmgr.PersistedPeer records,
// replaced atomically on every StoreAll. The reference node's
// block_store-backed peer table is out of scope; this exists only so a
// restarted node can reseed its address registry without a working DNS
// seed or preconfigured list.
type filePeerStore struct {
	path string
}

// fileWriteTx accumulates endpoints for one StoreAll call; nothing is
// written to disk until Commit.
type fileWriteTx struct {
	endpoints []netip.AddrPort
}

func newFilePeerStore(path string) *filePeerStore {
	return &filePeerStore{path: path}
}

func (s *filePeerStore) BeginWriteTx() (connmgr.WriteTx, error) {
	return &fileWriteTx{}, nil
}

func (s *filePeerStore) Commit(tx connmgr.WriteTx) error {
	wtx := tx.(*fileWriteTx)
	var buf bytes.Buffer
	for _, ep := range wtx.endpoints {
		if err := (addrmgr.PersistedPeer{Endpoint: ep}).Encode(&buf); err != nil {
			return errors.Wrap(err, "peerstore: encoding endpoint")
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "peerstore: writing %s", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrapf(err, "peerstore: replacing %s", s.path)
	}
	return nil
}

func (s *filePeerStore) Rollback(tx connmgr.WriteTx) error {
	return nil
}

func (s *filePeerStore) PeerClear(tx connmgr.WriteTx) error {
	tx.(*fileWriteTx).endpoints = nil
	return nil
}

func (s *filePeerStore) PeerPut(tx connmgr.WriteTx, ep netip.AddrPort) error {
	wtx := tx.(*fileWriteTx)
	wtx.endpoints = append(wtx.endpoints, ep)
	return nil
}

// Load reads previously persisted endpoints, returning an empty slice
// (not an error) if the file doesn't exist yet.
func (s *filePeerStore) Load() ([]netip.AddrPort, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "peerstore: reading %s", s.path)
	}

	r := bytes.NewReader(raw)
	var eps []netip.AddrPort
	for {
		peer, err := addrmgr.DecodePersistedPeer(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errors.Wrapf(err, "peerstore: decoding %s", s.path)
		}
		eps = append(eps, peer.Endpoint)
	}
	return eps, nil
}
