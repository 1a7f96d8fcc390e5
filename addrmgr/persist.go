// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"encoding/binary"
	"io"
	"net/netip"

	"github.com/pkg/errors"
)

// persistedPeerSize is the on-disk record size: a 16-byte address (IPv4
// addresses are encoded in their 4-in-6 mapped form) plus a 2-byte
// big-endian port, matching the reference endpoint_key persisted form.
const persistedPeerSize = 18

// PersistedPeer is the on-disk representation of one known endpoint,
// matching endpoint_key's 16-byte-address-plus-big-endian-port layout
// exactly. It exists so a PeerStore implementation's file format doesn't
// need to invent its own encoding.
type PersistedPeer struct {
	Endpoint netip.AddrPort
}

// Encode writes p's 18-byte record to w: the address in its 16-byte
// form, followed by the port as big-endian.
func (p PersistedPeer) Encode(w io.Writer) error {
	var buf [persistedPeerSize]byte
	addr16 := p.Endpoint.Addr().As16()
	copy(buf[:16], addr16[:])
	binary.BigEndian.PutUint16(buf[16:18], p.Endpoint.Port())
	_, err := w.Write(buf[:])
	return err
}

// DecodePersistedPeer reads one 18-byte record from r.
func DecodePersistedPeer(r io.Reader) (PersistedPeer, error) {
	var buf [persistedPeerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return PersistedPeer{}, errors.Wrap(err, "addrmgr: reading persisted peer record")
	}
	addr := netip.AddrFrom16([16]byte(buf[:16])).Unmap()
	port := binary.BigEndian.Uint16(buf[16:18])
	return PersistedPeer{Endpoint: netip.AddrPortFrom(addr, port)}, nil
}
