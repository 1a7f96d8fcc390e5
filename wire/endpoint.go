// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"io"
	"net/netip"
)

// EndpointSize is the wire size, in bytes, of a single endpoint: a 16-byte
// IPv6 address (IPv4 addresses are represented IPv4-mapped) followed by a
// 2-byte big-endian port.
const EndpointSize = 18

// Endpoint is a (address, port) pair as carried on the wire. The address is
// always the 16-byte IPv6 form; IPv4 peers are represented as IPv4-mapped
// IPv6 addresses, matching the reference node's single-address-family wire
// representation.
type Endpoint struct {
	Addr netip.Addr
	Port uint16
}

// ZeroEndpoint is the all-zero placeholder endpoint used to pad unused
// keepalive peer slots.
var ZeroEndpoint = Endpoint{Addr: netip.IPv6Unspecified()}

// NewEndpoint returns the Endpoint for addr and port, normalizing addr to
// its IPv4-mapped IPv6 form when it is an IPv4 address.
func NewEndpoint(addr netip.Addr, port uint16) Endpoint {
	if addr.Is4() {
		addr = netip.AddrFrom16(addr.As16())
	}
	return Endpoint{Addr: addr, Port: port}
}

// IsZero reports whether e is the zero-address placeholder endpoint.
func (e Endpoint) IsZero() bool {
	return e.Addr == netip.IPv6Unspecified() || !e.Addr.IsValid()
}

// AddrPort returns e as a standard library netip.AddrPort.
func (e Endpoint) AddrPort() netip.AddrPort {
	return netip.AddrPortFrom(e.Addr, e.Port)
}

// encode writes the 18-byte wire representation of e to w: the 16-byte
// address followed by the big-endian port. This is the one field in the
// wire protocol that is not little-endian.
func (e Endpoint) encode(w io.Writer) error {
	var buf [EndpointSize]byte
	a16 := e.Addr.As16()
	copy(buf[:16], a16[:])
	binary.BigEndian.PutUint16(buf[16:], e.Port)
	_, err := w.Write(buf[:])
	return err
}

// decodeEndpoint reads an 18-byte endpoint from r.
func decodeEndpoint(r io.Reader) (Endpoint, error) {
	var buf [EndpointSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Endpoint{}, err
	}
	var a16 [16]byte
	copy(a16[:], buf[:16])
	port := binary.BigEndian.Uint16(buf[16:])
	return Endpoint{Addr: netip.AddrFrom16(a16), Port: port}, nil
}
