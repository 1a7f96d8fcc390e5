// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// KeepalivePeerCount is the fixed number of peer slots a keepalive message
// carries.
const KeepalivePeerCount = 8

// KeepaliveSize is the exact wire payload size of a keepalive message.
const KeepaliveSize = KeepalivePeerCount * EndpointSize

// Keepalive announces up to KeepalivePeerCount peer endpoints, padded with
// the zero endpoint when fewer are known.
type Keepalive struct {
	Peers [KeepalivePeerCount]Endpoint
}

// NewKeepalive returns a Keepalive with every slot set to the zero
// endpoint.
func NewKeepalive() *Keepalive {
	k := new(Keepalive)
	for i := range k.Peers {
		k.Peers[i] = ZeroEndpoint
	}
	return k
}

// MessageType implements Message.
func (k *Keepalive) MessageType() MessageType { return MessageTypeKeepalive }

// headerExtension implements Message: keepalive carries no extension bits.
func (k *Keepalive) headerExtension(extension uint16) uint16 { return extension }

// Encode implements Message.
func (k *Keepalive) Encode(w io.Writer) error {
	for _, p := range k.Peers {
		if err := p.encode(w); err != nil {
			return err
		}
	}
	return nil
}

// DecodeKeepalive reads a keepalive payload from r.
func DecodeKeepalive(r io.Reader) (*Keepalive, error) {
	k := new(Keepalive)
	for i := range k.Peers {
		p, err := decodeEndpoint(r)
		if err != nil {
			return nil, err
		}
		k.Peers[i] = p
	}
	return k, nil
}
