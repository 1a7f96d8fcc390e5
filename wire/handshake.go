// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/decred/vigil-netcore/chainhash"
)

// HandshakeResponse is the node-id + signature pair proving ownership of a
// syn cookie.
type HandshakeResponse struct {
	NodeID    chainhash.Hash
	Signature Signature
}

// NodeIDHandshake carries an optional 32-byte cookie query and/or an
// optional signed response, as flagged by two extension bits.
type NodeIDHandshake struct {
	Query    *chainhash.Hash
	Response *HandshakeResponse
}

// MessageType implements Message.
func (n *NodeIDHandshake) MessageType() MessageType { return MessageTypeNodeIDHandshake }

// headerExtension implements Message.
func (n *NodeIDHandshake) headerExtension(extension uint16) uint16 {
	return withHandshakeFlags(extension, n.Query != nil, n.Response != nil)
}

// Encode implements Message.
func (n *NodeIDHandshake) Encode(w io.Writer) error {
	if n.Query != nil {
		if _, err := w.Write(n.Query[:]); err != nil {
			return err
		}
	}
	if n.Response != nil {
		if _, err := w.Write(n.Response.NodeID[:]); err != nil {
			return err
		}
		if _, err := w.Write(n.Response.Signature[:]); err != nil {
			return err
		}
	}
	return nil
}

// DecodeNodeIDHandshake reads a node_id_handshake payload from r.
func DecodeNodeIDHandshake(r io.Reader, header Header) (*NodeIDHandshake, error) {
	n := new(NodeIDHandshake)
	if hasHandshakeQuery(header.Extension) {
		var q chainhash.Hash
		if _, err := io.ReadFull(r, q[:]); err != nil {
			return nil, err
		}
		n.Query = &q
	}
	if hasHandshakeResponse(header.Extension) {
		resp := new(HandshakeResponse)
		if _, err := io.ReadFull(r, resp.NodeID[:]); err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(r, resp.Signature[:]); err != nil {
			return nil, err
		}
		n.Response = resp
	}
	return n, nil
}
