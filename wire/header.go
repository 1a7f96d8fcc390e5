// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire implements the byte-exact binary wire protocol: message
// header, per-type payload encoding/decoding, and the block and vote value
// types those payloads carry.
package wire

import (
	"encoding/binary"
	"io"
)

// Network identifies which of the three networks a header's magic selects.
type Network uint16

// Recognized networks, keyed by their 2-byte wire magic.
const (
	NetworkTest Network = 'R' | 'A'<<8
	NetworkBeta Network = 'N' | 'B'<<8
	NetworkLive Network = 'R' | 'C'<<8
)

// CurrentVersion is the highest protocol version this package encodes
// and decodes.
const CurrentVersion uint8 = 18

// MinSupportedVersion is the lowest protocol version a peer may present
// before the parser rejects its messages as outdated.
const MinSupportedVersion uint8 = 17

// String returns a human-readable network name.
func (n Network) String() string {
	switch n {
	case NetworkTest:
		return "test"
	case NetworkBeta:
		return "beta"
	case NetworkLive:
		return "live"
	default:
		return "unknown"
	}
}

// MessageType identifies the payload that follows a header.
type MessageType uint8

// Recognized message types.
const (
	MessageTypeInvalid          MessageType = 0
	MessageTypeNotABlock        MessageType = 1
	MessageTypeKeepalive        MessageType = 2
	MessageTypePublish          MessageType = 3
	MessageTypeConfirmReq       MessageType = 4
	MessageTypeConfirmAck       MessageType = 5
	MessageTypeBulkPull         MessageType = 6
	MessageTypeBulkPush         MessageType = 7
	MessageTypeFrontierReq      MessageType = 8
	MessageTypeNodeIDHandshake  MessageType = 10
	MessageTypeBulkPullAccount  MessageType = 11
)

// HeaderSize is the fixed wire size of a message header.
const HeaderSize = 8

// Header is the 8-byte preamble that precedes every message payload.
type Header struct {
	Network        Network
	VersionMax     uint8
	VersionUsing   uint8
	VersionMin     uint8
	Type           MessageType
	Extension      uint16
}

// NewHeader returns a Header for the given message type at the supplied
// protocol versions, with a zero extension field. Callers building a
// specific message type should further set extension sub-fields with the
// type-specific helpers (e.g. withBlockType).
func NewHeader(network Network, versionMax, versionUsing, versionMin uint8, mt MessageType) Header {
	return Header{
		Network:      network,
		VersionMax:   versionMax,
		VersionUsing: versionUsing,
		VersionMin:   versionMin,
		Type:         mt,
	}
}

// Encode writes the 8-byte wire form of h to w.
func (h Header) Encode(w io.Writer) error {
	var buf [HeaderSize]byte
	binary.LittleEndian.PutUint16(buf[0:2], uint16(h.Network))
	buf[2] = h.VersionMax
	buf[3] = h.VersionUsing
	buf[4] = h.VersionMin
	buf[5] = byte(h.Type)
	binary.LittleEndian.PutUint16(buf[6:8], h.Extension)
	_, err := w.Write(buf[:])
	return err
}

// DecodeHeader reads an 8-byte header from r.
func DecodeHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Header{}, err
	}
	return Header{
		Network:      Network(binary.LittleEndian.Uint16(buf[0:2])),
		VersionMax:   buf[2],
		VersionUsing: buf[3],
		VersionMin:   buf[4],
		Type:         MessageType(buf[5]),
		Extension:    binary.LittleEndian.Uint16(buf[6:8]),
	}, nil
}
