// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "github.com/jrick/bitset"

// Extension bit positions within the header's 16-bit little-endian
// extension field. The block-type occupies the entire high byte (bits
// 8-15) and the item count occupies the low nibble (bits 0-3); both are
// plain masks since they're multi-bit fields. The two handshake presence
// flags are single bits within that same low byte, read/written through
// bitset.Bytes. No message uses the count and the handshake flags at
// once, so the low-byte overlap never collides in practice.
const (
	extensionBlockTypeShift = 8
	extensionBlockTypeMask  = 0xff

	extensionCountShift = 0
	extensionCountMask  = 0x0f

	// handshakeQueryFlagBit is the bit index, within the low byte of the
	// extension field, of the node_id_handshake query-present flag.
	handshakeQueryFlagBit = 1
	// handshakeResponseFlagBit is the bit index of the response-present
	// flag.
	handshakeResponseFlagBit = 2
)

// extensionBlockType extracts the block-type sub-field from a header
// extension value.
func extensionBlockType(extension uint16) BlockType {
	return BlockType((extension >> extensionBlockTypeShift) & extensionBlockTypeMask)
}

// withBlockType returns extension with its block-type sub-field replaced.
func withBlockType(extension uint16, bt BlockType) uint16 {
	extension &^= extensionBlockTypeMask << extensionBlockTypeShift
	extension |= (uint16(bt) & extensionBlockTypeMask) << extensionBlockTypeShift
	return extension
}

// extensionCount extracts the item-count sub-field from a header extension
// value.
func extensionCount(extension uint16) int {
	return int((extension >> extensionCountShift) & extensionCountMask)
}

// withCount returns extension with its item-count sub-field replaced. n
// must fit in 4 bits.
func withCount(extension uint16, n int) uint16 {
	extension &^= extensionCountMask << extensionCountShift
	extension |= (uint16(n) & extensionCountMask) << extensionCountShift
	return extension
}

// extensionFlags views the low byte of the extension field as a bitset so
// the handshake presence flags can be manipulated without hand-rolled
// shifts.
func extensionFlags(extension uint16) bitset.Bytes {
	return bitset.Bytes{byte(extension)}
}

// hasHandshakeQuery reports whether the query-present flag is set.
func hasHandshakeQuery(extension uint16) bool {
	return extensionFlags(extension).Get(handshakeQueryFlagBit)
}

// hasHandshakeResponse reports whether the response-present flag is set.
func hasHandshakeResponse(extension uint16) bool {
	return extensionFlags(extension).Get(handshakeResponseFlagBit)
}

// withHandshakeFlags returns extension with the query/response presence
// flags set according to query and response.
func withHandshakeFlags(extension uint16, query, response bool) uint16 {
	flags := bitset.Bytes{byte(extension)}
	if query {
		flags.Set(handshakeQueryFlagBit)
	} else {
		flags.Unset(handshakeQueryFlagBit)
	}
	if response {
		flags.Set(handshakeResponseFlagBit)
	} else {
		flags.Unset(handshakeResponseFlagBit)
	}
	extension &^= 0x00ff
	extension |= uint16(flags[0])
	return extension
}
