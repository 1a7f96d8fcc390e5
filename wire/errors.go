// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "errors"

// Errors returned while encoding or decoding wire messages. These are local
// to a single field or variant; the parser package is responsible for
// turning them into the tagged parser.Status values callers actually see.
var (
	// ErrInvalidBlockType is returned when a block-type byte does not name
	// one of the five known block variants.
	ErrInvalidBlockType = errors.New("wire: invalid block type")

	// ErrTrailingData describes a payload longer than its message type's
	// exact wire size. The decoders in this package do not return it: they
	// leave such trailing bytes unread, and the parser's residue check
	// rejects the message.
	ErrTrailingData = errors.New("wire: trailing data after message")

	// ErrTooManyVoteEntries is returned when a confirm_ack payload would
	// decode to a vote with more than MaxVoteEntries entries.
	ErrTooManyVoteEntries = errors.New("wire: vote has too many entries")

	// ErrEmptyVote is returned when a confirm_ack payload decodes to a
	// vote with zero entries.
	ErrEmptyVote = errors.New("wire: vote has no entries")
)
