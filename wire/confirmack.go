// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"errors"
	"io"
)

// ErrConfirmAckShape is returned when a Vote cannot be represented as a
// confirm_ack payload: the wire format only allows either a single full
// block entry, or an all-hash-only entry list (SPEC_FULL.md §4.A).
var ErrConfirmAckShape = errors.New("wire: vote shape unrepresentable in confirm_ack")

// ConfirmAck carries a vote in response to a confirm_req.
type ConfirmAck struct {
	Vote *Vote
}

// NewConfirmAck returns a ConfirmAck wrapping v, validating that v's entry
// list is representable on the wire.
func NewConfirmAck(v *Vote) (*ConfirmAck, error) {
	if err := validateConfirmAckShape(v); err != nil {
		return nil, err
	}
	return &ConfirmAck{Vote: v}, nil
}

func validateConfirmAckShape(v *Vote) error {
	if err := validateEntryCount(len(v.Entries)); err != nil {
		return err
	}
	if len(v.Entries) == 1 && !v.Entries[0].IsHashOnly() {
		return nil
	}
	for _, e := range v.Entries {
		if !e.IsHashOnly() {
			return ErrConfirmAckShape
		}
	}
	return nil
}

// MessageType implements Message.
func (c *ConfirmAck) MessageType() MessageType { return MessageTypeConfirmAck }

// headerExtension implements Message.
func (c *ConfirmAck) headerExtension(extension uint16) uint16 {
	if len(c.Vote.Entries) == 1 && !c.Vote.Entries[0].IsHashOnly() {
		return withBlockType(extension, c.Vote.Entries[0].Block.Type())
	}
	extension = withBlockType(extension, BlockTypeNotABlock)
	return withCount(extension, len(c.Vote.Entries))
}

// Encode implements Message.
func (c *ConfirmAck) Encode(w io.Writer) error {
	if err := encodeVoteHeader(w, c.Vote); err != nil {
		return err
	}
	if len(c.Vote.Entries) == 1 && !c.Vote.Entries[0].IsHashOnly() {
		return c.Vote.Entries[0].Block.Encode(w)
	}
	for _, e := range c.Vote.Entries {
		if _, err := w.Write(e.Hash[:]); err != nil {
			return err
		}
	}
	return nil
}

// DecodeConfirmAck reads a confirm_ack payload from r.
func DecodeConfirmAck(r io.Reader, header Header) (*ConfirmAck, error) {
	account, sig, seq, err := decodeVoteHeader(r)
	if err != nil {
		return nil, err
	}
	bt := extensionBlockType(header.Extension)
	var entries []VoteEntry
	if bt == BlockTypeNotABlock {
		n := extensionCount(header.Extension)
		entries = make([]VoteEntry, n)
		for i := range entries {
			if _, err := io.ReadFull(r, entries[i].Hash[:]); err != nil {
				return nil, err
			}
		}
	} else {
		block, err := DecodeBlock(r, bt)
		if err != nil {
			return nil, err
		}
		entries = []VoteEntry{{Block: block}}
	}
	if err := validateEntryCount(len(entries)); err != nil {
		return nil, err
	}
	v := &Vote{Account: account, Signature: sig, Sequence: seq, Entries: entries}
	return &ConfirmAck{Vote: v}, nil
}
