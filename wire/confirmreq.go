// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/decred/vigil-netcore/chainhash"
)

// HashPair is a (hash, root) pair as carried by a hash-list confirm_req.
type HashPair struct {
	Hash chainhash.Hash
	Root chainhash.Hash
}

// ConfirmReq requests a vote either on a single full block, or on a list of
// (hash, root) pairs when the caller only needs to name blocks it already
// has.
type ConfirmReq struct {
	Block Block
	Pairs []HashPair
}

// NewConfirmReqBlock returns a ConfirmReq carrying a single full block.
func NewConfirmReqBlock(b Block) *ConfirmReq {
	return &ConfirmReq{Block: b}
}

// NewConfirmReqHashes returns a ConfirmReq carrying a list of hash/root
// pairs.
func NewConfirmReqHashes(pairs []HashPair) *ConfirmReq {
	return &ConfirmReq{Pairs: pairs}
}

// MessageType implements Message.
func (c *ConfirmReq) MessageType() MessageType { return MessageTypeConfirmReq }

// headerExtension implements Message.
func (c *ConfirmReq) headerExtension(extension uint16) uint16 {
	if c.Block != nil {
		return withBlockType(extension, c.Block.Type())
	}
	extension = withBlockType(extension, BlockTypeNotABlock)
	return withCount(extension, len(c.Pairs))
}

// Encode implements Message.
func (c *ConfirmReq) Encode(w io.Writer) error {
	if c.Block != nil {
		return c.Block.Encode(w)
	}
	for _, p := range c.Pairs {
		if _, err := w.Write(p.Hash[:]); err != nil {
			return err
		}
		if _, err := w.Write(p.Root[:]); err != nil {
			return err
		}
	}
	return nil
}

// DecodeConfirmReq reads a confirm_req payload from r.
func DecodeConfirmReq(r io.Reader, header Header) (*ConfirmReq, error) {
	bt := extensionBlockType(header.Extension)
	if bt == BlockTypeNotABlock {
		n := extensionCount(header.Extension)
		pairs := make([]HashPair, n)
		for i := range pairs {
			if _, err := io.ReadFull(r, pairs[i].Hash[:]); err != nil {
				return nil, err
			}
			if _, err := io.ReadFull(r, pairs[i].Root[:]); err != nil {
				return nil, err
			}
		}
		return &ConfirmReq{Pairs: pairs}, nil
	}
	block, err := DecodeBlock(r, bt)
	if err != nil {
		return nil, err
	}
	return &ConfirmReq{Block: block}, nil
}
