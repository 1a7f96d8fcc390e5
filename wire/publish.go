// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// Publish announces a single new block.
type Publish struct {
	Block Block
}

// MessageType implements Message.
func (p *Publish) MessageType() MessageType { return MessageTypePublish }

// headerExtension implements Message: the block-type sub-field names the
// carried variant.
func (p *Publish) headerExtension(extension uint16) uint16 {
	return withBlockType(extension, p.Block.Type())
}

// Encode implements Message.
func (p *Publish) Encode(w io.Writer) error {
	return p.Block.Encode(w)
}

// DecodePublish reads a publish payload from r, given the block type
// carried in the header's extension field.
func DecodePublish(r io.Reader, header Header) (*Publish, error) {
	bt := extensionBlockType(header.Extension)
	block, err := DecodeBlock(r, bt)
	if err != nil {
		return nil, err
	}
	return &Publish{Block: block}, nil
}
