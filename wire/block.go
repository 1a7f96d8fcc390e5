// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/decred/vigil-netcore/chainhash"
)

// BlockType identifies which of the five block variants a payload carries.
// It also doubles as the header extension's block-type sub-field, so its
// numeric values are part of the wire format.
type BlockType uint8

// Recognized block types. NotABlock (1) shares its value with
// MessageTypeNotABlock by convention of the reference protocol: it marks a
// confirm_req/confirm_ack payload as carrying bare hashes instead of a
// block.
const (
	BlockTypeInvalid   BlockType = 0
	BlockTypeNotABlock BlockType = 1
	BlockTypeSend      BlockType = 2
	BlockTypeReceive   BlockType = 3
	BlockTypeOpen      BlockType = 4
	BlockTypeChange    BlockType = 5
	BlockTypeState     BlockType = 6
)

// Payload sizes, in bytes, of each block variant. These are exact: the
// decoder consumes precisely this many bytes per variant and nothing more.
const (
	SendBlockSize    = 152
	ReceiveBlockSize = 136
	OpenBlockSize    = 168
	ChangeBlockSize  = 136
	StateBlockSize   = 216
)

// BlockSize returns the wire payload size for bt, and false if bt does not
// name a block variant with a fixed size.
func BlockSize(bt BlockType) (int, bool) {
	switch bt {
	case BlockTypeSend:
		return SendBlockSize, true
	case BlockTypeReceive:
		return ReceiveBlockSize, true
	case BlockTypeOpen:
		return OpenBlockSize, true
	case BlockTypeChange:
		return ChangeBlockSize, true
	case BlockTypeState:
		return StateBlockSize, true
	default:
		return 0, false
	}
}

const (
	signatureSize = 64
	workSize      = 8
	balanceSize   = 16
)

// Signature is an Ed25519 signature as carried on the wire.
type Signature [signatureSize]byte

// Work is the 8-byte proof-of-work nonce attached to every block.
type Work [workSize]byte

// Balance is a 128-bit unsigned account balance, stored little-endian as
// on the wire. The networking core never performs arithmetic on it; ledger
// semantics are an external collaborator's concern.
type Balance [balanceSize]byte

// Block is implemented by each of the five block variants. Type returns the
// variant's wire tag, Hash returns its BLAKE2b-256 content hash (covering
// every field except the signature and work, matching the reference node),
// and Encode/size let the codec treat all variants uniformly.
type Block interface {
	Type() BlockType
	Hash() chainhash.Hash
	Root() chainhash.Hash
	GetWork() Work
	Encode(w io.Writer) error
	size() int
}

// SendBlock transfers funds from previous to destination, leaving the
// account at balance.
type SendBlock struct {
	Previous    chainhash.Hash
	Destination chainhash.Hash
	Balance     Balance
	Signature   Signature
	Work        Work
}

// Type implements Block.
func (b *SendBlock) Type() BlockType { return BlockTypeSend }

// size implements Block.
func (b *SendBlock) size() int { return SendBlockSize }

// GetWork implements Block.
func (b *SendBlock) GetWork() Work { return b.Work }

// Root implements Block: for all variants except open and state, root is
// the previous block hash.
func (b *SendBlock) Root() chainhash.Hash { return b.Previous }

// Hash implements Block.
func (b *SendBlock) Hash() chainhash.Hash {
	h := chainhash.NewHasher()
	h.Write(b.Previous[:])
	h.Write(b.Destination[:])
	h.Write(b.Balance[:])
	return h.Sum()
}

// Encode implements Block.
func (b *SendBlock) Encode(w io.Writer) error {
	if _, err := w.Write(b.Previous[:]); err != nil {
		return err
	}
	if _, err := w.Write(b.Destination[:]); err != nil {
		return err
	}
	if _, err := w.Write(b.Balance[:]); err != nil {
		return err
	}
	if _, err := w.Write(b.Signature[:]); err != nil {
		return err
	}
	_, err := w.Write(b.Work[:])
	return err
}

func decodeSendBlock(r io.Reader) (*SendBlock, error) {
	b := new(SendBlock)
	fields := [][]byte{b.Previous[:], b.Destination[:], b.Balance[:], b.Signature[:], b.Work[:]}
	for _, f := range fields {
		if _, err := io.ReadFull(r, f); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// ReceiveBlock acknowledges receipt of funds sent in the block identified
// by Source.
type ReceiveBlock struct {
	Previous  chainhash.Hash
	Source    chainhash.Hash
	Signature Signature
	Work      Work
}

func (b *ReceiveBlock) Type() BlockType       { return BlockTypeReceive }
func (b *ReceiveBlock) size() int             { return ReceiveBlockSize }
func (b *ReceiveBlock) GetWork() Work         { return b.Work }
func (b *ReceiveBlock) Root() chainhash.Hash  { return b.Previous }

func (b *ReceiveBlock) Hash() chainhash.Hash {
	h := chainhash.NewHasher()
	h.Write(b.Previous[:])
	h.Write(b.Source[:])
	return h.Sum()
}

func (b *ReceiveBlock) Encode(w io.Writer) error {
	for _, f := range [][]byte{b.Previous[:], b.Source[:], b.Signature[:], b.Work[:]} {
		if _, err := w.Write(f); err != nil {
			return err
		}
	}
	return nil
}

func decodeReceiveBlock(r io.Reader) (*ReceiveBlock, error) {
	b := new(ReceiveBlock)
	for _, f := range [][]byte{b.Previous[:], b.Source[:], b.Signature[:], b.Work[:]} {
		if _, err := io.ReadFull(r, f); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// OpenBlock is the first block of an account chain.
type OpenBlock struct {
	Source         chainhash.Hash
	Representative chainhash.Hash
	Account        chainhash.Hash
	Signature      Signature
	Work           Work
}

func (b *OpenBlock) Type() BlockType { return BlockTypeOpen }
func (b *OpenBlock) size() int       { return OpenBlockSize }
func (b *OpenBlock) GetWork() Work   { return b.Work }

// Root implements Block: for open blocks, root is the account itself.
func (b *OpenBlock) Root() chainhash.Hash { return b.Account }

func (b *OpenBlock) Hash() chainhash.Hash {
	h := chainhash.NewHasher()
	h.Write(b.Source[:])
	h.Write(b.Representative[:])
	h.Write(b.Account[:])
	return h.Sum()
}

func (b *OpenBlock) Encode(w io.Writer) error {
	for _, f := range [][]byte{b.Source[:], b.Representative[:], b.Account[:], b.Signature[:], b.Work[:]} {
		if _, err := w.Write(f); err != nil {
			return err
		}
	}
	return nil
}

func decodeOpenBlock(r io.Reader) (*OpenBlock, error) {
	b := new(OpenBlock)
	for _, f := range [][]byte{b.Source[:], b.Representative[:], b.Account[:], b.Signature[:], b.Work[:]} {
		if _, err := io.ReadFull(r, f); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// ChangeBlock updates the account's chosen representative.
type ChangeBlock struct {
	Previous       chainhash.Hash
	Representative chainhash.Hash
	Signature      Signature
	Work           Work
}

func (b *ChangeBlock) Type() BlockType      { return BlockTypeChange }
func (b *ChangeBlock) size() int            { return ChangeBlockSize }
func (b *ChangeBlock) GetWork() Work        { return b.Work }
func (b *ChangeBlock) Root() chainhash.Hash { return b.Previous }

func (b *ChangeBlock) Hash() chainhash.Hash {
	h := chainhash.NewHasher()
	h.Write(b.Previous[:])
	h.Write(b.Representative[:])
	return h.Sum()
}

func (b *ChangeBlock) Encode(w io.Writer) error {
	for _, f := range [][]byte{b.Previous[:], b.Representative[:], b.Signature[:], b.Work[:]} {
		if _, err := w.Write(f); err != nil {
			return err
		}
	}
	return nil
}

func decodeChangeBlock(r io.Reader) (*ChangeBlock, error) {
	b := new(ChangeBlock)
	for _, f := range [][]byte{b.Previous[:], b.Representative[:], b.Signature[:], b.Work[:]} {
		if _, err := io.ReadFull(r, f); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// StateBlock is the unified block variant, folding send/receive/open/change
// semantics into a single self-describing layout keyed by Balance and Link.
type StateBlock struct {
	Account        chainhash.Hash
	Previous       chainhash.Hash
	Representative chainhash.Hash
	Balance        Balance
	Link           chainhash.Hash
	Signature      Signature
	Work           Work
}

func (b *StateBlock) Type() BlockType { return BlockTypeState }
func (b *StateBlock) size() int       { return StateBlockSize }
func (b *StateBlock) GetWork() Work   { return b.Work }

// Root implements Block: for state blocks, root is the account when there
// is no previous block (the account's first block), and the previous hash
// otherwise.
func (b *StateBlock) Root() chainhash.Hash {
	if b.Previous.IsZero() {
		return b.Account
	}
	return b.Previous
}

func (b *StateBlock) Hash() chainhash.Hash {
	h := chainhash.NewHasher()
	// A fixed 32-byte state-block preamble distinguishes state block
	// hashes from every other variant's hash space, matching the
	// reference node's "state block" hash prefix convention.
	var preamble chainhash.Hash
	preamble[31] = byte(BlockTypeState)
	h.Write(preamble[:])
	h.Write(b.Account[:])
	h.Write(b.Previous[:])
	h.Write(b.Representative[:])
	h.Write(b.Balance[:])
	h.Write(b.Link[:])
	return h.Sum()
}

func (b *StateBlock) Encode(w io.Writer) error {
	for _, f := range [][]byte{b.Account[:], b.Previous[:], b.Representative[:], b.Balance[:], b.Link[:], b.Signature[:], b.Work[:]} {
		if _, err := w.Write(f); err != nil {
			return err
		}
	}
	return nil
}

func decodeStateBlock(r io.Reader) (*StateBlock, error) {
	b := new(StateBlock)
	for _, f := range [][]byte{b.Account[:], b.Previous[:], b.Representative[:], b.Balance[:], b.Link[:], b.Signature[:], b.Work[:]} {
		if _, err := io.ReadFull(r, f); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// DecodeBlock reads a block of the given type from r. It returns
// ErrInvalidBlockType if bt does not name a known variant.
func DecodeBlock(r io.Reader, bt BlockType) (Block, error) {
	switch bt {
	case BlockTypeSend:
		return decodeSendBlock(r)
	case BlockTypeReceive:
		return decodeReceiveBlock(r)
	case BlockTypeOpen:
		return decodeOpenBlock(r)
	case BlockTypeChange:
		return decodeChangeBlock(r)
	case BlockTypeState:
		return decodeStateBlock(r)
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlockType, bt)
	}
}

// balanceFromUint64 is a small convenience used by tests to construct a
// Balance without manually zero-padding a little-endian buffer.
func balanceFromUint64(v uint64) Balance {
	var b Balance
	binary.LittleEndian.PutUint64(b[:8], v)
	return b
}
