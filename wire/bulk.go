// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"io"

	"github.com/decred/vigil-netcore/chainhash"
)

// The TCP-only bootstrap messages below never travel over the datagram
// transport (§4.E/§4.F); if one arrives over UDP, the node's message
// visitor only counts it. They still participate in the wire codec (component A) and the
// message parser (component B) so a TCP bootstrap client built above the
// core can reuse both.

// BulkPull requests every block on the account chain identified by
// Start back to End (the zero hash meaning "to the account's open
// block").
type BulkPull struct {
	Start chainhash.Hash
	End   chainhash.Hash
}

// MessageType implements Message.
func (b *BulkPull) MessageType() MessageType { return MessageTypeBulkPull }

// headerExtension implements Message: bulk_pull carries no extension bits.
func (b *BulkPull) headerExtension(extension uint16) uint16 { return extension }

// Encode implements Message.
func (b *BulkPull) Encode(w io.Writer) error {
	if _, err := w.Write(b.Start[:]); err != nil {
		return err
	}
	_, err := w.Write(b.End[:])
	return err
}

// DecodeBulkPull reads a bulk_pull payload from r.
func DecodeBulkPull(r io.Reader) (*BulkPull, error) {
	b := new(BulkPull)
	if _, err := io.ReadFull(r, b.Start[:]); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, b.End[:]); err != nil {
		return nil, err
	}
	return b, nil
}

// BulkPullAccountFlags selects what a bulk_pull_account response includes.
type BulkPullAccountFlags uint8

// Recognized bulk_pull_account flags.
const (
	BulkPullAccountFlagPendingHashAndAmount        BulkPullAccountFlags = 0
	BulkPullAccountFlagPendingAddressOnly          BulkPullAccountFlags = 1
	BulkPullAccountFlagPendingHashAmountAndAddress BulkPullAccountFlags = 2
)

// BulkPullAccount requests the pending receivable entries for Account with
// balance at least MinimumAmount.
type BulkPullAccount struct {
	Account       chainhash.Hash
	MinimumAmount Balance
	Flags         BulkPullAccountFlags
}

// MessageType implements Message.
func (b *BulkPullAccount) MessageType() MessageType { return MessageTypeBulkPullAccount }

// headerExtension implements Message.
func (b *BulkPullAccount) headerExtension(extension uint16) uint16 { return extension }

// Encode implements Message.
func (b *BulkPullAccount) Encode(w io.Writer) error {
	if _, err := w.Write(b.Account[:]); err != nil {
		return err
	}
	if _, err := w.Write(b.MinimumAmount[:]); err != nil {
		return err
	}
	_, err := w.Write([]byte{byte(b.Flags)})
	return err
}

// DecodeBulkPullAccount reads a bulk_pull_account payload from r.
func DecodeBulkPullAccount(r io.Reader) (*BulkPullAccount, error) {
	b := new(BulkPullAccount)
	if _, err := io.ReadFull(r, b.Account[:]); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, b.MinimumAmount[:]); err != nil {
		return nil, err
	}
	var flags [1]byte
	if _, err := io.ReadFull(r, flags[:]); err != nil {
		return nil, err
	}
	b.Flags = BulkPullAccountFlags(flags[0])
	return b, nil
}

// BulkPush signals that the sender is about to push a stream of blocks; it
// carries no payload of its own.
type BulkPush struct{}

// MessageType implements Message.
func (b *BulkPush) MessageType() MessageType { return MessageTypeBulkPush }

// headerExtension implements Message.
func (b *BulkPush) headerExtension(extension uint16) uint16 { return extension }

// Encode implements Message.
func (b *BulkPush) Encode(w io.Writer) error { return nil }

// DecodeBulkPush reads a (zero-length) bulk_push payload from r.
func DecodeBulkPush(r io.Reader) (*BulkPush, error) {
	return &BulkPush{}, nil
}

// FrontierReq requests account frontiers starting at Start, excluding
// accounts not modified within Age seconds of now, limited to Count
// entries (0 meaning unlimited).
type FrontierReq struct {
	Start chainhash.Hash
	Age   uint32
	Count uint32
}

// MessageType implements Message.
func (f *FrontierReq) MessageType() MessageType { return MessageTypeFrontierReq }

// headerExtension implements Message.
func (f *FrontierReq) headerExtension(extension uint16) uint16 { return extension }

// Encode implements Message.
func (f *FrontierReq) Encode(w io.Writer) error {
	if _, err := w.Write(f.Start[:]); err != nil {
		return err
	}
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], f.Age)
	binary.LittleEndian.PutUint32(buf[4:8], f.Count)
	_, err := w.Write(buf[:])
	return err
}

// DecodeFrontierReq reads a frontier_req payload from r.
func DecodeFrontierReq(r io.Reader) (*FrontierReq, error) {
	f := new(FrontierReq)
	if _, err := io.ReadFull(r, f.Start[:]); err != nil {
		return nil, err
	}
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	f.Age = binary.LittleEndian.Uint32(buf[0:4])
	f.Count = binary.LittleEndian.Uint32(buf[4:8])
	return f, nil
}
