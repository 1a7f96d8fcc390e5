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

// MaxVoteEntries is the largest number of entries a vote may carry. The
// reference implementation asserts this only at construction time and is
// silent about it on the wire; this implementation rejects any decoded
// vote that would exceed it (see SPEC_FULL.md, supplemented feature 6)
// rather than silently truncating a signed value.
const MaxVoteEntries = 12

// votePrefix is prepended to the signing hash whenever the vote carries
// more than one entry, or its sole entry is hash-only.
const votePrefix = "vote "

// VoteEntry is one element of a vote's ordered entry list: either a full
// block or a bare block hash. Exactly one of Block or Hash is meaningful;
// Block == nil means the entry is hash-only.
type VoteEntry struct {
	Block Block
	Hash  chainhash.Hash
}

// IsHashOnly reports whether the entry carries a bare hash rather than a
// full block.
func (e VoteEntry) IsHashOnly() bool {
	return e.Block == nil
}

// EntryHash returns the entry's contribution to the vote's hash: the
// block's content hash if it carries a full block, or the bare hash.
func (e VoteEntry) EntryHash() chainhash.Hash {
	if e.Block != nil {
		return e.Block.Hash()
	}
	return e.Hash
}

// Vote is an (account, signature, sequence, entries) tuple signed by the
// account's current representative weight.
type Vote struct {
	Account   chainhash.Hash
	Signature Signature
	Sequence  uint64
	Entries   []VoteEntry
}

// usesPrefix reports whether the signing hash for this vote includes the
// "vote " domain prefix: present only when the vote carries any hash-only
// entry, or has more than one entry.
func (v *Vote) usesPrefix() bool {
	if len(v.Entries) > 1 {
		return true
	}
	if len(v.Entries) == 1 && v.Entries[0].IsHashOnly() {
		return true
	}
	return false
}

// Hash returns the vote's signing hash: BLAKE2b-256 over the optional
// domain prefix, each entry's hash in order, then the little-endian
// sequence number.
func (v *Vote) Hash() chainhash.Hash {
	h := chainhash.NewHasher()
	if v.usesPrefix() {
		h.Write([]byte(votePrefix))
	}
	for _, e := range v.Entries {
		eh := e.EntryHash()
		h.Write(eh[:])
	}
	var seqBuf [8]byte
	binary.LittleEndian.PutUint64(seqBuf[:], v.Sequence)
	h.Write(seqBuf[:])
	return h.Sum()
}

// FullHash returns the vote's full hash: BLAKE2b-256 over the signing hash,
// account, and signature. It additionally folds in fields the signing hash
// omits, making it suitable as a uniquer key for a signed vote.
func (v *Vote) FullHash() chainhash.Hash {
	signing := v.Hash()
	h := chainhash.NewHasher()
	h.Write(signing[:])
	h.Write(v.Account[:])
	h.Write(v.Signature[:])
	return h.Sum()
}

// validateEntryCount returns an error if entries is empty or exceeds
// MaxVoteEntries.
func validateEntryCount(n int) error {
	if n == 0 {
		return ErrEmptyVote
	}
	if n > MaxVoteEntries {
		return ErrTooManyVoteEntries
	}
	return nil
}

// encodeVoteHeader writes the account/signature/sequence common prefix
// shared by every vote encoding.
func encodeVoteHeader(w io.Writer, v *Vote) error {
	if _, err := w.Write(v.Account[:]); err != nil {
		return err
	}
	if _, err := w.Write(v.Signature[:]); err != nil {
		return err
	}
	var seqBuf [8]byte
	binary.LittleEndian.PutUint64(seqBuf[:], v.Sequence)
	_, err := w.Write(seqBuf[:])
	return err
}

// decodeVoteHeader reads the account/signature/sequence common prefix.
func decodeVoteHeader(r io.Reader) (account chainhash.Hash, sig Signature, seq uint64, err error) {
	if _, err = io.ReadFull(r, account[:]); err != nil {
		return
	}
	if _, err = io.ReadFull(r, sig[:]); err != nil {
		return
	}
	var seqBuf [8]byte
	if _, err = io.ReadFull(r, seqBuf[:]); err != nil {
		return
	}
	seq = binary.LittleEndian.Uint64(seqBuf[:])
	return
}
