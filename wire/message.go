// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"
)

// Message is implemented by every payload type the codec knows how to
// encode. headerExtension returns the extension bits this message
// contributes on top of a caller-supplied base header (network/version
// fields); Encode writes the exact-size payload.
type Message interface {
	MessageType() MessageType
	headerExtension(extension uint16) uint16
	Encode(w io.Writer) error
}

// EncodeMessage writes base's network/version fields together with msg's
// type and extension bits, followed by msg's payload, to w.
func EncodeMessage(w io.Writer, base Header, msg Message) error {
	h := base
	h.Type = msg.MessageType()
	h.Extension = msg.headerExtension(0)
	if err := h.Encode(w); err != nil {
		return err
	}
	return msg.Encode(w)
}

// Marshal encodes msg with the given base header into a standalone byte
// slice, a convenience used by tests and by callers that need the bytes
// before handing them to the transport layer.
func Marshal(base Header, msg Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeMessage(&buf, base, msg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
