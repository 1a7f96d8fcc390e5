// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package parser implements the message parser (component 4.B): it turns a
// raw datagram into a header plus a dispatch to a Visitor, enforcing that
// every message's payload exactly consumes its declared bytes.
package parser

import (
	"bytes"

	"github.com/decred/vigil-netcore/chainhash"
	"github.com/decred/vigil-netcore/uniquer"
	"github.com/decred/vigil-netcore/wire"
)

// Status is the exhaustive, tagged parse outcome.
type Status int

// Recognized parse statuses.
const (
	StatusSuccess Status = iota
	StatusInsufficientWork
	StatusInvalidMagic
	StatusInvalidNetwork
	StatusInvalidHeader
	StatusInvalidMessageType
	StatusInvalidKeepaliveMessage
	StatusInvalidPublishMessage
	StatusInvalidConfirmReqMessage
	StatusInvalidConfirmAckMessage
	StatusInvalidNodeIDHandshakeMessage
	StatusOutdatedVersion
)

// String names a Status for logging.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusInsufficientWork:
		return "insufficient_work"
	case StatusInvalidMagic:
		return "invalid_magic"
	case StatusInvalidNetwork:
		return "invalid_network"
	case StatusInvalidHeader:
		return "invalid_header"
	case StatusInvalidMessageType:
		return "invalid_message_type"
	case StatusInvalidKeepaliveMessage:
		return "invalid_keepalive_message"
	case StatusInvalidPublishMessage:
		return "invalid_publish_message"
	case StatusInvalidConfirmReqMessage:
		return "invalid_confirm_req_message"
	case StatusInvalidConfirmAckMessage:
		return "invalid_confirm_ack_message"
	case StatusInvalidNodeIDHandshakeMessage:
		return "invalid_node_id_handshake_message"
	case StatusOutdatedVersion:
		return "outdated_version"
	default:
		return "unknown"
	}
}

// Visitor receives the decoded payload for each message type the parser
// recognizes. Implementations decide side effects; the parser itself holds
// no state beyond the uniquers and the last Status.
type Visitor interface {
	Keepalive(*wire.Keepalive)
	Publish(*wire.Publish)
	ConfirmReq(*wire.ConfirmReq)
	ConfirmAck(*wire.ConfirmAck)
	BulkPull(*wire.BulkPull)
	BulkPullAccount(*wire.BulkPullAccount)
	BulkPush(*wire.BulkPush)
	FrontierReq(*wire.FrontierReq)
	NodeIDHandshake(*wire.NodeIDHandshake)
}

// WorkValidator checks a block's attached proof-of-work nonce against its
// root hash. It is an external collaborator: work generation and
// difficulty thresholds are out of scope for this subsystem.
type WorkValidator interface {
	Valid(root chainhash.Hash, work wire.Work) bool
}

// Parser decodes datagrams against a fixed Network and version window,
// canonicalizes decoded blocks and votes through the supplied uniquers, and
// dispatches to Visitor on success.
type Parser struct {
	Network      wire.Network
	MinVersion   uint8
	Blocks       *uniquer.BlockUniquer
	Votes        *uniquer.VoteUniquer
	Work         WorkValidator
	Visitor      Visitor

	// Status holds the outcome of the most recent Parse call, mirroring
	// the reference parser's persistent status field.
	Status Status
}

// New returns a Parser bound to network, rejecting any header below
// minVersion, dispatching successfully decoded messages to visitor.
func New(network wire.Network, minVersion uint8, blocks *uniquer.BlockUniquer, votes *uniquer.VoteUniquer, work WorkValidator, visitor Visitor) *Parser {
	return &Parser{
		Network:    network,
		MinVersion: minVersion,
		Blocks:     blocks,
		Votes:      votes,
		Work:       work,
		Visitor:    visitor,
	}
}

// Parse reads one header and payload from buf, validates the header, and
// dispatches the decoded message to p.Visitor. It always sets p.Status and
// returns it; failures are reported only through that status, never as an
// error value.
func (p *Parser) Parse(buf []byte) Status {
	r := bytes.NewReader(buf)
	header, err := wire.DecodeHeader(r)
	if err != nil {
		p.Status = StatusInvalidHeader
		return p.Status
	}
	if header.Network != p.Network {
		p.Status = StatusInvalidNetwork
		return p.Status
	}
	if header.VersionUsing < p.MinVersion {
		p.Status = StatusOutdatedVersion
		return p.Status
	}

	payload := buf[wire.HeaderSize:]
	switch header.Type {
	case wire.MessageTypeKeepalive:
		p.parseKeepalive(payload)
	case wire.MessageTypePublish:
		p.parsePublish(payload, header)
	case wire.MessageTypeConfirmReq:
		p.parseConfirmReq(payload, header)
	case wire.MessageTypeConfirmAck:
		p.parseConfirmAck(payload, header)
	case wire.MessageTypeBulkPull:
		p.parseBulkPull(payload)
	case wire.MessageTypeBulkPullAccount:
		p.parseBulkPullAccount(payload)
	case wire.MessageTypeBulkPush:
		p.parseBulkPush(payload)
	case wire.MessageTypeFrontierReq:
		p.parseFrontierReq(payload)
	case wire.MessageTypeNodeIDHandshake:
		p.parseNodeIDHandshake(payload, header)
	default:
		p.Status = StatusInvalidMessageType
	}
	return p.Status
}

// residue reports whether r has been read exactly to completion, that is,
// whether zero bytes remain unread. A non-empty remainder
// means the declared message type didn't exactly consume the payload.
func residue(r *bytes.Reader) bool {
	return r.Len() == 0
}

func (p *Parser) parseKeepalive(payload []byte) {
	r := bytes.NewReader(payload)
	msg, err := wire.DecodeKeepalive(r)
	if err != nil || !residue(r) {
		p.Status = StatusInvalidKeepaliveMessage
		return
	}
	p.Status = StatusSuccess
	p.Visitor.Keepalive(msg)
}

func (p *Parser) parsePublish(payload []byte, header wire.Header) {
	r := bytes.NewReader(payload)
	msg, err := wire.DecodePublish(r, header)
	if err != nil || !residue(r) {
		p.Status = StatusInvalidPublishMessage
		return
	}
	if p.Work != nil && !p.Work.Valid(msg.Block.Root(), msg.Block.GetWork()) {
		p.Status = StatusInsufficientWork
		return
	}
	msg.Block = p.Blocks.Unique(msg.Block)
	p.Status = StatusSuccess
	p.Visitor.Publish(msg)
}

func (p *Parser) parseConfirmReq(payload []byte, header wire.Header) {
	r := bytes.NewReader(payload)
	msg, err := wire.DecodeConfirmReq(r, header)
	if err != nil || !residue(r) {
		p.Status = StatusInvalidConfirmReqMessage
		return
	}
	if msg.Block != nil {
		if p.Work != nil && !p.Work.Valid(msg.Block.Root(), msg.Block.GetWork()) {
			p.Status = StatusInsufficientWork
			return
		}
		msg.Block = p.Blocks.Unique(msg.Block)
	}
	p.Status = StatusSuccess
	p.Visitor.ConfirmReq(msg)
}

func (p *Parser) parseConfirmAck(payload []byte, header wire.Header) {
	r := bytes.NewReader(payload)
	msg, err := wire.DecodeConfirmAck(r, header)
	if err != nil || !residue(r) {
		p.Status = StatusInvalidConfirmAckMessage
		return
	}
	msg.Vote = p.Votes.Unique(msg.Vote)
	p.Status = StatusSuccess
	p.Visitor.ConfirmAck(msg)
}

func (p *Parser) parseBulkPull(payload []byte) {
	r := bytes.NewReader(payload)
	msg, err := wire.DecodeBulkPull(r)
	if err != nil || !residue(r) {
		p.Status = StatusInvalidHeader
		return
	}
	p.Status = StatusSuccess
	p.Visitor.BulkPull(msg)
}

func (p *Parser) parseBulkPullAccount(payload []byte) {
	r := bytes.NewReader(payload)
	msg, err := wire.DecodeBulkPullAccount(r)
	if err != nil || !residue(r) {
		p.Status = StatusInvalidHeader
		return
	}
	p.Status = StatusSuccess
	p.Visitor.BulkPullAccount(msg)
}

func (p *Parser) parseBulkPush(payload []byte) {
	r := bytes.NewReader(payload)
	msg, err := wire.DecodeBulkPush(r)
	if err != nil || !residue(r) {
		p.Status = StatusInvalidHeader
		return
	}
	p.Status = StatusSuccess
	p.Visitor.BulkPush(msg)
}

func (p *Parser) parseFrontierReq(payload []byte) {
	r := bytes.NewReader(payload)
	msg, err := wire.DecodeFrontierReq(r)
	if err != nil || !residue(r) {
		p.Status = StatusInvalidHeader
		return
	}
	p.Status = StatusSuccess
	p.Visitor.FrontierReq(msg)
}

func (p *Parser) parseNodeIDHandshake(payload []byte, header wire.Header) {
	r := bytes.NewReader(payload)
	msg, err := wire.DecodeNodeIDHandshake(r, header)
	if err != nil || !residue(r) {
		p.Status = StatusInvalidNodeIDHandshakeMessage
		return
	}
	p.Status = StatusSuccess
	p.Visitor.NodeIDHandshake(msg)
}
