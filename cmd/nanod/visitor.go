// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"net/netip"

	"github.com/decred/vigil-netcore/connmgr"
	"github.com/decred/vigil-netcore/stats"
	"github.com/decred/vigil-netcore/wire"
)

// dispatcher implements parser.Visitor, routing every decoded message to
// the peer lifecycle manager or simply counting it. The ledger,
// bootstrap, and confirmation subsystems these message types ultimately
// belong to are out of scope; this node only keeps its peer set alive.
//
// The transport handler in main builds a fresh dispatcher for each
// datagram, so from is set once and never shared between datagrams.
type dispatcher struct {
	manager *connmgr.Manager
	stat    *stats.Stat
	from    netip.AddrPort
}

func (d *dispatcher) Keepalive(ka *wire.Keepalive) {
	if d.stat != nil {
		d.stat.IncDetail(stats.TypeMessage, stats.DetailKeepalive, stats.DirIn)
	}
	d.manager.HandleKeepalive(d.from, ka)
}

func (d *dispatcher) NodeIDHandshake(h *wire.NodeIDHandshake) {
	if d.stat != nil {
		d.stat.IncDetail(stats.TypeMessage, stats.DetailNodeIDHandshake, stats.DirIn)
	}
	d.manager.HandleHandshake(d.from, wire.CurrentVersion, h)
}

func (d *dispatcher) Publish(*wire.Publish) {
	d.count(stats.DetailPublish)
}

func (d *dispatcher) ConfirmReq(*wire.ConfirmReq) {
	d.count(stats.DetailConfirmReq)
}

func (d *dispatcher) ConfirmAck(*wire.ConfirmAck) {
	d.count(stats.DetailConfirmAck)
}

func (d *dispatcher) BulkPull(*wire.BulkPull) {
	d.count(stats.DetailBulkPull)
}

func (d *dispatcher) BulkPullAccount(*wire.BulkPullAccount) {
	d.count(stats.DetailBulkPullAccount)
}

func (d *dispatcher) BulkPush(*wire.BulkPush) {
	d.count(stats.DetailBulkPush)
}

func (d *dispatcher) FrontierReq(*wire.FrontierReq) {
	d.count(stats.DetailFrontierReq)
}

func (d *dispatcher) count(detail stats.Detail) {
	if d.stat != nil {
		d.stat.IncDetail(stats.TypeMessage, detail, stats.DirIn)
	}
}
