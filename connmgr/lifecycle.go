// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package connmgr

import (
	"net/netip"
	"time"

	"github.com/decred/slog"
	"github.com/decred/vigil-netcore/addrmgr"
	"github.com/decred/vigil-netcore/chainhash"
	"github.com/decred/vigil-netcore/peer"
	"github.com/decred/vigil-netcore/stats"
	"github.com/decred/vigil-netcore/timer"
	"github.com/decred/vigil-netcore/wire"
)

// log is the package-level diagnostic logger, set via UseLogger.
var log = slog.Disabled

// UseLogger sets the package-wide logger used for handshake and
// keepalive diagnostics.
func UseLogger(logger slog.Logger) {
	log = logger
}

// Sender abstracts the datagram transport's send path so this package
// doesn't import it directly, matching the reference's channel_udp
// send_buffer being a thin wrapper over the strand-serialized socket.
type Sender interface {
	Send(ep netip.AddrPort, msg wire.Message) error
}

// Signer abstracts producing a handshake response over a cookie,
// matching the reference's node_id key pair signing the syn cookie.
type Signer interface {
	NodeID() chainhash.Hash
	Sign(cookie chainhash.Hash) wire.Signature
}

// Manager drives the peer lifecycle task (component 4.F): periodic
// keepalive fan-out and SYN-cookie handshake orchestration over a
// channel registry.
type Manager struct {
	registry *addrmgr.Registry
	cookies  *CookieStore
	timer    *timer.Timer
	stat     *stats.Stat
	sender   Sender
	signer   Signer
	period   time.Duration
}

// New returns a Manager driving keepalive fan-out every period over
// registry, using timer to self-reschedule.
func New(registry *addrmgr.Registry, cookies *CookieStore, tm *timer.Timer, stat *stats.Stat, sender Sender, signer Signer, period time.Duration) *Manager {
	return &Manager{
		registry: registry,
		cookies:  cookies,
		timer:    tm,
		stat:     stat,
		sender:   sender,
		signer:   signer,
		period:   period,
	}
}

// Start schedules the first keepalive round. Subsequent rounds
// reschedule themselves through the timer, matching
// udp_channels::ongoing_keepalive.
func (m *Manager) Start() {
	m.timer.Add(time.Now(), m.runKeepaliveRound)
}

func (m *Manager) runKeepaliveRound() {
	targets := m.registry.KeepaliveTargets(m.period)

	var peers [8]netip.AddrPort
	m.registry.RandomFill(peers[:])
	ka := wire.NewKeepalive()
	for i, ep := range peers {
		if ep.IsValid() {
			ka.Peers[i] = wire.NewEndpoint(ep.Addr(), ep.Port())
		}
	}

	for _, c := range targets {
		if err := m.sender.Send(c.Endpoint, ka); err != nil {
			continue
		}
		if m.stat != nil {
			m.stat.IncDetail(stats.TypeMessage, stats.DetailKeepalive, stats.DirOut)
		}
	}

	m.timer.Add(time.Now().Add(m.period), m.runKeepaliveRound)
}

// HandleKeepalive implements the UDP keepalive handling in
// 4.F: assigning a cookie to an unknown sender below the per-IP cap and
// initiating a handshake.
func (m *Manager) HandleKeepalive(ep netip.AddrPort, ka *wire.Keepalive) {
	if _, known := m.registry.Find(ep); known {
		return
	}
	if m.registry.MaxIPConnectionsReached(ep) {
		return
	}

	cookie := m.cookies.Assign(ep)
	handshake := &wire.NodeIDHandshake{Query: &cookie}
	if c, ok := m.registry.Insert(ep, 0); ok {
		_ = c.State.Transition(peer.StateHandshaking)
	}
	_ = m.sender.Send(ep, handshake)
	if m.stat != nil {
		m.stat.IncDetail(stats.TypeMessage, stats.DetailNodeIDHandshake, stats.DirOut)
	}
}

// HandleHandshake implements the node_id_handshake handling in 4.F:
// validating a claimed node-id's signature over its outstanding cookie
// and, on success, inserting or rebinding the channel.
func (m *Manager) HandleHandshake(ep netip.AddrPort, networkVersion uint8, h *wire.NodeIDHandshake) {
	if h.Response != nil {
		if m.cookies.Validate(ep, h.Response.NodeID, h.Response.Signature) {
			m.registry.CleanNodeIDForEndpoint(ep, h.Response.NodeID)
			c, ok := m.registry.Insert(ep, networkVersion)
			if ok {
				m.registry.Modify(ep, func(ch *addrmgr.Channel) {
					ch.NodeID = h.Response.NodeID
					ch.HasNodeID = true
					ch.LastPacketReceived = time.Now()
				})
				_ = c.State.Transition(peer.StateHandshaking)
				_ = c.State.Transition(peer.StateEstablished)
			}
			if m.stat != nil {
				m.stat.IncDetail(stats.TypePeering, stats.DetailHandshake, stats.DirIn)
			}
			log.Debugf("established channel to %s", ep)
		} else {
			log.Debugf("rejecting handshake response from %s: invalid cookie", ep)
		}
		return
	}

	if h.Query != nil {
		if _, ok := m.registry.Find(ep); ok {
			resp := &wire.HandshakeResponse{
				NodeID:    m.signer.NodeID(),
				Signature: m.signer.Sign(*h.Query),
			}
			_ = m.sender.Send(ep, &wire.NodeIDHandshake{Response: resp})
		} else {
			cookie := m.cookies.Assign(ep)
			resp := &wire.HandshakeResponse{
				NodeID:    m.signer.NodeID(),
				Signature: m.signer.Sign(*h.Query),
			}
			_ = m.sender.Send(ep, &wire.NodeIDHandshake{Query: &cookie, Response: resp})
		}
	}
}
