// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transport

import (
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/decred/vigil-netcore/stats"
)

// log is the package-level diagnostic logger, set via UseLogger.
var log = slog.Disabled

// UseLogger sets the package-wide logger used for socket and receive
// loop diagnostics.
func UseLogger(logger slog.Logger) {
	log = logger
}

// State is the transport's lifecycle position.
type State int

// Recognized states, matching spec.md §4.I's transport state machine.
const (
	StateConstructed State = iota
	StateRunning
	StateStopping
	StateStopped
)

// reArmDelay is how long the receive loop waits before retrying after
// a socket error, matching udp_channels::receive's 5-second re-arm.
const reArmDelay = 5 * time.Second

// poolCapacity bounds how many datagrams may be in flight
// (allocated-but-not-yet-released) at once.
const poolCapacity = 4096

// Handler processes one accepted datagram. It is called from the
// transport's single process-loop goroutine, one datagram at a time,
// so Handler calls never run concurrently with each other.
type Handler func(from netip.AddrPort, payload []byte)

// Transport is a single UDP socket whose sends (and, off the test
// network, the socket close) are serialized through a strand goroutine,
// matching udp_channels::send's shared-executor discipline. The receive
// loops read the socket directly on their own goroutines, outside the
// strand, so reads are not ordered with respect to sends.
type Transport struct {
	mu    sync.Mutex
	state State

	conn          *net.UDPConn
	localEndpoint netip.AddrPort
	isTestNetwork bool
	allowLocal    bool

	pool       *pool
	strand     chan func()
	strandDone chan struct{}

	handler Handler
	stat    *stats.Stat

	ioWorkers int
	wg        sync.WaitGroup
}

// Config configures a Transport.
type Config struct {
	Port          uint16
	IsTestNetwork bool
	AllowLocal    bool
	IOWorkers     int
	Handler       Handler
	Stat          *stats.Stat
}

// New binds a UDP socket on cfg.Port (dual-stack IPv6) and returns a
// Transport in StateConstructed. Call Start to begin receiving.
func New(cfg Config) (*Transport, error) {
	addr := &net.UDPAddr{IP: net.IPv6unspecified, Port: int(cfg.Port)}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, err
	}

	local, _ := netip.AddrFromSlice(net.IPv6loopback)
	localEP := netip.AddrPortFrom(local, uint16(conn.LocalAddr().(*net.UDPAddr).Port))

	ioWorkers := cfg.IOWorkers
	if ioWorkers <= 0 {
		ioWorkers = 1
	}

	t := &Transport{
		state:         StateConstructed,
		conn:          conn,
		localEndpoint: localEP,
		isTestNetwork: cfg.IsTestNetwork,
		allowLocal:    cfg.AllowLocal,
		pool:          newPool(poolCapacity),
		strand:        make(chan func(), 64),
		strandDone:    make(chan struct{}),
		handler:       cfg.Handler,
		stat:          cfg.Stat,
		ioWorkers:     ioWorkers,
	}
	return t, nil
}

// LocalEndpoint returns the transport's local endpoint. After Stop it
// reads loopback:0, matching udp_channels::stop's invalidation.
func (t *Transport) LocalEndpoint() netip.AddrPort {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.localEndpoint
}

// State returns the current lifecycle state.
func (t *Transport) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Start begins running the strand and ioWorkers receive loops,
// matching udp_channels::start's per-io-thread receive posting.
func (t *Transport) Start() {
	t.mu.Lock()
	t.state = StateRunning
	t.mu.Unlock()

	go t.runStrand()
	for i := 0; i < t.ioWorkers; i++ {
		t.wg.Add(1)
		go t.receiveLoop()
	}
	t.wg.Add(1)
	go t.processLoop()
}

func (t *Transport) runStrand() {
	for fn := range t.strand {
		fn()
	}
	close(t.strandDone)
}

// Send enqueues a write to ep on the strand, so concurrent callers
// observe FIFO ordering per call site, matching channel_udp::send_buffer.
// The state check and the strand enqueue happen under the same lock
// Stop uses to transition out of StateRunning, so a Send that loses the
// race to a concurrent Stop observes the new state and is dropped
// instead of sending on a strand Stop has already closed.
func (t *Transport) Send(ep netip.AddrPort, payload []byte) error {
	t.mu.Lock()
	if t.state != StateRunning {
		t.mu.Unlock()
		return net.ErrClosed
	}

	errc := make(chan error, 1)
	t.strand <- func() {
		udpAddr := net.UDPAddrFromAddrPort(ep)
		n, err := t.conn.WriteToUDP(payload, udpAddr)
		if err == nil && t.stat != nil {
			t.stat.Add(stats.TypeTraffic, stats.DetailAll, stats.DirOut, uint64(n), false)
		}
		errc <- err
	}
	t.mu.Unlock()
	return <-errc
}

func (t *Transport) receiveLoop() {
	defer t.wg.Done()
	for {
		t.mu.Lock()
		stopped := t.state == StateStopping || t.state == StateStopped
		t.mu.Unlock()
		if stopped {
			return
		}

		d := t.pool.allocate()
		n, addr, err := t.conn.ReadFromUDPAddrPort(d.buf[:])
		if err != nil {
			t.pool.release(d)
			t.mu.Lock()
			stopping := t.state != StateRunning
			t.mu.Unlock()
			if stopping {
				return
			}
			log.Errorf("transport: receive error: %v", err)
			time.Sleep(reArmDelay)
			continue
		}

		d.size = n
		d.from = addr
		t.pool.enqueue(d)
	}
}

func (t *Transport) processLoop() {
	defer t.wg.Done()
	for {
		d := t.pool.dequeue()
		if d == nil {
			return
		}
		t.receiveAction(d)
		t.pool.release(d)
	}
}

// receiveAction applies the filter (4.E) before dispatching to the
// configured Handler.
func (t *Transport) receiveAction(d *datagram) {
	if !t.allowedSender(d.from) {
		if t.stat != nil {
			t.stat.IncDetail(stats.TypeError, stats.DetailBadSender, stats.DirIn)
		}
		return
	}
	if t.stat != nil {
		t.stat.Add(stats.TypeTraffic, stats.DetailAll, stats.DirIn, uint64(d.size), false)
	}
	if t.handler != nil {
		t.handler(d.from, d.buf[:d.size])
	}
}

// allowedSender implements the filter: reject the local endpoint, the
// unspecified address, and reserved ranges (unless local peers are
// explicitly allowed), matching udp_channels::receive_action.
func (t *Transport) allowedSender(from netip.AddrPort) bool {
	t.mu.Lock()
	local := t.localEndpoint
	t.mu.Unlock()

	if from == local {
		return false
	}
	addr := from.Addr()
	if addr.IsUnspecified() {
		return false
	}
	if !t.allowLocal && isReservedAddress(addr) {
		return false
	}
	return true
}

// isReservedAddress reports whether addr is a loopback, link-local, or
// private (RFC 1918 / ULA) address, matching
// transport::reserved_address's ranges.
func isReservedAddress(addr netip.Addr) bool {
	if addr.IsLoopback() || addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() {
		return true
	}
	a4 := addr
	if addr.Is4In6() {
		a4 = addr.Unmap()
	}
	if a4.Is4() {
		b := a4.As4()
		switch {
		case b[0] == 10:
			return true
		case b[0] == 172 && b[1] >= 16 && b[1] <= 31:
			return true
		case b[0] == 192 && b[1] == 168:
			return true
		}
	}
	if addr.Is6() && addr.As16()[0]&0xfe == 0xfc {
		return true // fc00::/7 unique local addresses
	}
	return false
}

// Stop idempotently halts the transport: on the test network the
// socket is closed synchronously to avoid address-reuse issues in
// tight test loops; otherwise closing is dispatched through the
// strand, matching udp_channels::stop.
func (t *Transport) Stop() {
	t.mu.Lock()
	if t.state == StateStopping || t.state == StateStopped {
		t.mu.Unlock()
		return
	}
	t.state = StateStopping
	loopback, _ := netip.AddrFromSlice(net.IPv6loopback)
	t.localEndpoint = netip.AddrPortFrom(loopback, 0)
	isTest := t.isTestNetwork
	t.mu.Unlock()

	closeSocket := func() {
		t.conn.Close()
		t.mu.Lock()
		t.state = StateStopped
		t.mu.Unlock()
	}

	if isTest {
		closeSocket()
	} else {
		done := make(chan struct{})
		t.strand <- func() {
			closeSocket()
			close(done)
		}
		<-done
	}

	close(t.strand)
	<-t.strandDone
	t.pool.closeReady()
	t.wg.Wait()
}
