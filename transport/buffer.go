// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transport implements the datagram transport (component
// 4.E): a single UDP socket whose sends are serialized through one
// strand goroutine while receive loops read it directly outside the
// strand, backed by a bounded buffer pool with
// backpressure, and the constructed/running/stopping/stopped state
// machine governing it.
package transport

import "net/netip"

// bufferSize is the maximum datagram payload this transport reads,
// matching the reference node's network::buffer_size.
const bufferSize = 512

// datagram is one received packet: a reusable byte buffer, the number
// of valid bytes in it, and the sender. Buffers are recycled through
// pool rather than freed so the receive loop doesn't allocate per
// packet.
type datagram struct {
	buf  [bufferSize]byte
	size int
	from netip.AddrPort
}

// pool is a fixed-size, channel-backed free list of datagram buffers,
// the idiomatic Go replacement for the reference's
// message_buffer_manager (a mutex/condition-variable-guarded
// producer/consumer queue). allocate blocks when the pool is
// exhausted, giving the receive loop natural backpressure instead of
// an unbounded buffer count.
type pool struct {
	free  chan *datagram
	ready chan *datagram
}

// newPool returns a pool with capacity free buffers immediately
// available for allocate.
func newPool(capacity int) *pool {
	p := &pool{
		free:  make(chan *datagram, capacity),
		ready: make(chan *datagram, capacity),
	}
	for i := 0; i < capacity; i++ {
		p.free <- new(datagram)
	}
	return p
}

// allocate blocks until a buffer is free, matching
// message_buffer_manager::allocate's wait-for-space behavior.
func (p *pool) allocate() *datagram {
	return <-p.free
}

// enqueue hands a filled buffer to the consumer side.
func (p *pool) enqueue(d *datagram) {
	p.ready <- d
}

// dequeue blocks until a filled buffer is ready, or returns nil if the
// pool has been closed (matching message_buffer_manager::dequeue's nil
// sentinel on stop).
func (p *pool) dequeue() *datagram {
	d, ok := <-p.ready
	if !ok {
		return nil
	}
	return d
}

// release returns a buffer to the free list for reuse.
func (p *pool) release(d *datagram) {
	d.size = 0
	p.free <- d
}

// closeReady closes the ready channel, unblocking any pending dequeue
// with a nil result. Must only be called once.
func (p *pool) closeReady() {
	close(p.ready)
}
