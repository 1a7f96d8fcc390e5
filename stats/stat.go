// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package stats implements the statistics engine (component 4.G): counters
// and bounded sample rings keyed by (type, detail, direction), with
// observer fan-out and periodic log output.
package stats

import (
	"container/ring"
	"sync"
	"time"
)

// Type is the primary statistics category.
type Type uint8

// Recognized stat types. Only the categories this networking core
// generates are carried; ledger/rollback/confirmation-height/ipc/http
// categories from the reference enum are omitted since their subsystems
// are out of scope here.
const (
	TypeTraffic Type = iota
	TypeError
	TypeMessage
	TypeBootstrap
	TypeVote
	TypePeering
	TypeTCP
	TypeUDP
)

// Detail is the optional, finer-grained statistics dimension.
type Detail uint8

// Recognized stat details.
const (
	DetailAll Detail = iota

	// error specific
	DetailBadSender
	DetailInsufficientWork

	// message specific
	DetailKeepalive
	DetailPublish
	DetailConfirmReq
	DetailConfirmAck
	DetailNodeIDHandshake
	DetailBulkPull
	DetailBulkPullAccount
	DetailBulkPush
	DetailFrontierReq

	// vote specific
	DetailVoteValid
	DetailVoteReplay
	DetailVoteInvalid
	DetailVoteOverflow

	// udp/parser specific, matching parser.Status one-for-one
	DetailInvalidMagic
	DetailInvalidNetwork
	DetailInvalidHeader
	DetailInvalidMessageType
	DetailInvalidKeepaliveMessage
	DetailInvalidPublishMessage
	DetailInvalidConfirmReqMessage
	DetailInvalidConfirmAckMessage
	DetailInvalidNodeIDHandshakeMessage
	DetailOutdatedVersion

	// tcp specific
	DetailTCPAcceptSuccess
	DetailTCPAcceptFailure

	// peering specific
	DetailHandshake
)

// Dir is the traffic direction a stat applies to. Use DirIn when direction
// is irrelevant.
type Dir uint8

// Recognized directions.
const (
	DirIn Dir = iota
	DirOut
)

// keyOf packs (type, detail, dir) into the 24-bit composite key the
// reference stat engine uses, matching nano::stat::key_of's bit layout
// exactly: type in bits 16-23, detail in bits 8-15, direction in bits 0-7.
func keyOf(t Type, d Detail, dir Dir) uint32 {
	return uint32(t)<<16 | uint32(d)<<8 | uint32(dir)
}

// noDetailMask clears the detail byte, used to find a key's type-level
// aggregate counterpart.
const noDetailMask = 0xffff00ff

// Sample is a single measurement: a value and the wall-clock time it was
// recorded.
type Sample struct {
	Value     uint64
	Timestamp time.Time
}

// CountObserver is notified with (old, new) whenever a counter updates.
type CountObserver func(old, new uint64)

// SampleObserver is notified with a snapshot of the sample ring whenever a
// sample interval closes.
type SampleObserver func(samples []Sample)

type entry struct {
	mu sync.Mutex

	counter   uint64
	counterAt time.Time

	sampleInterval time.Duration
	sampleStart    time.Time
	sampleCurrent  uint64
	samples        *ring.Ring
	sampleLen      int
	sampleCap      int

	countObservers  []CountObserver
	sampleObservers []SampleObserver
}

func newEntry(capacity int, interval time.Duration) *entry {
	e := &entry{
		sampleInterval: interval,
		sampleStart:    time.Now(),
		counterAt:      time.Now(),
	}
	if capacity > 0 {
		e.samples = ring.New(capacity)
		e.sampleCap = capacity
	}
	return e
}

func (e *entry) snapshotSamples() []Sample {
	if e.samples == nil || e.sampleLen == 0 {
		return nil
	}
	out := make([]Sample, 0, e.sampleLen)
	r := e.samples
	for i := 0; i < e.sampleLen; i++ {
		if s, ok := r.Value.(Sample); ok {
			out = append(out, s)
		}
		r = r.Next()
	}
	return out
}

// Stat is the statistics engine. Zero value is usable with default
// (sampling-disabled) behavior; use New with a Config for sampling.
type Stat struct {
	mu        sync.Mutex
	config    Config
	entries   map[uint32]*entry
	timestamp time.Time
	stopped   bool
}

// New returns a Stat configured per cfg.
func New(cfg Config) *Stat {
	return &Stat{
		config:    cfg,
		entries:   make(map[uint32]*entry),
		timestamp: time.Now(),
	}
}

func (s *Stat) getEntry(key uint32) *entry {
	return s.getEntryConfigured(key, time.Duration(s.config.IntervalMillis)*time.Millisecond, s.config.Capacity)
}

func (s *Stat) getEntryConfigured(key uint32, interval time.Duration, capacity int) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries == nil {
		s.entries = make(map[uint32]*entry)
	}
	e, ok := s.entries[key]
	if !ok {
		sampling := 0
		if s.config.SamplingEnabled {
			sampling = capacity
		}
		e = newEntry(sampling, interval)
		s.entries[key] = e
	}
	return e
}

// Configure overrides the sample interval/capacity for one
// (type,detail,dir) combination. Must be called before the first update
// to that combination to take effect, matching the reference engine.
func (s *Stat) Configure(t Type, d Detail, dir Dir, interval time.Duration, capacity int) {
	s.getEntryConfigured(keyOf(t, d, dir), interval, capacity)
}

// DisableSampling turns off the sample ring for one combination while
// leaving its counter active.
func (s *Stat) DisableSampling(t Type, d Detail, dir Dir) {
	e := s.getEntry(keyOf(t, d, dir))
	e.mu.Lock()
	e.sampleInterval = 0
	e.mu.Unlock()
}

// Inc increments the type-level counter (detail=all) by one.
func (s *Stat) Inc(t Type, dir Dir) {
	s.Add(t, DetailAll, dir, 1, false)
}

// IncDetail increments type, detail by one, also rolling up into the
// type-level aggregate.
func (s *Stat) IncDetail(t Type, d Detail, dir Dir) {
	s.Add(t, d, dir, 1, false)
}

// IncDetailOnly increments only the detail-level counter, without
// updating the type-level aggregate.
func (s *Stat) IncDetailOnly(t Type, d Detail, dir Dir) {
	s.Add(t, d, dir, 1, true)
}

// Add adds value to the (type, detail, dir) counter and, unless
// detailOnly, to the type-level aggregate as well.
func (s *Stat) Add(t Type, d Detail, dir Dir, value uint64, detailOnly bool) {
	key := keyOf(t, d, dir)
	s.update(key, value)
	if !detailOnly && key&noDetailMask != key {
		s.update(key&noDetailMask, value)
	}
}

func (s *Stat) update(key uint32, value uint64) {
	e := s.getEntry(key)

	e.mu.Lock()
	old := e.counter
	e.counter += value
	e.counterAt = time.Now()
	newVal := e.counter

	var closedSnapshot []Sample
	var sampleObservers []SampleObserver
	if e.sampleInterval > 0 {
		e.sampleCurrent += value
		if time.Since(e.sampleStart) >= e.sampleInterval {
			sample := Sample{Value: e.sampleCurrent, Timestamp: time.Now()}
			if e.samples != nil {
				e.samples.Value = sample
				e.samples = e.samples.Next()
				if e.sampleLen < e.sampleCap {
					e.sampleLen++
				}
			}
			e.sampleCurrent = 0
			e.sampleStart = time.Now()
			closedSnapshot = e.snapshotSamples()
			sampleObservers = append([]SampleObserver(nil), e.sampleObservers...)
		}
	}
	countObservers := append([]CountObserver(nil), e.countObservers...)
	e.mu.Unlock()

	for _, obs := range countObservers {
		obs(old, newVal)
	}
	if closedSnapshot != nil {
		for _, obs := range sampleObservers {
			obs(closedSnapshot)
		}
	}
}

// ObserveCount registers obs to be called with (old, new) on every update
// to (type, detail, dir).
func (s *Stat) ObserveCount(t Type, d Detail, dir Dir, obs CountObserver) {
	e := s.getEntry(keyOf(t, d, dir))
	e.mu.Lock()
	e.countObservers = append(e.countObservers, obs)
	e.mu.Unlock()
}

// ObserveSample registers obs to be called with a sample snapshot whenever
// the sample interval for (type, detail, dir) closes.
func (s *Stat) ObserveSample(t Type, d Detail, dir Dir, obs SampleObserver) {
	e := s.getEntry(keyOf(t, d, dir))
	e.mu.Lock()
	e.sampleObservers = append(e.sampleObservers, obs)
	e.mu.Unlock()
}

// Samples returns a snapshot of the last N samples recorded for
// (type, detail, dir), where N is the configured capacity.
func (s *Stat) Samples(t Type, d Detail, dir Dir) []Sample {
	e := s.getEntry(keyOf(t, d, dir))
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotSamples()
}

// Count returns the current counter value for (type, detail, dir).
func (s *Stat) Count(t Type, d Detail, dir Dir) uint64 {
	e := s.getEntry(keyOf(t, d, dir))
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counter
}

// CountType returns the current type-level (detail=all) counter value.
func (s *Stat) CountType(t Type, dir Dir) uint64 {
	return s.Count(t, DetailAll, dir)
}

// LastReset reports how long it has been since Clear was last called, or
// since this Stat was constructed if it hasn't been.
func (s *Stat) LastReset() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.timestamp)
}

// Clear discards every entry and resets the reset timestamp.
func (s *Stat) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[uint32]*entry)
	s.timestamp = time.Now()
}

// Stop marks the engine stopped; Logger implementations should treat this
// as a signal to stop writing.
func (s *Stat) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

// Stopped reports whether Stop has been called.
func (s *Stat) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
