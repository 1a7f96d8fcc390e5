// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stats

import (
	"path/filepath"
	"time"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
	"github.com/pkg/errors"
)

// log is the package-level diagnostic logger, wired up through UseLogger
// the way every package in this module reports status. It does not carry
// the counter/sample writeouts themselves, only operational messages
// (rotation failures, sink errors).
var log = slog.Disabled

// UseLogger sets the package-wide logger used for operational messages.
func UseLogger(logger slog.Logger) {
	log = logger
}

// Logger periodically writes a Stat's counters and samples to rotating
// log files, matching the reference node's scheduled stat logging. It
// owns no stat state of its own; Stat remains the source of truth.
type Logger struct {
	stat *Stat
	cfg  Config

	counters *rotator.Rotator
	samples  *rotator.Rotator

	stopc chan struct{}
	donec chan struct{}
}

// rotationThreshold bounds each log file at 10 MiB before rolling (the
// rotator takes its threshold in KiB), matching the per-file size dcrd's
// own log rotator uses for text logs.
const rotationThreshold = 10 * 1024

// NewLogger returns a Logger that writes cfg's counters/samples files
// under dir, keeping at most cfg.LogRotationCount rolled files of each.
func NewLogger(stat *Stat, cfg Config, dir string) (*Logger, error) {
	counters, err := rotator.New(filepath.Join(dir, cfg.LogCountersFilename), rotationThreshold, false, cfg.LogRotationCount)
	if err != nil {
		return nil, errors.Wrap(err, "stats: opening counters log")
	}
	samples, err := rotator.New(filepath.Join(dir, cfg.LogSamplesFilename), rotationThreshold, false, cfg.LogRotationCount)
	if err != nil {
		counters.Close()
		return nil, errors.Wrap(err, "stats: opening samples log")
	}
	return &Logger{
		stat:     stat,
		cfg:      cfg,
		counters: counters,
		samples:  samples,
		stopc:    make(chan struct{}),
		donec:    make(chan struct{}),
	}, nil
}

// Run drives the periodic writeout loop until Stop is called. Callers
// typically run it in its own goroutine.
func (l *Logger) Run() {
	defer close(l.donec)

	var counterTick, sampleTick <-chan time.Time
	if l.cfg.LogIntervalCountersMillis > 0 {
		t := time.NewTicker(time.Duration(l.cfg.LogIntervalCountersMillis) * time.Millisecond)
		defer t.Stop()
		counterTick = t.C
	}
	if l.cfg.LogIntervalSamplesMillis > 0 {
		t := time.NewTicker(time.Duration(l.cfg.LogIntervalSamplesMillis) * time.Millisecond)
		defer t.Stop()
		sampleTick = t.C
	}

	for {
		select {
		case <-l.stopc:
			return
		case <-counterTick:
			if err := l.stat.LogCounters(NewTextSink(l.counters, l.cfg.LogHeaders)); err != nil {
				log.Errorf("writing counters log: %v", err)
			}
		case <-sampleTick:
			if err := l.stat.LogSamples(NewTextSink(l.samples, l.cfg.LogHeaders)); err != nil {
				log.Errorf("writing samples log: %v", err)
			}
		}
	}
}

// Stop halts the writeout loop and closes both rotating log files. It
// blocks until Run has returned.
func (l *Logger) Stop() {
	close(l.stopc)
	<-l.donec
	l.counters.Close()
	l.samples.Close()
}
