// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// LogSink receives counter and sample writeouts. Implementations decide
// format and destination; Stat only decides what gets written and when.
type LogSink interface {
	// Begin is called before a logging pass starts.
	Begin() error
	// WriteHeader writes a header line naming the log type, at walltime.
	WriteHeader(logType string, walltime time.Time) error
	// WriteEntry writes one counter or sample writeout.
	WriteEntry(walltime time.Time, typeName, detailName, dirName string, value uint64) error
	// Finalize is called after a logging pass completes.
	Finalize() error
	// Rotate recycles the sink's backing storage, if it supports it.
	Rotate() error
}

// textSink writes tab-separated rows to an io.Writer, matching the
// reference node's plain-text stat_log_sink default implementation.
type textSink struct {
	w          io.Writer
	logHeaders bool
}

// NewTextSink returns a LogSink writing tab-separated rows to w.
func NewTextSink(w io.Writer, logHeaders bool) LogSink {
	return &textSink{w: w, logHeaders: logHeaders}
}

func (s *textSink) Begin() error { return nil }

func (s *textSink) WriteHeader(logType string, walltime time.Time) error {
	if !s.logHeaders {
		return nil
	}
	_, err := fmt.Fprintf(s.w, "%s\t%s\n", logType, walltime.Format(time.RFC3339))
	return err
}

func (s *textSink) WriteEntry(walltime time.Time, typeName, detailName, dirName string, value uint64) error {
	_, err := fmt.Fprintf(s.w, "%s\t%s\t%s\t%s\t%d\n", walltime.Format(time.RFC3339), typeName, detailName, dirName, value)
	return err
}

func (s *textSink) Finalize() error { return nil }
func (s *textSink) Rotate() error   { return nil }

// jsonEntry is one row of a JSON log sink writeout.
type jsonEntry struct {
	Time   string `json:"time"`
	Type   string `json:"type"`
	Detail string `json:"detail"`
	Dir    string `json:"dir"`
	Value  uint64 `json:"value"`
}

// jsonSink accumulates entries and marshals them as a JSON array on
// Finalize: the JSON counterpart of textSink, modeled on the reference
// node's log_sink_json (supplemented feature 2b).
type jsonSink struct {
	w       io.Writer
	entries []jsonEntry
}

// NewJSONSink returns a LogSink that buffers entries and writes them as a
// single JSON array to w on Finalize.
func NewJSONSink(w io.Writer) LogSink {
	return &jsonSink{w: w}
}

func (s *jsonSink) Begin() error {
	s.entries = s.entries[:0]
	return nil
}

func (s *jsonSink) WriteHeader(string, time.Time) error { return nil }

func (s *jsonSink) WriteEntry(walltime time.Time, typeName, detailName, dirName string, value uint64) error {
	s.entries = append(s.entries, jsonEntry{
		Time:   walltime.Format(time.RFC3339),
		Type:   typeName,
		Detail: detailName,
		Dir:    dirName,
		Value:  value,
	})
	return nil
}

func (s *jsonSink) Finalize() error {
	enc := json.NewEncoder(s.w)
	return enc.Encode(s.entries)
}

func (s *jsonSink) Rotate() error { return nil }

// typeName, detailName and dirName give display names for Type, Detail
// and Dir in log output.
func typeName(t Type) string {
	switch t {
	case TypeTraffic:
		return "traffic"
	case TypeError:
		return "error"
	case TypeMessage:
		return "message"
	case TypeBootstrap:
		return "bootstrap"
	case TypeVote:
		return "vote"
	case TypePeering:
		return "peering"
	case TypeTCP:
		return "tcp"
	case TypeUDP:
		return "udp"
	default:
		return "unknown"
	}
}

func dirName(d Dir) string {
	if d == DirOut {
		return "out"
	}
	return "in"
}

func detailName(d Detail) string {
	switch d {
	case DetailAll:
		return "all"
	case DetailBadSender:
		return "bad_sender"
	case DetailInsufficientWork:
		return "insufficient_work"
	case DetailKeepalive:
		return "keepalive"
	case DetailPublish:
		return "publish"
	case DetailConfirmReq:
		return "confirm_req"
	case DetailConfirmAck:
		return "confirm_ack"
	case DetailNodeIDHandshake:
		return "node_id_handshake"
	case DetailBulkPull:
		return "bulk_pull"
	case DetailBulkPullAccount:
		return "bulk_pull_account"
	case DetailBulkPush:
		return "bulk_push"
	case DetailFrontierReq:
		return "frontier_req"
	case DetailVoteValid:
		return "vote_valid"
	case DetailVoteReplay:
		return "vote_replay"
	case DetailVoteInvalid:
		return "vote_invalid"
	case DetailVoteOverflow:
		return "vote_overflow"
	case DetailInvalidMagic:
		return "invalid_magic"
	case DetailInvalidNetwork:
		return "invalid_network"
	case DetailInvalidHeader:
		return "invalid_header"
	case DetailInvalidMessageType:
		return "invalid_message_type"
	case DetailInvalidKeepaliveMessage:
		return "invalid_keepalive_message"
	case DetailInvalidPublishMessage:
		return "invalid_publish_message"
	case DetailInvalidConfirmReqMessage:
		return "invalid_confirm_req_message"
	case DetailInvalidConfirmAckMessage:
		return "invalid_confirm_ack_message"
	case DetailInvalidNodeIDHandshakeMessage:
		return "invalid_node_id_handshake_message"
	case DetailOutdatedVersion:
		return "outdated_version"
	case DetailTCPAcceptSuccess:
		return "tcp_accept_success"
	case DetailTCPAcceptFailure:
		return "tcp_accept_failure"
	case DetailHandshake:
		return "handshake"
	default:
		return "unknown"
	}
}

// LogCounters writes every entry's counter value to sink.
func (s *Stat) LogCounters(sink LogSink) error {
	s.mu.Lock()
	snapshot := make(map[uint32]uint64, len(s.entries))
	for k, e := range s.entries {
		e.mu.Lock()
		snapshot[k] = e.counter
		e.mu.Unlock()
	}
	s.mu.Unlock()

	if err := sink.Begin(); err != nil {
		return err
	}
	now := time.Now()
	if err := sink.WriteHeader("counters", now); err != nil {
		return err
	}
	for key, value := range snapshot {
		t, d, dir := splitKey(key)
		if err := sink.WriteEntry(now, typeName(t), detailName(d), dirName(dir), value); err != nil {
			return err
		}
	}
	return sink.Finalize()
}

// LogSamples writes every entry's current sample snapshot to sink.
func (s *Stat) LogSamples(sink LogSink) error {
	s.mu.Lock()
	type snap struct {
		key     uint32
		samples []Sample
	}
	snapshots := make([]snap, 0, len(s.entries))
	for k, e := range s.entries {
		e.mu.Lock()
		samples := e.snapshotSamples()
		e.mu.Unlock()
		if len(samples) > 0 {
			snapshots = append(snapshots, snap{key: k, samples: samples})
		}
	}
	s.mu.Unlock()

	if err := sink.Begin(); err != nil {
		return err
	}
	now := time.Now()
	if err := sink.WriteHeader("samples", now); err != nil {
		return err
	}
	for _, sn := range snapshots {
		t, d, dir := splitKey(sn.key)
		for _, sample := range sn.samples {
			if err := sink.WriteEntry(sample.Timestamp, typeName(t), detailName(d), dirName(dir), sample.Value); err != nil {
				return err
			}
		}
	}
	return sink.Finalize()
}

func splitKey(key uint32) (Type, Detail, Dir) {
	return Type(key >> 16 & 0xff), Detail(key >> 8 & 0xff), Dir(key & 0xff)
}
