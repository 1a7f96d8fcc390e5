// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2023 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stats

import "github.com/pkg/errors"

// configVersion is bumped whenever Config's on-disk shape changes.
const configVersion = 1

// Config is the versioned, serializable configuration for a Stat engine,
// corresponding field-for-field to the reference stat_config.
type Config struct {
	Version int `toml:"version" json:"version"`

	// SamplingEnabled turns on the bounded sample ring for every entry.
	SamplingEnabled bool `toml:"sampling_enabled" json:"sampling_enabled"`

	// Capacity is how many sample intervals the ring buffer retains.
	Capacity int `toml:"capacity" json:"capacity"`

	// IntervalMillis is the sample interval in milliseconds.
	IntervalMillis int `toml:"interval_ms" json:"interval_ms"`

	// LogIntervalSamplesMillis is how often to log the sample array, in
	// milliseconds. Zero disables sample logging.
	LogIntervalSamplesMillis int `toml:"log_interval_samples_ms" json:"log_interval_samples_ms"`

	// LogIntervalCountersMillis is how often to log counters, in
	// milliseconds. Zero disables counter logging.
	LogIntervalCountersMillis int `toml:"log_interval_counters_ms" json:"log_interval_counters_ms"`

	// LogRotationCount bounds how many log outputs are kept before the
	// rotating writer recycles the oldest file.
	LogRotationCount int `toml:"log_rotation_count" json:"log_rotation_count"`

	// LogHeaders, if true, writes a header line (log type and wall time)
	// on each counter or sample writeout.
	LogHeaders bool `toml:"log_headers" json:"log_headers"`

	// LogCountersFilename and LogSamplesFilename name the two rotating
	// log files written under the node's log directory.
	LogCountersFilename string `toml:"log_counters_filename" json:"log_counters_filename"`
	LogSamplesFilename  string `toml:"log_samples_filename" json:"log_samples_filename"`
}

// DefaultConfig returns the Config the reference node ships with: sampling
// off, headers on, log rotation at 100 files.
func DefaultConfig() Config {
	return Config{
		Version:             configVersion,
		SamplingEnabled:     false,
		Capacity:            0,
		IntervalMillis:      0,
		LogRotationCount:    100,
		LogHeaders:          true,
		LogCountersFilename: "counters.stat",
		LogSamplesFilename:  "samples.stat",
	}
}

// Normalize fills in zero-valued fields that Validate would otherwise
// reject, the way a freshly-decoded but partially-specified config file
// should be treated.
func (c *Config) Normalize() {
	if c.Version == 0 {
		c.Version = configVersion
	}
	if c.LogRotationCount == 0 {
		c.LogRotationCount = 100
	}
	if c.LogCountersFilename == "" {
		c.LogCountersFilename = "counters.stat"
	}
	if c.LogSamplesFilename == "" {
		c.LogSamplesFilename = "samples.stat"
	}
}

// Validate reports an error if c cannot be used to construct a Stat
// engine's logging behavior.
func (c Config) Validate() error {
	if c.SamplingEnabled && c.Capacity <= 0 {
		return errors.New("stats: sampling_enabled requires a positive capacity")
	}
	if c.SamplingEnabled && c.IntervalMillis <= 0 {
		return errors.New("stats: sampling_enabled requires a positive interval_ms")
	}
	if c.LogRotationCount <= 0 {
		return errors.New("stats: log_rotation_count must be positive")
	}
	return nil
}
