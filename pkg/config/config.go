// Package config loads the runtime configuration gavl needs outside
// of a single container open call: listen/connect URIs, handshake
// timeouts, hwbuf pool sizing, and the reorder buffer's high-water
// mark. Grounded on start/start.go's configEnv/yaml.v2 loading
// pattern, generalised from that one-shot build-time config to a
// long-lived runtime config.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the top-level runtime configuration, unmarshaled from a
// single YAML document.
type Config struct {
	// ListenURI is the transport URI (§6.2 forms) the container
	// runtime listens on, for producer-side operation.
	ListenURI string `yaml:"listenUri"`

	// ConnectURI is the transport URI a consumer dials.
	ConnectURI string `yaml:"connectUri"`

	// HandshakeTimeoutMS bounds the socket GET/PUT handshake (§5's
	// "configurable millisecond timeout").
	HandshakeTimeoutMS int `yaml:"handshakeTimeoutMs"`

	// SeparateStreams negotiates per-stream UNIX sockets on
	// SELECT_TRACK (§4.7).
	SeparateStreams bool `yaml:"separateStreams"`

	HWBuf   HWBufConfig   `yaml:"hwbuf"`
	Reorder ReorderConfig `yaml:"reorder"`
}

// HWBufConfig sizes the hardware buffer pool (§4.6).
type HWBufConfig struct {
	InitialFrames int `yaml:"initialFrames"`
	MaxFrames     int `yaml:"maxFrames"`
	// GetWriteTimeoutMS bounds a GetWrite call's timed wait for a
	// free slot once growth is exhausted.
	GetWriteTimeoutMS int `yaml:"getWriteTimeoutMs"`
}

// ReorderConfig tunes the packet reorder/retime buffer (§4.4).
type ReorderConfig struct {
	// HighWaterMark is the queue depth at which the buffer logs a
	// warning about an unbounded-looking backlog.
	HighWaterMark int `yaml:"highWaterMark"`
}

// Defaults returns a Config populated with the same fallbacks the
// teacher's parseEnv applies when a field is left unset in YAML.
func Defaults() Config {
	return Config{
		HandshakeTimeoutMS: 10000,
		HWBuf: HWBufConfig{
			InitialFrames:     4,
			MaxFrames:         16,
			GetWriteTimeoutMS: 5000,
		},
		Reorder: ReorderConfig{
			HighWaterMark: 64,
		},
	}
}

// Load reads and unmarshals the YAML document at path over a
// Defaults() base, then validates it.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse unmarshals raw YAML over a Defaults() base and validates it.
func Parse(raw []byte) (Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects a config with nonsensical values rather than
// letting them surface later as confusing runtime failures.
func (c Config) Validate() error {
	if c.HandshakeTimeoutMS <= 0 {
		return fmt.Errorf("config: handshakeTimeoutMs must be positive, got %d", c.HandshakeTimeoutMS)
	}
	if c.HWBuf.MaxFrames > 0 && c.HWBuf.InitialFrames > c.HWBuf.MaxFrames {
		return fmt.Errorf("config: hwbuf.initialFrames (%d) exceeds hwbuf.maxFrames (%d)",
			c.HWBuf.InitialFrames, c.HWBuf.MaxFrames)
	}
	if c.Reorder.HighWaterMark <= 0 {
		return fmt.Errorf("config: reorder.highWaterMark must be positive, got %d", c.Reorder.HighWaterMark)
	}
	return nil
}

// HandshakeTimeout returns HandshakeTimeoutMS as a time.Duration.
func (c Config) HandshakeTimeout() time.Duration {
	return time.Duration(c.HandshakeTimeoutMS) * time.Millisecond
}

// GetWriteTimeout returns HWBuf.GetWriteTimeoutMS as a time.Duration.
func (c HWBufConfig) GetWriteTimeout() time.Duration {
	return time.Duration(c.GetWriteTimeoutMS) * time.Millisecond
}
