package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/hulotte-project/owlink/sim/harness"
	"github.com/hulotte-project/owlink/sim/model"
	"github.com/hulotte-project/owlink/sim/uart"
)

// owlinkctl session.toml key mapping to link and driver settings.
type fileConfig struct {
	ClockHz           uint32 `toml:"clock_hz"`
	BaudRate          uint32 `toml:"baud_rate"`
	FIFOCapacity      int    `toml:"fifo_capacity"`
	NearFullThreshold int    `toml:"near_full_threshold"`
	DropOldestOnFull  bool   `toml:"drop_oldest_on_full"`
	PredictiveFull    bool   `toml:"predictive_full"`

	Bypass     bool  `toml:"bypass"`
	ResetTicks int   `toml:"reset_ticks"`
	MaxTicks   int64 `toml:"max_ticks"`

	Consumer    string `toml:"consumer"`
	EchoLatency int    `toml:"echo_latency"`
	Offset      int    `toml:"offset"`

	Payload    string `toml:"payload"`
	PayloadHex string `toml:"payload_hex"`

	TraceCSV string `toml:"trace_csv"`
	TraceVCD string `toml:"trace_vcd"`
}

type sessionConfig struct {
	Link    uart.Config
	Options harness.Options

	Consumer    string
	EchoLatency int
	Offset      byte

	Payload []byte

	TraceCSV string
	TraceVCD string
}

func defaultSessionConfig() sessionConfig {
	return sessionConfig{
		Link: uart.Config{
			ClockFrequency:    100000000,
			BaudRate:          115200,
			FIFOCapacity:      16,
			NearFullThreshold: 12,
		},
		Consumer:    "echo",
		EchoLatency: 1,
		Payload:     []byte("the quick brown owl jumps over the lazy hawk"),
	}
}

// loadSessionConfig reads a TOML session file over the defaults; absent keys
// keep their default values.
func loadSessionConfig(path string) (sessionConfig, error) {
	cfg := defaultSessionConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return sessionConfig{}, fmt.Errorf("load session config: %w", err)
	}

	if meta.IsDefined("clock_hz") {
		cfg.Link.ClockFrequency = raw.ClockHz
	}
	if meta.IsDefined("baud_rate") {
		cfg.Link.BaudRate = raw.BaudRate
	}
	if meta.IsDefined("fifo_capacity") {
		cfg.Link.FIFOCapacity = raw.FIFOCapacity
	}
	if meta.IsDefined("near_full_threshold") {
		cfg.Link.NearFullThreshold = raw.NearFullThreshold
	}
	if meta.IsDefined("drop_oldest_on_full") {
		cfg.Link.DropOldestOnFull = raw.DropOldestOnFull
	}
	if meta.IsDefined("predictive_full") {
		cfg.Link.PredictiveFullMode = raw.PredictiveFull
	}
	if meta.IsDefined("bypass") {
		cfg.Options.Bypass = raw.Bypass
	}
	if meta.IsDefined("reset_ticks") {
		cfg.Options.ResetTicks = raw.ResetTicks
	}
	if meta.IsDefined("max_ticks") {
		cfg.Options.MaxTicks = model.Ticks(raw.MaxTicks)
	}
	if meta.IsDefined("consumer") {
		cfg.Consumer = strings.TrimSpace(raw.Consumer)
	}
	if meta.IsDefined("echo_latency") {
		cfg.EchoLatency = raw.EchoLatency
	}
	if meta.IsDefined("offset") {
		if raw.Offset < 0 || raw.Offset > 255 {
			return sessionConfig{}, fmt.Errorf("load session config: offset %d out of byte range", raw.Offset)
		}
		cfg.Offset = byte(raw.Offset)
	}
	if meta.IsDefined("payload") {
		cfg.Payload = []byte(raw.Payload)
	}
	if meta.IsDefined("payload_hex") {
		if meta.IsDefined("payload") {
			return sessionConfig{}, fmt.Errorf("load session config: payload and payload_hex are mutually exclusive")
		}
		decoded, err := hex.DecodeString(strings.TrimSpace(raw.PayloadHex))
		if err != nil {
			return sessionConfig{}, fmt.Errorf("load session config: payload_hex: %w", err)
		}
		cfg.Payload = decoded
	}
	if meta.IsDefined("trace_csv") {
		cfg.TraceCSV = strings.TrimSpace(raw.TraceCSV)
	}
	if meta.IsDefined("trace_vcd") {
		cfg.TraceVCD = strings.TrimSpace(raw.TraceVCD)
	}

	if err := cfg.Link.Validate(); err != nil {
		return sessionConfig{}, fmt.Errorf("load session config: %w", err)
	}
	if cfg.Consumer != "echo" && cfg.Consumer != "offset" {
		return sessionConfig{}, fmt.Errorf("load session config: unknown consumer %q (expected echo or offset)", cfg.Consumer)
	}
	if len(cfg.Payload) == 0 {
		return sessionConfig{}, fmt.Errorf("load session config: empty payload")
	}
	return cfg, nil
}

func (cfg sessionConfig) makeConsumer() harness.Consumer {
	if cfg.Consumer == "offset" {
		return harness.MakeOffsetConsumer(cfg.Offset)
	}
	return harness.MakeEchoConsumer(cfg.EchoLatency)
}
