package main

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/hulotte-project/owlink/sim/harness"
	"github.com/hulotte-project/owlink/sim/trace"
)

var vcdSignals = []trace.VCDSignal{
	{Name: "reset", Width: 1},
	{Name: "host_line", Width: 1},
	{Name: "device_line", Width: 1},
	{Name: "host_fifo_full", Width: 1},
	{Name: "device_fifo_full", Width: 1},
	{Name: "to_consumer_byte", Width: 8},
	{Name: "host_rx_byte", Width: 8},
}

// runSession drives the configured payload through the link, recording every
// tick if tracing is enabled, and reports what came back.
func runSession(log zerolog.Logger, cfg sessionConfig) error {
	recorder := trace.MakeNullRecorder()
	if cfg.TraceCSV != "" {
		r, err := trace.MakeRecorder(cfg.TraceCSV)
		if err != nil {
			return err
		}
		recorder = r
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			log.Error().Err(err).Msg("closing trace recorder")
		}
	}()

	var vcd *trace.VCDWriter
	if cfg.TraceVCD != "" {
		f, err := os.Create(cfg.TraceVCD)
		if err != nil {
			return err
		}
		vcd, err = trace.MakeVCDWriter(f, uint64(cfg.Link.ClockFrequency), vcdSignals)
		if err != nil {
			f.Close()
			return err
		}
		defer func() {
			if err := vcd.Close(); err != nil {
				log.Error().Err(err).Msg("closing value change dump")
			}
		}()
	}

	driver, err := harness.MakeDriver(cfg.Link, cfg.makeConsumer(), cfg.Options)
	if err != nil {
		return err
	}

	var traceErr error
	observe := func(err error) {
		if err != nil && traceErr == nil {
			traceErr = err
		}
	}
	driver.OnTick = func(s harness.Snapshot) {
		observe(recorder.RecordBit(s.Now, "reset", s.Reset))
		observe(recorder.RecordBit(s.Now, "host_line", s.HostLine))
		observe(recorder.RecordBit(s.Now, "device_line", s.DeviceLine))
		observe(recorder.RecordBit(s.Now, "host_fifo_full", s.Out.HostFIFOFull))
		observe(recorder.RecordBit(s.Now, "device_fifo_full", s.Out.DeviceFIFOFull))
		if s.Out.ConsumerInValid {
			observe(recorder.RecordByte(s.Now, "to_consumer_byte", s.Out.ConsumerInData))
		}
		if s.Out.HostRecvValid {
			observe(recorder.RecordByte(s.Now, "host_rx_byte", s.Out.HostRecvData))
		}
		if vcd != nil {
			observe(vcd.ChangeBit(s.Now, "reset", s.Reset))
			observe(vcd.ChangeBit(s.Now, "host_line", s.HostLine))
			observe(vcd.ChangeBit(s.Now, "device_line", s.DeviceLine))
			observe(vcd.ChangeBit(s.Now, "host_fifo_full", s.Out.HostFIFOFull))
			observe(vcd.ChangeBit(s.Now, "device_fifo_full", s.Out.DeviceFIFOFull))
			if s.Out.ConsumerInValid {
				observe(vcd.ChangeByte(s.Now, "to_consumer_byte", s.Out.ConsumerInData))
			}
			if s.Out.HostRecvValid {
				observe(vcd.ChangeByte(s.Now, "host_rx_byte", s.Out.HostRecvData))
			}
		}
	}

	log.Info().
		Uint32("clock_hz", cfg.Link.ClockFrequency).
		Uint32("baud_rate", cfg.Link.BaudRate).
		Bool("bypass", cfg.Options.Bypass).
		Str("consumer", cfg.Consumer).
		Int("payload_bytes", len(cfg.Payload)).
		Msg("starting session")

	received, err := driver.Run(cfg.Payload)
	if err != nil {
		return err
	}
	if traceErr != nil {
		return traceErr
	}

	log.Info().
		Int64("ticks", int64(driver.Now())).
		Str("elapsed", driver.Now().DurationAt(uint64(cfg.Link.ClockFrequency)).String()).
		Int("received_bytes", len(received)).
		Hex("received", received).
		Msg("session complete")
	return nil
}
