package harness

import (
	"fmt"

	"github.com/hulotte-project/owlink/sim/model"
	"github.com/hulotte-project/owlink/sim/uart"
)

// defaultResetTicks mirrors the reset window the original hardware driver
// applied before touching any data signal.
const defaultResetTicks = 8

// Options configures one driven session.
type Options struct {
	// Bypass selects the direct path instead of the serial round trip.
	Bypass bool
	// ResetTicks is how long reset is held before data flows; 0 means the
	// default of 8 ticks.
	ResetTicks int
	// MaxTicks bounds the session; 0 means a generous budget derived from
	// the payload length and bit period.
	MaxTicks model.Ticks
}

// Snapshot is everything an observer may want to record about one tick.
type Snapshot struct {
	Now        model.Ticks
	Reset      bool
	HostLine   bool
	DeviceLine bool
	Out        uart.BridgeOutputs
}

// Driver owns a bridge and a consumer and runs payloads through them under
// the documented two-phase discipline: inputs are applied through Tick, and
// outputs are read only after Tick returns.
type Driver struct {
	bridge   *uart.Bridge
	consumer Consumer
	opts     Options
	timing   uart.Timing

	now model.Ticks

	// consumer output pipelined into the next tick's bridge inputs
	consumerValid bool
	consumerData  byte

	// OnTick, when set, observes every tick after it completes.
	OnTick func(Snapshot)
}

func MakeDriver(cfg uart.Config, consumer Consumer, opts Options) (*Driver, error) {
	bridge, err := uart.MakeBridge(cfg)
	if err != nil {
		return nil, err
	}
	if opts.ResetTicks == 0 {
		opts.ResetTicks = defaultResetTicks
	}
	return &Driver{
		bridge:   bridge,
		consumer: consumer,
		opts:     opts,
		timing:   cfg.DeriveTiming(),
	}, nil
}

func (d *Driver) Now() model.Ticks {
	return d.now
}

// step advances the whole model by one tick and returns its outputs.
func (d *Driver) step(in uart.BridgeInputs) uart.BridgeOutputs {
	out := d.bridge.Tick(in)
	d.consumerValid, d.consumerData = d.consumer.Tick(out.ConsumerInValid, out.ConsumerInData)
	d.now = d.now.Add(1)
	if d.OnTick != nil {
		d.OnTick(Snapshot{
			Now:        d.now,
			Reset:      in.Reset,
			HostLine:   d.bridge.Host.Tx.LineOut(),
			DeviceLine: d.bridge.Device.Tx.LineOut(),
			Out:        out,
		})
	}
	return out
}

// Run drives the payload through the session and returns the bytes that came
// back: the mirrored direct output while bypassed, the host-side decoded
// stream otherwise. It fails if the tick budget runs out first.
func (d *Driver) Run(payload []byte) ([]byte, error) {
	budget := d.opts.MaxTicks
	if budget == 0 {
		// room for every byte to cross the wire twice, with margin
		budget = model.Ticks((int64(len(payload)) + 16) * 40 * int64(d.timing.TicksPerBit))
	}

	for i := 0; i < d.opts.ResetTicks; i++ {
		d.step(uart.BridgeInputs{Reset: true, Bypass: d.opts.Bypass})
	}

	var received []byte
	next := 0
	for d.now.Before(budget) && len(received) < len(payload) {
		in := uart.BridgeInputs{
			Bypass:        d.opts.Bypass,
			ConsumerValid: d.consumerValid,
			ConsumerData:  d.consumerData,
		}
		if d.opts.Bypass {
			if next < len(payload) {
				in.DirectValid = true
				in.DirectData = payload[next]
				next++
			}
		} else if next < len(payload) && !d.bridge.Host.Tx.AlmostFull() {
			// the almost-full throttle leaves enough slack that the one-tick
			// flag latency can never cost a write
			in.HostValid = true
			in.HostData = payload[next]
			next++
		}

		out := d.step(in)
		if d.opts.Bypass {
			if out.DirectOutValid {
				received = append(received, out.DirectOutData)
			}
		} else if out.HostRecvValid {
			received = append(received, out.HostRecvData)
		}
	}

	if len(received) < len(payload) {
		return received, fmt.Errorf("harness: tick budget %v exhausted with %d of %d bytes returned",
			budget, len(received), len(payload))
	}
	return received, nil
}
