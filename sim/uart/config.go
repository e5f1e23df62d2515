// Package uart models a UART-style serial byte link as a set of synchronous
// state machines: a line sampler, a receiver, a transmitter with a bounded
// FIFO, and a bridge that composes a host/device pair across a virtual cable.
//
// Every component advances exactly once per call to its Tick method, and all
// outputs are pure functions of the state left behind by that call. A driver
// emulates the two-phase clock of the original hardware by calling Tick once
// and only then reading outputs.
package uart

import "fmt"

// Config carries the construction-time parameters of one codec instance.
// All fields are fixed for the lifetime of the instance.
type Config struct {
	// BaudRate is the signalling rate of the line, in bits per second.
	BaudRate uint32
	// ClockFrequency is the model clock, in ticks per second. It is used
	// only to derive the tick count per bit.
	ClockFrequency uint32

	// FIFOCapacity is the depth of the transmit queue.
	FIFOCapacity int
	// NearFullThreshold is the occupancy at which the almost-full flag
	// asserts, requesting upstream throttling before hard backpressure.
	NearFullThreshold int
	// DropOldestOnFull selects the overflow policy: evict the oldest
	// unsent byte instead of discarding the new one.
	DropOldestOnFull bool
	// PredictiveFullMode asserts the full flag one tick early when a write
	// is already in flight and a frame is draining; see Transmitter.Full.
	PredictiveFullMode bool
}

// Timing is the bit-period constant and its window markers, derived once
// from a validated Config.
type Timing struct {
	TicksPerBit int
	Quarter     int
	Half        int
}

// minTicksPerBit keeps the quarter-period windows large enough that the
// one-tick state transition costs of the receiver stay well inside them.
const minTicksPerBit = 16

func (c Config) Validate() error {
	if c.BaudRate == 0 {
		return fmt.Errorf("uart: baud rate must be positive")
	}
	if c.ClockFrequency == 0 {
		return fmt.Errorf("uart: clock frequency must be positive")
	}
	// the tick count per bit is derived by integer division, as a hardware
	// baud divider would; the residual rate error is at most one part in
	// ticks-per-bit, and the receiver re-times on every start edge
	if tpb := c.ClockFrequency / c.BaudRate; tpb < minTicksPerBit {
		return fmt.Errorf("uart: %d ticks per bit is too few; need at least %d", tpb, minTicksPerBit)
	}
	if c.FIFOCapacity < 1 {
		return fmt.Errorf("uart: FIFO capacity %d must be at least 1", c.FIFOCapacity)
	}
	if c.NearFullThreshold < 1 || c.NearFullThreshold >= c.FIFOCapacity {
		return fmt.Errorf("uart: near-full threshold %d must be in [1, %d)", c.NearFullThreshold, c.FIFOCapacity)
	}
	return nil
}

// DeriveTiming computes the bit-period markers. The config must have been
// validated; an invalid config panics rather than producing undefined timing.
func (c Config) DeriveTiming() Timing {
	if err := c.Validate(); err != nil {
		panic(err)
	}
	tpb := int(c.ClockFrequency / c.BaudRate)
	return Timing{
		TicksPerBit: tpb,
		Quarter:     tpb / 4,
		Half:        tpb / 2,
	}
}
