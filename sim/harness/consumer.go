// Package harness provides the external driver the codec model expects: it
// holds reset for an initial window, steps the bridge one tick at a time,
// feeds a payload under flow control, and collects whatever comes back. None
// of this is part of the codec's correctness contract, only of its required
// calling discipline.
package harness

// A Consumer is the downstream stage the bridge feeds. It is advanced once
// per tick with the byte the bridge routed to it (if any) and produces at
// most one output byte for that tick.
type Consumer interface {
	Tick(inValid bool, inData byte) (outValid bool, outData byte)
}

type pendingByte struct {
	due  int64
	data byte
}

// EchoConsumer returns every input byte unchanged after a fixed number of
// ticks.
type EchoConsumer struct {
	latency int64
	now     int64
	pending []pendingByte
}

func MakeEchoConsumer(latencyTicks int) *EchoConsumer {
	if latencyTicks < 1 {
		latencyTicks = 1
	}
	return &EchoConsumer{latency: int64(latencyTicks)}
}

func (c *EchoConsumer) Tick(inValid bool, inData byte) (bool, byte) {
	c.now++
	if inValid {
		c.pending = append(c.pending, pendingByte{due: c.now + c.latency - 1, data: inData})
	}
	if len(c.pending) > 0 && c.pending[0].due <= c.now {
		out := c.pending[0].data
		c.pending = c.pending[1:]
		return true, out
	}
	return false, 0
}

// OffsetConsumer adds a constant to every byte, with a one-tick latency.
// Handy for demonstrating that the round trip really went through the
// consumer and not through some accidental short circuit.
type OffsetConsumer struct {
	offset byte
	echo   *EchoConsumer
}

func MakeOffsetConsumer(offset byte) *OffsetConsumer {
	return &OffsetConsumer{offset: offset, echo: MakeEchoConsumer(1)}
}

func (c *OffsetConsumer) Tick(inValid bool, inData byte) (bool, byte) {
	valid, data := c.echo.Tick(inValid, inData)
	return valid, data + c.offset
}
