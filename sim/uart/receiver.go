package uart

import "fmt"

// RxState is the receiver's timing-recovery state.
type RxState uint8

const (
	StateIdle RxState = iota
	StateStartCandidate
	StateWaitQuarter
	StateSampleWindow
	StateBitReceived
	StateWaitStop
	StateLastBitGuard
)

func (s RxState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateStartCandidate:
		return "START_CANDIDATE"
	case StateWaitQuarter:
		return "WAIT_QUARTER"
	case StateSampleWindow:
		return "SAMPLE_WINDOW"
	case StateBitReceived:
		return "BIT_RECEIVED"
	case StateWaitStop:
		return "WAIT_STOP"
	case StateLastBitGuard:
		return "LAST_BIT_GUARD"
	default:
		return fmt.Sprintf("[UNKNOWN=%d]", uint8(s))
	}
}

// Receiver recovers byte frames from the synchronized line sample: one start
// bit (low), eight data bits LSB-first, one stop bit (high), no parity.
//
// The receiver commits nine samples per frame, indexed 0 through 8. Window 0
// lands in the tail of the start bit; windows 1..8 land at the three-quarter
// point of each data bit. Each commit shifts into the 8-bit accumulator
// from the top, so the start-bit sample falls out naturally once all nine
// are in.
//
// Malformed frames are dropped by reverting to IDLE without emitting; there
// is no error output of any kind.
type Receiver struct {
	timing Timing

	state RxState
	// cnt counts down the remaining ticks of the current timing window.
	cnt int
	// bitIndex is the index of the sample window in flight, 0..8.
	bitIndex int
	// ref is the sample latched on entry to each window. It is retained for
	// the stricter variant that restarts a window when the line changes
	// before the commit point; this variant commits the final sample as-is
	// and never consults ref. Kept so the two variants stay byte-compatible
	// in state.
	ref bool
	// shift accumulates committed samples, LSB-first.
	shift uint8
	// lastBit is the most recently committed sample.
	lastBit bool
	// guardEmit permits LAST_BIT_GUARD to emit on clean expiry. It is set
	// when the guard absorbs the low tail of a final data bit, and clear
	// when the guard is absorbing a stop-bit violation.
	guardEmit bool

	byteValid bool
	data      uint8
}

func MakeReceiver(timing Timing) *Receiver {
	return &Receiver{
		timing: timing,
		state:  StateIdle,
		cnt:    timing.Quarter,
	}
}

// State exposes the current FSM state for tracing.
func (rx *Receiver) State() RxState {
	return rx.state
}

// ByteValid is high for exactly one tick per successfully received frame.
func (rx *Receiver) ByteValid() bool {
	return rx.byteValid
}

// Byte is the decoded frame contents; meaningful only while ByteValid is high.
func (rx *Receiver) Byte() uint8 {
	return rx.data
}

func (rx *Receiver) toIdle() {
	rx.state = StateIdle
	rx.cnt = rx.timing.Quarter
}

func (rx *Receiver) emit() {
	rx.byteValid = true
	rx.data = rx.shift
}

// Tick advances the receiver by one clock tick. sample must be the
// synchronized line level, never the raw line.
func (rx *Receiver) Tick(reset bool, sample bool) {
	rx.byteValid = false
	if reset {
		rx.toIdle()
		rx.bitIndex = 0
		rx.shift = 0
		return
	}

	switch rx.state {
	case StateIdle:
		rx.cnt = rx.timing.Quarter
		if !sample {
			rx.state = StateStartCandidate
		}

	case StateStartCandidate:
		if sample {
			// line recovered before the debounce window expired: noise
			rx.toIdle()
		} else {
			rx.cnt--
			if rx.cnt == 0 {
				// start bit confirmed; quarter-period reload aligns the
				// first sample window against the start edge
				rx.state = StateWaitQuarter
				rx.cnt = rx.timing.Quarter
				rx.bitIndex = 0
				rx.shift = 0
				rx.ref = sample
			}
		}

	case StateWaitQuarter:
		rx.cnt--
		if rx.cnt == 0 {
			rx.state = StateSampleWindow
			rx.cnt = rx.timing.Quarter
		}

	case StateSampleWindow:
		rx.cnt--
		if rx.cnt == 0 {
			// the committed value is whatever the line reads now; a change
			// since the ref latch does not restart the window
			rx.lastBit = sample
			rx.shift >>= 1
			if sample {
				rx.shift |= 0x80
			}
			rx.state = StateBitReceived
		}

	case StateBitReceived:
		if rx.bitIndex == 8 {
			if rx.lastBit {
				rx.state = StateWaitStop
				rx.cnt = rx.timing.Half
			} else {
				// final data bit is low, so the line stays low through the
				// remainder of its period; absorb that tail before judging
				// the stop level, or the stop check would trip on it
				rx.state = StateLastBitGuard
				rx.cnt = rx.timing.Half
				rx.guardEmit = true
			}
		} else {
			rx.bitIndex++
			rx.ref = sample
			rx.state = StateWaitQuarter
			// the BIT_RECEIVED tick is itself part of the bit period, so the
			// reload subtracts it; successive commits then sit exactly one
			// bit period apart, immune to quarter-marker truncation
			rx.cnt = rx.timing.TicksPerBit - rx.timing.Quarter - 1
		}

	case StateWaitStop:
		if !sample {
			// framing violation: absorb one more bit period and resume
			// scanning for a start edge, emitting nothing
			rx.state = StateLastBitGuard
			rx.cnt = rx.timing.TicksPerBit
			rx.guardEmit = false
		} else {
			rx.cnt--
			if rx.cnt == 0 {
				rx.emit()
				rx.toIdle()
			}
		}

	case StateLastBitGuard:
		rx.cnt--
		if rx.cnt == 0 {
			if rx.guardEmit && sample {
				rx.emit()
			}
			rx.toIdle()
		}

	default:
		// an unknown state recovers to IDLE instead of wedging the link
		rx.toIdle()
	}
}
