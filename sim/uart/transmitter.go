package uart

const (
	// frameBits is one start bit plus eight data bits; the stop level is
	// produced by the ones that refill the shift register.
	frameBits = 9
	// idleSentinel in remainingBits means no frame is in flight.
	idleSentinel = 12
	// postFrameReload is written after the final shift of a frame. Being at
	// or above the idle sentinel, it holds the serializer out of the idle
	// check until the next bit-period boundary, which guarantees a full bit
	// period of high line (the stop bit) before another byte can load.
	postFrameReload = 15
)

// Transmitter drains a bounded FIFO of bytes onto the output line, one frame
// per queued byte at the configured bit period. It has no state machine: the
// serializer is a 9-bit shift register, a remaining-bit countdown, and a
// bit-period down-counter. The line is driven by the least significant bit
// of the shift register at every tick, so an empty register full of ones
// holds the line at idle.
type Transmitter struct {
	timing Timing

	nearFullThreshold int
	dropOldestOnFull  bool
	predictiveFull    bool

	fifo byteFIFO

	// shift holds the frame in flight: start bit in bit 0 at load time,
	// then data LSB-first, with ones injected from the top as it drains.
	shift uint16
	// remainingBits counts the shifts left for the frame in flight, or
	// holds a sentinel at or above idleSentinel when none is.
	remainingBits int
	// bitCnt counts down the ticks to the next bit-period boundary.
	bitCnt int

	// Flags latched at the top of each tick, before the enqueue request is
	// admitted, so they reflect the state the producer acted on.
	enqRequested   bool
	emptyFlag      bool
	almostFullFlag bool
	fullFlag       bool
}

func MakeTransmitter(cfg Config) (*Transmitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tx := &Transmitter{
		timing:            cfg.DeriveTiming(),
		nearFullThreshold: cfg.NearFullThreshold,
		dropOldestOnFull:  cfg.DropOldestOnFull,
		predictiveFull:    cfg.PredictiveFullMode,
		fifo:              makeByteFIFO(cfg.FIFOCapacity),
	}
	tx.resetShiftState()
	tx.latchFlags()
	return tx, nil
}

func (tx *Transmitter) resetShiftState() {
	tx.shift = 0x1ff
	tx.remainingBits = idleSentinel
	tx.bitCnt = 0
}

// LineOut is the serial line level for the tick that Tick just completed.
func (tx *Transmitter) LineOut() bool {
	return tx.shift&1 != 0
}

// Empty reports a drained queue, as of the top of the last tick.
func (tx *Transmitter) Empty() bool {
	return tx.emptyFlag
}

// AlmostFull reports that occupancy has reached the near-full threshold,
// requesting upstream throttling before hard backpressure.
func (tx *Transmitter) AlmostFull() bool {
	return tx.almostFullFlag
}

// Full warns the producer that a write would be lost. In predictive mode it
// additionally asserts while an enqueue is in flight against the last free
// slot with a frame still draining, one tick before occupancy hits capacity.
func (tx *Transmitter) Full() bool {
	return tx.fullFlag
}

// QueueLen is the number of queued bytes not yet loaded for transmission.
func (tx *Transmitter) QueueLen() int {
	return tx.fifo.count
}

func (tx *Transmitter) latchFlags() {
	count := tx.fifo.count
	capacity := tx.fifo.capacity()
	tx.emptyFlag = count == 0
	tx.almostFullFlag = count >= tx.nearFullThreshold
	tx.fullFlag = count == capacity ||
		(tx.predictiveFull && tx.enqRequested && tx.remainingBits < idleSentinel && count == capacity-1)
}

// admit applies the overflow policy to one enqueue request. A rejected byte
// is lost silently; the producer is expected to poll Full before writing.
func (tx *Transmitter) admit(b byte) {
	if tx.fifo.full() {
		if !tx.dropOldestOnFull {
			return
		}
		tx.fifo.evictOldest()
	}
	tx.fifo.push(b)
}

// advance is the only mutator of the serializer and FIFO read side; it runs
// once per tick. Loads and shifts happen only on bit-period boundaries.
func (tx *Transmitter) advance() {
	if tx.bitCnt > 0 {
		tx.bitCnt--
		return
	}
	tx.bitCnt = tx.timing.TicksPerBit - 1

	if tx.remainingBits >= idleSentinel {
		if tx.fifo.count > 0 {
			// byte leaves the queue the moment its frame begins
			b := tx.fifo.pop()
			tx.shift = uint16(b) << 1
			tx.remainingBits = frameBits
		} else {
			tx.remainingBits = idleSentinel
		}
	} else {
		tx.shift = (tx.shift >> 1) | 0x100
		tx.remainingBits--
		if tx.remainingBits == 0 {
			tx.remainingBits = postFrameReload
		}
	}
}

// Tick advances the transmitter by one clock tick. enqValid requests
// admission of data into the queue; acceptance is never reported back, the
// flags are the only feedback channel. Reset clears the in-flight shift
// state but deliberately preserves the FIFO contents.
func (tx *Transmitter) Tick(reset bool, enqValid bool, data byte) {
	tx.enqRequested = enqValid
	tx.latchFlags()
	if enqValid {
		tx.admit(data)
	}
	if reset {
		tx.resetShiftState()
		return
	}
	tx.advance()
}
