package uart

// idleLevel is the resting state of the serial line. A frame begins when the
// line is pulled low for a start bit.
const idleLevel = true

// LineSampler re-times the externally driven line level into the model clock
// domain through a two-stage delay chain. Out is the raw line delayed by
// exactly two ticks; no timing-sensitive logic ever reads the raw line
// directly.
type LineSampler struct {
	// sample is the synchronized value the state machines consume for the
	// tick that Tick just completed.
	sample bool
	stage2 bool
	stage1 bool
}

func MakeLineSampler() *LineSampler {
	return &LineSampler{sample: idleLevel, stage2: idleLevel, stage1: idleLevel}
}

// Tick shifts the delay chain by one stage. With reset asserted, the whole
// chain is forced to the idle level instead.
func (s *LineSampler) Tick(reset bool, raw bool) {
	if reset {
		s.sample = idleLevel
		s.stage2 = idleLevel
		s.stage1 = idleLevel
		return
	}
	s.sample = s.stage2
	s.stage2 = s.stage1
	s.stage1 = raw
}

// Out is the synchronized sample: a level applied to raw at tick t is
// returned by Out after the Tick call for tick t+2.
func (s *LineSampler) Out() bool {
	return s.sample
}
