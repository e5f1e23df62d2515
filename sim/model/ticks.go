package model

import (
	"fmt"
	"time"
)

// Ticks counts discrete steps of the synchronous simulation clock. Every
// component in the model advances exactly once per tick; there is no finer
// notion of time.
type Ticks int64

func (t Ticks) String() string {
	if t.Exists() {
		return fmt.Sprintf("[tick %d]", int64(t))
	} else {
		return "[never]"
	}
}

func (t Ticks) Exists() bool {
	return t >= 0
}

func (t Ticks) AtOrAfter(t2 Ticks) bool {
	if !t.Exists() || !t2.Exists() {
		panic("ticks don't exist")
	}
	return t >= t2
}

func (t Ticks) After(t2 Ticks) bool {
	if !t.Exists() || !t2.Exists() {
		panic("ticks don't exist")
	}
	return t > t2
}

func (t Ticks) AtOrBefore(t2 Ticks) bool {
	if !t.Exists() || !t2.Exists() {
		panic("ticks don't exist")
	}
	return t <= t2
}

func (t Ticks) Before(t2 Ticks) bool {
	if !t.Exists() || !t2.Exists() {
		panic("ticks don't exist")
	}
	return t < t2
}

func (t Ticks) Add(n int64) Ticks {
	if !t.Exists() {
		return t
	}
	t2 := t + Ticks(n)
	if (n > 0 && t2 < t) || (n < 0 && t2 > t) {
		panic("ticks wrapped around")
	}
	return t2
}

// DurationAt converts a tick count into wall-clock time for a model clocked
// at clockHz ticks per second.
func (t Ticks) DurationAt(clockHz uint64) time.Duration {
	if !t.Exists() {
		panic("ticks don't exist")
	}
	if clockHz == 0 {
		panic("clock frequency of zero")
	}
	return time.Duration(float64(t) / float64(clockHz) * float64(time.Second))
}

const Never Ticks = -1
const TickZero Ticks = 0
