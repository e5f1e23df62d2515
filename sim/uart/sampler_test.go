package uart

import "testing"

func TestSamplerDelaysByExactlyTwoTicks(t *testing.T) {
	s := MakeLineSampler()

	// an arbitrary wiggle, starting from the idle line
	input := []bool{true, false, false, true, false, true, true, false}
	var observed []bool
	for _, raw := range input {
		s.Tick(false, raw)
		observed = append(observed, s.Out())
	}

	for i, got := range observed {
		want := idleLevel
		if i >= 2 {
			want = input[i-2]
		}
		if got != want {
			t.Errorf("tick %d: sample=%v, want raw from two ticks earlier (%v)", i, got, want)
		}
	}
}

func TestSamplerResetForcesIdle(t *testing.T) {
	s := MakeLineSampler()
	for i := 0; i < 4; i++ {
		s.Tick(false, false)
	}
	if s.Out() != false {
		t.Fatalf("expected the low level to have propagated")
	}
	s.Tick(true, false)
	if s.Out() != idleLevel {
		t.Errorf("reset must force the synchronized sample to idle")
	}
	// the whole chain must be flushed, not just the output stage
	s.Tick(false, true)
	if s.Out() != idleLevel {
		t.Errorf("stage two should hold idle one tick after reset")
	}
	s.Tick(false, true)
	if s.Out() != idleLevel {
		t.Errorf("stage one should hold idle two ticks after reset")
	}
}
