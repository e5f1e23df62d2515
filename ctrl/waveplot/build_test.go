package waveplot

import (
	"testing"

	"github.com/hulotte-project/owlink/sim/trace"
)

func TestBuildTimelineGroupsSignals(t *testing.T) {
	records := []trace.Record{
		{Tick: 0, Signal: "host_line", Value: "1"},
		{Tick: 100, Signal: "host_line", Value: "0"},
		{Tick: 968, Signal: "host_line", Value: "1"},
		{Tick: 8000, Signal: "host_rx_byte", Value: "41"},
	}
	p, err := BuildTimeline("test", records)
	if err != nil {
		t.Fatal(err)
	}
	if p.Title.Text != "test" {
		t.Errorf("unexpected title %q", p.Title.Text)
	}
	xmin, xmax := p.X.Min, p.X.Max
	if xmin > 0 || xmax < 8000 {
		t.Errorf("X range [%v, %v] does not cover the recording", xmin, xmax)
	}
}

func TestBuildTimelineRejectsEmpty(t *testing.T) {
	if _, err := BuildTimeline("test", nil); err == nil {
		t.Errorf("expected an error for an empty recording")
	}
}
