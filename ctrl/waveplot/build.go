package waveplot

import (
	"fmt"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/hulotte-project/owlink/sim/trace"
)

const laneHeight = vg.Length(14)

// BuildTimeline assembles a waveform plot from decoded trace records. Each
// distinct signal gets its own lane: "0"/"1" values plot as a square wave,
// anything else plots as a labeled event marker.
func BuildTimeline(title string, records []trace.Record) (*plot.Plot, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("waveplot: no records to plot")
	}

	transitions := map[string][]Transition{}
	events := map[string][]ByteEvent{}
	limit := int64(0)
	for _, rec := range records {
		tick := int64(rec.Tick)
		if tick > limit {
			limit = tick
		}
		switch rec.Value {
		case "0", "1":
			transitions[rec.Signal] = append(transitions[rec.Signal], Transition{
				Tick:  tick,
				Level: rec.Value == "1",
			})
		default:
			events[rec.Signal] = append(events[rec.Signal], ByteEvent{
				Tick:  tick,
				Label: rec.Value,
			})
		}
	}

	names := map[string]bool{}
	for name := range transitions {
		names[name] = true
	}
	for name := range events {
		names[name] = true
	}
	lanes := make([]string, 0, len(names))
	for name := range names {
		lanes = append(lanes, name)
	}
	sort.Strings(lanes)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Tick"

	ticks := make([]plot.Tick, len(lanes))
	// lane 0 at the top
	for i, name := range lanes {
		loc := float64(len(lanes) - 1 - i)
		p.Add(NewWaveLane(transitions[name], events[name], loc, limit, laneHeight))
		ticks[i] = plot.Tick{Value: loc, Label: name}
	}
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Tick.Length = 0

	return p, nil
}

// BuildTimelineFromCSV decodes a recording and plots it. The title carries
// the source path so a directory of rendered sessions stays identifiable.
func BuildTimelineFromCSV(path string) (*plot.Plot, error) {
	records, err := trace.DecodeRecording(path)
	if err != nil {
		return nil, err
	}
	return BuildTimeline("owlink session "+strconv.Quote(path), records)
}
