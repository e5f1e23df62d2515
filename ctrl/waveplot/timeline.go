// Package waveplot renders recorded link traces as waveform timelines: one
// lane per signal, square-wave levels for wires, labeled markers for byte
// events.
package waveplot

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Transition is one level change of a single-bit signal.
type Transition struct {
	Tick  int64
	Level bool
}

// ByteEvent is a one-tick event carrying a byte, such as a decoded frame.
type ByteEvent struct {
	Tick  int64
	Label string
}

// WaveLane plots one signal as a square wave (and/or its events) on a
// horizontal lane of the timeline.
type WaveLane struct {
	Transitions []Transition
	Events      []ByteEvent
	// Location is the lane's vertical center in data coordinates.
	Location float64
	// Height is the peak-to-peak drawing height of the wave.
	Height vg.Length
	// Limit is the rightmost tick of the plot, so the final level extends
	// to the edge instead of stopping at its last transition.
	Limit int64

	LineStyle  draw.LineStyle
	EventGlyph draw.GlyphStyle
	TextStyle  draw.TextStyle
}

var _ plot.Plotter = &WaveLane{}

func NewWaveLane(transitions []Transition, events []ByteEvent, loc float64, limit int64, height vg.Length) *WaveLane {
	return &WaveLane{
		Transitions: transitions,
		Events:      events,
		Location:    loc,
		Height:      height,
		Limit:       limit,
		LineStyle:   plotter.DefaultLineStyle,
		EventGlyph: draw.GlyphStyle{
			Color:  color.RGBA{192, 64, 64, 255},
			Radius: vg.Points(3),
			Shape:  draw.PyramidGlyph{},
		},
		TextStyle: text.Style{
			Font:    font.From(plotter.DefaultFont, plotter.DefaultFontSize),
			XAlign:  draw.XCenter,
			YAlign:  draw.YBottom,
			Handler: plot.DefaultTextHandler,
		},
	}
}

func (w *WaveLane) levelY(trY func(float64) vg.Length, level bool) vg.Length {
	y := trY(w.Location)
	if level {
		return y + w.Height/2
	}
	return y - w.Height/2
}

func (w *WaveLane) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	if !c.ContainsY(trY(w.Location)) {
		return
	}

	for i, tr := range w.Transitions {
		end := w.Limit
		if i+1 < len(w.Transitions) {
			end = w.Transitions[i+1].Tick
		}
		y := w.levelY(trY, tr.Level)
		seg := []vg.Point{
			{X: trX(float64(tr.Tick)), Y: y},
			{X: trX(float64(end)), Y: y},
		}
		c.StrokeLines(w.LineStyle, c.ClipLinesX(seg)...)
		if i+1 < len(w.Transitions) {
			edge := []vg.Point{
				{X: trX(float64(end)), Y: y},
				{X: trX(float64(end)), Y: w.levelY(trY, w.Transitions[i+1].Level)},
			}
			c.StrokeLines(w.LineStyle, c.ClipLinesX(edge)...)
		}
	}

	for _, ev := range w.Events {
		pt := vg.Point{X: trX(float64(ev.Tick)), Y: trY(w.Location)}
		c.DrawGlyph(w.EventGlyph, pt)
		if ev.Label != "" {
			c.FillText(w.TextStyle, vg.Point{X: pt.X, Y: pt.Y + w.Height/2}, ev.Label)
		}
	}
}

type xyconv WaveLane

func (w *xyconv) Len() int {
	return len(w.Transitions) + len(w.Events) + 1
}

func (w *xyconv) XY(i int) (x, y float64) {
	if i < len(w.Transitions) {
		return float64(w.Transitions[i].Tick), w.Location
	}
	i -= len(w.Transitions)
	if i < len(w.Events) {
		return float64(w.Events[i].Tick), w.Location
	}
	return float64(w.Limit), w.Location
}

func (w *WaveLane) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax, ymin, ymax = plotter.XYRange((*xyconv)(w))
	// leave headroom for the wave body above and below the lane center
	return xmin, xmax, ymin - 1, ymax + 1
}
