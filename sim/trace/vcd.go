package trace

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/hulotte-project/owlink/sim/model"
)

// VCDSignal declares one variable of a dump: single-bit wires for line
// levels, 8-bit vectors for decoded bytes.
type VCDSignal struct {
	Name  string
	Width int
}

// VCDWriter emits a minimal value change dump: enough of the format for
// GTKWave and friends to display the link's waveforms next to the traces the
// original hardware flow produced.
type VCDWriter struct {
	w      *bufio.Writer
	closer io.Closer

	ids      map[string]string
	widths   map[string]int
	lastTick model.Ticks
	tickOpen bool
	lastBit  map[string]bool
	seenBit  map[string]bool
}

const nsPerSecond = 1000000000

// identifier codes start at '!' (0x21); the printable ASCII range is far
// larger than the handful of signals a link session records
func vcdID(index int) string {
	return string(rune('!' + index))
}

// MakeVCDWriter writes the header and variable declarations immediately.
// clockHz must divide one nanosecond evenly into the timescale.
func MakeVCDWriter(out io.Writer, clockHz uint64, signals []VCDSignal) (*VCDWriter, error) {
	if clockHz == 0 || nsPerSecond%clockHz != 0 {
		return nil, fmt.Errorf("trace: clock %d Hz has no whole-nanosecond tick period", clockHz)
	}
	if len(signals) == 0 {
		return nil, fmt.Errorf("trace: a dump needs at least one signal")
	}
	v := &VCDWriter{
		w:       bufio.NewWriter(out),
		ids:     map[string]string{},
		widths:  map[string]int{},
		lastBit: map[string]bool{},
		seenBit: map[string]bool{},
	}
	if c, ok := out.(io.Closer); ok {
		v.closer = c
	}

	fmt.Fprintf(v.w, "$timescale %dns $end\n", nsPerSecond/clockHz)
	fmt.Fprintf(v.w, "$scope module owlink $end\n")
	for i, sig := range signals {
		if sig.Width != 1 && sig.Width != 8 {
			return nil, fmt.Errorf("trace: unsupported signal width %d for %q", sig.Width, sig.Name)
		}
		if _, dup := v.ids[sig.Name]; dup {
			return nil, fmt.Errorf("trace: duplicate signal %q", sig.Name)
		}
		v.ids[sig.Name] = vcdID(i)
		v.widths[sig.Name] = sig.Width
		fmt.Fprintf(v.w, "$var wire %d %s %s $end\n", sig.Width, v.ids[sig.Name], sig.Name)
	}
	fmt.Fprintf(v.w, "$upscope $end\n$enddefinitions $end\n")
	return v, v.w.Flush()
}

func (v *VCDWriter) stamp(tick model.Ticks) {
	if !v.tickOpen || tick.After(v.lastTick) {
		fmt.Fprintf(v.w, "#%d\n", int64(tick))
		v.lastTick = tick
		v.tickOpen = true
	}
}

func (v *VCDWriter) lookup(signal string, width int) (string, error) {
	id, ok := v.ids[signal]
	if !ok {
		return "", fmt.Errorf("trace: undeclared signal %q", signal)
	}
	if v.widths[signal] != width {
		return "", fmt.Errorf("trace: signal %q has width %d, not %d", signal, v.widths[signal], width)
	}
	return id, nil
}

// ChangeBit records a level on a wire; unchanged levels are suppressed.
func (v *VCDWriter) ChangeBit(tick model.Ticks, signal string, level bool) error {
	id, err := v.lookup(signal, 1)
	if err != nil {
		return err
	}
	if v.seenBit[signal] && v.lastBit[signal] == level {
		return nil
	}
	v.seenBit[signal] = true
	v.lastBit[signal] = level
	v.stamp(tick)
	value := "0"
	if level {
		value = "1"
	}
	_, err = fmt.Fprintf(v.w, "%s%s\n", value, id)
	return err
}

// ChangeByte records an 8-bit vector value.
func (v *VCDWriter) ChangeByte(tick model.Ticks, signal string, data byte) error {
	id, err := v.lookup(signal, 8)
	if err != nil {
		return err
	}
	v.stamp(tick)
	_, err = fmt.Fprintf(v.w, "b%08b %s\n", data, id)
	return err
}

// SignalNames lists the declared signals in a stable order.
func (v *VCDWriter) SignalNames() []string {
	names := make([]string, 0, len(v.ids))
	for name := range v.ids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (v *VCDWriter) Close() (re error) {
	if err := v.w.Flush(); err != nil {
		re = multierror.Append(re, err)
	}
	if v.closer != nil {
		if err := v.closer.Close(); err != nil {
			re = multierror.Append(re, err)
		}
	}
	return re
}
