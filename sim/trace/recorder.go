// Package trace records per-tick signal activity from a driven simulation,
// either as a CSV of signal changes or as a value change dump (VCD) that
// standard waveform viewers can open.
package trace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/hulotte-project/owlink/sim/model"
)

var csvHeader = []string{"Tick", "Signal", "Value"}

// Recorder writes signal changes to a CSV file. Bit signals are deduplicated
// (a row appears only when the level changes); event signals such as decoded
// bytes are written every time they fire.
type Recorder struct {
	output   *csv.Writer
	file     *os.File
	lastBit  map[string]bool
	firstBit map[string]bool
}

// MakeNullRecorder discards everything; handy for making recording optional
// without branching at every call site.
func MakeNullRecorder() *Recorder {
	return &Recorder{}
}

func MakeRecorder(path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	err = w.Write(csvHeader)
	w.Flush()
	if err == nil {
		err = w.Error()
	}
	if err != nil {
		return nil, multierror.Append(err, f.Close())
	}
	return &Recorder{
		output:   w,
		file:     f,
		lastBit:  map[string]bool{},
		firstBit: map[string]bool{},
	}, nil
}

func (r *Recorder) IsRecording() bool {
	return r.output != nil
}

func (r *Recorder) write(tick model.Ticks, signal string, value string) error {
	if signal == "" {
		panic("invalid empty signal name")
	}
	if r.output == nil {
		// not recording; discard
		return nil
	}
	err := r.output.Write([]string{
		strconv.FormatInt(int64(tick), 10),
		signal,
		value,
	})
	if err == nil {
		err = r.output.Error()
	}
	return err
}

// RecordBit records a level change on a single-bit signal. Repeated writes
// of an unchanged level are suppressed.
func (r *Recorder) RecordBit(tick model.Ticks, signal string, level bool) error {
	if r.output == nil {
		return nil
	}
	if !r.firstBit[signal] {
		r.firstBit[signal] = true
	} else if r.lastBit[signal] == level {
		return nil
	}
	r.lastBit[signal] = level
	value := "0"
	if level {
		value = "1"
	}
	return r.write(tick, signal, value)
}

// RecordByte records a byte-valued event, such as a decoded frame.
func (r *Recorder) RecordByte(tick model.Ticks, signal string, data byte) error {
	return r.write(tick, signal, fmt.Sprintf("%02x", data))
}

func (r *Recorder) Close() (re error) {
	if r.output == nil {
		return nil
	}
	r.output.Flush()
	if err := r.output.Error(); err != nil {
		re = multierror.Append(re, err)
	}
	if err := r.file.Close(); err != nil {
		re = multierror.Append(re, err)
	}
	r.output = nil
	return re
}

// Record is one decoded row of a recording.
type Record struct {
	Tick   model.Ticks
	Signal string
	Value  string
}

func DecodeRecording(path string) (records []Record, re error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			re = multierror.Append(re, err)
		}
	}()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, errors.New("no header found")
	}
	if len(rows[0]) != 3 || rows[0][0] != csvHeader[0] || rows[0][1] != csvHeader[1] || rows[0][2] != csvHeader[2] {
		return nil, fmt.Errorf("invalid header: %v", rows[0])
	}
	lastTick := model.TickZero
	for _, row := range rows[1:] {
		if len(row) != 3 {
			return nil, fmt.Errorf("invalid record: %v", row)
		}
		tickRaw, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, err
		}
		tick := model.Ticks(tickRaw)
		if !tick.Exists() || tick.Before(lastTick) {
			return nil, fmt.Errorf("non-monotonic or invalid tick: %v", row[0])
		}
		lastTick = tick
		if row[1] == "" {
			return nil, errors.New("invalid empty signal name")
		}
		records = append(records, Record{Tick: tick, Signal: row[1], Value: row[2]})
	}
	return records, nil
}
