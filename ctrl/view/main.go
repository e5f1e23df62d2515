// view opens a recorded link trace in an interactive waveform window. Drag
// across the top bar to zoom a tick range, right-click to zoom out, press E
// to export the current image, Q or escape to quit.
package main

import (
	"log"
	"os"

	"github.com/hulotte-project/owlink/ctrl/waveplot"
)

func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		log.Fatalf("usage: %s <trace.csv> [export-dir]", os.Args[0])
	}
	exportDir := ""
	if len(os.Args) == 3 {
		exportDir = os.Args[2]
	}
	p, err := waveplot.BuildTimelineFromCSV(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	if err := DisplayWaveform(p, exportDir); err != nil {
		log.Fatal(err)
	}
}
