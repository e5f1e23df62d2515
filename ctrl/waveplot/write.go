package waveplot

import (
	"os"

	"github.com/hashicorp/go-multierror"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

func combineErrors(errors ...error) (err error) {
	for _, e := range errors {
		switch {
		case e == nil:
			// ignore
		case err == nil:
			err = e
		default:
			err = multierror.Append(err, e)
		}
	}
	return err
}

// SavePlot renders the plot into a new file at path, in the given image
// format.
func SavePlot(p *plot.Plot, width, height vg.Length, path string, format string) (err error) {
	w, err := p.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	output, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = combineErrors(err, output.Close())
	}()
	_, err = w.WriteTo(output)
	return err
}
