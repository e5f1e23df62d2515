// owlinkctl drives payloads through the simulated serial link and works with
// the traces it records: run a session from a TOML config, render a recorded
// CSV as a waveform image, or dump it as text.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/hulotte-project/owlink/ctrl/waveplot"
	"github.com/hulotte-project/owlink/sim/trace"
)

func initLogger() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Str("app", "owlinkctl").Logger()
}

func newRootCmd() *cobra.Command {
	log := initLogger()

	root := &cobra.Command{
		Use:           "owlinkctl",
		Short:         "owlinkctl drives and inspects simulated serial link sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd := &cobra.Command{
		Use:   "run <session.toml>",
		Short: "run a payload through the link per a TOML session config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSessionConfig(args[0])
			if err != nil {
				return err
			}
			return runSession(log, cfg)
		},
	}

	var plotWidth, plotHeight float64
	plotCmd := &cobra.Command{
		Use:   "plot <trace.csv> <output.png>",
		Short: "render a recorded trace as a waveform timeline image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := waveplot.BuildTimelineFromCSV(args[0])
			if err != nil {
				return err
			}
			err = waveplot.SavePlot(p, vg.Inch*vg.Length(plotWidth), vg.Inch*vg.Length(plotHeight), args[1], "png")
			if err != nil {
				return err
			}
			log.Info().Str("input", args[0]).Str("output", args[1]).Msg("rendered waveform")
			return nil
		},
	}
	plotCmd.Flags().Float64Var(&plotWidth, "width", 12, "image width in inches")
	plotCmd.Flags().Float64Var(&plotHeight, "height", 4, "image height in inches")

	dumpCmd := &cobra.Command{
		Use:   "dump <trace.csv>",
		Short: "print a recorded trace as text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := trace.DecodeRecording(args[0])
			if err != nil {
				return err
			}
			for _, rec := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12v %-20s %s\n", rec.Tick, rec.Signal, rec.Value)
			}
			return nil
		},
	}

	root.AddCommand(runCmd, plotCmd, dumpCmd)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log := initLogger()
		log.Error().Err(err).Msg("owlinkctl failed")
		os.Exit(1)
	}
}
