// Command atlaspack packs a directory of images into a square texture atlas
// plus a CSV sidecar index, or looks a placement back up from one already
// built.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

func main() {
	root := &cobra.Command{
		Use:           "atlaspack",
		Short:         "Pack images into a texture atlas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()
	}

	root.AddCommand(newPackCommand(), newLookupCommand())

	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("atlaspack failed")
		os.Exit(1)
	}
}
