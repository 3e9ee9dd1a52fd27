package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var jsonLogs bool

var rootCmd = &cobra.Command{
	Use:   "composite",
	Short: "Call UI composite served to a browser host",
	PersistentPreRun: func(*cobra.Command, []string) {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		if !jsonLogs {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		}
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Write logs as JSON instead of console text")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(replayCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
