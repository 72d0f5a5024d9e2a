// Package cli provides the explore command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ivrit-ai/explore/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagVerbose   bool
	flagConfigDir string
)

var rootCmd = &cobra.Command{
	Use:          "explore",
	Short:        "Search and browse timestamped transcripts",
	SilenceUsage: true,
	Long: `explore indexes a directory of timestamped transcripts and searches them
by word, phrase, substring or regular expression. Every hit resolves to the
transcript segment it falls in, with the segment's start time.

Configuration lives in ~/.explore/config.toml.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "print debug and timing logs to stderr")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default ~/.explore)")
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
