// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type rootFlags struct {
	verbose bool
	quiet   bool
	timeout time.Duration
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:   "layopt",
		Short: "Adaptive ground-structure layout optimization",
		Long: `layopt finds minimum-volume truss layouts with the adaptive
member-adding scheme: solve the plastic LP over a small active set, admit the
most violated members of the ground structure, repeat until no member is
violated.

Scenarios are YAML files; see the scenario package for the format.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if f.quiet {
				f.logger = zap.NewNop()
				return nil
			}
			config := zap.NewProductionConfig()
			if f.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			f.logger, err = config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if f.logger != nil {
				_ = f.logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVarP(&f.quiet, "quiet", "q", false, "Disable logging")
	root.PersistentFlags().DurationVar(&f.timeout, "timeout", 0, "Abort the run after this long (0 = no limit)")

	root.AddCommand(newRunCmd(f))
	root.AddCommand(newValidateCmd(f))
	return root
}
