// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/katalvlaran/layopt/scenario"
)

func newValidateCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Check a scenario without solving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			p, err := sc.Problem()
			if err != nil {
				return err
			}
			if _, err := sc.Options(); err != nil {
				return err
			}
			if _, err := sc.RenderOptions(); err != nil {
				return err
			}

			start := len(p.ActiveIndices(p.InitialActivation()))
			root.logger.Debug("scenario valid", zap.String("path", args[0]))
			fmt.Fprintf(cmd.OutOrStdout(), "nodes: %d\nmembers: %d (%d initial)\nload cases: %d\n",
				p.NodeCount(), p.MemberCount(), start, p.LoadCaseCount())
			return nil
		},
	}
}
