// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/layopt/adaptive"
	"github.com/katalvlaran/layopt/internal/observability"
	"github.com/katalvlaran/layopt/render"
	"github.com/katalvlaran/layopt/scenario"
)

type runFlags struct {
	drawing     string
	metricsFile string
	threshold   float64
}

func newRunCmd(root *rootFlags) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Optimize a scenario and print the layout",
		Example: `  layopt run bridge.yaml
  layopt run bridge.yaml --drawing bridge.draw.yaml --metrics-file layopt.prom`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(cmd, root, f, args[0])
		},
	}
	cmd.Flags().StringVar(&f.drawing, "drawing", "", "Write the styled drawing as YAML to this file")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file")
	cmd.Flags().Float64Var(&f.threshold, "threshold", -1, "Override the render area threshold")
	return cmd
}

func runScenario(cmd *cobra.Command, root *rootFlags, f *runFlags, path string) error {
	sc, err := scenario.Load(path)
	if err != nil {
		return err
	}
	p, err := sc.Problem()
	if err != nil {
		return err
	}
	opts, err := sc.Options()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := observability.NewCollector(reg)
	if err != nil {
		return err
	}
	opts = append(opts, adaptive.WithLogger(root.logger), adaptive.WithObserver(metrics))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if root.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, root.timeout)
		defer cancel()
	}

	res, runErr := adaptive.Run(ctx, p, opts...)
	if res != nil {
		printResult(cmd.OutOrStdout(), res)
	}
	if runErr != nil {
		return runErr
	}
	if w := res.Warning(); w != nil {
		root.logger.Warn("layout did not converge", zap.Error(w))
	}

	if f.drawing != "" {
		ro, err := sc.RenderOptions()
		if err != nil {
			return err
		}
		if f.threshold >= 0 {
			ro.Threshold = f.threshold
		}
		d, err := render.Draw(p, res, ro)
		if err != nil {
			return err
		}
		if err := writeYAML(f.drawing, d); err != nil {
			return err
		}
	}
	if f.metricsFile != "" {
		if err := prometheus.WriteToTextfile(f.metricsFile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func printResult(w io.Writer, res *adaptive.Result) {
	fmt.Fprintf(w, "status: %s\n", res.Status)
	fmt.Fprintf(w, "iterations: %d\n", res.Iterations)
	fmt.Fprintf(w, "volume: %.6g\n", res.Volume)
	if len(res.Pending) > 0 {
		fmt.Fprintf(w, "pending: %v\n", res.Pending)
	}
	if !res.DualsRecovered {
		fmt.Fprintln(w, "duals: not recovered")
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "member\tnodes\tlength\tarea\tforces")
	for i, k := range res.MemberIndices {
		if res.Areas[i] == 0 {
			continue
		}
		m := res.Members[i]
		forces := make([]string, len(res.Forces))
		for c := range res.Forces {
			forces[c] = fmt.Sprintf("%.4g", res.Forces[c][i])
		}
		fmt.Fprintf(tw, "%d\t%d-%d\t%.4g\t%.4g\t%v\n", k, m.I, m.J, m.Length, res.Areas[i], forces)
	}
	_ = tw.Flush()
}

func writeYAML(path string, v any) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}
