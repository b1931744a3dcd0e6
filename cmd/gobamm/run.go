package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/njchilds90/gobamm"
	"github.com/njchilds90/gobamm/simulation"
)

type runOptions struct {
	model     string
	method    string
	solver    string
	tolerance float64
	points    map[string]int
	output    string
	format    string
	variables []string
	stop      float64
	times     int64
}

func (a *app) runCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run [run.toml]",
		Short: "Solve a model and write the results as CSV",
		Long: `Solve a model and write one CSV row per output time. Settings come from
the run file when one is given; flags override it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := simulation.Config{Model: simulation.ModelConfig{Name: "reaction-diffusion"}}
			if len(args) == 1 {
				var err error
				if cfg, err = simulation.LoadConfig(args[0]); err != nil {
					return err
				}
			}
			opts.apply(cmd, &cfg)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return a.run(ctx, cfg)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.model, "model", "", "model name (default reaction-diffusion)")
	f.StringVar(&opts.method, "method", "", "spatial method (finite-volume|finite-element)")
	f.StringVar(&opts.solver, "solver", "", "integrator (rk45|bdf1)")
	f.Float64Var(&opts.tolerance, "tol", 0, "integrator tolerance")
	f.StringToIntVar(&opts.points, "points", nil, "points per domain, e.g. separator=20")
	f.StringVarP(&opts.output, "output", "o", "", "CSV path (default stdout)")
	f.StringVar(&opts.format, "format", "", "output format (csv|json|msgpack)")
	f.StringSliceVar(&opts.variables, "vars", nil, "variables to write (default the whole state)")
	f.Float64Var(&opts.stop, "stop", 0, "final time")
	f.Int64Var(&opts.times, "times", 0, "number of output times")
	return cmd
}

// apply copies the flags that were set onto cfg.
func (o *runOptions) apply(cmd *cobra.Command, cfg *simulation.Config) {
	changed := cmd.Flags().Changed
	if changed("model") {
		cfg.Model.Name = o.model
	}
	if changed("method") {
		cfg.Mesh.Method = o.method
	}
	if changed("solver") {
		cfg.Solver.Method = o.solver
	}
	if changed("tol") {
		cfg.Solver.Tolerance = o.tolerance
	}
	if changed("points") {
		if cfg.Mesh.Points == nil {
			cfg.Mesh.Points = map[string]int64{}
		}
		for domain, n := range o.points {
			cfg.Mesh.Points[domain] = int64(n)
		}
	}
	if changed("output") {
		cfg.Output.Path = o.output
	}
	if changed("format") {
		cfg.Output.Format = o.format
	}
	if changed("vars") {
		cfg.Output.Variables = o.variables
	}
	if changed("stop") {
		cfg.Output.Stop = o.stop
	}
	if changed("times") {
		cfg.Output.Times = o.times
	}
}

func (a *app) run(ctx context.Context, cfg simulation.Config) error {
	sim, times, err := cfg.Build(simulation.WithName(cfg.Model.Name), simulation.WithLogger(a.logger))
	if err != nil {
		return err
	}
	res, err := sim.Run(ctx, times)
	if err != nil {
		return err
	}

	var w io.Writer = a.stdout
	if cfg.Output.Path != "" {
		f, err := os.Create(cfg.Output.Path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	if err := write(w, res, cfg.Output); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	green := color.New(color.FgGreen, color.Bold)
	green.Fprint(a.stderr, "solved ")
	fmt.Fprintf(a.stderr, "%s (%s, %d unknowns) in %s, stopped at %s\n",
		sim, sim.Solver().Method(), res.Discretised.Size(), simulation.Format(res.Elapsed.Seconds()), res.Termination)
	return nil
}

func write(w io.Writer, res *simulation.Result, out simulation.OutputConfig) error {
	switch out.Format {
	case "", "csv":
		return res.WriteCSV(w, out.Variables...)
	case "json", "msgpack":
		snap, err := res.Snapshot(out.Variables...)
		if err != nil {
			return err
		}
		if out.Format == "msgpack" {
			return snap.WriteMsgpack(w)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	return fmt.Errorf("%w: unknown output format %q", gobamm.ErrConfiguration, out.Format)
}
