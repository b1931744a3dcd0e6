package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gobamm/simulation"
)

func (a *app) meshCmd() *cobra.Command {
	var (
		model  string
		points map[string]int
	)
	cmd := &cobra.Command{
		Use:   "mesh",
		Short: "Show the mesh a model is solved on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := simulation.Config{Model: simulation.ModelConfig{Name: model}}
			if cmd.Flags().Changed("points") {
				cfg.Mesh.Points = map[string]int64{}
				for domain, n := range points {
					cfg.Mesh.Points[domain] = int64(n)
				}
			}
			sim, _, err := cfg.Build(simulation.WithLogger(a.logger))
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DOMAIN\tPOINTS\tMIN\tMAX")
			for _, domain := range sim.Mesh().Domains() {
				sub, _ := sim.Mesh().SubMesh(domain)
				fmt.Fprintf(tw, "%s\t%d\t%g\t%g\n", domain, sub.Npts, sub.Edges[0], sub.Edges[len(sub.Edges)-1])
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&model, "model", "reaction-diffusion", "model name")
	cmd.Flags().StringToIntVar(&points, "points", nil, "points per domain, e.g. separator=20")
	return cmd
}
