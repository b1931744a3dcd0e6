package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gobamm/models"
	"github.com/njchilds90/gobamm/parameters"
)

func (a *app) paramsCmd() *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "params [file]",
		Short: "List a parameter table",
		Long:  `List the parameters in a CSV, YAML or TOML file, or the defaults of a model.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var (
				p   *parameters.Values
				err error
			)
			if len(args) == 1 {
				p, err = parameters.Load(args[0], parameters.WithFunctions(models.Functions()), parameters.WithLogger(a.logger))
			} else {
				var m *models.Model
				if m, err = models.Get(model); err != nil {
					return err
				}
				p, err = m.Defaults.Parameters(parameters.WithLogger(a.logger))
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tVALUE")
			for _, name := range p.Names() {
				e, err := p.Get(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\n", name, e)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&model, "model", "reaction-diffusion", "model whose defaults to list")
	return cmd
}
