package main

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/njchilds90/gobamm/solver"
)

const version = "0.1.0"

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version and available solvers",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			yellow := color.New(color.FgYellow, color.Bold)
			yellow.Fprint(a.stdout, "gobamm "+version)
			fmt.Fprintf(a.stdout, " (%s %s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			fmt.Fprintf(a.stdout, "solvers: %v\n", solver.Backends())
			return nil
		},
	}
}
