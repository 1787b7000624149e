package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "cityenvelope",
		Short:        "Reconstruct LOD0/LOD1 building envelopes from GeoJSON footprints",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(buildingsCmd())
	rootCmd.AddCommand(sceneCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [project-path]",
		Short: "Import the project's feature collection and report what was built",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runImport(args[0])
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Validate an import profile without importing",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
}

func buildingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buildings [project-path]",
		Short: "List the imported buildings with their derived quantities",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runBuildings(args[0])
		},
	}
}

func sceneCmd() *cobra.Command {
	var surfaces bool

	cmd := &cobra.Command{
		Use:   "scene [project-path]",
		Short: "Import the project and write its scene graph as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runScene(args[0], surfaces)
		},
	}

	cmd.Flags().BoolVar(&surfaces, "surfaces", false, "include one entity per building surface")
	return cmd
}

func planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan [project-path]",
		Short: "Import the project and write its top-down plan as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runPlan(args[0])
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [project-path]",
		Short: "Serve the imported district over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), args[0], addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides the profile)")
	return cmd
}
