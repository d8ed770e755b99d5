package cmd

import (
	"github.com/kebairia/fbm/internal/operations"
	"github.com/spf13/cobra"
)

var createInfoFile string

var createCmd = &cobra.Command{
	Use:   "create <bench_path>",
	Short: "Create a new bench, optionally from a bench info file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := operations.NewOperator(ConfigFile)
		if err != nil {
			return err
		}
		_, err = op.CreateBench(cmd.Context(), args[0], createInfoFile)
		return err
	},
}

func init() {
	createCmd.Flags().
		StringVar(&createInfoFile, "info-file", "", "bench info JSON to replay apps and sites from")
}
