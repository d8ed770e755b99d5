package cmd

import (
	"github.com/kebairia/fbm/internal/operations"
	"github.com/spf13/cobra"
)

var (
	restoreTargetDir string
	restoreSkipApps  bool
	restoreSkipSites bool
	restoreNewName   string
)

var restoreCmd = &cobra.Command{
	Use:   "restore <backup_path>",
	Short: "Restore a bench from a backup artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := operations.NewOperator(ConfigFile)
		if err != nil {
			return err
		}
		_, err = op.RestoreBench(cmd.Context(), args[0], operations.RestoreOptions{
			TargetDir: restoreTargetDir,
			SkipApps:  restoreSkipApps,
			SkipSites: restoreSkipSites,
			NewName:   restoreNewName,
		})
		return err
	},
}

func init() {
	restoreCmd.Flags().
		StringVarP(&restoreTargetDir, "target-dir", "t", ".", "target directory for the restored bench")
	restoreCmd.Flags().
		BoolVar(&restoreSkipApps, "skip-apps", false, "skip fetching apps")
	restoreCmd.Flags().
		BoolVar(&restoreSkipSites, "skip-sites", false, "skip restoring site data")
	restoreCmd.Flags().
		StringVar(&restoreNewName, "new-name", "", "restore the bench under a different name")
}
