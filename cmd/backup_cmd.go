package cmd

import (
	"errors"

	"github.com/kebairia/fbm/internal/archive"
	"github.com/kebairia/fbm/internal/operations"
	"github.com/spf13/cobra"
)

var (
	backupOutput       string
	backupNoCompress   bool
	backupFolder       string
	backupExcludeFiles bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Backup one bench or every bench in a folder",
}

var backupSingleCmd = &cobra.Command{
	Use:   "single <bench_path>",
	Short: "Backup a single bench",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := operations.NewOperator(ConfigFile)
		if err != nil {
			return err
		}
		_, err = op.BackupBench(cmd.Context(), args[0], backupOutputDir(op), backupOptions(cmd, op))
		return err
	},
}

var backupAllCmd = &cobra.Command{
	Use:   "all [benches_folder]",
	Short: "Backup every valid bench under a folder",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := operations.NewOperator(ConfigFile)
		if err != nil {
			return err
		}
		benchesRoot := op.BenchesDirectory()
		if len(args) > 0 {
			benchesRoot = args[0]
		}
		if benchesRoot == "" {
			return errors.New("no benches folder given and bench.benches_directory is not configured")
		}
		_, err = op.BackupAll(cmd.Context(), benchesRoot, backupOutputDir(op), backupOptions(cmd, op))
		return err
	},
}

// backupOutputDir prefers the --output flag over the configured directory.
func backupOutputDir(op *operations.Operator) string {
	if backupOutput != "" {
		return backupOutput
	}
	return op.OutputDirectory()
}

// backupOptions starts from the configured defaults and applies only the
// flags that were set on the command line.
func backupOptions(cmd *cobra.Command, op *operations.Operator) archive.Options {
	opts := op.BackupOptions()
	if cmd.Flags().Changed("no-compress") {
		opts.Compress = !backupNoCompress
	}
	if cmd.Flags().Changed("exclude-files") {
		opts.ExcludeFiles = backupExcludeFiles
	}
	opts.BackupFolder = backupFolder
	return opts
}

func init() {
	backupCmd.PersistentFlags().
		StringVarP(&backupOutput, "output", "o", "", "output directory for backup files")
	backupCmd.PersistentFlags().
		BoolVar(&backupNoCompress, "no-compress", false, "do not compress the backup")
	backupCmd.PersistentFlags().
		StringVar(&backupFolder, "backup-folder", "", "use this folder instead of a timestamped one")
	backupCmd.PersistentFlags().
		BoolVar(&backupExcludeFiles, "exclude-files", false, "capture databases only, skip file stores")

	backupCmd.AddCommand(backupSingleCmd)
	backupCmd.AddCommand(backupAllCmd)
}
