package cmd

import (
	"os"

	"github.com/kebairia/fbm/internal/logger"
	"github.com/spf13/cobra"
)

// ConfigFile is the path to the YAML configuration.
var (
	ConfigFile string
	// rootCmd is the base command for fbm.
	rootCmd = &cobra.Command{
		Use:   "fbm",
		Short: "Backup and restore Frappe benches",
		Long: `fbm captures a bench's apps and sites into a self-describing
backup artifact and can later reconstruct an equivalent bench from it.`,
	}
)

// Execute runs the root command.
func Execute() {
	log, err := logger.Init()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		log.Error("command failed", "error", err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().
		StringVarP(&ConfigFile, "config", "c", "", "path to YAML config file")
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(createCmd)
}
