// Package operations wires the components together behind the commands:
// backup (single and all), restore, and create.
package operations

import (
	"context"

	"github.com/kebairia/fbm/internal/archive"
	"github.com/kebairia/fbm/internal/config"
	"github.com/kebairia/fbm/internal/logger"
	"github.com/kebairia/fbm/internal/report"
	"github.com/kebairia/fbm/internal/toolchain"
	"github.com/kebairia/fbm/internal/vault"
)

// Operator holds the shared collaborators of all top-level operations.
type Operator struct {
	cfg config.Config
	tc  toolchain.Toolchain
	rep report.Reporter
	log logger.Logger
}

// NewOperator loads the YAML config at configPath and builds an Operator
// around the external bench toolchain.
func NewOperator(configPath string) (*Operator, error) {
	var cfg config.Config
	if err := cfg.Load(configPath); err != nil {
		return nil, err
	}

	log := logger.Global()

	return &Operator{
		cfg: cfg,
		tc:  toolchain.New(cfg.Bench.Command),
		rep: report.NewLogReporter(log),
		log: log,
	}, nil
}

// OutputDirectory returns the configured backup output directory.
func (op *Operator) OutputDirectory() string {
	return op.cfg.Backup.OutputDirectory
}

// BenchesDirectory returns the configured multi-bench root, if any.
func (op *Operator) BenchesDirectory() string {
	return op.cfg.Bench.BenchesDirectory
}

// BackupOptions returns packaging options seeded from the configuration.
// Command-line flags override individual fields.
func (op *Operator) BackupOptions() archive.Options {
	return archive.Options{
		Compress:     op.cfg.Backup.Compress,
		ExcludeFiles: op.cfg.Backup.ExcludeFiles,
	}
}

// dbRootPassword fetches the database root credential from Vault when a
// Vault address is configured. Missing configuration or lookup failure
// degrades to an empty password; the external restore command then
// relies on its own credential handling.
func (op *Operator) dbRootPassword(ctx context.Context) string {
	if op.cfg.Vault.Address == "" || op.cfg.Vault.DBRolePath == "" {
		return ""
	}

	client, err := vault.NewClient(ctx,
		vault.WithAddress(op.cfg.Vault.Address),
		vault.WithAppRole(op.cfg.Vault.RoleID, op.cfg.Vault.ApproleName),
	)
	if err != nil {
		op.log.Warn("vault client init failed, restoring without credential", "error", err.Error())
		return ""
	}
	creds, err := client.GetCredentials(ctx, op.cfg.Vault.DBRolePath)
	if err != nil {
		op.log.Warn("vault credential lookup failed, restoring without credential", "error", err.Error())
		return ""
	}
	return creds.Password
}
