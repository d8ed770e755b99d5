package operations

import (
	"context"

	"github.com/kebairia/fbm/internal/archive"
	"github.com/kebairia/fbm/internal/restore"
)

// RestoreOptions controls a full bench restore.
type RestoreOptions struct {
	TargetDir string
	SkipApps  bool
	SkipSites bool
	NewName   string
}

// RestoreBench replays a backup artifact into a reconstructed bench and
// returns the bench path. The extraction directory is always released,
// even when individual site restores fail.
func (op *Operator) RestoreBench(ctx context.Context, backupPath string, opts RestoreOptions) (string, error) {
	desc, unpackedDir, cleanup, err := archive.Unpack(backupPath)
	if err != nil {
		return "", err
	}
	defer cleanup()

	reconstructor := restore.NewReconstructor(op.tc, op.rep, op.cfg.Bench.DefaultPython, op.cfg.Bench.FrappeBranch)
	benchPath, err := reconstructor.Reconstruct(ctx, desc, opts.TargetDir, restore.Options{
		SkipApps: opts.SkipApps,
		NewName:  opts.NewName,
	})
	if err != nil {
		return "", err
	}

	if !opts.SkipSites {
		restorer := restore.NewSiteRestorer(op.tc, op.rep, op.dbRootPassword(ctx))
		for _, site := range desc.Sites {
			op.rep.ItemStart("site restore", site.Name)
			ok := restorer.RestoreSite(ctx, site.Name, unpackedDir, benchPath)
			op.rep.ItemDone("site restore", site.Name, ok)
		}
	}

	op.log.Info("bench restored", "bench", benchPath)
	return benchPath, nil
}
