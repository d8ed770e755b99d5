package operations

import (
	"context"

	"github.com/kebairia/fbm/internal/archive"
)

// BackupBench backs up the bench at benchPath into outputDir and returns
// the artifact path.
func (op *Operator) BackupBench(ctx context.Context, benchPath, outputDir string, opts archive.Options) (string, error) {
	packager := archive.NewPackager(op.tc, op.rep)
	artifact, err := packager.PackBench(ctx, benchPath, outputDir, opts)
	if err != nil {
		return "", err
	}
	op.log.Info("bench backed up", "bench", benchPath, "artifact", artifact)
	return artifact, nil
}

// BackupAll backs up every valid bench under benchesRoot, continuing
// past per-bench failure, and returns the artifacts that succeeded.
func (op *Operator) BackupAll(ctx context.Context, benchesRoot, outputDir string, opts archive.Options) ([]string, error) {
	packager := archive.NewPackager(op.tc, op.rep)
	artifacts, err := packager.PackAll(ctx, benchesRoot, outputDir, opts)
	if err != nil {
		return nil, err
	}
	op.log.Info("bench backups finished", "succeeded", len(artifacts))
	return artifacts, nil
}
