package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kebairia/fbm/internal/bench"
	"github.com/kebairia/fbm/internal/report"
	"github.com/kebairia/fbm/internal/toolchain"
)

const backupTimestampFormat = "20060102_150405"

// Options controls how a bench is packaged.
type Options struct {
	// Compress produces a single .tar.gz artifact and removes the
	// uncompressed staging directory.
	Compress bool
	// ExcludeFiles captures databases only, omitting file stores.
	ExcludeFiles bool
	// BackupFolder overrides the timestamp-derived staging directory.
	BackupFolder string
}

// Packager lays out self-describing backup artifacts for benches.
type Packager struct {
	insp *bench.Inspector
	tc   toolchain.Toolchain
	rep  report.Reporter
}

func NewPackager(tc toolchain.Toolchain, rep report.Reporter) *Packager {
	return &Packager{
		insp: bench.NewInspector(tc, rep),
		tc:   tc,
		rep:  rep,
	}
}

// PackBench backs up a single bench into outputDir and returns the path
// of the produced artifact (directory, or archive when compressing).
func (p *Packager) PackBench(ctx context.Context, benchPath, outputDir string, opts Options) (string, error) {
	desc, err := p.insp.Inspect(ctx, benchPath)
	if err != nil {
		return "", err
	}

	backupName := fmt.Sprintf("%s_%s", desc.Name, time.Now().Format(backupTimestampFormat))
	backupDir := opts.BackupFolder
	if backupDir == "" {
		backupDir = filepath.Join(outputDir, backupName)
	}
	// The capture destination is handed to a subprocess whose cwd is the
	// bench, so it must not depend on this process's cwd.
	backupDir, err = filepath.Abs(backupDir)
	if err != nil {
		return "", fmt.Errorf("resolve backup directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(backupDir, bench.SitesBackupDirName), 0o755); err != nil {
		return "", fmt.Errorf("create backup directory %q: %w", backupDir, err)
	}

	// Pass 1: a readable manifest exists even if capture crashes midway.
	if err := desc.Write(backupDir); err != nil {
		return "", err
	}

	for i := range desc.Sites {
		desc.Sites[i].BackupPaths = p.captureSite(ctx, benchPath, backupDir, desc.Sites[i].Name, opts)
	}

	// Pass 2: rewrite with the completed backup paths.
	if err := desc.Write(backupDir); err != nil {
		return "", err
	}

	if !opts.Compress {
		return backupDir, nil
	}

	archivePath := backupDir + ".tar.gz"
	if err := createTarGz(backupDir, archivePath); err != nil {
		return "", fmt.Errorf("compress backup %q: %w", backupDir, err)
	}
	if err := os.RemoveAll(backupDir); err != nil {
		return "", fmt.Errorf("remove staging directory %q: %w", backupDir, err)
	}
	return archivePath, nil
}

// captureSite runs the external per-site backup into its own capture
// subdirectory. Failure leaves the paths empty and never aborts the
// remaining sites.
func (p *Packager) captureSite(ctx context.Context, benchPath, backupDir, site string, opts Options) *bench.BackupPaths {
	paths := &bench.BackupPaths{}

	siteDir := filepath.Join(backupDir, bench.SitesBackupDirName, site)
	if err := os.MkdirAll(siteDir, 0o755); err != nil {
		p.rep.Warning("could not create site capture directory", "site", site, "error", err.Error())
		return paths
	}

	p.rep.ItemStart("site backup", site)
	res := p.tc.BackupSite(ctx, benchPath, site, siteDir, !opts.ExcludeFiles)
	if !res.Success() {
		p.rep.Warning("site backup failed", "site", site, "exit_code", res.ExitCode, "stderr", strings.TrimSpace(res.Stderr))
		p.rep.ItemDone("site backup", site, false)
		return paths
	}

	entries, err := os.ReadDir(siteDir)
	if err != nil {
		p.rep.Warning("could not read site capture directory", "site", site, "error", err.Error())
		p.rep.ItemDone("site backup", site, false)
		return paths
	}
	for _, entry := range entries {
		rel := filepath.Join(bench.SitesBackupDirName, site, entry.Name())
		switch {
		case strings.HasSuffix(entry.Name(), "-private-files.tar"):
			paths.PrivateFiles = rel
		case strings.HasSuffix(entry.Name(), "-files.tar"):
			paths.Files = rel
		case strings.HasSuffix(entry.Name(), "-database.sql.gz"):
			paths.Database = rel
		}
	}

	p.rep.ItemDone("site backup", site, true)
	return paths
}

// PackAll backs up every valid bench directly under benchesRoot,
// continuing past per-bench failure. It returns the artifacts of the
// benches that succeeded.
func (p *Packager) PackAll(ctx context.Context, benchesRoot, outputDir string, opts Options) ([]string, error) {
	entries, err := os.ReadDir(benchesRoot)
	if err != nil {
		return nil, fmt.Errorf("read benches directory %q: %w", benchesRoot, err)
	}

	var benches []string
	for _, entry := range entries {
		path := filepath.Join(benchesRoot, entry.Name())
		if entry.IsDir() && bench.IsValid(path) {
			benches = append(benches, path)
		}
	}
	if len(benches) == 0 {
		p.rep.Warning("no valid benches found", "directory", benchesRoot)
		return nil, nil
	}

	var results []string
	for _, benchPath := range benches {
		name := filepath.Base(benchPath)
		p.rep.ItemStart("bench backup", name)
		artifact, err := p.PackBench(ctx, benchPath, outputDir, opts)
		if err != nil {
			p.rep.Warning("bench backup failed", "bench", name, "error", err.Error())
			p.rep.ItemDone("bench backup", name, false)
			continue
		}
		results = append(results, artifact)
		p.rep.ItemDone("bench backup", name, true)
	}
	return results, nil
}
