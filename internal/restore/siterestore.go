package restore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kebairia/fbm/internal/bench"
	"github.com/kebairia/fbm/internal/report"
	"github.com/kebairia/fbm/internal/toolchain"
)

// SiteRestorer replays captured site data into a reconstructed bench.
type SiteRestorer struct {
	tc  toolchain.Toolchain
	rep report.Reporter
	// DBRootPassword, when non-empty, is handed to the external restore
	// command for database access.
	dbRootPassword string
}

func NewSiteRestorer(tc toolchain.Toolchain, rep report.Reporter, dbRootPassword string) *SiteRestorer {
	return &SiteRestorer{tc: tc, rep: rep, dbRootPassword: dbRootPassword}
}

// RestoreSite locates siteName's database capture inside unpackedDir and
// replays it into the bench at benchPath. It reports problems and
// returns false instead of failing the overall restore.
func (s *SiteRestorer) RestoreSite(ctx context.Context, siteName, unpackedDir, benchPath string) bool {
	siteDir := filepath.Join(benchPath, "sites", siteName)
	if err := os.MkdirAll(siteDir, 0o755); err != nil {
		s.rep.Warning("could not create site directory", "site", siteName, "error", err.Error())
		return false
	}

	captureDir := filepath.Join(unpackedDir, bench.SitesBackupDirName, siteName)
	if _, err := os.Stat(captureDir); err != nil {
		s.rep.Warning("no capture directory for site", "site", siteName, "path", captureDir)
		return false
	}

	dbFile, err := findDatabaseCapture(captureDir)
	if err != nil {
		s.rep.Warning("no database capture for site", "site", siteName, "error", err.Error())
		return false
	}

	// Stage the capture where the toolchain expects site backups.
	staged, err := stageCapture(dbFile, filepath.Join(siteDir, "private", "backups"))
	if err != nil {
		s.rep.Warning("could not stage database capture", "site", siteName, "error", err.Error())
		return false
	}
	// The restore command runs with the bench as its cwd; hand it a path
	// that does not depend on ours.
	staged, err = filepath.Abs(staged)
	if err != nil {
		s.rep.Warning("could not resolve staged capture path", "site", siteName, "error", err.Error())
		return false
	}

	res := s.tc.RestoreSite(ctx, benchPath, siteName, staged, s.dbRootPassword)
	if !res.Success() {
		s.rep.Warning("site restore failed", "site", siteName, "exit_code", res.ExitCode, "stderr", strings.TrimSpace(res.Stderr))
		return false
	}
	return true
}

// findDatabaseCapture picks the site's database dump. With multiple
// candidates the first in directory-enumeration order wins.
func findDatabaseCapture(captureDir string) (string, error) {
	entries, err := os.ReadDir(captureDir)
	if err != nil {
		return "", fmt.Errorf("read capture directory %q: %w", captureDir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql.gz") {
			return filepath.Join(captureDir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("no *.sql.gz capture in %q", captureDir)
}

// stageCapture copies src into destDir and returns the copy's path.
func stageCapture(src, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create backups directory %q: %w", destDir, err)
	}
	dest := filepath.Join(destDir, filepath.Base(src))

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open capture %q: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create %q: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", fmt.Errorf("copy capture to %q: %w", dest, err)
	}
	return dest, out.Close()
}
