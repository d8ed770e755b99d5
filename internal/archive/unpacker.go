package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kebairia/fbm/internal/bench"
)

// ErrManifestMissing indicates an artifact without a bench_info.json.
var ErrManifestMissing = errors.New("bench manifest not found in backup")

// ErrUnsupportedFormat indicates a backup file with an unknown suffix.
var ErrUnsupportedFormat = errors.New("unsupported backup format")

// Unpack materializes a backup artifact and parses its manifest. For a
// compressed archive it extracts into a fresh temporary directory and
// the returned cleanup removes it; for a plain directory the cleanup is
// a no-op. The caller must run cleanup on every exit path.
func Unpack(artifactPath string) (*bench.Description, string, func(), error) {
	noop := func() {}

	info, err := os.Stat(artifactPath)
	if err != nil {
		return nil, "", noop, fmt.Errorf("stat backup %q: %w", artifactPath, err)
	}

	dir := artifactPath
	cleanup := noop
	if !info.IsDir() {
		if !strings.HasSuffix(artifactPath, ".tar.gz") && !strings.HasSuffix(artifactPath, ".tgz") {
			return nil, "", noop, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(artifactPath))
		}
		tmpDir, err := os.MkdirTemp("", "fbm-restore-*")
		if err != nil {
			return nil, "", noop, fmt.Errorf("create extraction directory: %w", err)
		}
		if err := extractTarGz(artifactPath, tmpDir); err != nil {
			os.RemoveAll(tmpDir)
			return nil, "", noop, fmt.Errorf("extract backup %q: %w", artifactPath, err)
		}
		dir = tmpDir
		cleanup = func() { os.RemoveAll(tmpDir) }
	}

	manifestPath := filepath.Join(dir, bench.ManifestFilename)
	if _, err := os.Stat(manifestPath); err != nil {
		cleanup()
		return nil, "", noop, fmt.Errorf("%w: %s", ErrManifestMissing, manifestPath)
	}
	desc, err := bench.LoadDescription(manifestPath)
	if err != nil {
		cleanup()
		return nil, "", noop, err
	}

	return desc, dir, cleanup, nil
}
