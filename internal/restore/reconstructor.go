// Package restore rebuilds benches from backup artifacts: re-initializing
// the bench, re-fetching apps at their recorded versions, and replaying
// captured site data through the external toolchain.
package restore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kebairia/fbm/internal/bench"
	"github.com/kebairia/fbm/internal/report"
	"github.com/kebairia/fbm/internal/toolchain"
)

// Options controls bench reconstruction.
type Options struct {
	// SkipApps leaves recorded apps unfetched.
	SkipApps bool
	// NewName overrides the bench name recorded in the manifest.
	NewName string
}

// Reconstructor recreates a bench from its manifest.
type Reconstructor struct {
	tc            toolchain.Toolchain
	rep           report.Reporter
	defaultPython string
	frappeBranch  string
}

func NewReconstructor(tc toolchain.Toolchain, rep report.Reporter, defaultPython, frappeBranch string) *Reconstructor {
	return &Reconstructor{
		tc:            tc,
		rep:           rep,
		defaultPython: defaultPython,
		frappeBranch:  frappeBranch,
	}
}

// Reconstruct recreates the bench described by desc under targetRoot and
// returns its path. A bench directory that already exists is reused
// without re-initialization, so re-running a failed restore is safe.
// Site creation is deliberately left to the caller.
func (r *Reconstructor) Reconstruct(ctx context.Context, desc *bench.Description, targetRoot string, opts Options) (string, error) {
	name := desc.Name
	if opts.NewName != "" {
		name = opts.NewName
	}
	benchPath := filepath.Join(targetRoot, name)

	if _, err := os.Stat(benchPath); err == nil {
		r.rep.Warning("bench already exists, skipping initialization", "bench", benchPath)
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("stat bench directory %q: %w", benchPath, err)
	} else {
		if err := os.MkdirAll(targetRoot, 0o755); err != nil {
			return "", fmt.Errorf("create target directory %q: %w", targetRoot, err)
		}
		r.rep.ItemStart("bench init", name)
		res := r.tc.InitBench(ctx, benchPath, r.python(desc), r.frappeBranch)
		if !res.Success() {
			r.rep.ItemDone("bench init", name, false)
			return "", fmt.Errorf("bench initialization failed for %q: %s", benchPath, strings.TrimSpace(res.Stderr))
		}
		r.rep.ItemDone("bench init", name, true)
	}

	if !opts.SkipApps {
		r.fetchApps(ctx, desc.Apps, benchPath)
	}

	return benchPath, nil
}

// fetchApps clones every recorded app at its recorded version. A failing
// app is reported and skipped; the rest are still fetched.
func (r *Reconstructor) fetchApps(ctx context.Context, apps []bench.AppRecord, benchPath string) {
	for _, app := range apps {
		r.rep.ItemStart("app fetch", app.Name)
		res := r.tc.FetchApp(ctx, benchPath, app.GitURL, app.Version)
		if !res.Success() {
			r.rep.Warning("failed to fetch app", "app", app.Name, "exit_code", res.ExitCode, "stderr", strings.TrimSpace(res.Stderr))
			r.rep.ItemDone("app fetch", app.Name, false)
			continue
		}
		r.rep.ItemDone("app fetch", app.Name, true)
	}
}

// python maps the manifest's recorded runtime version tag to an
// interpreter name, falling back to the configured default.
func (r *Reconstructor) python(desc *bench.Description) string {
	if desc.Python != nil && *desc.Python != "" {
		return "python" + *desc.Python
	}
	return r.defaultPython
}
