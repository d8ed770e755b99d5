package operations

import (
	"context"
	"fmt"
	"strings"

	"github.com/kebairia/fbm/internal/bench"
)

// CreateBench initializes a new bench at benchPath. With an info file it
// replays the recorded apps and creates the recorded sites; per-item
// failures are logged and skipped.
func (op *Operator) CreateBench(ctx context.Context, benchPath, infoFile string) (string, error) {
	if infoFile == "" {
		res := op.tc.InitBench(ctx, benchPath, op.cfg.Bench.DefaultPython, op.cfg.Bench.FrappeBranch)
		if !res.Success() {
			return "", fmt.Errorf("bench initialization failed for %q: %s", benchPath, strings.TrimSpace(res.Stderr))
		}
		return benchPath, nil
	}

	desc, err := bench.LoadDescription(infoFile)
	if err != nil {
		return "", err
	}

	python := op.cfg.Bench.DefaultPython
	if desc.Python != nil && *desc.Python != "" {
		python = "python" + *desc.Python
	}
	res := op.tc.InitBench(ctx, benchPath, python, op.cfg.Bench.FrappeBranch)
	if !res.Success() {
		return "", fmt.Errorf("bench initialization failed for %q: %s", benchPath, strings.TrimSpace(res.Stderr))
	}

	for _, app := range desc.Apps {
		if bench.IsFrameworkApp(app.Name) {
			continue
		}
		op.rep.ItemStart("app install", app.Name)
		res := op.tc.FetchApp(ctx, benchPath, app.GitURL, app.Version)
		if !res.Success() {
			op.rep.Warning("failed to install app", "app", app.Name, "stderr", strings.TrimSpace(res.Stderr))
			op.rep.ItemDone("app install", app.Name, false)
			continue
		}
		op.rep.ItemDone("app install", app.Name, true)
	}

	for _, site := range desc.Sites {
		op.rep.ItemStart("site create", site.Name)
		res := op.tc.NewSite(ctx, benchPath, site.Name)
		if !res.Success() {
			op.rep.Warning("failed to create site", "site", site.Name, "stderr", strings.TrimSpace(res.Stderr))
			op.rep.ItemDone("site create", site.Name, false)
			continue
		}
		op.rep.ItemDone("site create", site.Name, true)
	}

	return benchPath, nil
}
