package bench

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/kebairia/fbm/internal/report"
	"github.com/kebairia/fbm/internal/toolchain"
)

// ErrInvalidBench indicates a directory without the apps/sites layout.
var ErrInvalidBench = errors.New("not a valid bench")

// SiteConfigFilename marks a directory under sites/ as an actual site.
const SiteConfigFilename = "site_config.json"

var versionPattern = regexp.MustCompile(`\d+\.\d+`)

// IsValid reports whether path holds both an apps and a sites area.
func IsValid(path string) bool {
	for _, sub := range []string{"apps", "sites"} {
		info, err := os.Stat(filepath.Join(path, sub))
		if err != nil || !info.IsDir() {
			return false
		}
	}
	return true
}

// Inspector extracts a Description from a live bench directory.
type Inspector struct {
	tc  toolchain.Toolchain
	rep report.Reporter
}

func NewInspector(tc toolchain.Toolchain, rep report.Reporter) *Inspector {
	return &Inspector{tc: tc, rep: rep}
}

// Inspect walks benchPath and returns its description: runtime version,
// installed apps with their git origin and branch, and installed sites.
func (in *Inspector) Inspect(ctx context.Context, benchPath string) (*Description, error) {
	if !IsValid(benchPath) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBench, benchPath)
	}

	desc := &Description{
		Name:  filepath.Base(benchPath),
		Apps:  []AppRecord{},
		Sites: []SiteRecord{},
	}
	desc.Python = in.runtimeVersion(ctx, benchPath)

	apps, err := in.inspectApps(ctx, filepath.Join(benchPath, "apps"))
	if err != nil {
		return nil, err
	}
	desc.Apps = apps

	sites, err := inspectSites(filepath.Join(benchPath, "sites"))
	if err != nil {
		return nil, err
	}
	desc.Sites = sites

	return desc, nil
}

// runtimeVersion asks the bench's isolated interpreter for its version
// and extracts "major.minor". Never fatal: any failure records nil.
func (in *Inspector) runtimeVersion(ctx context.Context, benchPath string) *string {
	res := in.tc.DetectRuntimeVersion(ctx, benchPath)
	if !res.Success() {
		in.rep.Warning("could not detect runtime version", "bench", benchPath, "stderr", res.Stderr)
		return nil
	}
	// Some interpreters print the version banner on stderr.
	out := res.Stdout
	if out == "" {
		out = res.Stderr
	}
	version := versionPattern.FindString(out)
	if version == "" {
		in.rep.Warning("unrecognized runtime version output", "bench", benchPath, "output", out)
		return nil
	}
	return &version
}

// inspectApps lists every version-controlled app under appsPath, except
// the framework app itself. An app whose origin cannot be resolved is
// warned about and omitted; it never aborts inspection.
func (in *Inspector) inspectApps(ctx context.Context, appsPath string) ([]AppRecord, error) {
	entries, err := os.ReadDir(appsPath)
	if err != nil {
		return nil, fmt.Errorf("read apps directory %q: %w", appsPath, err)
	}

	apps := []AppRecord{}
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == frameworkApp {
			continue
		}
		appPath := filepath.Join(appsPath, entry.Name())
		if _, err := os.Stat(filepath.Join(appPath, ".git")); err != nil {
			continue
		}
		url, branch, err := in.tc.AppOrigin(ctx, appPath)
		if err != nil {
			in.rep.Warning("could not get git info for app", "app", entry.Name(), "error", err.Error())
			continue
		}
		apps = append(apps, AppRecord{Name: entry.Name(), GitURL: url, Version: branch})
	}
	return apps, nil
}

// inspectSites lists every directory under sitesPath carrying a site
// configuration file, in directory-enumeration order.
func inspectSites(sitesPath string) ([]SiteRecord, error) {
	entries, err := os.ReadDir(sitesPath)
	if err != nil {
		return nil, fmt.Errorf("read sites directory %q: %w", sitesPath, err)
	}

	sites := []SiteRecord{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		marker := filepath.Join(sitesPath, entry.Name(), SiteConfigFilename)
		if _, err := os.Stat(marker); err != nil {
			continue
		}
		sites = append(sites, SiteRecord{Name: entry.Name()})
	}
	return sites, nil
}
