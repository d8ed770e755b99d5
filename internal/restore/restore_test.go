package restore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kebairia/fbm/internal/bench"
	"github.com/kebairia/fbm/internal/report"
	"github.com/kebairia/fbm/internal/toolchain"
)

// fakeToolchain records the external commands a restore would run.
type fakeToolchain struct {
	initCalls    int
	initPython   string
	initBranch   string
	fetched      []string
	failApps     map[string]bool
	restored     []string
	restorePass  string
	failRestores bool
}

func (f *fakeToolchain) DetectRuntimeVersion(_ context.Context, _ string) toolchain.Result {
	return toolchain.Result{ExitCode: 1}
}

func (f *fakeToolchain) AppOrigin(_ context.Context, _ string) (string, string, error) {
	return "", "", nil
}

func (f *fakeToolchain) InitBench(_ context.Context, benchPath, python, frappeBranch string) toolchain.Result {
	f.initCalls++
	f.initPython = python
	f.initBranch = frappeBranch
	if err := os.MkdirAll(benchPath, 0o755); err != nil {
		return toolchain.Result{ExitCode: 1, Stderr: err.Error()}
	}
	return toolchain.Result{}
}

func (f *fakeToolchain) FetchApp(_ context.Context, _, gitURL, branch string) toolchain.Result {
	if f.failApps[gitURL] {
		return toolchain.Result{ExitCode: 128, Stderr: "clone failed"}
	}
	f.fetched = append(f.fetched, gitURL+"@"+branch)
	return toolchain.Result{}
}

func (f *fakeToolchain) BackupSite(_ context.Context, _, _, _ string, _ bool) toolchain.Result {
	return toolchain.Result{}
}

func (f *fakeToolchain) RestoreSite(_ context.Context, benchPath, site, backupFile, dbRootPassword string) toolchain.Result {
	if f.failRestores {
		return toolchain.Result{ExitCode: 1, Stderr: "restore failed"}
	}
	// The real restore command runs with the bench as its cwd and would
	// resolve a relative file path against it.
	if !filepath.IsAbs(backupFile) {
		backupFile = filepath.Join(benchPath, backupFile)
	}
	if _, err := os.Stat(backupFile); err != nil {
		return toolchain.Result{ExitCode: 1, Stderr: "backup file not found"}
	}
	f.restored = append(f.restored, site+":"+backupFile)
	f.restorePass = dbRootPassword
	return toolchain.Result{}
}

func (f *fakeToolchain) NewSite(_ context.Context, _, _ string) toolchain.Result {
	return toolchain.Result{}
}

func testDescription() *bench.Description {
	python := "3.11"
	return &bench.Description{
		Python: &python,
		Name:   "acme",
		Apps: []bench.AppRecord{
			{Name: "erpnext", GitURL: "https://github.com/frappe/erpnext.git", Version: "version-15"},
		},
		Sites: []bench.SiteRecord{{Name: "acme.local"}},
	}
}

func TestReconstruct_InitializesAndFetchesApps(t *testing.T) {
	target := t.TempDir()
	tc := &fakeToolchain{}
	r := NewReconstructor(tc, report.Discard, "python3", "version-15")

	benchPath, err := r.Reconstruct(context.Background(), testDescription(), target, Options{})
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if benchPath != filepath.Join(target, "acme") {
		t.Errorf("bench path = %q", benchPath)
	}
	if tc.initCalls != 1 {
		t.Errorf("init calls = %d, want 1", tc.initCalls)
	}
	if tc.initPython != "python3.11" {
		t.Errorf("init python = %q, want python3.11", tc.initPython)
	}
	if tc.initBranch != "version-15" {
		t.Errorf("init branch = %q", tc.initBranch)
	}
	if len(tc.fetched) != 1 || tc.fetched[0] != "https://github.com/frappe/erpnext.git@version-15" {
		t.Errorf("fetched = %v", tc.fetched)
	}
}

func TestReconstruct_IsIdempotent(t *testing.T) {
	target := t.TempDir()
	tc := &fakeToolchain{}
	r := NewReconstructor(tc, report.Discard, "python3", "version-15")

	if _, err := r.Reconstruct(context.Background(), testDescription(), target, Options{}); err != nil {
		t.Fatalf("first Reconstruct: %v", err)
	}
	if _, err := r.Reconstruct(context.Background(), testDescription(), target, Options{}); err != nil {
		t.Fatalf("second Reconstruct: %v", err)
	}
	if tc.initCalls != 1 {
		t.Errorf("init calls = %d, re-entry must not re-initialize", tc.initCalls)
	}
}

func TestReconstruct_NewNameAndSkipApps(t *testing.T) {
	target := t.TempDir()
	tc := &fakeToolchain{}
	r := NewReconstructor(tc, report.Discard, "python3", "version-15")

	benchPath, err := r.Reconstruct(context.Background(), testDescription(), target, Options{
		SkipApps: true,
		NewName:  "acme-staging",
	})
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if benchPath != filepath.Join(target, "acme-staging") {
		t.Errorf("bench path = %q", benchPath)
	}
	if len(tc.fetched) != 0 {
		t.Errorf("fetched = %v, want none with skip-apps", tc.fetched)
	}
}

func TestReconstruct_AppFailureDoesNotAbort(t *testing.T) {
	target := t.TempDir()
	desc := testDescription()
	desc.Apps = append(desc.Apps, bench.AppRecord{
		Name: "hrms", GitURL: "https://github.com/frappe/hrms.git", Version: "version-15",
	})
	tc := &fakeToolchain{failApps: map[string]bool{"https://github.com/frappe/erpnext.git": true}}
	r := NewReconstructor(tc, report.Discard, "python3", "version-15")

	if _, err := r.Reconstruct(context.Background(), desc, target, Options{}); err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if len(tc.fetched) != 1 || tc.fetched[0] != "https://github.com/frappe/hrms.git@version-15" {
		t.Errorf("fetched = %v, want hrms despite erpnext failure", tc.fetched)
	}
}

// makeUnpacked lays out an extraction directory with one site capture.
func makeUnpacked(t *testing.T, root, site string, captures ...string) string {
	t.Helper()
	captureDir := filepath.Join(root, bench.SitesBackupDirName, site)
	if err := os.MkdirAll(captureDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range captures {
		if err := os.WriteFile(filepath.Join(captureDir, name), []byte("dump"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestRestoreSite_StagesAndRestores(t *testing.T) {
	root := t.TempDir()
	unpacked := makeUnpacked(t, filepath.Join(root, "extracted"), "acme.local",
		"20250101-acme.local-database.sql.gz")
	benchPath := filepath.Join(root, "acme")

	tc := &fakeToolchain{}
	s := NewSiteRestorer(tc, report.Discard, "hunter2")

	if ok := s.RestoreSite(context.Background(), "acme.local", unpacked, benchPath); !ok {
		t.Fatal("RestoreSite returned false")
	}

	staged := filepath.Join(benchPath, "sites", "acme.local", "private", "backups",
		"20250101-acme.local-database.sql.gz")
	if _, err := os.Stat(staged); err != nil {
		t.Errorf("capture not staged into the site: %v", err)
	}
	if len(tc.restored) != 1 || tc.restored[0] != "acme.local:"+staged {
		t.Errorf("restored = %v", tc.restored)
	}
	if tc.restorePass != "hunter2" {
		t.Errorf("db root password = %q", tc.restorePass)
	}
}

func TestRestoreSite_MissingCaptureDirectory(t *testing.T) {
	root := t.TempDir()
	benchPath := filepath.Join(root, "acme")

	s := NewSiteRestorer(&fakeToolchain{}, report.Discard, "")
	if ok := s.RestoreSite(context.Background(), "acme.local", filepath.Join(root, "extracted"), benchPath); ok {
		t.Fatal("RestoreSite should return false without a capture directory")
	}
}

func TestRestoreSite_NoDatabaseCapture(t *testing.T) {
	root := t.TempDir()
	unpacked := makeUnpacked(t, filepath.Join(root, "extracted"), "acme.local",
		"20250101-acme.local-files.tar")
	benchPath := filepath.Join(root, "acme")

	s := NewSiteRestorer(&fakeToolchain{}, report.Discard, "")
	if ok := s.RestoreSite(context.Background(), "acme.local", unpacked, benchPath); ok {
		t.Fatal("RestoreSite should return false without a database capture")
	}
}

func TestReconstruct_StatFailureSurfaces(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	target := t.TempDir()
	if err := os.Chmod(target, 0o000); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(target, 0o755) })

	tc := &fakeToolchain{}
	r := NewReconstructor(tc, report.Discard, "python3", "version-15")

	_, err := r.Reconstruct(context.Background(), testDescription(), target, Options{})
	if err == nil {
		t.Fatal("unreadable target directory should surface an error")
	}
	if tc.initCalls != 0 {
		t.Errorf("init calls = %d, must not initialize over an unreadable path", tc.initCalls)
	}
}

func TestRestoreSite_RelativeBenchPath(t *testing.T) {
	root := t.TempDir()
	makeUnpacked(t, filepath.Join(root, "extracted"), "acme.local",
		"20250101-acme.local-database.sql.gz")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(root); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	tc := &fakeToolchain{}
	s := NewSiteRestorer(tc, report.Discard, "")

	if ok := s.RestoreSite(context.Background(), "acme.local", "extracted", "acme"); !ok {
		t.Fatal("RestoreSite returned false with relative paths")
	}
	if len(tc.restored) != 1 {
		t.Fatalf("restored = %v", tc.restored)
	}
	staged := strings.TrimPrefix(tc.restored[0], "acme.local:")
	if !filepath.IsAbs(staged) {
		t.Errorf("staged capture path %q should be absolute", staged)
	}
	if _, err := os.Stat(staged); err != nil {
		t.Errorf("staged capture missing: %v", err)
	}
}

func TestRestoreSite_ExternalFailureIsReportedNotRaised(t *testing.T) {
	root := t.TempDir()
	unpacked := makeUnpacked(t, filepath.Join(root, "extracted"), "acme.local",
		"20250101-acme.local-database.sql.gz")
	benchPath := filepath.Join(root, "acme")

	s := NewSiteRestorer(&fakeToolchain{failRestores: true}, report.Discard, "")
	if ok := s.RestoreSite(context.Background(), "acme.local", unpacked, benchPath); ok {
		t.Fatal("RestoreSite should return false when the external restore exits non-zero")
	}
}
