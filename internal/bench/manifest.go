package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ManifestFilename is the description file written at the root of
	// every backup artifact.
	ManifestFilename = "bench_info.json"

	// SitesBackupDirName holds the per-site capture subdirectories
	// inside a backup artifact.
	SitesBackupDirName = "sites_backup"

	// frameworkApp is provisioned by bench init and never re-cloned.
	frameworkApp = "frappe"
)

// IsFrameworkApp reports whether name is the foundational framework app,
// which is excluded from app records and never re-installed explicitly.
func IsFrameworkApp(name string) bool { return name == frameworkApp }

// AppRecord pins one installed app to its source and version.
type AppRecord struct {
	Name    string `json:"name"`
	GitURL  string `json:"git_url"`
	Version string `json:"version"`
}

// BackupPaths maps a site's captured artifacts to paths relative to the
// backup directory. An empty string means that artifact was not produced.
type BackupPaths struct {
	Database     string `json:"database"`
	Files        string `json:"files"`
	PrivateFiles string `json:"private_files"`
}

// SiteRecord names one tenant site. BackupPaths is only populated at
// backup time, after the site's data has been captured.
type SiteRecord struct {
	Name        string       `json:"name"`
	BackupPaths *BackupPaths `json:"backup_paths,omitempty"`
}

// Description is the manifest: the single source of truth for
// reconstructing a bench from its backup.
type Description struct {
	Python *string      `json:"python"`
	Name   string       `json:"name"`
	Apps   []AppRecord  `json:"apps"`
	Sites  []SiteRecord `json:"sites"`
}

// Write serializes the description as bench_info.json under dirPath.
// Calling it again overwrites the previous manifest, which is how the
// two-phase write works: once before site capture, once after.
func (d *Description) Write(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return fmt.Errorf("ensure manifest directory %q: %w", dirPath, err)
	}

	filePath := filepath.Join(dirPath, ManifestFilename)
	jsonFile, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("create manifest file %q: %w", filePath, err)
	}
	defer jsonFile.Close()

	encoder := json.NewEncoder(jsonFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(d); err != nil {
		return fmt.Errorf("encode manifest JSON: %w", err)
	}
	return nil
}

// LoadDescription parses a bench_info.json file.
func LoadDescription(filePath string) (*Description, error) {
	jsonFile, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open manifest file %q: %w", filePath, err)
	}
	defer jsonFile.Close()

	var d Description
	if err := json.NewDecoder(jsonFile).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode manifest JSON: %w", err)
	}
	return &d, nil
}
