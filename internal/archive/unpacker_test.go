package archive

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kebairia/fbm/internal/bench"
)

func TestUnpack_PlainDirectory(t *testing.T) {
	dir := t.TempDir()
	desc := &bench.Description{Name: "acme", Apps: []bench.AppRecord{}, Sites: []bench.SiteRecord{}}
	if err := desc.Write(dir); err != nil {
		t.Fatal(err)
	}

	loaded, unpackedDir, cleanup, err := Unpack(dir)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	defer cleanup()

	if unpackedDir != dir {
		t.Errorf("unpacked dir = %q, want the input directory", unpackedDir)
	}
	if loaded.Name != "acme" {
		t.Errorf("name = %q", loaded.Name)
	}

	// The no-op cleanup must leave the caller's directory alone.
	cleanup()
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("cleanup removed the input directory: %v", err)
	}
}

func TestUnpack_UnsupportedFormat(t *testing.T) {
	file := filepath.Join(t.TempDir(), "backup.zip")
	if err := os.WriteFile(file, []byte("not a tarball"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, _, err := Unpack(file)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestUnpack_MissingManifest(t *testing.T) {
	dir := t.TempDir()
	_, _, _, err := Unpack(dir)
	if !errors.Is(err, ErrManifestMissing) {
		t.Fatalf("err = %v, want ErrManifestMissing", err)
	}
}

func TestUnpack_MissingManifestInArchive(t *testing.T) {
	root := t.TempDir()
	staging := filepath.Join(root, "staging")
	if err := os.MkdirAll(staging, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(staging, "stray.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	archivePath := filepath.Join(root, "staging.tar.gz")
	if err := createTarGz(staging, archivePath); err != nil {
		t.Fatal(err)
	}

	_, _, _, err := Unpack(archivePath)
	if !errors.Is(err, ErrManifestMissing) {
		t.Fatalf("err = %v, want ErrManifestMissing", err)
	}
}

func TestUnpack_NonexistentPath(t *testing.T) {
	_, _, _, err := Unpack(filepath.Join(t.TempDir(), "missing.tar.gz"))
	if err == nil {
		t.Fatal("expected error for nonexistent backup")
	}
}
