// Package toolchain shells out to the external bench and git commands.
// Expected non-zero exits are returned as data in Result, not as errors.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
)

// Result captures the outcome of one external command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the command exited zero.
func (r Result) Success() bool { return r.ExitCode == 0 }

// Toolchain is the narrow capability surface this tool needs from the
// platform: bench lifecycle commands, per-site backup/restore, and
// version-control introspection.
type Toolchain interface {
	// DetectRuntimeVersion invokes the bench's isolated interpreter
	// with a version flag.
	DetectRuntimeVersion(ctx context.Context, benchPath string) Result
	// AppOrigin resolves an app checkout's remote URL and current branch.
	AppOrigin(ctx context.Context, appPath string) (url, branch string, err error)
	// InitBench initializes a new bench at benchPath.
	InitBench(ctx context.Context, benchPath, python, frappeBranch string) Result
	// FetchApp clones an app into the bench, at branch when non-empty.
	FetchApp(ctx context.Context, benchPath, gitURL, branch string) Result
	// BackupSite captures one site's data into destDir.
	BackupSite(ctx context.Context, benchPath, site, destDir string, withFiles bool) Result
	// RestoreSite replays a database capture into a site.
	RestoreSite(ctx context.Context, benchPath, site, backupFile, dbRootPassword string) Result
	// NewSite creates a fresh site inside the bench.
	NewSite(ctx context.Context, benchPath, site string) Result
}

// BenchCLI implements Toolchain by running the bench command.
type BenchCLI struct {
	Command string
}

var _ Toolchain = (*BenchCLI)(nil)

// New returns a BenchCLI using command, or "bench" when empty.
func New(command string) *BenchCLI {
	if command == "" {
		command = "bench"
	}
	return &BenchCLI{Command: command}
}

// run executes name in dir and folds the exit status into a Result.
// A command that could not be spawned at all reports exit code -1.
func run(ctx context.Context, dir, name string, args ...string) Result {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
			if res.Stderr == "" {
				res.Stderr = err.Error()
			}
		}
	}
	return res
}

func (b *BenchCLI) DetectRuntimeVersion(ctx context.Context, benchPath string) Result {
	python := filepath.Join(benchPath, "env", "bin", "python")
	if _, err := os.Stat(python); err != nil {
		return Result{ExitCode: -1, Stderr: err.Error()}
	}
	return run(ctx, benchPath, python, "--version")
}

func (b *BenchCLI) InitBench(ctx context.Context, benchPath, python, frappeBranch string) Result {
	args := []string{"init"}
	if frappeBranch != "" {
		args = append(args, "--frappe-branch", frappeBranch)
	}
	if python != "" {
		args = append(args, "--python", python)
	}
	args = append(args, benchPath)
	return run(ctx, filepath.Dir(benchPath), b.Command, args...)
}

func (b *BenchCLI) FetchApp(ctx context.Context, benchPath, gitURL, branch string) Result {
	args := []string{"get-app"}
	if branch != "" {
		args = append(args, "--branch", branch)
	}
	args = append(args, gitURL)
	return run(ctx, benchPath, b.Command, args...)
}

func (b *BenchCLI) BackupSite(ctx context.Context, benchPath, site, destDir string, withFiles bool) Result {
	args := []string{"--site", site, "backup", "--backup-path", destDir}
	if withFiles {
		args = append(args, "--with-files")
	}
	return run(ctx, benchPath, b.Command, args...)
}

func (b *BenchCLI) RestoreSite(ctx context.Context, benchPath, site, backupFile, dbRootPassword string) Result {
	args := []string{"--site", site, "restore"}
	if dbRootPassword != "" {
		args = append(args, "--mariadb-root-password", dbRootPassword)
	}
	args = append(args, backupFile)
	return run(ctx, benchPath, b.Command, args...)
}

func (b *BenchCLI) NewSite(ctx context.Context, benchPath, site string) Result {
	return run(ctx, benchPath, b.Command, "new-site", site)
}
