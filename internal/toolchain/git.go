package toolchain

import (
	"context"
	"fmt"
	"strings"
)

// Remotes tried in order when resolving an app's origin. Benches fetched
// through get-app name the remote "upstream"; hand-cloned apps use "origin".
var remoteNames = []string{"upstream", "origin"}

// AppOrigin resolves the remote URL and currently checked-out branch of
// the git checkout at appPath.
func (b *BenchCLI) AppOrigin(ctx context.Context, appPath string) (string, string, error) {
	var url string
	for _, remote := range remoteNames {
		res := run(ctx, appPath, "git", "config", "--get", "remote."+remote+".url")
		if res.Success() {
			url = strings.TrimSpace(res.Stdout)
			break
		}
	}
	if url == "" {
		return "", "", fmt.Errorf("no upstream or origin remote configured in %q", appPath)
	}

	res := run(ctx, appPath, "git", "rev-parse", "--abbrev-ref", "HEAD")
	if !res.Success() {
		return "", "", fmt.Errorf("resolve current branch in %q: %s", appPath, strings.TrimSpace(res.Stderr))
	}
	branch := strings.TrimSpace(res.Stdout)

	return url, branch, nil
}
