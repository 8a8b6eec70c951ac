package provisioner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/deskops/rustdesk-provisioner/internal/logger"
)

// resolveFirstExisting returns the first candidate path that exists on disk.
func resolveFirstExisting(candidates []string) (string, bool) {
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}

	return "", false
}

// launchClient probes the known install locations and starts the first
// client executable found as a detached process.
func (r *runner) launchClient(ctx context.Context) error {
	executable, found := resolveFirstExisting(r.launchCandidates)
	if !found {
		return errClientNotFound
	}

	logger.InfoKV(ctx, "Starting client", "executable", executable)

	osLC := strings.ToLower(runtime.GOOS)
	switch {
	case strings.Contains(osLC, "linux") || strings.Contains(osLC, "darwin"):
		return exec.CommandContext(ctx, executable).Start()
	case strings.Contains(osLC, "windows"):
		return exec.CommandContext(ctx, "cmd.exe", "/C", "start", "", executable).Start()
	default:
		return fmt.Errorf("start %s on %s: unsupported OS", executable, runtime.GOOS)
	}
}
