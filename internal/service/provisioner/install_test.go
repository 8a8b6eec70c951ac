package provisioner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestClassifyExitCode maps installer exit codes to outcomes.
func TestClassifyExitCode(t *testing.T) {
	t.Parallel()

	outcome, err := classifyExitCode(0)
	require.NoError(t, err)
	require.Equal(t, InstallSucceeded, outcome)

	outcome, err = classifyExitCode(3010)
	require.NoError(t, err)
	require.Equal(t, InstallSucceededRebootRequired, outcome)

	for _, code := range []int{1, 2, 1603} {
		outcome, err = classifyExitCode(code)
		require.Equal(t, InstallFailed, outcome)

		var installErr *InstallError
		require.ErrorAs(t, err, &installErr)
		require.Equal(t, code, installErr.Code)
	}
}

// writeFakeInstaller writes an executable script that records its arguments
// and exits with the given code.
func writeFakeInstaller(t *testing.T, dir string, exitCode int) (installerPath, argsPath string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake installer scripts require a POSIX shell")
	}

	argsPath = filepath.Join(dir, "args.txt")
	installerPath = filepath.Join(dir, "installer.sh")

	script := fmt.Sprintf("#!/bin/sh\necho \"$@\" > %s\nexit %d\n", argsPath, exitCode)
	require.NoError(t, os.WriteFile(installerPath, []byte(script), 0o755))

	return installerPath, argsPath
}

// TestInstallClient_FlagSelection runs a fake installer and verifies the
// silent flag is always passed and the service flag only when requested.
func TestInstallClient_FlagSelection(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	installerPath, argsPath := writeFakeInstaller(t, dir, 0)

	r := newTestRunner(&Options{InstallService: true})

	outcome, err := r.installClient(context.Background(), &Artifact{LocalPath: installerPath})
	require.NoError(t, err)
	require.Equal(t, InstallSucceeded, outcome)

	args, err := os.ReadFile(argsPath)
	require.NoError(t, err)
	require.Equal(t, "--silent-install --install-service", strings.TrimSpace(string(args)))

	// Without service installation only the silent flag is passed.
	r = newTestRunner(&Options{InstallService: false})

	_, err = r.installClient(context.Background(), &Artifact{LocalPath: installerPath})
	require.NoError(t, err)

	args, err = os.ReadFile(argsPath)
	require.NoError(t, err)
	require.Equal(t, "--silent-install", strings.TrimSpace(string(args)))
}

// TestInstallClient_FailingInstaller classifies a non-zero exit as fatal.
func TestInstallClient_FailingInstaller(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	installerPath, _ := writeFakeInstaller(t, dir, 1)

	r := newTestRunner(&Options{})

	outcome, err := r.installClient(context.Background(), &Artifact{LocalPath: installerPath})
	require.Equal(t, InstallFailed, outcome)

	var installErr *InstallError
	require.ErrorAs(t, err, &installErr)
	require.Equal(t, 1, installErr.Code)
}

// TestInstallClient_MissingArtifact reports an installer that never ran.
func TestInstallClient_MissingArtifact(t *testing.T) {
	t.Parallel()

	r := newTestRunner(&Options{})

	outcome, err := r.installClient(context.Background(),
		&Artifact{LocalPath: filepath.Join(t.TempDir(), "absent.exe")})
	require.Equal(t, InstallFailed, outcome)

	var installErr *InstallError
	require.ErrorAs(t, err, &installErr)
	require.Equal(t, -1, installErr.Code)
	require.Error(t, errors.Unwrap(err))
}

// TestInstallOutcomeString covers the Stringer for log output.
func TestInstallOutcomeString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "success", InstallSucceeded.String())
	require.Equal(t, "success, reboot required", InstallSucceededRebootRequired.String())
	require.Equal(t, "failed", InstallFailed.String())
	require.Equal(t, "unknown", InstallOutcome(42).String())
}
