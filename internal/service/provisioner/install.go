package provisioner

import (
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/mitchellh/go-ps"

	"github.com/deskops/rustdesk-provisioner/internal/logger"
)

// InstallOutcome classifies the installer's exit.
type InstallOutcome int

const (
	// InstallSucceeded means the installer exited cleanly.
	InstallSucceeded InstallOutcome = iota
	// InstallSucceededRebootRequired means the installer succeeded but the
	// machine must be rebooted before the client is fully functional.
	InstallSucceededRebootRequired
	// InstallFailed means the installer exited with a failing code.
	InstallFailed
)

// String implements fmt.Stringer for log output.
func (o InstallOutcome) String() string {
	switch o {
	case InstallSucceeded:
		return "success"
	case InstallSucceededRebootRequired:
		return "success, reboot required"
	case InstallFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// installClient runs the artifact unattended and classifies the result.
// Only a Failed outcome produces an error; the reboot-required case is an
// advisory surfaced to the operator by the caller.
func (r *runner) installClient(ctx context.Context, artifact *Artifact) (InstallOutcome, error) {
	// A silent reinstall over a live client can fail on locked files,
	// so terminate any running client first. Best-effort only.
	if err := terminateClientProcesses(); err != nil {
		logger.WarnKV(ctx, "Unable to terminate running client processes", "error", err)
	}

	args := []string{silentInstallFlag}
	if r.opts.InstallService {
		args = append(args, serviceInstallFlag)
	}

	logger.InfoKV(ctx, "Running installer",
		"path", artifact.LocalPath, "args", args)

	cmd := exec.CommandContext(ctx, artifact.LocalPath, args...)

	err := cmd.Run()
	if err == nil {
		return InstallSucceeded, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		// The installer never ran (missing interpreter, permission, ...).
		return InstallFailed, &InstallError{Code: -1, Err: err}
	}

	return classifyExitCode(exitErr.ExitCode())
}

// classifyExitCode maps an installer exit code to an outcome.
func classifyExitCode(code int) (InstallOutcome, error) {
	switch code {
	case 0:
		return InstallSucceeded, nil
	case rebootRequiredExitCode:
		return InstallSucceededRebootRequired, nil
	default:
		return InstallFailed, &InstallError{Code: code}
	}
}

// terminateClientProcesses kills running client binaries before install.
func terminateClientProcesses() error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	target := clientExecutable()
	thisProcessID := os.Getpid()

	for _, process := range processList {
		processID := process.Pid()
		if processID == thisProcessID {
			continue
		}

		if process.Executable() != target {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(processID)
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}
