package provisioner

import (
	"errors"
	"fmt"
)

var (
	errBadHTTPStatus   = errors.New("unexpected http status")
	errEmptyReleaseTag = errors.New("release metadata has no tag")
	errEmptyArtifact   = errors.New("downloaded artifact is empty")
	errClientNotFound  = errors.New("client executable not found in any known location")
)

// ResolutionError reports a failure turning a version token into a concrete
// release. It is run-fatal.
type ResolutionError struct {
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve release: %v", e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// DownloadError reports a failure retrieving the installer artifact.
// It is run-fatal.
type DownloadError struct {
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download artifact: %v", e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// InstallError reports an installer that could not be started or exited with
// a failing code. It is run-fatal. Code is -1 when the installer never ran.
type InstallError struct {
	Code int
	Err  error
}

func (e *InstallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("run installer: %v", e.Err)
	}

	return fmt.Sprintf("installer exited with code %d", e.Code)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}
