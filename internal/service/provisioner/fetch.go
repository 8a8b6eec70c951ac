package provisioner

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/deskops/rustdesk-provisioner/internal/logger"
)

// Artifact is the downloaded installer, scoped to a single run:
// it is acquired by downloadArtifact and released by Remove after the
// install stage completes, whatever the install outcome was.
type Artifact struct {
	// LocalPath is the temporary file the installer was written to.
	LocalPath string
	// SizeBytes is the on-disk size of the artifact.
	SizeBytes int64
}

// downloadArtifact retrieves the release's installer into a fresh temporary
// file. On success the file exists, is non-empty and is runnable.
func (r *runner) downloadArtifact(ctx context.Context, release *Release) (*Artifact, error) {
	artifact, err := r.fetchToTempFile(ctx, release)
	if err != nil {
		return nil, &DownloadError{Err: err}
	}

	logger.InfoKV(ctx, "Downloaded installer artifact",
		"path", artifact.LocalPath, "size_bytes", artifact.SizeBytes)

	return artifact, nil
}

func (r *runner) fetchToTempFile(ctx context.Context, release *Release) (*Artifact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, release.DownloadURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	response, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", release.DownloadURL, response.Status, errBadHTTPStatus)
	}

	outputFile, err := os.CreateTemp("", "rustdesk-provisioner-*"+getExecutableExtension())
	if err != nil {
		return nil, err
	}

	outputPath := outputFile.Name()

	written, err := io.Copy(outputFile, response.Body)
	if closeErr := outputFile.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(outputPath)
		return nil, err
	}

	if written == 0 {
		_ = os.Remove(outputPath)
		return nil, fmt.Errorf("%s: %w", release.DownloadURL, errEmptyArtifact)
	}

	// The artifact is executed directly in the install stage.
	if err = os.Chmod(outputPath, artifactFileMode); err != nil {
		_ = os.Remove(outputPath)
		return nil, err
	}

	return &Artifact{LocalPath: outputPath, SizeBytes: written}, nil
}

// Remove deletes the artifact file. Best-effort: a file that is already
// gone is not an error, anything else is logged and swallowed.
func (a *Artifact) Remove(ctx context.Context) {
	if a == nil || a.LocalPath == "" {
		return
	}

	if err := os.Remove(a.LocalPath); err != nil && !os.IsNotExist(err) {
		logger.WarnKV(ctx, "Unable to delete downloaded artifact",
			"path", a.LocalPath, "error", err)
	}
}
