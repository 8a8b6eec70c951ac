package provisioner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"github.com/deskops/rustdesk-provisioner/internal/logger"
)

// Release is a concrete, downloadable build of the client.
type Release struct {
	// Identifier is the release tag, e.g. "1.2.3".
	Identifier string
	// DownloadURL is the installer artifact location for this release.
	DownloadURL string
}

// releaseMetadata is the subset of the release-metadata document we read.
type releaseMetadata struct {
	TagName string `json:"tag_name"`
}

// resolveRelease turns the requested version token into a Release.
// Explicit tokens are trusted verbatim; the "latest" sentinel is resolved
// through the metadata endpoint in a single attempt.
func (r *runner) resolveRelease(ctx context.Context) (*Release, error) {
	token := strings.TrimSpace(r.opts.VersionToken)
	if token == "" {
		token = LatestVersionToken
	}

	identifier := token
	if token == LatestVersionToken {
		latest, err := r.fetchLatestIdentifier(ctx)
		if err != nil {
			return nil, &ResolutionError{Err: err}
		}

		identifier = latest
	}

	release := &Release{
		Identifier:  identifier,
		DownloadURL: BuildDownloadURL(r.downloadBase, identifier),
	}

	logger.InfoKV(ctx, "Resolved release",
		"identifier", release.Identifier, "url", release.DownloadURL)

	return release, nil
}

// fetchLatestIdentifier queries the metadata endpoint for the most recent
// published release and returns its tag.
func (r *runner) fetchLatestIdentifier(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.metadataURL, http.NoBody)
	if err != nil {
		return "", err
	}

	response, err := r.httpClient.Do(req)
	if err != nil {
		return "", err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s, %s: %w", r.metadataURL, response.Status, errBadHTTPStatus)
	}

	var meta releaseMetadata
	if err = json.NewDecoder(response.Body).Decode(&meta); err != nil {
		return "", fmt.Errorf("decode release metadata: %w", err)
	}

	tag := strings.TrimSpace(meta.TagName)
	if tag == "" {
		return "", errEmptyReleaseTag
	}

	// A tag that doesn't parse as a version means the endpoint returned
	// something other than release metadata.
	if _, err = goversion.NewVersion(tag); err != nil {
		return "", fmt.Errorf("malformed release tag %q: %w", tag, err)
	}

	return tag, nil
}

// BuildDownloadURL substitutes the release identifier into the fixed
// artifact URL template.
func BuildDownloadURL(base, identifier string) string {
	return fmt.Sprintf("%s/%s/"+installerFilenameTemplate,
		strings.TrimRight(base, "/"), identifier, identifier)
}
