package provisioner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRunner(opts *Options) *runner {
	return &runner{
		opts:         opts,
		metadataURL:  DefaultMetadataURL,
		downloadBase: DefaultDownloadBase,
		httpClient:   http.DefaultClient,
		relayServer:  opts.RelayServer,
		apiServer:    opts.APIServer,
		key:          opts.Key,
	}
}

// TestResolveRelease_ExplicitToken ensures any non-latest token is trusted
// verbatim as the identifier without touching the network.
func TestResolveRelease_ExplicitToken(t *testing.T) {
	t.Parallel()

	for _, token := range []string{"1.2.3", "1.4.0-beta", "weird-tag"} {
		r := newTestRunner(&Options{VersionToken: token})
		r.metadataURL = "http://127.0.0.1:0/unreachable"

		release, err := r.resolveRelease(context.Background())
		require.NoError(t, err)
		require.Equal(t, token, release.Identifier)
	}
}

// TestResolveRelease_Latest resolves the sentinel through the metadata
// endpoint and extracts the tag.
func TestResolveRelease_Latest(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name": "1.2.3", "name": "release 1.2.3"}`))
	}))
	defer ts.Close()

	r := newTestRunner(&Options{VersionToken: "latest"})
	r.metadataURL = ts.URL

	release, err := r.resolveRelease(context.Background())
	require.NoError(t, err)
	require.Equal(t, "1.2.3", release.Identifier)
	require.Equal(t, BuildDownloadURL(DefaultDownloadBase, "1.2.3"), release.DownloadURL)
}

// TestResolveRelease_Failures covers the run-fatal resolution errors:
// bad status, malformed metadata, missing and unparsable tags.
func TestResolveRelease_Failures(t *testing.T) {
	t.Parallel()

	cases := map[string]http.HandlerFunc{
		"bad status": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		},
		"not json": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>rate limited</html>"))
		},
		"empty tag": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"tag_name": ""}`))
		},
		"unparsable tag": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"tag_name": "not/a/version"}`))
		},
	}

	for name, handler := range cases {
		handler := handler
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ts := httptest.NewServer(handler)
			defer ts.Close()

			r := newTestRunner(&Options{VersionToken: "latest"})
			r.metadataURL = ts.URL

			_, err := r.resolveRelease(context.Background())
			require.Error(t, err)

			var resolutionErr *ResolutionError
			require.ErrorAs(t, err, &resolutionErr)
		})
	}
}

// TestBuildDownloadURL ensures the identifier lands in the reserved path
// segment of the fixed template.
func TestBuildDownloadURL(t *testing.T) {
	t.Parallel()

	url := BuildDownloadURL("https://mirror.local/artifacts/", "1.2.3")
	require.Equal(t, "https://mirror.local/artifacts/1.2.3/rustdesk-1.2.3-x86_64.exe", url)
	require.Equal(t, 1, strings.Count(url, "/1.2.3/"))
}
