package locator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Jepvid/HM64Updatescripts/internal/platform"
)

// newPullServer serves a PR description and rendered page with the provided contents.
func newPullServer(t *testing.T, body, page string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/TheLynk/Shipwright/pulls/11",
		func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"body": ` + body + `}`))
		})
	mux.HandleFunc("/TheLynk/Shipwright/pull/11",
		func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(page))
		})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return ts
}

// newPullLocator wires a PullRequest locator at the test server.
func newPullLocator(ts *httptest.Server) *PullRequest {
	return NewPullRequest(newTestAPI(ts), "TheLynk/Shipwright", 11, "https://nightly.link", sohFiles())
}

// TestPullRequest_MarkdownLinks resolves from the description without touching
// the HTML fallback.
func TestPullRequest_MarkdownLinks(t *testing.T) {
	t.Parallel()

	ts := newPullServer(t,
		`"Builds: [soh-linux.zip](https://nightly.link/x/y/soh-linux.zip) and [notes](https://example.com/notes)"`,
		`<html>must not be consulted</html>`)

	l := newPullLocator(ts)

	asset, err := l.ResolveAsset(context.Background(), platform.Linux)
	require.NoError(t, err)
	require.Equal(t, "soh-linux.zip", asset.Name)
	require.Equal(t, "https://nightly.link/x/y/soh-linux.zip", asset.URL)

	// The identifier of a PR build is its download URL.
	id, err := l.LatestIdentifier(context.Background(), platform.Linux)
	require.NoError(t, err)
	require.Equal(t, asset.URL, id)
}

// TestPullRequest_HTMLFallback recovers a link that exists only in rendered HTML.
func TestPullRequest_HTMLFallback(t *testing.T) {
	t.Parallel()

	ts := newPullServer(t,
		`"Description with no artifact links."`,
		`<div><span>soh-mac.zip</span> (12 MB) <a href="https://nightly.link/a/b">download</a></div>`)

	l := newPullLocator(ts)

	asset, err := l.ResolveAsset(context.Background(), platform.Mac)
	require.NoError(t, err)
	require.Equal(t, "soh-mac.zip", asset.Name)
	require.Equal(t, "https://nightly.link/a/b", asset.URL)
}

// TestPullRequest_HTMLFallback_UntrustedHost ignores hrefs outside the trusted host.
func TestPullRequest_HTMLFallback_UntrustedHost(t *testing.T) {
	t.Parallel()

	ts := newPullServer(t,
		`""`,
		`soh-mac.zip <a href="https://evil.example/a/b">download</a>`)

	l := newPullLocator(ts)

	_, err := l.ResolveAsset(context.Background(), platform.Mac)
	require.ErrorIs(t, err, ErrAssetNotFound)
}

// TestPullRequest_MissingOSListsFound lists whatever filenames were found.
func TestPullRequest_MissingOSListsFound(t *testing.T) {
	t.Parallel()

	ts := newPullServer(t,
		`"[soh-windows.zip](https://nightly.link/x/y/soh-windows.zip)"`,
		``)

	l := newPullLocator(ts)

	_, err := l.ResolveAsset(context.Background(), platform.Linux)
	require.ErrorIs(t, err, ErrAssetNotFound)
	require.ErrorContains(t, err, "soh-linux.zip")
	require.ErrorContains(t, err, "soh-windows.zip")
}

// TestPullRequest_UnsupportedKey fails for a platform absent from the table.
func TestPullRequest_UnsupportedKey(t *testing.T) {
	t.Parallel()

	l := NewPullRequest(nil, "a/b", 1, "https://nightly.link",
		map[platform.OSKey]string{platform.Windows: "soh-windows.zip"})

	_, err := l.ResolveAsset(context.Background(), platform.Linux)
	require.ErrorIs(t, err, platform.ErrUnsupported)
}

// TestExtractMarkdownLinks_FirstWins keeps the first occurrence of a filename.
func TestExtractMarkdownLinks_FirstWins(t *testing.T) {
	t.Parallel()

	wanted := map[string]struct{}{"soh-linux.zip": {}}
	body := "[soh-linux.zip](https://nightly.link/first) then [SOH-Linux.zip](https://nightly.link/second)"

	links := extractMarkdownLinks(body, wanted)
	require.Equal(t, map[string]string{"soh-linux.zip": "https://nightly.link/first"}, links)
}
