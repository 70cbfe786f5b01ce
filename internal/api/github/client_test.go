package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestClient points a Client at the provided httptest server for both
// REST and HTML endpoints.
func newTestClient(ts *httptest.Server) *Client {
	client := NewClient(ts.Client())
	client.APIBaseURL = ts.URL
	client.HTMLBaseURL = ts.URL

	return client
}

// TestLatestRelease decodes the tag and asset list from the releases endpoint.
func TestLatestRelease(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/HarbourMasters/2ship2harkinian/releases/latest",
		func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{
				"tag_name": "1.1.2",
				"assets": [
					{"name": "2ship-1.1.2-Win64.zip", "browser_download_url": "https://example.com/w"},
					{"name": "2ship-1.1.2-Linux.zip", "browser_download_url": "https://example.com/l"}
				]
			}`))
		})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	release, err := newTestClient(ts).LatestRelease(context.Background(), "HarbourMasters/2ship2harkinian")
	require.NoError(t, err)
	require.Equal(t, "1.1.2", release.TagName)
	require.Len(t, release.Assets, 2)
	require.Equal(t, "2ship-1.1.2-Linux.zip", release.Assets[1].Name)
}

// TestLatestRelease_NotFound maps a 404 to ErrNotFound so callers can fall back.
func TestLatestRelease_NotFound(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	_, err := newTestClient(ts).LatestRelease(context.Background(), "a/b")
	require.ErrorIs(t, err, ErrNotFound)
}

// TestBranchHead decodes the commit SHA.
func TestBranchHead(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/HarbourMasters/Shipwright/commits/develop",
		func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"sha": "deadbeefcafe"}`))
		})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	sha, err := newTestClient(ts).BranchHead(context.Background(), "HarbourMasters/Shipwright", "develop")
	require.NoError(t, err)
	require.Equal(t, "deadbeefcafe", sha)
}

// TestGet_UnexpectedStatus wraps non-success statuses with URL and status text.
func TestGet_UnexpectedStatus(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).Releases(context.Background(), "a/b")
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	require.ErrorContains(t, err, "403")
	require.ErrorContains(t, err, ts.URL)
}

// TestPullRequestBodyAndPage exercise both the REST body and the rendered page path.
func TestPullRequestBodyAndPage(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/TheLynk/Shipwright/pulls/11",
		func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"body": "[soh-linux.zip](https://nightly.link/x/y/soh-linux.zip)"}`))
		})
	mux.HandleFunc("/TheLynk/Shipwright/pull/11",
		func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>soh-mac.zip</html>`))
		})

	ts := httptest.NewServer(mux)
	defer ts.Close()

	client := newTestClient(ts)

	body, err := client.PullRequestBody(context.Background(), "TheLynk/Shipwright", 11)
	require.NoError(t, err)
	require.Contains(t, body, "soh-linux.zip")

	page, err := client.PullRequestPage(context.Background(), "TheLynk/Shipwright", 11)
	require.NoError(t, err)
	require.Contains(t, page, "soh-mac.zip")
}
