package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
)

// Default endpoints of the public GitHub service.
const (
	// DefaultAPIBaseURL is the REST API endpoint.
	DefaultAPIBaseURL = "https://api.github.com"
	// DefaultHTMLBaseURL is the web endpoint serving rendered pages.
	DefaultHTMLBaseURL = "https://github.com"

	// defaultUserAgent identifies this tool; GitHub rejects anonymous agents.
	defaultUserAgent = "hm64-updater"
)

var (
	// ErrUnexpectedStatus is returned for any non-success HTTP status.
	ErrUnexpectedStatus = errors.New("unexpected http status")
	// ErrNotFound is returned for a 404, so callers can fall back without
	// string-matching the transport error.
	ErrNotFound = errors.New("not found")
)

// ReleaseAsset is one downloadable file attached to a release.
type ReleaseAsset struct {
	// Name is the asset filename.
	Name string `json:"name"`
	// BrowserDownloadURL is the direct download location.
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Release is the subset of the releases API response this tool reads.
type Release struct {
	// TagName is the release tag.
	TagName string `json:"tag_name"`
	// Assets are the attached files, newest listing order preserved.
	Assets []ReleaseAsset `json:"assets"`
}

// commit is the subset of the commits API response this tool reads.
type commit struct {
	SHA string `json:"sha"`
}

// pullRequest is the subset of the pulls API response this tool reads.
type pullRequest struct {
	Body string `json:"body"`
}

// Client is a thin GitHub REST and HTML client.
// It carries no authentication: every endpoint this tool needs is public.
type Client struct {
	// APIBaseURL is the REST endpoint, overridable for tests.
	APIBaseURL string
	// HTMLBaseURL is the web endpoint, overridable for tests.
	HTMLBaseURL string
	// UserAgent is sent with every request.
	UserAgent string
	// HTTPClient performs the requests.
	HTTPClient *http.Client
}

// NewClient returns a Client with public GitHub defaults.
// A nil httpClient falls back to http.DefaultClient.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		APIBaseURL:  DefaultAPIBaseURL,
		HTMLBaseURL: DefaultHTMLBaseURL,
		UserAgent:   defaultUserAgent,
		HTTPClient:  httpClient,
	}
}

// LatestRelease fetches the release tagged latest for the repository.
// A repository with no tagged latest release yields ErrNotFound.
func (c *Client) LatestRelease(ctx context.Context, repo string) (*Release, error) {
	var result Release
	if err := c.getJSON(ctx, c.apiURL("repos", repo, "releases", "latest"), &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// Releases fetches all releases including pre-releases, newest first as the
// remote orders them.
func (c *Client) Releases(ctx context.Context, repo string) ([]Release, error) {
	var result []Release
	if err := c.getJSON(ctx, c.apiURL("repos", repo, "releases"), &result); err != nil {
		return nil, err
	}

	return result, nil
}

// BranchHead fetches the latest commit SHA of the branch.
func (c *Client) BranchHead(ctx context.Context, repo, branch string) (string, error) {
	var result commit
	if err := c.getJSON(ctx, c.apiURL("repos", repo, "commits", branch), &result); err != nil {
		return "", err
	}

	return result.SHA, nil
}

// PullRequestBody fetches the raw description text of a pull request.
// An empty body is not an error; the caller decides how to proceed.
func (c *Client) PullRequestBody(ctx context.Context, repo string, number int) (string, error) {
	var result pullRequest
	if err := c.getJSON(ctx, c.apiURL("repos", repo, "pulls", fmt.Sprint(number)), &result); err != nil {
		return "", err
	}

	return result.Body, nil
}

// PullRequestPage fetches the rendered HTML page of a pull request.
// Used as a fallback when the description carries no artifact links.
func (c *Client) PullRequestPage(ctx context.Context, repo string, number int) (string, error) {
	body, err := c.get(ctx, c.htmlURL(repo, "pull", fmt.Sprint(number)))
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// getJSON performs a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return err
	}

	if err = json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}

	return nil
}

// get performs a GET with the client's user agent and returns the body bytes.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.UserAgent)

	response, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", rawURL, ErrNotFound)
	}

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s, %s: %w", rawURL, response.Status, ErrUnexpectedStatus)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}

	return body, nil
}

// apiURL composes a REST endpoint path, normalizing duplicate slashes.
func (c *Client) apiURL(segments ...string) string {
	return joinURL(c.APIBaseURL, segments...)
}

// htmlURL composes a web endpoint path, normalizing duplicate slashes.
func (c *Client) htmlURL(segments ...string) string {
	return joinURL(c.HTMLBaseURL, segments...)
}

// joinURL appends path segments to a base URL.
func joinURL(base string, segments ...string) string {
	parsed, err := url.Parse(base)
	if err != nil {
		// Fall through with the raw base; the request will surface the problem.
		return base + "/" + path.Join(segments...)
	}

	parsed.Path = path.Join(append([]string{parsed.Path}, segments...)...)

	return parsed.String()
}
