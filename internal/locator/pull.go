package locator

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Jepvid/HM64Updatescripts/internal/api/github"
	"github.com/Jepvid/HM64Updatescripts/internal/domain/release"
	"github.com/Jepvid/HM64Updatescripts/internal/logger"
	"github.com/Jepvid/HM64Updatescripts/internal/platform"
)

// markdownLinkPattern matches markdown links [text](url), tolerant of
// whitespace inside the parentheses.
var markdownLinkPattern = regexp.MustCompile(`(?i)\[([^\]]+)\]\(\s*(https?://[^\s)]+)\s*\)`)

// htmlWindowLimit bounds how far after a filename mention the href may appear.
// Multiple asset mentions closer together than this can shadow each other;
// first match wins, as the page structure gives nothing better to go on.
const htmlWindowLimit = 200

// PullRequest follows build artifacts linked from a pull request.
// There is no release tag: the resolved download URL itself is the identifier.
// The description's markdown links are the primary source; the rendered page
// is scraped as a best-effort fallback for links that only exist in HTML.
type PullRequest struct {
	// client queries the pulls API and the rendered page.
	client *github.Client
	// repo is the owner/name slug.
	repo string
	// number is the pull request number.
	number int
	// trustedHost is the only host scraped hrefs may point at.
	trustedHost string
	// files maps OS keys to artifact filenames; absent key means no build.
	files map[platform.OSKey]string
	// cached maps lowercase filenames to URLs after the first fetch.
	cached map[string]string
}

// NewPullRequest builds the pull-request locator.
func NewPullRequest(
	client *github.Client,
	repo string,
	number int,
	trustedHost string,
	files map[platform.OSKey]string,
) *PullRequest {
	return &PullRequest{
		client:      client,
		repo:        repo,
		number:      number,
		trustedHost: strings.TrimRight(trustedHost, "/"),
		files:       files,
	}
}

// LatestIdentifier returns the download URL resolved for the OS key.
func (l *PullRequest) LatestIdentifier(ctx context.Context, key platform.OSKey) (string, error) {
	asset, err := l.ResolveAsset(ctx, key)
	if err != nil {
		return "", err
	}

	return asset.URL, nil
}

// ResolveAsset returns the artifact link whose text matches the OS filename.
func (l *PullRequest) ResolveAsset(ctx context.Context, key platform.OSKey) (*release.Asset, error) {
	want, ok := l.files[key]
	if !ok {
		return nil, unsupportedKey(key)
	}

	links, err := l.links(ctx)
	if err != nil {
		return nil, err
	}

	url, ok := links[strings.ToLower(want)]
	if !ok {
		return nil, fmt.Errorf(
			"%w for os %s: artifact %q not linked (found: %s)",
			ErrAssetNotFound, key, want, foundNames(links),
		)
	}

	return &release.Asset{
		Name: want,
		URL:  url,
	}, nil
}

// links collects artifact name to URL mappings from the pull request,
// trying the description first and the rendered page second.
// A failed fetch of either source is logged and treated as "no links there":
// the run then fails with a diagnostic listing instead of a transport error,
// matching how the per-game scripts always behaved.
func (l *PullRequest) links(ctx context.Context) (map[string]string, error) {
	if l.cached != nil {
		return l.cached, nil
	}

	wanted := l.wantedNames()

	body, err := l.client.PullRequestBody(ctx, l.repo, l.number)
	if err != nil {
		logger.Warnf(ctx, "Could not fetch PR description: %v", err)
	}

	links := extractMarkdownLinks(body, wanted)
	if len(links) > 0 {
		logger.Info(ctx, "Found artifact links in the PR description")
	} else {
		logger.Info(ctx, "No artifact links in the PR description, scraping the rendered page")

		var page string

		page, err = l.client.PullRequestPage(ctx, l.repo, l.number)
		if err != nil {
			logger.Warnf(ctx, "Could not fetch PR page: %v", err)
		}

		links = l.extractScrapedLinks(page)
		if len(links) > 0 {
			logger.Info(ctx, "Found artifact links in the PR page")
		}
	}

	l.cached = links

	return links, nil
}

// wantedNames returns the lowercase artifact filenames worth collecting.
func (l *PullRequest) wantedNames() map[string]struct{} {
	wanted := make(map[string]struct{}, len(l.files))
	for _, name := range l.files {
		wanted[strings.ToLower(name)] = struct{}{}
	}

	return wanted
}

// extractMarkdownLinks pulls [text](url) links whose text is a wanted
// artifact filename. The first occurrence of a filename wins.
func extractMarkdownLinks(body string, wanted map[string]struct{}) map[string]string {
	links := make(map[string]string, len(wanted))

	for _, match := range markdownLinkPattern.FindAllStringSubmatch(body, -1) {
		text := strings.ToLower(strings.TrimSpace(match[1]))
		if _, ok := wanted[text]; !ok {
			continue
		}

		if _, ok := links[text]; ok {
			continue
		}

		links[text] = strings.TrimSpace(match[2])
	}

	return links
}

// extractScrapedLinks scans rendered HTML for a wanted filename followed
// within a bounded window by an href pointing at the trusted host.
// This recovers links that exist only in rendered HTML, not the raw
// description. It depends on undocumented page structure, so it can
// only ever be best-effort.
func (l *PullRequest) extractScrapedLinks(page string) map[string]string {
	if page == "" || len(l.files) == 0 {
		return map[string]string{}
	}

	names := make([]string, 0, len(l.files))
	for _, name := range l.files {
		names = append(names, regexp.QuoteMeta(strings.ToLower(name)))
	}

	sort.Strings(names)

	pattern := fmt.Sprintf(
		`(?i)(%s)[\s\S]{0,%d}?href=["'](%s/[^\s"'>]+)["']`,
		strings.Join(names, "|"), htmlWindowLimit, regexp.QuoteMeta(l.trustedHost),
	)

	links := make(map[string]string, len(l.files))

	for _, match := range regexp.MustCompile(pattern).FindAllStringSubmatch(page, -1) {
		name := strings.ToLower(strings.TrimSpace(match[1]))
		if _, ok := links[name]; ok {
			continue
		}

		links[name] = strings.TrimSpace(match[2])
	}

	return links
}

// foundNames renders the collected link names for diagnostics.
func foundNames(links map[string]string) string {
	if len(links) == 0 {
		return "none"
	}

	names := make([]string, 0, len(links))
	for name := range links {
		names = append(names, name)
	}

	sort.Strings(names)

	return strings.Join(names, ", ")
}
