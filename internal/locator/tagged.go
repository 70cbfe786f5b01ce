package locator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/Jepvid/HM64Updatescripts/internal/api/github"
	"github.com/Jepvid/HM64Updatescripts/internal/config"
	"github.com/Jepvid/HM64Updatescripts/internal/domain/release"
	"github.com/Jepvid/HM64Updatescripts/internal/logger"
	"github.com/Jepvid/HM64Updatescripts/internal/platform"
)

// errNoReleases is returned when the repository has no releases at all.
var errNoReleases = errors.New("no releases or pre-releases found")

// archiveExtension is the only archive format the ports publish.
const archiveExtension = ".zip"

// TaggedRelease follows tagged GitHub releases.
// The asset for an OS is picked from the release's structured asset list by a
// per-OS word: either as the "-<word>.zip" suffix or as a plain substring.
type TaggedRelease struct {
	// client queries the releases API.
	client *github.Client
	// repo is the owner/name slug.
	repo string
	// mode selects suffix or substring matching.
	mode config.MatchMode
	// words maps OS keys to their match word; absent key means no build.
	words map[platform.OSKey]string
	// cached holds the release fetched by the first call.
	cached *release.Release
}

// NewTaggedRelease builds the tagged-release locator.
func NewTaggedRelease(
	client *github.Client,
	repo string,
	mode config.MatchMode,
	words map[platform.OSKey]string,
) *TaggedRelease {
	return &TaggedRelease{
		client: client,
		repo:   repo,
		mode:   mode,
		words:  words,
	}
}

// LatestIdentifier returns the tag of the newest release.
func (l *TaggedRelease) LatestIdentifier(ctx context.Context, _ platform.OSKey) (string, error) {
	rel, err := l.fetch(ctx)
	if err != nil {
		return "", err
	}

	return rel.Identifier, nil
}

// ResolveAsset picks the first asset matching the OS word.
// The match is case-insensitive and independent of list ordering as long as
// exactly one asset fits.
func (l *TaggedRelease) ResolveAsset(ctx context.Context, key platform.OSKey) (*release.Asset, error) {
	word, ok := l.words[key]
	if !ok {
		return nil, unsupportedKey(key)
	}

	rel, err := l.fetch(ctx)
	if err != nil {
		return nil, err
	}

	for _, asset := range rel.Assets {
		if l.matches(asset.Name, word) {
			logger.InfoKV(ctx, "Selected release asset", "asset", asset.Name)

			return &asset, nil
		}
	}

	return nil, fmt.Errorf(
		"%w for os %s (candidates: %s)",
		ErrAssetNotFound, key, strings.Join(release.AssetNames(rel.Assets), ", "),
	)
}

// matches applies the configured match mode to a single asset name.
func (l *TaggedRelease) matches(name, word string) bool {
	name = strings.ToLower(name)
	word = strings.ToLower(word)

	if l.mode == config.MatchSubstring {
		return strings.Contains(name, word) && strings.HasSuffix(name, archiveExtension)
	}

	return strings.HasSuffix(name, "-"+word+archiveExtension)
}

// fetch retrieves and caches the newest release.
// The latest endpoint is tried first; repositories that only publish
// pre-releases have no tagged latest, so the full listing is the fallback.
func (l *TaggedRelease) fetch(ctx context.Context) (*release.Release, error) {
	if l.cached != nil {
		return l.cached, nil
	}

	remote, err := l.client.LatestRelease(ctx, l.repo)
	if errors.Is(err, github.ErrNotFound) {
		logger.Info(ctx, "No release tagged latest, listing all releases")

		remote, err = l.newestOfAll(ctx)
	}

	if err != nil {
		return nil, err
	}

	l.cached = toDomain(remote)

	return l.cached, nil
}

// newestOfAll picks the newest entry of the full release listing.
// When every tag parses as a semantic version the highest version wins,
// deliberately overriding the listing order so a re-published older tag
// cannot masquerade as the newest build; otherwise the remote's
// newest-first ordering is trusted as-is.
func (l *TaggedRelease) newestOfAll(ctx context.Context) (*github.Release, error) {
	releases, err := l.client.Releases(ctx, l.repo)
	if err != nil {
		return nil, err
	}

	if len(releases) == 0 {
		return nil, errNoReleases
	}

	newest := &releases[0]

	newestVersion, err := semver.NewVersion(newest.TagName)
	if err != nil {
		return newest, nil
	}

	for i := 1; i < len(releases); i++ {
		candidate, parseErr := semver.NewVersion(releases[i].TagName)
		if parseErr != nil {
			// Mixed tag schemes; fall back to the remote's ordering.
			return &releases[0], nil
		}

		if candidate.GreaterThan(newestVersion) {
			newest, newestVersion = &releases[i], candidate
		}
	}

	return newest, nil
}

// toDomain converts an API release into the domain model.
func toDomain(remote *github.Release) *release.Release {
	assets := make([]release.Asset, 0, len(remote.Assets))
	for _, asset := range remote.Assets {
		assets = append(assets, release.Asset{
			Name: asset.Name,
			URL:  asset.BrowserDownloadURL,
		})
	}

	return &release.Release{
		Identifier: remote.TagName,
		Assets:     assets,
	}
}
