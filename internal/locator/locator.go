package locator

import (
	"context"
	"errors"
	"fmt"

	"github.com/Jepvid/HM64Updatescripts/internal/api/github"
	"github.com/Jepvid/HM64Updatescripts/internal/config"
	"github.com/Jepvid/HM64Updatescripts/internal/domain/release"
	"github.com/Jepvid/HM64Updatescripts/internal/platform"
)

// Locator answers the two questions one update run asks a remote source:
// what is the newest available identifier, and which asset fits this OS.
// Implementations cache their remote query, so asking both costs one fetch.
type Locator interface {
	// LatestIdentifier returns the identifier compared against the installed
	// record: a release tag, a branch head SHA, or a resolved download URL.
	LatestIdentifier(ctx context.Context, key platform.OSKey) (string, error)
	// ResolveAsset returns exactly one downloadable asset for the OS key.
	ResolveAsset(ctx context.Context, key platform.OSKey) (*release.Asset, error)
}

var (
	// ErrAssetNotFound is returned when no candidate matched the OS key.
	// The message lists whatever candidates were found, to aid diagnosis.
	ErrAssetNotFound = errors.New("no matching asset")
	// errUnknownSource guards the factory against unvalidated configs.
	errUnknownSource = errors.New("unknown update source")
)

// New returns the locator variant selected by the configuration.
// The config must have passed config.Validate.
func New(cfg *config.Config, client *github.Client) (Locator, error) {
	switch cfg.Source {
	case config.SourceRelease:
		return NewTaggedRelease(client, cfg.Repo, cfg.MatchMode, cfg.MatchWords), nil
	case config.SourceNightly:
		return NewNightlyBranch(client, cfg.Repo, cfg.Workflow, cfg.Branch, cfg.TrustedHost, cfg.ArtifactFiles), nil
	case config.SourcePullRequest:
		return NewPullRequest(client, cfg.Repo, cfg.PRNumber, cfg.TrustedHost, cfg.ArtifactFiles), nil
	default:
		return nil, fmt.Errorf("%q: %w", cfg.Source, errUnknownSource)
	}
}

// unsupportedKey reports an OS key absent from a per-OS table.
// Some ports simply do not ship builds for every platform.
func unsupportedKey(key platform.OSKey) error {
	return fmt.Errorf("no build published for %s: %w", key, platform.ErrUnsupported)
}
