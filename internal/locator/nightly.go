package locator

import (
	"context"
	"strings"

	"github.com/Jepvid/HM64Updatescripts/internal/api/github"
	"github.com/Jepvid/HM64Updatescripts/internal/domain/release"
	"github.com/Jepvid/HM64Updatescripts/internal/platform"
)

// NightlyBranch follows the head of a branch whose workflow publishes
// artifacts under fixed per-OS filenames.
// No listing call is needed: the artifact URL is a deterministic template
// host/repo/workflows/workflow/branch/filename.
type NightlyBranch struct {
	// client queries the commits API.
	client *github.Client
	// repo is the owner/name slug.
	repo string
	// workflow is the workflow segment of the artifact URL.
	workflow string
	// branch identifies which head SHA is the build identifier.
	branch string
	// host is the artifact redistribution host.
	host string
	// files maps OS keys to fixed artifact filenames; absent key means no build.
	files map[platform.OSKey]string
	// cachedSHA holds the branch head fetched by the first call.
	cachedSHA string
}

// NewNightlyBranch builds the nightly-branch locator.
func NewNightlyBranch(
	client *github.Client,
	repo, workflow, branch, host string,
	files map[platform.OSKey]string,
) *NightlyBranch {
	return &NightlyBranch{
		client:   client,
		repo:     repo,
		workflow: workflow,
		branch:   branch,
		host:     strings.TrimRight(host, "/"),
		files:    files,
	}
}

// LatestIdentifier returns the latest commit SHA of the branch.
func (l *NightlyBranch) LatestIdentifier(ctx context.Context, _ platform.OSKey) (string, error) {
	if l.cachedSHA != "" {
		return l.cachedSHA, nil
	}

	sha, err := l.client.BranchHead(ctx, l.repo, l.branch)
	if err != nil {
		return "", err
	}

	l.cachedSHA = sha

	return sha, nil
}

// ResolveAsset composes the deterministic artifact URL for the OS key.
func (l *NightlyBranch) ResolveAsset(_ context.Context, key platform.OSKey) (*release.Asset, error) {
	name, ok := l.files[key]
	if !ok {
		return nil, unsupportedKey(key)
	}

	url := strings.Join([]string{l.host, l.repo, "workflows", l.workflow, l.branch, name}, "/")

	return &release.Asset{
		Name: name,
		URL:  url,
	}, nil
}
