package updater

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Jepvid/HM64Updatescripts/internal/config"
	"github.com/Jepvid/HM64Updatescripts/internal/domain/release"
	"github.com/Jepvid/HM64Updatescripts/internal/platform"
)

// TestNewInstalled verifies each source writes its own record schema.
func TestNewInstalled(t *testing.T) {
	t.Parallel()

	asset := &release.Asset{
		Name: "soh-linux.zip",
		URL:  "https://nightly.link/x/y/soh-linux.zip",
	}

	r := &runner{cfg: &config.Config{Source: config.SourceRelease, Repo: "a/b"}}
	require.Equal(t,
		&release.Installed{InstalledVersion: "1.1.2", Repo: "a/b"},
		r.newInstalled("1.1.2", asset))

	r = &runner{cfg: &config.Config{Source: config.SourceNightly, Repo: "a/b"}}
	require.Equal(t,
		&release.Installed{LatestCommit: "deadbeef"},
		r.newInstalled("deadbeef", asset))

	r = &runner{cfg: &config.Config{Source: config.SourcePullRequest, Repo: "a/b", PRNumber: 11}}
	require.Equal(t,
		&release.Installed{DownloadURL: asset.URL, Repo: "a/b", PRNumber: 11},
		r.newInstalled(asset.URL, asset))
}

// TestResolveInstallRoot prefers the CLI override, then the configured root,
// then the executable's directory.
func TestResolveInstallRoot(t *testing.T) {
	t.Parallel()

	root, err := resolveInstallRoot(filepath.Join("cli", "root"), filepath.Join("cfg", "root"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join("cli", "root"), root)

	root, err = resolveInstallRoot("", filepath.Join("cfg", "root"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join("cfg", "root"), root)

	root, err = resolveInstallRoot("", "")
	require.NoError(t, err)
	require.NotEmpty(t, root)
}

// TestRun_UnsupportedOSFailsBeforeNetwork drives a full run on a platform
// without builds and checks the failure happens before any remote call.
// Not parallel: it swaps the package-level platform resolver.
func TestRun_UnsupportedOSFailsBeforeNetwork(t *testing.T) {
	var hits int

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++

		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, config.DefaultConfigFilename)
	cfg := &config.Config{
		Source:      config.SourceRelease,
		Repo:        "HarbourMasters/testport",
		MatchWords:  map[platform.OSKey]string{platform.Linux: "Linux"},
		InstallRoot: dir,
		APIBaseURL:  ts.URL,
		HTMLBaseURL: ts.URL,
	}
	require.NoError(t, config.Save(cfgPath, cfg))

	original := resolvePlatform
	resolvePlatform = func() (platform.OSKey, error) {
		return "", fmt.Errorf("no build for os %q: %w", "plan9", platform.ErrUnsupported)
	}

	t.Cleanup(func() { resolvePlatform = original })

	err := Run(context.Background(), &Options{ConfigPath: cfgPath})
	require.ErrorIs(t, err, platform.ErrUnsupported)
	require.Zero(t, hits)
}

// TestLoadConfig_Preset resolves a built-in preset without touching disk.
func TestLoadConfig_Preset(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig(&Options{Preset: "soh-nightly"})
	require.NoError(t, err)
	require.Equal(t, config.SourceNightly, cfg.Source)
	require.Equal(t, "HarbourMasters/Shipwright", cfg.Repo)

	_, err = loadConfig(&Options{Preset: "nope"})
	require.Error(t, err)
}
