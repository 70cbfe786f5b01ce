package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Jepvid/HM64Updatescripts/internal/platform"
)

// TestValidate checks per-source required fields and default filling.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing repo.
	err := Validate(&Config{Source: SourceNightly})
	require.Error(t, err)

	// Malformed repo slug.
	err = Validate(&Config{Source: SourceNightly, Repo: "no-owner"})
	require.Error(t, err)

	// Unknown source.
	err = Validate(&Config{Source: "ftp", Repo: "a/b"})
	require.Error(t, err)

	// Release source needs match words.
	err = Validate(&Config{Source: SourceRelease, Repo: "a/b"})
	require.Error(t, err)

	// Nightly source needs branch, workflow and artifact filenames.
	err = Validate(&Config{Source: SourceNightly, Repo: "a/b"})
	require.Error(t, err)

	// Pull-request source needs a PR number.
	err = Validate(&Config{
		Source:        SourcePullRequest,
		Repo:          "a/b",
		ArtifactFiles: map[platform.OSKey]string{platform.Linux: "soh-linux.zip"},
	})
	require.Error(t, err)

	// Valid release config gets defaults filled.
	cfg := &Config{
		Source:     SourceRelease,
		Repo:       "HarbourMasters/2ship2harkinian",
		MatchWords: map[platform.OSKey]string{platform.Linux: "Linux"},
	}

	require.NoError(t, Validate(cfg))
	require.Equal(t, MatchSuffix, cfg.MatchMode)
	require.Equal(t, DefaultStagingDirname, cfg.StagingDir)
	require.Equal(t, DefaultStateFilename, cfg.StateFile)
	require.Equal(t, DefaultTrustedHost, cfg.TrustedHost)
	require.Equal(t, Duration(DefaultTimeout), cfg.Timeout)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		Source:   SourceNightly,
		Repo:     "HarbourMasters/Shipwright",
		Branch:   "develop",
		Workflow: "generate-builds",
		ArtifactFiles: map[platform.OSKey]string{
			platform.Windows: "soh-windows.zip",
			platform.Linux:   "soh-linux.zip",
			platform.Mac:     "soh-mac.zip",
		},
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Source, loaded.Source)
	require.Equal(t, cfg.Repo, loaded.Repo)
	require.Equal(t, cfg.ArtifactFiles, loaded.ArtifactFiles)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestDurationYAML covers the human-edited timeout forms: duration strings,
// legacy integer nanoseconds, and the string form Save writes back.
func TestDurationYAML(t *testing.T) {
	t.Parallel()

	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte("timeout: 10m"), &cfg))
	require.Equal(t, Duration(10*time.Minute), cfg.Timeout)

	require.NoError(t, yaml.Unmarshal([]byte("timeout: 900000000000"), &cfg))
	require.Equal(t, Duration(15*time.Minute), cfg.Timeout)

	require.Error(t, yaml.Unmarshal([]byte("timeout: soon"), &cfg))

	out, err := yaml.Marshal(&Config{Timeout: Duration(10 * time.Minute)})
	require.NoError(t, err)
	require.Contains(t, string(out), "timeout: 10m0s")
}

// TestPresets ensures every built-in preset validates on its own.
func TestPresets(t *testing.T) {
	t.Parallel()

	names := PresetNames()
	require.NotEmpty(t, names)

	for _, name := range names {
		cfg, err := Preset(name)
		require.NoError(t, err, name)
		require.NotEmpty(t, cfg.Repo, name)
	}

	_, err := Preset("does-not-exist")
	require.Error(t, err)
}

// TestPresetSpaghettiHasNoMac documents that the SpaghettiKart release table
// deliberately omits macOS.
func TestPresetSpaghettiHasNoMac(t *testing.T) {
	t.Parallel()

	cfg, err := Preset("spaghetti")
	require.NoError(t, err)

	_, ok := cfg.MatchWords[platform.Mac]
	require.False(t, ok)
}
