package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Jepvid/HM64Updatescripts/internal/platform"
)

// Source selects which remote listing the updater queries.
type Source string

// Supported update sources.
const (
	// SourceRelease follows tagged GitHub releases.
	SourceRelease Source = "release"
	// SourceNightly follows a branch head and its workflow artifacts.
	SourceNightly Source = "nightly"
	// SourcePullRequest follows build artifacts linked from a pull request.
	SourcePullRequest Source = "pull-request"
)

// Duration wraps time.Duration so the settings file reads and writes
// human-friendly values like "15m" instead of integer nanoseconds.
type Duration time.Duration

// MarshalYAML renders the duration in time.Duration string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML accepts "10m" style strings and bare integer nanoseconds
// written by earlier settings files.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		nanos, numErr := strconv.ParseInt(raw, 10, 64)
		if numErr != nil {
			return fmt.Errorf("parse duration %q: %w", raw, err)
		}

		parsed = time.Duration(nanos)
	}

	*d = Duration(parsed)

	return nil
}

// MatchMode selects how release asset names are matched against the OS word.
type MatchMode string

// Supported asset matching modes for the release source.
const (
	// MatchSuffix requires the name to end with "-<word>.zip".
	MatchSuffix MatchMode = "suffix"
	// MatchSubstring requires the name to contain the word and end with ".zip".
	MatchSubstring MatchMode = "substring"
)

// Config holds everything one update target needs: where to look for builds,
// how to pick the asset for each OS, and where the local installation lives.
// File paths are explicit fields so multiple installation targets can coexist.
type Config struct {
	// Source is the remote listing to query (release, nightly or pull-request).
	Source Source `yaml:"source"`
	// Repo is the GitHub repository in owner/name form.
	Repo string `yaml:"repo"`
	// Branch is the branch whose head identifies a nightly build.
	Branch string `yaml:"branch,omitempty"`
	// Workflow is the workflow segment of the nightly artifact URL.
	Workflow string `yaml:"workflow,omitempty"`
	// PRNumber is the pull request carrying artifact links.
	PRNumber int `yaml:"pr_number,omitempty"`
	// MatchMode picks the asset name policy for the release source.
	MatchMode MatchMode `yaml:"match_mode,omitempty"`
	// MatchWords maps OS keys to the per-OS word used by MatchMode.
	// An OS missing from the table has no build on that platform.
	MatchWords map[platform.OSKey]string `yaml:"match_words,omitempty"`
	// ArtifactFiles maps OS keys to the fixed artifact filenames used by the
	// nightly and pull-request sources.
	ArtifactFiles map[platform.OSKey]string `yaml:"artifact_files,omitempty"`
	// TrustedHost is the redistribution host artifact links must point at.
	TrustedHost string `yaml:"trusted_host,omitempty"`
	// InstallRoot is the directory builds are unpacked into.
	// Empty means the directory containing the running executable.
	InstallRoot string `yaml:"install_root,omitempty"`
	// StagingDir is the staging subdirectory name inside InstallRoot.
	StagingDir string `yaml:"staging_dir,omitempty"`
	// StateFile is the version record filename inside InstallRoot.
	StateFile string `yaml:"state_file,omitempty"`
	// Executables are process names terminated before files are overwritten.
	Executables []string `yaml:"executables,omitempty"`
	// Timeout bounds every HTTP call including the artifact download.
	Timeout Duration `yaml:"timeout,omitempty"`
	// APIBaseURL overrides the GitHub API endpoint. Used by tests.
	APIBaseURL string `yaml:"api_base_url,omitempty"`
	// HTMLBaseURL overrides the GitHub web endpoint. Used by tests.
	HTMLBaseURL string `yaml:"html_base_url,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename for updater settings.
	DefaultConfigFilename = "hm64-updater.yaml"

	// DefaultStateFilename is the version record written next to the install.
	DefaultStateFilename = "version.json"

	// DefaultStagingDirname holds in-flight downloads inside the install root.
	DefaultStagingDirname = "downloads"

	// DefaultTrustedHost is the artifact redistribution host nightly and
	// pull-request builds are served from.
	DefaultTrustedHost = "https://nightly.link"

	// DefaultTimeout bounds HTTP calls; generous because it covers the
	// full artifact download, not just the API round trips.
	DefaultTimeout = 15 * time.Minute

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// repoPartsCount is the owner/name segment count of a repository slug.
	repoPartsCount = 2
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownSource is returned for a source outside the supported set.
	errUnknownSource = errors.New("unknown update source")
	// errRepoRequired is returned when the repository slug is missing or malformed.
	errRepoRequired = errors.New("repository must be provided as owner/name")
	// errBranchRequired is returned when the nightly source lacks a branch.
	errBranchRequired = errors.New("branch must be provided for the nightly source")
	// errWorkflowRequired is returned when the nightly source lacks a workflow.
	errWorkflowRequired = errors.New("workflow must be provided for the nightly source")
	// errPRNumberRequired is returned when the pull-request source lacks a number.
	errPRNumberRequired = errors.New("pull request number must be provided")
	// errArtifactFilesRequired is returned when a fixed-filename source has no table.
	errArtifactFilesRequired = errors.New("artifact filenames must be provided")
	// errMatchWordsRequired is returned when the release source has no word table.
	errMatchWordsRequired = errors.New("match words must be provided for the release source")
	// errUnknownMatchMode is returned for a match mode outside the supported set.
	errUnknownMatchMode = errors.New("unknown match mode")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields per source and fills defaults in place.
//
//nolint:cyclop // Per-source requirements are a flat checklist; splitting would reduce clarity.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	parts := strings.Split(cfg.Repo, "/")
	if len(parts) != repoPartsCount || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("%q: %w", cfg.Repo, errRepoRequired)
	}

	switch cfg.Source {
	case SourceRelease:
		if len(cfg.MatchWords) == 0 {
			return errMatchWordsRequired
		}

		if cfg.MatchMode == "" {
			cfg.MatchMode = MatchSuffix
		}

		if cfg.MatchMode != MatchSuffix && cfg.MatchMode != MatchSubstring {
			return fmt.Errorf("%q: %w", cfg.MatchMode, errUnknownMatchMode)
		}
	case SourceNightly:
		if cfg.Branch == "" {
			return errBranchRequired
		}

		if cfg.Workflow == "" {
			return errWorkflowRequired
		}

		if len(cfg.ArtifactFiles) == 0 {
			return errArtifactFilesRequired
		}
	case SourcePullRequest:
		if cfg.PRNumber <= 0 {
			return errPRNumberRequired
		}

		if len(cfg.ArtifactFiles) == 0 {
			return errArtifactFilesRequired
		}
	default:
		return fmt.Errorf("%q: %w", cfg.Source, errUnknownSource)
	}

	if cfg.TrustedHost == "" {
		cfg.TrustedHost = DefaultTrustedHost
	}

	if cfg.StagingDir == "" {
		cfg.StagingDir = DefaultStagingDirname
	}

	if cfg.StateFile == "" {
		cfg.StateFile = DefaultStateFilename
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = Duration(DefaultTimeout)
	}

	return nil
}
