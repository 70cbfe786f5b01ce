package updater

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Jepvid/HM64Updatescripts/internal/api/github"
	"github.com/Jepvid/HM64Updatescripts/internal/config"
	"github.com/Jepvid/HM64Updatescripts/internal/domain/release"
	"github.com/Jepvid/HM64Updatescripts/internal/fetcher"
	"github.com/Jepvid/HM64Updatescripts/internal/locator"
	"github.com/Jepvid/HM64Updatescripts/internal/logger"
	"github.com/Jepvid/HM64Updatescripts/internal/platform"
	"github.com/Jepvid/HM64Updatescripts/internal/repository/state"
)

// Options are inputs accepted by the updater entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// Preset selects a built-in configuration instead of a settings file.
	Preset string
	// InstallRoot overrides the installation directory.
	InstallRoot string
}

// runner holds the wiring and mutable state for a single update execution.
// It is intentionally unexported; call Run(ctx, *Options) from callers.
type runner struct {
	cfg         *config.Config     // Update source settings.
	osKey       platform.OSKey     // Resolved before any network call.
	installRoot string             // Where builds are unpacked.
	store       state.Repository   // Installed-version record.
	loc         locator.Locator    // Remote source strategy.
	fetch       *fetcher.Fetcher   // Download and extract.
	installed   *release.Installed // Local record, nil on fresh install.
}

// Run executes one update cycle and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "hm64-updater")

	r, err := newRunner(ctx, opts)
	if err != nil {
		return err
	}

	// The staging area is transient: clear it on every exit path, so even a
	// no-op or a failed run leaves nothing behind.
	defer r.cleanup(ctx)

	if err = r.run(ctx); err != nil {
		logger.ErrorKV(ctx, "Update run failed", "error", err)
		return err
	}

	return nil
}

// newRunner loads settings and wires the components for one execution.
// The OS key is resolved here, before anything touches the network.
func newRunner(ctx context.Context, opts *Options) (*runner, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	osKey, err := resolvePlatform()
	if err != nil {
		return nil, err
	}

	installRoot, err := resolveInstallRoot(opts.InstallRoot, cfg.InstallRoot)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: time.Duration(cfg.Timeout)}

	apiClient := github.NewClient(httpClient)
	if cfg.APIBaseURL != "" {
		apiClient.APIBaseURL = cfg.APIBaseURL
	}

	if cfg.HTMLBaseURL != "" {
		apiClient.HTMLBaseURL = cfg.HTMLBaseURL
	}

	loc, err := locator.New(cfg, apiClient)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Updater ready",
		"source", string(cfg.Source), "repo", cfg.Repo, "os", osKey.String(), "root", installRoot)

	return &runner{
		cfg:         cfg,
		osKey:       osKey,
		installRoot: installRoot,
		store:       state.NewFileRepository(filepath.Join(installRoot, cfg.StateFile)),
		loc:         loc,
		fetch:       fetcher.New(httpClient, filepath.Join(installRoot, cfg.StagingDir)),
	}, nil
}

// run sequences one update cycle:
// 1) Load the installed-version record.
// 2) Query the remote identifier.
// 3) Compare; equal means up to date.
// 4) Resolve the per-OS asset.
// 5) Stop running port processes.
// 6) Download to staging and extract over the install root.
// 7) Persist the new record.
func (r *runner) run(ctx context.Context) error {
	if err := r.loadInstalled(ctx); err != nil {
		return err
	}

	remoteID, err := r.loc.LatestIdentifier(ctx, r.osKey)
	if err != nil {
		return fmt.Errorf("query remote source: %w", err)
	}

	if r.installed != nil && r.installed.Identifier() == remoteID {
		logger.InfoKV(ctx, "Already up to date", "identifier", remoteID)
		return nil
	}

	logger.InfoKV(ctx, "Update needed",
		"installed", r.installed.Identifier(), "remote", remoteID)

	asset, err := r.loc.ResolveAsset(ctx, r.osKey)
	if err != nil {
		return fmt.Errorf("resolve asset: %w", err)
	}

	if err = r.terminatePortProcesses(ctx); err != nil {
		return fmt.Errorf("stop running processes: %w", err)
	}

	archivePath, err := r.fetch.Download(ctx, asset.URL, asset.Name)
	if err != nil {
		return fmt.Errorf("download asset: %w", err)
	}

	if err = r.fetch.Extract(ctx, archivePath, r.installRoot); err != nil {
		return fmt.Errorf("extract asset: %w", err)
	}

	// Only now, with the files actually in place, is the record advanced.
	if err = r.store.Save(ctx, r.newInstalled(remoteID, asset)); err != nil {
		return fmt.Errorf("persist installed state: %w", err)
	}

	logger.InfoKV(ctx, "Updated", "identifier", remoteID, "asset", asset.Name)

	return nil
}

// loadInstalled reads the local record; its absence means a fresh install.
func (r *runner) loadInstalled(ctx context.Context) error {
	installed, err := r.store.Load(ctx)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			logger.Info(ctx, "No version record found, fresh install")
			return nil
		}

		return fmt.Errorf("load installed state: %w", err)
	}

	logger.InfoKV(ctx, "Installed version", "identifier", installed.Identifier())
	r.installed = installed

	return nil
}

// newInstalled builds the record variant matching the configured source.
func (r *runner) newInstalled(remoteID string, asset *release.Asset) *release.Installed {
	switch r.cfg.Source {
	case config.SourceNightly:
		return &release.Installed{
			LatestCommit: remoteID,
		}
	case config.SourcePullRequest:
		return &release.Installed{
			DownloadURL: asset.URL,
			Repo:        r.cfg.Repo,
			PRNumber:    r.cfg.PRNumber,
		}
	default:
		return &release.Installed{
			InstalledVersion: remoteID,
			Repo:             r.cfg.Repo,
		}
	}
}

// cleanup removes the staging area. Runs on every exit path.
func (r *runner) cleanup(ctx context.Context) {
	if err := r.fetch.ClearStaging(); err != nil {
		logger.Warnf(ctx, "Could not clear staging area: %v", err)
		return
	}

	logger.Debug(ctx, "Staging area cleared")
}

// loadConfig resolves settings from a preset or the settings file.
func loadConfig(opts *Options) (*config.Config, error) {
	if opts.Preset != "" {
		return config.Preset(opts.Preset)
	}

	return config.Load(opts.ConfigPath)
}
