package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	goupdate "github.com/doitdistributed/go-update"
	"github.com/klauspost/compress/zip"

	"github.com/Jepvid/HM64Updatescripts/internal/logger"
)

var (
	// ErrDownload is returned on a non-success transport status while
	// fetching an asset. Cleanup of partial files is the orchestrator's job.
	ErrDownload = errors.New("download failed")
	// ErrExtract is returned for a corrupt archive or a write failure while
	// unpacking. The installed-state record is never advanced past it, so a
	// re-run retries from scratch.
	ErrExtract = errors.New("extract failed")
)

const (
	// stagingPermissions is the mode of the staging directory.
	stagingPermissions os.FileMode = 0o755

	// defaultEntryMode is applied to archive entries without permission bits.
	defaultEntryMode os.FileMode = 0o644
)

// Fetcher downloads assets into a staging directory and unpacks archives
// over an installation root.
type Fetcher struct {
	// httpClient performs the downloads.
	httpClient *http.Client
	// stagingDir holds in-flight downloads for the duration of one run.
	stagingDir string
}

// New creates a Fetcher staging downloads under stagingDir.
// A nil httpClient falls back to http.DefaultClient.
func New(httpClient *http.Client, stagingDir string) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Fetcher{
		httpClient: httpClient,
		stagingDir: filepath.Clean(stagingDir),
	}
}

// Download streams the resource at url into the staging area under name and
// returns the local path. The payload is never buffered in memory.
func (f *Fetcher) Download(ctx context.Context, url, name string) (string, error) {
	if err := os.MkdirAll(f.stagingDir, stagingPermissions); err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", err
	}

	response, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %s", ErrDownload, url, err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s, %s", ErrDownload, url, response.Status)
	}

	// The name comes from the remote listing; keep only its base so a
	// crafted asset name cannot point outside the staging directory.
	outputPath := filepath.Join(f.stagingDir, filepath.Base(name))

	outputFile, err := os.Create(filepath.Clean(outputPath))
	if err != nil {
		return "", fmt.Errorf("create %s: %w", outputPath, err)
	}

	_, err = io.Copy(outputFile, response.Body)
	if err != nil {
		_ = outputFile.Close()

		return "", fmt.Errorf("%w: %s: %s", ErrDownload, url, err)
	}

	if err = outputFile.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", outputPath, err)
	}

	logger.InfoKV(ctx, "Downloaded asset", "url", url, "path", outputPath)

	return outputPath, nil
}

// Extract unpacks every entry of the zip archive into destinationRoot,
// overwriting existing files of the same relative path. Overwriting is how
// "update" works here: no diffing, no backup of replaced files.
func (f *Fetcher) Extract(ctx context.Context, archivePath, destinationRoot string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("%w: open %s: %s", ErrExtract, archivePath, err)
	}

	defer func() {
		_ = reader.Close()
	}()

	for _, entry := range reader.File {
		if err = f.extractEntry(entry, destinationRoot); err != nil {
			return err
		}
	}

	logger.InfoKV(ctx, "Extracted archive", "archive", archivePath, "root", destinationRoot)

	return nil
}

// ClearStaging removes the staging directory and everything in it.
func (f *Fetcher) ClearStaging() error {
	if err := os.RemoveAll(f.stagingDir); err != nil {
		return fmt.Errorf("clear staging directory: %w", err)
	}

	return nil
}

// extractEntry writes a single archive entry under the destination root.
// Regular files go through go-update so an in-use executable can be replaced
// in place on Windows.
func (f *Fetcher) extractEntry(entry *zip.File, destinationRoot string) error {
	target, err := entryTarget(entry.Name, destinationRoot)
	if err != nil {
		return err
	}

	if entry.FileInfo().IsDir() {
		if err = os.MkdirAll(target, stagingPermissions); err != nil {
			return fmt.Errorf("%w: create %s: %s", ErrExtract, target, err)
		}

		return nil
	}

	if err = os.MkdirAll(filepath.Dir(target), stagingPermissions); err != nil {
		return fmt.Errorf("%w: create %s: %s", ErrExtract, filepath.Dir(target), err)
	}

	contents, err := entry.Open()
	if err != nil {
		return fmt.Errorf("%w: open entry %s: %s", ErrExtract, entry.Name, err)
	}

	defer func() {
		_ = contents.Close()
	}()

	if err = applyEntry(contents, target, entryMode(entry)); err != nil {
		return fmt.Errorf("%w: write %s: %s", ErrExtract, target, err)
	}

	return nil
}

// applyEntry replaces the target file with the entry contents.
func applyEntry(contents io.Reader, target string, mode os.FileMode) error {
	// go-update renames the previous file away before writing, so the
	// target has to exist even on a fresh install. WriteFile opens and
	// closes in one step, leaving no descriptor behind per entry.
	if _, err := os.Stat(target); err != nil && os.IsNotExist(err) {
		if err = os.WriteFile(filepath.Clean(target), nil, mode); err != nil {
			return err
		}
	}

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: mode,
	}

	if err := goupdate.Apply(contents, options); err != nil {
		return err
	}

	// On Windows the replaced file survives as .old; drop it.
	oldName := target + ".old"
	if _, err := os.Stat(oldName); err == nil {
		_ = os.Remove(oldName)
	}

	return nil
}

// entryTarget resolves an entry name below the destination root and rejects
// entries that would escape it.
func entryTarget(name, destinationRoot string) (string, error) {
	target := filepath.Clean(filepath.Join(destinationRoot, name))

	root := filepath.Clean(destinationRoot)
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: entry %s escapes destination", ErrExtract, name)
	}

	return target, nil
}

// entryMode returns the permission bits to apply to an extracted file.
func entryMode(entry *zip.File) os.FileMode {
	if perm := entry.Mode().Perm(); perm != 0 {
		return perm
	}

	return defaultEntryMode
}
