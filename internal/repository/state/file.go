package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Jepvid/HM64Updatescripts/internal/domain/release"
)

// Repository defines persistence operations for the installed-version record.
type Repository interface {
	Load(ctx context.Context) (*release.Installed, error)
	Save(ctx context.Context, installed *release.Installed) error
}

// FileRepository persists the installed-version record to a JSON file on disk.
// The file layout matches the version.json the ports' update scripts have
// always written: one indented object, overwritten wholesale.
type FileRepository struct {
	// path is the filesystem location of the JSON record.
	path string
	// mu protects concurrent access to the record file.
	mu sync.Mutex
}

var (
	// ErrNotFound is returned when no record has been written yet.
	ErrNotFound = errors.New("installed state not found")
	// ErrMalformed is returned when the record exists but cannot be parsed.
	// The caller must not attempt auto-repair; a human decides.
	ErrMalformed = errors.New("installed state is malformed")
)

// jsonIndent matches the four-space indentation of the historical version.json.
const jsonIndent = "    "

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the record from disk.
// A missing file is reported as ErrNotFound and means "no prior install".
func (r *FileRepository) Load(_ context.Context) (*release.Installed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var installed release.Installed
	if err = json.Unmarshal(contents, &installed); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, err)
	}

	return &installed, nil
}

// Save overwrites the record on disk.
// The write goes through a temp file and a rename so readers never observe a
// partial record. Callers invoke this only after extraction has succeeded.
func (r *FileRepository) Save(_ context.Context, installed *release.Installed) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(installed, "", jsonIndent)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".version-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}

	tmpName := tmp.Name()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("write state file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("close state file: %w", err)
	}

	if err = os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("replace state file: %w", err)
	}

	return nil
}
