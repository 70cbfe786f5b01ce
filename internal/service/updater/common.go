package updater

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-ps"

	"github.com/Jepvid/HM64Updatescripts/internal/logger"
	"github.com/Jepvid/HM64Updatescripts/internal/platform"
)

// resolvePlatform is swapped in tests to simulate an unsupported OS.
//
//nolint:gochecknoglobals
var resolvePlatform = platform.Current

// resolveInstallRoot picks the installation directory: the CLI override wins,
// then the configured root, then the directory containing this executable,
// since the ports have always lived next to their update tool.
func resolveInstallRoot(override, configured string) (string, error) {
	if override != "" {
		return filepath.Clean(override), nil
	}

	if configured != "" {
		return filepath.Clean(configured), nil
	}

	executable, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}

	return filepath.Dir(executable), nil
}

// terminatePortProcesses kills running processes whose executable name is in
// the configured list, so the extraction cannot overwrite files of a live
// game. An empty list disables the step.
func (r *runner) terminatePortProcesses(ctx context.Context) error {
	if len(r.cfg.Executables) == 0 {
		return nil
	}

	targets := sliceToSet(r.cfg.Executables)

	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		processID := process.Pid()
		if processID == thisProcessID {
			continue
		}

		if _, found := targets[process.Executable()]; !found {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(processID)
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}

		logger.InfoKV(ctx, "Terminated running process", "name", process.Executable(), "pid", processID)
	}

	return nil
}

// sliceToSet converts a slice to a set for quick lookups.
func sliceToSet[T comparable](elements []T) map[T]struct{} {
	result := make(map[T]struct{}, len(elements))
	for _, value := range elements {
		result[value] = struct{}{}
	}

	return result
}
