// Package preflight prepares the filesystem before the service starts
// writing to it.
package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/studybrief/brief/cmd/brief/internal/constants"
)

// FileCheck represents a required file or directory
type FileCheck struct {
	Path      string
	IsDir     bool
	FailFatal bool // failure makes ValidateAndCreate return an error
}

// CheckResult represents the result of a preflight check
type CheckResult struct {
	Path    string
	Exists  bool
	Created bool
	Error   error
}

// LogChecks returns the checks needed before file logging starts in dir.
// An empty dir means console-only logging and needs no checks.
func LogChecks(dir string) []FileCheck {
	if dir == "" {
		return nil
	}
	return []FileCheck{
		{Path: dir, IsDir: true, FailFatal: true},
	}
}

// ValidateAndCreate checks if required files and directories exist
// and creates them if they don't. Returns results for all checks and the
// first fatal error.
func ValidateAndCreate(checks []FileCheck) ([]CheckResult, error) {
	results := make([]CheckResult, 0, len(checks))
	var fatal error

	for _, check := range checks {
		result := run(check)
		if result.Error != nil && check.FailFatal && fatal == nil {
			fatal = result.Error
		}
		results = append(results, result)
	}

	return results, fatal
}

func run(check FileCheck) CheckResult {
	result := CheckResult{Path: check.Path}

	info, err := os.Stat(check.Path)
	switch {
	case err == nil:
		result.Exists = true
		if check.IsDir && !info.IsDir() {
			result.Error = fmt.Errorf("path exists but is not a directory: %s", check.Path)
		} else if !check.IsDir && info.IsDir() {
			result.Error = fmt.Errorf("path exists but is a directory: %s", check.Path)
		}

	case os.IsNotExist(err):
		if check.IsDir {
			if err := os.MkdirAll(check.Path, constants.DirPermissions); err != nil {
				result.Error = fmt.Errorf("failed to create directory %s: %w", check.Path, err)
				return result
			}
			result.Created = true
			return result
		}

		if err := os.MkdirAll(filepath.Dir(check.Path), constants.DirPermissions); err != nil {
			result.Error = fmt.Errorf("failed to create parent directory for %s: %w", check.Path, err)
			return result
		}
		// O_EXCL: never clobber a file created in the meantime
		f, err := os.OpenFile(check.Path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, constants.FilePermissions)
		if err != nil {
			result.Error = fmt.Errorf("failed to create file %s: %w", check.Path, err)
			return result
		}
		_ = f.Close()
		result.Created = true

	default:
		result.Error = fmt.Errorf("failed to check path %s: %w", check.Path, err)
	}

	return result
}
