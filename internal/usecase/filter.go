package usecase

import (
	"os"
	"path/filepath"
)

// FilterFolders resolves each path to an absolute one and keeps those that are
// existing directories. Order and duplicates are preserved.
func FilterFolders(paths []string) []string {
	valid := make([]string, 0, len(paths))

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}

		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue
		}

		valid = append(valid, abs)
	}

	return valid
}
