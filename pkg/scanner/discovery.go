package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/gnana997/tsproptypes/pkg/parser"
)

// DiscoverFiles walks rootDir and returns the absolute paths of the source
// files matching cfg, sorted.
func DiscoverFiles(rootDir string, cfg ScanConfig) ([]string, error) {
	if err := validatePatterns(cfg); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped.
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			relPath = path
		}
		relPath = filepath.ToSlash(relPath)

		if excluded(cfg, relPath) {
			if d.IsDir() && path != absRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !included(cfg, relPath) {
			return nil
		}
		if parser.DetectLanguage(path) == parser.LanguageUnknown {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", absRoot, err)
	}

	sort.Strings(files)
	return files, nil
}

// Matches reports whether relPath, relative to the scan root, would be
// discovered under cfg.
func Matches(cfg ScanConfig, relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	return !excluded(cfg, relPath) && included(cfg, relPath) &&
		parser.DetectLanguage(relPath) != parser.LanguageUnknown
}

func validatePatterns(cfg ScanConfig) error {
	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range cfg.Include {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}
	return nil
}

func excluded(cfg ScanConfig, relPath string) bool {
	for _, pattern := range cfg.Exclude {
		if matched, _ := doublestar.PathMatch(pattern, relPath); matched {
			return true
		}
	}
	return false
}

func included(cfg ScanConfig, relPath string) bool {
	if len(cfg.Include) == 0 {
		return true
	}
	for _, pattern := range cfg.Include {
		if matched, _ := doublestar.PathMatch(pattern, relPath); matched {
			return true
		}
	}
	return false
}
