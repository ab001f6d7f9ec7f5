// Package scanner finds component sources under a directory and runs the
// props analysis over them in parallel.
package scanner

import (
	"github.com/gnana997/tsproptypes/pkg/analyzer"
	"github.com/gnana997/tsproptypes/pkg/proptypes"
)

// ScanConfig configures discovery and analysis.
type ScanConfig struct {
	// Include glob patterns for file matching, relative to the scan root.
	Include []string
	// Exclude glob patterns. A matching directory is skipped entirely.
	Exclude []string
	// Workers is the number of parallel programs. 0 uses util.GetOptimalPoolSize.
	Workers int
	// Analyzer is passed to analyzer.Parse for every file.
	Analyzer analyzer.Options
	// OptionsKey identifies the Analyzer predicates in the result cache.
	// Scans with different predicates must use different keys.
	OptionsKey string
}

// DefaultScanConfig returns the default configuration, which skips test,
// story and mock files.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Include: []string{
			"**/*.ts",
			"**/*.tsx",
			"**/*.js",
			"**/*.jsx",
		},
		Exclude: []string{
			"node_modules/**",
			"**/node_modules/**",
			".git/**",
			"dist/**",
			"build/**",
			".next/**",
			"coverage/**",
			"out/**",
			".tsproptypes/**",
			"**/*.test.*",
			"**/*.spec.*",
			"**/*.stories.*",
			"**/*.story.*",
			"__tests__/**",
			"**/__tests__/**",
			"**/__mocks__/**",
			"**/__snapshots__/**",
		},
		Analyzer: analyzer.DefaultOptions(),
	}
}

// FileResult is the outcome of analyzing one file.
type FileResult struct {
	File    string
	Program *proptypes.Program
	// Err is set when the file could not be analyzed. Program is nil then.
	Err error
	// Cached is set when the result came from the result cache.
	Cached bool
}

// ScanResult holds per-file results in input order.
type ScanResult struct {
	Files []FileResult
	Stats ScanStats
}

// Programs returns the successful results in file order.
func (r *ScanResult) Programs() []*proptypes.Program {
	out := make([]*proptypes.Program, 0, len(r.Files))
	for _, f := range r.Files {
		if f.Err == nil && f.Program != nil {
			out = append(out, f.Program)
		}
	}
	return out
}

// ScanStats tracks scan performance metrics.
type ScanStats struct {
	FilesDiscovered int
	FilesParsed     int
	FilesFailed     int
	CacheHits       int
	Components      int
	DiscoveryTimeMs int64
	ParseTimeMs     int64
	TotalTimeMs     int64
}
