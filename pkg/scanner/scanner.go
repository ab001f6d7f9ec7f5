package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/tsproptypes/pkg/analyzer"
	"github.com/gnana997/tsproptypes/pkg/checker"
	"github.com/gnana997/tsproptypes/pkg/parser"
	"github.com/gnana997/tsproptypes/pkg/parser/queries"
	"github.com/gnana997/tsproptypes/pkg/proptypes"
	"github.com/gnana997/tsproptypes/pkg/util"
)

// DefaultCacheSize is the number of per-file results kept by default.
const DefaultCacheSize = 4096

// Options configures a Scanner.
type Options struct {
	Logger *slog.Logger
	// Files serves source bytes. nil creates a private mmap-backed cache. A
	// cache passed here must not be shared with another Scanner.
	Files util.FileCache
	// CacheSize is the number of cached per-file results. 0 uses DefaultCacheSize.
	CacheSize int
}

// Scanner parses files into component programs. It is safe for concurrent
// use; every scan builds its own checker programs.
type Scanner struct {
	pm        *parser.ParserManager
	qm        *queries.QueryManager
	files     util.FileCache
	ownsFiles bool
	results   *lru.Cache[string, *proptypes.Program]
	log       *slog.Logger

	activeMu sync.Mutex
	active   int
}

// NewScanner creates a scanner with its own parser pools.
func NewScanner(opts Options) (*Scanner, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	results, err := lru.NewWithEvict(size, func(key string, _ *proptypes.Program) {
		logger.Debug("result cache evicted", "key", key)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}

	files := opts.Files
	owns := false
	if files == nil {
		fcCfg := util.DefaultFileCacheConfig()
		fcCfg.Logger = logger
		files = util.NewFileCache(fcCfg)
		owns = true
	}

	pm := parser.NewParserManager(logger)
	return &Scanner{
		pm:        pm,
		qm:        queries.NewQueryManager(pm, logger),
		files:     files,
		ownsFiles: owns,
		results:   results,
		log:       logger,
	}, nil
}

// Run discovers the files under rootDir and parses them.
func (s *Scanner) Run(ctx context.Context, rootDir string, cfg ScanConfig) (*ScanResult, error) {
	totalStart := time.Now()

	discoveryStart := time.Now()
	files, err := DiscoverFiles(rootDir, cfg)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}
	discoveryMs := time.Since(discoveryStart).Milliseconds()
	s.log.Info("discovery complete", "root", rootDir, "files", len(files), "ms", discoveryMs)

	result, err := s.ParseFiles(ctx, files, cfg)
	if err != nil {
		return nil, err
	}
	result.Stats.FilesDiscovered = len(files)
	result.Stats.DiscoveryTimeMs = discoveryMs
	result.Stats.TotalTimeMs = time.Since(totalStart).Milliseconds()
	return result, nil
}

// ParseFiles analyzes files as one program. Every file may reference the
// others; results are returned in input order. Per-file failures are
// reported in the result and never abort the scan.
func (s *Scanner) ParseFiles(ctx context.Context, files []string, cfg ScanConfig) (*ScanResult, error) {
	return s.ParseTargets(ctx, files, files, cfg)
}

// ParseTargets analyzes targets within a program made of targets and
// related. Related files resolve references but produce no results.
func (s *Scanner) ParseTargets(ctx context.Context, targets, related []string, cfg ScanConfig) (*ScanResult, error) {
	s.begin()
	defer s.end()

	start := time.Now()
	result := &ScanResult{Files: make([]FileResult, len(targets))}

	snap, fingerprint, readErrs := s.fingerprint(targets, related)

	var pending []int
	for i, f := range targets {
		fr := &result.Files[i]
		fr.File = filepath.Clean(f)
		if err, failed := readErrs[fr.File]; failed {
			fr.Err = err
			continue
		}
		if prog, ok := s.results.Get(cacheKey(fingerprint, cfg, fr.File)); ok {
			fr.Program = prog
			fr.Cached = true
			result.Stats.CacheHits++
			continue
		}
		pending = append(pending, i)
	}

	if len(pending) > 0 {
		s.parseAll(ctx, snap, pending, result, cfg)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan canceled: %w", err)
	}

	for i := range result.Files {
		fr := &result.Files[i]
		if fr.Err != nil {
			s.log.Warn("file analysis failed", "file", fr.File, "error", fr.Err)
			result.Stats.FilesFailed++
			continue
		}
		result.Stats.FilesParsed++
		result.Stats.Components += len(fr.Program.Components)
		if !fr.Cached {
			s.results.Add(cacheKey(fingerprint, cfg, fr.File), fr.Program)
		}
	}
	result.Stats.ParseTimeMs = time.Since(start).Milliseconds()

	s.log.Info("parse complete",
		"parsed", result.Stats.FilesParsed,
		"failed", result.Stats.FilesFailed,
		"cached", result.Stats.CacheHits,
		"components", result.Stats.Components,
		"ms", result.Stats.ParseTimeMs)
	return result, nil
}

// snapshot holds the bytes a scan read for each program file. Workers build
// their programs from it so every file is seen exactly as it was hashed.
type snapshot struct {
	files    []string
	contents map[string][]byte
}

func (sn *snapshot) ReadFile(path string) ([]byte, error) {
	if b, ok := sn.contents[filepath.Clean(path)]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("%s is not part of the program", path)
}

// begin and end track running scans. Mappings of files that changed on disk
// are released once no scan can still hold them.
func (s *Scanner) begin() {
	s.activeMu.Lock()
	s.active++
	s.activeMu.Unlock()
}

func (s *Scanner) end() {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	s.active--
	if s.active == 0 {
		s.files.ReleaseRetired()
	}
}

// fingerprint reads every program file once and hashes paths and contents.
// It returns a snapshot of the readable files and the read error of the others.
func (s *Scanner) fingerprint(lists ...[]string) (*snapshot, string, map[string]error) {
	seen := make(map[string]bool)
	readErrs := make(map[string]error)
	snap := &snapshot{contents: make(map[string][]byte)}
	hash := sha256.New()

	for _, list := range lists {
		for _, f := range list {
			f = filepath.Clean(f)
			if seen[f] {
				continue
			}
			seen[f] = true
			content, err := s.files.ReadFile(f)
			if err != nil {
				readErrs[f] = fmt.Errorf("failed to read %s: %w", f, err)
				continue
			}
			snap.files = append(snap.files, f)
			snap.contents[f] = content
			hash.Write([]byte(f))
			hash.Write([]byte{0})
			hash.Write(content)
			hash.Write([]byte{0})
		}
	}
	return snap, hex.EncodeToString(hash.Sum(nil)), readErrs
}

// parseAll runs the pending files through a worker pool. Programs are not
// safe for concurrent use, so each worker builds its own over all files.
func (s *Scanner) parseAll(ctx context.Context, snap *snapshot, pending []int, result *ScanResult, cfg ScanConfig) {
	numWorkers := util.GetOptimalPoolSizeWithOverride(cfg.Workers)
	if numWorkers > len(pending) {
		numWorkers = len(pending)
	}

	opts := cfg.Analyzer
	if opts.Logger == nil {
		opts.Logger = s.log
	}

	jobs := make(chan int, numWorkers*2)
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var (
				prog    *checker.Program
				progErr error
			)
			defer func() {
				if prog != nil {
					prog.Close()
				}
			}()

			for i := range jobs {
				fr := &result.Files[i]
				if err := ctx.Err(); err != nil {
					fr.Err = err
					continue
				}
				if prog == nil && progErr == nil {
					prog, progErr = checker.NewProgram(snap.files, checker.ProgramOptions{
						Parser:  s.pm,
						Queries: s.qm,
						Source:  snap,
						Logger:  s.log,
					})
				}
				if progErr != nil {
					fr.Err = progErr
					continue
				}
				fr.Program, fr.Err = analyzer.Parse(prog, fr.File, opts)
			}
		}()
	}

	for _, i := range pending {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// Invalidate drops the cached source bytes of path. Changed files are
// detected on every scan; this only frees the mapping early. Must not be
// called while a scan is running.
func (s *Scanner) Invalidate(path string) {
	s.files.Invalidate(filepath.Clean(path))
}

// CachedResults returns the number of per-file results in the cache.
func (s *Scanner) CachedResults() int {
	return s.results.Len()
}

// Close releases parser and query manager resources.
func (s *Scanner) Close() error {
	s.results.Purge()
	_ = s.qm.Close()
	_ = s.pm.Close()
	if s.ownsFiles {
		return s.files.Close()
	}
	return nil
}

func cacheKey(fingerprint string, cfg ScanConfig, file string) string {
	return fmt.Sprintf("%s:%t:%s:%s:%s", fingerprint, cfg.Analyzer.CheckDeclarations,
		strings.Join(cfg.Analyzer.ReactModules, ","), cfg.OptionsKey, file)
}
