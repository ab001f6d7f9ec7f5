// FileCache serves TypeScript sources to checker programs from memory-mapped files.
//
// A scan builds one checker.Program per worker, and every program reads the full
// file set. Mapping each file once and sharing the read-only mapping keeps a
// many-worker scan from reading the same sources N times.
//
// Lifecycle:
//   - Files are mapped lazily on first ReadFile.
//   - Every ReadFile stats the path. A file whose identity, size or mtime changed
//     since it was mapped is mapped again, and the old mapping is retired.
//   - Retired mappings stay alive until ReleaseRetired or Close. Trees parsed
//     from a mapping slice into it, so ReleaseRetired and Invalidate must only
//     be called once no Program built from the old bytes is in use.
package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
)

// FileCache is safe for concurrent use.
type FileCache interface {
	// ReadFile returns the contents of filePath, mapping it on first access
	// and again whenever the file changed on disk.
	ReadFile(filePath string) ([]byte, error)

	// Invalidate drops the mapping for filePath so the next ReadFile sees
	// fresh contents. Slices previously returned for the file become invalid.
	Invalidate(filePath string)

	// ReleaseRetired unmaps the mappings replaced by newer file contents.
	ReleaseRetired()

	// Stats returns current cache metrics.
	Stats() FileCacheStats

	// Close unmaps all files.
	Close() error
}

// FileCacheConfig controls FileCache behavior.
type FileCacheConfig struct {
	// MaxFiles is the maximum number of files kept mapped. 0 means unlimited.
	MaxFiles int

	// MaxMemoryMB caps the total mapped size (virtual memory). 0 means unlimited.
	MaxMemoryMB int

	// Logger for warnings. nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultFileCacheConfig returns limits suited to a component library checkout.
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{
		MaxFiles:    10000,
		MaxMemoryMB: 2048,
	}
}

// FileCacheStats tracks cache performance metrics.
type FileCacheStats struct {
	FilesCached   int
	CacheHits     int64
	CacheMisses   int64
	MmapFailures  int64
	Reloads       int64
	Retired       int
	TotalMappedMB float64
}

type mappedFile struct {
	data mmap.MMap
	file *os.File
	// heap is set instead of data when mmap failed or the file is empty.
	heap []byte
	info os.FileInfo
}

// current reports whether the mapping still matches the file described by info.
func (mf *mappedFile) current(info os.FileInfo) bool {
	return os.SameFile(mf.info, info) &&
		mf.info.Size() == info.Size() &&
		mf.info.ModTime().Equal(info.ModTime())
}

func (mf *mappedFile) bytes() []byte {
	if mf.data != nil {
		return mf.data
	}
	return mf.heap
}

func (mf *mappedFile) size() int64 {
	return int64(len(mf.bytes()))
}

func (mf *mappedFile) release() error {
	var err error
	if mf.data != nil {
		err = mf.data.Unmap()
	}
	if mf.file != nil {
		if cerr := mf.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

type fileCacheImpl struct {
	config *FileCacheConfig
	logger *slog.Logger

	mu      sync.RWMutex
	files   map[string]*mappedFile
	retired []*mappedFile

	statsMu sync.Mutex
	stats   FileCacheStats
}

// NewFileCache creates a FileCache. nil config uses DefaultFileCacheConfig().
func NewFileCache(config *FileCacheConfig) FileCache {
	if config == nil {
		config = DefaultFileCacheConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &fileCacheImpl{
		config: config,
		logger: logger,
		files:  make(map[string]*mappedFile),
	}
}

func (fc *fileCacheImpl) ReadFile(filePath string) ([]byte, error) {
	// A mapping of a file truncated in place faults on access, so the
	// file is checked before its mapping is handed out.
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}

	fc.mu.RLock()
	if mf, ok := fc.files[filePath]; ok && mf.current(info) {
		fc.mu.RUnlock()
		fc.record(func(s *FileCacheStats) { s.CacheHits++ })
		return mf.bytes(), nil
	}
	fc.mu.RUnlock()

	fc.mu.Lock()
	defer fc.mu.Unlock()

	if mf, ok := fc.files[filePath]; ok {
		if mf.current(info) {
			fc.record(func(s *FileCacheStats) { s.CacheHits++ })
			return mf.bytes(), nil
		}
		delete(fc.files, filePath)
		fc.retired = append(fc.retired, mf)
		fc.record(func(s *FileCacheStats) { s.Reloads++ })
		fc.logger.Debug("file changed, remapping", "file", filePath)
	}
	fc.record(func(s *FileCacheStats) { s.CacheMisses++ })

	mf, err := fc.load(filePath)
	if err != nil {
		return nil, err
	}
	fc.files[filePath] = mf
	return mf.bytes(), nil
}

// load opens and maps filePath. Must be called with mu held.
func (fc *fileCacheImpl) load(filePath string) (*mappedFile, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", filePath, err)
	}
	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}

	if err := fc.checkLimitsLocked(stat.Size()); err != nil {
		_ = file.Close()
		return nil, err
	}

	// mmap cannot map zero bytes.
	if stat.Size() == 0 {
		_ = file.Close()
		return &mappedFile{heap: []byte{}, info: stat}, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		fc.logger.Warn("mmap failed, using fallback", "file", filePath, "error", err)
		fc.record(func(s *FileCacheStats) { s.MmapFailures++ })
		_ = file.Close()
		heap, readErr := os.ReadFile(filePath)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read %q after mmap error %v: %w", filePath, err, readErr)
		}
		return &mappedFile{heap: heap, info: stat}, nil
	}

	return &mappedFile{data: data, file: file, info: stat}, nil
}

func (fc *fileCacheImpl) checkLimitsLocked(newSize int64) error {
	if fc.config.MaxFiles > 0 && len(fc.files) >= fc.config.MaxFiles {
		return fmt.Errorf("file cache limit reached: %d files (limit: %d)", len(fc.files), fc.config.MaxFiles)
	}
	if fc.config.MaxMemoryMB > 0 {
		total := fc.mappedMBLocked() + float64(newSize)/(1024*1024)
		if total >= float64(fc.config.MaxMemoryMB) {
			return fmt.Errorf("file cache memory limit reached: %.2f MB (limit: %d MB)", total, fc.config.MaxMemoryMB)
		}
	}
	return nil
}

func (fc *fileCacheImpl) mappedMBLocked() float64 {
	var total int64
	for _, mf := range fc.files {
		total += mf.size()
	}
	return float64(total) / (1024 * 1024)
}

func (fc *fileCacheImpl) Invalidate(filePath string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	mf, ok := fc.files[filePath]
	if !ok {
		return
	}
	delete(fc.files, filePath)
	if err := mf.release(); err != nil {
		fc.logger.Warn("failed to release mapping", "file", filePath, "error", err)
	}
}

func (fc *fileCacheImpl) ReleaseRetired() {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	for _, mf := range fc.retired {
		if err := mf.release(); err != nil {
			fc.logger.Warn("failed to release retired mapping", "error", err)
		}
	}
	fc.retired = nil
}

func (fc *fileCacheImpl) Stats() FileCacheStats {
	fc.mu.RLock()
	cached := len(fc.files)
	retired := len(fc.retired)
	mb := fc.mappedMBLocked()
	fc.mu.RUnlock()

	fc.statsMu.Lock()
	defer fc.statsMu.Unlock()
	stats := fc.stats
	stats.FilesCached = cached
	stats.Retired = retired
	stats.TotalMappedMB = mb
	return stats
}

func (fc *fileCacheImpl) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var errs []error
	for path, mf := range fc.files {
		if err := mf.release(); err != nil {
			errs = append(errs, fmt.Errorf("release %q: %w", path, err))
		}
	}
	for _, mf := range fc.retired {
		if err := mf.release(); err != nil {
			errs = append(errs, fmt.Errorf("release retired mapping: %w", err))
		}
	}
	fc.files = make(map[string]*mappedFile)
	fc.retired = nil

	fc.logger.Debug("file cache closed",
		"cache_hits", fc.stats.CacheHits,
		"cache_misses", fc.stats.CacheMisses,
		"mmap_failures", fc.stats.MmapFailures)

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}
	return nil
}

func (fc *fileCacheImpl) record(update func(*FileCacheStats)) {
	fc.statsMu.Lock()
	update(&fc.stats)
	fc.statsMu.Unlock()
}
