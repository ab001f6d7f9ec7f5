package util

import "runtime"

// GetOptimalPoolSize returns the worker and parser pool size.
//
// Formula: min(max(runtime.NumCPU() * 2, 4), 32)
//
// Parser pools and scan workers use the same value so a scan worker never
// waits on a parser held by another worker.
func GetOptimalPoolSize() int {
	poolSize := runtime.NumCPU() * 2
	if poolSize < 4 {
		poolSize = 4
	}
	if poolSize > 32 {
		poolSize = 32
	}
	return poolSize
}

// GetOptimalPoolSizeWithOverride returns override when positive, otherwise
// GetOptimalPoolSize().
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
