package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// IntegrationTestSuite provides a temp directory and a bounded context for
// end-to-end tests that load, scan and write real files.
type IntegrationTestSuite struct {
	suite.Suite
	ctx       context.Context
	cancel    context.CancelFunc
	tempDir   string
	startTime time.Time
}

// SetupSuite runs before all tests in the suite
func (s *IntegrationTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Minute)
	s.startTime = time.Now()

	tempDir, err := os.MkdirTemp("", "pairscan-test-*")
	require.NoError(s.T(), err)
	s.tempDir = tempDir
}

// TearDownSuite runs after all tests in the suite
func (s *IntegrationTestSuite) TearDownSuite() {
	s.cancel()
	if s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}
	s.T().Logf("integration suite completed in %v", time.Since(s.startTime))
}

// Context returns the suite context
func (s *IntegrationTestSuite) Context() context.Context {
	return s.ctx
}

// TempDir returns the suite's temp directory
func (s *IntegrationTestSuite) TempDir() string {
	return s.tempDir
}

// CreateTempFile writes content to name inside the suite's temp directory
func (s *IntegrationTestSuite) CreateTempFile(name string, content []byte) string {
	path := filepath.Join(s.tempDir, name)
	require.NoError(s.T(), os.WriteFile(path, content, 0o600))
	return path
}

// IntegrationTest marks a test as an integration test
func IntegrationTest(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// PerformanceTest checks that a scan meets a throughput floor
type PerformanceTest struct {
	t             *testing.T
	name          string
	minThroughput float64 // pairs/sec
	maxMemory     int64   // bytes
}

// NewPerformanceTest creates a new performance test
func NewPerformanceTest(t *testing.T, name string) *PerformanceTest {
	return &PerformanceTest{t: t, name: name}
}

// WithThroughputTarget sets the minimum pairs per second
func (p *PerformanceTest) WithThroughputTarget(pairsPerSec float64) *PerformanceTest {
	p.minThroughput = pairsPerSec
	return p
}

// WithMemoryTarget sets maximum heap growth
func (p *PerformanceTest) WithMemoryTarget(maxBytes int64) *PerformanceTest {
	p.maxMemory = maxBytes
	return p
}

// Run executes fn, which reports how many pairs it examined and how long it took.
func (p *PerformanceTest) Run(fn func() (pairs int64, duration time.Duration)) {
	p.t.Helper()

	initialMem := CaptureMemoryProfile()
	pairs, duration := fn()
	finalMem := CaptureMemoryProfile()

	if duration <= 0 {
		duration = time.Nanosecond
	}
	throughput := float64(pairs) / duration.Seconds()
	memoryUsed := int64(finalMem.HeapAlloc) - int64(initialMem.HeapAlloc)

	p.t.Logf("Performance Test: %s", p.name)
	p.t.Logf("  Pairs: %d", pairs)
	p.t.Logf("  Duration: %v", duration)
	p.t.Logf("  Throughput: %.0f pairs/sec", throughput)
	p.t.Logf("  Heap Growth: %s", FormatBytes(memoryUsed))

	if p.minThroughput > 0 && throughput < p.minThroughput {
		p.t.Errorf("Throughput %.0f pairs/sec below target %.0f pairs/sec",
			throughput, p.minThroughput)
	}
	if p.maxMemory > 0 && memoryUsed > p.maxMemory {
		p.t.Errorf("Heap growth %s exceeds target %s",
			FormatBytes(memoryUsed), FormatBytes(p.maxMemory))
	}
}

// MemoryProfile captures memory statistics
type MemoryProfile struct {
	HeapAlloc  uint64
	TotalAlloc uint64
	Sys        uint64
	NumGC      uint32
}

// CaptureMemoryProfile captures current memory profile
func CaptureMemoryProfile() *MemoryProfile {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return &MemoryProfile{
		HeapAlloc:  m.HeapAlloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
	}
}

// FormatBytes formats bytes into human-readable string
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < 0 {
		return "-" + FormatBytes(-bytes)
	}
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
