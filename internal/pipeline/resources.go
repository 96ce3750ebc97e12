package pipeline

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// MemoryReport compares the memory a scan needs with what the host has
type MemoryReport struct {
	RequiredBytes  int64
	AvailableBytes uint64
	UsedPercent    float64
	// Tight is set when the scan needs more than half of the available memory
	Tight bool
}

// CheckMemory logs requiredBytes against available host memory and warns
// when it exceeds half of it. It never fails a scan; when host statistics
// are unavailable the report carries only RequiredBytes.
func CheckMemory(logger *zap.Logger, requiredBytes int64) MemoryReport {
	report := MemoryReport{RequiredBytes: requiredBytes}

	vm, err := mem.VirtualMemory()
	if err != nil {
		logger.Debug("host memory statistics unavailable", zap.Error(err))
		return report
	}
	report.AvailableBytes = vm.Available
	report.UsedPercent = vm.UsedPercent
	report.Tight = requiredBytes > 0 && uint64(requiredBytes) > vm.Available/2

	fields := []zap.Field{
		zap.Int64("required_bytes", requiredBytes),
		zap.Uint64("available_bytes", vm.Available),
		zap.Float64("used_percent", vm.UsedPercent),
	}
	if report.Tight {
		logger.Warn("matrix footprint exceeds half of available memory", fields...)
	} else {
		logger.Debug("memory check", fields...)
	}
	return report
}

// ResourceUsage is a snapshot of this process's resource consumption
type ResourceUsage struct {
	MemoryRSS      uint64
	CPUSeconds     float64
	GoroutineCount int
	ThreadCount    int32
}

// Usage samples the current process. Fields that cannot be read stay zero.
func Usage() ResourceUsage {
	usage := ResourceUsage{GoroutineCount: runtime.NumGoroutine()}

	proc, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // pid fits in int32
	if err != nil {
		return usage
	}
	if memInfo, err := proc.MemoryInfo(); err == nil {
		usage.MemoryRSS = memInfo.RSS
	}
	if cpuTime, err := proc.Times(); err == nil {
		usage.CPUSeconds = cpuTime.User + cpuTime.System
	}
	usage.ThreadCount, _ = proc.NumThreads()
	return usage
}
