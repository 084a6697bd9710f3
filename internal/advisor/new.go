package advisor

import (
	"context"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/nguyentantai21042004/meeting-flow/internal/logger"
	"github.com/nguyentantai21042004/meeting-flow/pkg/executor"
)

type implAdvisor struct {
	executor  executor.Executor
	logger    logger.Logger
	availRAM  func(ctx context.Context) (uint64, error)
	cpuCount  func(ctx context.Context) (int, error)
	gpuBinary string
}

// New creates an Advisor that probes GPUs through nvidia-smi and memory/CPU
// through gopsutil.
func New(exec executor.Executor, log logger.Logger) Advisor {
	return &implAdvisor{
		executor:  exec,
		logger:    log,
		availRAM:  availableRAM,
		cpuCount:  logicalCPUs,
		gpuBinary: "nvidia-smi",
	}
}

func availableRAM(ctx context.Context) (uint64, error) {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return v.Available, nil
}

func logicalCPUs(ctx context.Context) (int, error) {
	return cpu.CountsWithContext(ctx, true)
}
