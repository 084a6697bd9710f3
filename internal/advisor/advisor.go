package advisor

import (
	"context"
	"strings"
)

// Probe takes a hardware snapshot. Probe failures degrade to conservative
// assumptions (no GPU, 4 GiB RAM, engine-chosen threads) instead of erroring.
func (a *implAdvisor) Probe(ctx context.Context) Hardware {
	hw := Hardware{}

	if name, ok := a.detectGPU(ctx); ok {
		hw.GPU = true
		hw.GPUName = name
	}

	ram, err := a.availRAM(ctx)
	if err != nil {
		a.logger.Warn(ctx, "Cannot read available memory, assuming %d GiB: %v", assumedRAM>>30, err)
		ram = assumedRAM
	}
	hw.AvailableRAM = ram

	cpus, err := a.cpuCount(ctx)
	if err != nil {
		a.logger.Debug(ctx, "Cannot count CPUs: %v", err)
		cpus = 0
	}
	hw.LogicalCPUs = cpus

	a.logger.Debug(ctx, "Hardware: gpu=%t (%s) ram=%.1fGiB cpus=%d",
		hw.GPU, hw.GPUName, float64(hw.AvailableRAM)/(1<<30), hw.LogicalCPUs)
	return hw
}

func (a *implAdvisor) detectGPU(ctx context.Context) (string, bool) {
	if _, err := a.executor.LookPath(a.gpuBinary); err != nil {
		return "", false
	}

	out, err := a.executor.Execute(ctx, a.gpuBinary, "--query-gpu=name", "--format=csv,noheader")
	if err != nil {
		a.logger.Debug(ctx, "%s reported no usable GPU: %v", a.gpuBinary, err)
		return "", false
	}

	first, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	first = strings.TrimSpace(first)
	if first == "" {
		return "", false
	}
	return first, true
}

// Recommend probes the hardware and chooses a profile for it.
func (a *implAdvisor) Recommend(ctx context.Context, ov Overrides) (Profile, Hardware) {
	hw := a.Probe(ctx)
	p := Choose(hw, ov)
	a.logger.Info(ctx, "Engine profile: device=%s model=%s precision=%s batch=%d threads=%d",
		p.Device, p.ModelSize, p.ComputeType, p.BatchSize, p.Threads)
	return p, hw
}

// Choose maps a hardware snapshot to an engine profile, then applies the
// caller's overrides field by field. It is pure.
func Choose(hw Hardware, ov Overrides) Profile {
	device := ov.Device
	if device == "" {
		device = DeviceCPU
		if hw.GPU {
			device = DeviceCUDA
		}
	}

	var p Profile
	switch {
	case device == DeviceCUDA:
		p = Profile{Device: DeviceCUDA, ComputeType: "float16", ModelSize: "medium", BatchSize: 8, Threads: 4, BeamSize: 5}
	case hw.AvailableRAM >= LowMemoryThreshold:
		p = Profile{Device: DeviceCPU, ComputeType: "int8", ModelSize: "small", BatchSize: 8, Threads: hw.LogicalCPUs, BeamSize: 5}
	default:
		p = Profile{Device: DeviceCPU, ComputeType: "int8", ModelSize: "small", BatchSize: 1, Threads: hw.LogicalCPUs, BeamSize: 5}
	}

	if ov.ModelSize != "" {
		p.ModelSize = ov.ModelSize
	}
	if ov.ComputeType != "" {
		p.ComputeType = ov.ComputeType
	}
	if ov.BatchSize > 0 {
		p.BatchSize = ov.BatchSize
	}
	if ov.Threads > 0 {
		p.Threads = ov.Threads
	}
	if ov.BeamSize > 0 {
		p.BeamSize = ov.BeamSize
	}
	return p
}
