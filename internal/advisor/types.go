package advisor

// Hardware is a snapshot of the compute resources relevant to transcription.
type Hardware struct {
	GPU          bool   `json:"gpu"`
	GPUName      string `json:"gpu_name,omitempty"`
	AvailableRAM uint64 `json:"available_ram"`
	LogicalCPUs  int    `json:"logical_cpus"`
}

// Profile is the engine configuration handed to the transcription adapter.
// Threads == 0 lets the engine pick.
type Profile struct {
	Device      string `json:"device"`
	ComputeType string `json:"compute_type"`
	ModelSize   string `json:"model_size"`
	BatchSize   int    `json:"batch_size"`
	Threads     int    `json:"threads"`
	BeamSize    int    `json:"beam_size"`
}

// Overrides are explicit caller choices. Zero values mean "use the recommendation".
type Overrides struct {
	Device      string
	ModelSize   string
	ComputeType string
	BatchSize   int
	Threads     int
	BeamSize    int
}

const (
	DeviceCPU  = "cpu"
	DeviceCUDA = "cuda"

	// LowMemoryThreshold is the available RAM below which batching is disabled.
	LowMemoryThreshold uint64 = 4 << 30

	// assumedRAM is used when the memory probe fails.
	assumedRAM uint64 = 4 << 30
)
