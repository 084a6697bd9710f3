package advisor

import "context"

// Advisor recommends transcription engine settings for the current machine.
type Advisor interface {
	// Probe takes a snapshot of the available compute resources.
	Probe(ctx context.Context) Hardware
	// Recommend probes the hardware and returns Choose(snapshot, ov).
	Recommend(ctx context.Context, ov Overrides) (Profile, Hardware)
}
