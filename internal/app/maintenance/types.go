package maintenance

import "time"

type GCOptions struct {
	// PruneAge keeps unreferenced data younger than this. Zero prunes
	// everything unreferenced.
	PruneAge time.Duration
}

type GCResult struct {
	Cutoff time.Time
}
