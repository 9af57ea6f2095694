package model

import "context"

// ImageGenerator produces an illustrative image for a phase transition.
// Calls are fire-and-forget; failures are tolerated.
type ImageGenerator interface {
	GeneratePhaseImage(ctx context.Context, phase Phase, brief string) error
}
