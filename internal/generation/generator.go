package generation

import (
	"context"

	"github.com/luocheng/bidwriter/internal/domain"
)

// Generator defines the interface for producing bid-proposal documents.
// This interface serves as a boundary between the application core and
// external AI/LLM services; the task queue only ever sees closures built
// on top of it.
type Generator interface {
	// GenerateOutline produces a full hierarchical outline for the
	// technical section of a bid. Level-1 chapters are derived from the
	// tender's scoring requirements; level-2/3 nodes are expanded one
	// level-1 chapter at a time to keep a single request in flight.
	//
	// A chapter whose expansion fails is returned as a placeholder with
	// its Error field set rather than failing the whole outline.
	GenerateOutline(ctx context.Context, overview, requirements string) (*domain.Outline, error)

	// GenerateContent fills every leaf chapter of the outline with
	// generated prose, walking the tree in order. Individual section
	// failures are recorded on the chapter and do not abort the run.
	// The input outline is not mutated.
	GenerateContent(ctx context.Context, outline *domain.Outline, overview string) (*domain.Outline, error)
}
