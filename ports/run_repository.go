package ports

import (
	"context"

	"solarprep/domain/core"
	"solarprep/domain/dataset"
)

// RunRepository defines the interface for build run history storage
type RunRepository interface {
	Create(ctx context.Context, run *dataset.RunSummary) error
	Update(ctx context.Context, run *dataset.RunSummary) error
	GetByID(ctx context.Context, id core.RunID) (*dataset.RunSummary, error)
	ListRecent(ctx context.Context, limit int) ([]*dataset.RunSummary, error)
	// FindLatestReady returns the newest successful run with the given
	// fingerprint, or nil when there is none.
	FindLatestReady(ctx context.Context, fingerprint core.ConfigHash) (*dataset.RunSummary, error)
}
