package sheets

import (
	"context"

	"prestes/internal/core"
)

// SummaryWriter publishes the dashboard statistics to an external sheet.
type SummaryWriter interface {
	WriteSummary(ctx context.Context, stats core.Stats) error
}
