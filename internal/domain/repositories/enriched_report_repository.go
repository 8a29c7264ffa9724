package repositories

import (
	"context"

	"github.com/saudedados/leitos-backend/internal/domain/entities"
)

// EnrichedReportRepository persists the reconciliation pipeline's output
// table, one batch per run.
type EnrichedReportRepository interface {
	SaveBatch(ctx context.Context, runID string, reports []entities.EnrichedReport) error
}
