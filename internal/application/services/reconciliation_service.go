package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/saudedados/leitos-backend/internal/domain/entities"
	"github.com/saudedados/leitos-backend/internal/infrastructure/observability"
	apperrors "github.com/saudedados/leitos-backend/pkg/errors"
)

// ReconciliationService joins the occupancy feed with the cached registry
// table, derives capacity totals and staleness flags, applies the
// deactivation heuristic and attaches the ICU bed aggregate. It never drops
// rows and never mutates its inputs; every output row is a fresh value.
type ReconciliationService struct {
	classifier *BedClassifier
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(classifier *BedClassifier) *ReconciliationService {
	return &ReconciliationService{classifier: classifier}
}

// Run produces the enriched output table for one reporting run. columns is
// the feed's captured header, validated against the expected schema before
// any row is processed. windows are the monitored staleness windows in days;
// the longest one drives the deactivation proxy.
func (s *ReconciliationService) Run(
	ctx context.Context,
	columns []string,
	rows []entities.OccupancyReport,
	registry []entities.RegistryDocument,
	windows []int,
	runTS time.Time,
) ([]entities.EnrichedReport, error) {
	if err := checkSchema(columns); err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, apperrors.NewInternalError("no staleness windows configured", nil)
	}

	longest := windows[0]
	for _, d := range windows[1:] {
		if d > longest {
			longest = d
		}
	}

	// The cache guarantees at most one document per code, so this join is
	// many-to-one by construction.
	registryByCNES := make(map[string]*entities.RegistryDocument, len(registry))
	for i := range registry {
		doc := &registry[i]
		if doc.Error {
			continue
		}
		if _, ok := registryByCNES[doc.CNES]; !ok {
			registryByCNES[doc.CNES] = doc
		}
	}

	logger := observability.LoggerFromContext(ctx)
	icuTotals, dqErrs := s.classifier.AggregateICUBeds(registry)
	for _, err := range dqErrs {
		logger.Warn().Err(err).Msg("excluding facility from ICU aggregate")
	}

	out := make([]entities.EnrichedReport, 0, len(rows))
	for i := range rows {
		row := rows[i]

		enriched := entities.EnrichedReport{
			OccupancyReport:   row,
			StateCodeOriginal: row.StateCode,
		}
		enriched.StateCode = strings.ToUpper(row.StateCode)

		// Absent counts mean "not offered/reported", not "unknown".
		offeredClinical := fillZero(&enriched.OfferedClinical, row.OfferedClinical)
		offeredICU := fillZero(&enriched.OfferedICU, row.OfferedICU)
		offeredSARIClinical := fillZero(&enriched.OfferedSARIClinical, row.OfferedSARIClinical)
		offeredSARIICU := fillZero(&enriched.OfferedSARIICU, row.OfferedSARIICU)
		occupiedClinical := fillZero(&enriched.OccupiedClinical, row.OccupiedClinical)
		occupiedICU := fillZero(&enriched.OccupiedICU, row.OccupiedICU)
		occupiedSARIClinical := fillZero(&enriched.OccupiedSARIClinical, row.OccupiedSARIClinical)
		occupiedSARIICU := fillZero(&enriched.OccupiedSARIICU, row.OccupiedSARIICU)

		enriched.TotalOfferedClinical = offeredClinical + offeredSARIClinical
		enriched.TotalOfferedICU = offeredICU + offeredSARIICU
		enriched.TotalOccupiedClinical = occupiedClinical + occupiedSARIClinical
		enriched.TotalOccupiedICU = occupiedICU + occupiedSARIICU
		enriched.TotalOfferedClinicalAlt = enriched.TotalOfferedClinical + enriched.TotalOccupiedClinical
		enriched.TotalOfferedICUAlt = enriched.TotalOfferedICU + enriched.TotalOccupiedICU
		enriched.HasICUProxy = enriched.TotalOfferedICUAlt > 0

		enriched.UpdatedWithin = make(map[int]bool, len(windows))
		for _, d := range windows {
			enriched.UpdatedWithin[d] = updatedWithin(row.ReportedAt, runTS, d)
		}

		if doc, ok := registryByCNES[row.CNES]; ok {
			enriched.HasRegistryMatch = true
			enriched.RegistryID = doc.RegistryID
			enriched.RegistryDeactivated = doc.Deactivated
		}

		enriched.DeactivatedProxy = deactivatedProxy(&enriched, longest)

		if total, ok := icuTotals[row.CNES]; ok {
			value := total
			enriched.ICUBedsViaRegistry = &value
		}

		out = append(out, enriched)
	}
	return out, nil
}

// checkSchema validates that the feed's column set exactly matches the
// expected schema, name for name and position for position.
func checkSchema(columns []string) error {
	expected := entities.OccupancyReportColumns
	if len(columns) != len(expected) {
		return apperrors.NewSchemaError(fmt.Sprintf(
			"feed has %d columns, expected %d", len(columns), len(expected)))
	}
	for i, col := range columns {
		if strings.TrimSpace(col) != expected[i] {
			return apperrors.NewSchemaError(fmt.Sprintf(
				"feed column %d is %q, expected %q", i, col, expected[i]))
		}
	}
	return nil
}

// updatedWithin reports whether a report timestamp falls inside the window.
// The threshold is pulled back by the run's own hour of day so same-day
// same-hour reports are not systematically excluded.
func updatedWithin(reportedAt, runTS time.Time, days int) bool {
	if reportedAt.IsZero() {
		return false
	}
	threshold := runTS.Add(-(time.Duration(days)*24*time.Hour +
		time.Duration(runTS.Hour())*time.Hour))
	return !reportedAt.Before(threshold)
}

// deactivatedProxy estimates true operational inactivity: a stale row with
// either no registry match at all, or a registry match the registry itself
// marks deactivated. A row updated within the longest window is never flagged
// regardless of the registry.
func deactivatedProxy(row *entities.EnrichedReport, longestWindow int) bool {
	if row.UpdatedWithin[longestWindow] {
		return false
	}
	if !row.HasRegistryMatch {
		return true
	}
	return row.RegistryDeactivated != nil && *row.RegistryDeactivated
}

// fillZero sets target to a fresh zero value when src is nil, otherwise to a
// copy of src, and returns the filled number.
func fillZero(target **float64, src *float64) float64 {
	v := 0.0
	if src != nil {
		v = *src
	}
	*target = &v
	return v
}
