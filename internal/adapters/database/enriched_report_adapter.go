package database

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/saudedados/leitos-backend/internal/domain/entities"
	"github.com/saudedados/leitos-backend/internal/domain/repositories"
	"github.com/saudedados/leitos-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/saudedados/leitos-backend/pkg/errors"
)

const enrichedReportsTable = "enriched_reports"

const enrichedReportsDDL = `
CREATE TABLE IF NOT EXISTS enriched_reports (
	run_id                TEXT        NOT NULL,
	doc_id                TEXT        NOT NULL,
	cnes                  TEXT        NOT NULL,
	facility_name         TEXT,
	state_code            TEXT,
	state_code_original   TEXT,
	municipality          TEXT,
	reported_at           TIMESTAMPTZ,
	total_offered_clinical  DOUBLE PRECISION NOT NULL,
	total_offered_icu       DOUBLE PRECISION NOT NULL,
	total_occupied_clinical DOUBLE PRECISION NOT NULL,
	total_occupied_icu      DOUBLE PRECISION NOT NULL,
	total_offered_clinical_alt DOUBLE PRECISION NOT NULL,
	total_offered_icu_alt      DOUBLE PRECISION NOT NULL,
	has_icu_proxy         BOOLEAN     NOT NULL,
	updated_within        JSONB       NOT NULL,
	has_registry_match    BOOLEAN     NOT NULL,
	registry_id           TEXT,
	registry_deactivated  BOOLEAN,
	deactivated_proxy     BOOLEAN     NOT NULL,
	icu_beds_via_registry NUMERIC,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, doc_id)
)`

// EnrichedReportAdapter implements the EnrichedReportRepository interface
type EnrichedReportAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewEnrichedReportAdapter creates a new enriched report adapter and ensures
// the output table exists.
func NewEnrichedReportAdapter(client *postgres.Client) (repositories.EnrichedReportRepository, error) {
	if _, err := client.DB().Exec(enrichedReportsDDL); err != nil {
		return nil, apperrors.NewStorageError("failed to ensure enriched_reports table", err)
	}
	return &EnrichedReportAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}, nil
}

// SaveBatch persists one run's output table.
func (a *EnrichedReportAdapter) SaveBatch(ctx context.Context, runID string, reports []entities.EnrichedReport) error {
	if len(reports) == 0 {
		return nil
	}

	records := make([]goqu.Record, 0, len(reports))
	for i := range reports {
		record, err := buildRecord(runID, &reports[i])
		if err != nil {
			return err
		}
		records = append(records, record)
	}

	query, args, err := a.db.Insert(enrichedReportsTable).Rows(records).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewStorageError("failed to save enriched reports", err)
	}
	return nil
}

func buildRecord(runID string, report *entities.EnrichedReport) (goqu.Record, error) {
	flags, err := json.Marshal(report.UpdatedWithin)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode staleness flags", err)
	}

	var icuBeds sql.NullString
	if report.ICUBedsViaRegistry != nil {
		icuBeds = sql.NullString{String: report.ICUBedsViaRegistry.String(), Valid: true}
	}
	var registryID sql.NullString
	if report.RegistryID != nil {
		registryID = sql.NullString{String: *report.RegistryID, Valid: true}
	}
	var registryDeactivated sql.NullBool
	if report.RegistryDeactivated != nil {
		registryDeactivated = sql.NullBool{Bool: *report.RegistryDeactivated, Valid: true}
	}

	return goqu.Record{
		"run_id":                     runID,
		"doc_id":                     report.DocID,
		"cnes":                       report.CNES,
		"facility_name":              report.FacilityName,
		"state_code":                 report.StateCode,
		"state_code_original":        report.StateCodeOriginal,
		"municipality":               report.Municipality,
		"reported_at":                report.ReportedAt,
		"total_offered_clinical":     report.TotalOfferedClinical,
		"total_offered_icu":          report.TotalOfferedICU,
		"total_occupied_clinical":    report.TotalOccupiedClinical,
		"total_occupied_icu":         report.TotalOccupiedICU,
		"total_offered_clinical_alt": report.TotalOfferedClinicalAlt,
		"total_offered_icu_alt":      report.TotalOfferedICUAlt,
		"has_icu_proxy":              report.HasICUProxy,
		"updated_within":             string(flags),
		"has_registry_match":         report.HasRegistryMatch,
		"registry_id":                registryID,
		"registry_deactivated":       registryDeactivated,
		"deactivated_proxy":          report.DeactivatedProxy,
		"icu_beds_via_registry":      icuBeds,
	}, nil
}
