package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/saudedados/leitos-backend/internal/domain/entities"
	"github.com/saudedados/leitos-backend/internal/domain/repositories"
	"github.com/saudedados/leitos-backend/internal/infrastructure/clients/cnes"
	"github.com/saudedados/leitos-backend/internal/infrastructure/observability"
)

// FetchSummary describes one batch run over a set of facility codes.
type FetchSummary struct {
	RunID        string    `json:"run_id"`
	RunTimestamp time.Time `json:"run_timestamp"`
	Fetched      int       `json:"fetched"`
	Skipped      int       `json:"skipped"`
	Failed       []string  `json:"failed"`
}

// RegistryFetchService drives the registry client across a set of facility
// codes and owns persistence of the composed documents. Fetches are
// idempotent: a code with any persisted document, failure markers included,
// is skipped, which makes repeated runs cheap and crash-resumable.
type RegistryFetchService struct {
	client cnes.Client
	store  repositories.RegistryStore
}

// NewRegistryFetchService creates a new registry fetch service
func NewRegistryFetchService(client cnes.Client, store repositories.RegistryStore) *RegistryFetchService {
	return &RegistryFetchService{
		client: client,
		store:  store,
	}
}

// DistinctCodes returns the distinct facility codes of the feed in first
// appearance order. Order only affects log readability, not correctness.
func DistinctCodes(rows []entities.OccupancyReport) []string {
	seen := make(map[string]struct{}, len(rows))
	var codes []string
	for _, row := range rows {
		if row.CNES == "" {
			continue
		}
		if _, ok := seen[row.CNES]; ok {
			continue
		}
		seen[row.CNES] = struct{}{}
		codes = append(codes, row.CNES)
	}
	return codes
}

// EnsureAll ensures a persisted document exists for every code. Individual
// facility failures are recorded as failure markers and in the summary's
// Failed list; they never abort the batch. Storage failures do abort, as does
// context cancellation, both leaving the cache valid and partially populated.
func (s *RegistryFetchService) EnsureAll(ctx context.Context, codes []string) (*FetchSummary, error) {
	summary := &FetchSummary{
		RunID:        uuid.NewString(),
		RunTimestamp: time.Now().UTC(),
		Failed:       []string{},
	}
	logger := observability.LoggerFromContext(ctx).With().Str("run_id", summary.RunID).Logger()

	for i, code := range codes {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		exists, err := s.store.Exists(ctx, code)
		if err != nil {
			return summary, err
		}
		if exists {
			summary.Skipped++
			continue
		}

		logger.Info().Str("cnes", code).Int("progress", i+1).Int("total", len(codes)).
			Msg("fetching registry document")

		doc, err := s.client.Compose(ctx, code)
		if err != nil {
			logger.Warn().Err(err).Str("cnes", code).Msg("registry fetch failed")
			summary.Failed = append(summary.Failed, code)
			if putErr := s.store.Put(ctx, entities.NewFailureMarker(code)); putErr != nil {
				return summary, putErr
			}
			continue
		}

		doc.FetchedAt = &summary.RunTimestamp
		doc.Error = false
		if err := s.store.Put(ctx, doc); err != nil {
			return summary, err
		}
		summary.Fetched++
	}

	logger.Info().Int("fetched", summary.Fetched).Int("skipped", summary.Skipped).
		Int("failed", len(summary.Failed)).Msg("registry batch complete")
	return summary, nil
}

// LoadAll returns every non-error document in the cache, reflecting the full
// historical accumulation across runs.
func (s *RegistryFetchService) LoadAll(ctx context.Context) ([]entities.RegistryDocument, error) {
	docs, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := docs[:0]
	for _, doc := range docs {
		if !doc.Error {
			out = append(out, doc)
		}
	}
	return out, nil
}
