package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saudedados/leitos-backend/internal/adapters/cache"
	"github.com/saudedados/leitos-backend/internal/domain/entities"
	"github.com/saudedados/leitos-backend/internal/infrastructure/clients/cnes"
	apperrors "github.com/saudedados/leitos-backend/pkg/errors"
)

// fakeRegistryClient serves canned documents and counts Compose calls.
type fakeRegistryClient struct {
	docs     map[string]*entities.RegistryDocument
	failWith map[string]error
	calls    int
}

func (f *fakeRegistryClient) FindCandidates(ctx context.Context, code string) ([]cnes.CandidateSummary, error) {
	return nil, nil
}

func (f *fakeRegistryClient) FetchDetail(ctx context.Context, id string) (*cnes.Detail, error) {
	return nil, nil
}

func (f *fakeRegistryClient) FetchBeds(ctx context.Context, id string) ([]entities.BedItem, error) {
	return nil, nil
}

func (f *fakeRegistryClient) FetchDeactivationFlag(ctx context.Context, id string) (bool, error) {
	return false, nil
}

func (f *fakeRegistryClient) Compose(ctx context.Context, code string) (*entities.RegistryDocument, error) {
	f.calls++
	if err, ok := f.failWith[code]; ok {
		return nil, err
	}
	if doc, ok := f.docs[code]; ok {
		copied := *doc
		return &copied, nil
	}
	return nil, apperrors.NewLookupError("no registry candidate for cnes " + code)
}

func newTestService(t *testing.T, client cnes.Client) *RegistryFetchService {
	t.Helper()
	store, err := cache.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return NewRegistryFetchService(client, store)
}

func TestDistinctCodes(t *testing.T) {
	rows := []entities.OccupancyReport{
		{CNES: "2269880"},
		{CNES: "7654321"},
		{CNES: "2269880"},
		{CNES: ""},
		{CNES: "1111111"},
	}
	assert.Equal(t, []string{"2269880", "7654321", "1111111"}, DistinctCodes(rows))
}

func TestEnsureAll_FetchesAndPersists(t *testing.T) {
	client := &fakeRegistryClient{
		docs: map[string]*entities.RegistryDocument{
			"2269880": {CNES: "2269880", Name: "HOSPITAL CENTRAL"},
			"7654321": {CNES: "7654321", Name: "SANTA CASA"},
		},
	}
	svc := newTestService(t, client)
	ctx := context.Background()

	summary, err := svc.EnsureAll(ctx, []string{"2269880", "7654321"})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Fetched)
	assert.Equal(t, 0, summary.Skipped)
	assert.Empty(t, summary.Failed)
	assert.NotEmpty(t, summary.RunID)

	docs, err := svc.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, doc := range docs {
		assert.False(t, doc.Error)
		require.NotNil(t, doc.FetchedAt)
		assert.True(t, doc.FetchedAt.Equal(summary.RunTimestamp))
	}
}

func TestEnsureAll_SecondRunIsIdempotent(t *testing.T) {
	client := &fakeRegistryClient{
		docs: map[string]*entities.RegistryDocument{
			"2269880": {CNES: "2269880"},
		},
	}
	svc := newTestService(t, client)
	ctx := context.Background()

	_, err := svc.EnsureAll(ctx, []string{"2269880"})
	require.NoError(t, err)
	first, err := svc.LoadAll(ctx)
	require.NoError(t, err)

	summary, err := svc.EnsureAll(ctx, []string{"2269880"})
	require.NoError(t, err)

	// Zero additional network calls, identical loaded table.
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, 0, summary.Fetched)
	assert.Equal(t, 1, summary.Skipped)

	second, err := svc.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEnsureAll_FailureIsIsolatedAndMarked(t *testing.T) {
	client := &fakeRegistryClient{
		docs: map[string]*entities.RegistryDocument{
			"2269880": {CNES: "2269880"},
		},
		failWith: map[string]error{
			"9999999": apperrors.NewTransportError("registry returned status 502", nil),
		},
	}
	svc := newTestService(t, client)
	ctx := context.Background()

	summary, err := svc.EnsureAll(ctx, []string{"9999999", "2269880"})
	require.NoError(t, err)
	assert.Equal(t, []string{"9999999"}, summary.Failed)
	assert.Equal(t, 1, summary.Fetched)

	// The failure marker is excluded from the loaded table.
	docs, err := svc.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "2269880", docs[0].CNES)
}

func TestEnsureAll_FailureMarkerPermanentlySkips(t *testing.T) {
	client := &fakeRegistryClient{
		failWith: map[string]error{
			"9999999": apperrors.NewTransportError("registry returned status 502", nil),
		},
	}
	svc := newTestService(t, client)
	ctx := context.Background()

	summary, err := svc.EnsureAll(ctx, []string{"9999999"})
	require.NoError(t, err)
	assert.Equal(t, []string{"9999999"}, summary.Failed)

	// The marker satisfies the skip rule, so the code is neither refetched
	// nor re-reported on the next run.
	summary, err = svc.EnsureAll(ctx, []string{"9999999"})
	require.NoError(t, err)
	assert.Empty(t, summary.Failed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, client.calls)
}

func TestEnsureAll_Cancellation(t *testing.T) {
	client := &fakeRegistryClient{
		docs: map[string]*entities.RegistryDocument{
			"2269880": {CNES: "2269880"},
		},
	}
	svc := newTestService(t, client)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.EnsureAll(ctx, []string{"2269880"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, client.calls)
}
