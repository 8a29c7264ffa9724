package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saudedados/leitos-backend/internal/domain/entities"
)

func TestFileStore_PutExistsRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	exists, err := store.Exists(ctx, "2269880")
	require.NoError(t, err)
	assert.False(t, exists)

	registryID := "3568421"
	deactivated := false
	fetchedAt := time.Date(2021, 3, 15, 12, 0, 0, 0, time.UTC)
	doc := &entities.RegistryDocument{
		CNES:        "2269880",
		RegistryID:  &registryID,
		Name:        "HOSPITAL CENTRAL",
		Deactivated: &deactivated,
		Beds: []entities.BedItem{
			{WardLabel: "UTI ADULTO - TIPO II", AttributeLabel: "SUS", ExistingQty: "10"},
		},
		FetchedAt: &fetchedAt,
	}
	require.NoError(t, store.Put(ctx, doc))

	exists, err = store.Exists(ctx, "2269880")
	require.NoError(t, err)
	assert.True(t, exists)

	docs, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "2269880", docs[0].CNES)
	require.NotNil(t, docs[0].RegistryID)
	assert.Equal(t, "3568421", *docs[0].RegistryID)
	require.Len(t, docs[0].Beds, 1)
	assert.Equal(t, "10", docs[0].Beds[0].ExistingQty)
	require.NotNil(t, docs[0].FetchedAt)
	assert.True(t, fetchedAt.Equal(*docs[0].FetchedAt))
}

func TestFileStore_FailureMarkerCountsAsExisting(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, entities.NewFailureMarker("1234567")))

	exists, err := store.Exists(ctx, "1234567")
	require.NoError(t, err)
	assert.True(t, exists)

	docs, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.True(t, docs[0].Error)
	assert.Nil(t, docs[0].RegistryID)
}

func TestFileStore_LoadAllSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("not a document"), 0o644))
	require.NoError(t, store.Put(ctx, entities.NewFailureMarker("1234567")))

	docs, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestFileStore_LoadAllCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "2269880.json"), []byte("{truncated"), 0o644))

	_, err = store.LoadAll(context.Background())
	assert.Error(t, err)
}
