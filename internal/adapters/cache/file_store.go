package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/saudedados/leitos-backend/internal/domain/entities"
	"github.com/saudedados/leitos-backend/internal/domain/repositories"
	apperrors "github.com/saudedados/leitos-backend/pkg/errors"
)

// FileStore implements RegistryStore with one JSON file per facility code
// under a single directory. The facility code is the file name, which makes
// concurrent writers collision-free without locking.
type FileStore struct {
	dir string
}

// NewFileStore creates the cache directory if needed and returns a store over it.
func NewFileStore(dir string) (repositories.RegistryStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to create cache directory %s", dir), err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(cnes string) string {
	return filepath.Join(s.dir, cnes+".json")
}

// Exists reports whether a document has been persisted for the code. Failure
// markers count.
func (s *FileStore) Exists(ctx context.Context, cnes string) (bool, error) {
	_, err := os.Stat(s.path(cnes))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, apperrors.NewStorageError(fmt.Sprintf("failed to stat cache entry for %s", cnes), err)
}

// Put persists the document under its facility code, overwriting nothing in
// practice because callers check Exists first.
func (s *FileStore) Put(ctx context.Context, doc *entities.RegistryDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to encode cache entry for %s", doc.CNES), err)
	}
	if err := os.WriteFile(s.path(doc.CNES), data, 0o644); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to write cache entry for %s", doc.CNES), err)
	}
	return nil
}

// LoadAll enumerates every persisted document in the directory, failure
// markers included. The full historical cache is returned, not just the
// current run's entries.
func (s *FileStore) LoadAll(ctx context.Context) ([]entities.RegistryDocument, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read cache directory %s", s.dir), err)
	}

	docs := make([]entities.RegistryDocument, 0, len(dirEntries))
	for _, entry := range dirEntries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read cache entry %s", entry.Name()), err)
		}
		var doc entities.RegistryDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, apperrors.NewStorageError(fmt.Sprintf("failed to decode cache entry %s", entry.Name()), err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
