package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/saudedados/leitos-backend/internal/domain/entities"
	"github.com/saudedados/leitos-backend/internal/domain/repositories"
	redisclient "github.com/saudedados/leitos-backend/internal/infrastructure/clients/redis"
	apperrors "github.com/saudedados/leitos-backend/pkg/errors"
)

const registryKeyPrefix = "registry:doc:"

// RedisStore implements RegistryStore on Redis, one key per facility code.
// Entries are written without expiry; the cache is durable by contract.
type RedisStore struct {
	client *redisclient.Client
}

// NewRedisStore creates a new Redis-backed registry store
func NewRedisStore(client *redisclient.Client) repositories.RegistryStore {
	return &RedisStore{client: client}
}

func registryKey(cnes string) string {
	return registryKeyPrefix + cnes
}

// Exists reports whether a document (failure markers included) was persisted
// for the code.
func (s *RedisStore) Exists(ctx context.Context, cnes string) (bool, error) {
	count, err := s.client.Client().Exists(ctx, registryKey(cnes)).Result()
	if err != nil {
		return false, apperrors.NewStorageError(fmt.Sprintf("failed to check cache entry for %s", cnes), err)
	}
	return count > 0, nil
}

// Put persists the document under its facility code.
func (s *RedisStore) Put(ctx context.Context, doc *entities.RegistryDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to encode cache entry for %s", doc.CNES), err)
	}
	if err := s.client.Client().Set(ctx, registryKey(doc.CNES), data, 0).Err(); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to write cache entry for %s", doc.CNES), err)
	}
	return nil
}

// LoadAll scans the key space and returns every persisted document.
func (s *RedisStore) LoadAll(ctx context.Context) ([]entities.RegistryDocument, error) {
	var docs []entities.RegistryDocument
	iter := s.client.Client().Scan(ctx, 0, registryKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Client().Get(ctx, iter.Val()).Bytes()
		if err != nil {
			return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read cache entry %s", iter.Val()), err)
		}
		var doc entities.RegistryDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, apperrors.NewStorageError(fmt.Sprintf("failed to decode cache entry %s", iter.Val()), err)
		}
		docs = append(docs, doc)
	}
	if err := iter.Err(); err != nil {
		return nil, apperrors.NewStorageError("failed to scan registry cache keys", err)
	}
	return docs, nil
}
