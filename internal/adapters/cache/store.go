package cache

import (
	"fmt"

	"github.com/saudedados/leitos-backend/internal/domain/repositories"
	redisclient "github.com/saudedados/leitos-backend/internal/infrastructure/clients/redis"
	"github.com/saudedados/leitos-backend/pkg/config"
)

// NewStore builds the configured RegistryStore backend. The returned cleanup
// releases any underlying connection and is safe to call on the file backend.
func NewStore(cfg *config.Config) (repositories.RegistryStore, func(), error) {
	switch cfg.Cache.Backend {
	case "", "file":
		store, err := NewFileStore(cfg.Cache.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case "redis":
		client, err := redisclient.NewClient(&cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStore(client), func() { client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
