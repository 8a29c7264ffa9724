package repositories

import (
	"context"

	"github.com/saudedados/leitos-backend/internal/domain/entities"
)

// RegistryStore persists composed registry documents, one per facility code,
// write-once. Exists must report true for failure markers too; that is what
// makes repeated runs cheap and prevents retry storms against the registry.
// LoadAll enumerates the entire historical cache, not just the current run's
// documents.
type RegistryStore interface {
	// Exists reports whether a document (including a failure marker) has
	// already been persisted for the given facility code.
	Exists(ctx context.Context, cnes string) (bool, error)

	// Put persists the document under its facility code. Callers only invoke
	// Put after a negative Exists check; implementations need not reject
	// overwrites but must keep at most one document per code.
	Put(ctx context.Context, doc *entities.RegistryDocument) error

	// LoadAll returns every persisted document, failure markers included.
	LoadAll(ctx context.Context) ([]entities.RegistryDocument, error)
}
