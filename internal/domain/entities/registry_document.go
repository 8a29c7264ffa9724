package entities

import (
	"time"
)

// BedItem is one line of a facility's itemized bed inventory as returned by
// the registry. Labels are free text; the existing quantity arrives as text
// and is parsed downstream (some registries emit fractional values).
type BedItem struct {
	WardLabel      string `json:"dsLeito"`
	AttributeLabel string `json:"dsAtributo"`
	ExistingQty    string `json:"qtExistente"`
}

// RegistryDocument is one facility's composed registry snapshot. A document is
// written to the cache exactly once per facility code: either a full snapshot
// (Error=false, FetchedAt set) or a minimal failure marker (Error=true, all
// other fields zero). Failure markers also satisfy the cache's "already
// fetched" check, so a failed code is not refetched on later runs.
type RegistryDocument struct {
	CNES         string     `json:"cnes"`
	RegistryID   *string    `json:"id,omitempty"`
	Name         string     `json:"nome,omitempty"`
	BusinessName string     `json:"nomeEmpresarial,omitempty"`
	Municipality string     `json:"municipio,omitempty"`
	StateCode    string     `json:"uf,omitempty"`
	Deactivated  *bool      `json:"deactivated,omitempty"`
	Beds         []BedItem  `json:"beds,omitempty"`
	FetchedAt    *time.Time `json:"ts_run,omitempty"`
	Error        bool       `json:"error"`
}

// NewFailureMarker builds the minimal negative-cache document for a code
// whose fetch failed.
func NewFailureMarker(cnes string) *RegistryDocument {
	return &RegistryDocument{CNES: cnes, Error: true}
}
