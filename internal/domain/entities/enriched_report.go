package entities

import (
	"github.com/shopspring/decimal"
)

// EnrichedReport is one output row of the reconciliation pipeline: the
// occupancy report row plus derived totals, staleness flags, the registry
// join, the deactivation proxy and the ICU-via-registry aggregate. Registry
// columns are nil when the facility had no usable registry document;
// ICUBedsViaRegistry is nil (not zero) when the registry contributed no
// ICU-labeled bed items.
type EnrichedReport struct {
	OccupancyReport

	StateCodeOriginal string `json:"estadoSigla_original"`

	TotalOfferedClinical  float64 `json:"totalOfertaCli"`
	TotalOfferedICU       float64 `json:"totalOfertaUti"`
	TotalOccupiedClinical float64 `json:"totalOcupCli"`
	TotalOccupiedICU      float64 `json:"totalOcupUti"`

	// Alt variants count occupied beds as part of the offer, a more
	// conservative capacity estimate.
	TotalOfferedClinicalAlt float64 `json:"totalOfertaCliAlt"`
	TotalOfferedICUAlt      float64 `json:"totalOfertaUtiAlt"`

	HasICUProxy bool `json:"has_uti_proxy"`

	// UpdatedWithin holds one staleness flag per configured window (days).
	UpdatedWithin map[int]bool `json:"updated_within"`

	HasRegistryMatch    bool    `json:"has_registry_match"`
	RegistryID          *string `json:"registry_id,omitempty"`
	RegistryDeactivated *bool   `json:"registry_deactivated,omitempty"`

	DeactivatedProxy bool `json:"deactivated_proxy"`

	ICUBedsViaRegistry *decimal.Decimal `json:"uti_beds_via_cnes,omitempty"`
}

// UpdatedWithinDays returns the staleness flag for the given window, false
// when the window was not configured.
func (r *EnrichedReport) UpdatedWithinDays(days int) bool {
	return r.UpdatedWithin[days]
}
