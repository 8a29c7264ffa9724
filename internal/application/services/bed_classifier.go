package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/saudedados/leitos-backend/internal/domain/entities"
	apperrors "github.com/saudedados/leitos-backend/pkg/errors"
)

// icuPrefix marks an intensive-care ward label. The match is case-sensitive:
// registry labels are upper-cased upstream and a lower-case "uti" would be a
// different data-quality problem, not an ICU ward.
const icuPrefix = "UTI"

// icuExclusions are ward-label substrings that disqualify an ICU-prefixed
// label (neonatal and burn units are tracked separately from general ICU
// capacity).
var icuExclusions = []string{"NEONATAL", "QUEIMADOS"}

// BedClassifier derives normalized ICU bed counts from the registry's
// free-text itemized bed inventories.
type BedClassifier struct{}

// NewBedClassifier creates a new bed classifier
func NewBedClassifier() *BedClassifier {
	return &BedClassifier{}
}

// IsICUBed reports whether a ward label describes an ICU bed: it must start
// with the ICU marker token and contain none of the exclusion substrings.
func (c *BedClassifier) IsICUBed(wardLabel string) bool {
	if !strings.HasPrefix(wardLabel, icuPrefix) {
		return false
	}
	for _, excl := range icuExclusions {
		if strings.Contains(wardLabel, excl) {
			return false
		}
	}
	return true
}

// FacilityICUTotal sums the ICU-classified bed quantities of one facility's
// inventory. The second return is false when the facility contributed no
// ICU-classified items; callers must treat that as "no aggregate", never as
// zero. A quantity that does not parse as a decimal number is a data-quality
// error for the whole facility.
func (c *BedClassifier) FacilityICUTotal(doc *entities.RegistryDocument) (decimal.Decimal, bool, error) {
	total := decimal.Zero
	found := false
	for _, bed := range doc.Beds {
		if !c.IsICUBed(bed.WardLabel) {
			continue
		}
		qty, err := decimal.NewFromString(strings.TrimSpace(bed.ExistingQty))
		if err != nil {
			return decimal.Zero, false, apperrors.NewDataQualityError(fmt.Sprintf(
				"facility %s: bed %q has unparseable quantity %q", doc.CNES, bed.WardLabel, bed.ExistingQty))
		}
		total = total.Add(qty)
		found = true
	}
	return total, found, nil
}

// AggregateICUBeds computes the per-facility ICU bed totals over a set of
// registry documents. Facilities with no ICU-classified items are absent from
// the result. Data-quality failures are isolated per facility: the facility
// gets no entry and its error is returned alongside the aggregate.
func (c *BedClassifier) AggregateICUBeds(docs []entities.RegistryDocument) (map[string]decimal.Decimal, []error) {
	totals := make(map[string]decimal.Decimal)
	var errs []error
	for i := range docs {
		doc := &docs[i]
		if doc.Error {
			continue
		}
		total, found, err := c.FacilityICUTotal(doc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if found {
			totals[doc.CNES] = total
		}
	}
	return totals, errs
}
