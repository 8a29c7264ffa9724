package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saudedados/leitos-backend/internal/domain/entities"
)

func TestIsICUBed(t *testing.T) {
	classifier := NewBedClassifier()

	tests := []struct {
		label    string
		expected bool
	}{
		{"UTI ADULTO - TIPO II", true},
		{"UTI PEDIATRICA - TIPO I", true},
		{"UTI", true},
		{"UTI NEONATAL - TIPO II", false},
		{"UTI DE QUEIMADOS", false},
		{"CLINICA GERAL", false},
		{"CIRURGICO UTI", false},
		{"uti adulto", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifier.IsICUBed(tt.label))
		})
	}
}

func TestAggregateICUBeds(t *testing.T) {
	classifier := NewBedClassifier()

	docs := []entities.RegistryDocument{
		{
			CNES: "2269880",
			Beds: []entities.BedItem{
				{WardLabel: "UTI ADULTO", ExistingQty: "10"},
				{WardLabel: "UTI NEONATAL", ExistingQty: "5"},
				{WardLabel: "CLINICA", ExistingQty: "20"},
			},
		},
		{
			CNES: "7654321",
			Beds: []entities.BedItem{
				{WardLabel: "UTI ADULTO - TIPO I", ExistingQty: "4.5"},
				{WardLabel: "UTI ADULTO - TIPO II", ExistingQty: "3"},
			},
		},
	}

	totals, errs := classifier.AggregateICUBeds(docs)
	require.Empty(t, errs)

	// NEONATAL excluded, CLINICA not ICU-prefixed
	require.Contains(t, totals, "2269880")
	assert.True(t, totals["2269880"].Equal(decimal.NewFromInt(10)))

	require.Contains(t, totals, "7654321")
	assert.True(t, totals["7654321"].Equal(decimal.RequireFromString("7.5")))
}

func TestAggregateICUBeds_EmptyInventoryYieldsNoRow(t *testing.T) {
	classifier := NewBedClassifier()

	docs := []entities.RegistryDocument{
		{CNES: "1111111", Beds: nil},
		{CNES: "2222222", Beds: []entities.BedItem{{WardLabel: "CLINICA", ExistingQty: "8"}}},
	}

	totals, errs := classifier.AggregateICUBeds(docs)
	require.Empty(t, errs)
	assert.NotContains(t, totals, "1111111")
	assert.NotContains(t, totals, "2222222")
}

func TestAggregateICUBeds_MalformedQuantity(t *testing.T) {
	classifier := NewBedClassifier()

	docs := []entities.RegistryDocument{
		{
			CNES: "3333333",
			Beds: []entities.BedItem{{WardLabel: "UTI ADULTO", ExistingQty: "   "}},
		},
		{
			CNES: "4444444",
			Beds: []entities.BedItem{{WardLabel: "UTI ADULTO", ExistingQty: "6"}},
		},
	}

	totals, errs := classifier.AggregateICUBeds(docs)

	// The bad facility is surfaced and excluded; the good one still aggregates.
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "3333333")
	assert.NotContains(t, totals, "3333333")
	require.Contains(t, totals, "4444444")
	assert.True(t, totals["4444444"].Equal(decimal.NewFromInt(6)))
}

func TestAggregateICUBeds_SkipsFailureMarkers(t *testing.T) {
	classifier := NewBedClassifier()

	docs := []entities.RegistryDocument{
		{CNES: "5555555", Error: true},
	}

	totals, errs := classifier.AggregateICUBeds(docs)
	assert.Empty(t, errs)
	assert.Empty(t, totals)
}
