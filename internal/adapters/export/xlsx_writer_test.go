package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/saudedados/leitos-backend/internal/domain/entities"
)

func TestWriteXLSX(t *testing.T) {
	icu := decimal.NewFromInt(10)
	reports := []entities.EnrichedReport{
		{
			OccupancyReport: entities.OccupancyReport{
				DocID:        "r1",
				CNES:         "2269880",
				FacilityName: "HOSPITAL CENTRAL",
			},
			StateCodeOriginal:  "sp",
			HasICUProxy:        true,
			HasRegistryMatch:   true,
			UpdatedWithin:      map[int]bool{7: false, 14: true},
			ICUBedsViaRegistry: &icu,
		},
		{
			OccupancyReport: entities.OccupancyReport{
				DocID: "r2",
				CNES:  "9999999",
			},
			UpdatedWithin:    map[int]bool{7: false, 14: false},
			DeactivatedProxy: true,
		},
	}

	path := filepath.Join(t.TempDir(), "enriched.xlsx")
	require.NoError(t, WriteXLSX(path, reports, []int{14, 7}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	header := rows[0]
	// Window columns appear in ascending order after the fixed columns.
	assert.Equal(t, "updated_7d", header[len(fixedHeaders)])
	assert.Equal(t, "updated_14d", header[len(fixedHeaders)+1])

	assert.Equal(t, "r1", rows[1][0])
	assert.Equal(t, "2269880", rows[1][1])
	// Unmatched facility leaves the ICU-via-registry cell empty, not zero.
	icuCol := len(fixedHeaders) - 1
	if len(rows[2]) > icuCol {
		assert.Empty(t, rows[2][icuCol])
	}
}

func TestWriteErrorList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.json")
	require.NoError(t, WriteErrorList(path, []string{"9999999", "8888888"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var codes []string
	require.NoError(t, json.Unmarshal(data, &codes))
	assert.Equal(t, []string{"9999999", "8888888"}, codes)
}

func TestWriteErrorList_NilBecomesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.json")
	require.NoError(t, WriteErrorList(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}
