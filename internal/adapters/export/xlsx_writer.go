package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/saudedados/leitos-backend/internal/domain/entities"
	apperrors "github.com/saudedados/leitos-backend/pkg/errors"
)

const sheetName = "Enriched Reports"

// fixedHeaders are the static output columns; one "updated_<d>d" column per
// configured staleness window is appended after them.
var fixedHeaders = []string{
	"_id", "cnes", "nomeCnes", "estado", "estadoSigla", "estadoSigla_original",
	"municipio", "dataNotificacaoOcupacao",
	"totalOfertaCli", "totalOfertaUti", "totalOcupCli", "totalOcupUti",
	"totalOfertaCliAlt", "totalOfertaUtiAlt", "has_uti_proxy",
	"has_registry_match", "registry_id", "registry_deactivated",
	"deactivated_proxy", "uti_beds_via_cnes",
}

// WriteXLSX writes the enriched output table to a spreadsheet at path.
// windows determines which staleness columns appear, in ascending order.
func WriteXLSX(path string, reports []entities.EnrichedReport, windows []int) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return apperrors.NewInternalError("failed to create sheet", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return apperrors.NewInternalError("failed to drop default sheet", err)
	}
	f.SetActiveSheet(index)

	sorted := append([]int{}, windows...)
	sort.Ints(sorted)

	headers := append([]string{}, fixedHeaders...)
	for _, d := range sorted {
		headers = append(headers, fmt.Sprintf("updated_%dd", d))
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return apperrors.NewInternalError("failed to create header style", err)
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return apperrors.NewInternalError("failed to convert coordinates", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return apperrors.NewInternalError(fmt.Sprintf("failed to set header cell %s", cell), err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return apperrors.NewInternalError("failed to set header style", err)
		}
	}

	for i := range reports {
		if err := writeRow(f, &reports[i], sorted, i+2); err != nil {
			return err
		}
	}

	// Keep the header visible while scrolling.
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return apperrors.NewInternalError("failed to freeze header row", err)
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to save spreadsheet %s", path), err)
	}
	return nil
}

func writeRow(f *excelize.File, report *entities.EnrichedReport, windows []int, rowNum int) error {
	values := []interface{}{
		report.DocID,
		report.CNES,
		report.FacilityName,
		report.State,
		report.StateCode,
		report.StateCodeOriginal,
		report.Municipality,
		formatTime(report),
		report.TotalOfferedClinical,
		report.TotalOfferedICU,
		report.TotalOccupiedClinical,
		report.TotalOccupiedICU,
		report.TotalOfferedClinicalAlt,
		report.TotalOfferedICUAlt,
		report.HasICUProxy,
		report.HasRegistryMatch,
		deref(report.RegistryID),
		derefBool(report.RegistryDeactivated),
		report.DeactivatedProxy,
		icuBeds(report),
	}
	for _, d := range windows {
		values = append(values, report.UpdatedWithinDays(d))
	}

	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		if err != nil {
			return apperrors.NewInternalError("failed to convert coordinates", err)
		}
		if value == nil {
			continue
		}
		if err := f.SetCellValue(sheetName, cell, value); err != nil {
			return apperrors.NewInternalError(fmt.Sprintf("failed to set cell %s", cell), err)
		}
	}
	return nil
}

func formatTime(report *entities.EnrichedReport) interface{} {
	if report.ReportedAt.IsZero() {
		return nil
	}
	return report.ReportedAt
}

func deref(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func derefBool(b *bool) interface{} {
	if b == nil {
		return nil
	}
	return *b
}

func icuBeds(report *entities.EnrichedReport) interface{} {
	if report.ICUBedsViaRegistry == nil {
		return nil
	}
	v, _ := report.ICUBedsViaRegistry.Float64()
	return v
}
