package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/saudedados/leitos-backend/internal/domain/entities"
	apperrors "github.com/saudedados/leitos-backend/pkg/errors"
)

// Table is the loaded occupancy feed: the header row captured verbatim plus
// the parsed rows. The reconciliation pipeline validates Columns against the
// expected schema before touching Rows, so the loader itself accepts any
// header shape.
type Table struct {
	Columns []string
	Rows    []entities.OccupancyReport
}

// timestampLayouts are the formats the upstream export is known to emit.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// LoadCSV reads the occupancy feed from a CSV file.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open feed file %s", path), err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV reads the occupancy feed from an open reader.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read feed header", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}

	table := &Table{Columns: header}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read feed line %d", line), err)
		}

		row, err := parseRow(record, index, line)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, *row)
	}
	return table, nil
}

func parseRow(record []string, index map[string]int, line int) (*entities.OccupancyReport, error) {
	cell := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := &entities.OccupancyReport{
		DocIndex:     cell("_index"),
		DocType:      cell("_type"),
		DocID:        cell("_id"),
		State:        cell("estado"),
		StateCode:    cell("estadoSigla"),
		Municipality: cell("municipio"),
		CNES:         cell("cnes"),
		FacilityName: cell("nomeCnes"),
	}

	floatCols := map[string]**float64{
		"_score":             &row.Score,
		"ofertaRespiradores": &row.VentilatorsOffered,
		"ofertaHospCli":      &row.OfferedClinical,
		"ofertaHospUti":      &row.OfferedICU,
		"ofertaSRAGCli":      &row.OfferedSARIClinical,
		"ofertaSRAGUti":      &row.OfferedSARIICU,
		"ocupHospCli":        &row.OccupiedClinical,
		"ocupHospUti":        &row.OccupiedICU,
		"ocupSRAGCli":        &row.OccupiedSARIClinical,
		"ocupSRAGUti":        &row.OccupiedSARIICU,
		"altas":              &row.Discharges,
		"obitos":             &row.Deaths,
	}
	for col, target := range floatCols {
		value, err := parseOptionalFloat(cell(col))
		if err != nil {
			return nil, apperrors.NewDataQualityError(
				fmt.Sprintf("feed line %d: column %s: %v", line, col, err))
		}
		*target = value
	}

	boolCols := map[string]**bool{
		"ocupacaoInformada":       &row.OccupancyReported,
		"algumaOcupacaoInformada": &row.AnyOccupancyReported,
	}
	for col, target := range boolCols {
		value, err := parseOptionalBool(cell(col))
		if err != nil {
			return nil, apperrors.NewDataQualityError(
				fmt.Sprintf("feed line %d: column %s: %v", line, col, err))
		}
		*target = value
	}

	reportedAt, err := parseTimestamp(cell("dataNotificacaoOcupacao"))
	if err != nil {
		return nil, apperrors.NewDataQualityError(
			fmt.Sprintf("feed line %d: column dataNotificacaoOcupacao: %v", line, err))
	}
	row.ReportedAt = reportedAt

	runTS, err := parseTimestamp(cell("ts_run"))
	if err != nil {
		return nil, apperrors.NewDataQualityError(
			fmt.Sprintf("feed line %d: column ts_run: %v", line, err))
	}
	row.RunTimestamp = runTS

	return row, nil
}

func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid numeric value %q", s)
	}
	return &v, nil
}

func parseOptionalBool(s string) (*bool, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(strings.ToLower(s))
	if err != nil {
		return nil, fmt.Errorf("invalid boolean value %q", s)
	}
	return &v, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
