package entities

import (
	"time"
)

// OccupancyReport represents one facility's self-reported capacity snapshot
// from the occupancy feed. Wire tags keep the upstream column names; the eight
// offered/occupied counts are nullable upstream and zero-filled by the
// reconciliation pipeline, never here.
type OccupancyReport struct {
	DocIndex             string    `json:"_index" csv:"_index"`
	DocType              string    `json:"_type" csv:"_type"`
	DocID                string    `json:"_id" csv:"_id"`
	Score                *float64  `json:"_score,omitempty" csv:"_score"`
	State                string    `json:"estado" csv:"estado"`
	StateCode            string    `json:"estadoSigla" csv:"estadoSigla"`
	Municipality         string    `json:"municipio" csv:"municipio"`
	CNES                 string    `json:"cnes" csv:"cnes"`
	FacilityName         string    `json:"nomeCnes" csv:"nomeCnes"`
	ReportedAt           time.Time `json:"dataNotificacaoOcupacao" csv:"dataNotificacaoOcupacao"`
	VentilatorsOffered   *float64  `json:"ofertaRespiradores,omitempty" csv:"ofertaRespiradores"`
	OfferedClinical      *float64  `json:"ofertaHospCli,omitempty" csv:"ofertaHospCli"`
	OfferedICU           *float64  `json:"ofertaHospUti,omitempty" csv:"ofertaHospUti"`
	OfferedSARIClinical  *float64  `json:"ofertaSRAGCli,omitempty" csv:"ofertaSRAGCli"`
	OfferedSARIICU       *float64  `json:"ofertaSRAGUti,omitempty" csv:"ofertaSRAGUti"`
	OccupiedClinical     *float64  `json:"ocupHospCli,omitempty" csv:"ocupHospCli"`
	OccupiedICU          *float64  `json:"ocupHospUti,omitempty" csv:"ocupHospUti"`
	OccupiedSARIClinical *float64  `json:"ocupSRAGCli,omitempty" csv:"ocupSRAGCli"`
	OccupiedSARIICU      *float64  `json:"ocupSRAGUti,omitempty" csv:"ocupSRAGUti"`
	Discharges           *float64  `json:"altas,omitempty" csv:"altas"`
	Deaths               *float64  `json:"obitos,omitempty" csv:"obitos"`
	OccupancyReported    *bool     `json:"ocupacaoInformada,omitempty" csv:"ocupacaoInformada"`
	AnyOccupancyReported *bool     `json:"algumaOcupacaoInformada,omitempty" csv:"algumaOcupacaoInformada"`
	RunTimestamp         time.Time `json:"ts_run" csv:"ts_run"`
}

// OccupancyReportColumns is the exact upstream column set, in order. The
// reconciliation pipeline rejects any feed whose header deviates from it.
var OccupancyReportColumns = []string{
	"_index", "_type", "_id", "_score", "estado", "estadoSigla",
	"municipio", "cnes", "nomeCnes", "dataNotificacaoOcupacao",
	"ofertaRespiradores", "ofertaHospCli", "ofertaHospUti",
	"ofertaSRAGCli", "ofertaSRAGUti", "ocupHospCli", "ocupHospUti",
	"ocupSRAGCli", "ocupSRAGUti", "altas", "obitos",
	"ocupacaoInformada", "algumaOcupacaoInformada", "ts_run",
}
