package cnes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/saudedados/leitos-backend/internal/domain/entities"
	apperrors "github.com/saudedados/leitos-backend/pkg/errors"
)

// Client performs the registry lookups needed to assemble one facility's
// composed document. No retry or backoff happens at this layer; failure
// handling belongs to the batch runner.
type Client interface {
	FindCandidates(ctx context.Context, cnes string) ([]CandidateSummary, error)
	FetchDetail(ctx context.Context, registryID string) (*Detail, error)
	FetchBeds(ctx context.Context, registryID string) ([]entities.BedItem, error)
	FetchDeactivationFlag(ctx context.Context, registryID string) (bool, error)
	Compose(ctx context.Context, cnes string) (*entities.RegistryDocument, error)
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// CandidateSummary is one search hit for a facility code. The registry may
// return several historical matches per code.
type CandidateSummary struct {
	ID           json.Number `json:"id"`
	CNES         string      `json:"cnes"`
	Name         string      `json:"nome"`
	Municipality string      `json:"municipio"`
	StateCode    string      `json:"uf"`
}

// Detail is a facility's registry detail document.
type Detail struct {
	ID           json.Number `json:"id"`
	CNES         string      `json:"cnes"`
	Name         string      `json:"noFantasia"`
	BusinessName string      `json:"noEmpresarial"`
	Municipality string      `json:"noMunicipio"`
	StateCode    string      `json:"uf"`
}

// bedItem is the wire shape of one inventory line. Quantities arrive as
// numbers or as free text depending on the registry's mood, so they are kept
// as raw text and parsed downstream.
type bedItem struct {
	WardLabel      string   `json:"dsLeito"`
	AttributeLabel string   `json:"dsAtributo"`
	ExistingQty    rawValue `json:"qtExistente"`
}

type deactivationResponse struct {
	Exists bool `json:"existe"`
}

// rawValue captures a JSON value as its literal text, unquoting strings.
type rawValue string

func (v *rawValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = rawValue(s)
		return nil
	}
	*v = rawValue(data)
	return nil
}

func NewClient(baseURL string, timeout time.Duration) *HTTPClient {
	trimmed := strings.TrimRight(baseURL, "/")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: trimmed,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SelectCanonical picks the canonical candidate among the registry's search
// hits. The registry orders hits most-relevant-first, so the first one wins;
// this is a documented heuristic, not a registry guarantee. Returns nil when
// there are no candidates.
func SelectCanonical(candidates []CandidateSummary) *CandidateSummary {
	if len(candidates) == 0 {
		return nil
	}
	return &candidates[0]
}

func (c *HTTPClient) FindCandidates(ctx context.Context, cnes string) ([]CandidateSummary, error) {
	endpoint := fmt.Sprintf("%s/services/estabelecimentos?cnes=%s", c.baseURL, url.QueryEscape(cnes))
	var out []CandidateSummary
	if err := c.doJSON(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) FetchDetail(ctx context.Context, registryID string) (*Detail, error) {
	endpoint := fmt.Sprintf("%s/services/estabelecimentos/%s", c.baseURL, url.PathEscape(registryID))
	out := &Detail{}
	if err := c.doJSON(ctx, endpoint, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) FetchBeds(ctx context.Context, registryID string) ([]entities.BedItem, error) {
	endpoint := fmt.Sprintf("%s/services/estabelecimentos-hospitalar/%s", c.baseURL, url.PathEscape(registryID))
	var items []bedItem
	if err := c.doJSON(ctx, endpoint, &items); err != nil {
		return nil, err
	}
	beds := make([]entities.BedItem, 0, len(items))
	for _, item := range items {
		beds = append(beds, entities.BedItem{
			WardLabel:      item.WardLabel,
			AttributeLabel: item.AttributeLabel,
			ExistingQty:    string(item.ExistingQty),
		})
	}
	return beds, nil
}

func (c *HTTPClient) FetchDeactivationFlag(ctx context.Context, registryID string) (bool, error) {
	endpoint := fmt.Sprintf("%s/services/estabelecimentos-desativados-local/validar/%s", c.baseURL, url.PathEscape(registryID))
	out := &deactivationResponse{}
	if err := c.doJSON(ctx, endpoint, out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

// Compose runs the four lookups in sequence and merges beds and the
// deactivation flag into the detail document. Fails with a lookup error when
// the code has no candidates and a transport error for any service failure.
func (c *HTTPClient) Compose(ctx context.Context, cnes string) (*entities.RegistryDocument, error) {
	candidates, err := c.FindCandidates(ctx, cnes)
	if err != nil {
		return nil, err
	}

	canonical := SelectCanonical(candidates)
	if canonical == nil {
		return nil, apperrors.NewLookupError(fmt.Sprintf("no registry candidate for cnes %s", cnes))
	}
	registryID := canonical.ID.String()

	detail, err := c.FetchDetail(ctx, registryID)
	if err != nil {
		return nil, err
	}
	beds, err := c.FetchBeds(ctx, registryID)
	if err != nil {
		return nil, err
	}
	deactivated, err := c.FetchDeactivationFlag(ctx, registryID)
	if err != nil {
		return nil, err
	}

	return &entities.RegistryDocument{
		CNES:         cnes,
		RegistryID:   &registryID,
		Name:         detail.Name,
		BusinessName: detail.BusinessName,
		Municipality: detail.Municipality,
		StateCode:    detail.StateCode,
		Deactivated:  &deactivated,
		Beds:         beds,
	}, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, endpoint string, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperrors.NewTransportError("failed to build registry request", err)
	}
	httpReq.Header.Set("Accept", "application/json, text/plain, */*")
	httpReq.Header.Set("Cache-Control", "no-cache")
	httpReq.Header.Set("Referer", c.baseURL+"/pages/estabelecimentos/consulta.jsp")
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/70.0.3538.77 Safari/537.36")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return apperrors.NewTransportError("registry request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.NewTransportError(fmt.Sprintf("registry returned status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewTransportError("failed to decode registry response", err)
	}

	return nil
}
