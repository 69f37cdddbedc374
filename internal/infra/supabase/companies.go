package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/vportela/empresas-backoffice-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// empresas (implements port.CompanyStore)
// ============================================================

// companyRow maps the empresas table columns.
type companyRow struct {
	ID       string `json:"id"`
	Nome     string `json:"nome"`
	CNPJ     string `json:"cnpj"`
	Dominio  string `json:"dominio"`
	LogoURL  string `json:"logoUrl"`
	Telefone string `json:"telefone"`
}

func (r companyRow) toDomain() domain.Company {
	return domain.Company{
		ID:       r.ID,
		Nome:     r.Nome,
		CNPJ:     r.CNPJ,
		Dominio:  r.Dominio,
		LogoURL:  r.LogoURL,
		Telefone: r.Telefone,
	}
}

// GetCompanyNames fetches {id, nome} for exactly the given id set, so
// unrelated tenants' names are never pulled. Empty input short-circuits
// without a provider call.
func (c *Client) GetCompanyNames(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	ctx, span := tracer.Start(ctx, "Supabase.GetCompanyNames")
	defer span.End()
	span.SetAttributes(attribute.Int("empresas.count", len(ids)))

	path := "/rest/v1/empresas?select=id,nome&id=" + url.QueryEscape(inFilter(ids))
	body, err := c.guard(ctx, func() ([]byte, error) {
		return c.do(ctx, http.MethodGet, path, nil, "")
	})
	if err != nil {
		return nil, err
	}

	var rows []companyRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode empresas: %w", err)
	}

	names := make(map[string]string, len(rows))
	for _, r := range rows {
		names[r.ID] = r.Nome
	}
	return names, nil
}

// GetCompany fetches one empresa row; nil when it does not exist.
func (c *Client) GetCompany(ctx context.Context, companyID string) (*domain.Company, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCompany")
	defer span.End()

	path := "/rest/v1/empresas?id=eq." + url.QueryEscape(companyID) + "&limit=1"
	body, err := c.guard(ctx, func() ([]byte, error) {
		return c.do(ctx, http.MethodGet, path, nil, "")
	})
	if err != nil {
		return nil, err
	}
	if len(body) == 0 || string(body) == "[]" {
		return nil, nil
	}

	var rows []companyRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode empresas: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	company := rows[0].toDomain()
	return &company, nil
}

// UpdateCompany patches the empresa row and returns the updated record.
func (c *Client) UpdateCompany(ctx context.Context, companyID string, updates map[string]any) (*domain.Company, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCompany")
	defer span.End()
	span.SetAttributes(attribute.String("empresa.id", companyID))

	path := "/rest/v1/empresas?id=eq." + url.QueryEscape(companyID)
	body, err := c.guard(ctx, func() ([]byte, error) {
		return c.do(ctx, http.MethodPatch, path, updates, "return=representation")
	})
	if err != nil {
		return nil, err
	}

	var rows []companyRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode empresas: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "empresa", ID: companyID}
	}
	company := rows[0].toDomain()
	return &company, nil
}
