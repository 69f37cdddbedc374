package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/vportela/empresas-backoffice-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// usuarios_empresas (implements port.MembershipStore)
// ============================================================

// membershipRow maps the usuarios_empresas table columns.
type membershipRow struct {
	UsuarioID string `json:"usuario_id"`
	EmpresaID string `json:"empresa_id"`
	Cargo     string `json:"cargo"`
	Ativo     bool   `json:"ativo"`
}

func (r membershipRow) toDomain() domain.Membership {
	cargo, _ := domain.ParseRole(r.Cargo)
	return domain.Membership{
		AccountID: r.UsuarioID,
		CompanyID: r.EmpresaID,
		Cargo:     cargo,
		Ativo:     r.Ativo,
	}
}

// ListActiveMemberships returns active membership rows. A non-empty
// companyID restricts the rows at the query level: this is the
// authorization boundary for company-scoped listings, not an
// optimization.
func (c *Client) ListActiveMemberships(ctx context.Context, companyID string) ([]domain.Membership, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListActiveMemberships")
	defer span.End()

	path := "/rest/v1/usuarios_empresas?select=usuario_id,empresa_id,cargo,ativo&ativo=is.true"
	if companyID != "" {
		path += "&empresa_id=eq." + url.QueryEscape(companyID)
		span.SetAttributes(attribute.String("empresa.id", companyID))
	}

	body, err := c.guard(ctx, func() ([]byte, error) {
		return c.do(ctx, http.MethodGet, path, nil, "")
	})
	if err != nil {
		return nil, err
	}

	var rows []membershipRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode usuarios_empresas: %w", err)
	}

	memberships := make([]domain.Membership, 0, len(rows))
	for _, r := range rows {
		memberships = append(memberships, r.toDomain())
	}
	return memberships, nil
}

// GetActiveMembership returns the account's single active membership,
// nil when the account is not linked to any company.
func (c *Client) GetActiveMembership(ctx context.Context, accountID string) (*domain.Membership, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetActiveMembership")
	defer span.End()

	path := "/rest/v1/usuarios_empresas?select=usuario_id,empresa_id,cargo,ativo" +
		"&usuario_id=eq." + url.QueryEscape(accountID) + "&ativo=is.true&limit=1"

	body, err := c.guard(ctx, func() ([]byte, error) {
		return c.do(ctx, http.MethodGet, path, nil, "")
	})
	if err != nil {
		return nil, err
	}
	if len(body) == 0 || string(body) == "[]" {
		return nil, nil
	}

	var rows []membershipRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode usuarios_empresas: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	m := rows[0].toDomain()
	return &m, nil
}

// InsertMembership creates one usuarios_empresas row.
func (c *Client) InsertMembership(ctx context.Context, m domain.Membership) error {
	ctx, span := tracer.Start(ctx, "Supabase.InsertMembership")
	defer span.End()

	row := map[string]any{
		"usuario_id": m.AccountID,
		"empresa_id": m.CompanyID,
		"cargo":      string(m.Cargo),
		"ativo":      m.Ativo,
	}

	_, err := c.guard(ctx, func() ([]byte, error) {
		return c.do(ctx, http.MethodPost, "/rest/v1/usuarios_empresas", row, "return=minimal")
	})
	return err
}

// inFilter builds a PostgREST `in.(...)` filter value.
func inFilter(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = `"` + id + `"`
	}
	return "in.(" + strings.Join(quoted, ",") + ")"
}
