// Package service holds the back-office business logic: the
// membership aggregator, the invitation issuer and the company and
// account operations. Services receive their stores by injection and
// keep no per-request state.
package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/vportela/empresas-backoffice-go/internal/domain"
	"github.com/vportela/empresas-backoffice-go/internal/infra/observability"
	"github.com/vportela/empresas-backoffice-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var tracer = otel.Tracer("service/directory")

// semEmpresa labels the admin bucket for accounts with no membership.
const semEmpresa = "Sem empresa"

// Directory aggregates the identity-provider directory with the
// membership and company tables into the listing each requester is
// allowed to see.
type Directory struct {
	accounts    port.DirectoryStore
	memberships port.MembershipStore
	companies   port.CompanyStore
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewDirectory creates the directory service with all dependencies injected.
func NewDirectory(
	accounts port.DirectoryStore,
	memberships port.MembershipStore,
	companies port.CompanyStore,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Directory {
	return &Directory{
		accounts:    accounts,
		memberships: memberships,
		companies:   companies,
		metrics:     metrics,
		logger:      logger,
	}
}

// ListUsers returns the user listing visible to the requester.
//
// Admins see every account grouped by company; everyone else sees a
// flat list restricted, at the query level, to their own company.
// Validation failures happen before any provider call.
func (d *Directory) ListUsers(ctx context.Context, req domain.ListUsersRequest) (*domain.DirectoryResult, error) {
	role, known := domain.ParseRole(req.RequesterRole)
	isAdmin := known && role == domain.RoleAdmin

	companyID := strings.TrimSpace(req.CompanyID)
	if !isAdmin && companyID == "" {
		return nil, &domain.ErrMissingTenant{}
	}
	if companyID != "" {
		if _, err := uuid.Parse(companyID); err != nil {
			return nil, &domain.ErrInvalidTenantID{Value: companyID}
		}
	}

	ctx, span := tracer.Start(ctx, "Directory.ListUsers")
	defer span.End()
	span.SetAttributes(
		attribute.Bool("requester.admin", isAdmin),
		attribute.String("empresa.id", companyID),
	)

	start := time.Now()
	defer func() {
		d.metrics.RecordRequestDuration("list_users", time.Since(start))
	}()

	// The directory and membership fetches are independent, so they
	// run concurrently. A failure in either fails the whole request:
	// no partial results.
	var (
		accounts    []domain.Account
		memberships []domain.Membership
	)

	scope := ""
	if !isAdmin {
		scope = companyID
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := d.accounts.ListAccounts(gCtx)
		if err != nil {
			d.logger.Error("failed to list accounts", zap.Error(err))
			d.metrics.IncrExternalError("auth")
			return providerErr("supabase/auth", err)
		}
		accounts = a
		return nil
	})
	g.Go(func() error {
		m, err := d.memberships.ListActiveMemberships(gCtx, scope)
		if err != nil {
			d.logger.Error("failed to list memberships",
				zap.String("empresa_id", scope),
				zap.Error(err),
			)
			d.metrics.IncrExternalError("memberships")
			return providerErr("supabase/memberships", err)
		}
		memberships = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byAccount := make(map[string]domain.Membership, len(memberships))
	companySet := make(map[string]struct{})
	for _, m := range memberships {
		if _, ok := byAccount[m.AccountID]; !ok {
			byAccount[m.AccountID] = m
		}
		companySet[m.CompanyID] = struct{}{}
	}

	companyIDs := make([]string, 0, len(companySet))
	for id := range companySet {
		companyIDs = append(companyIDs, id)
	}
	sort.Strings(companyIDs)

	names, err := d.companies.GetCompanyNames(ctx, companyIDs)
	if err != nil {
		d.logger.Error("failed to fetch company names", zap.Error(err))
		d.metrics.IncrExternalError("empresas")
		return nil, providerErr("supabase/empresas", err)
	}

	search := strings.ToLower(strings.TrimSpace(req.Search))

	entries := make([]domain.DirectoryEntry, 0, len(accounts))
	for _, acc := range accounts {
		m, linked := byAccount[acc.ID]
		if !isAdmin && !linked {
			// Non-admins only ever see co-members of their own company.
			continue
		}
		entries = append(entries, buildEntry(acc, m, linked, names))
	}

	if search != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if matchesSearch(e, search, isAdmin) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	coll := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)

	if !isAdmin {
		sort.SliceStable(entries, func(i, j int) bool {
			return coll.CompareString(entries[i].Nome, entries[j].Nome) < 0
		})
		return &domain.DirectoryResult{Users: entries}, nil
	}

	return &domain.DirectoryResult{Empresas: groupByCompany(entries, coll)}, nil
}

// buildEntry resolves one listing row, applying the role and company
// fallback chains.
func buildEntry(acc domain.Account, m domain.Membership, linked bool, names map[string]string) domain.DirectoryEntry {
	cargo := domain.Unknown
	empresaID := ""
	empresaNome := domain.Unknown

	if linked {
		if m.Cargo != "" {
			cargo = string(m.Cargo)
		}
		empresaID = m.CompanyID
		if nome, ok := names[m.CompanyID]; ok && nome != "" {
			empresaNome = nome
		}
	}
	if cargo == domain.Unknown && acc.RoleHint != "" {
		cargo = acc.RoleHint
	}

	createdAt := ""
	if !acc.CreatedAt.IsZero() {
		createdAt = acc.CreatedAt.Format(time.RFC3339)
	}

	return domain.DirectoryEntry{
		ID:          acc.ID,
		Email:       acc.Email,
		Nome:        acc.DisplayName,
		Cargo:       cargo,
		EmpresaID:   empresaID,
		EmpresaNome: empresaNome,
		CreatedAt:   createdAt,
	}
}

// matchesSearch applies the case-insensitive substring filter over
// e-mail and name; in grouped (admin) mode the company name also
// matches.
func matchesSearch(e domain.DirectoryEntry, term string, grouped bool) bool {
	if strings.Contains(strings.ToLower(e.Email), term) {
		return true
	}
	if strings.Contains(strings.ToLower(e.Nome), term) {
		return true
	}
	if grouped && strings.Contains(strings.ToLower(e.EmpresaNome), term) {
		return true
	}
	return false
}

// groupByCompany buckets entries per company, orders the buckets by
// company name under pt-BR collation and keeps the memberless bucket
// last.
func groupByCompany(entries []domain.DirectoryEntry, coll *collate.Collator) []domain.CompanyGroup {
	groups := make(map[string]*domain.CompanyGroup)
	for _, e := range entries {
		key := e.EmpresaID
		g, ok := groups[key]
		if !ok {
			nome := e.EmpresaNome
			if key == "" {
				nome = semEmpresa
			}
			g = &domain.CompanyGroup{EmpresaID: key, EmpresaNome: nome}
			groups[key] = g
		}
		g.Usuarios = append(g.Usuarios, e)
	}

	out := make([]domain.CompanyGroup, 0, len(groups))
	for _, g := range groups {
		sort.SliceStable(g.Usuarios, func(i, j int) bool {
			return coll.CompareString(g.Usuarios[i].Nome, g.Usuarios[j].Nome) < 0
		})
		out = append(out, *g)
	}

	sort.SliceStable(out, func(i, j int) bool {
		// Memberless bucket sorts last.
		if out[i].EmpresaID == "" {
			return false
		}
		if out[j].EmpresaID == "" {
			return true
		}
		return coll.CompareString(out[i].EmpresaNome, out[j].EmpresaNome) < 0
	})
	return out
}

// ResolveSession resolves the "current account + role + company"
// bundle for a signed-in account. No membership is not an error: the
// session simply carries no empresa/cargo.
func (d *Directory) ResolveSession(ctx context.Context, accountID string) (*domain.Session, error) {
	ctx, span := tracer.Start(ctx, "Directory.ResolveSession")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", accountID))

	acc, err := d.accounts.GetAccount(ctx, accountID)
	if err != nil {
		d.metrics.IncrExternalError("auth")
		return nil, providerErr("supabase/auth", err)
	}
	if acc == nil {
		return nil, &domain.ErrUnauthorized{Message: "Sessão inválida"}
	}

	sess := &domain.Session{
		User: domain.SessionUser{
			ID:    acc.ID,
			Email: acc.Email,
			Nome:  acc.DisplayName,
		},
	}

	m, err := d.memberships.GetActiveMembership(ctx, accountID)
	if err != nil {
		d.metrics.IncrExternalError("memberships")
		return nil, providerErr("supabase/memberships", err)
	}
	if m == nil {
		return sess, nil
	}

	sess.Cargo = string(m.Cargo)

	company, err := d.companies.GetCompany(ctx, m.CompanyID)
	if err != nil {
		d.metrics.IncrExternalError("empresas")
		return nil, providerErr("supabase/empresas", err)
	}
	sess.Empresa = company
	return sess, nil
}

// providerErr wraps a store failure as a provider error, leaving
// already-typed domain errors untouched.
func providerErr(service string, err error) error {
	var circuitOpen *domain.ErrCircuitOpen
	if errors.As(err, &circuitOpen) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &domain.ErrExternalService{Service: service, Err: err}
}
