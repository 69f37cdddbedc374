package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/vportela/empresas-backoffice-go/internal/domain"
	"github.com/vportela/empresas-backoffice-go/internal/infra/observability"
	"github.com/vportela/empresas-backoffice-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var companyTracer = otel.Tracer("service/companies")

// maxLogoBytes caps logo uploads at 2 MiB.
const maxLogoBytes = 2 << 20

// Companies manages company profile data and logo uploads. Mutations
// require the requester to be an admin, or a gestor of the company
// being changed.
type Companies struct {
	memberships port.MembershipStore
	companies   port.CompanyStore
	logos       port.LogoStore
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewCompanies creates the company service.
func NewCompanies(
	memberships port.MembershipStore,
	companies port.CompanyStore,
	logos port.LogoStore,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Companies {
	return &Companies{
		memberships: memberships,
		companies:   companies,
		logos:       logos,
		metrics:     metrics,
		logger:      logger,
	}
}

// Get returns one company profile, visible to any member of it (or an
// admin).
func (s *Companies) Get(ctx context.Context, requesterID, companyID string) (*domain.Company, error) {
	companyID = strings.TrimSpace(companyID)
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, &domain.ErrInvalidTenantID{Value: companyID}
	}

	ctx, span := companyTracer.Start(ctx, "Companies.Get")
	defer span.End()

	m, err := s.membership(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if m == nil || (m.Cargo != domain.RoleAdmin && m.CompanyID != companyID) {
		return nil, &domain.ErrForbidden{Action: "acesso à empresa"}
	}

	company, err := s.companies.GetCompany(ctx, companyID)
	if err != nil {
		s.metrics.IncrExternalError("empresas")
		return nil, providerErr("supabase/empresas", err)
	}
	if company == nil {
		return nil, &domain.ErrNotFound{Resource: "empresa", ID: companyID}
	}
	return company, nil
}

// Update patches the company profile fields that were provided.
func (s *Companies) Update(ctx context.Context, requesterID, companyID string, upd domain.CompanyUpdate) (*domain.Company, error) {
	companyID = strings.TrimSpace(companyID)
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, &domain.ErrInvalidTenantID{Value: companyID}
	}

	updates := map[string]any{}
	if v := strings.TrimSpace(upd.Nome); v != "" {
		updates["nome"] = v
	}
	if v := strings.TrimSpace(upd.CNPJ); v != "" {
		updates["cnpj"] = v
	}
	if v := strings.TrimSpace(upd.Dominio); v != "" {
		updates["dominio"] = v
	}
	if v := strings.TrimSpace(upd.Telefone); v != "" {
		updates["telefone"] = v
	}
	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "Nenhum campo para atualizar"}
	}

	ctx, span := companyTracer.Start(ctx, "Companies.Update")
	defer span.End()
	span.SetAttributes(attribute.String("empresa.id", companyID))

	if err := s.requireManager(ctx, requesterID, companyID); err != nil {
		return nil, err
	}

	company, err := s.companies.UpdateCompany(ctx, companyID, updates)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, err
		}
		s.metrics.IncrExternalError("empresas")
		return nil, providerErr("supabase/empresas", err)
	}

	s.logger.Info("company updated",
		zap.String("empresa_id", companyID),
		zap.Int("fields", len(updates)),
	)
	return company, nil
}

// UploadLogo stores the logo under a timestamped object path and
// records its public URL on the company row. Returns the URL.
func (s *Companies) UploadLogo(ctx context.Context, requesterID, companyID, filename, contentType string, data []byte) (string, error) {
	companyID = strings.TrimSpace(companyID)
	if _, err := uuid.Parse(companyID); err != nil {
		return "", &domain.ErrInvalidTenantID{Value: companyID}
	}
	if len(data) == 0 {
		return "", &domain.ErrValidation{Field: "logo", Message: "Arquivo vazio"}
	}
	if len(data) > maxLogoBytes {
		return "", &domain.ErrValidation{Field: "logo", Message: "Arquivo excede 2MB"}
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp", ".svg":
	default:
		return "", &domain.ErrValidation{Field: "logo", Message: "Formato de imagem não suportado"}
	}

	ctx, span := companyTracer.Start(ctx, "Companies.UploadLogo")
	defer span.End()
	span.SetAttributes(attribute.String("empresa.id", companyID))

	if err := s.requireManager(ctx, requesterID, companyID); err != nil {
		return "", err
	}

	objectPath := fmt.Sprintf("logos/%s_%d%s", companyID, time.Now().Unix(), ext)
	publicURL, err := s.logos.UploadLogo(ctx, objectPath, contentType, data)
	if err != nil {
		s.metrics.IncrExternalError("storage")
		return "", providerErr("supabase/storage", err)
	}

	if _, err := s.companies.UpdateCompany(ctx, companyID, map[string]any{"logoUrl": publicURL}); err != nil {
		s.metrics.IncrExternalError("empresas")
		return "", providerErr("supabase/empresas", err)
	}

	s.logger.Info("company logo updated",
		zap.String("empresa_id", companyID),
		zap.String("path", objectPath),
	)
	return publicURL, nil
}

// requireManager allows admins anywhere and gestores on their own
// company only.
func (s *Companies) requireManager(ctx context.Context, requesterID, companyID string) error {
	m, err := s.membership(ctx, requesterID)
	if err != nil {
		return err
	}
	if m == nil {
		return &domain.ErrForbidden{Action: "acesso à empresa"}
	}
	if m.Cargo == domain.RoleAdmin {
		return nil
	}
	if m.Cargo == domain.RoleGestor && m.CompanyID == companyID {
		return nil
	}
	return &domain.ErrForbidden{Action: "alterar a empresa"}
}

func (s *Companies) membership(ctx context.Context, requesterID string) (*domain.Membership, error) {
	m, err := s.memberships.GetActiveMembership(ctx, requesterID)
	if err != nil {
		s.metrics.IncrExternalError("memberships")
		return nil, providerErr("supabase/memberships", err)
	}
	return m, nil
}
