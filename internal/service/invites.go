package service

import (
	"context"
	"errors"
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

var inviteTracer = otel.Tracer("service/invites")

// Invites onboards a user in two phases: create the account at the
// identity provider, then link it to a company. The two writes are
// not atomic; a link failure leaves a real account behind and is
// reported as such instead of being papered over.
type Invites struct {
	accounts    port.DirectoryStore
	memberships port.MembershipStore
	redirectURL string
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewInvites creates the invitation service. redirectURL is where the
// invite e-mail lands the user to set a password.
func NewInvites(
	accounts port.DirectoryStore,
	memberships port.MembershipStore,
	redirectURL string,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Invites {
	return &Invites{
		accounts:    accounts,
		memberships: memberships,
		redirectURL: redirectURL,
		metrics:     metrics,
		logger:      logger,
	}
}

// Invite validates the request, creates the invited account and links
// it to the company. All validation happens before the first provider
// call. A failure after the account exists returns ErrPartialLink
// carrying the created account id.
func (s *Invites) Invite(ctx context.Context, req domain.InviteRequest) (*domain.InviteResult, error) {
	nome := strings.TrimSpace(req.Nome)
	email := strings.TrimSpace(req.Email)
	companyID := strings.TrimSpace(req.CompanyID)

	if nome == "" {
		return nil, &domain.ErrValidation{Field: "nome", Message: "Nome é obrigatório"}
	}
	if email == "" {
		return nil, &domain.ErrValidation{Field: "email", Message: "E-mail é obrigatório"}
	}
	if companyID == "" {
		return nil, &domain.ErrMissingTenant{}
	}
	if _, err := uuid.Parse(companyID); err != nil {
		return nil, &domain.ErrInvalidTenantID{Value: companyID}
	}

	cargo := domain.RoleColaborador
	if raw := strings.TrimSpace(req.Cargo); raw != "" {
		parsed, ok := domain.ParseRole(raw)
		if !ok {
			return nil, &domain.ErrValidation{Field: "cargo", Message: "Cargo inválido: " + raw}
		}
		cargo = parsed
	}

	ctx, span := inviteTracer.Start(ctx, "Invites.Invite")
	defer span.End()
	span.SetAttributes(
		attribute.String("empresa.id", companyID),
		attribute.String("invite.cargo", string(cargo)),
	)

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("invite_user", time.Since(start))
	}()

	acc, err := s.accounts.InviteByEmail(ctx, email, nome, s.redirectURL)
	if err != nil {
		var rejected *domain.ErrInviteRejected
		if errors.As(err, &rejected) {
			s.metrics.IncrInvite("rejected")
			return nil, err
		}
		s.logger.Error("invite: provider call failed",
			zap.String("email", email),
			zap.Error(err),
		)
		s.metrics.IncrExternalError("auth")
		s.metrics.IncrInvite("error")
		return nil, providerErr("supabase/auth", err)
	}

	// Phase two. From here on the account exists at the provider; any
	// failure must surface the id so an operator can finish the link
	// by hand.
	err = s.memberships.InsertMembership(ctx, domain.Membership{
		AccountID: acc.ID,
		CompanyID: companyID,
		Cargo:     cargo,
		Ativo:     true,
	})
	if err != nil {
		s.logger.Error("invite: account created but company link failed",
			zap.String("user_id", acc.ID),
			zap.String("empresa_id", companyID),
			zap.Error(err),
		)
		s.metrics.IncrExternalError("memberships")
		s.metrics.IncrInvite("partial_link")
		return nil, &domain.ErrPartialLink{AccountID: acc.ID, Err: err}
	}

	s.logger.Info("invite: user invited and linked",
		zap.String("user_id", acc.ID),
		zap.String("empresa_id", companyID),
		zap.String("cargo", string(cargo)),
	)
	s.metrics.IncrInvite("success")

	resultEmail := acc.Email
	if resultEmail == "" {
		resultEmail = email
	}
	return &domain.InviteResult{
		ID:    acc.ID,
		Email: resultEmail,
		Cargo: string(cargo),
	}, nil
}
