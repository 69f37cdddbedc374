package service

import (
	"context"
	"strings"

	"github.com/vportela/empresas-backoffice-go/internal/domain"
	"github.com/vportela/empresas-backoffice-go/internal/infra/observability"
	"github.com/vportela/empresas-backoffice-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var accountTracer = otel.Tracer("service/accounts")

// minPasswordLen mirrors the provider's own minimum.
const minPasswordLen = 6

// Accounts exposes the signed-in user's self-service operations:
// profile updates and password changes. Passwords never touch our
// storage; both operations proxy straight to the identity provider.
type Accounts struct {
	accounts port.DirectoryStore
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewAccounts creates the account service.
func NewAccounts(accounts port.DirectoryStore, metrics *observability.Metrics, logger *zap.Logger) *Accounts {
	return &Accounts{accounts: accounts, metrics: metrics, logger: logger}
}

// UpdateProfile patches the account's name and/or e-mail at the
// provider and returns the refreshed view.
func (s *Accounts) UpdateProfile(ctx context.Context, accountID string, upd domain.AccountUpdate) (*domain.SessionUser, error) {
	upd.Nome = strings.TrimSpace(upd.Nome)
	upd.Email = strings.TrimSpace(upd.Email)
	if upd.Nome == "" && upd.Email == "" {
		return nil, &domain.ErrValidation{Field: "body", Message: "Nenhum campo para atualizar"}
	}

	ctx, span := accountTracer.Start(ctx, "Accounts.UpdateProfile")
	defer span.End()

	acc, err := s.accounts.UpdateAccount(ctx, accountID, upd)
	if err != nil {
		s.metrics.IncrExternalError("auth")
		return nil, providerErr("supabase/auth", err)
	}

	s.logger.Info("account profile updated", zap.String("user_id", accountID))
	return &domain.SessionUser{
		ID:    acc.ID,
		Email: acc.Email,
		Nome:  acc.DisplayName,
	}, nil
}

// ChangePassword sets a new password for the account.
func (s *Accounts) ChangePassword(ctx context.Context, accountID, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return &domain.ErrValidation{Field: "novaSenha", Message: "A senha deve ter pelo menos 6 caracteres"}
	}

	ctx, span := accountTracer.Start(ctx, "Accounts.ChangePassword")
	defer span.End()

	if err := s.accounts.SetPassword(ctx, accountID, newPassword); err != nil {
		s.metrics.IncrExternalError("auth")
		return providerErr("supabase/auth", err)
	}

	s.logger.Info("account password changed", zap.String("user_id", accountID))
	return nil
}
