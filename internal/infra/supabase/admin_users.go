package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/vportela/empresas-backoffice-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// GoTrue admin API (implements port.DirectoryStore)
// ============================================================

// listPageSize is the per_page used when walking the directory. The
// logical contract is "all accounts", so pages are fetched until a
// short page signals the end.
const listPageSize = 1000

// authUser is the raw GoTrue admin user record. Metadata is kept
// loose here; mapping into the domain type is the single place the
// fallback chains are applied.
type authUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	CreatedAt    string         `json:"created_at"`
	UserMetadata map[string]any `json:"user_metadata"`
	AppMetadata  map[string]any `json:"app_metadata"`
}

type listUsersResponse struct {
	Users []authUser `json:"users"`
}

// mapAuthUser converts a raw provider record to a domain Account,
// applying the display-name and role-hint fallback chains.
func mapAuthUser(u authUser) domain.Account {
	name := metaString(u.UserMetadata, "name")
	fullName := metaString(u.UserMetadata, "full_name")
	if fullName == "" {
		fullName = metaString(u.UserMetadata, "nome")
	}

	roleHint := metaString(u.UserMetadata, "cargo")
	if roleHint == "" {
		roleHint = metaString(u.UserMetadata, "role")
	}

	createdAt, err := time.Parse(time.RFC3339, u.CreatedAt)
	if err != nil {
		createdAt = time.Time{}
	}

	return domain.Account{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: domain.ResolveDisplayName(name, fullName, u.Email),
		RoleHint:    roleHint,
		CreatedAt:   createdAt,
	}
}

func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	s, _ := meta[key].(string)
	return s
}

// ListAccounts fetches the full account directory, page by page.
func (c *Client) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAccounts")
	defer span.End()

	var accounts []domain.Account
	for page := 1; ; page++ {
		path := fmt.Sprintf("/auth/v1/admin/users?page=%d&per_page=%d", page, listPageSize)
		body, err := c.guard(ctx, func() ([]byte, error) {
			return c.do(ctx, http.MethodGet, path, nil, "")
		})
		if err != nil {
			return nil, err
		}

		var resp listUsersResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decode admin users: %w", err)
		}

		for _, u := range resp.Users {
			accounts = append(accounts, mapAuthUser(u))
		}
		if len(resp.Users) < listPageSize {
			break
		}
	}

	span.SetAttributes(attribute.Int("accounts.count", len(accounts)))
	return accounts, nil
}

// GetAccount fetches a single account; nil when it does not exist.
func (c *Client) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetAccount")
	defer span.End()

	path := "/auth/v1/admin/users/" + url.PathEscape(accountID)
	body, err := c.guard(ctx, func() ([]byte, error) {
		return c.do(ctx, http.MethodGet, path, nil, "")
	})
	if err != nil {
		if se, ok := asStatusError(err); ok && se.status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}

	var u authUser
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("decode admin user: %w", err)
	}
	acc := mapAuthUser(u)
	return &acc, nil
}

// InviteByEmail asks GoTrue to create and e-mail an invited account.
// A 4xx from the provider (e-mail already registered, malformed
// address) is surfaced as ErrInviteRejected with the provider's
// message verbatim.
func (c *Client) InviteByEmail(ctx context.Context, email, displayName, redirectTo string) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Supabase.InviteByEmail")
	defer span.End()

	path := "/auth/v1/invite"
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}

	payload := map[string]any{
		"email": email,
		"data":  map[string]any{"name": displayName},
	}

	body, err := c.guard(ctx, func() ([]byte, error) {
		return c.do(ctx, http.MethodPost, path, payload, "")
	})
	if err != nil {
		if se, ok := asStatusError(err); ok && se.status >= 400 && se.status < 500 {
			c.logger.Warn("supabase: invite rejected",
				zap.String("email", email),
				zap.Int("status", se.status),
				zap.String("message", se.message),
			)
			return nil, &domain.ErrInviteRejected{Reason: se.message}
		}
		return nil, err
	}

	var u authUser
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("decode invited user: %w", err)
	}
	if u.ID == "" {
		return nil, &domain.ErrInviteRejected{Reason: "Falha ao criar usuário."}
	}

	acc := mapAuthUser(u)
	return &acc, nil
}

// UpdateAccount patches name and/or e-mail on the provider record.
func (c *Client) UpdateAccount(ctx context.Context, accountID string, upd domain.AccountUpdate) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateAccount")
	defer span.End()

	payload := map[string]any{}
	if upd.Email != "" {
		payload["email"] = upd.Email
	}
	if upd.Nome != "" {
		payload["user_metadata"] = map[string]any{"name": upd.Nome}
	}

	path := "/auth/v1/admin/users/" + url.PathEscape(accountID)
	body, err := c.guard(ctx, func() ([]byte, error) {
		return c.do(ctx, http.MethodPut, path, payload, "")
	})
	if err != nil {
		return nil, err
	}

	var u authUser
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("decode updated user: %w", err)
	}
	acc := mapAuthUser(u)
	return &acc, nil
}

// SetPassword sets a new password for the account.
func (c *Client) SetPassword(ctx context.Context, accountID, password string) error {
	ctx, span := tracer.Start(ctx, "Supabase.SetPassword")
	defer span.End()

	path := "/auth/v1/admin/users/" + url.PathEscape(accountID)
	_, err := c.guard(ctx, func() ([]byte, error) {
		return c.do(ctx, http.MethodPut, path, map[string]any{"password": password}, "")
	})
	return err
}

func asStatusError(err error) (*statusError, bool) {
	var se *statusError
	ok := errors.As(err, &se)
	return se, ok
}
