// Package port defines the interfaces (ports) for the managed
// platform the back-office delegates to. Following hexagonal
// architecture, these ports decouple the service layer from the
// Supabase adapter so the aggregator and issuer stay testable with
// substitute providers.
package port

import (
	"context"

	"github.com/vportela/empresas-backoffice-go/internal/domain"
)

// DirectoryStore is the identity provider's admin surface: the full
// account directory plus the proxied account mutations.
type DirectoryStore interface {
	// ListAccounts returns every account in the directory.
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	// GetAccount returns one account, nil when it does not exist.
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	// InviteByEmail asks the provider to create and e-mail an invited
	// account; redirectTo is the set-your-password landing page.
	InviteByEmail(ctx context.Context, email, displayName, redirectTo string) (*domain.Account, error)
	// UpdateAccount patches name and/or e-mail on the provider record.
	UpdateAccount(ctx context.Context, accountID string, upd domain.AccountUpdate) (*domain.Account, error)
	// SetPassword sets a new password for the account.
	SetPassword(ctx context.Context, accountID, password string) error
}

// MembershipStore reads and writes usuarios_empresas rows.
type MembershipStore interface {
	// ListActiveMemberships returns active memberships; when companyID
	// is non-empty the restriction happens at the query level. This is
	// the authorization boundary for non-admin listings.
	ListActiveMemberships(ctx context.Context, companyID string) ([]domain.Membership, error)
	// GetActiveMembership returns the account's single active
	// membership, nil when the account is not linked anywhere.
	GetActiveMembership(ctx context.Context, accountID string) (*domain.Membership, error)
	// InsertMembership creates one membership row.
	InsertMembership(ctx context.Context, m domain.Membership) error
}

// CompanyStore reads and writes empresas rows.
type CompanyStore interface {
	// GetCompanyNames fetches {id, nome} for exactly the given set.
	GetCompanyNames(ctx context.Context, ids []string) (map[string]string, error)
	GetCompany(ctx context.Context, companyID string) (*domain.Company, error)
	UpdateCompany(ctx context.Context, companyID string, updates map[string]any) (*domain.Company, error)
}

// LogoStore uploads company logos to object storage and yields their
// public URL.
type LogoStore interface {
	UploadLogo(ctx context.Context, objectPath, contentType string, data []byte) (publicURL string, err error)
}
