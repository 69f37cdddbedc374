package service_test

import (
	"context"

	"github.com/vportela/empresas-backoffice-go/internal/domain"
)

// Hand-rolled store mocks. Each records the arguments it was called
// with so tests can assert on query scoping and call counts.

type directoryStoreMock struct {
	accounts  []domain.Account
	listErr   error
	listCalls int

	account *domain.Account
	getErr  error

	invited        *domain.Account
	inviteErr      error
	inviteCalls    int
	inviteEmail    string
	inviteName     string
	inviteRedirect string

	updated   *domain.Account
	updateErr error

	passwordSet    string
	setPasswordErr error
}

func (m *directoryStoreMock) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.accounts, nil
}

func (m *directoryStoreMock) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.account, nil
}

func (m *directoryStoreMock) InviteByEmail(ctx context.Context, email, displayName, redirectTo string) (*domain.Account, error) {
	m.inviteCalls++
	m.inviteEmail = email
	m.inviteName = displayName
	m.inviteRedirect = redirectTo
	if m.inviteErr != nil {
		return nil, m.inviteErr
	}
	return m.invited, nil
}

func (m *directoryStoreMock) UpdateAccount(ctx context.Context, accountID string, upd domain.AccountUpdate) (*domain.Account, error) {
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return m.updated, nil
}

func (m *directoryStoreMock) SetPassword(ctx context.Context, accountID, password string) error {
	m.passwordSet = password
	return m.setPasswordErr
}

type membershipStoreMock struct {
	memberships []domain.Membership
	listErr     error
	listCalls   int
	listScope   string

	active    *domain.Membership
	activeErr error

	inserted    []domain.Membership
	insertErr   error
	insertCalls int
}

func (m *membershipStoreMock) ListActiveMemberships(ctx context.Context, companyID string) ([]domain.Membership, error) {
	m.listCalls++
	m.listScope = companyID
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.memberships, nil
}

func (m *membershipStoreMock) GetActiveMembership(ctx context.Context, accountID string) (*domain.Membership, error) {
	if m.activeErr != nil {
		return nil, m.activeErr
	}
	return m.active, nil
}

func (m *membershipStoreMock) InsertMembership(ctx context.Context, membership domain.Membership) error {
	m.insertCalls++
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, membership)
	return nil
}

type companyStoreMock struct {
	names      map[string]string
	namesErr   error
	namesCalls int
	askedIDs   []string

	company *domain.Company
	getErr  error

	updated     *domain.Company
	updateErr   error
	lastUpdates map[string]any
}

func (m *companyStoreMock) GetCompanyNames(ctx context.Context, ids []string) (map[string]string, error) {
	m.namesCalls++
	m.askedIDs = ids
	if m.namesErr != nil {
		return nil, m.namesErr
	}
	if m.names == nil {
		return map[string]string{}, nil
	}
	return m.names, nil
}

func (m *companyStoreMock) GetCompany(ctx context.Context, companyID string) (*domain.Company, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.company, nil
}

func (m *companyStoreMock) UpdateCompany(ctx context.Context, companyID string, updates map[string]any) (*domain.Company, error) {
	m.lastUpdates = updates
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	if m.updated != nil {
		return m.updated, nil
	}
	return &domain.Company{ID: companyID}, nil
}

type logoStoreMock struct {
	url         string
	err         error
	lastPath    string
	lastType    string
	lastPayload []byte
}

func (m *logoStoreMock) UploadLogo(ctx context.Context, objectPath, contentType string, data []byte) (string, error) {
	m.lastPath = objectPath
	m.lastType = contentType
	m.lastPayload = data
	if m.err != nil {
		return "", m.err
	}
	return m.url, nil
}
