// Package domain holds the core value types of the back-office:
// accounts from the identity provider, companies (empresas), the
// membership rows linking the two, and the shapes returned to the
// dashboard.
package domain

import (
	"strings"
	"time"
)

// Role is the position (cargo) a user holds inside a company.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleGestor      Role = "gestor"
	RoleColaborador Role = "colaborador"
)

// Unknown is the sentinel rendered by the dashboard for missing
// cargo/empresa values. Never an empty string.
const Unknown = "—"

// ParseRole maps an arbitrary string to a known role. Anything
// unrecognized (including "") is not a role; callers treat it as
// non-admin.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleGestor:
		return RoleGestor, true
	case RoleColaborador:
		return RoleColaborador, true
	}
	return "", false
}

// Account is a principal managed by the identity provider. Read-only
// from this system's perspective except for the proxied profile-field
// and password updates.
type Account struct {
	ID          string
	Email       string
	DisplayName string
	// RoleHint is a cargo embedded in the provider's user metadata.
	// Only used when no membership row resolves a role.
	RoleHint  string
	CreatedAt time.Time
}

// ResolveDisplayName applies the canonical fallback chain:
// explicit name → full name → local part of the e-mail → "Usuário".
func ResolveDisplayName(name, fullName, email string) string {
	if s := strings.TrimSpace(name); s != "" {
		return s
	}
	if s := strings.TrimSpace(fullName); s != "" {
		return s
	}
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return "Usuário"
}

// Company is a tenant record (tabela empresas).
type Company struct {
	ID       string `json:"id"`
	Nome     string `json:"nome"`
	CNPJ     string `json:"cnpj,omitempty"`
	Dominio  string `json:"dominio,omitempty"`
	LogoURL  string `json:"logoUrl,omitempty"`
	Telefone string `json:"telefone,omitempty"`
}

// Membership links one account to one company with a role
// (tabela usuarios_empresas). At most one active membership per
// account is meaningful for the queries this system runs.
type Membership struct {
	AccountID string
	CompanyID string
	Cargo     Role
	Ativo     bool
}

// DirectoryEntry is one row of the user listing as the dashboard
// consumes it.
type DirectoryEntry struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Nome        string `json:"nome"`
	Cargo       string `json:"cargo"`
	EmpresaID   string `json:"empresa_id"`
	EmpresaNome string `json:"empresa_nome"`
	CreatedAt   string `json:"created_at"`
}

// CompanyGroup is one bucket of the admin (grouped) listing.
type CompanyGroup struct {
	EmpresaID   string           `json:"empresa_id"`
	EmpresaNome string           `json:"empresa_nome"`
	Usuarios    []DirectoryEntry `json:"usuarios"`
}

// DirectoryResult is the aggregator's output. Exactly one of Users
// (flat, non-admin) or Empresas (grouped, admin) is populated.
type DirectoryResult struct {
	Users    []DirectoryEntry
	Empresas []CompanyGroup
}

// ListUsersRequest carries the requester's scope into the aggregator.
type ListUsersRequest struct {
	// RequesterRole as sent by the dashboard; anything that is not
	// a known role counts as non-admin.
	RequesterRole string
	// CompanyID is required for non-admin requesters.
	CompanyID string
	Search    string
}

// InviteRequest is the invite-user payload after JSON decoding.
type InviteRequest struct {
	Nome      string `json:"nome"`
	Email     string `json:"email"`
	Cargo     string `json:"cargo"`
	CompanyID string `json:"empresaId"`
}

// InviteResult is the created account as reported back to the caller.
type InviteResult struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Cargo string `json:"cargo"`
}

// Session is the "current account + role + company" bundle resolved
// on every privileged dashboard load.
type Session struct {
	User    SessionUser `json:"user"`
	Empresa *Company    `json:"empresa"`
	Cargo   string      `json:"cargo,omitempty"`
}

// SessionUser is the signed-in account as the dashboard sees it.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Nome  string `json:"nome"`
}

// CompanyUpdate carries the mutable empresa fields. Empty fields are
// left untouched.
type CompanyUpdate struct {
	Nome     string `json:"nome"`
	CNPJ     string `json:"cnpj"`
	Dominio  string `json:"dominio"`
	Telefone string `json:"telefone"`
}

// AccountUpdate carries the proxied profile-field updates.
type AccountUpdate struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
}
