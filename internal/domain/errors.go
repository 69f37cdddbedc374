package domain

import "fmt"

// Error types for consistent error handling across the back-office.

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrMissingTenant indicates a non-admin request arrived without a
// company identifier.
type ErrMissingTenant struct{}

func (e *ErrMissingTenant) Error() string {
	return "empresaId é obrigatório"
}

// ErrInvalidTenantID indicates the company identifier is present but
// not a valid tenant id (UUID). Distinct from missing.
type ErrInvalidTenantID struct {
	Value string
}

func (e *ErrInvalidTenantID) Error() string {
	return fmt.Sprintf("empresaId inválido: %s", e.Value)
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in a managed-platform call
// (auth admin API, PostgREST, Storage). Never retried automatically.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrInviteRejected indicates the identity provider refused the
// invite (e-mail already registered, malformed address, ...). The
// provider's message is surfaced verbatim; nothing was created.
type ErrInviteRejected struct {
	Reason string
}

func (e *ErrInviteRejected) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return "Falha ao criar usuário."
}

// ErrPartialLink is the named intermediate state of the two-phase
// invite: the account exists in the identity provider but the
// membership insert failed. Carries the created account id so the
// link can be retried without re-inviting.
type ErrPartialLink struct {
	AccountID string
	Err       error
}

func (e *ErrPartialLink) Error() string {
	return fmt.Sprintf("usuário %s criado, mas falha ao vincular à empresa: %v", e.AccountID, e.Err)
}

func (e *ErrPartialLink) Unwrap() error {
	return e.Err
}

// ErrForbidden indicates the requester lacks scope for the requested
// tenant or operation.
type ErrForbidden struct {
	Action string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Action)
}

// ErrUnauthorized indicates invalid credentials or token.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}
