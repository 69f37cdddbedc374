package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vportela/empresas-backoffice-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error  string `json:"error"`
	UserID string `json:"user_id,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// handleServiceError maps domain errors to HTTP responses. Provider
// details never leak into 500 bodies; the partial-link case is the one
// 500 that carries structure, because the caller needs the created id.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var validation *domain.ErrValidation
	var missingTenant *domain.ErrMissingTenant
	var invalidTenant *domain.ErrInvalidTenantID
	var inviteRejected *domain.ErrInviteRejected
	var partialLink *domain.ErrPartialLink
	var notFound *domain.ErrNotFound
	var circuitOpen *domain.ErrCircuitOpen
	var forbidden *domain.ErrForbidden
	var unauthorized *domain.ErrUnauthorized
	var external *domain.ErrExternalService

	switch {
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, validation.Message)
	case errors.As(err, &missingTenant):
		logger.Debug("missing empresaId")
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &invalidTenant):
		logger.Debug("invalid empresaId", zap.String("value", invalidTenant.Value))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &inviteRejected):
		logger.Warn("invite rejected by provider", zap.String("reason", inviteRejected.Reason))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &unauthorized):
		logger.Warn("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &forbidden):
		logger.Warn("forbidden access", zap.String("error", err.Error()))
		writeError(w, http.StatusForbidden, "Acesso negado")
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "Serviço temporariamente indisponível")
	case errors.As(err, &partialLink):
		logger.Error("partial invite link", zap.String("user_id", partialLink.AccountID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:  "Usuário criado, mas houve falha ao vincular à empresa.",
			UserID: partialLink.AccountID,
		})
	case errors.As(err, &external):
		logger.Error("external service failure", zap.String("service", external.Service), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro interno no servidor")
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erro interno no servidor")
	}
}
