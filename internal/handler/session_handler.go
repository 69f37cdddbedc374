package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vportela/empresas-backoffice-go/internal/domain"
	"github.com/vportela/empresas-backoffice-go/internal/service"

	"go.uber.org/zap"
)

// getMeHandler handles GET /api/me: the session bundle the dashboard
// resolves on every privileged load.
func getMeHandler(svc *service.Directory, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := svc.ResolveSession(r.Context(), AccountIDFromContext(r.Context()))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

// updateMeHandler handles PUT /api/me: proxied name/e-mail update.
func updateMeHandler(svc *service.Accounts, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd domain.AccountUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
			return
		}

		user, err := svc.UpdateProfile(r.Context(), AccountIDFromContext(r.Context()), upd)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// changePasswordHandler handles PUT /api/me/password.
func changePasswordHandler(svc *service.Accounts, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			NovaSenha string `json:"novaSenha"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
			return
		}

		if err := svc.ChangePassword(r.Context(), AccountIDFromContext(r.Context()), req.NovaSenha); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}
