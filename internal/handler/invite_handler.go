package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vportela/empresas-backoffice-go/internal/domain"
	"github.com/vportela/empresas-backoffice-go/internal/service"

	"go.uber.org/zap"
)

// inviteUserHandler handles POST /api/invite-user.
func inviteUserHandler(svc *service.Invites, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.InviteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
			return
		}

		res, err := svc.Invite(r.Context(), req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"user":    res,
		})
	}
}
