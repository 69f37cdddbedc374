package handler

import (
	"net/http"

	"github.com/vportela/empresas-backoffice-go/internal/domain"
	"github.com/vportela/empresas-backoffice-go/internal/service"

	"go.uber.org/zap"
)

// listUsersHandler handles GET /api/users.
//
// Query parameters: cargo (requester's role), empresaId (required for
// non-admins), search (optional substring filter). Admins receive the
// listing grouped by company; everyone else a flat, company-scoped
// list.
func listUsersHandler(svc *service.Directory, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		res, err := svc.ListUsers(r.Context(), domain.ListUsersRequest{
			RequesterRole: q.Get("cargo"),
			CompanyID:     q.Get("empresaId"),
			Search:        q.Get("search"),
		})
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		if res.Empresas != nil {
			writeJSON(w, http.StatusOK, map[string]any{"empresas": res.Empresas})
			return
		}
		users := res.Users
		if users == nil {
			users = []domain.DirectoryEntry{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": users})
	}
}
