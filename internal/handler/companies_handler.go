package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/vportela/empresas-backoffice-go/internal/domain"
	"github.com/vportela/empresas-backoffice-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxLogoUpload bounds the multipart form memory for logo uploads.
const maxLogoUpload = 4 << 20

// getCompanyHandler handles GET /api/companies/{companyId}.
func getCompanyHandler(svc *service.Companies, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		company, err := svc.Get(r.Context(), AccountIDFromContext(r.Context()), chi.URLParam(r, "companyId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, company)
	}
}

// updateCompanyHandler handles PUT /api/companies/{companyId}.
func updateCompanyHandler(svc *service.Companies, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd domain.CompanyUpdate
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			writeError(w, http.StatusBadRequest, "Corpo da requisição inválido")
			return
		}

		company, err := svc.Update(r.Context(), AccountIDFromContext(r.Context()), chi.URLParam(r, "companyId"), upd)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, company)
	}
}

// uploadLogoHandler handles POST /api/companies/{companyId}/logo with
// a multipart form carrying the image under the "logo" field.
func uploadLogoHandler(svc *service.Companies, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxLogoUpload); err != nil {
			writeError(w, http.StatusBadRequest, "Formulário multipart inválido")
			return
		}

		file, header, err := r.FormFile("logo")
		if err != nil {
			writeError(w, http.StatusBadRequest, "Arquivo 'logo' não enviado")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Falha ao ler o arquivo")
			return
		}

		url, err := svc.UploadLogo(
			r.Context(),
			AccountIDFromContext(r.Context()),
			chi.URLParam(r, "companyId"),
			header.Filename,
			header.Header.Get("Content-Type"),
			data,
		)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"logoUrl": url})
	}
}
