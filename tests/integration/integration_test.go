package integration_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vportela/empresas-backoffice-go/internal/domain"
	"github.com/vportela/empresas-backoffice-go/internal/handler"
	"github.com/vportela/empresas-backoffice-go/internal/infra/observability"
	"github.com/vportela/empresas-backoffice-go/internal/infra/resilience"
	"github.com/vportela/empresas-backoffice-go/internal/infra/supabase"
	"github.com/vportela/empresas-backoffice-go/internal/service"

	"go.uber.org/zap"
)

const (
	empresaID   = "11111111-1111-1111-1111-111111111111"
	jwtSecret   = "super-secret-jwt-token-with-at-least-32-characters"
	redirectURL = "http://localhost:5173/criar-senha"
)

// fakeSupabase emulates the slice of GoTrue and PostgREST this API
// talks to, with in-memory state shared across calls.
type fakeSupabase struct {
	mu          sync.Mutex
	users       []map[string]any
	memberships []map[string]any
}

func (f *fakeSupabase) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/v1/invite", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Email string         `json:"email"`
			Data  map[string]any `json:"data"`
		}
		json.NewDecoder(r.Body).Decode(&payload)

		f.mu.Lock()
		user := map[string]any{
			"id":            "invited-ana",
			"email":         payload.Email,
			"created_at":    time.Now().UTC().Format(time.RFC3339),
			"user_metadata": payload.Data,
		}
		f.users = append(f.users, user)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(user)
	})

	mux.HandleFunc("GET /auth/v1/admin/users", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"users": f.users})
	})

	mux.HandleFunc("GET /rest/v1/usuarios_empresas", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		rows := f.memberships
		if scope := r.URL.Query().Get("empresa_id"); scope != "" {
			want := strings.TrimPrefix(scope, "eq.")
			rows = nil
			for _, m := range f.memberships {
				if m["empresa_id"] == want {
					rows = append(rows, m)
				}
			}
		}
		if rows == nil {
			rows = []map[string]any{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rows)
	})

	mux.HandleFunc("POST /rest/v1/usuarios_empresas", func(w http.ResponseWriter, r *http.Request) {
		var row map[string]any
		json.NewDecoder(r.Body).Decode(&row)
		f.mu.Lock()
		f.memberships = append(f.memberships, row)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})

	mux.HandleFunc("GET /rest/v1/empresas", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": empresaID, "nome": "Ágora Consultoria"},
		})
	})

	return mux
}

func buildRouter(t *testing.T, backend *httptest.Server) http.Handler {
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	client := supabase.NewClient(
		&http.Client{Timeout: 5 * time.Second},
		backend.URL,
		"anon-key",
		"service-role-key",
		resilience.NewCircuitBreaker("integration"),
		resilience.NewBulkhead(10),
		logger,
	)
	logos := supabase.NewStorage(client, "avatars")

	directory := service.NewDirectory(client, client, client, metrics, logger)
	invites := service.NewInvites(client, client, redirectURL, metrics, logger)
	companies := service.NewCompanies(client, client, logos, metrics, logger)
	accounts := service.NewAccounts(client, metrics, logger)

	return handler.NewRouter(
		directory, invites, companies, accounts,
		metrics, jwtSecret, []string{"http://localhost:5173"}, logger,
	)
}

// TestIntegration_InviteThenList drives the full flow against an
// in-memory platform: invite a user, then see her in the admin listing
// under her company.
func TestIntegration_InviteThenList(t *testing.T) {
	fake := &fakeSupabase{}
	backend := httptest.NewServer(fake.handler(t))
	defer backend.Close()

	router := buildRouter(t, backend)

	// --- Invite ---
	payload := `{"nome":"Ana Souza","email":"ana@agora.com","cargo":"gestor","empresaId":"` + empresaID + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/invite-user", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("invite: expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var inviteBody struct {
		Success bool                `json:"success"`
		User    domain.InviteResult `json:"user"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&inviteBody); err != nil {
		t.Fatalf("invite: decode body: %v", err)
	}
	if inviteBody.User.ID != "invited-ana" || inviteBody.User.Cargo != "gestor" {
		t.Fatalf("invite: unexpected result: %+v", inviteBody.User)
	}

	// --- Admin listing ---
	req = httptest.NewRequest(http.MethodGet, "/api/users?cargo=admin", nil)
	rec = httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var listBody struct {
		Empresas []domain.CompanyGroup `json:"empresas"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&listBody); err != nil {
		t.Fatalf("list: decode body: %v", err)
	}
	if len(listBody.Empresas) != 1 {
		t.Fatalf("list: expected one company group, got %+v", listBody.Empresas)
	}
	group := listBody.Empresas[0]
	if group.EmpresaNome != "Ágora Consultoria" {
		t.Fatalf("list: unexpected group: %+v", group)
	}
	if len(group.Usuarios) != 1 {
		t.Fatalf("list: expected the invited user, got %+v", group.Usuarios)
	}
	ana := group.Usuarios[0]
	if ana.Email != "ana@agora.com" || ana.Nome != "Ana Souza" || ana.Cargo != "gestor" {
		t.Fatalf("list: unexpected entry: %+v", ana)
	}

	// --- Scoped listing for a gestor of the same company ---
	req = httptest.NewRequest(http.MethodGet, "/api/users?cargo=gestor&empresaId="+empresaID, nil)
	rec = httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("scoped list: expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var scopedBody struct {
		Users []domain.DirectoryEntry `json:"users"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&scopedBody); err != nil {
		t.Fatalf("scoped list: decode body: %v", err)
	}
	if len(scopedBody.Users) != 1 || scopedBody.Users[0].Email != "ana@agora.com" {
		t.Fatalf("scoped list: unexpected users: %+v", scopedBody.Users)
	}
}
