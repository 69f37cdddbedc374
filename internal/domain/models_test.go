package domain_test

import (
	"testing"

	"github.com/vportela/empresas-backoffice-go/internal/domain"
)

func TestResolveDisplayName_FallbackChain(t *testing.T) {
	cases := []struct {
		name     string
		n        string
		fullName string
		email    string
		want     string
	}{
		{"explicit name wins", "Ana", "Ana Souza Completa", "ana@ex.com", "Ana"},
		{"full name when name blank", "  ", "Ana Souza", "ana@ex.com", "Ana Souza"},
		{"email local part when no names", "", "", "ana.souza@ex.com", "ana.souza"},
		{"default when nothing resolves", "", "", "", "Usuário"},
		{"email without local part", "", "", "@ex.com", "Usuário"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := domain.ResolveDisplayName(tc.n, tc.fullName, tc.email); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"admin", "Admin", " GESTOR ", "colaborador"} {
		if _, ok := domain.ParseRole(valid); !ok {
			t.Errorf("expected %q to parse", valid)
		}
	}
	for _, invalid := range []string{"", "diretor", "root"} {
		if _, ok := domain.ParseRole(invalid); ok {
			t.Errorf("expected %q to be rejected", invalid)
		}
	}
}

func TestParseRole_Normalizes(t *testing.T) {
	role, ok := domain.ParseRole("  Gestor ")
	if !ok || role != domain.RoleGestor {
		t.Fatalf("got %q/%v", role, ok)
	}
}
