package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vportela/empresas-backoffice-go/internal/domain"
	"github.com/vportela/empresas-backoffice-go/internal/infra/observability"
	"github.com/vportela/empresas-backoffice-go/internal/service"

	"go.uber.org/zap"
)

func newCompanies(memberships *membershipStoreMock, companies *companyStoreMock, logos *logoStoreMock) *service.Companies {
	return service.NewCompanies(memberships, companies, logos, observability.NewMetrics(), zap.NewNop())
}

func TestCompaniesUpdate_ColaboradorIsForbidden(t *testing.T) {
	memberships := &membershipStoreMock{
		active: &domain.Membership{AccountID: "u1", CompanyID: empresaAgora, Cargo: domain.RoleColaborador, Ativo: true},
	}
	svc := newCompanies(memberships, &companyStoreMock{}, &logoStoreMock{})

	_, err := svc.Update(context.Background(), "u1", empresaAgora, domain.CompanyUpdate{Nome: "Novo Nome"})

	var forbidden *domain.ErrForbidden
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCompaniesUpdate_GestorCannotTouchAnotherCompany(t *testing.T) {
	memberships := &membershipStoreMock{
		active: &domain.Membership{AccountID: "u1", CompanyID: empresaBeta, Cargo: domain.RoleGestor, Ativo: true},
	}
	svc := newCompanies(memberships, &companyStoreMock{}, &logoStoreMock{})

	_, err := svc.Update(context.Background(), "u1", empresaAgora, domain.CompanyUpdate{Nome: "Novo Nome"})

	var forbidden *domain.ErrForbidden
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCompaniesUpdate_AdminTouchesAnyCompany(t *testing.T) {
	memberships := &membershipStoreMock{
		active: &domain.Membership{AccountID: "u1", CompanyID: empresaBeta, Cargo: domain.RoleAdmin, Ativo: true},
	}
	companies := &companyStoreMock{updated: &domain.Company{ID: empresaAgora, Nome: "Novo Nome"}}
	svc := newCompanies(memberships, companies, &logoStoreMock{})

	res, err := svc.Update(context.Background(), "u1", empresaAgora, domain.CompanyUpdate{
		Nome:     " Novo Nome ",
		Telefone: "11 99999-0000",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Nome != "Novo Nome" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if companies.lastUpdates["nome"] != "Novo Nome" {
		t.Fatalf("nome not trimmed in patch: %v", companies.lastUpdates)
	}
	if _, ok := companies.lastUpdates["cnpj"]; ok {
		t.Fatal("empty fields must not be patched")
	}
}

func TestCompaniesUpdate_EmptyBodyIsRejected(t *testing.T) {
	svc := newCompanies(&membershipStoreMock{}, &companyStoreMock{}, &logoStoreMock{})

	_, err := svc.Update(context.Background(), "u1", empresaAgora, domain.CompanyUpdate{})

	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestUploadLogo_StoresUnderCompanyPathAndPatchesURL(t *testing.T) {
	memberships := &membershipStoreMock{
		active: &domain.Membership{AccountID: "u1", CompanyID: empresaAgora, Cargo: domain.RoleGestor, Ativo: true},
	}
	companies := &companyStoreMock{}
	logos := &logoStoreMock{url: "https://proj.supabase.co/storage/v1/object/public/avatars/logos/x.png"}
	svc := newCompanies(memberships, companies, logos)

	url, err := svc.UploadLogo(context.Background(), "u1", empresaAgora, "logo.PNG", "image/png", []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != logos.url {
		t.Fatalf("unexpected url: %q", url)
	}
	if !strings.HasPrefix(logos.lastPath, "logos/"+empresaAgora+"_") || !strings.HasSuffix(logos.lastPath, ".png") {
		t.Fatalf("unexpected object path: %q", logos.lastPath)
	}
	if companies.lastUpdates["logoUrl"] != logos.url {
		t.Fatalf("logoUrl not patched: %v", companies.lastUpdates)
	}
}

func TestUploadLogo_RejectsUnsupportedExtension(t *testing.T) {
	logos := &logoStoreMock{}
	svc := newCompanies(&membershipStoreMock{}, &companyStoreMock{}, logos)

	_, err := svc.UploadLogo(context.Background(), "u1", empresaAgora, "payload.exe", "application/octet-stream", []byte{1})

	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if logos.lastPath != "" {
		t.Fatal("rejected upload must not reach storage")
	}
}

func TestUploadLogo_RejectsOversizedFile(t *testing.T) {
	svc := newCompanies(&membershipStoreMock{}, &companyStoreMock{}, &logoStoreMock{})

	big := make([]byte, (2<<20)+1)
	_, err := svc.UploadLogo(context.Background(), "u1", empresaAgora, "logo.png", "image/png", big)

	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
