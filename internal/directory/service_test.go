package directory

import (
	"context"
	"errors"
	"testing"
)

func TestResolveFaceToken_ScopedToOrganization(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Add(Employee{ID: "e1", OrganizationID: "org-a", EmployeeCode: "A-001", FaceToken: "tok-1", Active: true})
	svc := NewService(repo)

	if _, err := svc.ResolveFaceToken(context.Background(), "org-a", "tok-1"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := svc.ResolveFaceToken(context.Background(), "org-b", "tok-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign org, got %v", err)
	}
}

func TestResolveFaceToken_InactiveEmployee(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Add(Employee{ID: "e1", OrganizationID: "org-a", FaceToken: "tok-1", Active: false})
	svc := NewService(repo)

	if _, err := svc.ResolveFaceToken(context.Background(), "org-a", "tok-1"); !errors.Is(err, ErrInactive) {
		t.Fatalf("expected ErrInactive, got %v", err)
	}
}

func TestList_OrderedByEmployeeCode(t *testing.T) {
	repo := NewMemoryRepo()
	repo.Add(Employee{ID: "e2", OrganizationID: "org-a", EmployeeCode: "B-002", Active: true})
	repo.Add(Employee{ID: "e1", OrganizationID: "org-a", EmployeeCode: "A-001", Active: true})
	repo.Add(Employee{ID: "e3", OrganizationID: "org-b", EmployeeCode: "C-003", Active: true})
	svc := NewService(repo)

	got, err := svc.List(context.Background(), "org-a")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 2 || got[0].EmployeeCode != "A-001" || got[1].EmployeeCode != "B-002" {
		t.Fatalf("unexpected list: %+v", got)
	}
}
