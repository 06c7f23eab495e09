package directory

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory employee directory for tests.
// It enforces organization isolation on reads like the Postgres repo does.
type MemoryRepo struct {
	mu        sync.Mutex
	employees []Employee
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Add(e Employee) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees = append(r.employees, e)
}

func (r *MemoryRepo) FindByFaceToken(ctx context.Context, organizationID, faceToken string) (Employee, error) {
	if organizationID == "" || faceToken == "" {
		return Employee{}, ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.employees {
		if e.OrganizationID == organizationID && e.FaceToken == faceToken {
			return e, nil
		}
	}
	return Employee{}, ErrNotFound
}

func (r *MemoryRepo) FindByID(ctx context.Context, organizationID, employeeID string) (Employee, error) {
	if organizationID == "" || employeeID == "" {
		return Employee{}, ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.employees {
		if e.OrganizationID == organizationID && e.ID == employeeID {
			return e, nil
		}
	}
	return Employee{}, ErrNotFound
}

func (r *MemoryRepo) List(ctx context.Context, organizationID string) ([]Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Employee, 0)
	for _, e := range r.employees {
		if e.OrganizationID == organizationID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeCode < out[j].EmployeeCode })
	return out, nil
}
