package directory

import (
	"context"
	"errors"
)

// Service resolves employees for the access-control workflow.
//
// It is deliberately thin: enrollment (writing employees) happens in the
// admin product, out of band. The one rule enforced here is that inactive
// employees do not resolve.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

var ErrInactive = errors.New("directory: employee is inactive")

// ResolveFaceToken maps a provider face token to the enrolled employee.
func (s *Service) ResolveFaceToken(ctx context.Context, organizationID, faceToken string) (Employee, error) {
	if s.repo == nil {
		return Employee{}, errors.New("directory: repository not configured")
	}
	e, err := s.repo.FindByFaceToken(ctx, organizationID, faceToken)
	if err != nil {
		return Employee{}, err
	}
	if !e.Active {
		return Employee{}, ErrInactive
	}
	return e, nil
}

// Get returns an employee by id within the caller's organization.
func (s *Service) Get(ctx context.Context, organizationID, employeeID string) (Employee, error) {
	if s.repo == nil {
		return Employee{}, errors.New("directory: repository not configured")
	}
	return s.repo.FindByID(ctx, organizationID, employeeID)
}

// List returns all employees of the organization, ordered by employee code.
func (s *Service) List(ctx context.Context, organizationID string) ([]Employee, error) {
	if s.repo == nil {
		return nil, errors.New("directory: repository not configured")
	}
	return s.repo.List(ctx, organizationID)
}
