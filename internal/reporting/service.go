package reporting

import (
	"context"
	"errors"
	"time"

	"attendance-platform/internal/attendance"
	"attendance-platform/internal/orgtime"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts ledger reads for reporting.
//
// Implementations must enforce organization filtering and must never
// mutate what they read.
type Repository interface {
	ListAccessLogs(ctx context.Context, organizationID, employeeID string, from, to time.Time) ([]attendance.Entry, error)
}

// Service is the read side: it derives worked time from the immutable
// ledger and never writes.
type Service struct {
	repo Repository
	zone orgtime.Zone
}

func NewService(repo Repository, zone orgtime.Zone) *Service {
	return &Service{repo: repo, zone: zone}
}

func (s *Service) WorkedHours(ctx context.Context, req WorkedHoursRequest) (WorkedHours, error) {
	if req.OrganizationID == "" || req.EmployeeID == "" {
		return WorkedHours{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return WorkedHours{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return WorkedHours{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListAccessLogs(ctx, req.OrganizationID, req.EmployeeID, req.Range.From, req.Range.To)
	if err != nil {
		return WorkedHours{}, err
	}
	return ComputeWorkedHours(rows, s.zone), nil
}
