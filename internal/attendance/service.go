package attendance

import (
	"context"
	"errors"
	"time"

	"attendance-platform/internal/orgtime"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("attendance: not found")
	ErrInvalidArgument = errors.New("attendance: invalid argument")
)

// TailOps is the ledger tail visible inside a serialized registration.
// Both operations run under the same per-employee exclusion scope, so a
// LastEntry/Append sequence cannot interleave with another registration
// for the same employee.
type TailOps interface {
	LastEntry(ctx context.Context) (Entry, bool, error)
	Append(ctx context.Context, e Entry) error
}

// Repository is the persistence contract for the access ledger.
//
// WithEmployeeLock must serialize fn per employee: the Postgres
// implementation locks the employee row FOR UPDATE inside one transaction,
// the memory implementation holds a per-employee mutex. Everything fn
// writes commits atomically or not at all.
type Repository interface {
	WithEmployeeLock(ctx context.Context, organizationID, employeeID string, fn func(ctx context.Context, tail TailOps) error) error

	ListRange(ctx context.Context, organizationID, employeeID string, from, to time.Time) ([]Entry, error)
	LastEntry(ctx context.Context, organizationID, employeeID string) (Entry, bool, error)
}

// Service is the attendance state machine: it decides what ledger
// mutation(s) result from a recognized employee requesting a check-in or
// check-out.
//
// The caller is responsible for having resolved the employee (face
// identification + directory lookup) before invoking RegisterAccess.
type Service struct {
	repo Repository
	zone orgtime.Zone

	// clock is injectable for deterministic tests. The request instant is
	// always server-derived, never client-supplied.
	clock func() time.Time
}

func NewService(repo Repository, zone orgtime.Zone) *Service {
	return &Service{repo: repo, zone: zone, clock: time.Now}
}

// WithClock overrides the service clock. Test use only.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// RegisterAccess runs the registration state machine for one employee:
//
//  1. Under the per-employee lock, read the most recent entry.
//  2. Cross-day reconciliation: an open check-in from a strictly earlier
//     organization-local day, met by a new check-in, is first closed with a
//     synthetic check-out at 23:59:59 of the stale day.
//  3. Duplicate rejection (evaluated after reconciliation, so a legitimate
//     new-day check-in is never rejected as a duplicate of yesterday's):
//     requesting the same kind as the last entry fails with
//     *DuplicateActionError and writes nothing.
//  4. Otherwise append the requested entry at the current instant.
//
// A same-day unclosed check-in is deliberately NOT auto-closed; correcting
// it is an administrative matter handled by the audit edit path.
func (s *Service) RegisterAccess(ctx context.Context, organizationID, employeeID string, kind ActionKind) (RegisterResult, error) {
	if organizationID == "" || employeeID == "" {
		return RegisterResult{}, ErrInvalidArgument
	}
	if !kind.Valid() {
		return RegisterResult{}, ErrInvalidArgument
	}
	if s.repo == nil {
		return RegisterResult{}, errors.New("attendance: repository not configured")
	}

	now := s.clock().UTC()

	var out RegisterResult
	err := s.repo.WithEmployeeLock(ctx, organizationID, employeeID, func(ctx context.Context, tail TailOps) error {
		last, ok, err := tail.LastEntry(ctx)
		if err != nil {
			return err
		}

		autoClosed := false
		if ok && kind == KindCheckIn && last.Kind == KindCheckIn &&
			s.zone.DayOf(last.Timestamp).Before(s.zone.DayOf(now)) {
			// The missing check-out is assumed to have happened at
			// end-of-day, not at the current instant. Only the single
			// most recent open check-in is repaired.
			closer := Entry{
				ID:             uuid.NewString(),
				OrganizationID: organizationID,
				EmployeeID:     employeeID,
				Kind:           KindCheckOut,
				Timestamp:      s.zone.EndOfDay(last.Timestamp).UTC(),
				AutoGenerated:  true,
				CreatedAt:      now,
			}
			if err := tail.Append(ctx, closer); err != nil {
				return err
			}
			autoClosed = true
		} else if ok && last.Kind == kind {
			return &DuplicateActionError{
				Kind:          kind,
				LastTimestamp: last.Timestamp,
				LastLocal:     s.zone.FormatLocal(last.Timestamp),
			}
		}

		entry := Entry{
			ID:             uuid.NewString(),
			OrganizationID: organizationID,
			EmployeeID:     employeeID,
			Kind:           kind,
			Timestamp:      now,
			CreatedAt:      now,
		}
		if err := tail.Append(ctx, entry); err != nil {
			return err
		}

		out = RegisterResult{Entry: entry, AutoCloseGenerated: autoClosed}
		return nil
	})
	if err != nil {
		return RegisterResult{}, err
	}
	return out, nil
}

// ListRange returns the employee's entries with Timestamp in [from, to),
// ordered ascending.
func (s *Service) ListRange(ctx context.Context, organizationID, employeeID string, from, to time.Time) ([]Entry, error) {
	if organizationID == "" || employeeID == "" {
		return nil, ErrInvalidArgument
	}
	if from.IsZero() || to.IsZero() || !to.After(from) {
		return nil, ErrInvalidArgument
	}
	return s.repo.ListRange(ctx, organizationID, employeeID, from, to)
}

// LastEntry returns the employee's most recent entry outside any lock.
// Read-only convenience for display; registration decisions never use it.
func (s *Service) LastEntry(ctx context.Context, organizationID, employeeID string) (Entry, bool, error) {
	if organizationID == "" || employeeID == "" {
		return Entry{}, false, ErrInvalidArgument
	}
	return s.repo.LastEntry(ctx, organizationID, employeeID)
}

// Zone exposes the organization zone for presentation layers.
func (s *Service) Zone() orgtime.Zone { return s.zone }
