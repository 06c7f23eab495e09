package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"attendance-platform/internal/attendance"
	"attendance-platform/internal/orgtime"

	"github.com/google/uuid"
)

var (
	// ErrNotFound covers both genuinely missing entries and entries that
	// exist in another organization. Cross-tenant lookups must not be
	// distinguishable from missing ids.
	ErrNotFound = errors.New("audit: access log not found")

	ErrInvalidArgument = errors.New("audit: invalid argument")
)

// ValidationError reports a rejected input with field-level detail.
// No writes happen when one is returned.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("audit: invalid %s: %s", e.Field, e.Detail)
}

// Repository is the persistence contract for timestamp edits.
//
// ApplyEdit must insert the edit record and then mutate the access-log
// entry, in that order, atomically where the store allows. If atomicity is
// unavailable, audit-first is the mandatory fallback ordering: an orphaned
// edit row is acceptable, an unexplained mutation is not.
type Repository interface {
	// FindAccessLog fetches the entry within the given organization only.
	FindAccessLog(ctx context.Context, organizationID, accessLogID string) (attendance.Entry, bool, error)

	ApplyEdit(ctx context.Context, e Edit, editedAt time.Time) error

	// ListEdits returns edits for the entry in CreatedAt ascending order,
	// organization-scoped.
	ListEdits(ctx context.Context, organizationID, accessLogID string) ([]Edit, error)
}

// Service mutates historical access-log timestamps on administrator
// request while keeping a complete, ordered history of changes.
type Service struct {
	repo  Repository
	zone  orgtime.Zone
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

// EditEntryTime changes an entry's time-of-day. The entry's
// organization-local calendar date is preserved: only newLocalTime
// ("HH:MM", 24-hour, organization zone) replaces the wall-clock time.
//
// The acting admin's organization scopes the lookup; an entry belonging to
// another organization is reported as not found.
func (s *Service) EditEntryTime(ctx context.Context, organizationID, accessLogID, newLocalTime, reason, adminID string) (EditResult, error) {
	if s.repo == nil {
		return EditResult{}, errors.New("audit: repository not configured")
	}
	if organizationID == "" || adminID == "" {
		return EditResult{}, ErrInvalidArgument
	}
	if accessLogID == "" {
		return EditResult{}, &ValidationError{Field: "access_log_id", Detail: "required"}
	}

	hour, minute, err := orgtime.ParseClock(newLocalTime)
	if err != nil {
		return EditResult{}, &ValidationError{Field: "new_time", Detail: "must be HH:MM in 24-hour form"}
	}

	reason = strings.TrimSpace(reason)
	if len(reason) < MinReasonLength {
		return EditResult{}, &ValidationError{Field: "reason", Detail: fmt.Sprintf("must be at least %d characters", MinReasonLength)}
	}

	entry, ok, err := s.repo.FindAccessLog(ctx, organizationID, accessLogID)
	if err != nil {
		return EditResult{}, err
	}
	if !ok {
		return EditResult{}, ErrNotFound
	}

	now := s.clock().UTC()
	newTimestamp := s.zone.CombineClock(entry.Timestamp, hour, minute).UTC()

	edit := Edit{
		ID:                uuid.NewString(),
		OrganizationID:    organizationID,
		AccessLogID:       entry.ID,
		AdminID:           adminID,
		PreviousTimestamp: entry.Timestamp,
		NewTimestamp:      newTimestamp,
		Reason:            reason,
		CreatedAt:         now,
	}
	if err := s.repo.ApplyEdit(ctx, edit, now); err != nil {
		return EditResult{}, err
	}

	return EditResult{PreviousTimestamp: entry.Timestamp, NewTimestamp: newTimestamp}, nil
}

// History returns the full edit trail for an entry, oldest first.
// Organization scoping follows the same not-found policy as EditEntryTime.
func (s *Service) History(ctx context.Context, organizationID, accessLogID string) ([]Edit, error) {
	if s.repo == nil {
		return nil, errors.New("audit: repository not configured")
	}
	if organizationID == "" || accessLogID == "" {
		return nil, ErrInvalidArgument
	}

	_, ok, err := s.repo.FindAccessLog(ctx, organizationID, accessLogID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return s.repo.ListEdits(ctx, organizationID, accessLogID)
}
