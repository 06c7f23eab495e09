package reporting

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"attendance-platform/internal/attendance"
)

// MemoryRepo is a simple in-memory reporting repository for tests.
// It enforces organization isolation on reads.
type MemoryRepo struct {
	mu      sync.Mutex
	Entries []attendance.Entry
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListAccessLogs(ctx context.Context, organizationID, employeeID string, from, to time.Time) ([]attendance.Entry, error) {
	if organizationID == "" {
		return nil, errors.New("organization_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]attendance.Entry, 0)
	for _, e := range r.Entries {
		if e.OrganizationID != organizationID || e.EmployeeID != employeeID {
			continue
		}
		if e.Timestamp.Before(from) || !e.Timestamp.Before(to) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
