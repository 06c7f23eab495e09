package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	"attendance-platform/internal/attendance"
)

// MemoryRepo is an in-memory edit store for tests. It applies the same
// audit-first ordering as the Postgres repo: the edit is recorded, then the
// entry mutated, and a stale previous timestamp aborts before either write.
type MemoryRepo struct {
	mu      sync.Mutex
	entries map[string]*attendance.Entry // key: org|id
	edits   []Edit
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{entries: map[string]*attendance.Entry{}}
}

func key(organizationID, accessLogID string) string { return organizationID + "|" + accessLogID }

// SeedEntry stores an access-log entry for later editing. Test setup only.
func (r *MemoryRepo) SeedEntry(e attendance.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := e
	r.entries[key(e.OrganizationID, e.ID)] = &cp
}

// Entry returns the current state of a seeded entry.
func (r *MemoryRepo) Entry(organizationID, accessLogID string) (attendance.Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[key(organizationID, accessLogID)]; ok {
		return *e, true
	}
	return attendance.Entry{}, false
}

// Edits returns a copy of all recorded edits.
func (r *MemoryRepo) Edits() []Edit {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Edit, len(r.edits))
	copy(out, r.edits)
	return out
}

func (r *MemoryRepo) FindAccessLog(ctx context.Context, organizationID, accessLogID string) (attendance.Entry, bool, error) {
	e, ok := r.Entry(organizationID, accessLogID)
	return e, ok, nil
}

func (r *MemoryRepo) ApplyEdit(ctx context.Context, e Edit, editedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[key(e.OrganizationID, e.AccessLogID)]
	if !ok || !entry.Timestamp.Equal(e.PreviousTimestamp) {
		return ErrNotFound
	}

	r.edits = append(r.edits, e)

	entry.Timestamp = e.NewTimestamp
	entry.EditedByAdmin = true
	t := editedAt
	entry.EditedAt = &t
	entry.EditedBy = e.AdminID
	return nil
}

func (r *MemoryRepo) ListEdits(ctx context.Context, organizationID, accessLogID string) ([]Edit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Edit, 0)
	for _, e := range r.edits {
		if e.OrganizationID == organizationID && e.AccessLogID == accessLogID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
