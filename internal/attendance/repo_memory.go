package attendance

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory ledger for tests. It mirrors the Postgres
// repo's semantics: per-employee serialization and organization-scoped
// reads. Appends inside WithEmployeeLock are staged and committed only if
// fn returns nil, matching transactional behavior.
type MemoryRepo struct {
	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	entries []Entry

	// Employees must be registered before WithEmployeeLock succeeds,
	// mirroring the FOR UPDATE lookup on the employees table.
	employees map[string]struct{}
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		locks:     map[string]*sync.Mutex{},
		employees: map[string]struct{}{},
	}
}

func (r *MemoryRepo) AddEmployee(organizationID, employeeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.employees[organizationID+"|"+employeeID] = struct{}{}
}

// Seed inserts an entry directly, bypassing the state machine. Test setup only.
func (r *MemoryRepo) Seed(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

// Entries returns a copy of all stored entries ordered by timestamp.
func (r *MemoryRepo) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

func (r *MemoryRepo) employeeLock(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	r.locks[key] = l
	return l
}

func (r *MemoryRepo) WithEmployeeLock(ctx context.Context, organizationID, employeeID string, fn func(ctx context.Context, tail TailOps) error) error {
	key := organizationID + "|" + employeeID

	r.mu.Lock()
	_, known := r.employees[key]
	r.mu.Unlock()
	if !known {
		return ErrNotFound
	}

	l := r.employeeLock(key)
	l.Lock()
	defer l.Unlock()

	tail := &memTail{repo: r, organizationID: organizationID, employeeID: employeeID}
	if err := fn(ctx, tail); err != nil {
		return err
	}

	r.mu.Lock()
	r.entries = append(r.entries, tail.staged...)
	r.mu.Unlock()
	return nil
}

type memTail struct {
	repo           *MemoryRepo
	organizationID string
	employeeID     string
	staged         []Entry
}

func (t *memTail) LastEntry(ctx context.Context) (Entry, bool, error) {
	if n := len(t.staged); n > 0 {
		return t.staged[n-1], true, nil
	}
	return t.repo.lastEntry(t.organizationID, t.employeeID)
}

func (t *memTail) Append(ctx context.Context, e Entry) error {
	t.staged = append(t.staged, e)
	return nil
}

func (r *MemoryRepo) lastEntry(organizationID, employeeID string) (Entry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best Entry
	found := false
	for _, e := range r.entries {
		if e.OrganizationID != organizationID || e.EmployeeID != employeeID {
			continue
		}
		if !found || e.Timestamp.After(best.Timestamp) || e.Timestamp.Equal(best.Timestamp) {
			best = e
			found = true
		}
	}
	return best, found, nil
}

func (r *MemoryRepo) LastEntry(ctx context.Context, organizationID, employeeID string) (Entry, bool, error) {
	return r.lastEntry(organizationID, employeeID)
}

func (r *MemoryRepo) ListRange(ctx context.Context, organizationID, employeeID string, from, to time.Time) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, 0)
	for _, e := range r.entries {
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
