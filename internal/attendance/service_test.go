package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"attendance-platform/internal/orgtime"
)

var testZone = orgtime.MustZone("-05:00")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// localInstant builds a UTC instant from organization-local wall-clock parts.
func localInstant(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, testZone.Location()).UTC()
}

func newTestService(now time.Time) (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	repo.AddEmployee("org-1", "emp-1")
	svc := NewService(repo, testZone).WithClock(fixedClock(now))
	return svc, repo
}

func TestRegisterAccess_FirstCheckIn(t *testing.T) {
	now := localInstant(2024, 1, 1, 9, 0)
	svc, repo := newTestService(now)

	res, err := svc.RegisterAccess(context.Background(), "org-1", "emp-1", KindCheckIn)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.AutoCloseGenerated {
		t.Fatalf("expected no auto-close on first entry")
	}
	if res.Entry.Kind != KindCheckIn || !res.Entry.Timestamp.Equal(now) {
		t.Fatalf("unexpected entry: %+v", res.Entry)
	}
	if res.Entry.AutoGenerated {
		t.Fatalf("human entry must not be auto_generated")
	}
	if got := repo.Entries(); len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
}

func TestRegisterAccess_CrossDayAutoClose(t *testing.T) {
	// Check-in yesterday 09:00 local, never closed; new check-in today 09:00.
	svc, repo := newTestService(localInstant(2024, 1, 2, 9, 0))

	if _, err := svc.WithClock(fixedClock(localInstant(2024, 1, 1, 9, 0))).
		RegisterAccess(context.Background(), "org-1", "emp-1", KindCheckIn); err != nil {
		t.Fatalf("seed check-in: %v", err)
	}

	res, err := svc.WithClock(fixedClock(localInstant(2024, 1, 2, 9, 0))).
		RegisterAccess(context.Background(), "org-1", "emp-1", KindCheckIn)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !res.AutoCloseGenerated {
		t.Fatalf("expected auto_close_generated=true")
	}

	entries := repo.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	closer := entries[1]
	if closer.Kind != KindCheckOut || !closer.AutoGenerated {
		t.Fatalf("expected auto-generated check-out, got %+v", closer)
	}
	lt := closer.Timestamp.In(testZone.Location())
	if lt.Year() != 2024 || lt.Month() != time.January || lt.Day() != 1 ||
		lt.Hour() != 23 || lt.Minute() != 59 || lt.Second() != 59 {
		t.Fatalf("expected 2024-01-01 23:59:59 local, got %v", lt)
	}

	if entries[2].Kind != KindCheckIn || entries[2].AutoGenerated {
		t.Fatalf("expected human check-in last, got %+v", entries[2])
	}
	if !entries[2].Timestamp.Equal(localInstant(2024, 1, 2, 9, 0)) {
		t.Fatalf("unexpected new check-in timestamp: %v", entries[2].Timestamp)
	}
}

func TestRegisterAccess_MultiDayGapStillOneCloser(t *testing.T) {
	// Only the single most recent open check-in is reconciled, even after
	// several unclosed days.
	svc, repo := newTestService(localInstant(2024, 1, 5, 8, 0))

	if _, err := svc.WithClock(fixedClock(localInstant(2024, 1, 1, 9, 0))).
		RegisterAccess(context.Background(), "org-1", "emp-1", KindCheckIn); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := svc.WithClock(fixedClock(localInstant(2024, 1, 5, 8, 0))).
		RegisterAccess(context.Background(), "org-1", "emp-1", KindCheckIn)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !res.AutoCloseGenerated {
		t.Fatalf("expected auto-close")
	}

	entries := repo.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected exactly one synthesized closer, got %d entries", len(entries))
	}
	lt := entries[1].Timestamp.In(testZone.Location())
	if lt.Day() != 1 || lt.Hour() != 23 {
		t.Fatalf("closer must sit on the stale day, got %v", lt)
	}
}

func TestRegisterAccess_SameDayDuplicateCheckIn(t *testing.T) {
	first := localInstant(2024, 1, 1, 9, 0)
	svc, repo := newTestService(first)

	if _, err := svc.RegisterAccess(context.Background(), "org-1", "emp-1", KindCheckIn); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := svc.WithClock(fixedClock(localInstant(2024, 1, 1, 14, 0))).
		RegisterAccess(context.Background(), "org-1", "emp-1", KindCheckIn)

	var dup *DuplicateActionError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateActionError, got %v", err)
	}
	if !dup.LastTimestamp.Equal(first) {
		t.Fatalf("expected last timestamp %v, got %v", first, dup.LastTimestamp)
	}
	if dup.LastLocal != "2024-01-01 09:00:00" {
		t.Fatalf("unexpected localized timestamp: %q", dup.LastLocal)
	}
	if got := repo.Entries(); len(got) != 1 {
		t.Fatalf("duplicate rejection must not mutate the ledger, got %d entries", len(got))
	}
}

func TestRegisterAccess_DuplicateCheckOut(t *testing.T) {
	svc, repo := newTestService(localInstant(2024, 1, 2, 17, 0))
	repo.Seed(Entry{
		ID: "seed-1", OrganizationID: "org-1", EmployeeID: "emp-1",
		Kind: KindCheckOut, Timestamp: localInstant(2024, 1, 2, 17, 0),
	})

	_, err := svc.WithClock(fixedClock(localInstant(2024, 1, 2, 18, 0))).
		RegisterAccess(context.Background(), "org-1", "emp-1", KindCheckOut)

	var dup *DuplicateActionError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateActionError, got %v", err)
	}
	if dup.Kind != KindCheckOut {
		t.Fatalf("expected check_out duplicate, got %s", dup.Kind)
	}
}

func TestRegisterAccess_NormalAlternation(t *testing.T) {
	svc, repo := newTestService(time.Time{})

	times := []struct {
		at   time.Time
		kind ActionKind
	}{
		{localInstant(2024, 1, 1, 8, 0), KindCheckIn},
		{localInstant(2024, 1, 1, 12, 0), KindCheckOut},
		{localInstant(2024, 1, 1, 13, 0), KindCheckIn},
		{localInstant(2024, 1, 1, 17, 0), KindCheckOut},
	}
	for _, step := range times {
		if _, err := svc.WithClock(fixedClock(step.at)).
			RegisterAccess(context.Background(), "org-1", "emp-1", step.kind); err != nil {
			t.Fatalf("step %v: %v", step, err)
		}
	}
	if got := repo.Entries(); len(got) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(got))
	}
}

func TestRegisterAccess_UnknownEmployee(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo, testZone).WithClock(fixedClock(localInstant(2024, 1, 1, 9, 0)))

	if _, err := svc.RegisterAccess(context.Background(), "org-1", "ghost", KindCheckIn); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRegisterAccess_InvalidArguments(t *testing.T) {
	svc, _ := newTestService(localInstant(2024, 1, 1, 9, 0))

	if _, err := svc.RegisterAccess(context.Background(), "", "emp-1", KindCheckIn); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := svc.RegisterAccess(context.Background(), "org-1", "emp-1", ActionKind("lunch")); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for bad kind, got %v", err)
	}
}

// TestRegisterAccess_ConcurrentSameEmployee drives many simultaneous
// check-in requests and asserts exactly one wins; the rest are duplicates.
func TestRegisterAccess_ConcurrentSameEmployee(t *testing.T) {
	svc, repo := newTestService(localInstant(2024, 1, 1, 9, 0))

	const n = 32
	var wg sync.WaitGroup
	errCh := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RegisterAccess(context.Background(), "org-1", "emp-1", KindCheckIn)
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	var okCount, dupCount int
	for err := range errCh {
		if err == nil {
			okCount++
			continue
		}
		var dup *DuplicateActionError
		if errors.As(err, &dup) {
			dupCount++
			continue
		}
		t.Fatalf("unexpected error: %v", err)
	}

	if okCount != 1 || dupCount != n-1 {
		t.Fatalf("expected 1 accepted / %d duplicates, got %d / %d", n-1, okCount, dupCount)
	}
	if got := repo.Entries(); len(got) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(got))
	}
}

// TestLedgerAlternationInvariant replays a mixed multi-day sequence and
// asserts no two consecutive entries share a kind unless one is synthetic.
func TestLedgerAlternationInvariant(t *testing.T) {
	svc, repo := newTestService(time.Time{})

	steps := []struct {
		at   time.Time
		kind ActionKind
	}{
		{localInstant(2024, 1, 1, 8, 0), KindCheckIn},
		{localInstant(2024, 1, 2, 8, 0), KindCheckIn},  // forces auto-close of Jan 1
		{localInstant(2024, 1, 2, 17, 0), KindCheckOut},
		{localInstant(2024, 1, 3, 8, 30), KindCheckIn},
		{localInstant(2024, 1, 3, 16, 45), KindCheckOut},
	}
	for _, step := range steps {
		if _, err := svc.WithClock(fixedClock(step.at)).
			RegisterAccess(context.Background(), "org-1", "emp-1", step.kind); err != nil {
			t.Fatalf("step at %v: %v", step.at, err)
		}
	}

	entries := repo.Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i].Kind == entries[i-1].Kind &&
			!entries[i].AutoGenerated && !entries[i-1].AutoGenerated {
			t.Fatalf("alternation violated at %d: %+v then %+v", i, entries[i-1], entries[i])
		}
	}
}

func TestListRange_ValidatesWindow(t *testing.T) {
	svc, _ := newTestService(localInstant(2024, 1, 1, 9, 0))

	from := localInstant(2024, 1, 2, 0, 0)
	to := localInstant(2024, 1, 1, 0, 0)
	if _, err := svc.ListRange(context.Background(), "org-1", "emp-1", from, to); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for inverted range, got %v", err)
	}
}
