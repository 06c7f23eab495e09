package httpapi

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"attendance-platform/internal/attendance"
	"attendance-platform/internal/audit"
	"attendance-platform/internal/auth"
	"attendance-platform/internal/directory"
	"attendance-platform/internal/faceid"
	"attendance-platform/internal/orgtime"
	"attendance-platform/internal/reporting"

	"github.com/gin-gonic/gin"
)

var testZone = orgtime.MustZone("-05:00")

type fixture struct {
	face       *faceid.MemoryProvider
	directory  *directory.MemoryRepo
	attendance *attendance.MemoryRepo
	audit      *audit.MemoryRepo
	reporting  *reporting.MemoryRepo
	handlers   Handlers
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		face:       faceid.NewMemoryProvider(),
		directory:  directory.NewMemoryRepo(),
		attendance: attendance.NewMemoryRepo(),
		audit:      audit.NewMemoryRepo(),
		reporting:  reporting.NewMemoryRepo(),
	}
	f.handlers = Handlers{
		Face:       f.face,
		Directory:  directory.NewService(f.directory),
		Attendance: attendance.NewService(f.attendance, testZone).WithClock(func() time.Time { return now }),
		Audit:      audit.NewService(f.audit, testZone).WithClock(func() time.Time { return now }),
		Reporting:  reporting.NewService(f.reporting, testZone),
		Zone:       testZone,
	}
	return f
}

func (f *fixture) enroll(orgID, empID, code, name string, active bool, image []byte) {
	token := "tok-" + empID
	f.face.Enroll(image, token, 0.99)
	f.directory.Add(directory.Employee{
		ID:             empID,
		OrganizationID: orgID,
		EmployeeCode:   code,
		DisplayName:    name,
		FaceToken:      token,
		Active:         active,
	})
	f.attendance.AddEmployee(orgID, empID)
}

// serve runs one request with an authenticated identity injected the same
// way the JWT middleware does.
func serve(t *testing.T, handler gin.HandlerFunc, method, path string, body any, orgID, userID, role string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), userID, orgID, role))
		c.Next()
	})
	u, err := url.Parse(path)
	if err != nil {
		t.Fatalf("parse path %q: %v", path, err)
	}
	r.Handle(method, u.Path, handler)

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestRegisterAccess_HappyPath(t *testing.T) {
	now := time.Date(2024, 1, 2, 9, 0, 0, 0, testZone.Location()).UTC()
	f := newFixture(now)
	image := []byte("alice-capture")
	f.enroll("org-a", "emp-1", "E001", "Alice", true, image)

	w := serve(t, f.handlers.RegisterAccess, http.MethodPost, "/register", gin.H{
		"image":  base64.StdEncoding.EncodeToString(image),
		"action": "check_in",
	}, "org-a", "kiosk-1", "kiosk")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	entries := f.attendance.Entries()
	if len(entries) != 1 || entries[0].Kind != attendance.KindCheckIn {
		t.Fatalf("unexpected ledger: %+v", entries)
	}
	body := decodeBody(t, w)
	emp, _ := body["employee"].(map[string]any)
	if emp["display_name"] != "Alice" {
		t.Fatalf("expected employee echo, got %v", body)
	}
}

func TestRegisterAccess_DuplicateConflict(t *testing.T) {
	now := time.Date(2024, 1, 2, 9, 0, 0, 0, testZone.Location()).UTC()
	f := newFixture(now)
	image := []byte("alice-capture")
	f.enroll("org-a", "emp-1", "E001", "Alice", true, image)
	f.attendance.Seed(attendance.Entry{
		ID:             "seed-1",
		OrganizationID: "org-a",
		EmployeeID:     "emp-1",
		Kind:           attendance.KindCheckIn,
		Timestamp:      now.Add(-time.Hour),
	})

	w := serve(t, f.handlers.RegisterAccess, http.MethodPost, "/register", gin.H{
		"image":  base64.StdEncoding.EncodeToString(image),
		"action": "check_in",
	}, "org-a", "kiosk-1", "kiosk")

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["action"] != "check_in" || body["last_action"] == "" {
		t.Fatalf("conflict body must name the duplicate action and its time, got %v", body)
	}
	if got := len(f.attendance.Entries()); got != 1 {
		t.Fatalf("rejected request must not write, ledger has %d entries", got)
	}
}

func TestRegisterAccess_UnknownFaceIsNotFound(t *testing.T) {
	f := newFixture(time.Now().UTC())

	w := serve(t, f.handlers.RegisterAccess, http.MethodPost, "/register", gin.H{
		"image":  base64.StdEncoding.EncodeToString([]byte("stranger")),
		"action": "check_in",
	}, "org-a", "kiosk-1", "kiosk")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRegisterAccess_ForeignOrgLooksLikeNotFound(t *testing.T) {
	now := time.Now().UTC()
	f := newFixture(now)
	image := []byte("alice-capture")
	f.enroll("org-a", "emp-1", "E001", "Alice", true, image)

	// Same face, wrong organization in the caller's token.
	w := serve(t, f.handlers.RegisterAccess, http.MethodPost, "/register", gin.H{
		"image":  base64.StdEncoding.EncodeToString(image),
		"action": "check_in",
	}, "org-b", "kiosk-9", "kiosk")

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRegisterAccess_InactiveEmployeeForbidden(t *testing.T) {
	f := newFixture(time.Now().UTC())
	image := []byte("bob-capture")
	f.enroll("org-a", "emp-2", "E002", "Bob", false, image)

	w := serve(t, f.handlers.RegisterAccess, http.MethodPost, "/register", gin.H{
		"image":  base64.StdEncoding.EncodeToString(image),
		"action": "check_out",
	}, "org-a", "kiosk-1", "kiosk")

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRegisterAccess_RejectsBadInput(t *testing.T) {
	f := newFixture(time.Now().UTC())

	cases := []struct {
		name string
		body gin.H
	}{
		{"bad action", gin.H{"image": base64.StdEncoding.EncodeToString([]byte("x")), "action": "lunch"}},
		{"empty image", gin.H{"image": "", "action": "check_in"}},
		{"not base64", gin.H{"image": "!!!", "action": "check_in"}},
	}
	for _, tc := range cases {
		w := serve(t, f.handlers.RegisterAccess, http.MethodPost, "/register", tc.body, "org-a", "kiosk-1", "kiosk")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d: %s", tc.name, w.Code, w.Body.String())
		}
	}
}

func TestRegisterManual_AdminFallback(t *testing.T) {
	now := time.Date(2024, 1, 2, 18, 0, 0, 0, testZone.Location()).UTC()
	f := newFixture(now)
	f.enroll("org-a", "emp-1", "E001", "Alice", true, []byte("alice-capture"))

	w := serve(t, f.handlers.RegisterManual, http.MethodPost, "/manual", gin.H{
		"employee_id": "emp-1",
		"action":      "check_in",
	}, "org-a", "admin-1", "admin")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := len(f.attendance.Entries()); got != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", got)
	}
}

func TestEditEntryTime_ValidationAndHappyPath(t *testing.T) {
	now := time.Date(2024, 1, 3, 10, 0, 0, 0, testZone.Location()).UTC()
	f := newFixture(now)
	entryAt := time.Date(2024, 1, 2, 9, 0, 0, 0, testZone.Location()).UTC()
	f.audit.SeedEntry(attendance.Entry{
		ID:             "log-1",
		OrganizationID: "org-a",
		EmployeeID:     "emp-1",
		Kind:           attendance.KindCheckIn,
		Timestamp:      entryAt,
	})

	short := serve(t, f.handlers.EditEntryTime, http.MethodPatch, "/logs/log-1/time", gin.H{
		"new_time": "08:45",
		"reason":   "typo",
	}, "org-a", "admin-1", "admin")
	if short.Code != http.StatusBadRequest {
		t.Fatalf("short reason: expected 400, got %d: %s", short.Code, short.Body.String())
	}
	if len(f.audit.Edits()) != 0 {
		t.Fatalf("rejected edit must not write audit rows")
	}

	ok := serve(t, f.handlers.EditEntryTime, http.MethodPatch, "/logs/log-1/time", gin.H{
		"new_time": "08:45",
		"reason":   "badge reader clock was wrong",
	}, "org-a", "admin-1", "admin")
	if ok.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", ok.Code, ok.Body.String())
	}
	if len(f.audit.Edits()) != 1 {
		t.Fatalf("expected 1 audit row, got %d", len(f.audit.Edits()))
	}

	missing := serve(t, f.handlers.EditEntryTime, http.MethodPatch, "/logs/nope/time", gin.H{
		"new_time": "08:45",
		"reason":   "badge reader clock was wrong",
	}, "org-a", "admin-1", "admin")
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", missing.Code, missing.Body.String())
	}
}

func TestWorkedHoursReport_ParamsAndResult(t *testing.T) {
	f := newFixture(time.Now().UTC())
	f.reporting.Entries = []attendance.Entry{
		{OrganizationID: "org-a", EmployeeID: "emp-1", Kind: attendance.KindCheckIn,
			Timestamp: time.Date(2024, 1, 2, 8, 0, 0, 0, testZone.Location()).UTC()},
		{OrganizationID: "org-a", EmployeeID: "emp-1", Kind: attendance.KindCheckOut,
			Timestamp: time.Date(2024, 1, 2, 16, 0, 0, 0, testZone.Location()).UTC()},
	}

	bad := serve(t, f.handlers.WorkedHoursReport, http.MethodGet,
		"/report", nil, "org-a", "admin-1", "admin")
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("missing params: expected 400, got %d", bad.Code)
	}

	w := serve(t, f.handlers.WorkedHoursReport, http.MethodGet,
		"/report?employee_id=emp-1&from=2024-01-01&to=2024-01-02", nil, "org-a", "admin-1", "admin")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["pair_count"] != float64(1) {
		t.Fatalf("expected 1 pair, got %v", body)
	}
}

func TestMe_EchoesIdentity(t *testing.T) {
	f := newFixture(time.Now().UTC())
	w := serve(t, f.handlers.Me, http.MethodGet, "/me", nil, "org-a", "user-7", "user")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["organization_id"] != "org-a" || body["user_id"] != "user-7" || body["role"] != "user" {
		t.Fatalf("unexpected identity echo: %v", body)
	}
}
