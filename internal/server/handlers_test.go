package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/liftsync/internal/models"
	"github.com/claude/liftsync/internal/planner"
)

type fakePlans struct {
	forced    bool
	loadErr   error
	logDate   string
	logs      []models.LogEntry
	published string
	limit     int
}

func (f *fakePlans) Load(_ context.Context, force bool) (models.PlanSnapshot, error) {
	f.forced = force
	if f.loadErr != nil {
		return models.PlanSnapshot{}, f.loadErr
	}
	return models.PlanSnapshot{Title: "Weekly Plan (3/2/2026)", Source: models.SourceRemoteSheet}, nil
}

func (f *fakePlans) LoadSupplemental(context.Context) (models.SupplementalBucket, error) {
	return models.SupplementalBucket{"Tuesday": {{Name: "Row"}}, "Thursday": {}, "Saturday": {}}, nil
}

func (f *fakePlans) SaveLogs(_ context.Context, date string, logs []models.LogEntry) (planner.LogResult, error) {
	f.logDate, f.logs = date, logs
	return planner.LogResult{Sheet: "Plan", Updates: []models.CellUpdate{{Range: "'Plan'!H6", Values: [][]string{{"185x5"}}}}}, nil
}

func (f *fakePlans) History(context.Context, int) ([]models.SyncRun, error) {
	return []models.SyncRun{{Kind: "load", Status: "ok"}}, nil
}

func (f *fakePlans) LoggedExercises(_ context.Context, limit int) ([]models.JournalEntry, error) {
	f.limit = limit
	return []models.JournalEntry{{SheetName: "Plan", Exercise: "Bench", LogText: "185x5", CellRange: "'Plan'!H6"}}, nil
}

func (f *fakePlans) Publish(ctx context.Context, title string, gen planner.Generator) (planner.PublishResult, error) {
	body, err := gen.Generate(ctx, title)
	if err != nil {
		return planner.PublishResult{}, err
	}
	f.published = body
	return planner.PublishResult{Title: title, Days: 1}, nil
}

func newTestServer(plans PlanService, mcpHandler http.Handler) *Server {
	s := New(plans, "test-key", slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Routes(mcpHandler)
	return s
}

func do(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// TestGetPlanForce verifies the force query parameter reaches the planner.
func TestGetPlanForce(t *testing.T) {
	plans := &fakePlans{}
	rec := do(t, newTestServer(plans, nil), http.MethodGet, "/api/v1/plan?force=true", "", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !plans.forced {
		t.Error("force not passed to planner")
	}
	var snap models.PlanSnapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if snap.Source != models.SourceRemoteSheet {
		t.Errorf("source = %q", snap.Source)
	}
}

func TestGetPlanErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{planner.ErrNoPlanData, http.StatusServiceUnavailable},
		{errors.New("sheets: 500"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		rec := do(t, newTestServer(&fakePlans{loadErr: tt.err}, nil), http.MethodGet, "/api/v1/plan", "", nil)
		if rec.Code != tt.want {
			t.Errorf("%v: status = %d, want %d", tt.err, rec.Code, tt.want)
		}
	}
}

func TestGetSupplemental(t *testing.T) {
	rec := do(t, newTestServer(&fakePlans{}, nil), http.MethodGet, "/api/v1/plan/supplemental", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var bucket models.SupplementalBucket
	if err := json.NewDecoder(rec.Body).Decode(&bucket); err != nil {
		t.Fatal(err)
	}
	if len(bucket) != 3 || bucket["Tuesday"][0].Name != "Row" {
		t.Errorf("bucket = %+v", bucket)
	}
}

// TestSaveLogsRequiresAPIKey verifies write endpoints reject missing and wrong keys.
func TestSaveLogsRequiresAPIKey(t *testing.T) {
	s := newTestServer(&fakePlans{}, nil)
	body := `{"date":"3/2/2026","entries":[{"exercise":"Bench","log":"185x5"}]}`

	if rec := do(t, s, http.MethodPost, "/api/v1/plan/logs", body, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("missing key: status = %d, want 401", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/v1/plan/logs", body, map[string]string{"X-API-Key": "nope"}); rec.Code != http.StatusForbidden {
		t.Errorf("wrong key: status = %d, want 403", rec.Code)
	}
}

func TestSaveLogs(t *testing.T) {
	plans := &fakePlans{}
	body := `{"date":"3/2/2026","entries":[{"exercise":"Bench","log":"185x5"},{"exercise":"Incline Press","log":"3x8"}]}`
	rec := do(t, newTestServer(plans, nil), http.MethodPost, "/api/v1/plan/logs", body, map[string]string{"X-API-Key": "test-key"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if plans.logDate != "3/2/2026" || len(plans.logs) != 2 || plans.logs[1].Exercise != "Incline Press" {
		t.Errorf("planner got date=%q logs=%+v", plans.logDate, plans.logs)
	}
}

func TestSaveLogsBadRequest(t *testing.T) {
	s := newTestServer(&fakePlans{}, nil)
	key := map[string]string{"X-API-Key": "test-key"}
	for _, body := range []string{`not json`, `{"date":"","entries":[{"exercise":"a"}]}`, `{"date":"3/2/2026","entries":[]}`} {
		if rec := do(t, s, http.MethodPost, "/api/v1/plan/logs", body, key); rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestPublish(t *testing.T) {
	plans := &fakePlans{}
	body := `{"title":"Weekly Plan (3/9/2026)","body":"# Weekly Plan (3/9/2026)\n"}`
	rec := do(t, newTestServer(plans, nil), http.MethodPost, "/api/v1/plan/publish", body, map[string]string{"X-API-Key": "test-key"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if plans.published != "# Weekly Plan (3/9/2026)\n" {
		t.Errorf("published = %q", plans.published)
	}
}

func TestHistory(t *testing.T) {
	rec := do(t, newTestServer(&fakePlans{}, nil), http.MethodGet, "/api/v1/history?limit=5", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var runs []models.SyncRun
	if err := json.NewDecoder(rec.Body).Decode(&runs); err != nil || len(runs) != 1 {
		t.Errorf("runs = (%v, %v)", runs, err)
	}
}

func TestLoggedExercises(t *testing.T) {
	plans := &fakePlans{}
	s := newTestServer(plans, nil)

	rec := do(t, s, http.MethodGet, "/api/v1/history/logs", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if plans.limit != 50 {
		t.Errorf("default limit = %d, want 50", plans.limit)
	}
	var entries []models.JournalEntry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil || len(entries) != 1 || entries[0].CellRange != "'Plan'!H6" {
		t.Errorf("entries = (%v, %v)", entries, err)
	}

	do(t, s, http.MethodGet, "/api/v1/history/logs?limit=-3", "", nil)
	if plans.limit != 50 {
		t.Errorf("negative limit = %d, want 50", plans.limit)
	}
}

// TestMCPMountedBehindAPIKey verifies the MCP handler is reachable only with a key.
func TestMCPMountedBehindAPIKey(t *testing.T) {
	called := false
	mcpHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusAccepted)
	})
	s := newTestServer(&fakePlans{}, mcpHandler)

	if rec := do(t, s, http.MethodPost, "/mcp", "{}", nil); rec.Code != http.StatusUnauthorized || called {
		t.Errorf("without key: status = %d, called = %v", rec.Code, called)
	}
	if rec := do(t, s, http.MethodPost, "/mcp", "{}", map[string]string{"X-API-Key": "test-key"}); rec.Code != http.StatusAccepted || !called {
		t.Errorf("with key: status = %d, called = %v", rec.Code, called)
	}
}

// TestHandleMeDefault verifies the /api/v1/me endpoint returns the dev user
// identity when no Tailscale middleware is active.
func TestHandleMeDefault(t *testing.T) {
	rec := do(t, newTestServer(&fakePlans{}, nil), http.MethodGet, "/api/v1/me", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
	if info.DisplayName != "Local Dev User" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Local Dev User")
	}
}
