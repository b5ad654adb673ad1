package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"taskboard/internal/store"
	"taskboard/internal/task"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return New(task.NewManager(st))
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rdr *bytes.Reader
	if body == "" {
		rdr = bytes.NewReader(nil)
	} else {
		rdr = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, rdr)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return rec, out
}

func createTask(t *testing.T, h http.Handler, body string) map[string]any {
	t.Helper()
	rec, out := doJSON(t, h, http.MethodPost, "/api/tasks", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	return out["data"].(map[string]any)
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	rec, out := doJSON(t, h, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if out["success"] != true {
		t.Fatalf("success = %v, want true", out["success"])
	}
	if out["timestamp"] == nil {
		t.Fatal("missing timestamp")
	}
}

func TestCreateReturnsDefaults(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	data := createTask(t, h, `{"title":"Buy milk"}`)
	if data["title"] != "Buy milk" {
		t.Fatalf("title = %v", data["title"])
	}
	if data["priority"] != "medium" {
		t.Fatalf("priority = %v, want medium", data["priority"])
	}
	if data["completed"] != false {
		t.Fatalf("completed = %v, want false", data["completed"])
	}
	if data["description"] != "" {
		t.Fatalf("description = %v, want empty", data["description"])
	}
}

func TestCreateValidationFailures(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	cases := []struct {
		name string
		body string
		want string
	}{
		{"empty title", `{"title":"   "}`, "title required"},
		{"missing title", `{}`, "title required"},
		{"bad priority", `{"title":"x","priority":"urgent"}`, "invalid priority"},
	}
	for _, tc := range cases {
		rec, out := doJSON(t, h, http.MethodPost, "/api/tasks", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", tc.name, rec.Code)
		}
		if out["error"] != tc.want {
			t.Fatalf("%s: error = %v, want %q", tc.name, out["error"], tc.want)
		}
	}
}

func TestCreateMalformedBody(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	rec, out := doJSON(t, h, http.MethodPost, "/api/tasks", `{"title":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if out["error"] != "invalid request body" {
		t.Fatalf("error = %v", out["error"])
	}
}

func TestGetByID(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	data := createTask(t, h, `{"title":"fetch me"}`)
	id := data["id"].(float64)

	rec, out := doJSON(t, h, http.MethodGet, "/api/tasks/"+jsonNum(id), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	got := out["data"].(map[string]any)
	if got["title"] != "fetch me" {
		t.Fatalf("title = %v", got["title"])
	}
}

func TestGetMissingAndNonNumericIDs(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	for _, path := range []string{"/api/tasks/999", "/api/tasks/abc"} {
		rec, out := doJSON(t, h, http.MethodGet, path, "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: status = %d, want 404", path, rec.Code)
		}
		if out["error"] != "task not found" {
			t.Fatalf("%s: error = %v", path, out["error"])
		}
	}
}

func TestListEnvelopeAndOrder(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()

	rec, out := doJSON(t, h, http.MethodGet, "/api/tasks", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if out["count"] != float64(0) {
		t.Fatalf("count = %v, want 0", out["count"])
	}
	if _, ok := out["data"].([]any); !ok {
		t.Fatalf("data = %T, want array", out["data"])
	}

	createTask(t, h, `{"title":"Write spec","priority":"high"}`)
	createTask(t, h, `{"title":"Review"}`)

	_, out = doJSON(t, h, http.MethodGet, "/api/tasks", "")
	if out["count"] != float64(2) {
		t.Fatalf("count = %v, want 2", out["count"])
	}
	data := out["data"].([]any)
	first := data[0].(map[string]any)
	second := data[1].(map[string]any)
	if first["title"] != "Review" || second["title"] != "Write spec" {
		t.Fatalf("order = [%v %v], want newest first", first["title"], second["title"])
	}
}

func TestUpdateFlow(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	data := createTask(t, h, `{"title":"draft"}`)
	id := jsonNum(data["id"].(float64))

	rec, out := doJSON(t, h, http.MethodPut, "/api/tasks/"+id, `{"completed":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	got := out["data"].(map[string]any)
	if got["completed"] != true {
		t.Fatalf("completed = %v, want true", got["completed"])
	}
	if got["title"] != "draft" {
		t.Fatalf("title = %v, want unchanged", got["title"])
	}

	rec, out = doJSON(t, h, http.MethodPut, "/api/tasks/"+id, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty payload status = %d, want 400", rec.Code)
	}
	if out["error"] != "no fields to update" {
		t.Fatalf("error = %v", out["error"])
	}

	rec, _ = doJSON(t, h, http.MethodPut, "/api/tasks/999", `{"title":"x"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing id status = %d, want 404", rec.Code)
	}
}

func TestDeleteReturnsSnapshot(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	data := createTask(t, h, `{"title":"short lived"}`)
	id := jsonNum(data["id"].(float64))

	rec, out := doJSON(t, h, http.MethodDelete, "/api/tasks/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	snap := out["data"].(map[string]any)
	if snap["title"] != "short lived" {
		t.Fatalf("snapshot title = %v", snap["title"])
	}

	rec, _ = doJSON(t, h, http.MethodGet, "/api/tasks/"+id, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d, want 404", rec.Code)
	}
}

func TestUnmatchedRoute(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	rec, out := doJSON(t, h, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if out["error"] != "route not found" {
		t.Fatalf("error = %v", out["error"])
	}
	if out["path"] != "/nope" {
		t.Fatalf("path = %v, want /nope", out["path"])
	}
}

func TestExportEndpoint(t *testing.T) {
	t.Parallel()

	h := newTestServer(t).Handler()
	createTask(t, h, `{"title":"exported"}`)

	rec, _ := doJSON(t, h, http.MethodGet, "/api/tasks/export?format=csv", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content-type = %q, want text/csv", ct)
	}
	if !strings.Contains(rec.Body.String(), "exported") {
		t.Fatalf("csv body missing task: %s", rec.Body.String())
	}

	rec, out := doJSON(t, h, http.MethodGet, "/api/tasks/export?format=xml", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown format status = %d, want 400", rec.Code)
	}
	if out["error"] != "unknown format xml" {
		t.Fatalf("error = %v", out["error"])
	}
}

func jsonNum(f float64) string {
	return strconv.FormatInt(int64(f), 10)
}
