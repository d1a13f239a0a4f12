package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/compassd/compass/internal/httpserver/deps"
	"github.com/compassd/compass/internal/logger"
	"github.com/compassd/compass/internal/netcheck"
	"github.com/compassd/compass/internal/store"
)

// testDeps builds deps over a temp-dir store. builtin and cached are
// file contents; empty means absent.
func testDeps(t *testing.T, builtin, cached string) (deps.Deps, string) {
	t.Helper()
	dir := t.TempDir()

	builtinPath := filepath.Join(dir, "builtin.properties")
	if builtin != "" {
		if err := os.WriteFile(builtinPath, []byte(builtin), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	cachePath := filepath.Join(dir, "cache.properties")
	if cached != "" {
		if err := os.WriteFile(cachePath, []byte(cached), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	st := store.NewWithBuiltin(cachePath, builtinPath)
	return deps.Deps{
		Logger:         logger.NewNop(),
		StartTime:      time.Now(),
		Version:        "test",
		TimeNow:        time.Now,
		Cache:          store.NewCache(st, logger.NewNop()),
		Checker:        netcheck.New(false),
		RefreshTrigger: make(chan struct{}, 1),
	}, cachePath
}

const builtinContent = "timestamp=1000\nserver1=s1.example\nserver2=s2.example\n"

func TestHealthz(t *testing.T) {
	d, _ := testDeps(t, builtinContent, "")
	rec := httptest.NewRecorder()
	Healthz(d)(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
}

func TestReadyz(t *testing.T) {
	d, _ := testDeps(t, builtinContent, "")
	rec := httptest.NewRecorder()
	Readyz(d)(rec, httptest.NewRequest(http.MethodGet, "/api/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	// No directory at all: not ready.
	d, _ = testDeps(t, "", "")
	rec = httptest.NewRecorder()
	Readyz(d)(rec, httptest.NewRequest(http.MethodGet, "/api/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestGetDirectory(t *testing.T) {
	d, _ := testDeps(t, builtinContent, "")
	rec := httptest.NewRecorder()
	GetDirectory(d)(rec, httptest.NewRequest(http.MethodGet, "/api/directory", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Timestamp time.Time `json:"timestamp"`
		Servers   []string  `json:"servers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Servers) != 2 {
		t.Errorf("servers = %v, want 2 entries", resp.Servers)
	}
	if resp.Timestamp.Unix() != 1000 {
		t.Errorf("timestamp = %v, want unix 1000", resp.Timestamp)
	}
}

func TestGetDirectoryNotFound(t *testing.T) {
	d, _ := testDeps(t, "", "")
	rec := httptest.NewRecorder()
	GetDirectory(d)(rec, httptest.NewRequest(http.MethodGet, "/api/directory", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetEndpoint(t *testing.T) {
	d, _ := testDeps(t, builtinContent, "")
	rec := httptest.NewRecorder()
	GetEndpoint(d)(rec, httptest.NewRequest(http.MethodGet, "/api/endpoint", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(resp.Endpoint, "s1.example") && !strings.HasPrefix(resp.Endpoint, "s2.example") {
		t.Errorf("endpoint = %q, want a directory member", resp.Endpoint)
	}
}

func TestGetEndpointOverrideParam(t *testing.T) {
	d, _ := testDeps(t, builtinContent, "")
	rec := httptest.NewRecorder()
	GetEndpoint(d)(rec, httptest.NewRequest(http.MethodGet, "/api/endpoint?override=pin.example:9000", nil))

	var resp struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Endpoint != "pin.example:9000" {
		t.Errorf("endpoint = %q, want pin.example:9000", resp.Endpoint)
	}
}

func TestGetEndpointConfiguredOverride(t *testing.T) {
	d, _ := testDeps(t, "", "") // empty directory; only the override resolves
	d.EndpointOverride = "pin.example"
	rec := httptest.NewRecorder()
	GetEndpoint(d)(rec, httptest.NewRequest(http.MethodGet, "/api/endpoint", nil))

	var resp struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Endpoint != "pin.example:5222" {
		t.Errorf("endpoint = %q, want pin.example:5222", resp.Endpoint)
	}
}

func TestGetEndpointNothingToContact(t *testing.T) {
	d, _ := testDeps(t, "", "")
	rec := httptest.NewRecorder()
	GetEndpoint(d)(rec, httptest.NewRequest(http.MethodGet, "/api/endpoint", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRefresh(t *testing.T) {
	d, _ := testDeps(t, builtinContent, "")

	rec := httptest.NewRecorder()
	Refresh(d)(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rec.Code)
	}

	// Trigger channel full: already pending.
	rec = httptest.NewRecorder()
	Refresh(d)(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}

func TestSetOffline(t *testing.T) {
	d, _ := testDeps(t, builtinContent, "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/offline", strings.NewReader(`{"enabled":true}`))
	SetOffline(d)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !d.Checker.OfflineMode() {
		t.Error("offline mode not enabled")
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/api/offline", strings.NewReader(`{"enabled":false}`))
	SetOffline(d)(rec, req)
	if d.Checker.OfflineMode() {
		t.Error("offline mode not disabled")
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/api/offline", strings.NewReader("not json"))
	SetOffline(d)(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestResetDirectory(t *testing.T) {
	cached := "timestamp=2000\nserver1=c.example\n"
	d, cachePath := testDeps(t, builtinContent, cached)

	// Cached wins before the reset.
	if dir := d.Cache.Current(); dir == nil || dir.Timestamp().Unix() != 2000 {
		t.Fatalf("Current = %v, want the cached directory", dir)
	}

	rec := httptest.NewRecorder()
	ResetDirectory(d)(rec, httptest.NewRequest(http.MethodDelete, "/api/directory", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if _, err := os.Stat(cachePath); !os.IsNotExist(err) {
		t.Error("cache file still present after reset")
	}
	if dir := d.Cache.Current(); dir == nil || dir.Timestamp().Unix() != 1000 {
		t.Errorf("Current = %v, want the builtin directory", dir)
	}
}
