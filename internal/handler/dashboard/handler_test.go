package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"github.com/heva-hub/assistant/backend/internal/analysis/response"
	dashboardservice "github.com/heva-hub/assistant/backend/internal/service/dashboard"
	"github.com/heva-hub/assistant/backend/internal/service/reply"
)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()
	replies, err := reply.NewService(context.Background(), response.Default())
	if err != nil {
		t.Fatalf("reply.NewService err: %v", err)
	}
	if _, err := replies.Generate(context.Background(), "workshop"); err != nil {
		t.Fatalf("Generate err: %v", err)
	}

	r := chi.NewRouter()
	New(dashboardservice.NewService(replies)).RegisterRoutes(r)
	return r
}

func TestSnapshot(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	resp := httptest.NewRecorder()
	setupRouter(t).ServeHTTP(resp, req)

	var snap dashboardservice.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.LiveTotal != 1 || len(snap.Stats) != 4 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestExportXLSX(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/dashboard/export", nil)
	resp := httptest.NewRecorder()
	setupRouter(t).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK || resp.Header().Get("Content-Type") != xlsxContentType {
		t.Fatalf("unexpected response %d %s", resp.Code, resp.Header().Get("Content-Type"))
	}
	f, err := excelize.OpenReader(bytes.NewReader(resp.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader err: %v", err)
	}
	defer f.Close()
	if len(f.GetSheetList()) != 4 {
		t.Fatalf("unexpected sheets %v", f.GetSheetList())
	}
}
