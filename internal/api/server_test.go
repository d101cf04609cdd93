package api

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"
)

type fakeInspector struct {
	resp InspectResponse
	err  error
}

func (f fakeInspector) Inspect(ctx context.Context, path string, samsung bool) (InspectResponse, error) {
	if f.err != nil {
		return InspectResponse{}, f.err
	}
	resp := f.resp
	resp.Path = path
	return resp, nil
}

func newTestEcho(inspector Inspector) *echo.Echo {
	server := NewServer(inspector)
	e := echo.New()
	server.Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()

	e := newTestEcho(fakeInspector{})
	rec := doJSON(t, e, http.MethodGet, "/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health status: got %d", rec.Code)
	}
}

func TestInspectReturnsReport(t *testing.T) {
	t.Parallel()

	e := newTestEcho(fakeInspector{
		resp: InspectResponse{
			Magic:      `"oat\n"`,
			Version:    64,
			EntryCount: 1,
			Entries: []EntryInfo{
				{Location: "core.jar", Checksum: "0x000000aa", PayloadSize: 128},
			},
		},
	})

	rec := doJSON(t, e, http.MethodPost, "/v1/inspect", `{"path":"/tmp/boot.oat"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("inspect status: got %d body=%s", rec.Code, rec.Body.String())
	}

	var resp InspectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode inspect response: %v", err)
	}
	if resp.Path != "/tmp/boot.oat" {
		t.Fatalf("unexpected path: %q", resp.Path)
	}
	if resp.Version != 64 || resp.EntryCount != 1 {
		t.Fatalf("unexpected header fields: %+v", resp)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].Location != "core.jar" {
		t.Fatalf("unexpected entries: %+v", resp.Entries)
	}
}

func TestInspectRequiresPath(t *testing.T) {
	t.Parallel()

	e := newTestEcho(fakeInspector{})
	rec := doJSON(t, e, http.MethodPost, "/v1/inspect", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing path, got %d", rec.Code)
	}
}

func TestInspectRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	e := newTestEcho(fakeInspector{})
	rec := doJSON(t, e, http.MethodPost, "/v1/inspect", `{"path":"x","bogus":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rec.Code)
	}
}

func TestInspectMissingFile(t *testing.T) {
	t.Parallel()

	e := newTestEcho(fakeInspector{err: fs.ErrNotExist})
	rec := doJSON(t, e, http.MethodPost, "/v1/inspect", `{"path":"/tmp/gone.oat"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing file, got %d", rec.Code)
	}
}
