package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procfeed/internal/crawler"
	"procfeed/internal/models"
	"procfeed/internal/normalizer"
	"procfeed/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockRunner implements the Runner interface for testing.
type MockRunner struct {
	RunFunc  func(url string, opts service.RunOptions) (*service.RunReport, error)
	SyncFunc func() ([]service.SourceReport, error)
}

func (m *MockRunner) Run(_ context.Context, url string, opts service.RunOptions) (*service.RunReport, error) {
	return m.RunFunc(url, opts)
}

func (m *MockRunner) SyncAll(context.Context) ([]service.SourceReport, error) {
	return m.SyncFunc()
}

type envelope struct {
	Data json.RawMessage `json:"data"`
	Msg  string          `json:"msg"`
	Code int             `json:"code"`
}

func perform(t *testing.T, runner Runner, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	r := NewRouter(NewHandler(runner, nil), nil)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))

	return w, env
}

func TestHandler_Ingest(t *testing.T) {
	var gotURL string

	var gotOpts service.RunOptions

	runner := &MockRunner{
		RunFunc: func(url string, opts service.RunOptions) (*service.RunReport, error) {
			gotURL, gotOpts = url, opts

			return &service.RunReport{
				Location: url,
				Attempts: 1,
				Result: &crawler.IngestResult{
					Format:  normalizer.FormatTabular,
					Found:   2,
					Entries: []*models.CanonicalProcurementEntry{{ElectronicOrderID: "OE-1"}},
					Rejections: []normalizer.Rejection{
						{Index: 1, Reason: normalizer.RejectMissingOrderID},
					},
				},
			}, nil
		},
	}

	w, env := perform(t, runner, http.MethodPost, "/api/v1/ingest",
		`{"url": "https://datos.gob.pe/ordenes.json", "strict": true}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Code)
	assert.Equal(t, "https://datos.gob.pe/ordenes.json", gotURL)
	assert.True(t, gotOpts.Strict)
	assert.False(t, gotOpts.Persist)

	var data IngestResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 1, data.Accepted)
	assert.Equal(t, 2, data.Found)
	assert.Equal(t, []string{"element 1: missing_order_id"}, data.RejectedErrors)
	assert.Equal(t, "OE-1", data.Entries[0].ElectronicOrderID)
}

func TestHandler_Ingest_BadRequest(t *testing.T) {
	w, env := perform(t, &MockRunner{}, http.MethodPost, "/api/v1/ingest", `{"strict": true}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, -1, env.Code)
}

func TestHandler_Ingest_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"policy", &crawler.PolicyError{URL: "u", Reason: "host not allowed"}, http.StatusForbidden},
		{"transport", &crawler.TransportError{URL: "u", Status: 503}, http.StatusBadGateway},
		{"format", &crawler.FormatError{URL: "u", Kind: crawler.FormatMarkup}, http.StatusUnprocessableEntity},
		{"no storage", service.ErrPersistenceDisabled, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &MockRunner{
				RunFunc: func(string, service.RunOptions) (*service.RunReport, error) {
					return nil, tt.err
				},
			}

			w, env := perform(t, runner, http.MethodPost, "/api/v1/ingest", `{"url": "https://x.gob.pe"}`)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, -1, env.Code)
			assert.Equal(t, tt.err.Error(), env.Msg)
		})
	}
}

func TestHandler_Sync(t *testing.T) {
	runner := &MockRunner{
		SyncFunc: func() ([]service.SourceReport, error) {
			return []service.SourceReport{
				{Source: "good", Run: &service.RunReport{Location: "https://good.gob.pe", Result: &crawler.IngestResult{Found: 3}}},
				{Source: "bad", Error: "source failed: bad"},
			}, nil
		},
	}

	w, env := perform(t, runner, http.MethodPost, "/api/v1/sync", "")
	require.Equal(t, http.StatusOK, w.Code)

	var data []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Len(t, data, 2)
	assert.Equal(t, true, data[0]["ok"])
	assert.InDelta(t, 3, data[0]["found"], 0)
	assert.Equal(t, false, data[1]["ok"])
	assert.Equal(t, "source failed: bad", data[1]["error"])

	runner.SyncFunc = func() ([]service.SourceReport, error) {
		return nil, service.ErrNoEnabledSources
	}

	w, _ = perform(t, runner, http.MethodPost, "/api/v1/sync", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Health(t *testing.T) {
	w, env := perform(t, &MockRunner{}, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", env.Msg)
}
