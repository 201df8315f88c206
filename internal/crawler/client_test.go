package crawler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procfeed/internal/config"
	"procfeed/internal/models"
	"procfeed/internal/normalizer"
)

func serveJSON(t *testing.T, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func testClient() *Client {
	cfg := config.Default()
	cfg.Fetch.TimeoutSec = 5

	return NewClient(cfg, nil)
}

func TestClient_Ingest_Tabular(t *testing.T) {
	srv := serveJSON(t, `{"data": [
		{"Orden Electronica": "OE-1", "Monto Total Entrega": "1,500.00", "Proveedor": "Acme"},
		{"Proveedor": "Sin orden", "Monto Total Entrega": "10"}
	]}`)

	result, err := testClient().Ingest(context.Background(), srv.URL, IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, normalizer.FormatTabular, result.Format)
	assert.Equal(t, 2, result.Found)
	require.Equal(t, 1, result.Accepted())

	e := result.Entries[0]
	assert.Equal(t, "OE-1", e.ElectronicOrderID)
	assert.InDelta(t, 1500.0, e.TotalAmount, 0)
	assert.Equal(t, "Acme", e.SupplierName)

	assert.Greater(t, result.Found, result.Accepted())
	assert.Equal(t, []string{"element 1: missing_order_id (no column matches the order id keywords)"}, result.RejectedErrors())

	require.NotNil(t, result.Metadata)
	assert.Equal(t, srv.URL, result.Metadata.SourceURL)
	assert.NotEmpty(t, result.Metadata.RunID)
	assert.Len(t, result.Metadata.Hash, 64)
}

func TestClient_Ingest_Nested(t *testing.T) {
	srv := serveJSON(t, `{"releases": [{"ocid": "ocds-1", "tender": {"procurementMethodDetails": "Catálogos Electrónicos", "items": [{"description": "Silla", "quantity": 5}]}, "awards": [{"suppliers": [{"id": "PE-RUC-123"}], "value": {"amount": 500}}], "parties": [{"id": "PE-RUC-123", "name": "Proveedor X"}], "buyer": {"id": "PE-RUC-999"}}]}`)

	result, err := testClient().Ingest(context.Background(), srv.URL, IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, normalizer.FormatNested, result.Format)
	assert.Equal(t, 1, result.Found)
	require.Equal(t, 1, result.Accepted())

	e := result.Entries[0]
	assert.Equal(t, "Proveedor X", e.SupplierName)
	assert.InDelta(t, 500, e.TotalAmount, 0)
	assert.Equal(t, "Silla", e.ProductDescription)
	assert.Equal(t, models.UnknownParty, e.BuyerName)
}

func TestClient_Ingest_SearchResults(t *testing.T) {
	srv := serveJSON(t, `{"results": [
		{"compiledRelease": {"ocid": "ocds-1", "tender": {"procurementMethodDetails": "Acuerdo Marco"}}},
		{"compiledRelease": {"ocid": "ocds-2", "tender": {"procurementMethodDetails": "Licitación Pública"}}}
	]}`)

	result, err := testClient().Ingest(context.Background(), srv.URL, IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, "results", result.Wrapper)
	assert.Equal(t, 2, result.Found)
	assert.Equal(t, 1, result.Accepted())
	assert.Equal(t, normalizer.RejectNotCatalog, result.Rejections[0].Reason)
}

func TestClient_Ingest_PrefixOverride(t *testing.T) {
	srv := serveJSON(t, `{"releases": [{"ocid": "ocds-1",
		"tender": {"procurementMethodDetails": "Convenio Marco"},
		"awards": [{"suppliers": [{"id": "CL-RUT-7612"}]}],
		"parties": [{"id": "7612", "name": "Proveedora Andina"}]}]}`)

	c := testClient()

	result, err := c.Ingest(context.Background(), srv.URL, IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, models.UnknownParty, result.Entries[0].SupplierName)

	result, err = c.Ingest(context.Background(), srv.URL, IngestOptions{PartyIDPrefixes: []string{"CL-RUT-"}})
	require.NoError(t, err)
	assert.Equal(t, "Proveedora Andina", result.Entries[0].SupplierName)
}

func TestClient_Ingest_UnknownShape(t *testing.T) {
	srv := serveJSON(t, `{"status": "ok", "payload": {}}`)

	result, err := testClient().Ingest(context.Background(), srv.URL, IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, normalizer.FormatUnknown, result.Format)
	assert.Zero(t, result.Found)
	assert.Zero(t, result.Accepted())
	assert.Equal(t, []string{"status", "payload"}, result.TopLevelKeys)
}

func TestClient_Ingest_FatalErrors(t *testing.T) {
	html := serveJSON(t, "<!DOCTYPE html><html></html>")

	_, err := testClient().Ingest(context.Background(), html.URL, IngestOptions{})
	require.ErrorIs(t, err, ErrFormat)

	_, err = testClient().Ingest(context.Background(), html.URL, IngestOptions{Strict: true})
	require.ErrorIs(t, err, ErrPolicy)
}

func TestClient_IngestFile_AndSave(t *testing.T) {
	dir := t.TempDir()

	input := filepath.Join(dir, "ordenes.json")
	require.NoError(t, os.WriteFile(input, []byte(`[{"ORDEN_ELECTRONICA": "OE-7", "PROVEEDOR": "Acme"}]`), 0600))

	c := testClient()

	result, err := c.IngestFile(context.Background(), input, IngestOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, result.Accepted())
	assert.Equal(t, "OE-7", result.Entries[0].ElectronicOrderID)

	output := filepath.Join(dir, "out.json")
	require.NoError(t, c.SaveResultJSON(result, output))

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var saved map[string]any
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.InDelta(t, 1, saved["found"], 0)
	assert.Equal(t, "tabular", saved["format"])
}
