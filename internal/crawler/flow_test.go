package crawler

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procfeed/internal/models"
	"procfeed/internal/normalizer"
)

func TestFlow_CatalogOrderExport(t *testing.T) {
	result, err := testClient().IngestFile(context.Background(), filepath.Join("testdata", "ordenes_catalogo.json"), IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, normalizer.FormatTabular, result.Format)
	assert.Equal(t, "data", result.Wrapper)
	assert.Equal(t, 3, result.Found)
	require.Equal(t, 2, result.Accepted())

	first := result.Entries[0]
	assert.Equal(t, "OCAM-2024-123-45-1", first.ElectronicOrderID)
	assert.Equal(t, "Distribuidora Andina S.A.C.", first.SupplierName)
	assert.Equal(t, "20512345678", first.SupplierTaxID)
	assert.Equal(t, "Ministerio de Salud", first.BuyerName)
	assert.InDelta(t, 12345.60, first.TotalAmount, 0.001)
	assert.Equal(t, 1, first.DeliveryNumber)
	assert.Equal(t, 2, first.TotalDeliveries)

	assert.InDelta(t, 980.5, result.Entries[1].TotalAmount, 0.001)

	require.Len(t, result.Rejections, 1)
	assert.Equal(t, 2, result.Rejections[0].Index)
	assert.Equal(t, "order id column is empty", result.Rejections[0].Detail)
}

func TestFlow_ReleasePackage(t *testing.T) {
	result, err := testClient().IngestFile(context.Background(), filepath.Join("testdata", "release_package.json"), IngestOptions{})
	require.NoError(t, err)

	assert.Equal(t, normalizer.FormatNested, result.Format)
	assert.Equal(t, "releases", result.Wrapper)
	assert.Equal(t, 3, result.Found)
	require.Equal(t, 2, result.Accepted())

	chairs := result.Entries[0]
	assert.Equal(t, "ocds-dgv273-seacev3-1001", chairs.ElectronicOrderID)
	assert.Equal(t, "Distribuidora Andina S.A.C.", chairs.SupplierName)
	assert.Equal(t, "Ministerio de Salud", chairs.BuyerName)
	assert.Equal(t, "Silla ergonómica", chairs.ProductDescription)
	assert.InDelta(t, 2500, chairs.TotalAmount, 0)
	assert.InDelta(t, 250, chairs.UnitPrice, 0)
	assert.Equal(t, models.StatusFormalized, chairs.OrderStatus)

	cancelled := result.Entries[1]
	assert.Equal(t, "ocds-dgv273-seacev3-1003", cancelled.ElectronicOrderID)
	assert.Equal(t, models.StatusCancelled, cancelled.OrderStatus)
	assert.Equal(t, models.UnknownParty, cancelled.SupplierName)
	assert.InDelta(t, 1200, cancelled.TotalAmount, 0)

	require.Len(t, result.Rejections, 1)
	assert.Equal(t, normalizer.RejectNotCatalog, result.Rejections[0].Reason)
	assert.Equal(t, 1, result.Rejections[0].Index)
}
