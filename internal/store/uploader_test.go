package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procfeed/internal/config"
	"procfeed/internal/models"
)

var errDeadlock = errors.New("deadlock detected")

// MockWriter implements the Writer interface for testing.
type MockWriter struct {
	UpsertFunc func(rows []OrderRecord) error

	mu      sync.Mutex
	batches [][]OrderRecord
	active  atomic.Int32
	peak    atomic.Int32
}

func (m *MockWriter) UpsertBatch(_ context.Context, rows []OrderRecord) (int64, error) {
	n := m.active.Add(1)
	defer m.active.Add(-1)

	for {
		peak := m.peak.Load()
		if n <= peak || m.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	m.mu.Lock()
	m.batches = append(m.batches, rows)
	m.mu.Unlock()

	if m.UpsertFunc != nil {
		if err := m.UpsertFunc(rows); err != nil {
			return 0, err
		}
	}

	return int64(len(rows)), nil
}

func (m *MockWriter) rows() []OrderRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []OrderRecord
	for _, b := range m.batches {
		out = append(out, b...)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ElectronicOrderID < out[j].ElectronicOrderID })

	return out
}

func storageConfig(batch, concurrent int) config.StorageConfig {
	return config.StorageConfig{TenantID: "tenant-a", BatchSize: batch, MaxConcurrentBatches: concurrent}
}

func entry(id string, delivery int, supplier string) *models.CanonicalProcurementEntry {
	return &models.CanonicalProcurementEntry{
		ElectronicOrderID: id,
		DeliveryNumber:    delivery,
		SupplierName:      supplier,
		TotalAmount:       100,
	}
}

func TestUploader_Save_Batches(t *testing.T) {
	w := &MockWriter{}
	u := NewUploader(w, storageConfig(3, 2), nil)

	var entries []*models.CanonicalProcurementEntry
	for i := range 10 {
		entries = append(entries, entry(fmt.Sprintf("OE-%02d", i), 1, "Acme"))
	}

	result, err := u.Save(context.Background(), entries)
	require.NoError(t, err)

	assert.Equal(t, 10, result.Saved)
	assert.Equal(t, 4, result.Batches)
	assert.Empty(t, result.Errors)
	assert.LessOrEqual(t, w.peak.Load(), int32(2))

	rows := w.rows()
	require.Len(t, rows, 10)
	assert.Equal(t, "tenant-a", rows[0].TenantID)
	assert.Equal(t, "OE-00", rows[0].ElectronicOrderID)
}

func TestUploader_Save_LastDuplicateWins(t *testing.T) {
	w := &MockWriter{}
	u := NewUploader(w, storageConfig(10, 1), nil)

	result, err := u.Save(context.Background(), []*models.CanonicalProcurementEntry{
		entry("OE-1", 1, "First"),
		entry("OE-1", 2, "Second delivery"),
		nil,
		entry("OE-1", 1, "Corrected"),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Saved)
	assert.Equal(t, 1, result.Duplicates)

	require.Len(t, w.batches, 1)
	batch := w.batches[0]
	require.Len(t, batch, 2)
	assert.Equal(t, "Corrected", batch[0].SupplierName)
	assert.Equal(t, 2, batch[1].DeliveryNumber)
}

func TestUploader_Save_DistinctKeysNotMerged(t *testing.T) {
	w := &MockWriter{}
	u := NewUploader(w, storageConfig(10, 1), nil)

	result, err := u.Save(context.Background(), []*models.CanonicalProcurementEntry{
		entry("OE-1#2", 0, "Odd order id"),
		entry("OE-1", 2, "Second delivery"),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Saved)
	assert.Zero(t, result.Duplicates)

	rows := w.rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "OE-1", rows[0].ElectronicOrderID)
	assert.Equal(t, 2, rows[0].DeliveryNumber)
	assert.Equal(t, "OE-1#2", rows[1].ElectronicOrderID)
	assert.Equal(t, 0, rows[1].DeliveryNumber)
}

func TestUploader_Save_BatchFailureIsolated(t *testing.T) {
	w := &MockWriter{
		UpsertFunc: func(rows []OrderRecord) error {
			if rows[0].ElectronicOrderID == "OE-00" {
				return errDeadlock
			}

			return nil
		},
	}
	u := NewUploader(w, storageConfig(2, 3), nil)

	var entries []*models.CanonicalProcurementEntry
	for i := range 6 {
		entries = append(entries, entry(fmt.Sprintf("OE-%02d", i), 1, "Acme"))
	}

	result, err := u.Save(context.Background(), entries)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Saved)
	assert.Equal(t, 3, result.Batches)
	require.Len(t, result.Errors, 1)
	assert.ErrorIs(t, result.Errors[0], errDeadlock)
	assert.Contains(t, result.Errors[0].Error(), "batch 0")
}

func TestUploader_Save_Empty(t *testing.T) {
	w := &MockWriter{}

	result, err := NewUploader(w, storageConfig(0, 0), nil).Save(context.Background(), nil)
	require.NoError(t, err)

	assert.Zero(t, result.Saved)
	assert.Zero(t, result.Batches)
	assert.Empty(t, w.batches)
}

func TestUploader_Save_RequiresTenant(t *testing.T) {
	u := NewUploader(&MockWriter{}, config.StorageConfig{}, nil)

	_, err := u.Save(context.Background(), []*models.CanonicalProcurementEntry{entry("OE-1", 1, "x")})
	require.ErrorIs(t, err, ErrTenantRequired)
}

func TestUploader_Save_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &MockWriter{}

	_, err := NewUploader(w, storageConfig(1, 1), nil).Save(ctx, []*models.CanonicalProcurementEntry{
		entry("OE-1", 1, "x"),
		entry("OE-2", 1, "y"),
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, w.batches)
}

func TestUpsertClause(t *testing.T) {
	c := upsertClause()

	require.Len(t, c.Columns, 3)
	assert.Equal(t, "tenant_id", c.Columns[0].Name)
	assert.Equal(t, "electronic_order_id", c.Columns[1].Name)
	assert.Equal(t, "delivery_number", c.Columns[2].Name)

	for _, set := range c.DoUpdates {
		assert.NotContains(t, keyColumns, set.Column.Name)
	}

	assert.Len(t, c.DoUpdates, len(updatableColumns()))
}

func TestNewOrderRecord(t *testing.T) {
	e := entry("OE-9", 3, "Proveedor X")
	e.BuyerName = models.UnknownParty

	row := NewOrderRecord("tenant-b", e)

	assert.Equal(t, "tenant-b", row.TenantID)
	assert.Equal(t, "OE-9", row.ElectronicOrderID)
	assert.Equal(t, 3, row.DeliveryNumber)
	assert.Equal(t, "Proveedor X", row.SupplierName)
	assert.Equal(t, models.UnknownParty, row.BuyerName)
	assert.Equal(t, "procurement_entries", row.TableName())
}
