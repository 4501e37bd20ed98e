package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tesoreria/backend/internal/domain/receipt"
)

func testReceipt(folio string) *receipt.PrintableReceipt {
	return receipt.FromRaw(receipt.RawReceipt{
		Folio:       folio,
		PaymentDate: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Concept:     "Colegiatura marzo",
		Amount:      decimal.NewFromFloat(1500.50),
		StudentName: "Ana López",
		StudentID:   "A01234",
		ProgramName: "Primaria",
		QRPayload:   "qr-token",
	})
}

func TestInMemoryReceiptStore_RoundTrip(t *testing.T) {
	store := NewInMemoryReceiptStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	original := testReceipt("F-1")
	require.NoError(t, store.Put(ctx, "session-1", original))

	got, ok := store.Get(ctx, "session-1", "F-1")
	require.True(t, ok)
	assert.Equal(t, original, got)
}

func TestInMemoryReceiptStore_MissOnUnknownFolio(t *testing.T) {
	store := NewInMemoryReceiptStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "session-1", testReceipt("F-1")))

	_, ok := store.Get(ctx, "session-1", "F-2")
	assert.False(t, ok)
}

func TestInMemoryReceiptStore_SessionsAreIsolated(t *testing.T) {
	store := NewInMemoryReceiptStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "session-1", testReceipt("F-1")))

	_, ok := store.Get(ctx, "session-2", "F-1")
	assert.False(t, ok)
}

func TestInMemoryReceiptStore_LaterPutOverwrites(t *testing.T) {
	store := NewInMemoryReceiptStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	first := testReceipt("F-1")
	require.NoError(t, store.Put(ctx, "session-1", first))

	updated := testReceipt("F-1")
	updated.Status = receipt.StatusCancelled
	updated.CancelReason = "Pago duplicado"
	require.NoError(t, store.Put(ctx, "session-1", updated))

	got, ok := store.Get(ctx, "session-1", "F-1")
	require.True(t, ok)
	assert.Equal(t, receipt.StatusCancelled, got.Status)
	assert.Equal(t, "Pago duplicado", got.CancelReason)
}

func TestInMemoryReceiptStore_Clear(t *testing.T) {
	store := NewInMemoryReceiptStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "session-1", testReceipt("F-1")))
	require.NoError(t, store.Put(ctx, "session-1", testReceipt("F-2")))
	require.NoError(t, store.Clear(ctx, "session-1"))

	_, ok := store.Get(ctx, "session-1", "F-1")
	assert.False(t, ok)
	_, ok = store.Get(ctx, "session-1", "F-2")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Size())
}

func TestInMemoryReceiptStore_MalformedValueIsMiss(t *testing.T) {
	store := NewInMemoryReceiptStore(time.Hour)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "session-1", testReceipt("F-1")))

	// Corrupt the stored bytes behind the store's back.
	store.mu.Lock()
	store.sessions["session-1"].receipts["F-1"] = []byte("{not json")
	store.mu.Unlock()

	_, ok := store.Get(ctx, "session-1", "F-1")
	assert.False(t, ok)
}

func TestInMemoryReceiptStore_ExpiredSessionIsMiss(t *testing.T) {
	store := NewInMemoryReceiptStore(10 * time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "session-1", testReceipt("F-1")))
	time.Sleep(30 * time.Millisecond)

	_, ok := store.Get(ctx, "session-1", "F-1")
	assert.False(t, ok)
}

func TestInMemoryReceiptStore_CloseIsIdempotent(t *testing.T) {
	store := NewInMemoryReceiptStore(time.Hour)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
