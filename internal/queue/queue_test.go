package queue

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pablinho0889/business-bloom-b182c320/internal/model"
	"github.com/pablinho0889/business-bloom-b182c320/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDraft(productName string) model.SaleDraft {
	items := []model.SaleItem{
		{ProductID: "0b6f2f3e-1111-4444-8888-aaaaaaaaaaaa", ProductName: productName, Quantity: 2, UnitPrice: decimal.NewFromInt(1500)},
	}
	return model.SaleDraft{
		BusinessID:    "biz-1",
		UserID:        "user-1",
		Items:         items,
		Total:         model.SaleTotal(items),
		PaymentMethod: model.PaymentCash,
	}
}

func TestQueue_EnqueueAssignsTempIDAndPersists(t *testing.T) {
	st := store.NewMemory()
	q := New(st)
	ctx := context.Background()

	tempID, err := q.Enqueue(ctx, testDraft("Cafe"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tempID, "temp_"))

	// Durable: a fresh queue over the same store sees the sale.
	q2 := New(st)
	require.NoError(t, q2.Load(ctx))
	sales := q2.List()
	require.Len(t, sales, 1)
	assert.Equal(t, tempID, sales[0].TempID)
	assert.Equal(t, "Cafe", sales[0].Items[0].ProductName)
	assert.True(t, sales[0].Total.Equal(decimal.NewFromInt(3000)))
	assert.NotZero(t, sales[0].Timestamp)
}

func TestQueue_EnqueuePreservesOrder(t *testing.T) {
	q := New(store.NewMemory())
	ctx := context.Background()

	first, err := q.Enqueue(ctx, testDraft("Primero"))
	require.NoError(t, err)
	second, err := q.Enqueue(ctx, testDraft("Segundo"))
	require.NoError(t, err)

	snapshot, err := q.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 2)
	assert.Equal(t, first, snapshot[0].TempID)
	assert.Equal(t, second, snapshot[1].TempID)
}

func TestQueue_EnqueueSurfacesStoreFailure(t *testing.T) {
	st := store.NewMemory()
	q := New(st)
	ctx := context.Background()

	st.FailWrites(errors.New("disk full"))
	_, err := q.Enqueue(ctx, testDraft("Cafe"))
	require.Error(t, err)

	// Nothing half-applied: the mirror stays empty.
	assert.Zero(t, q.Count())
	st.FailWrites(nil)
	snapshot, err := q.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot)
}

func TestQueue_RemoveIsIdempotent(t *testing.T) {
	q := New(store.NewMemory())
	ctx := context.Background()

	tempID, err := q.Enqueue(ctx, testDraft("Cafe"))
	require.NoError(t, err)

	require.NoError(t, q.Remove(ctx, tempID))
	// Second removal of the same id is a no-op, not an error.
	require.NoError(t, q.Remove(ctx, tempID))
	// Removing an id that never existed is also fine.
	require.NoError(t, q.Remove(ctx, "temp_0_deadbeef"))

	assert.Zero(t, q.Count())
}

func TestQueue_RemoveKeepsRemainingOrder(t *testing.T) {
	q := New(store.NewMemory())
	ctx := context.Background()

	a, _ := q.Enqueue(ctx, testDraft("A"))
	b, _ := q.Enqueue(ctx, testDraft("B"))
	c, _ := q.Enqueue(ctx, testDraft("C"))

	require.NoError(t, q.Remove(ctx, b))

	snapshot, err := q.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot, 2)
	assert.Equal(t, a, snapshot[0].TempID)
	assert.Equal(t, c, snapshot[1].TempID)
}

func TestQueue_LoadRefreshesMirrorFromStore(t *testing.T) {
	st := store.NewMemory()
	q := New(st)
	ctx := context.Background()

	tempID, err := q.Enqueue(ctx, testDraft("Cafe"))
	require.NoError(t, err)

	// Simulate an out-of-band removal, then ask the queue to resync.
	require.NoError(t, st.Delete(ctx, store.BucketPendingSales, tempID))
	assert.Equal(t, 1, q.Count())
	require.NoError(t, q.Load(ctx))
	assert.Zero(t, q.Count())
}
