package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonpay/cardswitch/pkg/types"
)

func pendingTx(acquirerOrderID string) Transaction {
	return Transaction{
		ID:                "pcc-" + acquirerOrderID,
		AcquirerOrderID:   acquirerOrderID,
		AcquirerTimestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		MaskedPAN:         "411111******1111",
		Amount:            decimal.NewFromInt(1000),
		Currency:          "RSD",
		MerchantID:        "merchant-1",
		Status:            types.StatusPending,
	}
}

func TestCreateIsCreateIfAbsent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first, created, err := store.Create(ctx, pendingTx("ord-1"))
	require.NoError(t, err)
	require.True(t, created)

	dup := pendingTx("ord-1")
	dup.ID = "pcc-other"
	second, created, err := store.Create(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID, "existing row wins")
}

func TestResolveSetsAllFieldsTogether(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, _, err := store.Create(ctx, pendingTx("ord-1"))
	require.NoError(t, err)

	issuedAt := time.Date(2026, 8, 1, 12, 0, 3, 0, time.UTC)
	resolved, err := store.Resolve(ctx, "ord-1", Resolution{
		Status:          types.StatusCompleted,
		IssuerOrderID:   "iss-1",
		IssuerTimestamp: &issuedAt,
		StatusMessage:   "approved",
	})
	require.NoError(t, err)

	assert.Equal(t, types.StatusCompleted, resolved.Status)
	assert.Equal(t, "iss-1", resolved.IssuerOrderID)
	require.NotNil(t, resolved.IssuerTimestamp)
	assert.Equal(t, issuedAt, *resolved.IssuerTimestamp)
	assert.Equal(t, "approved", resolved.StatusMessage)
	assert.NotNil(t, resolved.UpdatedAt, "UpdatedAt stamps with the resolution")

	stored, err := store.Get(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, resolved, stored)
}

func TestPendingRowHasNoIssuerFields(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, _, err := store.Create(ctx, pendingTx("ord-1"))
	require.NoError(t, err)

	stored, err := store.Get(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, stored.Status)
	assert.Empty(t, stored.IssuerOrderID)
	assert.Nil(t, stored.IssuerTimestamp)
	assert.Nil(t, stored.UpdatedAt)
}

func TestTerminalStatusIsImmutable(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, _, err := store.Create(ctx, pendingTx("ord-1"))
	require.NoError(t, err)

	_, err = store.Resolve(ctx, "ord-1", Resolution{
		Status:        types.StatusFailed,
		StatusMessage: "Issuer bank service unavailable",
	})
	require.NoError(t, err)

	issuedAt := time.Now().UTC()
	stored, err := store.Resolve(ctx, "ord-1", Resolution{
		Status:          types.StatusCompleted,
		IssuerOrderID:   "iss-late",
		IssuerTimestamp: &issuedAt,
		StatusMessage:   "approved",
	})
	assert.ErrorIs(t, err, ErrAlreadyResolved)
	assert.Equal(t, types.StatusFailed, stored.Status)
	assert.Empty(t, stored.IssuerOrderID)
	assert.Equal(t, "Issuer bank service unavailable", stored.StatusMessage)
}

func TestConcurrentResolveOnlyFirstWins(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, _, err := store.Create(ctx, pendingTx("ord-1"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			issuedAt := time.Now().UTC()
			_, err := store.Resolve(ctx, "ord-1", Resolution{
				Status:          types.StatusCompleted,
				IssuerOrderID:   "iss-concurrent",
				IssuerTimestamp: &issuedAt,
			})
			if err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, winners, "exactly one resolver succeeds")
}

func TestGetUnknownOrder(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Resolve(context.Background(), "missing", Resolution{Status: types.StatusFailed})
	assert.ErrorIs(t, err, ErrNotFound)
}
