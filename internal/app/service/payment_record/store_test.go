package payment_record

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/checkout/internal/models"
	"github.com/fatflowers/checkout/internal/platform/db/dbtest"
	"github.com/fatflowers/checkout/pkg/tool"
	"github.com/fatflowers/checkout/pkg/types"
)

func newStore(t *testing.T) *Store {
	return NewStore(dbtest.New(t), zap.NewNop().Sugar())
}

func newPayment(orderID, attemptID string) *models.Payment {
	return &models.Payment{
		ID:            tool.GenerateUUIDV7(),
		OrderID:       orderID,
		AttemptID:     attemptID,
		CartID:        "cart-1",
		RestaurantID:  "rest-1",
		UserID:        "user-1",
		TotalAmount:   decimal.RequireFromString("1500.00"),
		Currency:      "LKR",
		PaymentMethod: types.PaymentMethodCard,
		PaymentStatus: types.PaymentStatusPending,
		Items: datatypes.NewJSONType([]models.PaymentItem{
			{MenuItemID: "m1", Name: "Kottu", Quantity: 2, Price: decimal.RequireFromString("750")},
		}),
		MaskedCard: datatypes.NewJSONType(&models.MaskedCard{Last4: "4242", MaskedNumber: "************4242", HolderName: "Jane Doe"}),
	}
}

func TestStore_CreateAndFind(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	p := newPayment("ORD1", "ORD1-1")
	require.NoError(t, s.Create(ctx, p))

	byID, err := s.FindByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "ORD1-1", byID.AttemptID)
	require.Equal(t, "1500.00", byID.TotalAmount.StringFixed(2))
	require.Len(t, byID.Items.Data(), 1)
	require.Equal(t, "4242", byID.GetMaskedCard().Last4)

	byOrder, err := s.FindByOrderID(ctx, "ORD1")
	require.NoError(t, err)
	require.Equal(t, p.ID, byOrder.ID)

	_, err = s.FindByAttemptID(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindByOrderID(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_CreateDuplicateAttemptIsConflict(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newPayment("ORD1", "ORD1-1")))

	err := s.Create(ctx, newPayment("ORD1", "ORD1-1"))
	require.ErrorIs(t, err, ErrConflict)
}

func TestStore_FindByOrderIDReturnsLatestAttempt(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	first := newPayment("ORD1", "ORD1-1")
	first.CreatedAt = time.Now().Add(-time.Minute)
	require.NoError(t, s.Create(ctx, first))
	second := newPayment("ORD1", "ORD1-2")
	require.NoError(t, s.Create(ctx, second))

	got, err := s.FindByOrderID(ctx, "ORD1")
	require.NoError(t, err)
	require.Equal(t, second.ID, got.ID)
}

func TestStore_UpdateStatusIsCompareAndSet(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newPayment("ORD1", "ORD1-1")))

	gw := GatewayFields{TransactionID: "320000", StatusCode: "2", StatusMessage: "Successfully completed"}
	p, applied, err := s.UpdateStatus(ctx, "ORD1-1", types.PaymentStatusCompleted, gw)
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, types.PaymentStatusCompleted, p.PaymentStatus)
	require.Equal(t, "320000", *p.GatewayTransactionID)

	// same terminal status again: no-op
	p, applied, err = s.UpdateStatus(ctx, "ORD1-1", types.PaymentStatusCompleted, gw)
	require.NoError(t, err)
	require.False(t, applied)
	require.Equal(t, types.PaymentStatusCompleted, p.PaymentStatus)

	// terminal records never regress
	p, applied, err = s.UpdateStatus(ctx, "ORD1-1", types.PaymentStatusFailed, GatewayFields{TransactionID: "x", StatusCode: "-2"})
	require.NoError(t, err)
	require.False(t, applied)
	require.Equal(t, types.PaymentStatusCompleted, p.PaymentStatus)
	require.Equal(t, "2", *p.GatewayStatusCode)
}

func TestStore_UpdateStatusPendingToPendingKeepsRecordOpen(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newPayment("ORD1", "ORD1-1")))

	p, applied, err := s.UpdateStatus(ctx, "ORD1-1", types.PaymentStatusPending, GatewayFields{TransactionID: "1", StatusCode: "0"})
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, types.PaymentStatusPending, p.PaymentStatus)

	p, applied, err = s.UpdateStatus(ctx, "ORD1-1", types.PaymentStatusCompleted, GatewayFields{TransactionID: "1", StatusCode: "2"})
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, types.PaymentStatusCompleted, p.PaymentStatus)
}

func TestStore_UpdateStatusUnknownAttempt(t *testing.T) {
	s := newStore(t)
	_, _, err := s.UpdateStatus(context.Background(), "missing", types.PaymentStatusCompleted, GatewayFields{})
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_ConcurrentUpdatesCommitExactlyOnce(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newPayment("ORD1", "ORD1-1")))

	targets := []types.PaymentStatus{types.PaymentStatusCompleted, types.PaymentStatusFailed}
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []types.PaymentStatus
	)
	for i := 0; i < 10; i++ {
		target := targets[i%2]
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, applied, err := s.UpdateStatus(ctx, "ORD1-1", target, GatewayFields{TransactionID: "t", StatusCode: "x"})
			if err != nil {
				t.Error(err)
				return
			}
			if applied {
				mu.Lock()
				winners = append(winners, target)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, winners, 1)
	final, err := s.FindByAttemptID(ctx, "ORD1-1")
	require.NoError(t, err)
	require.Equal(t, winners[0], final.PaymentStatus)
}

func TestStore_MarkOrderSyncedOnce(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newPayment("ORD1", "ORD1-1")))

	won, err := s.MarkOrderSynced(ctx, "ORD1-1")
	require.NoError(t, err)
	require.True(t, won)

	won, err = s.MarkOrderSynced(ctx, "ORD1-1")
	require.NoError(t, err)
	require.False(t, won)

	p, err := s.FindByAttemptID(ctx, "ORD1-1")
	require.NoError(t, err)
	require.NotNil(t, p.OrderSyncedAt)
}

func TestStore_ClaimOrderSync(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newPayment("ORD1", "ORD1-1")))

	claimed, err := s.ClaimOrderSync(ctx, "ORD1-1", time.Minute)
	require.NoError(t, err)
	require.True(t, claimed)

	claimed, err = s.ClaimOrderSync(ctx, "ORD1-1", time.Minute)
	require.NoError(t, err)
	require.False(t, claimed)

	require.NoError(t, s.ReleaseOrderSyncClaim(ctx, "ORD1-1"))
	claimed, err = s.ClaimOrderSync(ctx, "ORD1-1", time.Minute)
	require.NoError(t, err)
	require.True(t, claimed)

	// an abandoned claim is taken over once the lease ran out
	time.Sleep(5 * time.Millisecond)
	claimed, err = s.ClaimOrderSync(ctx, "ORD1-1", time.Millisecond)
	require.NoError(t, err)
	require.True(t, claimed)

	won, err := s.MarkOrderSynced(ctx, "ORD1-1")
	require.NoError(t, err)
	require.True(t, won)
	claimed, err = s.ClaimOrderSync(ctx, "ORD1-1", 0)
	require.NoError(t, err)
	require.False(t, claimed)

	p, err := s.FindByAttemptID(ctx, "ORD1-1")
	require.NoError(t, err)
	require.Nil(t, p.OrderSyncClaimedAt)
}

func TestStore_ClaimOrderSyncConcurrent(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newPayment("ORD1", "ORD1-1")))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := s.ClaimOrderSync(ctx, "ORD1-1", time.Minute)
			if err != nil {
				t.Error(err)
				return
			}
			if claimed {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, wins)
}

func TestStore_Scan(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, newPayment("ORD1", "ORD1-1")))
	require.NoError(t, s.Create(ctx, newPayment("ORD2", "ORD2-1")))
	_, _, err := s.UpdateStatus(ctx, "ORD2-1", types.PaymentStatusCompleted, GatewayFields{TransactionID: "1", StatusCode: "2"})
	require.NoError(t, err)

	res, err := s.Scan(ctx, &ScanRequest{
		Filters: []*types.CommonFilter{{Field: "payment_status", Operator: types.CommonFilterOperatorEq, Values: []any{"COMPLETED"}}},
		SortBy:  "not_a_column; drop table payment",
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Total)
	require.Len(t, res.Items, 1)
	require.Equal(t, "ORD2", res.Items[0].OrderID)

	all, err := s.Scan(ctx, &ScanRequest{Size: 1})
	require.NoError(t, err)
	require.EqualValues(t, 2, all.Total)
	require.Len(t, all.Items, 1)
}

func TestStore_Scan_RejectsUnknownFilterField(t *testing.T) {
	s := newStore(t)
	_, err := s.Scan(context.Background(), &ScanRequest{
		Filters: []*types.CommonFilter{{Field: "1=1 OR masked_card", Operator: types.CommonFilterOperatorEq, Values: []any{"x"}}},
	})
	require.ErrorIs(t, err, ErrInvalidFilter)
}

func TestStore_Scan_RejectsMalformedFilter(t *testing.T) {
	s := newStore(t)
	for _, f := range []*types.CommonFilter{
		{Field: "currency", Operator: types.CommonFilterOperatorEq},
		{Field: "created_at", Operator: types.CommonFilterOperatorDateRange, Values: []any{"2026-01-01"}},
		{Field: "total_amount", Operator: types.CommonFilterOperatorRange, Values: []any{"1"}},
	} {
		_, err := s.Scan(context.Background(), &ScanRequest{Filters: []*types.CommonFilter{f}})
		require.ErrorIs(t, err, ErrInvalidFilter, f.Operator)
	}
}
