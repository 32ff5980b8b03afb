package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/checkout/internal/app/service/notification_log"
	"github.com/fatflowers/checkout/internal/app/service/payment_record"
	"github.com/fatflowers/checkout/internal/app/service/side_effect"
	"github.com/fatflowers/checkout/internal/models"
	"github.com/fatflowers/checkout/internal/platform/collaborator"
	"github.com/fatflowers/checkout/internal/platform/collaborator/collaboratortest"
	"github.com/fatflowers/checkout/internal/platform/db/dbtest"
	"github.com/fatflowers/checkout/internal/platform/lock"
	"github.com/fatflowers/checkout/internal/platform/payhere"
	"github.com/fatflowers/checkout/pkg/config"
	"github.com/fatflowers/checkout/pkg/tool"
	"github.com/fatflowers/checkout/pkg/types"
)

const (
	merchantID = "1211149"
	secret     = "secret"
)

type harness struct {
	svc   *Service
	store *payment_record.Store
	audit *notification_log.Service
	fake  *collaboratortest.Server
}

func newHarness(t *testing.T, locker lock.Locker) *harness {
	t.Helper()
	fake := collaboratortest.New(t)
	cfg := &config.Config{
		PayHere:          config.PayHereConfig{MerchantID: merchantID, MerchantSecret: secret},
		Collaborators:    config.CollaboratorsConfig{BaseURL: fake.URL, Timeout: time.Second},
		CustomerDefaults: config.CustomerDefaultsConfig{Email: "customer@example.com"},
	}
	log := zap.NewNop().Sugar()
	db := dbtest.New(t)
	store := payment_record.NewStore(db, log)
	audit := notification_log.New(db, log)
	t.Cleanup(func() { _ = audit.Flush(context.Background()) })
	dispatcher := side_effect.NewDispatcher(collaborator.NewClient(cfg, nil, log), cfg, nil, log)
	if locker == nil {
		locker = lock.Noop{}
	}
	return &harness{
		svc:   NewService(NewVerifier(cfg), store, dispatcher, locker, audit, nil, log),
		store: store,
		audit: audit,
		fake:  fake,
	}
}

func (h *harness) seed(t *testing.T, orderID, attemptID string) *models.Payment {
	t.Helper()
	p := &models.Payment{
		ID:            tool.GenerateUUIDV7(),
		OrderID:       orderID,
		AttemptID:     attemptID,
		CartID:        "cart-" + orderID,
		RestaurantID:  "rest-1",
		UserID:        "u-1",
		TotalAmount:   decimal.RequireFromString("1500.00"),
		Currency:      "LKR",
		PaymentMethod: types.PaymentMethodCard,
		CustomerEmail: "jane@example.lk",
		PaymentStatus: types.PaymentStatusPending,
		Items:         datatypes.NewJSONType([]models.PaymentItem{{MenuItemID: "m1", Name: "Kottu", Quantity: 1}}),
	}
	require.NoError(t, h.store.Create(context.Background(), p))
	return p
}

func (h *harness) status(t *testing.T, attemptID string) types.PaymentStatus {
	t.Helper()
	p, err := h.store.FindByAttemptID(context.Background(), attemptID)
	require.NoError(t, err)
	return p.PaymentStatus
}

func signed(attemptID, statusCode string) *payhere.Notification {
	return &payhere.Notification{
		MerchantID:    merchantID,
		OrderID:       attemptID,
		PaymentID:     "320025071",
		StatusCode:    statusCode,
		StatusMessage: "gateway says " + statusCode,
		MD5Sig:        payhere.NotificationSignature(merchantID, attemptID, "320025071", statusCode, secret),
	}
}

func TestHandleNotification_StatusMapping(t *testing.T) {
	cases := []struct {
		code  string
		want  types.PaymentStatus
		order map[string]any
	}{
		{"2", types.PaymentStatusCompleted, map[string]any{"status": "CONFIRMED", "paymentStatus": "PAID"}},
		{"-1", types.PaymentStatusFailed, map[string]any{"status": "CANCELLED", "paymentStatus": "FAILED"}},
		{"-2", types.PaymentStatusFailed, map[string]any{"status": "CANCELLED", "paymentStatus": "FAILED"}},
		{"-3", types.PaymentStatusRefunded, map[string]any{"status": "CANCELLED", "paymentStatus": "REFUNDED"}},
		{"0", types.PaymentStatusPending, nil},
		{"99", types.PaymentStatusPending, nil},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			h := newHarness(t, nil)
			p := h.seed(t, "ORD1", "ORD1-1")

			res, err := h.svc.HandleNotification(context.Background(), signed("ORD1-1", tc.code))
			require.NoError(t, err)
			require.Equal(t, p.ID, res.PaymentID)
			require.Equal(t, tc.want, res.PaymentStatus)
			require.Equal(t, tc.want, h.status(t, "ORD1-1"))

			if tc.order == nil {
				require.Empty(t, h.fake.Calls())
				return
			}
			calls := h.fake.Calls()
			require.Equal(t, "/orders/ORD1", calls[0].Path)
			require.Equal(t, tc.order, calls[0].Body)
			wantEffects := 0
			if tc.want == types.PaymentStatusCompleted {
				wantEffects = 1
			}
			require.Equal(t, wantEffects, h.fake.Count("DELETE /carts/cart-ORD1"))
			require.Equal(t, wantEffects, h.fake.Count("POST /notifications/email"))
		})
	}
}

func TestHandleNotification_TamperedStatusIsRejected(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t, "ORD1", "ORD1-1")

	n := signed("ORD1-1", "-2")
	n.StatusCode = "2"
	_, err := h.svc.HandleNotification(context.Background(), n)
	require.True(t, errors.Is(err, ErrInvalidSignature))
	require.Equal(t, types.PaymentStatusPending, h.status(t, "ORD1-1"))
	require.Empty(t, h.fake.Calls())

	require.NoError(t, h.audit.Flush(context.Background()))
	rows, err := h.audit.ListByAttemptID(context.Background(), "ORD1-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	statuses := []models.PaymentNotificationLogStatus{rows[0].Status, rows[1].Status}
	require.ElementsMatch(t, []models.PaymentNotificationLogStatus{
		models.PaymentNotificationLogStatusReceived,
		models.PaymentNotificationLogStatusRejected,
	}, statuses)
}

func TestHandleNotification_ForeignMerchantIsRejected(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t, "ORD1", "ORD1-1")

	n := &payhere.Notification{MerchantID: "999", OrderID: "ORD1-1", PaymentID: "1", StatusCode: "2"}
	n.MD5Sig = payhere.NotificationSignature("999", n.OrderID, n.PaymentID, n.StatusCode, secret)
	_, err := h.svc.HandleNotification(context.Background(), n)
	require.True(t, errors.Is(err, ErrInvalidSignature))
	require.Equal(t, types.PaymentStatusPending, h.status(t, "ORD1-1"))
}

func TestHandleNotification_ReplayIsIdempotent(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t, "ORD1", "ORD1-1")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := h.svc.HandleNotification(ctx, signed("ORD1-1", "2"))
		require.NoError(t, err)
		require.Equal(t, types.PaymentStatusCompleted, res.PaymentStatus)
	}
	require.Equal(t, 1, h.fake.Count("PATCH /orders/ORD1"))
	require.Equal(t, 1, h.fake.Count("DELETE /carts/cart-ORD1"))
	require.Equal(t, 1, h.fake.Count("POST /notifications/email"))
}

func TestHandleNotification_TerminalRecordDoesNotRegress(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t, "ORD1", "ORD1-1")
	ctx := context.Background()

	_, err := h.svc.HandleNotification(ctx, signed("ORD1-1", "2"))
	require.NoError(t, err)

	res, err := h.svc.HandleNotification(ctx, signed("ORD1-1", "-2"))
	require.NoError(t, err)
	require.Equal(t, types.PaymentStatusCompleted, res.PaymentStatus)
	require.Equal(t, types.PaymentStatusCompleted, h.status(t, "ORD1-1"))
	require.Equal(t, 1, h.fake.Count("PATCH /orders/ORD1"))
}

func TestHandleNotification_OrderFailureThenRetry(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t, "ORD1", "ORD1-1")
	ctx := context.Background()

	h.fake.Fail("PATCH /orders", http.StatusServiceUnavailable)
	_, err := h.svc.HandleNotification(ctx, signed("ORD1-1", "2"))
	require.True(t, errors.Is(err, ErrReconciliation))
	require.Equal(t, types.PaymentStatusCompleted, h.status(t, "ORD1-1"))
	require.Equal(t, 0, h.fake.Count("DELETE /carts"))
	require.Equal(t, 0, h.fake.Count("POST /notifications/email"))

	h.fake.Fail("PATCH /orders", 0)
	res, err := h.svc.HandleNotification(ctx, signed("ORD1-1", "2"))
	require.NoError(t, err)
	require.Equal(t, types.PaymentStatusCompleted, res.PaymentStatus)
	require.Equal(t, 2, h.fake.Count("PATCH /orders/ORD1"))
	require.Equal(t, 1, h.fake.Count("DELETE /carts/cart-ORD1"))
	require.Equal(t, 1, h.fake.Count("POST /notifications/email"))

	_, err = h.svc.HandleNotification(ctx, signed("ORD1-1", "2"))
	require.NoError(t, err)
	require.Equal(t, 2, h.fake.Count("PATCH /orders/ORD1"))
	require.Equal(t, 1, h.fake.Count("DELETE /carts/cart-ORD1"))
}

func TestHandleNotification_SideEffectFailureDoesNotFail(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t, "ORD1", "ORD1-1")
	h.fake.Fail("DELETE /carts", http.StatusInternalServerError)
	h.fake.Fail("POST /notifications", http.StatusInternalServerError)

	res, err := h.svc.HandleNotification(context.Background(), signed("ORD1-1", "2"))
	require.NoError(t, err)
	require.Equal(t, types.PaymentStatusCompleted, res.PaymentStatus)
}

func TestHandleNotification_LookupFallsBackToOrderID(t *testing.T) {
	h := newHarness(t, nil)
	h.seed(t, "ORD-7", "ORD-7-1000")

	res, err := h.svc.HandleNotification(context.Background(), signed("ORD-7-2000", "2"))
	require.NoError(t, err)
	require.Equal(t, types.PaymentStatusCompleted, res.PaymentStatus)
	require.Equal(t, types.PaymentStatusCompleted, h.status(t, "ORD-7-1000"))
}

func TestHandleNotification_UnknownPayment(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.svc.HandleNotification(context.Background(), signed("NOPE-1", "2"))
	require.True(t, errors.Is(err, ErrUnknownPayment))
	require.Empty(t, h.fake.Calls())
}

func TestHandleNotification_Misconfigured(t *testing.T) {
	h := newHarness(t, nil)
	h.svc.verifier = NewVerifier(&config.Config{})
	_, err := h.svc.HandleNotification(context.Background(), signed("ORD1-1", "2"))
	require.True(t, errors.Is(err, payhere.ErrMisconfigured))
}

func TestHandleNotification_ConcurrentDeliveryIsBusy(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	locker := lock.NewRedis(client, time.Minute)

	h := newHarness(t, locker)
	h.seed(t, "ORD1", "ORD1-1")
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "payhere:notify:ORD1-1")
	require.NoError(t, err)
	_, err = h.svc.HandleNotification(ctx, signed("ORD1-1", "2"))
	require.True(t, errors.Is(err, ErrNotificationInProgress))
	require.Equal(t, types.PaymentStatusPending, h.status(t, "ORD1-1"))

	require.NoError(t, release(ctx))
	_, err = h.svc.HandleNotification(ctx, signed("ORD1-1", "2"))
	require.NoError(t, err)
	require.False(t, mr.Exists("payhere:notify:ORD1-1"))
}

// deliverConcurrently sends every notification at once and returns the
// results in input order.
func deliverConcurrently(h *harness, ns ...*payhere.Notification) ([]*Result, []error) {
	results := make([]*Result, len(ns))
	errs := make([]error, len(ns))
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i, n := range ns {
		wg.Add(1)
		go func(i int, n *payhere.Notification) {
			defer wg.Done()
			<-start
			results[i], errs[i] = h.svc.HandleNotification(context.Background(), n)
		}(i, n)
	}
	close(start)
	wg.Wait()
	return results, errs
}

func TestHandleNotification_ConcurrentDuplicatesSyncOrderOnce(t *testing.T) {
	h := newHarness(t, lock.Noop{})

	for round := 0; round < 10; round++ {
		orderID := fmt.Sprintf("R%02d", round)
		attemptID := orderID + "-1"
		h.seed(t, orderID, attemptID)

		_, errs := deliverConcurrently(h,
			signed(attemptID, "2"), signed(attemptID, "2"), signed(attemptID, "2"), signed(attemptID, "2"))
		for _, err := range errs {
			if err != nil {
				require.ErrorIs(t, err, ErrNotificationInProgress)
			}
		}

		require.Equal(t, types.PaymentStatusCompleted, h.status(t, attemptID))
		require.Equal(t, 1, h.fake.Count("PATCH /orders/"+orderID), orderID)
		require.Equal(t, 1, h.fake.Count("DELETE /carts/cart-"+orderID), orderID)

		// a later redelivery is a plain replay
		res, err := h.svc.HandleNotification(context.Background(), signed(attemptID, "2"))
		require.NoError(t, err)
		require.Equal(t, types.PaymentStatusCompleted, res.PaymentStatus)
		require.Equal(t, 1, h.fake.Count("PATCH /orders/"+orderID))
	}
	require.Equal(t, 10, h.fake.Count("POST /notifications/email"))
}

func TestHandleNotification_CompletedRacingFailed(t *testing.T) {
	h := newHarness(t, lock.Noop{})

	for round := 0; round < 10; round++ {
		orderID := fmt.Sprintf("R%02d", round)
		attemptID := orderID + "-1"
		h.seed(t, orderID, attemptID)
		emailsBefore := h.fake.Count("POST /notifications/email")

		results, errs := deliverConcurrently(h, signed(attemptID, "2"), signed(attemptID, "-2"))
		final := h.status(t, attemptID)
		for i, err := range errs {
			if err != nil {
				require.ErrorIs(t, err, ErrNotificationInProgress)
				continue
			}
			// the losing status is acknowledged with the committed one
			require.Equal(t, final, results[i].PaymentStatus)
		}

		require.Equal(t, 1, h.fake.Count("PATCH /orders/"+orderID), orderID)
		patch := lastCall(t, h, "PATCH /orders/"+orderID)
		switch final {
		case types.PaymentStatusCompleted:
			require.Equal(t, "PAID", patch.Body["paymentStatus"])
			require.Equal(t, 1, h.fake.Count("DELETE /carts/cart-"+orderID))
			require.Equal(t, emailsBefore+1, h.fake.Count("POST /notifications/email"))
		case types.PaymentStatusFailed:
			require.Equal(t, "FAILED", patch.Body["paymentStatus"])
			require.Equal(t, 0, h.fake.Count("DELETE /carts/cart-"+orderID))
			require.Equal(t, emailsBefore, h.fake.Count("POST /notifications/email"))
		default:
			t.Fatalf("unexpected final status %s", final)
		}
	}
}

func lastCall(t *testing.T, h *harness, route string) collaboratortest.Call {
	t.Helper()
	var found *collaboratortest.Call
	for _, c := range h.fake.Calls() {
		if c.Method+" "+c.Path == route {
			c := c
			found = &c
		}
	}
	require.NotNil(t, found, route)
	return *found
}
