package reconciliation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/checkout/internal/app/service/notification_log"
	"github.com/fatflowers/checkout/internal/app/service/payment_record"
	"github.com/fatflowers/checkout/internal/app/service/side_effect"
	"github.com/fatflowers/checkout/internal/models"
	"github.com/fatflowers/checkout/internal/platform/lock"
	"github.com/fatflowers/checkout/internal/platform/payhere"
	"github.com/fatflowers/checkout/pkg/logctx"
	"github.com/fatflowers/checkout/pkg/metrics"
	"github.com/fatflowers/checkout/pkg/types"
)

const (
	lockKeyPrefix = "payhere:notify:"
	// orderSyncLease bounds how long a crashed delivery blocks the order sync.
	orderSyncLease = time.Minute
)

type Result struct {
	PaymentID     string              `json:"paymentId"`
	PaymentStatus types.PaymentStatus `json:"paymentStatus"`
}

// Service applies verified gateway notifications to payment records and
// propagates committed transitions to the order, cart and notification services.
type Service struct {
	verifier   *Verifier
	store      *payment_record.Store
	dispatcher *side_effect.Dispatcher
	locker     lock.Locker
	audit      *notification_log.Service
	metrics    *metrics.PaymentMetrics
	log        *zap.SugaredLogger
}

func NewService(
	verifier *Verifier,
	store *payment_record.Store,
	dispatcher *side_effect.Dispatcher,
	locker lock.Locker,
	audit *notification_log.Service,
	m *metrics.PaymentMetrics,
	log *zap.SugaredLogger,
) *Service {
	return &Service{
		verifier:   verifier,
		store:      store,
		dispatcher: dispatcher,
		locker:     locker,
		audit:      audit,
		metrics:    m,
		log:        log,
	}
}

// HandleNotification processes one delivery. Redeliveries of an applied
// notification succeed without repeating side effects.
func (s *Service) HandleNotification(ctx context.Context, n *payhere.Notification) (res *Result, err error) {
	if n == nil {
		return nil, fmt.Errorf("%w: empty notification", ErrInvalidSignature)
	}
	data, _ := json.Marshal(n)
	entry := func(status models.PaymentNotificationLogStatus) *models.PaymentNotificationLog {
		return &models.PaymentNotificationLog{
			Gateway:              string(types.PaymentGatewayPayHere),
			TraceID:              logctx.TraceID(ctx),
			AttemptID:            n.OrderID,
			GatewayTransactionID: n.PaymentID,
			StatusCode:           n.StatusCode,
			NotificationTime:     time.Now(),
			Data:                 datatypes.JSON(data),
			Status:               status,
		}
	}
	s.audit.Save(ctx, entry(models.PaymentNotificationLogStatusReceived))
	defer func() {
		status := models.PaymentNotificationLogStatusHandled
		switch {
		case errors.Is(err, ErrInvalidSignature):
			status = models.PaymentNotificationLogStatusRejected
		case err != nil:
			status = models.PaymentNotificationLogStatusHandleFailed
		}
		outcome := map[string]any{"result": res}
		if err != nil {
			outcome["error"] = err.Error()
		}
		raw, _ := json.Marshal(outcome)
		final := entry(status)
		final.Result = func() *datatypes.JSON { j := datatypes.JSON(raw); return &j }()
		s.audit.Save(ctx, final)
	}()

	log := logctx.FromCtx(ctx, s.log).With("attempt_id", n.OrderID, "status_code", n.StatusCode)

	if err := s.verifier.Verify(n); err != nil {
		s.metrics.NotificationOutcome("rejected", "")
		log.Warnw("payhere_notification_rejected", "err", err)
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, lockKeyPrefix+n.OrderID)
	switch {
	case errors.Is(err, lock.ErrHeld):
		s.metrics.NotificationOutcome("in_progress", "")
		return nil, fmt.Errorf("%w: %s", ErrNotificationInProgress, n.OrderID)
	case err != nil:
		// proceed unlocked; the status update and the order sync claim are conditional writes
		log.Warnw("notification_lock_unavailable", "err", err)
	default:
		defer func() {
			if rerr := release(context.WithoutCancel(ctx)); rerr != nil {
				log.Warnw("notification_lock_release_failed", "err", rerr)
			}
		}()
	}

	return s.reconcile(ctx, log, n)
}

func (s *Service) lookup(ctx context.Context, attemptID string) (*models.Payment, error) {
	p, err := s.store.FindByAttemptID(ctx, attemptID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, payment_record.ErrNotFound) {
		return nil, err
	}
	p, err = s.store.FindByOrderID(ctx, payhere.OrderIDFromAttempt(attemptID))
	if errors.Is(err, payment_record.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPayment, attemptID)
	}
	return p, err
}

func (s *Service) reconcile(ctx context.Context, log *zap.SugaredLogger, n *payhere.Notification) (*Result, error) {
	record, err := s.lookup(ctx, n.OrderID)
	if err != nil {
		s.metrics.NotificationOutcome(lookupOutcome(err), "")
		log.Warnw("payhere_notification_lookup_failed", "err", err)
		return nil, err
	}

	target := payhere.StatusFromCode(n.StatusCode)
	p, applied, err := s.store.UpdateStatus(ctx, record.AttemptID, target, payment_record.GatewayFields{
		TransactionID: n.PaymentID,
		StatusCode:    n.StatusCode,
		StatusMessage: n.StatusMessage,
	})
	if err != nil {
		s.metrics.NotificationOutcome("failed", string(target))
		log.Errorw("payment_status_update_failed", "payment_id", record.ID, "err", err)
		return nil, err
	}
	res := &Result{PaymentID: p.ID, PaymentStatus: p.PaymentStatus}

	if !applied && p.PaymentStatus != target {
		s.metrics.NotificationOutcome("superseded", string(p.PaymentStatus))
		log.Infow("payhere_notification_superseded", "payment_id", p.ID, "requested", target, "current", p.PaymentStatus)
		return res, nil
	}

	view, ok := types.OrderViewFor(p.PaymentStatus)
	if !ok || p.OrderSyncedAt != nil {
		s.metrics.NotificationOutcome(outcomeLabel(applied), string(p.PaymentStatus))
		log.Infow("payhere_notification_handled", "payment_id", p.ID, "payment_status", p.PaymentStatus, "applied", applied)
		return res, nil
	}

	claimed, err := s.store.ClaimOrderSync(ctx, p.AttemptID, orderSyncLease)
	if err != nil {
		s.metrics.NotificationOutcome("failed", string(p.PaymentStatus))
		log.Errorw("order_sync_claim_failed", "payment_id", p.ID, "err", err)
		return nil, err
	}
	if !claimed {
		return s.afterLostClaim(ctx, log, p)
	}

	if err := s.dispatcher.UpdateOrder(ctx, p.OrderID, view); err != nil {
		s.metrics.NotificationOutcome("failed", string(p.PaymentStatus))
		log.Errorw("order_update_failed", "payment_id", p.ID, "order_id", p.OrderID, "err", err)
		if rerr := s.store.ReleaseOrderSyncClaim(context.WithoutCancel(ctx), p.AttemptID); rerr != nil {
			log.Warnw("order_sync_claim_release_failed", "payment_id", p.ID, "err", rerr)
		}
		return nil, fmt.Errorf("%w: %v", ErrReconciliation, err)
	}
	won, err := s.store.MarkOrderSynced(ctx, p.AttemptID)
	if err != nil {
		s.metrics.NotificationOutcome("failed", string(p.PaymentStatus))
		log.Errorw("order_sync_mark_failed", "payment_id", p.ID, "err", err)
		if rerr := s.store.ReleaseOrderSyncClaim(context.WithoutCancel(ctx), p.AttemptID); rerr != nil {
			log.Warnw("order_sync_claim_release_failed", "payment_id", p.ID, "err", rerr)
		}
		return nil, fmt.Errorf("%w: %v", ErrReconciliation, err)
	}
	if won && p.PaymentStatus == types.PaymentStatusCompleted {
		s.dispatcher.RunBestEffort(ctx, s.dispatcher.ClearCart(p), s.dispatcher.PaymentConfirmation(p))
	}

	s.metrics.NotificationOutcome(outcomeLabel(applied), string(p.PaymentStatus))
	log.Infow("payhere_notification_handled", "payment_id", p.ID, "payment_status", p.PaymentStatus, "applied", applied, "order_synced", won)
	return res, nil
}

// afterLostClaim answers a delivery that found another one syncing the order.
// A finished sync is a replay; an unfinished one is still in flight.
func (s *Service) afterLostClaim(ctx context.Context, log *zap.SugaredLogger, p *models.Payment) (*Result, error) {
	current, err := s.store.FindByAttemptID(ctx, p.AttemptID)
	if err != nil {
		s.metrics.NotificationOutcome("failed", string(p.PaymentStatus))
		return nil, err
	}
	if current.OrderSyncedAt != nil {
		s.metrics.NotificationOutcome("replayed", string(current.PaymentStatus))
		log.Infow("payhere_notification_handled", "payment_id", current.ID, "payment_status", current.PaymentStatus, "applied", false)
		return &Result{PaymentID: current.ID, PaymentStatus: current.PaymentStatus}, nil
	}
	s.metrics.NotificationOutcome("in_progress", string(current.PaymentStatus))
	log.Infow("order_sync_in_progress", "payment_id", current.ID)
	return nil, fmt.Errorf("%w: %s", ErrNotificationInProgress, p.AttemptID)
}

func outcomeLabel(applied bool) string {
	if applied {
		return "applied"
	}
	return "replayed"
}

func lookupOutcome(err error) string {
	if errors.Is(err, ErrUnknownPayment) {
		return "unknown"
	}
	return "failed"
}
