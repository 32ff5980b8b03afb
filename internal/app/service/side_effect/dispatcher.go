package side_effect

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/checkout/internal/models"
	"github.com/fatflowers/checkout/internal/platform/collaborator"
	"github.com/fatflowers/checkout/pkg/config"
	"github.com/fatflowers/checkout/pkg/logctx"
	"github.com/fatflowers/checkout/pkg/metrics"
	"github.com/fatflowers/checkout/pkg/types"
)

const (
	EffectClearCart           = "clear_cart"
	EffectPaymentConfirmation = "payment_confirmation_email"
)

// Effect is a best-effort action emitted by reconciliation. Run must be
// safe to skip; its failure never changes the payment outcome.
type Effect struct {
	Name string
	Run  func(ctx context.Context) error
}

// Dispatcher talks to the order, cart and notification services.
type Dispatcher struct {
	client  *collaborator.Client
	cfg     *config.Config
	metrics *metrics.PaymentMetrics
	log     *zap.SugaredLogger
	timeout time.Duration
}

func NewDispatcher(client *collaborator.Client, cfg *config.Config, m *metrics.PaymentMetrics, log *zap.SugaredLogger) *Dispatcher {
	timeout := cfg.Collaborators.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{client: client, cfg: cfg, metrics: m, log: log, timeout: timeout}
}

// UpdateOrder pushes the order projection. Its error is fatal for the
// notification so the gateway redelivers.
func (d *Dispatcher) UpdateOrder(ctx context.Context, orderID string, view types.OrderView) error {
	if err := d.client.UpdateOrder(ctx, orderID, view); err != nil {
		return fmt.Errorf("failed to update order %s: %w", orderID, err)
	}
	logctx.FromCtx(ctx, d.log).Infow("order_status_updated",
		"order_id", orderID, "status", view.Status, "payment_status", view.PaymentStatus)
	return nil
}

func (d *Dispatcher) ClearCart(p *models.Payment) Effect {
	return Effect{
		Name: EffectClearCart,
		Run: func(ctx context.Context) error {
			return d.client.DeleteCart(ctx, p.CartID)
		},
	}
}

func (d *Dispatcher) PaymentConfirmation(p *models.Payment) Effect {
	return Effect{
		Name: EffectPaymentConfirmation,
		Run: func(ctx context.Context) error {
			email := d.resolveEmail(ctx, p)
			return d.client.SendEmail(ctx, collaborator.EmailRequest{
				Email:          email,
				Subject:        "Payment Confirmation - Order #" + p.OrderID,
				PaymentDetails: confirmationDetails(p),
			})
		},
	}
}

type paymentDetails struct {
	OrderID       string               `json:"orderId"`
	PaymentID     string               `json:"paymentId"`
	TotalAmount   string               `json:"totalAmount"`
	Currency      string               `json:"currency"`
	PaymentMethod types.PaymentMethod  `json:"paymentMethod"`
	TransactionID string               `json:"transactionId,omitempty"`
	Items         []models.PaymentItem `json:"items"`
}

func confirmationDetails(p *models.Payment) paymentDetails {
	d := paymentDetails{
		OrderID:       p.OrderID,
		PaymentID:     p.ID,
		TotalAmount:   p.TotalAmount.StringFixed(2),
		Currency:      p.Currency,
		PaymentMethod: p.PaymentMethod,
		Items:         p.Items.Data(),
	}
	if p.GatewayTransactionID != nil {
		d.TransactionID = *p.GatewayTransactionID
	}
	return d
}

// RunBestEffort executes effects in order, each under its own timeout and
// detached from the caller's cancellation. Failures are logged and counted.
func (d *Dispatcher) RunBestEffort(ctx context.Context, effects ...Effect) {
	log := logctx.FromCtx(ctx, d.log)
	base := context.WithoutCancel(ctx)
	for _, e := range effects {
		if e.Run == nil {
			continue
		}
		runCtx, cancel := context.WithTimeout(base, d.timeout)
		err := e.Run(runCtx)
		cancel()
		if err != nil {
			d.metrics.SideEffectFailed(e.Name)
			log.Errorw("side_effect_failed", "effect", e.Name, "err", err)
			continue
		}
		log.Infow("side_effect_done", "effect", e.Name)
	}
}

var Module = fx.Options(
	fx.Provide(NewDispatcher),
)
