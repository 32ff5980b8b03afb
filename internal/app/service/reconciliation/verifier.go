package reconciliation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatflowers/checkout/internal/platform/payhere"
	"github.com/fatflowers/checkout/pkg/config"
)

var (
	ErrInvalidSignature       = errors.New("invalid notification signature")
	ErrUnknownPayment         = errors.New("no payment matches notification")
	ErrReconciliation         = errors.New("order reconciliation failed")
	ErrNotificationInProgress = errors.New("notification for this attempt is already being processed")
)

// Verifier authenticates gateway callbacks with the merchant secret.
type Verifier struct {
	merchantID string
	secret     string
}

func NewVerifier(cfg *config.Config) *Verifier {
	return &Verifier{merchantID: cfg.PayHere.MerchantID, secret: cfg.PayHere.MerchantSecret}
}

// Verify checks md5sig and that the callback was meant for this merchant.
func (v *Verifier) Verify(n *payhere.Notification) error {
	if v.merchantID == "" || v.secret == "" {
		return payhere.ErrMisconfigured
	}
	if n == nil || strings.TrimSpace(n.OrderID) == "" {
		return fmt.Errorf("%w: missing order_id", ErrInvalidSignature)
	}
	if n.MerchantID != v.merchantID {
		return fmt.Errorf("%w: merchant %q", ErrInvalidSignature, n.MerchantID)
	}
	expected := payhere.NotificationSignature(v.merchantID, n.OrderID, n.PaymentID, n.StatusCode, v.secret)
	if !payhere.VerifySignature(expected, n.MD5Sig) {
		return fmt.Errorf("%w: attempt %s", ErrInvalidSignature, n.OrderID)
	}
	return nil
}
