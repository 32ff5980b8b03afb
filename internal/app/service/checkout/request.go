package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/fatflowers/checkout/internal/platform/payhere"
	"github.com/fatflowers/checkout/pkg/types"
)

var (
	ErrInvalidRequest = errors.New("invalid checkout request")
	ErrStorage        = errors.New("payment storage failure")
)

// maxTotalAmount is the largest value the numeric(12,2) amount column holds.
var maxTotalAmount = decimal.RequireFromString("9999999999.99")

type Item struct {
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

type CardDetails struct {
	CardNumber     string `json:"cardNumber"`
	CardHolderName string `json:"cardHolderName"`
}

// Request is one checkout attempt. Token is the caller's bearer token and is
// never persisted.
type Request struct {
	UserID        string              `json:"userId"`
	CartID        string              `json:"cartId"`
	OrderID       string              `json:"orderId"`
	RestaurantID  string              `json:"restaurantId"`
	Items         []Item              `json:"items"`
	TotalAmount   decimal.Decimal     `json:"totalAmount"`
	PaymentMethod types.PaymentMethod `json:"paymentMethod"`
	CardDetails   *CardDetails        `json:"cardDetails"`
	ReturnURL     string              `json:"returnUrl"`
	CancelURL     string              `json:"cancelUrl"`
	NotifyURL     string              `json:"notifyUrl"`
	Token         string              `json:"-"`
}

type Result struct {
	PaymentID          string                   `json:"paymentId"`
	GatewayRedirectURL string                   `json:"gatewayRedirectUrl"`
	Payload            *payhere.CheckoutPayload `json:"payload"`
	Hash               string                   `json:"hash"`
	PaymentStatus      types.PaymentStatus      `json:"paymentStatus"`
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// Validate checks the request shape. It does not touch collaborators.
func (r *Request) Validate() error {
	if r == nil {
		return invalid("empty request")
	}
	required := []struct{ name, value string }{
		{"userId", r.UserID},
		{"cartId", r.CartID},
		{"orderId", r.OrderID},
		{"restaurantId", r.RestaurantID},
	}
	missing := lo.FilterMap(required, func(f struct{ name, value string }, _ int) (string, bool) {
		return f.name, strings.TrimSpace(f.value) == ""
	})
	if len(missing) > 0 {
		return invalid("missing required fields: %s", strings.Join(missing, ", "))
	}
	if strings.TrimSpace(r.Token) == "" {
		return invalid("missing bearer token")
	}
	if r.Items == nil {
		return invalid("missing items")
	}
	if !r.TotalAmount.IsPositive() {
		return invalid("totalAmount must be greater than zero")
	}
	if payhere.RoundAmount(r.TotalAmount).GreaterThan(maxTotalAmount) {
		return invalid("totalAmount must not exceed %s", maxTotalAmount.StringFixed(2))
	}
	if !r.PaymentMethod.Supported() {
		return invalid("unsupported paymentMethod %q", r.PaymentMethod)
	}
	if r.CardDetails == nil || strings.TrimSpace(r.CardDetails.CardHolderName) == "" {
		return invalid("invalid card details")
	}
	if _, err := cardDigits(r.CardDetails.CardNumber); err != nil {
		return err
	}
	return nil
}

// cardDigits strips spaces and dashes and requires at least four ASCII digits.
func cardDigits(number string) (string, error) {
	var b strings.Builder
	for _, r := range number {
		switch {
		case r == ' ' || r == '-':
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			return "", invalid("card number must contain digits only")
		}
	}
	if b.Len() < 4 {
		return "", invalid("card number must have at least four digits")
	}
	return b.String(), nil
}

// itemsSummary is the single line shown on the gateway page.
func itemsSummary(items []Item) string {
	names := lo.FilterMap(items, func(it Item, _ int) (string, bool) {
		n := strings.TrimSpace(it.Name)
		return n, n != ""
	})
	if len(names) == 0 {
		return "Order Items"
	}
	return strings.Join(names, ", ")
}
