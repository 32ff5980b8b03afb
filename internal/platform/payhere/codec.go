package payhere

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fatflowers/checkout/pkg/types"
)

// ErrMisconfigured is returned when merchant credentials are missing. It needs
// an operator fix and is never retryable.
var ErrMisconfigured = errors.New("payhere merchant configuration missing")

// FormatAmount renders a non-negative amount with exactly two fraction digits,
// rounding half away from zero.
func FormatAmount(value decimal.Decimal) (string, error) {
	if value.IsNegative() {
		return "", fmt.Errorf("amount must not be negative: %s", value.String())
	}
	return value.StringFixed(2), nil
}

// RoundAmount returns the value that FormatAmount renders, so the stored
// amount and the hashed string never diverge.
func RoundAmount(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}

func digest(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// ComputeHash builds the checkout integrity hash:
// UPPER(MD5(merchantID + orderID + amount + currency + UPPER(MD5(secret)))).
func ComputeHash(merchantID, orderID, amount, currency, secret string) string {
	return digest(merchantID + orderID + amount + currency + digest(secret))
}

// NotificationSignature is the md5sig expected on a notify callback.
func NotificationSignature(merchantID, attemptID, gatewayTransactionID, statusCode, secret string) string {
	return digest(merchantID + attemptID + gatewayTransactionID + statusCode + digest(secret))
}

// VerifySignature compares the supplied signature against the expected one in
// constant time. Hex case in the supplied value is ignored.
func VerifySignature(expected, supplied string) bool {
	if supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToUpper(supplied))) == 1
}

// AttemptID makes the gateway-facing order id for one checkout attempt.
func AttemptID(orderID string, millis int64) string {
	return orderID + "-" + strconv.FormatInt(millis, 10)
}

// OrderIDFromAttempt strips the "-<millis>" suffix added by AttemptID. Only
// the last dash is considered, so order ids containing dashes survive.
func OrderIDFromAttempt(attemptID string) string {
	idx := strings.LastIndex(attemptID, "-")
	if idx <= 0 || idx == len(attemptID)-1 {
		return attemptID
	}
	if _, err := strconv.ParseUint(attemptID[idx+1:], 10, 64); err != nil {
		return attemptID
	}
	return attemptID[:idx]
}

// StatusFromCode maps a gateway status code onto the payment state machine.
// Unknown or malformed codes are treated as interim.
func StatusFromCode(code string) types.PaymentStatus {
	switch strings.TrimSpace(code) {
	case "2":
		return types.PaymentStatusCompleted
	case "-1", "-2":
		return types.PaymentStatusFailed
	case "-3":
		return types.PaymentStatusRefunded
	default:
		return types.PaymentStatusPending
	}
}
