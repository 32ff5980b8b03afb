package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/fatflowers/checkout/internal/app/service/payment_record"
	"github.com/fatflowers/checkout/internal/models"
	"github.com/fatflowers/checkout/internal/platform/collaborator"
	"github.com/fatflowers/checkout/internal/platform/payhere"
	"github.com/fatflowers/checkout/pkg/config"
	"github.com/fatflowers/checkout/pkg/logctx"
	"github.com/fatflowers/checkout/pkg/metrics"
	"github.com/fatflowers/checkout/pkg/tool"
	"github.com/fatflowers/checkout/pkg/types"
)

// maxAttemptIDRetries bounds regeneration when an attempt id collides with a
// record written by another replica.
const maxAttemptIDRetries = 3

type Service struct {
	store   *payment_record.Store
	users   *collaborator.Client
	cfg     *config.Config
	clock   *attemptClock
	metrics *metrics.PaymentMetrics
	log     *zap.SugaredLogger
}

func NewService(store *payment_record.Store, users *collaborator.Client, cfg *config.Config, m *metrics.PaymentMetrics, log *zap.SugaredLogger) *Service {
	return &Service{
		store:   store,
		users:   users,
		cfg:     cfg,
		clock:   newAttemptClock(time.Now),
		metrics: m,
		log:     log,
	}
}

// Process validates the request, persists a PENDING payment and returns the
// signed payload the browser posts to the gateway.
func (s *Service) Process(ctx context.Context, req *Request) (*Result, error) {
	log := logctx.FromCtx(ctx, s.log)

	if err := req.Validate(); err != nil {
		s.metrics.CheckoutOutcome("invalid")
		return nil, err
	}
	ph := s.cfg.PayHere
	if !ph.HasCredentials() {
		s.metrics.CheckoutOutcome("misconfigured")
		log.Errorw("payhere_credentials_missing")
		return nil, payhere.ErrMisconfigured
	}

	amount := payhere.RoundAmount(req.TotalAmount)
	if !amount.IsPositive() {
		s.metrics.CheckoutOutcome("invalid")
		return nil, fmt.Errorf("%w: totalAmount rounds to zero", ErrInvalidRequest)
	}
	formatted, err := payhere.FormatAmount(amount)
	if err != nil {
		s.metrics.CheckoutOutcome("invalid")
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	digits, err := cardDigits(req.CardDetails.CardNumber)
	if err != nil {
		s.metrics.CheckoutOutcome("invalid")
		return nil, err
	}
	last4 := digits[len(digits)-4:]

	cust := s.resolveCustomer(ctx, req)
	currency := lo.Ternary(ph.Currency != "", ph.Currency, "LKR")

	record := &models.Payment{
		OrderID:       req.OrderID,
		CartID:        req.CartID,
		RestaurantID:  req.RestaurantID,
		UserID:        req.UserID,
		TotalAmount:   amount,
		Currency:      currency,
		PaymentMethod: req.PaymentMethod,
		CustomerEmail: lo.Ternary(cust.RealEmail, cust.Email, ""),
		PaymentStatus: types.PaymentStatusPending,
		Items: datatypes.NewJSONType(lo.Map(req.Items, func(it Item, _ int) models.PaymentItem {
			return models.PaymentItem{MenuItemID: it.MenuItemID, Name: it.Name, Quantity: it.Quantity, Price: it.Price}
		})),
		MaskedCard: datatypes.NewJSONType(&models.MaskedCard{
			Last4:        last4,
			MaskedNumber: strings.Repeat("*", 12) + last4,
			HolderName:   strings.TrimSpace(req.CardDetails.CardHolderName),
		}),
	}

	for attempt := 0; ; attempt++ {
		record.ID = tool.GenerateUUIDV7()
		record.AttemptID = payhere.AttemptID(req.OrderID, s.clock.Next())
		err = s.store.Create(ctx, record)
		if err == nil {
			break
		}
		if errors.Is(err, payment_record.ErrConflict) && attempt+1 < maxAttemptIDRetries {
			log.Warnw("payment_attempt_id_conflict", "attempt_id", record.AttemptID)
			continue
		}
		s.metrics.CheckoutOutcome("storage_error")
		log.Errorw("payment_create_failed", "order_id", req.OrderID, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	hash := payhere.ComputeHash(ph.MerchantID, record.AttemptID, formatted, currency, ph.MerchantSecret)
	payload := &payhere.CheckoutPayload{
		MerchantID: ph.MerchantID,
		ReturnURL:  lo.Ternary(req.ReturnURL != "", req.ReturnURL, s.cfg.Server.URL("/payments/return")),
		CancelURL:  lo.Ternary(req.CancelURL != "", req.CancelURL, s.cfg.Server.URL("/payments/cancel")),
		NotifyURL:  lo.Ternary(req.NotifyURL != "", req.NotifyURL, s.cfg.Server.URL("/payments/notify")),
		OrderID:    record.AttemptID,
		Items:      itemsSummary(req.Items),
		Currency:   currency,
		Amount:     formatted,
		FirstName:  cust.FirstName,
		LastName:   cust.LastName,
		Email:      cust.Email,
		Phone:      cust.Phone,
		Address:    cust.Street,
		City:       cust.City,
		Country:    cust.Country,
		Custom1:    req.UserID,
		Custom2:    req.CartID,
		Hash:       hash,
	}

	s.metrics.CheckoutOutcome("created")
	log.Infow("payment_checkout_created",
		"payment_id", record.ID,
		"order_id", record.OrderID,
		"attempt_id", record.AttemptID,
		"amount", formatted,
		"currency", currency,
	)
	return &Result{
		PaymentID:          record.ID,
		GatewayRedirectURL: ph.CheckoutURL,
		Payload:            payload,
		Hash:               hash,
		PaymentStatus:      record.PaymentStatus,
	}, nil
}
