package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/fatflowers/checkout/internal/app/service/notification_log"
	"github.com/fatflowers/checkout/internal/app/service/payment_record"
	"github.com/fatflowers/checkout/internal/app/service/statistics"
	models "github.com/fatflowers/checkout/internal/models"
	"github.com/fatflowers/checkout/pkg/response"
	"github.com/fatflowers/checkout/pkg/types"
)

type ListPaymentsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type PaymentItem struct {
	ID                   string              `json:"id"`
	OrderID              string              `json:"order_id"`
	AttemptID            string              `json:"attempt_id"`
	UserID               string              `json:"user_id"`
	RestaurantID         string              `json:"restaurant_id"`
	TotalAmount          decimal.Decimal     `json:"total_amount"`
	Currency             string              `json:"currency"`
	PaymentMethod        types.PaymentMethod `json:"payment_method"`
	PaymentStatus        types.PaymentStatus `json:"payment_status"`
	CardLast4            string              `json:"card_last4,omitempty"`
	GatewayTransactionID string              `json:"gateway_transaction_id,omitempty"`
	GatewayStatusCode    string              `json:"gateway_status_code,omitempty"`
	OrderSynced          bool                `json:"order_synced"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

func toPaymentItem(m *models.Payment) *PaymentItem {
	item := &PaymentItem{
		ID:                   m.ID,
		OrderID:              m.OrderID,
		AttemptID:            m.AttemptID,
		UserID:               m.UserID,
		RestaurantID:         m.RestaurantID,
		TotalAmount:          m.TotalAmount,
		Currency:             m.Currency,
		PaymentMethod:        m.PaymentMethod,
		PaymentStatus:        m.PaymentStatus,
		GatewayTransactionID: lo.FromPtr(m.GatewayTransactionID),
		GatewayStatusCode:    lo.FromPtr(m.GatewayStatusCode),
		OrderSynced:          m.OrderSyncedAt != nil,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
	if card := m.GetMaskedCard(); card != nil {
		item.CardLast4 = card.Last4
	}
	return item
}

type ListPaymentsResponse struct {
	Items []*PaymentItem `json:"items"`
	Total int64          `json:"total"`
}

// @Summary      List Payments (Admin)
// @Description  Retrieves a paginated and filterable list of payment attempts.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ListPaymentsRequest true "List payments request with filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespListPayments
// @Router       /api/v1/admin/payments/list [post]
func ApiListPayments(store *payment_record.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListPaymentsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](err.Error(), nil))
			return
		}
		res, err := store.Scan(c.Request.Context(), &payment_record.ScanRequest{
			Filters:   req.Filters,
			From:      req.From,
			Size:      req.Size,
			SortBy:    req.SortBy,
			SortOrder: req.SortOrder,
		})
		if errors.Is(err, payment_record.ErrInvalidFilter) {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](err.Error(), nil))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](err.Error(), nil))
			return
		}
		items := lo.Map(res.Items, func(it *models.Payment, _ int) *PaymentItem { return toPaymentItem(it) })
		c.JSON(http.StatusOK, response.OKT(&ListPaymentsResponse{Items: items, Total: res.Total}))
	}
}

// @Summary      List Notification Logs (Admin)
// @Description  Returns the gateway callback audit trail of one payment attempt.
// @Tags         Admin
// @Produce      json
// @Param        attemptId path string true "Attempt ID (gateway order_id)"
// @Success      200  {object}  handlers.RespNotificationLogs
// @Router       /api/v1/admin/payments/{attemptId}/notifications [get]
func ApiListNotificationLogs(svc *notification_log.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := svc.ListByAttemptID(c.Request.Context(), c.Param("attemptId"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](err.Error(), nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(rows))
	}
}

// @Summary      Payment Statistics (Admin)
// @Description  Aggregates payments per day, status and currency. Filters use the same fields as the list endpoint.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.Request true "Data items and filters"
// @Success      200  {object}  handlers.RespPaymentStatistics
// @Failure      400  {object}  handlers.RespError
// @Router       /api/v1/admin/payments/statistics [post]
func ApiPaymentStatistics(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](err.Error(), nil))
			return
		}
		res, err := svc.Get(c.Request.Context(), &req)
		if errors.Is(err, statistics.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](err.Error(), nil))
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](err.Error(), nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminPaymentRoutes(r gin.IRouter, store *payment_record.Store, logs *notification_log.Service, stats *statistics.Service) {
	r.POST("/payments/list", ApiListPayments(store))
	r.POST("/payments/statistics", ApiPaymentStatistics(stats))
	r.GET("/payments/:attemptId/notifications", ApiListNotificationLogs(logs))
}
