package handlers

import (
	"github.com/fatflowers/checkout/internal/app/service/checkout"
	"github.com/fatflowers/checkout/internal/app/service/reconciliation"
	"github.com/fatflowers/checkout/internal/app/service/statistics"
	"github.com/fatflowers/checkout/internal/models"
)

// RespError is the envelope returned for failed requests.
type RespError struct {
	Success bool        `json:"success" example:"false"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// RespHealth wraps the health status map.
type RespHealth struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    map[string]string `json:"data"`
}

// RespProcessPayment wraps checkout.Result in the standard envelope.
type RespProcessPayment struct {
	Success bool            `json:"success" example:"true"`
	Message string          `json:"message" example:"Payment initiated"`
	Data    checkout.Result `json:"data"`
}

// RespNotify wraps reconciliation.Result in the standard envelope.
type RespNotify struct {
	Success bool                  `json:"success" example:"true"`
	Message string                `json:"message" example:"Notification processed"`
	Data    reconciliation.Result `json:"data"`
}

// RespPayment wraps a stored payment record.
type RespPayment struct {
	Success bool           `json:"success" example:"true"`
	Message string         `json:"message"`
	Data    models.Payment `json:"data"`
}

// RespListPayments wraps ListPaymentsResponse in the standard envelope.
type RespListPayments struct {
	Success bool                 `json:"success" example:"true"`
	Message string               `json:"message"`
	Data    ListPaymentsResponse `json:"data"`
}

// RespNotificationLogs wraps the audit trail of one attempt.
type RespNotificationLogs struct {
	Success bool                            `json:"success" example:"true"`
	Message string                          `json:"message"`
	Data    []models.PaymentNotificationLog `json:"data"`
}

type RespPaymentStatistics struct {
	Success bool                `json:"success" example:"true"`
	Message string              `json:"message"`
	Data    statistics.Response `json:"data"`
}
