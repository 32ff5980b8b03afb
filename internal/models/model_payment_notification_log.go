package models

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentNotificationLogStatus string

const (
	PaymentNotificationLogStatusReceived     PaymentNotificationLogStatus = "received"
	PaymentNotificationLogStatusHandled      PaymentNotificationLogStatus = "handled"
	PaymentNotificationLogStatusHandleFailed PaymentNotificationLogStatus = "handle_failed"
	// PaymentNotificationLogStatusRejected marks callbacks that failed signature verification.
	PaymentNotificationLogStatusRejected PaymentNotificationLogStatus = "rejected"
)

// PaymentNotificationLog is the audit trail of gateway callbacks.
type PaymentNotificationLog struct {
	ID                   string                       `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Gateway              string                       `gorm:"column:gateway;type:varchar(64);not null" json:"gateway"`
	TraceID              string                       `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	AttemptID            string                       `gorm:"column:attempt_id;type:varchar(160);index" json:"attempt_id"`
	GatewayTransactionID string                       `gorm:"column:gateway_transaction_id;type:varchar(128)" json:"gateway_transaction_id"`
	StatusCode           string                       `gorm:"column:status_code;type:varchar(16)" json:"status_code"`
	NotificationTime     time.Time                    `gorm:"column:notification_time" json:"notification_time"`
	Data                 datatypes.JSON               `gorm:"column:data;type:jsonb" json:"data"`
	Result               *datatypes.JSON              `gorm:"column:result;type:jsonb" json:"result"`
	Status               PaymentNotificationLogStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	CreatedAt            time.Time                    `json:"created_at"`
	UpdatedAt            time.Time                    `json:"updated_at"`
}

func (PaymentNotificationLog) TableName() string { return "payment_notification_log" }
