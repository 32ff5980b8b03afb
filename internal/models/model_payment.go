package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/fatflowers/checkout/pkg/types"
)

// PaymentItem is a line item snapshot taken at checkout.
type PaymentItem struct {
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

// MaskedCard is the only card data ever persisted.
type MaskedCard struct {
	Last4        string `json:"last4"`
	MaskedNumber string `json:"maskedNumber"`
	HolderName   string `json:"holderName"`
}

// Payment is one checkout attempt. Status and gateway fields are the only
// attributes mutated after creation.
type Payment struct {
	ID            string              `gorm:"column:id;type:uuid;primary_key" json:"paymentId"`
	OrderID       string              `gorm:"column:order_id;type:varchar(128);not null;index:idx_order_id_created_at,priority:1" json:"orderId"`
	AttemptID     string              `gorm:"column:attempt_id;type:varchar(160);not null;uniqueIndex" json:"attemptId"`
	CartID        string              `gorm:"column:cart_id;type:varchar(128);not null" json:"cartId"`
	RestaurantID  string              `gorm:"column:restaurant_id;type:varchar(128);not null" json:"restaurantId"`
	UserID        string              `gorm:"column:user_id;type:varchar(128);not null;index" json:"userId"`
	TotalAmount   decimal.Decimal     `gorm:"column:total_amount;type:numeric(12,2);not null" json:"totalAmount"`
	Currency      string              `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	PaymentMethod types.PaymentMethod `gorm:"column:payment_method;type:varchar(32);not null" json:"paymentMethod"`
	// CustomerEmail is the address known at checkout; empty when only the placeholder was available.
	CustomerEmail string              `gorm:"column:customer_email;type:varchar(255)" json:"customerEmail,omitempty"`
	PaymentStatus types.PaymentStatus `gorm:"column:payment_status;type:varchar(32);not null;index" json:"paymentStatus"`

	GatewayTransactionID *string `gorm:"column:gateway_transaction_id;type:varchar(128);default:null" json:"gatewayTransactionId,omitempty"`
	GatewayStatusCode    *string `gorm:"column:gateway_status_code;type:varchar(16);default:null" json:"gatewayStatusCode,omitempty"`
	GatewayStatusMessage *string `gorm:"column:gateway_status_message;type:varchar(255);default:null" json:"gatewayStatusMessage,omitempty"`
	// OrderSyncedAt is set once the order service accepted the committed terminal status.
	OrderSyncedAt *time.Time `gorm:"column:order_synced_at;default:null" json:"orderSyncedAt,omitempty"`
	// OrderSyncClaimedAt is the lease held by the delivery currently calling the order service.
	OrderSyncClaimedAt *time.Time `gorm:"column:order_sync_claimed_at;default:null" json:"-"`

	Items      datatypes.JSONType[[]PaymentItem] `gorm:"column:items;type:jsonb;not null" json:"items"`
	MaskedCard datatypes.JSONType[*MaskedCard]   `gorm:"column:masked_card;type:jsonb" json:"maskedCard"`

	CreatedAt time.Time `gorm:"index:idx_order_id_created_at,priority:2,sort:desc" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Payment) TableName() string {
	return "payment"
}

func (p *Payment) GetMaskedCard() *MaskedCard {
	if p == nil {
		return nil
	}
	return p.MaskedCard.Data()
}
