package types

type PaymentGateway string

const (
	PaymentGatewayPayHere PaymentGateway = "payhere"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// IsTerminal reports whether no further notification may change the financial outcome.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed || s == PaymentStatusRefunded
}

type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "CARD"
)

var supportedPaymentMethods = map[PaymentMethod]struct{}{
	PaymentMethodCard: {},
}

func (m PaymentMethod) Supported() bool {
	_, ok := supportedPaymentMethods[m]
	return ok
}

// OrderStatus is the order service's view of an order.
type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type OrderPaymentStatus string

const (
	OrderPaymentStatusPaid     OrderPaymentStatus = "PAID"
	OrderPaymentStatusFailed   OrderPaymentStatus = "FAILED"
	OrderPaymentStatusRefunded OrderPaymentStatus = "REFUNDED"
)

// OrderView is the order-side projection of a payment transition.
type OrderView struct {
	Status        OrderStatus        `json:"status"`
	PaymentStatus OrderPaymentStatus `json:"paymentStatus"`
}

// OrderViewFor returns the order projection for a payment status. ok is false
// when the status does not change the order (PENDING and unknown values).
func OrderViewFor(status PaymentStatus) (view OrderView, ok bool) {
	switch status {
	case PaymentStatusCompleted:
		return OrderView{Status: OrderStatusConfirmed, PaymentStatus: OrderPaymentStatusPaid}, true
	case PaymentStatusFailed:
		return OrderView{Status: OrderStatusCancelled, PaymentStatus: OrderPaymentStatusFailed}, true
	case PaymentStatusRefunded:
		return OrderView{Status: OrderStatusCancelled, PaymentStatus: OrderPaymentStatusRefunded}, true
	default:
		return OrderView{}, false
	}
}
