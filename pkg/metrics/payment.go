package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

const paymentSubsystem = "payment"

var checkoutTotal = &Metric{
	ID:          "checkoutTotal",
	Name:        "checkout_total",
	Description: "Checkout requests partitioned by outcome.",
	Type:        "counter_vec",
	Args:        []string{"outcome"},
}

var notificationTotal = &Metric{
	ID:          "notificationTotal",
	Name:        "notification_total",
	Description: "Gateway notifications partitioned by outcome and resulting payment status.",
	Type:        "counter_vec",
	Args:        []string{"outcome", "status"},
}

var sideEffectFailures = &Metric{
	ID:          "sideEffectFailures",
	Name:        "side_effect_failures_total",
	Description: "Best-effort side effects that failed, partitioned by effect name.",
	Type:        "counter_vec",
	Args:        []string{"effect"},
}

// PaymentMetrics holds the business collectors of the payment flow. All
// methods are safe on a nil receiver so callers never need to check.
type PaymentMetrics struct {
	checkouts     *prometheus.CounterVec
	notifications *prometheus.CounterVec
	sideEffects   *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

func register(reg prometheus.Registerer, c prometheus.Collector) (prometheus.Collector, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector, nil
		}
		return nil, err
	}
	return c, nil
}

// NewPaymentMetrics registers the payment collectors on reg. Collectors that
// are already registered are reused.
func NewPaymentMetrics(reg prometheus.Registerer) (*PaymentMetrics, error) {
	defs := []*Metric{checkoutTotal, notificationTotal, sideEffectFailures, MetricsBusinessProcess}
	collectors := make([]prometheus.Collector, 0, len(defs))
	for _, def := range defs {
		c, err := register(reg, NewMetric(def, paymentSubsystem))
		if err != nil {
			return nil, err
		}
		collectors = append(collectors, c)
	}
	return &PaymentMetrics{
		checkouts:     collectors[0].(*prometheus.CounterVec),
		notifications: collectors[1].(*prometheus.CounterVec),
		sideEffects:   collectors[2].(*prometheus.CounterVec),
		latency:       collectors[3].(*prometheus.HistogramVec),
	}, nil
}

func (m *PaymentMetrics) CheckoutOutcome(outcome string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(outcome).Inc()
}

func (m *PaymentMetrics) NotificationOutcome(outcome, status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(outcome, status).Inc()
}

func (m *PaymentMetrics) SideEffectFailed(effect string) {
	if m == nil {
		return
	}
	m.sideEffects.WithLabelValues(effect).Inc()
}

// ObserveSince records the latency of a collaborator call on bp_dur.
func (m *PaymentMetrics) ObserveSince(kind, subtype string, start time.Time) {
	if m == nil {
		return
	}
	m.latency.WithLabelValues(kind, subtype).Observe(MillisecondsSince(start))
}

var Module = fx.Options(
	fx.Provide(func() (*PaymentMetrics, error) {
		return NewPaymentMetrics(prometheus.DefaultRegisterer)
	}),
)
