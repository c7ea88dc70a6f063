package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PaymentChargeTotal counts gateway charge outcomes by method.
	PaymentChargeTotal *prometheus.CounterVec
	// CheckoutTransitionTotal counts checkout state machine transitions.
	CheckoutTransitionTotal *prometheus.CounterVec
	// CartMutationTotal counts cart aggregate mutations by operation.
	CartMutationTotal *prometheus.CounterVec
	// StaleGatewayResponseTotal counts gateway responses discarded because the
	// order was no longer the active attempt.
	StaleGatewayResponseTotal prometheus.Counter
	// PixChargesExpiredTotal counts PIX charges resolved to expired by the worker.
	PixChargesExpiredTotal prometheus.Counter
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PaymentChargeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_charge_total",
			Help:      "Count of payment gateway operations by method and result.",
		}, []string{"method", "result"})
		CheckoutTransitionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_transition_total",
			Help:      "Count of checkout state machine transitions.",
		}, []string{"from", "to"})
		CartMutationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutation_total",
			Help:      "Count of cart mutations by operation.",
		}, []string{"op"})
		StaleGatewayResponseTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_gateway_response_total",
			Help:      "Count of discarded stale gateway responses.",
		})
		PixChargesExpiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pix_charges_expired_total",
			Help:      "Count of PIX charges marked expired by the worker.",
		})
		reg.MustRegister(
			PaymentChargeTotal,
			CheckoutTransitionTotal,
			CartMutationTotal,
			StaleGatewayResponseTotal,
			PixChargesExpiredTotal,
		)
	})
}
