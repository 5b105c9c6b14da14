// Package metrics holds the Prometheus collectors for stock movements,
// order transitions and transfer requests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fulfillment"

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder groups the collectors. A nil *Recorder records nothing, so use
// cases can be built without metrics in tests.
type Recorder struct {
	movements   *prometheus.CounterVec
	transitions *prometheus.CounterVec
	transfers   *prometheus.CounterVec
	published   *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_total",
			Help:      "Stock movements appended to the ledger, by reason.",
		}, []string{"reason"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Order status transition attempts, by target status and outcome.",
		}, []string{"to", "outcome"}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_requests_total",
			Help:      "Transfer request operations, by kind, stage and outcome.",
		}, []string{"kind", "stage", "outcome"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Outbox messages handed to the broker, by topic and outcome.",
		}, []string{"topic", "outcome"}),
	}
	reg.MustRegister(r.movements, r.transitions, r.transfers, r.published)
	return r
}

func (r *Recorder) Movement(reason string) {
	if r == nil {
		return
	}
	r.movements.WithLabelValues(reason).Inc()
}

// Movements counts n committed movements of one reason.
func (r *Recorder) Movements(reason string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.movements.WithLabelValues(reason).Add(float64(n))
}

func (r *Recorder) Transition(to string, err error) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(to, outcome(err)).Inc()
}

func (r *Recorder) Transfer(kind, stage string, err error) {
	if r == nil {
		return
	}
	r.transfers.WithLabelValues(kind, stage, outcome(err)).Inc()
}

func (r *Recorder) Published(topic string, err error) {
	if r == nil {
		return
	}
	r.published.WithLabelValues(topic, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
