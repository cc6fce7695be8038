package adapthttp

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts gateway traffic. A nil *Metrics records nothing.
type Metrics struct {
	requests     *prometheus.CounterVec
	authFailures prometheus.Counter
}

// NewMetrics creates the gateway collectors and registers them on reg when
// reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fieldsync",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Requests sent through the gateway by method and response code.",
		}, []string{"method", "code"}),
		authFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fieldsync",
			Subsystem: "gateway",
			Name:      "auth_failures_total",
			Help:      "Responses that ended the session with 401.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.authFailures)
	}
	return m
}

func (m *Metrics) observe(method, code string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, code).Inc()
}

func (m *Metrics) authFailure() {
	if m == nil {
		return
	}
	m.authFailures.Inc()
}
