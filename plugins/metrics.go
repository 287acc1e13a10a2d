package plugins

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hanpama/gqlclient/client"
)

const (
	labelType      = "type"
	labelOperation = "operation"
)

// Metrics counts requests, responses and GraphQL errors per operation.
type Metrics struct {
	requests  *prometheus.CounterVec
	responses *prometheus.CounterVec
	errors    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. Calling
// it twice with the same registry reuses the collectors. A nil reg leaves
// them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gqlclient_requests_total",
			Help: "Number of operations handed to the backend.",
		}, []string{labelType, labelOperation}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gqlclient_responses_total",
			Help: "Number of responses received from the backend.",
		}, []string{labelType, labelOperation}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gqlclient_response_errors_total",
			Help: "Number of GraphQL errors in received responses.",
		}, []string{labelType, labelOperation}),
	}
	if reg != nil {
		m.requests = mustRegisterOrGet(reg, m.requests).(*prometheus.CounterVec)
		m.responses = mustRegisterOrGet(reg, m.responses).(*prometheus.CounterVec)
		m.errors = mustRegisterOrGet(reg, m.errors).(*prometheus.CounterVec)
	}
	return m
}

func mustRegisterOrGet(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

func labels(req *client.Request) prometheus.Labels {
	if req == nil {
		return prometheus.Labels{labelType: "", labelOperation: ""}
	}
	return prometheus.Labels{labelType: req.OperationType.String(), labelOperation: req.OperationName}
}

func (m *Metrics) Pre(_ context.Context, req *client.Request) (*client.Request, error) {
	m.requests.With(labels(req)).Inc()
	return req, nil
}

func (m *Metrics) Post(_ context.Context, resp *client.Response) (*client.Response, error) {
	l := labels(resp.Request)
	m.responses.With(l).Inc()
	if n := len(resp.Errors); n > 0 {
		m.errors.With(l).Add(float64(n))
	}
	return resp, nil
}
