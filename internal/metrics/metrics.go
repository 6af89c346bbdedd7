package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal   *prometheus.CounterVec
	sessionRefreshTotal *prometheus.CounterVec
	votesCastTotal      prometheus.Counter
	registerOnce        sync.Once
)

// Register initializes Prometheus metrics on the default registry.
func Register() {
	registerOnce.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pollboard",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed.",
		}, []string{"method", "path", "status"})

		sessionRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pollboard",
			Name:      "session_refreshes_total",
			Help:      "Session refresh attempts by the gate, by outcome.",
		}, []string{"outcome"})

		votesCastTotal = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "pollboard",
			Name:      "votes_cast_total",
			Help:      "Ballots accepted.",
		})
	})
}

// IncRequest increments the http_requests_total counter with the given labels.
func IncRequest(method, path string, status int) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// IncSessionRefresh records a gate outcome: refreshed, rejected or unavailable.
func IncSessionRefresh(outcome string) {
	if sessionRefreshTotal == nil {
		return
	}
	sessionRefreshTotal.WithLabelValues(outcome).Inc()
}

func IncVote() {
	if votesCastTotal == nil {
		return
	}
	votesCastTotal.Inc()
}
