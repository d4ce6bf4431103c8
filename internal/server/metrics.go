package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	guesses       *prometheus.CounterVec
	roundsStarted prometheus.Counter
	roundsEnded   *prometheus.CounterVec
	roomsCreated  prometheus.Counter
	roomsFinished prometheus.Counter
	throttled     prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quiz",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		guesses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Name:      "guesses_total",
			Help:      "Accepted guesses by correctness.",
		}, []string{"correct"}),
		roundsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "quiz",
			Name:      "rounds_started_total",
			Help:      "Rounds started.",
		}),
		roundsEnded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Name:      "rounds_ended_total",
			Help:      "Rounds ended by outcome.",
		}, []string{"outcome"}),
		roomsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "quiz",
			Name:      "rooms_created_total",
			Help:      "Rooms created.",
		}),
		roomsFinished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "quiz",
			Name:      "rooms_finished_total",
			Help:      "Rooms that reached their target score.",
		}),
		throttled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "quiz",
			Name:      "http_throttled_total",
			Help:      "Write requests rejected by the per-client rate limit.",
		}),
	}
}
