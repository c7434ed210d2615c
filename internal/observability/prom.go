package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec

	// Domain
	LeaveTransitions *prometheus.CounterVec
	CascadeDeletes   *prometheus.CounterVec
	StatsCache       *prometheus.CounterVec
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hrhub",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "hrhub",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "hrhub",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		DbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "hrhub",
				Subsystem: "db",
				Name:      "query_duration_seconds",
				Help:      "DB operation latency (logical op, not raw SQL)",
				Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.35, 0.5, 1, 2, 5},
			},
			[]string{"op", "status"},
		),
		DbErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hrhub",
				Subsystem: "db",
				Name:      "errors_total",
				Help:      "DB errors by logical op and class.",
			},
			[]string{"op", "class"},
		),
		LeaveTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hrhub",
				Subsystem: "leaves",
				Name:      "transitions_total",
				Help:      "Leave request transitions by target state.",
			},
			[]string{"to"}, // pending|approved|rejected|cancelled
		),
		CascadeDeletes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hrhub",
				Subsystem: "users",
				Name:      "cascade_deleted_total",
				Help:      "Records removed by user deletion cascades.",
			},
			[]string{"kind"}, // user|leave|project|membership
		),
		StatsCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hrhub",
				Subsystem: "stats_cache",
				Name:      "lookups_total",
				Help:      "Stats cache lookups by result.",
			},
			[]string{"key", "result"}, // result=hit|miss|error
		),
	}
	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.DbQueryDuration, p.DbErrorsTotal,
		p.LeaveTransitions, p.CascadeDeletes, p.StatsCache,
	)

	return p
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing; best effort:
		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}

// IncLeaveTransition and the helpers below tolerate a nil *Prom so callers can skip metrics in tests.
func (p *Prom) IncLeaveTransition(to string) {
	if p == nil {
		return
	}
	p.LeaveTransitions.WithLabelValues(to).Inc()
}

func (p *Prom) AddCascadeDeletes(kind string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.CascadeDeletes.WithLabelValues(kind).Add(float64(n))
}

func (p *Prom) IncStatsCache(key, result string) {
	if p == nil {
		return
	}
	p.StatsCache.WithLabelValues(key, result).Inc()
}
