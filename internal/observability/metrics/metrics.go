package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

var defaultHistogramBucketsSeconds = []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

// Collectors are created eagerly so recording is safe before Init; Init only
// registers them and starts the scrape endpoint.
var (
	once          sync.Once
	metricsRouter *chi.Mux

	depositCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staking_deposits_total",
			Help: "The total number of processed deposit notifications by outcome.",
		},
		[]string{"outcome"},
	)

	withdrawalInitiatedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staking_withdrawals_initiated_total",
			Help: "The total number of withdrawal initiations by outcome.",
		},
		[]string{"outcome"},
	)

	settlementCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staking_settlements_total",
			Help: "The total number of finalized settlements by result (commit or rollback).",
		},
		[]string{"result"},
	)

	queueConsumeErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "settlement_queue_consume_error_count",
			Help: "The total number of errors while consuming settlement messages",
		},
	)

	tokenClientLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "token_client_latency_seconds",
			Help:    "Histogram of token ledger client durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "db_latency_seconds",
			Help: "DB latency in seconds splitted by method and execution status",
		},
		[]string{"method", "status"},
	)
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	// Create a custom server with timeout settings
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	// Start the server in a separate goroutine
	go func() {
		log.Info().Msgf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

func registerMetrics() {
	prometheus.MustRegister(
		depositCounter,
		withdrawalInitiatedCounter,
		settlementCounter,
		queueConsumeErrorCounter,
		tokenClientLatency,
		dbLatency,
	)
}

func RecordDeposit(accepted bool) {
	outcome := Success
	if !accepted {
		outcome = Error
	}
	depositCounter.WithLabelValues(outcome.String()).Inc()
}

func RecordWithdrawalInitiated(started bool) {
	outcome := Success
	if !started {
		outcome = Error
	}
	withdrawalInitiatedCounter.WithLabelValues(outcome.String()).Inc()
}

func RecordSettlement(committed bool) {
	result := "commit"
	if !committed {
		result = "rollback"
	}
	settlementCounter.WithLabelValues(result).Inc()
}

func RecordQueueConsumeError() {
	queueConsumeErrorCounter.Inc()
}

func RecordTokenClientLatency(d time.Duration, method string, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	tokenClientLatency.WithLabelValues(method, status.String()).Observe(d.Seconds())
}

func RecordDbLatency(d time.Duration, method string, failure bool) {
	status := Success
	if failure {
		status = Error
	}

	dbLatency.WithLabelValues(method, status.String()).Observe(d.Seconds())
}
