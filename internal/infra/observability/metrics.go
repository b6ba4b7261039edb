package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the bot.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	scheduleDuration *prometheus.HistogramVec
	schedulesTotal   *prometheus.CounterVec
	broadcastsTotal  *prometheus.CounterVec
	screenshotsTotal prometheus.Counter
	quotaReports     prometheus.Counter
	externalErrors   *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	updatesTotal     *prometheus.CounterVec
}

// StatsSnapshot is a point-in-time view of the counters, shown to the
// admin on request.
type StatsSnapshot struct {
	SchedulesComputed float64
	ScheduleErrors    float64
	BroadcastsSent    float64
	BroadcastsBlocked float64
	Screenshots       float64
	QuotaReports      float64
	CacheHitRate      float64
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		scheduleDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "branchbot_schedule_duration_seconds",
				Help:    "Duration of schedule computations by kind.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		schedulesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "branchbot_schedules_total",
				Help: "Total amortization schedules computed.",
			},
			[]string{"status"},
		),
		broadcastsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "branchbot_broadcast_messages_total",
				Help: "Total broadcast deliveries by outcome.",
			},
			[]string{"outcome"},
		),
		screenshotsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "branchbot_screenshots_total",
				Help: "Total advertising screenshots counted in the group.",
			},
		),
		quotaReports: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "branchbot_quota_reports_total",
				Help: "Total quota reports posted.",
			},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "branchbot_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "branchbot_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "branchbot_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		updatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "branchbot_updates_total",
				Help: "Total Telegram updates processed.",
			},
			[]string{"kind"},
		),
	}
}

// RecordScheduleDuration records the duration of one engine invocation.
func (m *Metrics) RecordScheduleDuration(kind string, d time.Duration) {
	m.scheduleDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// IncrSchedule increments the schedule counter with a status label.
func (m *Metrics) IncrSchedule(status string) {
	m.schedulesTotal.WithLabelValues(status).Inc()
}

// IncrBroadcast increments the broadcast delivery counter.
func (m *Metrics) IncrBroadcast(outcome string) {
	m.broadcastsTotal.WithLabelValues(outcome).Inc()
}

// IncrScreenshot increments the screenshot counter.
func (m *Metrics) IncrScreenshot() {
	m.screenshotsTotal.Inc()
}

// IncrQuotaReport increments the quota report counter.
func (m *Metrics) IncrQuotaReport() {
	m.quotaReports.Inc()
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrUpdate increments the processed-update counter.
func (m *Metrics) IncrUpdate(kind string) {
	m.updatesTotal.WithLabelValues(kind).Inc()
}

// Snapshot gathers current counter values for the admin stats command.
// Prometheus counters expose cumulative values.
func (m *Metrics) Snapshot() StatsSnapshot {
	hits := getCounterValue(m.cacheHits, "rates")
	misses := getCounterValue(m.cacheMisses, "rates")
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return StatsSnapshot{
		SchedulesComputed: getCounterValue(m.schedulesTotal, "success"),
		ScheduleErrors:    getCounterValue(m.schedulesTotal, "error"),
		BroadcastsSent:    getCounterValue(m.broadcastsTotal, "sent"),
		BroadcastsBlocked: getCounterValue(m.broadcastsTotal, "blocked"),
		Screenshots:       readCounter(m.screenshotsTotal),
		QuotaReports:      readCounter(m.quotaReports),
		CacheHitRate:      hitRate,
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

func readCounter(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
