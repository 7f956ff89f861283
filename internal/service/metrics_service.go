package service

import (
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsSnapshot is a lightweight view of the collected metrics.
type MetricsSnapshot struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	LessonsRecorded          uint64    `json:"lessonsRecorded"`
	Ratings                  uint64    `json:"ratings"`
	Promotions               uint64    `json:"promotions"`
	PolicyRejections         uint64    `json:"policyRejections"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	lessons         *prometheus.CounterVec
	ratings         prometheus.Counter
	promotions      *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	reminders       *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	lessonCount          uint64
	ratingCount          uint64
	promotionCount       uint64
	rejectionCount       uint64
}

// NewMetricsService registers core and progression collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	lessons := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "progression_lessons_recorded_total",
		Help: "Lesson visits recorded, split by new entry or repeat visit",
	}, []string{"kind"})

	ratings := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "progression_ratings_total",
		Help: "Lessons rated by mentors",
	})

	promotions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "progression_promotions_total",
		Help: "Grade changes, split by concession",
	}, []string{"concession"})

	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "progression_policy_rejections_total",
		Help: "Operations rejected by a progression policy",
	}, []string{"operation"})

	reminders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "progression_debt_reminders_total",
		Help: "Mentor debt reminders by outcome",
	}, []string{"outcome"})

	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scheduled_job_duration_seconds",
		Help:    "Duration of scheduled jobs",
		Buckets: prometheus.DefBuckets,
	}, []string{"job", "status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		lessons, ratings, promotions, rejections, reminders, jobDuration, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		lessons:         lessons,
		ratings:         ratings,
		promotions:      promotions,
		rejections:      rejections,
		reminders:       reminders,
		jobDuration:     jobDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the underlying registry for tests and additional collectors.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	if total := hits + misses; total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// LessonRecorded counts a visit; appended is false for repeat visits.
func (m *MetricsService) LessonRecorded(appended bool) {
	if m == nil {
		return
	}
	kind := "repeat"
	if appended {
		kind = "new"
	}
	m.lessons.WithLabelValues(kind).Inc()
	atomic.AddUint64(&m.lessonCount, 1)
}

// LessonRated counts a confirmed rating.
func (m *MetricsService) LessonRated() {
	if m == nil {
		return
	}
	m.ratings.Inc()
	atomic.AddUint64(&m.ratingCount, 1)
}

// Promoted counts a grade change.
func (m *MetricsService) Promoted(withConcession bool) {
	if m == nil {
		return
	}
	m.promotions.WithLabelValues(strconv.FormatBool(withConcession)).Inc()
	atomic.AddUint64(&m.promotionCount, 1)
}

// PolicyRejected counts an operation refused by a progression rule.
func (m *MetricsService) PolicyRejected(operation string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(operation).Inc()
	atomic.AddUint64(&m.rejectionCount, 1)
}

// ReminderOutcome counts a debt reminder as sent, failed or discarded.
func (m *MetricsService) ReminderOutcome(outcome string) {
	if m == nil {
		return
	}
	m.reminders.WithLabelValues(outcome).Inc()
}

// ObserveJob records a scheduled job run.
func (m *MetricsService) ObserveJob(name string, duration time.Duration, failed bool) {
	if m == nil {
		return
	}
	status := "ok"
	if failed {
		status = "error"
	}
	m.jobDuration.WithLabelValues(name, status).Observe(duration.Seconds())
}

// Snapshot returns aggregated metrics.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if total := hits + misses; total > 0 {
		cacheRatio = float64(hits) / float64(total)
	}
	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		LessonsRecorded:          atomic.LoadUint64(&m.lessonCount),
		Ratings:                  atomic.LoadUint64(&m.ratingCount),
		Promotions:               atomic.LoadUint64(&m.promotionCount),
		PolicyRejections:         atomic.LoadUint64(&m.rejectionCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
