package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UpdatesReceived = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jung_updates_total",
		Help: "Webhook updates received, by outcome (counted, ignored, failed).",
	}, []string{"outcome"})
	InvalidEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jung_invalid_events_total",
		Help: "Group messages rejected by the ranking cache.",
	})

	JobsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jung_jobs_published_total",
		Help: "Jobs published to the queue, by action.",
	}, []string{"action"})
	JobsExecuted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jung_jobs_executed_total",
		Help: "Jobs executed, by action and result.",
	}, []string{"action", "result"})
	CooldownRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "jung_cooldown_rejected_total",
		Help: "Report commands refused because the chat is cooling down.",
	})

	CacheGroups = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jung_cache_groups",
		Help: "Groups held by the ranking cache.",
	})
	CacheUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jung_cache_users",
		Help: "Users held by the ranking cache.",
	})
	CacheTimestamps = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "jung_cache_timestamps",
		Help: "Message timestamps held by the ranking cache.",
	})
	MaintenanceDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "jung_maintenance_duration_seconds",
		Help:    "Time spent sorting and truncating the ranking cache.",
		Buckets: prometheus.DefBuckets,
	})

	ArchiveUploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "jung_archive_uploads_total",
		Help: "Ranking snapshots uploaded to object storage, by result.",
	}, []string{"result"})
)

var once sync.Once

func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			UpdatesReceived, InvalidEvents,
			JobsPublished, JobsExecuted, CooldownRejected,
			CacheGroups, CacheUsers, CacheTimestamps, MaintenanceDuration,
			ArchiveUploads,
		)
	})
}

// Handler returns an http.Handler for Prometheus scraping
func Handler() http.Handler {
	return promhttp.Handler()
}
