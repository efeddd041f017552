package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Provider records engine metrics
type Provider interface {
	IncJobRuns(job, status string)
	ObserveJobDuration(job string, duration time.Duration)
	IncNotificationsSent(tier, channel string, count int)
	IncNotificationFailures(tier, channel string)
	AddRowsPruned(class string, count int)
	AddMediaPruned(count int)
}

// PromProvider is the Prometheus-backed metrics implementation
type PromProvider struct {
	jobRuns              *prometheus.CounterVec
	jobDuration          *prometheus.HistogramVec
	notificationsSent    *prometheus.CounterVec
	notificationFailures *prometheus.CounterVec
	rowsPruned           *prometheus.CounterVec
	mediaPruned          prometheus.Counter
}

// NewProvider creates the Prometheus metrics provider. Pass enabled=false to
// get a no-op implementation (tests, local runs without a scraper).
func NewProvider(enabled bool) Provider {
	if !enabled {
		return &noopProvider{}
	}

	return &PromProvider{
		jobRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_job_runs_total",
			Help: "Total number of job invocations by outcome",
		}, []string{"job", "status"}),

		jobDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "engine_job_duration_seconds",
			Help:    "Job invocation duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),

		notificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_notifications_sent_total",
			Help: "Total number of notifications handed to a delivery gateway",
		}, []string{"tier", "channel"}),

		notificationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_notification_failures_total",
			Help: "Total number of failed gateway delivery attempts",
		}, []string{"tier", "channel"}),

		rowsPruned: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_rows_pruned_total",
			Help: "Total number of check-in log rows removed by retention",
		}, []string{"class"}),

		mediaPruned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "engine_media_pruned_total",
			Help: "Total number of media objects removed by retention",
		}),
	}
}

func (p *PromProvider) IncJobRuns(job, status string) {
	p.jobRuns.WithLabelValues(job, status).Inc()
}

func (p *PromProvider) ObserveJobDuration(job string, duration time.Duration) {
	p.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
}

func (p *PromProvider) IncNotificationsSent(tier, channel string, count int) {
	p.notificationsSent.WithLabelValues(tier, channel).Add(float64(count))
}

func (p *PromProvider) IncNotificationFailures(tier, channel string) {
	p.notificationFailures.WithLabelValues(tier, channel).Inc()
}

func (p *PromProvider) AddRowsPruned(class string, count int) {
	p.rowsPruned.WithLabelValues(class).Add(float64(count))
}

func (p *PromProvider) AddMediaPruned(count int) {
	p.mediaPruned.Add(float64(count))
}

// noopProvider is a no-op implementation for when metrics are disabled.
type noopProvider struct{}

func (noopProvider) IncJobRuns(_, _ string)                       {}
func (noopProvider) ObserveJobDuration(_ string, _ time.Duration) {}
func (noopProvider) IncNotificationsSent(_, _ string, _ int)      {}
func (noopProvider) IncNotificationFailures(_, _ string)          {}
func (noopProvider) AddRowsPruned(_ string, _ int)                {}
func (noopProvider) AddMediaPruned(_ int)                         {}
