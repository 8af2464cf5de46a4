package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	LeadsCaptured = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_captured_total",
			Help: "Total number of leads stored",
		},
		[]string{"source"}, // contact, partner, investor, project
	)

	WaitlistSignups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waitlist_signups_total",
			Help: "Total number of waitlist submissions",
		},
		[]string{"stored"}, // true, false
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of lead notifications attempted",
		},
		[]string{"channel", "status"}, // channel: email, sms; status: success, failed
	)

	ProjectUpserts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "project_upserts_total",
			Help: "Total number of project saves",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordLead(source string) {
	LeadsCaptured.WithLabelValues(source).Inc()
}

func RecordWaitlist(stored bool) {
	if stored {
		WaitlistSignups.WithLabelValues("true").Inc()
		return
	}
	WaitlistSignups.WithLabelValues("false").Inc()
}

func RecordNotification(channel string, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	NotificationsSent.WithLabelValues(channel, status).Inc()
}
