// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	AssistantReplies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_replies_total",
			Help: "Replies produced by the responder, by route and matched intent",
		},
		[]string{"route", "intent"},
	)

	AssistantSentiment = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_sentiment_total",
			Help: "Sentiment labels assigned on the fallback path",
		},
		[]string{"sentiment"},
	)

	AssistantWeatherLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_weather_lookups_total",
			Help: "Weather replies by city; empty city means a clarification was asked",
		},
		[]string{"city"},
	)
)

// ObserveReply records one responder result.
func ObserveReply(route, intent, sentiment, city string) {
	AssistantReplies.WithLabelValues(route, intent).Inc()
	switch route {
	case "fallback":
		AssistantSentiment.WithLabelValues(sentiment).Inc()
	case "weather":
		AssistantWeatherLookups.WithLabelValues(city).Inc()
	}
}
