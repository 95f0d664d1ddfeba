package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recognition and encoder Prometheus metrics.
var (
	RecognitionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "attendex",
			Name:      "recognition_requests_total",
			Help:      "Total number of recognition requests",
		},
		[]string{"action", "status"},
	)

	RecognitionAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "attendex",
			Name:      "recognition_attempts",
			Help:      "Frames consumed per recognition request",
			Buckets:   []float64{1, 2, 3, 5, 8, 10, 15},
		},
	)

	MatchDistance = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "attendex",
			Name:      "match_distance",
			Help:      "Euclidean distance of accepted matches",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.8, 1},
		},
	)

	EncoderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "attendex",
			Name:      "encoder_requests_total",
			Help:      "Total number of encoder sidecar requests",
		},
		[]string{"provider", "status"},
	)

	EncoderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "attendex",
			Name:      "encoder_request_duration_seconds",
			Help:      "Encoder sidecar request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	AbsenceMarkedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "attendex",
			Name:      "absence_marked_total",
			Help:      "Absent records created by the sweep",
		},
	)
)

var recMetricsRegistered bool

// RegisterRecognitionMetrics registers Prometheus recognition metrics.
// Must be called once from main.
func RegisterRecognitionMetrics() {
	if recMetricsRegistered {
		return
	}
	prometheus.MustRegister(RecognitionRequestsTotal)
	prometheus.MustRegister(RecognitionAttempts)
	prometheus.MustRegister(MatchDistance)
	prometheus.MustRegister(EncoderRequestsTotal)
	prometheus.MustRegister(EncoderRequestDuration)
	prometheus.MustRegister(AbsenceMarkedTotal)
	recMetricsRegistered = true
}
