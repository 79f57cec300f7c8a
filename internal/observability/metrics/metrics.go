package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for chat and upload flows.
type ChatMetrics struct {
	chatTotal   *prometheus.CounterVec
	uploadTotal *prometheus.CounterVec
	llmLatency  *prometheus.HistogramVec
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		chatTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dentalcare",
			Subsystem: "chatbot",
			Name:      "chat_requests_total",
			Help:      "Total chat requests by classified intent",
		}, []string{"intent", "status"}),
		uploadTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dentalcare",
			Subsystem: "chatbot",
			Name:      "uploads_total",
			Help:      "Total file uploads by kind",
		}, []string{"kind", "status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dentalcare",
			Subsystem: "chatbot",
			Name:      "llm_request_seconds",
			Help:      "Latency of generation backend calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.chatTotal, m.uploadTotal, m.llmLatency)
	return m
}

func (m *ChatMetrics) ObserveChat(intent, status string) {
	if m == nil {
		return
	}
	m.chatTotal.WithLabelValues(intent, status).Inc()
}

func (m *ChatMetrics) ObserveUpload(kind, status string) {
	if m == nil {
		return
	}
	m.uploadTotal.WithLabelValues(kind, status).Inc()
}

func (m *ChatMetrics) ObserveLLMLatency(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(operation).Observe(seconds)
}
