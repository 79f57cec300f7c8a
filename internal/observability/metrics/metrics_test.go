package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestChatMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewChatMetrics(reg)

	m.ObserveChat("book_appointment", "ok")
	m.ObserveChat("book_appointment", "ok")
	m.ObserveUpload("image", "rejected")
	m.ObserveLLMLatency("generate_reply", 0.42)

	if got := testutil.ToFloat64(m.chatTotal.WithLabelValues("book_appointment", "ok")); got != 2 {
		t.Errorf("expected 2 chat observations, got %f", got)
	}
	if got := testutil.ToFloat64(m.uploadTotal.WithLabelValues("image", "rejected")); got != 1 {
		t.Errorf("expected 1 upload observation, got %f", got)
	}
}

func TestChatMetrics_NilSafe(t *testing.T) {
	var m *ChatMetrics
	m.ObserveChat("x", "y")
	m.ObserveUpload("x", "y")
	m.ObserveLLMLatency("x", 1)
}
