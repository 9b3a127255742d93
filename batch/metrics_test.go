package batch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsObserve(t *testing.T) {
	m := NewMetrics()
	for _, r := range scenarioResults() {
		m.TaskFinished(0, r)
	}

	if got := testutil.ToFloat64(m.conversions.WithLabelValues("success", "encode")); got != 1 {
		t.Errorf("Expected 1 encoded success, got %v", got)
	}
	if got := testutil.ToFloat64(m.conversions.WithLabelValues("success", "copy")); got != 1 {
		t.Errorf("Expected 1 copied success, got %v", got)
	}
	if got := testutil.ToFloat64(m.conversions.WithLabelValues("failure", "encode")); got != 1 {
		t.Errorf("Expected 1 failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.outputBytes); got != 2058 {
		t.Errorf("Expected 2058 output bytes, got %v", got)
	}
}

func TestMetricsWriteTextfile(t *testing.T) {
	m := NewMetrics()
	for _, r := range scenarioResults() {
		m.Observe(r)
	}
	m.Finish(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "webpconv.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	for _, want := range []string{
		"webpconv_conversions_total",
		"webpconv_conversion_duration_seconds_bucket",
		"webpconv_last_run_timestamp_seconds 1.7e+09",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("textfile missing %q:\n%s", want, content)
		}
	}
}
