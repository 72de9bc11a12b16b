package metrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric prometheus.Collector
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
		{"StoreOperationsTotal", StoreOperationsTotal},
		{"ImagesTotal", ImagesTotal},
		{"VocabularySize", VocabularySize},
		{"FilterEvaluationsTotal", FilterEvaluationsTotal},
		{"SaveQueueDepth", SaveQueueDepth},
		{"SavesTotal", SavesTotal},
		{"LoadDuration", LoadDuration},
		{"DBQueryTotal", DBQueryTotal},
		{"FilesystemRetryAttempts", FilesystemRetryAttempts},
		{"AppInfo", AppInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestInitializeMetricsExportsLabels(t *testing.T) {
	InitializeMetrics()

	if n := testutil.CollectAndCount(StoreOperationsTotal); n < 12 {
		t.Errorf("StoreOperationsTotal series = %d, want at least 12", n)
	}
	if n := testutil.CollectAndCount(SavesTotal); n < 4 {
		t.Errorf("SavesTotal series = %d, want at least 4", n)
	}
}

func TestMetricNamesArePrefixed(t *testing.T) {
	InitializeMetrics()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	found := 0
	for _, mf := range families {
		name := mf.GetName()
		if strings.HasPrefix(name, "go_") || strings.HasPrefix(name, "process_") || strings.HasPrefix(name, "promhttp_") {
			continue
		}
		found++
		if !strings.HasPrefix(name, "image_tagger_") {
			t.Errorf("metric %q is missing the image_tagger_ prefix", name)
		}
	}
	if found == 0 {
		t.Error("no application metrics gathered")
	}
}

func TestFilesystemObserver(t *testing.T) {
	obs := NewFilesystemObserver()

	before := testutil.ToFloat64(FilesystemOperationErrors.WithLabelValues("write"))
	obs.ObserveOperation("write", 0.01, errors.New("disk full"))
	obs.ObserveOperation("write", 0.01, nil)
	if got := testutil.ToFloat64(FilesystemOperationErrors.WithLabelValues("write")); got != before+1 {
		t.Errorf("write errors = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(FilesystemRetryAttempts.WithLabelValues("read"))
	obs.ObserveRetryAttempt("read")
	if got := testutil.ToFloat64(FilesystemRetryAttempts.WithLabelValues("read")); got != before+1 {
		t.Errorf("retry attempts = %v, want %v", got, before+1)
	}

	obs.ObserveRetrySuccess("read")
	obs.ObserveRetryFailure("read")
	obs.ObserveStaleError("read")
}
