package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvclean/internal/metrics"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	require.NotNil(t, m.GetCounter())
	return m.GetCounter().GetValue()
}

func summaryCountSum(t *testing.T, v *prometheus.SummaryVec, labels ...string) (uint64, float64) {
	t.Helper()
	metric, ok := v.WithLabelValues(labels...).(prometheus.Metric)
	require.True(t, ok)
	m := &dto.Metric{}
	require.NoError(t, metric.Write(m))
	require.NotNil(t, m.GetSummary())
	return m.GetSummary().GetSampleCount(), m.GetSummary().GetSampleSum()
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		job     string
		url     string
		wantErr bool
		wantJob string
	}{
		{name: "missing gateway URL", job: "customer", wantErr: true},
		{name: "default job", url: "http://pushgateway:9091", wantJob: "csvclean"},
		{name: "explicit job", job: "pricing", url: "http://pushgateway:9091", wantJob: "pricing"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, err := NewBackend(tt.job, tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantJob, b.jobName)
			assert.NotNil(t, b.reg)
		})
	}
}

func TestIncCounter(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("customer", "http://example.com")
	require.NoError(t, err)

	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "read", "status": "success"})
	b.IncCounter(metrics.StepTotal, 2, metrics.Labels{"step": "read", "status": "success"})
	b.IncCounter(metrics.RowsTotal, 40, metrics.Labels{"kind": "written"})
	b.IncCounter(metrics.ColumnsTotal, 3, nil)
	b.IncCounter("unknown_metric", 99, nil)

	assert.Equal(t, 3.0, counterValue(t, b.stepCounter.WithLabelValues("read", "success")))
	assert.Equal(t, 40.0, counterValue(t, b.rowCounter.WithLabelValues("written")))
	assert.Equal(t, 3.0, counterValue(t, b.droppedCounter))
}

func TestZeroBackendIgnoresCalls(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	assert.NotPanics(t, func() {
		b.IncCounter(metrics.StepTotal, 1, nil)
		b.IncCounter(metrics.RowsTotal, 1, nil)
		b.IncCounter(metrics.ColumnsTotal, 1, nil)
		b.ObserveHistogram(metrics.StepDuration, 1, nil)
	})
}

func TestObserveHistogram(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("customer", "http://example.com")
	require.NoError(t, err)

	b.ObserveHistogram(metrics.StepDuration, 0.25, metrics.Labels{"step": "write", "status": "success"})
	b.ObserveHistogram(metrics.StepDuration, 0.75, metrics.Labels{"step": "write", "status": "success"})
	b.ObserveHistogram("other", 10, metrics.Labels{"step": "write", "status": "success"})

	n, sum := summaryCountSum(t, b.stepDuration, "write", "success")
	assert.Equal(t, uint64(2), n)
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestFlush(t *testing.T) {
	t.Parallel()

	type pushRequest struct {
		method  string
		path    string
		bodyLen int
	}
	reqCh := make(chan pushRequest, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)
		reqCh <- pushRequest{method: r.Method, path: r.URL.Path, bodyLen: len(body)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	b, err := NewBackend("customer", server.URL)
	require.NoError(t, err)
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "read", "status": "success"})

	require.NoError(t, b.Flush())

	select {
	case got := <-reqCh:
		assert.Equal(t, http.MethodPut, got.method)
		assert.Contains(t, got.path, "/metrics/job/customer")
		assert.Positive(t, got.bodyLen)
	default:
		t.Fatal("Flush did not reach the Pushgateway")
	}
}

func TestFlush_GatewayError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	b, err := NewBackend("customer", server.URL)
	require.NoError(t, err)
	assert.Error(t, b.Flush())
}
