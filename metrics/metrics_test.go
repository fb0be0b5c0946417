package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/prometheus/prompb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPushRegistry(t *testing.T) {
	tests := []struct {
		name string
		cfg  PushConfig
	}{
		{
			name: "minimal config",
			cfg: PushConfig{
				URL: "http://localhost:9090",
			},
		},
		{
			name: "full config",
			cfg: PushConfig{
				URL:      "http://localhost:9090",
				Prefix:   "test",
				Job:      "testjob",
				Instance: "testinstance",
				Timeout:  5 * time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewPushRegistry(tt.cfg)
			require.NotNil(t, registry)
			require.NotNil(t, registry.pusher)
		})
	}
}

func TestPushRegistry_NewGauge(t *testing.T) {
	registry := NewPushRegistry(PushConfig{URL: "http://localhost:9090"})

	gauge, err := registry.NewGauge(prometheus.GaugeOpts{
		Name: "test_gauge",
		Help: "A test gauge",
	})

	require.NoError(t, err)
	require.NotNil(t, gauge)
}

func TestPushRegistry_NewGaugeVec(t *testing.T) {
	registry := NewPushRegistry(PushConfig{URL: "http://localhost:9090"})

	gaugeVec, err := registry.NewGaugeVec(prometheus.GaugeOpts{
		Name: "test_gauge_vec",
		Help: "A test gauge vector",
	}, []string{"label1", "label2"})

	require.NoError(t, err)
	require.NotNil(t, gaugeVec)

	// Get a gauge with labels
	gauge := gaugeVec.With(prometheus.Labels{"label1": "value1", "label2": "value2"})
	require.NotNil(t, gauge)
}

func TestPushRegistry_NewCounter(t *testing.T) {
	registry := NewPushRegistry(PushConfig{URL: "http://localhost:9090"})

	counter, err := registry.NewCounter(prometheus.CounterOpts{
		Name: "test_counter",
		Help: "A test counter",
	})

	require.NoError(t, err)
	require.NotNil(t, counter)
}

func TestPushRegistry_NewCounterVec(t *testing.T) {
	registry := NewPushRegistry(PushConfig{URL: "http://localhost:9090"})

	counterVec, err := registry.NewCounterVec(prometheus.CounterOpts{
		Name: "test_counter_vec",
		Help: "A test counter vector",
	}, []string{"label1"})

	require.NoError(t, err)
	require.NotNil(t, counterVec)

	// Get a counter with labels
	counter := counterVec.With(prometheus.Labels{"label1": "value1"})
	require.NotNil(t, counter)
}

func TestPushGauge_Set(t *testing.T) {
	// Create a test server that will receive and verify the metrics
	receivedMetrics := make(chan []prompb.TimeSeries, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify headers
		assert.Equal(t, "snappy", r.Header.Get("Content-Encoding"))
		assert.Equal(t, "application/x-protobuf", r.Header.Get("Content-Type"))
		assert.Equal(t, "0.1.0", r.Header.Get("X-Prometheus-Remote-Write-Version"))

		// Read and decompress the body
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		decoded, err := snappy.Decode(nil, body)
		require.NoError(t, err)

		// Unmarshal the protobuf
		var writeReq prompb.WriteRequest
		require.NoError(t, proto.Unmarshal(decoded, &writeReq))

		// Send the received metrics to the channel
		receivedMetrics <- writeReq.Timeseries
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	// Create registry with test options
	registry := NewPushRegistry(PushConfig{
		URL:      server.URL,
		Prefix:   "test",
		Job:      "testjob",
		Instance: "testinstance",
	})

	// Create and set a gauge
	gauge, err := registry.NewGauge(prometheus.GaugeOpts{
		Name: "test_metric",
		Help: "A test metric",
	})
	require.NoError(t, err)
	gauge.Set(42.0)

	// Wait for the server to receive the metric
	select {
	case received := <-receivedMetrics:
		require.Len(t, received, 1)
		ts := received[0]

		// Helper function to find a label value
		findLabel := func(labels []prompb.Label, name string) string {
			for _, l := range labels {
				if l.Name == name {
					return l.Value
				}
			}
			return ""
		}

		// Check metric name with prefix
		assert.Equal(t, "test_test_metric", findLabel(ts.Labels, "__name__"))
		assert.Equal(t, "testjob", findLabel(ts.Labels, "job"))
		assert.Equal(t, "testinstance", findLabel(ts.Labels, "instance"))

		// Check sample value
		require.Len(t, ts.Samples, 1)
		assert.Equal(t, 42.0, ts.Samples[0].Value)

	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for metrics to be received")
	}
}

func TestPushGaugeVec_WithLabels(t *testing.T) {
	// Create a test server that will receive metrics
	receivedMetrics := make(chan []prompb.TimeSeries, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		decoded, err := snappy.Decode(nil, body)
		require.NoError(t, err)

		var writeReq prompb.WriteRequest
		require.NoError(t, proto.Unmarshal(decoded, &writeReq))

		receivedMetrics <- writeReq.Timeseries
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	registry := NewPushRegistry(PushConfig{URL: server.URL})

	gaugeVec, err := registry.NewGaugeVec(prometheus.GaugeOpts{
		Name: "test_gauge_vec",
		Help: "A test gauge vector",
	}, []string{"operation", "result"})
	require.NoError(t, err)

	// Set a gauge with labels
	gaugeVec.With(prometheus.Labels{"operation": "create", "result": "success"}).Set(123.0)

	// Wait for the metric
	select {
	case received := <-receivedMetrics:
		require.Len(t, received, 1)
		ts := received[0]

		findLabel := func(labels []prompb.Label, name string) string {
			for _, l := range labels {
				if l.Name == name {
					return l.Value
				}
			}
			return ""
		}

		assert.Equal(t, "test_gauge_vec", findLabel(ts.Labels, "__name__"))
		assert.Equal(t, "create", findLabel(ts.Labels, "operation"))
		assert.Equal(t, "success", findLabel(ts.Labels, "result"))
		require.Len(t, ts.Samples, 1)
		assert.Equal(t, 123.0, ts.Samples[0].Value)

	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for metrics to be received")
	}
}

func TestPushCounter_Inc(t *testing.T) {
	// Create a test server
	receivedMetrics := make(chan []prompb.TimeSeries, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		decoded, err := snappy.Decode(nil, body)
		require.NoError(t, err)

		var writeReq prompb.WriteRequest
		require.NoError(t, proto.Unmarshal(decoded, &writeReq))

		receivedMetrics <- writeReq.Timeseries
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	registry := NewPushRegistry(PushConfig{URL: server.URL})

	counter, err := registry.NewCounter(prometheus.CounterOpts{
		Name: "test_counter",
		Help: "A test counter",
	})
	require.NoError(t, err)

	// Increment counter twice
	counter.Inc()
	counter.Inc()

	// We should receive two pushes
	for i := 0; i < 2; i++ {
		select {
		case received := <-receivedMetrics:
			require.Len(t, received, 1)
			ts := received[0]
			require.Len(t, ts.Samples, 1)
			// Counter should increment: 1, then 2
			assert.Equal(t, float64(i+1), ts.Samples[0].Value)
		case <-time.After(5 * time.Second):
			t.Fatalf("timeout waiting for metric %d", i+1)
		}
	}
}

func TestScrapeRegistry(t *testing.T) {
	registry, err := NewScrapeRegistry()
	require.NoError(t, err)
	require.NotNil(t, registry)

	// Create some metrics
	gauge, err := registry.NewGauge(prometheus.GaugeOpts{
		Name: "test_gauge",
		Help: "A test gauge",
	})
	require.NoError(t, err)
	gauge.Set(42.0)

	counter, err := registry.NewCounter(prometheus.CounterOpts{
		Name: "test_counter",
		Help: "A test counter",
	})
	require.NoError(t, err)
	counter.Inc()

	// Get the HTTP handler
	handler := registry.Handler()
	require.NotNil(t, handler)

	// Make a request to the handler
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	// Check the response
	assert.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "test_gauge 42")
	assert.Contains(t, body, "test_counter 1")
}

func TestScrapeRegistry_HistogramVec(t *testing.T) {
	registry, err := NewScrapeRegistry()
	require.NoError(t, err)

	hist, err := registry.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "test_duration_seconds",
		Help:    "A test histogram",
		Buckets: []float64{0.1, 1},
	}, []string{"operation"})
	require.NoError(t, err)

	hist.With(prometheus.Labels{"operation": "load_all"}).Observe(0.5)

	w := httptest.NewRecorder()
	registry.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body := w.Body.String()
	assert.Contains(t, body, `test_duration_seconds_count{operation="load_all"} 1`)
	assert.Contains(t, body, `test_duration_seconds_sum{operation="load_all"} 0.5`)
}

func TestScrapeRegistry_DuplicateRegistration(t *testing.T) {
	registry, err := NewScrapeRegistry()
	require.NoError(t, err)

	opts := prometheus.CounterOpts{Name: "dup_counter", Help: "dup"}
	_, err = registry.NewCounter(opts)
	require.NoError(t, err)

	_, err = registry.NewCounter(opts)
	assert.Error(t, err)
}

func TestPushHistogram_Observe(t *testing.T) {
	receivedMetrics := make(chan []prompb.TimeSeries, 2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		decoded, err := snappy.Decode(nil, body)
		require.NoError(t, err)

		var writeReq prompb.WriteRequest
		require.NoError(t, proto.Unmarshal(decoded, &writeReq))

		receivedMetrics <- writeReq.Timeseries
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	registry := NewPushRegistry(PushConfig{URL: server.URL, Prefix: "reactivities"})

	hist, err := registry.NewHistogramVec(prometheus.HistogramOpts{
		Name: "op_seconds",
		Help: "A test histogram",
	}, []string{"operation"})
	require.NoError(t, err)

	h := hist.With(prometheus.Labels{"operation": "delete"})
	h.Observe(2)
	h.Observe(3)

	findLabel := func(labels []prompb.Label, name string) string {
		for _, l := range labels {
			if l.Name == name {
				return l.Value
			}
		}
		return ""
	}

	var last []prompb.TimeSeries
	for i := 0; i < 2; i++ {
		select {
		case last = <-receivedMetrics:
		case <-time.After(5 * time.Second):
			t.Fatalf("timeout waiting for push %d", i+1)
		}
	}

	require.Len(t, last, 2)
	values := map[string]float64{}
	for _, ts := range last {
		assert.Equal(t, "delete", findLabel(ts.Labels, "operation"))
		require.Len(t, ts.Samples, 1)
		values[findLabel(ts.Labels, "__name__")] = ts.Samples[0].Value
	}
	assert.Equal(t, 5.0, values["reactivities_op_seconds_sum"])
	assert.Equal(t, 2.0, values["reactivities_op_seconds_count"])
}

func TestPushGauge_FailureDoesNotPanic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	registry := NewPushRegistry(PushConfig{URL: server.URL})
	gauge, err := registry.NewGauge(prometheus.GaugeOpts{Name: "g", Help: "g"})
	require.NoError(t, err)

	assert.NotPanics(t, func() { gauge.Set(1) })
	assert.Error(t, registry.pusher.push(sample{name: "g", value: 1}))
}

func TestLabelsToKey_Deterministic(t *testing.T) {
	a := prometheus.Labels{"operation": "create", "result": "failure", "x": "y"}
	b := prometheus.Labels{"x": "y", "result": "failure", "operation": "create"}

	for i := 0; i < 20; i++ {
		assert.Equal(t, labelsToKey(a), labelsToKey(b))
	}
	assert.Equal(t, "operation=create,result=failure,x=y,", labelsToKey(a))
}

func TestNopRegistry(t *testing.T) {
	var registry Registry = NewNopRegistry()

	g, err := registry.NewGauge(prometheus.GaugeOpts{Name: "g"})
	require.NoError(t, err)
	gv, err := registry.NewGaugeVec(prometheus.GaugeOpts{Name: "gv"}, []string{"l"})
	require.NoError(t, err)
	c, err := registry.NewCounter(prometheus.CounterOpts{Name: "c"})
	require.NoError(t, err)
	cv, err := registry.NewCounterVec(prometheus.CounterOpts{Name: "cv"}, []string{"l"})
	require.NoError(t, err)
	hv, err := registry.NewHistogramVec(prometheus.HistogramOpts{Name: "hv"}, []string{"l"})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		g.Set(1)
		gv.With(prometheus.Labels{"l": "v"}).Set(1)
		c.Inc()
		c.Add(2)
		cv.With(prometheus.Labels{"l": "v"}).Inc()
		hv.With(prometheus.Labels{"l": "v"}).Observe(1)
	})
}
