package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	r := NewWithRegisterer(prometheus.NewRegistry())

	r.RecordForecast("Stik Bawang", "ok")
	r.RecordForecast("Stik Bawang", "ok")
	r.RecordError("predictor")
	r.RecordLastForecast("Stik Bawang", 42)
	r.RecordLatency("predict", 0.2)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.forecasts.WithLabelValues("Stik Bawang", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("predictor")))
	assert.Equal(t, 42.0, testutil.ToFloat64(r.lastForecast.WithLabelValues("Stik Bawang")))
}
