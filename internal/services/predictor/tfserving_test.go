package predictor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"SalesCast/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string, retries int) *config.Config {
	cfg := &config.Config{}
	cfg.ModelServer.URL = url
	cfg.ModelServer.Timeout = time.Second
	cfg.ModelServer.Retries = retries
	return cfg
}

func TestHTTPPredictorPredict(t *testing.T) {
	var gotPath string
	var gotReq predictRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write([]byte(`{"predictions": [[0.42]]}`))
	}))
	defer srv.Close()

	p := NewHTTPPredictorFromConfig(testConfig(srv.URL, 0), "model_Kerupuk_Kulit")
	window := [][]float64{{0.1, 0.2, 1, 0}, {0.3, 0.1, 0, 0}}

	got, err := p.Predict(context.Background(), window)
	require.NoError(t, err)
	assert.Equal(t, 0.42, got)
	assert.Equal(t, "/v1/models/model_Kerupuk_Kulit:predict", gotPath)
	require.Len(t, gotReq.Instances, 1)
	assert.Equal(t, window, gotReq.Instances[0])
}

func TestScalarOfShapes(t *testing.T) {
	for _, raw := range []string{`0.5`, `[0.5]`, `[[0.5]]`} {
		v, err := scalarOf(json.RawMessage(raw))
		require.NoError(t, err, raw)
		assert.Equal(t, 0.5, v)
	}
	_, err := scalarOf(json.RawMessage(`[0.5, 0.6]`))
	assert.Error(t, err)
	_, err = scalarOf(json.RawMessage(`"x"`))
	assert.Error(t, err)
}

func TestHTTPPredictorServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewHTTPPredictorFromConfig(testConfig(srv.URL, 0), "m")
	_, err := p.Predict(context.Background(), [][]float64{{0}})
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHTTPPredictorRetriesTransientFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"predictions": [0.7]}`))
	}))
	defer srv.Close()

	p := NewHTTPPredictorFromConfig(testConfig(srv.URL, 2), "m")
	got, err := p.Predict(context.Background(), [][]float64{{0}})
	require.NoError(t, err)
	assert.Equal(t, 0.7, got)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHTTPPredictorRejectsMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions": []}`))
	}))
	defer srv.Close()

	p := NewHTTPPredictorFromConfig(testConfig(srv.URL, 0), "m")
	_, err := p.Predict(context.Background(), [][]float64{{0}})
	assert.Error(t, err)
}

func TestHTTPServiceBaseRequiresURL(t *testing.T) {
	b := NewHTTPServiceBase(testConfig("", 0))
	err := b.PostJSON(context.Background(), "/x", nil, nil)
	assert.Error(t, err)
}

func TestHTTPPredictorDoesNotRetryClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"error": "Servable not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewHTTPPredictorFromConfig(testConfig(srv.URL, 3), "missing")
	_, err := p.Predict(context.Background(), [][]float64{{0}})
	assert.ErrorContains(t, err, "404")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
