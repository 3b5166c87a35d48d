package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
backend:
  type: memory
model_server:
  url: http://localhost:8501
`

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte(minimal))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, 5001, c.Server.Port)
	assert.Equal(t, 4, c.Forecast.WindowSize)
	assert.Equal(t, 5, c.Forecast.HistoryWeeks)
	assert.Equal(t, "fixed", c.Forecast.WindowPolicy)
	assert.False(t, c.Forecast.PadShortHistory)
	assert.Equal(t, 3*time.Second, c.ModelServer.Timeout)
	assert.Equal(t, 10*time.Minute, c.Forecast.CacheTTL)
	assert.Equal(t, "salescast.audit", c.Kafka.AuditTopic)
	assert.Equal(t, DefaultProducts, c.Products)
}

func TestParseKeepsExplicitValues(t *testing.T) {
	c, err := Parse([]byte(minimal + `
forecast:
  window_size: 6
  window_policy: growing
  pad_short_history: true
products:
  - name: Rempeyek
    unit_price: "4500.50"
`))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, 6, c.Forecast.WindowSize)
	assert.Equal(t, "growing", c.Forecast.WindowPolicy)
	assert.True(t, c.Forecast.PadShortHistory)
	require.Len(t, c.Products, 1)
	assert.Equal(t, "4500.50", c.Products[0].UnitPrice)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"unknown backend":   "backend: {type: mongo}\nmodel_server: {url: http://x}\n",
		"clickhouse host":   "backend: {type: clickhouse}\nmodel_server: {url: http://x}\n",
		"postgres url":      "backend: {type: postgres}\nmodel_server: {url: http://x}\n",
		"model server":      "backend: {type: memory}\n",
		"window policy":     minimal + "forecast: {window_policy: sliding}\n",
		"bad price":         minimal + "products: [{name: a, unit_price: abc}]\n",
		"negative price":    minimal + "products: [{name: a, unit_price: \"-1\"}]\n",
		"duplicate":         minimal + "products: [{name: a, unit_price: \"1\"}, {name: a, unit_price: \"2\"}]\n",
		"kafka no brokers":  minimal + "kafka: {enabled: true}\n",
		"short lookback":    minimal + "forecast: {window_size: 4, history_weeks: 5, lookback_weeks: 5}\n",
		"negative lookback": minimal + "forecast: {lookback_weeks: -1}\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			c, err := Parse([]byte(body))
			require.NoError(t, err)
			assert.Error(t, c.Validate())
		})
	}
}

func TestValidateLookbackCoversWindowAndHistory(t *testing.T) {
	c, err := Parse([]byte(minimal + "forecast: {window_size: 4, history_weeks: 5, lookback_weeks: 6}\n"))
	require.NoError(t, err)
	assert.NoError(t, c.Validate())
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: {type: memory}\n"), 0o600))

	t.Setenv("MODEL_SERVER_URL", "http://models:8501")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("PORT", "6000")

	c, err := LoadWithEnv(path)
	require.NoError(t, err)
	assert.Equal(t, "http://models:8501", c.ModelServer.URL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, 6000, c.Server.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
