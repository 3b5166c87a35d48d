package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
}

func (p *memPublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return nil
}

func TestCollectorDeduplicates(t *testing.T) {
	pub := &memPublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 10, Topic: "salescast.logs", Publisher: pub})

	for i := 0; i < 3; i++ {
		c.AddLog("error", "predictor failed", map[string]interface{}{"product": "Stik Bawang"}, "usecase/forecast.go:1")
	}
	c.AddLog("error", "predictor failed", map[string]interface{}{"product": "Kerupuk Kulit"}, "usecase/forecast.go:1")
	c.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.Equal(t, "salescast.logs", pub.topic)
	require.Len(t, pub.batches, 1)
	require.Len(t, pub.batches[0], 2)
	counts := map[int]bool{}
	for _, e := range pub.batches[0] {
		counts[e.Count] = true
	}
	assert.True(t, counts[3])
	assert.True(t, counts[1])
}

func TestCollectorFlushesAtThreshold(t *testing.T) {
	pub := &memPublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Publisher: pub})
	defer c.Close()

	c.AddLog("error", "a", nil, "x")
	c.AddLog("error", "b", nil, "x")

	assert.Eventually(t, func() bool {
		pub.mu.Lock()
		defer pub.mu.Unlock()
		return len(pub.batches) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestLoggerFeedsCollector(t *testing.T) {
	pub := &memPublisher{}
	l, err := New(&Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 100, Publisher: pub})

	l.Error("model server unreachable", Error(errors.New("dial tcp")))
	l.Info("ignored")
	l.RemoveCollector()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.batches, 1)
	assert.Equal(t, "model server unreachable", pub.batches[0][0].Message)
	assert.Equal(t, "dial tcp", pub.batches[0][0].Fields["error"])
}
