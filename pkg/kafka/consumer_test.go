package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	SetConsumerMetricsRegisterer(prometheus.NewRegistry())
}

type flakyHandler struct {
	failures int
	calls    int
	panics   bool
}

func (h *flakyHandler) Topic() string { return "salescast.audit" }

func (h *flakyHandler) Handle(context.Context, []byte) error {
	h.calls++
	if h.panics {
		panic("decode")
	}
	if h.calls <= h.failures {
		return errors.New("cache down")
	}
	return nil
}

func newTestConsumer(t *testing.T, retries int) *Consumer {
	t.Helper()
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(retries, time.Millisecond, 2*time.Millisecond),
	)
	require.NoError(t, err)
	return c
}

func TestNewConsumerRequiresBrokers(t *testing.T) {
	_, err := NewConsumer()
	assert.ErrorIs(t, err, errNoBrokers)

	_, err = NewProducer()
	assert.ErrorIs(t, err, errNoBrokers)
}

func TestHandleWithRetryRecovers(t *testing.T) {
	c := newTestConsumer(t, 3)
	h := &flakyHandler{failures: 2}

	err := c.handleWithRetry(h, &message{topic: h.Topic(), km: kafka.Message{Value: []byte("{}")}})
	require.NoError(t, err)
	assert.Equal(t, 3, h.calls)
}

func TestHandleWithRetryGivesUp(t *testing.T) {
	c := newTestConsumer(t, 1)
	h := &flakyHandler{failures: 10}

	var seen int
	c.WithConsumerHook(HookFuncs{Failed: func(context.Context, *Delivery, error) { seen++ }})

	err := c.handleWithRetry(h, &message{topic: h.Topic()})
	assert.EqualError(t, err, "cache down")
	assert.Equal(t, 2, h.calls)
	assert.Equal(t, 2, seen)
}

func TestHandleWithRetryPanicIsError(t *testing.T) {
	c := newTestConsumer(t, 0)
	err := c.handleWithRetry(&flakyHandler{panics: true}, &message{topic: "salescast.audit"})
	assert.ErrorContains(t, err, "handler panic")
}

func TestHandleWithRetryHookFailureSkipsHandler(t *testing.T) {
	c := newTestConsumer(t, 0)
	h := &flakyHandler{}
	c.WithConsumerHook(HookFuncs{OnBefore: func(ctx context.Context, _ *Delivery) (context.Context, error) {
		return ctx, errors.New("bad header")
	}})

	err := c.handleWithRetry(h, &message{topic: h.Topic()})
	assert.EqualError(t, err, "bad header")
	assert.Equal(t, 0, h.calls)
}

func TestHandleWithRetryStopsOnShutdown(t *testing.T) {
	c := newTestConsumer(t, 5)
	c.cancel()
	err := c.handleWithRetry(&flakyHandler{failures: 10}, &message{topic: "salescast.audit"})
	assert.ErrorIs(t, err, errStopping)
}

func TestBackoffWithJitterBounds(t *testing.T) {
	min, max := 10*time.Millisecond, 80*time.Millisecond
	for attempt := 1; attempt <= 40; attempt++ {
		d := backoffWithJitter(min, max, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, max)
	}
	assert.LessOrEqual(t, backoffWithJitter(min, max, 1), min)
}

func TestBuildMessageCarriesTraceID(t *testing.T) {
	ctx := WithTraceID(context.Background(), "run-1")
	msg, err := buildMessage(ctx, "salescast.forecasts", []byte("Stik Bawang"), map[string]int{"steps": 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"steps":2}`, string(msg.Value))
	assert.Equal(t, "run-1", ExtractTraceID(msg))

	msg, err = buildMessage(context.Background(), "t", nil, "raw")
	require.NoError(t, err)
	assert.Equal(t, "raw", string(msg.Value))
	assert.Empty(t, msg.Headers)
}

func TestStopBeforeStart(t *testing.T) {
	c := newTestConsumer(t, 0)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, c.Stop(ctx))
	assert.Error(t, c.Start())
}
