package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracingHookCarriesTraceID(t *testing.T) {
	d := &Delivery{Message: kafka.Message{Headers: []kafka.Header{{Key: "trace_id", Value: []byte("abc")}}}}
	ctx, err := TracingHook().Before(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, "abc", TraceIDFrom(ctx))

	ctx, err = TracingHook().Before(context.Background(), &Delivery{})
	require.NoError(t, err)
	assert.Empty(t, TraceIDFrom(ctx))
}

func TestHookChainOrder(t *testing.T) {
	var order []string
	mk := func(name string) ConsumerHook {
		return HookFuncs{
			OnBefore: func(ctx context.Context, d *Delivery) (context.Context, error) {
				order = append(order, "before:"+name)
				d.Data = append(d.Data, name...)
				return ctx, nil
			},
			OnAfter: func(context.Context, *Delivery, error) {
				order = append(order, "after:"+name)
			},
		}
	}
	chain := NewHookChain(mk("a"), nil, mk("b"))
	require.Len(t, chain, 2)

	d := &Delivery{}
	ctx, err := chain.Before(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(d.Data))
	chain.After(ctx, d, nil)
	assert.Equal(t, []string{"before:a", "before:b", "after:b", "after:a"}, order)
}

func TestHookChainRecoversPanics(t *testing.T) {
	var reached bool
	chain := NewHookChain(
		HookFuncs{OnBefore: func(context.Context, *Delivery) (context.Context, error) { panic("bad hook") }},
		HookFuncs{OnBefore: func(ctx context.Context, _ *Delivery) (context.Context, error) {
			reached = true
			return ctx, nil
		}},
		HookFuncs{OnAfter: func(context.Context, *Delivery, error) { panic("bad after") }},
	)

	_, err := chain.Before(context.Background(), &Delivery{})
	assert.ErrorContains(t, err, "hook panic")
	assert.False(t, reached)
	assert.NotPanics(t, func() { chain.After(context.Background(), &Delivery{}, err) })
}

func TestHookFuncsFailedOnlyOnError(t *testing.T) {
	var failed int
	h := HookFuncs{Failed: func(context.Context, *Delivery, error) { failed++ }}
	h.After(context.Background(), &Delivery{}, nil)
	h.After(context.Background(), &Delivery{}, errors.New("x"))
	assert.Equal(t, 1, failed)
}

func TestLoggingHookNilLogger(t *testing.T) {
	h := LoggingHook(nil)
	assert.NotPanics(t, func() {
		h.After(context.Background(), &Delivery{Topic: "t"}, errors.New("x"))
	})
}
