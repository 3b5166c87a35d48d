package kafka

import (
	"context"
	"fmt"
	"time"

	applogger "SalesCast/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// Delivery is a single handler attempt for a fetched message. Hooks may
// rewrite Data before the handler sees it.
type Delivery struct {
	Topic   string
	Message kafka.Message
	Data    []byte
	Attempt int
	Started time.Time
}

// ConsumerHook wraps every handler attempt. An error from Before skips the
// handler and is reported to After like a handler failure.
type ConsumerHook interface {
	Before(ctx context.Context, d *Delivery) (context.Context, error)
	After(ctx context.Context, d *Delivery, err error)
}

type NoopHook struct{}

func (NoopHook) Before(ctx context.Context, _ *Delivery) (context.Context, error) { return ctx, nil }

func (NoopHook) After(context.Context, *Delivery, error) {}

// HookFuncs adapts plain functions. Failed only runs for failed attempts.
type HookFuncs struct {
	OnBefore func(context.Context, *Delivery) (context.Context, error)
	OnAfter  func(context.Context, *Delivery, error)
	Failed   func(context.Context, *Delivery, error)
}

func (h HookFuncs) Before(ctx context.Context, d *Delivery) (context.Context, error) {
	if h.OnBefore == nil {
		return ctx, nil
	}
	return h.OnBefore(ctx, d)
}

func (h HookFuncs) After(ctx context.Context, d *Delivery, err error) {
	if h.OnAfter != nil {
		h.OnAfter(ctx, d, err)
	}
	if err != nil && h.Failed != nil {
		h.Failed(ctx, d, err)
	}
}

// HookChain runs Before in order and After in reverse. Panics inside a hook
// are recovered; a panicking Before fails the attempt.
type HookChain []ConsumerHook

func NewHookChain(hooks ...ConsumerHook) HookChain {
	chain := make(HookChain, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			chain = append(chain, h)
		}
	}
	return chain
}

func (c HookChain) Before(ctx context.Context, d *Delivery) (context.Context, error) {
	for _, h := range c {
		next, err := callBefore(h, ctx, d)
		if err != nil {
			return ctx, err
		}
		ctx = next
	}
	return ctx, nil
}

func (c HookChain) After(ctx context.Context, d *Delivery, err error) {
	for i := len(c) - 1; i >= 0; i-- {
		callAfter(c[i], ctx, d, err)
	}
}

func callBefore(h ConsumerHook, ctx context.Context, d *Delivery) (next context.Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			next, err = ctx, fmt.Errorf("hook panic: %v", r)
		}
	}()
	return h.Before(ctx, d)
}

func callAfter(h ConsumerHook, ctx context.Context, d *Delivery, err error) {
	defer func() { _ = recover() }()
	h.After(ctx, d, err)
}

type traceKey struct{}

// WithTraceID is a no-op for an empty id.
func WithTraceID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, traceKey{}, id)
}

func TraceIDFrom(ctx context.Context) string {
	s, _ := ctx.Value(traceKey{}).(string)
	return s
}

// ExtractTraceID reads the trace_id header set by Producer.
func ExtractTraceID(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == traceHeader {
			return string(h.Value)
		}
	}
	return ""
}

// TracingHook moves the message's trace id into the handler context.
func TracingHook() ConsumerHook {
	return HookFuncs{
		OnBefore: func(ctx context.Context, d *Delivery) (context.Context, error) {
			return WithTraceID(ctx, ExtractTraceID(d.Message)), nil
		},
	}
}

// LoggingHook warns on every failed attempt.
func LoggingHook(l *applogger.Logger) ConsumerHook {
	if l == nil {
		return NoopHook{}
	}
	return HookFuncs{
		Failed: func(ctx context.Context, d *Delivery, err error) {
			fields := []applogger.Field{
				applogger.String("topic", d.Topic),
				applogger.Int("partition", d.Message.Partition),
				applogger.Int64("offset", d.Message.Offset),
				applogger.Int("attempt", d.Attempt),
				applogger.Error(err),
			}
			if !d.Started.IsZero() {
				fields = append(fields, applogger.Duration("elapsed_ms", time.Since(d.Started)))
			}
			if id := TraceIDFrom(ctx); id != "" {
				fields = append(fields, applogger.String("trace_id", id))
			}
			l.Warn("kafka message attempt failed", fields...)
		},
	}
}
