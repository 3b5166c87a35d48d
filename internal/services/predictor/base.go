package predictor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"SalesCast/pkg/config"
	xhttp "SalesCast/pkg/http"
)

const (
	defaultTimeout = 3 * time.Second
	retryStep      = 50 * time.Millisecond
)

// HTTPServiceBase is the model-server connection shared by every product's
// predictor.
type HTTPServiceBase struct {
	baseURL string
	client  *xhttp.Client
}

func NewHTTPServiceBase(cfg *config.Config) *HTTPServiceBase {
	timeout := cfg.ModelServer.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPServiceBase{
		baseURL: strings.TrimRight(cfg.ModelServer.URL, "/"),
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// PostJSON sends one request to baseURL+path and decodes the JSON answer.
func (b *HTTPServiceBase) PostJSON(ctx context.Context, path string, payload, dest interface{}) error {
	if b.baseURL == "" {
		return errors.New("model server url not configured")
	}
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    b.baseURL + path,
		Body:   payload,
	}, dest)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}

// PostJSONWithRetry tries up to attempts times, waiting retryStep*n after the
// n-th failure. Client errors other than 429 are not retried.
func (b *HTTPServiceBase) PostJSONWithRetry(ctx context.Context, path string, payload, dest interface{}, attempts int) error {
	var err error
	for n := 1; ; n++ {
		err = b.PostJSON(ctx, path, payload, dest)
		if err == nil || n >= attempts || !retryable(err) {
			return err
		}
		t := time.NewTimer(time.Duration(n) * retryStep)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
		}
	}
}

func retryable(err error) bool {
	var se *xhttp.StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return !errors.Is(err, context.Canceled)
}
