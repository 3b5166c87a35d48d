package predictor

import (
    "context"
    "encoding/json"
    "fmt"
    "net/url"

    domsvc "SalesCast/internal/domain/service"
    "SalesCast/pkg/config"
)

// HTTPPredictor calls one model on a TensorFlow Serving compatible REST endpoint:
// POST /v1/models/{model}:predict with {"instances": [window]}.
type HTTPPredictor struct {
    base     *HTTPServiceBase
    model    string
    attempts int
}

func NewHTTPPredictor(base *HTTPServiceBase, model string, retries int) *HTTPPredictor {
    if retries < 0 {
        retries = 0
    }
    return &HTTPPredictor{base: base, model: model, attempts: retries + 1}
}

// NewHTTPPredictorFromConfig is a convenience for single-model setups.
func NewHTTPPredictorFromConfig(cfg *config.Config, model string) *HTTPPredictor {
    return NewHTTPPredictor(NewHTTPServiceBase(cfg), model, cfg.ModelServer.Retries)
}

type predictRequest struct {
    Instances [][][]float64 `json:"instances"`
}

type predictResponse struct {
    Predictions []json.RawMessage `json:"predictions"`
    Error       string            `json:"error,omitempty"`
}

func (p *HTTPPredictor) Model() string { return p.model }

func (p *HTTPPredictor) Predict(ctx context.Context, window [][]float64) (float64, error) {
    var resp predictResponse
    path := "/v1/models/" + url.PathEscape(p.model) + ":predict"
    err := p.base.PostJSONWithRetry(ctx, path, predictRequest{Instances: [][][]float64{window}}, &resp, p.attempts)
    if err != nil {
        return 0, fmt.Errorf("predict %s: %w", p.model, err)
    }
    if resp.Error != "" {
        return 0, fmt.Errorf("predict %s: %s", p.model, resp.Error)
    }
    if len(resp.Predictions) != 1 {
        return 0, fmt.Errorf("predict %s: expected 1 prediction, got %d", p.model, len(resp.Predictions))
    }
    return scalarOf(resp.Predictions[0])
}

// scalarOf accepts x, [x] or [[x]].
func scalarOf(raw json.RawMessage) (float64, error) {
    var v float64
    if err := json.Unmarshal(raw, &v); err == nil {
        return v, nil
    }
    var vec []json.RawMessage
    if err := json.Unmarshal(raw, &vec); err != nil {
        return 0, fmt.Errorf("decode prediction: %w", err)
    }
    if len(vec) != 1 {
        return 0, fmt.Errorf("expected a single output, got %d", len(vec))
    }
    return scalarOf(vec[0])
}

var _ domsvc.Predictor = (*HTTPPredictor)(nil)
