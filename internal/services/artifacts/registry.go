package artifacts

import (
	"fmt"
	"path/filepath"
	"strings"

	"SalesCast/internal/domain/models"
	domsvc "SalesCast/internal/domain/service"
	"SalesCast/internal/services/scaling"
	"SalesCast/pkg/config"
	applogger "SalesCast/pkg/logger"

	"github.com/shopspring/decimal"
)

// Bundle is everything needed to forecast one product.
type Bundle struct {
	Product   models.Product
	Predictor domsvc.Predictor
	Scaling   *scaling.Adapter
}

// Registry maps catalog products to their loaded artifacts.
// It is built once at startup and only read afterwards.
type Registry struct {
	order    []string
	products map[string]models.Product
	bundles  map[string]*Bundle
}

// PredictorFactory builds the predictor for a model name.
type PredictorFactory func(model string) domsvc.Predictor

// Key converts a product name to its artifact file key ("Stik Bawang" -> "Stik_Bawang").
func Key(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}

// ModelName returns the configured model name or the default "model_<key>".
func ModelName(p models.Product) string {
	if p.Model != "" {
		return p.Model
	}
	return "model_" + Key(p.Name)
}

// Catalog converts configured products, parsing prices exactly.
func Catalog(items []config.Product) ([]models.Product, error) {
	out := make([]models.Product, 0, len(items))
	for _, it := range items {
		price, err := decimal.NewFromString(it.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("product %q: unit price: %w", it.Name, err)
		}
		out = append(out, models.Product{Name: it.Name, UnitPrice: price, Model: it.Model})
	}
	return out, nil
}

// NewRegistry builds a registry from ready bundles keyed by product name.
func NewRegistry(products []models.Product, bundles map[string]*Bundle) *Registry {
	r := &Registry{
		order:    make([]string, 0, len(products)),
		products: make(map[string]models.Product, len(products)),
		bundles:  make(map[string]*Bundle, len(bundles)),
	}
	for _, p := range products {
		r.order = append(r.order, p.Name)
		r.products[p.Name] = p
	}
	for name, b := range bundles {
		if _, ok := r.products[name]; ok && b != nil {
			r.bundles[name] = b
		}
	}
	return r
}

// LoadRegistry reads scaler_<key>.json and scaler_features_<key>.json from dir
// for every product. Products whose artifacts are missing or unreadable are
// kept in the catalog but marked unavailable.
func LoadRegistry(dir string, products []models.Product, newPredictor PredictorFactory, l *applogger.Logger) *Registry {
	bundles := make(map[string]*Bundle, len(products))
	for _, p := range products {
		b, err := loadBundle(dir, p, newPredictor)
		if err != nil {
			if l != nil {
				l.Warn("model artifacts unavailable",
					applogger.String("product", p.Name),
					applogger.String("dir", dir),
					applogger.Error(err),
				)
			}
			continue
		}
		bundles[p.Name] = b
		if l != nil {
			l.Info("model artifacts loaded",
				applogger.String("product", p.Name),
				applogger.String("model", ModelName(p)),
			)
		}
	}
	return NewRegistry(products, bundles)
}

func loadBundle(dir string, p models.Product, newPredictor PredictorFactory) (*Bundle, error) {
	key := Key(p.Name)
	features, err := scaling.LoadMinMaxScaler(filepath.Join(dir, "scaler_"+key+".json"))
	if err != nil {
		return nil, err
	}
	calendar, err := scaling.LoadMinMaxScaler(filepath.Join(dir, "scaler_features_"+key+".json"))
	if err != nil {
		return nil, err
	}
	adapter, err := scaling.NewAdapter(features, calendar)
	if err != nil {
		return nil, err
	}
	return &Bundle{Product: p, Predictor: newPredictor(ModelName(p)), Scaling: adapter}, nil
}

// Product looks up a catalog entry.
func (r *Registry) Product(name string) (models.Product, bool) {
	p, ok := r.products[name]
	return p, ok
}

// Bundle returns the artifacts for name, or ErrUnknownProduct / ErrModelUnavailable.
func (r *Registry) Bundle(name string) (*Bundle, error) {
	if _, ok := r.products[name]; !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownProduct, name)
	}
	b, ok := r.bundles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrModelUnavailable, name)
	}
	return b, nil
}

// Products lists the catalog in configured order.
func (r *Registry) Products() []models.Product {
	out := make([]models.Product, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.products[n])
	}
	return out
}

func (r *Registry) Available(name string) bool {
	_, ok := r.bundles[name]
	return ok
}
