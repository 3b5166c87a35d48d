package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"SalesCast/internal/domain/models"
	domrepo "SalesCast/internal/domain/repository"
	"SalesCast/pkg/util"
)

// MemoryTransactionSource keeps sale records in memory. Used for demos and tests.
type MemoryTransactionSource struct {
	mu   sync.RWMutex
	data map[string][]models.TransactionRecord
}

func NewMemoryTransactionSource() *MemoryTransactionSource {
	return &MemoryTransactionSource{data: make(map[string][]models.TransactionRecord)}
}

// Add appends sale records for a product.
func (s *MemoryTransactionSource) Add(product string, recs ...models.TransactionRecord) {
	s.mu.Lock()
	s.data[product] = append(s.data[product], recs...)
	s.mu.Unlock()
}

func (s *MemoryTransactionSource) Query(ctx context.Context, product string, upTo time.Time) ([]models.TransactionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := util.DateOnly(upTo)

	s.mu.RLock()
	out := make([]models.TransactionRecord, 0, len(s.data[product]))
	for _, r := range s.data[product] {
		if !util.DateOnly(r.Date).After(limit) {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// LoadSeedCSV reads rows of product,date,quantity[,type]. Rows with a type
// other than the sale type are skipped. A header row is optional.
func (s *MemoryTransactionSource) LoadSeedCSV(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	n := 0
	line := 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return n, fmt.Errorf("seed line %d: %w", line, err)
		}
		if len(rec) < 3 {
			return n, fmt.Errorf("seed line %d: want product,date,quantity", line)
		}
		if len(rec) > 3 && rec[3] != "" && rec[3] != SaleTransactionType {
			continue
		}
		d, derr := time.Parse(util.DateLayout, strings.TrimSpace(rec[1]))
		q, qerr := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if derr != nil || qerr != nil {
			if line == 1 {
				continue // header
			}
			return n, fmt.Errorf("seed line %d: bad date or quantity", line)
		}
		s.Add(strings.TrimSpace(rec[0]), models.TransactionRecord{Date: d, Quantity: q})
		n++
	}
	return n, nil
}

var _ domrepo.TransactionSource = (*MemoryTransactionSource)(nil)
