package repository

import (
	"context"
	"fmt"
	"time"

	"SalesCast/internal/domain/models"
	domrepo "SalesCast/internal/domain/repository"
	applogger "SalesCast/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGTransactionSource reads daily sale totals from the bookkeeping database in PostgreSQL.
type PGTransactionSource struct {
	pool          *pgxpool.Pool
	lookbackWeeks int
	l             *applogger.Logger
}

func NewPGTransactionSource(pool *pgxpool.Pool) *PGTransactionSource {
	return &PGTransactionSource{pool: pool}
}

func (s *PGTransactionSource) SetLogger(l *applogger.Logger) { s.l = l }

func (s *PGTransactionSource) SetLookback(weeks int) { s.lookbackWeeks = weeks }

func (s *PGTransactionSource) Query(ctx context.Context, product string, upTo time.Time) ([]models.TransactionRecord, error) {
	start := time.Now()
	rows, err := s.pool.Query(ctx,
		`SELECT t1.tanggal::date AS d, SUM(t1.jumlah)::float8 AS qty
		 FROM audit_data t1
		 JOIN produk t2 ON t1.produk_id = t2.id
		 WHERE t2.nama_produk = $1 AND t1.jenis_transaksi = $2
		   AND t1.tanggal::date <= $3::date AND t1.tanggal::date >= $4::date
		 GROUP BY 1
		 ORDER BY 1`,
		product, SaleTransactionType, upTo, lookbackStart(upTo, s.lookbackWeeks))
	if err != nil {
		if s.l != nil {
			s.l.Error("postgres transactions query error",
				applogger.String("product", product),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []models.TransactionRecord
	for rows.Next() {
		var rec models.TransactionRecord
		if err := rows.Scan(&rec.Date, &rec.Quantity); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("postgres transactions ok",
			applogger.String("product", product),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

var _ domrepo.TransactionSource = (*PGTransactionSource)(nil)
