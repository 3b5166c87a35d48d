package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"SalesCast/internal/domain/models"
	domrepo "SalesCast/internal/domain/repository"
	pkgch "SalesCast/pkg/clickhouse"
	applogger "SalesCast/pkg/logger"
	"SalesCast/pkg/util"
)

// SaleTransactionType is the audit row type counted as a sale.
const SaleTransactionType = models.SaleTransactionType

// CHTransactionSource reads daily sale totals from the bookkeeping tables in ClickHouse.
type CHTransactionSource struct {
	db            *sql.DB
	database      string
	lookbackWeeks int
	l             *applogger.Logger
}

func NewCHTransactionSource(ch *pkgch.Client) *CHTransactionSource {
	return &CHTransactionSource{db: ch.DB(), database: ch.Database()}
}

// SetLogger injects a structured logger.
func (s *CHTransactionSource) SetLogger(l *applogger.Logger) { s.l = l }

// SetLookback limits queries to the given number of weeks before upTo. 0 reads everything.
func (s *CHTransactionSource) SetLookback(weeks int) { s.lookbackWeeks = weeks }

// SchemaStatements returns idempotent DDL for the tables this source reads.
func SchemaStatements(database string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.produk (
            id UInt32, nama_produk String, harga Decimal(12, 2)
        ) ENGINE = MergeTree ORDER BY id`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.audit_data (
            id UInt64, produk_id UInt32, tanggal DateTime, jumlah Int32, jenis_transaksi LowCardinality(String)
        ) ENGINE = MergeTree ORDER BY (produk_id, tanggal)`, database),
	}
}

func (s *CHTransactionSource) Query(ctx context.Context, product string, upTo time.Time) ([]models.TransactionRecord, error) {
	start := time.Now()
	const qtpl = `
        SELECT toDate(t1.tanggal) AS d, toFloat64(sum(t1.jumlah)) AS qty
        FROM %[1]s.audit_data AS t1
        INNER JOIN %[1]s.produk AS t2 ON t1.produk_id = t2.id
        WHERE t2.nama_produk = ? AND t1.jenis_transaksi = ?
          AND toDate(t1.tanggal) <= toDate(?) AND toDate(t1.tanggal) >= toDate(?)
        GROUP BY d
        ORDER BY d ASC
    `
	q := fmt.Sprintf(qtpl, s.database)
	from := lookbackStart(upTo, s.lookbackWeeks)

	rows, err := s.db.QueryContext(ctx, q, product, SaleTransactionType, upTo, from)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse transactions query error",
				applogger.String("product", product),
				applogger.String("up_to", upTo.Format(time.DateOnly)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := make([]models.TransactionRecord, 0, 256)
	for rows.Next() {
		var rec models.TransactionRecord
		if err := rows.Scan(&rec.Date, &rec.Quantity); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse transactions scan error",
					applogger.String("product", product),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse transactions rows error",
				applogger.String("product", product),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse transactions ok",
			applogger.String("product", product),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

// lookbackStart returns the Tuesday opening the oldest of the last `weeks`
// audit weeks up to upTo, so no week is read partially. Zero weeks maps to the epoch.
func lookbackStart(upTo time.Time, weeks int) time.Time {
	if weeks <= 0 {
		return time.Unix(0, 0).UTC()
	}
	return util.WeekEnding(upTo).AddDate(0, 0, -7*weeks+1)
}

var _ domrepo.TransactionSource = (*CHTransactionSource)(nil)
