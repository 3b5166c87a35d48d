package models

import "time"

// SaleTransactionType is the audit row type (jenis_transaksi) counted as a sale.
const SaleTransactionType = "penjualan"

// ForecastGeneratedEvent is published after every successful forecast run.
type ForecastGeneratedEvent struct {
	RunID       string               `json:"run_id"`
	Product     string               `json:"product"`
	Steps       int                  `json:"steps"`
	Cutoff      time.Time            `json:"cutoff"`
	GeneratedAt time.Time            `json:"generated_at"`
	Forecast    []ForecastEventPoint `json:"forecast"`
}

type ForecastEventPoint struct {
	Date     string `json:"date"`
	Quantity int64  `json:"quantity"`
	Revenue  int64  `json:"revenue"`
}

// AuditChangeEvent is emitted by the bookkeeping system whenever audit rows change.
type AuditChangeEvent struct {
	Product string    `json:"product"`
	Type    string    `json:"type"`
	Date    time.Time `json:"date"`
}
