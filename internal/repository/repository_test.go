package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"SalesCast/internal/domain/models"
	"SalesCast/internal/services/features"
	pkgkafka "SalesCast/pkg/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestMemoryTransactionSourceQuery(t *testing.T) {
	s := NewMemoryTransactionSource()
	s.Add("Stik Bawang",
		models.TransactionRecord{Date: d(2024, 1, 9), Quantity: 2},
		models.TransactionRecord{Date: d(2024, 1, 2), Quantity: 1},
		models.TransactionRecord{Date: time.Date(2024, 1, 15, 22, 0, 0, 0, time.UTC), Quantity: 3},
		models.TransactionRecord{Date: d(2024, 1, 16), Quantity: 4},
	)
	s.Add("Kerupuk Kulit", models.TransactionRecord{Date: d(2024, 1, 2), Quantity: 9})

	got, err := s.Query(context.Background(), "Stik Bawang", d(2024, 1, 15))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, d(2024, 1, 2), got[0].Date)
	assert.Equal(t, d(2024, 1, 9), got[1].Date)
	assert.Equal(t, 3.0, got[2].Quantity)

	none, err := s.Query(context.Background(), "Keripik Bawang", d(2024, 1, 15))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryTransactionSourceHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryTransactionSource().Query(ctx, "x", time.Now())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadSeedCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.csv")
	body := "produk,tanggal,jumlah,jenis_transaksi\n" +
		"Kerupuk Kulit,2024-01-02,5,penjualan\n" +
		"Kerupuk Kulit,2024-01-03,50,pembelian\n" +
		"Stik Bawang,2024-01-04,7\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	s := NewMemoryTransactionSource()
	n, err := s.LoadSeedCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.Query(context.Background(), "Kerupuk Kulit", d(2024, 2, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 5.0, got[0].Quantity)
}

func TestLoadSeedCSVRejectsBadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,2024-01-01,1\nb,yesterday,2\n"), 0o600))
	_, err := NewMemoryTransactionSource().LoadSeedCSV(path)
	assert.Error(t, err)
}

type fakeProducer struct {
	trace  string
	topic  string
	key    []byte
	value  interface{}
	closed bool
}

func (f *fakeProducer) Publish(ctx context.Context, topic string, key []byte, value interface{}) error {
	f.trace = pkgkafka.TraceIDFrom(ctx)
	f.topic, f.key, f.value = topic, key, value
	return nil
}

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisherKeysByProduct(t *testing.T) {
	fp := &fakeProducer{}
	p := NewKafkaPublisher(fp, "salescast.forecasts")
	ev := &models.ForecastGeneratedEvent{RunID: "r1", Product: "Stik Bawang"}

	require.NoError(t, p.PublishForecast(context.Background(), ev))
	assert.Equal(t, "salescast.forecasts", fp.topic)
	assert.Equal(t, []byte("Stik Bawang"), fp.key)
	assert.Same(t, ev, fp.value)
	assert.Equal(t, "r1", fp.trace)

	require.NoError(t, p.PublishMessage(context.Background(), "salescast.logs", []string{"x"}))
	assert.Equal(t, "salescast.logs", fp.topic)
	assert.Nil(t, fp.key)

	require.NoError(t, p.Close())
	assert.True(t, fp.closed)
}

func TestLookbackStart(t *testing.T) {
	assert.Equal(t, time.Unix(0, 0).UTC(), lookbackStart(d(2024, 6, 10), 0))
	assert.Equal(t, d(2024, 5, 28), lookbackStart(d(2024, 6, 10), 2))
	assert.Equal(t, time.Tuesday, lookbackStart(d(2024, 6, 10), 4).Weekday())
	// mid-week upTo still starts on the Tuesday of a whole week
	assert.Equal(t, d(2024, 6, 4), lookbackStart(d(2024, 6, 12), 2))
}

func TestLookbackKeepsPriorWeekWhole(t *testing.T) {
	cutoff := d(2024, 6, 10)
	from := lookbackStart(cutoff, 4)

	var recs []models.TransactionRecord
	for day := from; !day.After(cutoff); day = day.AddDate(0, 0, 1) {
		recs = append(recs, models.TransactionRecord{Date: day, Quantity: 10})
	}
	require.Len(t, recs, 28)

	buckets := features.Aggregate(recs, 0, cutoff, nil)
	require.Len(t, buckets, 3)
	for _, b := range buckets {
		assert.Equal(t, 70.0, b.Quantity, b.WeekEnding)
		assert.Equal(t, 70.0, b.PriorWeekQuantity, b.WeekEnding)
	}
}
