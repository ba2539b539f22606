// Package metrics records application counters and gauges as tstorage time series.
package metrics

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nakabonne/tstorage"
	"github.com/pkg/errors"
)

// Metric names written by the application.
const (
	CatalogWrites    = "catalog_writes"
	ImageUploads     = "image_uploads"
	ChatRequests     = "chat_requests"
	ChatDegraded     = "chat_degraded"
	InquiriesTotal   = "inquiries_total"
	OrphanImages     = "orphan_images"
	StoredImages     = "stored_images"
	CatalogProducts  = "catalog_products"
	RecommendQueries = "recommend_queries"
	SystemCPU        = "system_cpuuse"
	SystemMem        = "system_memuse"
	ProcessCPU       = "feedstore_cpuuse"
	ProcessMem       = "feedstore_memuse"
)

// Point one sample.
type Point struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

var (
	mu       sync.RWMutex
	storage  tstorage.Storage
	counters sync.Map
)

// InitMetrics opens the series store under workdir/data/metrics. An empty
// workdir keeps series in memory only.
func InitMetrics(workdir string) error {
	opts := []tstorage.Option{
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithPartitionDuration(6 * time.Hour),
		tstorage.WithRetention(30 * 24 * time.Hour),
	}
	if workdir != "" {
		opts = append(opts, tstorage.WithDataPath(filepath.Join(workdir, "data", "metrics")))
	}
	s, err := tstorage.NewStorage(opts...)
	if err != nil {
		return errors.Wrap(err, "open metrics storage")
	}
	mu.Lock()
	old := storage
	storage = s
	mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	return nil
}

func insert(name string, v float64) {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return
	}
	_ = storage.InsertRows([]tstorage.Row{{
		Metric:    name,
		DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: v},
	}})
}

// SetGauge records the current value of name.
func SetGauge(name string, v int64) {
	insert(name, float64(v))
}

// Incr adds delta to the process-lifetime counter name and records the new total.
func Incr(name string, delta int64) int64 {
	c, _ := counters.LoadOrStore(name, new(atomic.Int64))
	total := c.(*atomic.Int64).Add(delta)
	insert(name, float64(total))
	return total
}

// Counter returns the current total of name.
func Counter(name string) int64 {
	c, ok := counters.Load(name)
	if !ok {
		return 0
	}
	return c.(*atomic.Int64).Load()
}

// Query returns samples of name between from and to (unix seconds, to exclusive).
func Query(name string, from, to int64) ([]Point, error) {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return []Point{}, nil
	}
	pts, err := storage.Select(name, nil, from, to)
	if errors.Is(err, tstorage.ErrNoDataPoints) {
		return []Point{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", name)
	}
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		out = append(out, Point{Timestamp: p.Timestamp, Value: p.Value})
	}
	return out, nil
}

// Close flushes and closes the series store.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
