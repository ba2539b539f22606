package catalog

import (
	"context"
	"sync"

	"github.com/asaskevich/EventBus"
	"github.com/britishfeed/feedstore/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PublicView serves the storefront read path from a memoised snapshot.
// The snapshot is dropped whenever the store publishes TopicChanged.
type PublicView struct {
	store *Store
	group singleflight.Group

	mu       sync.RWMutex
	snapshot []domain.Product
	valid    bool
	gen      uint64
}

func NewPublicView(store *Store, bus EventBus.Bus) *PublicView {
	v := &PublicView{store: store}
	if bus != nil {
		if err := bus.Subscribe(TopicChanged, v.invalidate); err != nil {
			zap.L().Warn("public catalog cache not subscribed", zap.String("namespace", "catalog"), zap.Error(err))
		}
	}
	return v
}

func (v *PublicView) invalidate(version int64) {
	v.mu.Lock()
	v.valid = false
	v.snapshot = nil
	v.gen++
	v.mu.Unlock()
}

// Products returns a private copy of the catalog; concurrent misses share a
// single backend read that outlives any one caller's cancellation.
func (v *PublicView) Products(ctx context.Context) ([]domain.Product, error) {
	v.mu.RLock()
	if v.valid {
		out := cloneProducts(v.snapshot)
		v.mu.RUnlock()
		return out, nil
	}
	gen := v.gen
	v.mu.RUnlock()

	res, err, _ := v.group.Do("catalog", func() (interface{}, error) {
		products, err := v.store.GetAll(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		v.mu.Lock()
		// a write landed while loading; serve this read but do not cache it
		if v.gen == gen {
			v.snapshot = products
			v.valid = true
		}
		v.mu.Unlock()
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneProducts(res.([]domain.Product)), nil
}

func cloneProducts(src []domain.Product) []domain.Product {
	out := make([]domain.Product, len(src))
	copy(out, src)
	for i := range out {
		if out[i].Features != nil {
			out[i].Features = append([]string(nil), out[i].Features...)
		}
	}
	return out
}

// Search delegates prefix lookups to the store.
func (v *PublicView) Search(ctx context.Context, prefix string, limit int) ([]domain.Product, error) {
	return v.store.SearchPrefix(ctx, prefix, limit)
}
