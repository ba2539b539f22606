// Package catalog persists the product collection as a single document in the key-value primitive.
package catalog

import (
	"context"
	"strings"

	"github.com/asaskevich/EventBus"
	"github.com/britishfeed/feedstore/internal/domain"
	"github.com/britishfeed/feedstore/internal/kv"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// DocumentKey is the key the catalog document lives under.
const DocumentKey = "catalog_products"

// TopicChanged is published on the bus after every successful write.
const TopicChanged = "catalog:changed"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// document is the persisted shape. LastID is the id high-water mark.
type document struct {
	Version  int64            `json:"version"`
	LastID   int64            `json:"lastId"`
	Products []domain.Product `json:"products"`
}

func (d *document) nextID() int64 {
	high := d.LastID
	for _, p := range d.Products {
		if p.ID > high {
			high = p.ID
		}
	}
	return high + 1
}

func (d *document) indexOf(id int64) int {
	if id <= 0 {
		return -1
	}
	for i := range d.Products {
		if d.Products[i].ID == id {
			return i
		}
	}
	return -1
}

// Store is the catalog repository. It holds no state between calls; the
// stored document is the only source of truth.
type Store struct {
	kv  kv.Store
	bus EventBus.Bus
}

type Option func(*Store)

// WithBus publishes TopicChanged on bus after each write.
func WithBus(bus EventBus.Bus) Option {
	return func(s *Store) { s.bus = bus }
}

func NewStore(store kv.Store, opts ...Option) *Store {
	s := &Store{kv: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) load(ctx context.Context) (*document, error) {
	raw, ok, err := s.kv.Get(ctx, DocumentKey)
	if err != nil {
		return nil, err
	}
	doc := &document{Products: []domain.Product{}}
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" || raw == "null" {
		return doc, nil
	}
	if strings.HasPrefix(raw, "[") {
		if err := json.UnmarshalFromString(raw, &doc.Products); err != nil {
			return nil, errors.Wrapf(domain.ErrCorrupt, "catalog document: %v", err)
		}
	} else if err := json.UnmarshalFromString(raw, doc); err != nil {
		return nil, errors.Wrapf(domain.ErrCorrupt, "catalog document: %v", err)
	}
	if doc.Products == nil {
		doc.Products = []domain.Product{}
	}
	return doc, nil
}

func (s *Store) save(ctx context.Context, doc *document) error {
	doc.Version++
	for _, p := range doc.Products {
		if p.ID > doc.LastID {
			doc.LastID = p.ID
		}
	}
	raw, err := json.MarshalToString(doc)
	if err != nil {
		return errors.Wrap(err, "encode catalog document")
	}
	if err := s.kv.Put(ctx, DocumentKey, raw); err != nil {
		return err
	}
	if s.bus != nil {
		s.bus.Publish(TopicChanged, doc.Version)
	}
	return nil
}

// GetAll returns the full collection in stored order; empty when nothing was stored yet.
func (s *Store) GetAll(ctx context.Context) ([]domain.Product, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Products, nil
}

// HighWaterMark returns the largest id ever allocated.
func (s *Store) HighWaterMark(ctx context.Context) (int64, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return doc.nextID() - 1, nil
}

// ReplaceAll overwrites the collection in a single write. Records without an id
// get one; duplicate ids are rejected. The availability note is server owned:
// known ids keep the stored note, every other record gets the default.
func (s *Store) ReplaceAll(ctx context.Context, products []domain.Product) ([]domain.Product, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	next := &document{Version: doc.Version, LastID: doc.nextID() - 1, Products: make([]domain.Product, 0, len(products))}
	seen := make(map[int64]bool, len(products))
	for i := range products {
		p := products[i]
		p.Normalize()
		if err := p.Validate(); err != nil {
			return nil, errors.WithMessagef(err, "product #%d", i+1)
		}
		if p.ID > 0 {
			if seen[p.ID] {
				return nil, errors.Wrapf(domain.ErrInvalidInput, "duplicate product id %d", p.ID)
			}
			seen[p.ID] = true
		}
		next.Products = append(next.Products, p)
	}
	for _, p := range next.Products {
		if p.ID > next.LastID {
			next.LastID = p.ID
		}
	}
	for i := range next.Products {
		p := &next.Products[i]
		if p.ID <= 0 {
			next.LastID++
			p.ID = next.LastID
		}
		if idx := doc.indexOf(p.ID); idx >= 0 {
			p.AvailabilityNote = doc.Products[idx].AvailabilityNote
		} else {
			p.AvailabilityNote = domain.AvailabilityNote
		}
	}
	if err := s.save(ctx, next); err != nil {
		return nil, err
	}
	zap.L().Info("catalog replaced",
		zap.String("namespace", "catalog"),
		zap.Int("count", len(next.Products)),
		zap.Int64("version", next.Version))
	return next.Products, nil
}

// Upsert appends p with a fresh id when its id is unset or unknown, otherwise
// replaces the stored record in place keeping its id and availability note.
func (s *Store) Upsert(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}
	doc, err := s.load(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	if idx := doc.indexOf(p.ID); idx >= 0 {
		p.AvailabilityNote = doc.Products[idx].AvailabilityNote
		doc.Products[idx] = p
	} else {
		p.ID = doc.nextID()
		p.AvailabilityNote = domain.AvailabilityNote
		doc.Products = append(doc.Products, p)
	}
	if err := s.save(ctx, doc); err != nil {
		return domain.Product{}, err
	}
	zap.L().Info("catalog product saved",
		zap.String("namespace", "catalog"),
		zap.Int64("id", p.ID),
		zap.String("name", p.Name))
	return p, nil
}

// Patch merges the supplied fields into the record at id. An empty patch writes nothing.
func (s *Store) Patch(ctx context.Context, id int64, patch domain.ProductPatch) (domain.Product, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	idx := doc.indexOf(id)
	if idx < 0 {
		return domain.Product{}, errors.Wrapf(domain.ErrNotFound, "product %d", id)
	}
	if patch.IsEmpty() {
		return doc.Products[idx], nil
	}
	p := doc.Products[idx]
	patch.Apply(&p)
	p.Normalize()
	if err := p.Validate(); err != nil {
		return domain.Product{}, err
	}
	doc.Products[idx] = p
	if err := s.save(ctx, doc); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// Delete removes the record at id. Blobs it referenced are left in place.
func (s *Store) Delete(ctx context.Context, id int64) error {
	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	idx := doc.indexOf(id)
	if idx < 0 {
		return errors.Wrapf(domain.ErrNotFound, "product %d", id)
	}
	doc.LastID = doc.nextID() - 1
	doc.Products = append(doc.Products[:idx], doc.Products[idx+1:]...)
	if err := s.save(ctx, doc); err != nil {
		return err
	}
	zap.L().Info("catalog product deleted",
		zap.String("namespace", "catalog"),
		zap.Int64("id", id))
	return nil
}
