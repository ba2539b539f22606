package catalog

import (
	"context"
	"strings"

	"github.com/britishfeed/feedstore/internal/domain"
	"github.com/google/btree"
	"github.com/pkg/errors"
	"golang.org/x/text/cases"
)

type nameItem struct {
	folded string
	id     int64
	pos    int
}

func lessName(a, b nameItem) bool {
	if a.folded != b.folded {
		return a.folded < b.folded
	}
	return a.id < b.id
}

// nameIndex orders products by case-folded name. It is rebuilt from the
// document on every call and never persisted.
type nameIndex struct {
	tree     *btree.BTreeG[nameItem]
	products []domain.Product
	fold     cases.Caser
}

func buildNameIndex(products []domain.Product) *nameIndex {
	idx := &nameIndex{
		tree:     btree.NewG[nameItem](16, lessName),
		products: products,
		fold:     cases.Fold(),
	}
	for i, p := range products {
		idx.tree.ReplaceOrInsert(nameItem{folded: idx.key(p.Name), id: p.ID, pos: i})
	}
	return idx
}

func (idx *nameIndex) key(name string) string {
	return idx.fold.String(strings.Join(strings.Fields(name), " "))
}

func (idx *nameIndex) prefix(prefix string, limit int) []domain.Product {
	want := idx.key(prefix)
	out := []domain.Product{}
	idx.tree.AscendGreaterOrEqual(nameItem{folded: want}, func(it nameItem) bool {
		if !strings.HasPrefix(it.folded, want) {
			return false
		}
		out = append(out, idx.products[it.pos])
		return limit <= 0 || len(out) < limit
	})
	return out
}

// Find returns the product whose name matches case-insensitively, lowest id first.
func (s *Store) Find(ctx context.Context, name string) (domain.Product, error) {
	products, err := s.GetAll(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	idx := buildNameIndex(products)
	want := idx.key(name)
	var (
		found domain.Product
		ok    bool
	)
	idx.tree.AscendGreaterOrEqual(nameItem{folded: want}, func(it nameItem) bool {
		if it.folded == want {
			found, ok = idx.products[it.pos], true
		}
		return false
	})
	if !ok || want == "" {
		return domain.Product{}, errors.Wrapf(domain.ErrNotFound, "product %q", name)
	}
	return found, nil
}

// SearchPrefix lists products whose name starts with prefix, in name order.
// A limit of zero or less returns every match.
func (s *Store) SearchPrefix(ctx context.Context, prefix string, limit int) ([]domain.Product, error) {
	products, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return buildNameIndex(products).prefix(prefix, limit), nil
}
