package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/asaskevich/EventBus"
	"github.com/britishfeed/feedstore/internal/domain"
	"github.com/britishfeed/feedstore/internal/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *kv.MemoryStore) {
	t.Helper()
	mem := kv.NewMemoryStore()
	return NewStore(mem), mem
}

func strPtr(s string) *string { return &s }

func TestGetAllEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	products, err := s.GetAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Len(t, products, 0)
}

func TestUpsertAllocatesIDs(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	a, err := s.Upsert(ctx, domain.Product{Name: "SafeChoice Senior", Price: 28.5, InStock: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, domain.AvailabilityNote, a.AvailabilityNote)

	b, err := s.Upsert(ctx, domain.Product{ID: 99, Name: "Timothy Hay"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.ID, "unknown ids are treated as new records")

	a.Price = 30
	a.AvailabilityNote = "edited"
	updated, err := s.Upsert(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.ID)
	assert.Equal(t, 30.0, updated.Price)
	assert.Equal(t, domain.AvailabilityNote, updated.AvailabilityNote)

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "SafeChoice Senior", all[0].Name)
}

func TestIDsNeverReused(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	for _, n := range []string{"A", "B", "C"} {
		_, err := s.Upsert(ctx, domain.Product{Name: n})
		require.NoError(t, err)
	}
	require.NoError(t, s.Delete(ctx, 3))

	d, err := s.Upsert(ctx, domain.Product{Name: "D"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), d.ID)

	high, err := s.HighWaterMark(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), high)
}

func TestLegacyArrayDocument(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	require.NoError(t, mem.Put(ctx, DocumentKey,
		`[{"id":5,"name":"Alfalfa","category":"Hay","price":24,"imageUrl":"/admin/api/catalog/image/img_5"}]`))

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].InStock)
	assert.Equal(t, "img_5", all[0].Image.BlobKey())

	p, err := s.Upsert(ctx, domain.Product{Name: "Orchard"})
	require.NoError(t, err)
	assert.Equal(t, int64(6), p.ID)
}

func TestCorruptDocument(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	require.NoError(t, mem.Put(ctx, DocumentKey, `{"products": [`))

	_, err := s.GetAll(ctx)
	assert.True(t, errors.Is(err, domain.ErrCorrupt))
}

func TestPatch(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	p, err := s.Upsert(ctx, domain.Product{Name: "Bronchix Pure", Price: 45})
	require.NoError(t, err)

	before, _, _ := mem.Get(ctx, DocumentKey)
	same, err := s.Patch(ctx, p.ID, domain.ProductPatch{})
	require.NoError(t, err)
	assert.Equal(t, p, same)
	after, _, _ := mem.Get(ctx, DocumentKey)
	assert.Equal(t, before, after, "empty patch must not write")

	patched, err := s.Patch(ctx, p.ID, domain.ProductPatch{Vendor: strPtr("Cavalor")})
	require.NoError(t, err)
	assert.Equal(t, "Cavalor", patched.Vendor)
	assert.Equal(t, 45.0, patched.Price)

	_, err = s.Patch(ctx, 404, domain.ProductPatch{Vendor: strPtr("x")})
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = s.Patch(ctx, p.ID, domain.ProductPatch{Name: strPtr("  ")})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	p, err := s.Upsert(ctx, domain.Product{Name: "Sand Clear"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, p.ID))
	err = s.Delete(ctx, p.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestReplaceAll(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	_, err := s.Upsert(ctx, domain.Product{Name: "Old"})
	require.NoError(t, err)

	out, err := s.ReplaceAll(ctx, []domain.Product{
		{ID: 7, Name: "Kept"},
		{Name: "Fresh"},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int64(8), out[1].ID)
	assert.Equal(t, domain.AvailabilityNote, out[1].AvailabilityNote)

	_, err = s.ReplaceAll(ctx, []domain.Product{{ID: 1, Name: "a"}, {ID: 1, Name: "b"}})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = s.ReplaceAll(ctx, []domain.Product{{Name: "neg", Price: -1}})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2, "failed replace leaves the prior collection intact")
}

func TestReplaceAllOwnsAvailabilityNote(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	require.NoError(t, mem.Put(ctx, DocumentKey,
		`[{"id":1,"name":"Coastal Hay","availabilityNote":"Seasonal stock"}]`))

	out, err := s.ReplaceAll(ctx, []domain.Product{
		{ID: 1, Name: "Coastal Hay", AvailabilityNote: "free today!"},
		{ID: 50, Name: "Beet Pulp", AvailabilityNote: ""},
		{Name: "Oats", AvailabilityNote: "half price"},
	})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "Seasonal stock", out[0].AvailabilityNote)
	assert.Equal(t, domain.AvailabilityNote, out[1].AvailabilityNote)
	assert.Equal(t, domain.AvailabilityNote, out[2].AvailabilityNote)

	stored, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, "Seasonal stock", stored[0].AvailabilityNote)
	assert.Equal(t, domain.AvailabilityNote, stored[1].AvailabilityNote)
}

func TestEmptyDocumentEncodesAsArray(t *testing.T) {
	s, _ := newTestStore(t)
	products, err := s.GetAll(context.Background())
	require.NoError(t, err)
	raw, err := json.Marshal(products)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestBackingStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	mem.FailWith = errors.New("timeout")

	_, err := s.GetAll(ctx)
	assert.True(t, errors.Is(err, domain.ErrBackingStoreUnavailable))
	_, err = s.Upsert(ctx, domain.Product{Name: "x"})
	assert.True(t, errors.Is(err, domain.ErrBackingStoreUnavailable))
}

func TestPublishesChanges(t *testing.T) {
	ctx := context.Background()
	bus := EventBus.New()
	var versions []int64
	require.NoError(t, bus.Subscribe(TopicChanged, func(v int64) { versions = append(versions, v) }))

	s := NewStore(kv.NewMemoryStore(), WithBus(bus))
	p, err := s.Upsert(ctx, domain.Product{Name: "A"})
	require.NoError(t, err)
	_, err = s.Patch(ctx, p.ID, domain.ProductPatch{})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, p.ID))

	assert.Equal(t, []int64{1, 2}, versions)
}

func TestBoltBacked(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.bolt")
	b, err := kv.NewBoltStore(path)
	require.NoError(t, err)

	s := NewStore(b)
	_, err = s.Upsert(ctx, domain.Product{Name: "Peanut Hay", Features: []string{"high protein", " "}})
	require.NoError(t, err)
	require.NoError(t, b.Close())

	b, err = kv.NewBoltStore(path)
	require.NoError(t, err)
	defer b.Close()
	all, err := NewStore(b).GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, []string{"high protein"}, all[0].Features)
}
