package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductJSONImageUnion(t *testing.T) {
	t.Run("url image", func(t *testing.T) {
		var p Product
		require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"Hay","imageUrl":"https://cdn.example/hay.jpg"}`), &p))
		assert.Equal(t, ImageURL, p.Image.Kind())
		assert.Equal(t, "https://cdn.example/hay.jpg", p.Image.URL())
		assert.Empty(t, p.Image.BlobKey())
	})

	t.Run("key wins over url", func(t *testing.T) {
		var p Product
		require.NoError(t, json.Unmarshal([]byte(`{"name":"Hay","imageUrl":"https://x/y.jpg","imageKey":"img_7"}`), &p))
		assert.Equal(t, ImageBlob, p.Image.Kind())
		assert.Equal(t, "img_7", p.Image.BlobKey())
		assert.Empty(t, p.Image.URL())
	})

	t.Run("own serving url becomes blob key", func(t *testing.T) {
		var p Product
		require.NoError(t, json.Unmarshal([]byte(`{"name":"Hay","imageUrl":"/admin/api/catalog/image/img_12"}`), &p))
		assert.Equal(t, "img_12", p.Image.BlobKey())
	})

	t.Run("marshal emits one image field", func(t *testing.T) {
		p := Product{ID: 3, Name: "Bedding", InStock: true, Image: BlobImage("img_3")}
		raw, err := json.Marshal(p)
		require.NoError(t, err)
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &m))
		assert.Equal(t, "img_3", m["imageKey"])
		assert.NotContains(t, m, "imageUrl")
		assert.Equal(t, true, m["inStock"])
		assert.Equal(t, []interface{}{}, m["features"])
	})
}

func TestProductInStockDefaultsTrue(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Oats"}`), &p))
	assert.True(t, p.InStock)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"Oats","inStock":false}`), &p))
	assert.False(t, p.InStock)
}

func TestProductValidate(t *testing.T) {
	assert.True(t, errors.Is((&Product{Name: " "}).Validate(), ErrInvalidInput))
	assert.True(t, errors.Is((&Product{Name: "A", Price: -1}).Validate(), ErrInvalidInput))
	assert.True(t, errors.Is((&Product{Name: "A", Features: []string{"a;b"}}).Validate(), ErrInvalidInput))
	assert.NoError(t, (&Product{Name: "A", Price: 0}).Validate())
}

func TestProductPatchApply(t *testing.T) {
	p := Product{ID: 9, Name: "Old", Price: 10, InStock: true, Image: URLImage("https://a/b.png"), AvailabilityNote: AvailabilityNote}

	empty := ProductPatch{}
	assert.True(t, empty.IsEmpty())
	before := p
	empty.Apply(&p)
	assert.Equal(t, before, p)

	name := "New"
	price := 12.5
	key := "img_9"
	ProductPatch{Name: &name, Price: &price, ImageKey: &key}.Apply(&p)
	assert.Equal(t, int64(9), p.ID)
	assert.Equal(t, "New", p.Name)
	assert.Equal(t, 12.5, p.Price)
	assert.Equal(t, "img_9", p.Image.BlobKey())
	assert.Equal(t, AvailabilityNote, p.AvailabilityNote)

	none := ""
	ProductPatch{ImageURL: &none}.Apply(&p)
	assert.True(t, p.Image.IsZero())
}
