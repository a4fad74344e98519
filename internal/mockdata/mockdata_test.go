package mockdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundledCatalogLoads(t *testing.T) {
	products, err := Products()
	require.NoError(t, err)
	require.NotEmpty(t, products)

	for _, p := range products {
		assert.NotEmpty(t, p.ID)
		assert.NotEmpty(t, p.VariantID)
		assert.NotEmpty(t, p.Title)
		assert.True(t, p.Price.IsPositive(), "%s has no price", p.Title)
		assert.False(t, p.CreatedAt.IsZero())
	}
}

func TestBundledCollections(t *testing.T) {
	collections, err := Collections()
	require.NoError(t, err)
	require.Len(t, collections, 3)

	handles := make(map[string]bool)
	for _, c := range collections {
		handles[c.Handle] = true
		assert.NotEmpty(t, c.Title)
	}
	assert.True(t, handles["pokemon"])
}

func TestCollectionProductsFiltered(t *testing.T) {
	products, err := CollectionProducts("pokemon")
	require.NoError(t, err)
	require.NotEmpty(t, products)

	all, err := Products()
	require.NoError(t, err)
	assert.Less(t, len(products), len(all))
}

func TestCollectionProductsUnknownHandle(t *testing.T) {
	products, err := CollectionProducts("no-such-collection")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestIsMockID(t *testing.T) {
	assert.True(t, IsMockID("mock_1"))
	assert.False(t, IsMockID("gid://shopify/Product/123"))
	assert.False(t, IsMockID(""))

	products, err := Products()
	require.NoError(t, err)
	assert.True(t, IsMockID(products[0].VariantID), "bundled variant ids must be recognized")
}
