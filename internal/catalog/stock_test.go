package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/shopcart/internal/domain"
)

func TestTotalStockAndLevel(t *testing.T) {
	c := newTestCatalog(t)
	assert.Equal(t, 110, c.TotalStock())
	assert.Equal(t, StockNormal, c.StockLevel())

	require.NoError(t, c.Reserve("p1", 50))
	require.NoError(t, c.Reserve("p2", 20))
	assert.Equal(t, 40, c.TotalStock())
	assert.Equal(t, StockLow, c.StockLevel())

	require.NoError(t, c.Reserve("p3", 20))
	assert.Equal(t, StockCritical, c.StockLevel())
}

func TestStockNotices(t *testing.T) {
	c := newTestCatalog(t)
	require.NoError(t, c.Reserve("p5", 7))

	assert.Equal(t, []string{
		"Laptop pouch: sold out",
		"Lo-Fi speaker: low stock (3 left)",
	}, c.StockNotices())
}

func TestCustomThresholds(t *testing.T) {
	c, err := New([]domain.Product{{ID: "x", Name: "X", Stock: 8}},
		WithThresholds(StockThresholds{Warning: 10, Critical: 5, Item: 9}))
	require.NoError(t, err)
	assert.Equal(t, StockLow, c.StockLevel())
	assert.Equal(t, []string{"X: low stock (8 left)"}, c.StockNotices())
}
