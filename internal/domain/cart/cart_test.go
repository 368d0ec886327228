package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sunset() Product {
	return Product{
		ID:       "1",
		Title:    "Mountain Sunset",
		Price:    decimal.NewFromFloat(49.99),
		ImageURL: "/paintings/sunset.jpg",
	}
}

func ocean() Product {
	return Product{
		ID:       "2",
		Title:    "Abstract Ocean",
		Price:    decimal.NewFromFloat(79.99),
		ImageURL: "/paintings/ocean.jpg",
	}
}

func TestCart_AddItem(t *testing.T) {
	t.Run("appends new line with quantity 1", func(t *testing.T) {
		c := &Cart{}
		outcome := c.AddItem(sunset())

		assert.Equal(t, Added, outcome)
		require.Equal(t, 1, c.Len())
		item := c.Items()[0]
		assert.Equal(t, "1", item.ID)
		assert.Equal(t, "Mountain Sunset", item.Title)
		assert.Equal(t, "/paintings/sunset.jpg", item.ImageURL)
		assert.Equal(t, 1, item.Quantity)
	})

	t.Run("repeated adds merge into one line", func(t *testing.T) {
		c := &Cart{}
		for range 5 {
			c.AddItem(sunset())
		}

		require.Equal(t, 1, c.Len())
		assert.Equal(t, 5, c.Items()[0].Quantity)
	})

	t.Run("increase keeps position and snapshot", func(t *testing.T) {
		c := &Cart{}
		c.AddItem(sunset())
		c.AddItem(ocean())

		changed := sunset()
		changed.Title = "Renamed"
		changed.Price = decimal.NewFromInt(1)
		outcome := c.AddItem(changed)

		assert.Equal(t, Increased, outcome)
		items := c.Items()
		require.Len(t, items, 2)
		assert.Equal(t, "1", items[0].ID)
		assert.Equal(t, "Mountain Sunset", items[0].Title)
		assert.True(t, decimal.NewFromFloat(49.99).Equal(items[0].Price))
		assert.Equal(t, 2, items[0].Quantity)
		assert.Equal(t, "2", items[1].ID)
	})
}

func TestCart_DecreaseQuantity(t *testing.T) {
	t.Run("absent id is a no-op", func(t *testing.T) {
		c := &Cart{}
		c.AddItem(sunset())

		assert.False(t, c.DecreaseQuantity("missing"))
		assert.Equal(t, 1, c.TotalQuantity())
	})

	t.Run("quantity 1 removes the line", func(t *testing.T) {
		c := &Cart{}
		c.AddItem(sunset())
		c.AddItem(ocean())
		before := c.TotalQuantity()

		assert.True(t, c.DecreaseQuantity("1"))
		assert.Equal(t, before-1, c.TotalQuantity())
		_, ok := c.Item("1")
		assert.False(t, ok)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("decrements in place", func(t *testing.T) {
		c := &Cart{}
		c.AddItem(sunset())
		c.AddItem(sunset())
		c.AddItem(ocean())

		assert.True(t, c.DecreaseQuantity("1"))
		items := c.Items()
		assert.Equal(t, "1", items[0].ID)
		assert.Equal(t, 1, items[0].Quantity)
	})
}

func TestCart_Remove(t *testing.T) {
	c := &Cart{}
	c.AddItem(sunset())
	c.AddItem(sunset())
	c.AddItem(sunset())

	assert.True(t, c.Remove("1"))
	assert.False(t, c.Remove("1"))
	assert.True(t, c.IsEmpty())

	assert.Equal(t, Added, c.AddItem(sunset()))
	item, ok := c.Item("1")
	require.True(t, ok)
	assert.Equal(t, 1, item.Quantity)
}

func TestCart_Clear(t *testing.T) {
	c := &Cart{}
	c.AddItem(sunset())
	c.AddItem(ocean())

	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.TotalQuantity())
	assert.True(t, c.TotalPrice().IsZero())
}

func TestCart_Totals(t *testing.T) {
	c := &Cart{}
	c.AddItem(Product{ID: "1", Price: decimal.NewFromFloat(49.99)})
	c.AddItem(Product{ID: "1"})

	assert.Equal(t, 2, c.TotalQuantity())
	assert.Equal(t, "99.98", c.TotalPrice().StringFixed(2))

	c.DecreaseQuantity("1")
	assert.Equal(t, 1, c.TotalQuantity())

	c.DecreaseQuantity("1")
	assert.True(t, c.IsEmpty())
}

func TestNew(t *testing.T) {
	t.Run("keeps order of persisted items", func(t *testing.T) {
		items := []LineItem{
			{ID: "2", Title: "Abstract Ocean", Price: decimal.NewFromFloat(79.99), Quantity: 3},
			{ID: "1", Title: "Mountain Sunset", Price: decimal.NewFromFloat(49.99), Quantity: 1},
		}
		c := New(items)

		assert.Equal(t, items, c.Items())
		assert.Equal(t, "289.96", c.TotalPrice().StringFixed(2))
	})

	t.Run("drops entries breaking invariants", func(t *testing.T) {
		c := New([]LineItem{
			{ID: "", Quantity: 1},
			{ID: "1", Quantity: 0},
			{ID: "2", Quantity: 1, Price: decimal.NewFromInt(-5)},
			{ID: "3", Quantity: 2, Price: decimal.NewFromInt(10)},
			{ID: "3", Quantity: 7, Price: decimal.NewFromInt(10)},
		})

		require.Equal(t, 1, c.Len())
		item, ok := c.Item("3")
		require.True(t, ok)
		assert.Equal(t, 2, item.Quantity)
	})

	t.Run("items returns a copy", func(t *testing.T) {
		c := &Cart{}
		c.AddItem(sunset())

		items := c.Items()
		items[0].Quantity = 42

		item, _ := c.Item("1")
		assert.Equal(t, 1, item.Quantity)
	})
}
