package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListeners(t *testing.T) {
	t.Run("notifies in subscription order", func(t *testing.T) {
		var l Listeners[int]
		var got []string

		l.Subscribe(func(v int) { got = append(got, fmt.Sprintf("a%d", v)) })
		l.Subscribe(func(v int) { got = append(got, fmt.Sprintf("b%d", v)) })
		l.Notify(1)

		assert.Equal(t, []string{"a1", "b1"}, got)
	})

	t.Run("unsubscribe stops delivery and is idempotent", func(t *testing.T) {
		var l Listeners[string]
		calls := 0

		unsubscribe := l.Subscribe(func(string) { calls++ })
		l.Notify("x")
		unsubscribe()
		unsubscribe()
		l.Notify("y")

		assert.Equal(t, 1, calls)
		assert.Equal(t, 0, l.Len())
	})

	t.Run("callback may unsubscribe itself", func(t *testing.T) {
		var l Listeners[int]
		calls := 0
		var unsubscribe func()
		unsubscribe = l.Subscribe(func(int) {
			calls++
			unsubscribe()
		})

		l.Notify(1)
		l.Notify(2)

		assert.Equal(t, 1, calls)
	})
}

func TestDomainError_Is(t *testing.T) {
	wrapped := fmt.Errorf("checkout: %w", NewDomainError("EMPTY_CART", "other text"))

	assert.True(t, errors.Is(wrapped, ErrEmptyCart))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
}
