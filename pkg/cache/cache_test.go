package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndRetrieve(t *testing.T) {
	c := NewCache[uint64, uint64]("test", 3)

	require.NoError(t, c.Insert(32, 1_113_600, 1))
	require.NoError(t, c.Insert(82, 1_461_600, 1))
	assert.Equal(t, 2, c.GetWeight())
	assert.Equal(t, 3, c.GetBudget())

	value, ok := c.Retrieve(32)
	require.True(t, ok)
	assert.EqualValues(t, 1_113_600, value)

	_, ok = c.Retrieve(165)
	assert.False(t, ok)

	assert.Equal(t, ErrKeyExists, c.Insert(32, 0, 1))
}

func TestEviction(t *testing.T) {
	c := NewCache[string, string]("test", 2)

	require.NoError(t, c.Insert("evicted", "value", 1))
	require.NoError(t, c.Insert("a", "value", 1))
	require.NoError(t, c.Insert("b", "value", 1))
	assert.Equal(t, 2, c.GetWeight())

	_, ok := c.Retrieve("evicted")
	assert.False(t, ok)

	// Retrieving "a" leaves "b" as the least recently used entry.
	_, ok = c.Retrieve("a")
	require.True(t, ok)
	require.NoError(t, c.Insert("c", "value", 1))

	_, ok = c.Retrieve("b")
	assert.False(t, ok)
	for _, key := range []string{"a", "c"} {
		_, ok = c.Retrieve(key)
		assert.True(t, ok, key)
	}

	// An entry heavier than the budget evicts everything, itself included.
	require.NoError(t, c.Insert("heavy", "value", 3))
	assert.Equal(t, 0, c.GetWeight())
	_, ok = c.Retrieve("heavy")
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	c := NewCache[string, int]("test", 1)
	require.NoError(t, c.Insert("cleared", 1, 1))

	c.Clear()
	assert.Equal(t, 0, c.GetWeight())

	_, ok := c.Retrieve("cleared")
	assert.False(t, ok)
	assert.NoError(t, c.Insert("cleared", 1, 1))
}
