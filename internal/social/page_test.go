package social

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextIndicatorEndOfList(t *testing.T) {
	for _, cur := range []*Indicator{nil, NewIndicator(), {ID: "abc"}, NextIndicator(NewIndicator(), "x")} {
		assert.Nil(t, NextIndicator(cur, ""))
	}
}

func TestIndicatorChain(t *testing.T) {
	root := NewIndicator()
	assert.True(t, root.IsRoot())
	assert.Equal(t, "", root.Cursor())

	second := NextIndicator(root, "c1")
	third := NextIndicator(second, "c2")
	require.NotNil(t, third)
	assert.Equal(t, "c2", third.Cursor())
	assert.Same(t, second, third.Previous)
	assert.Same(t, root, second.Previous)
	assert.Equal(t, 2, third.Depth())
	assert.False(t, third.IsRoot())
}

func TestNilIndicator(t *testing.T) {
	var ind *Indicator
	assert.True(t, ind.IsRoot())
	assert.Equal(t, "", ind.Cursor())
	assert.NotNil(t, ind.OrRoot())
}

func TestNewPageable(t *testing.T) {
	page := NewPageable([]int{3, 1, 2}, nil, nil)
	assert.Equal(t, []int{3, 1, 2}, page.Items)
	assert.NotNil(t, page.Indicator)
	assert.False(t, page.HasNext())

	empty := NewPageable[string](nil, NewIndicator(), NextIndicator(nil, "more"))
	assert.Empty(t, empty.Items)
	assert.NotNil(t, empty.Items)
	assert.True(t, empty.HasNext())
}
