package scaling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handle struct{ name string }

func TestContext(t *testing.T) {
	sc := NewContext()
	a, b := &handle{"area"}, &handle{"area"}

	_, ok := sc.Get(a)
	assert.False(t, ok)

	require.NoError(t, sc.Set(a, 100))
	sf, ok := sc.Get(a)
	require.True(t, ok)
	assert.Equal(t, 100., sf)

	// keys compare by identity
	_, ok = sc.Get(b)
	assert.False(t, ok)

	set, err := sc.SetIfUnset(a, 1)
	require.NoError(t, err)
	assert.False(t, set)
	sf, _ = sc.Get(a)
	assert.Equal(t, 100., sf)

	set, err = sc.SetIfUnset(b, 1e-4)
	require.NoError(t, err)
	assert.True(t, set)
	assert.Equal(t, 2, sc.Len())
}

func TestContextRejectsBadFactors(t *testing.T) {
	sc := NewContext()
	h := &handle{}
	for _, sf := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		assert.Error(t, sc.Set(h, sf), "sf=%g", sf)
	}
	assert.Error(t, sc.Set(nil, 1))
	assert.Equal(t, 0, sc.Len())
}
