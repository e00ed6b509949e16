package element

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestCollocationRootsRadau(t *testing.T) {
	// Known right Radau points on [0,1]
	tests := []struct {
		ncp      int
		expected []float64
	}{
		{1, []float64{1.}},
		{2, []float64{1. / 3., 1.}},
		{3, []float64{0.155051025721682, 0.644948974278318, 1.}},
	}
	for _, tt := range tests {
		r, err := CollocationRoots(RadauRight, tt.ncp)
		require.NoError(t, err)
		assert.InDeltaSlicef(t, tt.expected, MapToUnit(r), 1.e-12, "ncp=%d", tt.ncp)
	}
}

func TestCollocationRootsLegendre(t *testing.T) {
	tests := []struct {
		ncp      int
		expected []float64
	}{
		{1, []float64{0.5}},
		{2, []float64{0.5 - math.Sqrt(3)/6, 0.5 + math.Sqrt(3)/6}},
		{3, []float64{0.5 - math.Sqrt(15)/10, 0.5, 0.5 + math.Sqrt(15)/10}},
	}
	for _, tt := range tests {
		r, err := CollocationRoots(Legendre, tt.ncp)
		require.NoError(t, err)
		assert.InDeltaSlicef(t, tt.expected, MapToUnit(r), 1.e-12, "ncp=%d", tt.ncp)
	}
}

func TestCollocationRootsErrors(t *testing.T) {
	_, err := CollocationRoots(RadauRight, 0)
	assert.Error(t, err)
	_, err = CollocationRoots(NodeFamily(42), 3)
	assert.Error(t, err)
	_, err = NewLine(Legendre, -1)
	assert.Error(t, err)
}

func TestLineElement(t *testing.T) {
	for _, family := range []NodeFamily{RadauRight, Legendre} {
		for ncp := 1; ncp <= 5; ncp++ {
			t.Run(fmt.Sprintf("%s%d", family, ncp), func(t *testing.T) {
				l, err := NewLine(family, ncp)
				require.NoError(t, err)

				props := l.GetProperties()
				assert.Equal(t, ncp, props.Order)
				assert.Equal(t, ncp+1, props.Np)
				assert.Equal(t, props.Np, props.NVp+props.NIp)
				assert.Equal(t, D1, props.Dimensions)

				geom := l.GetReferenceGeometry()
				assert.Equal(t, -1., geom.R[0])
				if family == RadauRight {
					assert.Equal(t, 2, props.NVp)
					assert.Equal(t, 1., geom.R[len(geom.R)-1])
				} else {
					assert.Equal(t, 1, props.NVp)
				}

				// Dr and InterpRight are exact on polynomials of degree <= ncp
				ops := l.GetReferenceOperators()
				u := mat.NewVecDense(props.Np, nil)
				expected := make([]float64, props.Np)
				for i, r := range geom.R {
					u.SetVec(i, math.Pow(r, float64(ncp)))
					expected[i] = float64(ncp) * math.Pow(r, float64(ncp-1))
				}
				var du mat.VecDense
				du.MulVec(ops.Dr, u)
				assert.InDeltaSlicef(t, expected, du.RawVector().Data, 1.e-9, "")

				var right mat.VecDense
				right.MulVec(ops.InterpRight, u)
				assert.InDelta(t, 1., right.AtVec(0), 1.e-10)

				// rows of a differentiation matrix annihilate constants
				for i := 0; i < props.Np; i++ {
					assert.InDelta(t, 0., mat.Sum(ops.Dr.(*mat.Dense).RowView(i)), 1.e-9)
				}
				assert.NotEmpty(t, l.String())
			})
		}
	}
}
