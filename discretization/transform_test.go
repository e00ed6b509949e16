package discretization

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/notargets/ChannelModel/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unitDomain = []float64{0, 1}

func TestOptionsResolveDefaults(t *testing.T) {
	tests := []struct {
		in     Options
		method Method
		scheme Scheme
	}{
		{Options{FiniteElements: 20, CollocationPoints: 5}, FiniteDifference, BackwardDifference},
		{Options{FiniteElements: 20, CollocationPoints: 5, FlowDirection: model.Backward},
			FiniteDifference, ForwardDifference},
		{Options{Method: Collocation, FiniteElements: 4, CollocationPoints: 3}, Collocation, LagrangeRadau},
		{Options{Method: FiniteDifference, Scheme: CentralDifference, FiniteElements: 2, CollocationPoints: 1},
			FiniteDifference, CentralDifference},
	}
	for _, tt := range tests {
		got, err := tt.in.Resolve()
		require.NoError(t, err)
		assert.Equal(t, tt.method, got.Method)
		assert.Equal(t, tt.scheme, got.Scheme)
	}
}

func TestOptionsResolveRejects(t *testing.T) {
	tests := []struct {
		name   string
		in     Options
		option string
	}{
		{"zero elements", Options{FiniteElements: 0, CollocationPoints: 5}, "finite_elements"},
		{"negative elements", Options{FiniteElements: -3, CollocationPoints: 5}, "finite_elements"},
		{"zero collocation", Options{Method: Collocation, FiniteElements: 3, CollocationPoints: 0}, "collocation_points"},
		{"negative collocation fd", Options{FiniteElements: 3, CollocationPoints: -1}, "collocation_points"},
		{"radau with fd", Options{Method: FiniteDifference, Scheme: LagrangeRadau, FiniteElements: 3,
			CollocationPoints: 3}, "transformation_scheme"},
		{"backward with collocation", Options{Method: Collocation, Scheme: BackwardDifference,
			FiniteElements: 3, CollocationPoints: 3}, "transformation_scheme"},
		{"unknown method", Options{Method: Method(9), FiniteElements: 3, CollocationPoints: 3},
			"transformation_method"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.Resolve()
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrConfiguration))
			var ce *model.ConfigurationError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.option, ce.Option)

			// Transform fails the same way before building anything
			g, err := Transform(unitDomain, tt.in)
			assert.Nil(t, g)
			assert.ErrorIs(t, err, model.ErrConfiguration)
		})
	}
}

func TestParseNames(t *testing.T) {
	m, err := ParseMethod("dae.collocation")
	require.NoError(t, err)
	assert.Equal(t, Collocation, m)
	m, err = ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, DefaultMethod, m)
	_, err = ParseMethod("dae.spectral")
	assert.ErrorIs(t, err, model.ErrConfiguration)

	for _, s := range []Scheme{BackwardDifference, ForwardDifference, CentralDifference, LagrangeRadau, LagrangeLegendre} {
		got, err := ParseScheme(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err = ParseScheme("LAGRANGE-LOBATTO")
	assert.ErrorIs(t, err, model.ErrConfiguration)
}

func TestTransformDomainCompleteness(t *testing.T) {
	type combo struct {
		method Method
		scheme Scheme
	}
	combos := []combo{
		{FiniteDifference, BackwardDifference},
		{FiniteDifference, ForwardDifference},
		{FiniteDifference, CentralDifference},
		{Collocation, LagrangeRadau},
		{Collocation, LagrangeLegendre},
	}
	for _, c := range combos {
		for _, nfe := range []int{1, 2, 7, 20} {
			for _, ncp := range []int{1, 3, 5} {
				t.Run(fmt.Sprintf("%s/nfe=%d/ncp=%d", c.scheme, nfe, ncp), func(t *testing.T) {
					opts := Options{Method: c.method, Scheme: c.scheme, FiniteElements: nfe, CollocationPoints: ncp}
					g, err := Transform(unitDomain, opts)
					require.NoError(t, err)
					expected, err := ExpectedPoints(opts)
					require.NoError(t, err)
					assert.Equal(t, expected, g.Len())
					assert.Equal(t, 0., g.Points[0])
					assert.Equal(t, 1., g.Points[g.Len()-1])
					assert.Equal(t, 0., g.First())
					assert.Equal(t, 1., g.Last())
					for i := 1; i < g.Len(); i++ {
						assert.Greater(t, g.Points[i], g.Points[i-1])
					}
					assert.Equal(t, nfe, g.FiniteElements)
					for _, b := range g.Elements {
						_, ok := g.IndexOf(b)
						assert.True(t, ok, "element boundary %g missing", b)
					}
				})
			}
		}
	}
}

func TestGenerateFiniteElements(t *testing.T) {
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, generateFiniteElements([]float64{0, 1}, 4))
	// existing points are kept, the widest interval is bisected first
	assert.InDeltaSlice(t, []float64{0, 0.3, 0.65, 1}, generateFiniteElements([]float64{0, 0.3, 1}, 3), 1.e-15)
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, generateFiniteElements([]float64{0, 0.5, 1}, 4))
	// enough elements already
	assert.Equal(t, []float64{0, 0.1, 0.2, 1}, generateFiniteElements([]float64{0, 0.1, 0.2, 1}, 2))
}

func TestTransformRejectsBadDomain(t *testing.T) {
	opts := Options{FiniteElements: 4, CollocationPoints: 1}
	for _, d := range [][]float64{
		{0},
		{0, 2},
		{-1, 1},
		{0, 0.5, 0.5, 1},
		{0, 0.7, 0.3, 1},
		{0, math.NaN(), 1},
	} {
		_, err := Transform(d, opts)
		assert.ErrorIs(t, err, model.ErrConfiguration, "domain %v", d)
	}
}

// Every derivative stencil must be exact on polynomials the scheme resolves
func TestStencilsDifferentiate(t *testing.T) {
	tests := []struct {
		scheme Scheme
		method Method
		degree int
	}{
		{BackwardDifference, FiniteDifference, 1},
		{ForwardDifference, FiniteDifference, 1},
		{CentralDifference, FiniteDifference, 1},
		{LagrangeRadau, Collocation, 3},
		{LagrangeLegendre, Collocation, 3},
	}
	for _, tt := range tests {
		t.Run(tt.scheme.String(), func(t *testing.T) {
			g, err := Transform([]float64{0, 0.4, 1}, Options{Method: tt.method, Scheme: tt.scheme,
				FiniteElements: 5, CollocationPoints: 3})
			require.NoError(t, err)
			y := make([]float64, g.Len())
			dy := make([]float64, g.Len())
			for i, x := range g.Points {
				y[i] = math.Pow(x, float64(tt.degree))
				dy[i] = float64(tt.degree) * math.Pow(x, float64(tt.degree-1))
			}
			require.NotEmpty(t, g.Stencils())
			for _, s := range g.Stencils() {
				var sum float64
				for k, idx := range s.Indices {
					sum += s.Weights[k] * y[idx]
				}
				switch s.Kind {
				case Derivative:
					assert.InDelta(t, dy[s.Point], sum, 1.e-8, "point %d", s.Point)
				case Continuity:
					assert.InDelta(t, y[s.Point], sum, 1.e-10, "point %d", s.Point)
				}
			}
		})
	}
}

func TestDerivativePoints(t *testing.T) {
	g, err := Transform(unitDomain, Options{FiniteElements: 4, CollocationPoints: 1})
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, true, true, true}, g.DerivativePoints())

	g, err = Transform(unitDomain, Options{FiniteElements: 4, CollocationPoints: 1, FlowDirection: model.Backward})
	require.NoError(t, err)
	assert.Equal(t, ForwardDifference, g.Scheme)
	assert.Equal(t, []bool{true, true, true, true, false}, g.DerivativePoints())

	g, err = Transform(unitDomain, Options{Method: Collocation, Scheme: LagrangeLegendre,
		FiniteElements: 2, CollocationPoints: 2})
	require.NoError(t, err)
	// boundaries carry continuity rows, not derivatives
	assert.Equal(t, []bool{false, true, true, false, true, true, false}, g.DerivativePoints())
	var continuity int
	for _, s := range g.Stencils() {
		if s.Kind == Continuity {
			continuity++
		}
	}
	assert.Equal(t, 2, continuity)
	assert.Contains(t, g.String(), "LAGRANGE-LEGENDRE")
}

func TestDefaultScenario(t *testing.T) {
	g, err := Transform(unitDomain, Options{FiniteElements: 20, CollocationPoints: 5})
	require.NoError(t, err)
	assert.Equal(t, 21, g.Len())

	g, err = Transform(unitDomain, Options{Method: Collocation, FiniteElements: 20, CollocationPoints: 5})
	require.NoError(t, err)
	assert.Equal(t, 101, g.Len())
	i, ok := g.IndexOf(0.05)
	require.True(t, ok)
	assert.Equal(t, 5, i)

	// round off in the lookup is tolerated, a different point is not
	i, ok = g.IndexOf(0.05 + 1.e-14)
	require.True(t, ok)
	assert.Equal(t, 5, i)
	i, ok = g.IndexOf(1 - 1.e-14)
	require.True(t, ok)
	assert.Equal(t, g.Len()-1, i)
	_, ok = g.IndexOf(0.051)
	assert.False(t, ok)
	_, ok = g.IndexOf(-0.5)
	assert.False(t, ok)
}
