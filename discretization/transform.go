package discretization

import (
	"fmt"
	"sort"

	"github.com/notargets/ChannelModel/element"
	"github.com/notargets/ChannelModel/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

// StencilKind tells what a stencil defines at its point
type StencilKind uint8

const (
	Derivative StencilKind = iota // dy/dx at Point = sum(Weights[k] * y[Indices[k]])
	Continuity                    // y at Point = sum(Weights[k] * y[Indices[k]])
)

func (k StencilKind) String() string {
	if k == Continuity {
		return "continuity"
	}
	return "derivative"
}

// Stencil is one discretization equation over the grid, expressed with
// point indices into Grid.Points
type Stencil struct {
	Kind    StencilKind
	Point   int
	Indices []int
	Weights []float64
}

// Grid is a discretized normalized length domain
type Grid struct {
	Options
	Points   []float64 // strictly increasing, Points[0] == 0, last == 1
	Elements []float64 // finite element boundaries, a subset of Points
	stencils []Stencil
}

// Transform discretizes the length domain whose current points are initial.
// initial must be strictly increasing from 0 to 1; its interior points are
// kept as finite element boundaries.
func Transform(initial []float64, opts Options) (*Grid, error) {
	opts, err := opts.Resolve()
	if err != nil {
		return nil, err
	}
	if err = checkDomain(initial); err != nil {
		return nil, err
	}

	g := &Grid{Options: opts}
	g.Elements = generateFiniteElements(initial, opts.FiniteElements)
	g.FiniteElements = len(g.Elements) - 1

	switch opts.Scheme {
	case BackwardDifference, ForwardDifference, CentralDifference:
		g.Points = append([]float64(nil), g.Elements...)
		g.stencils = finiteDifferenceStencils(g.Points, opts.Scheme)
	case LagrangeRadau:
		err = g.collocate(element.RadauRight)
	case LagrangeLegendre:
		err = g.collocate(element.Legendre)
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

func checkDomain(points []float64) error {
	if len(points) < 2 {
		return &model.ConfigurationError{Option: "length_domain", Value: points,
			Msg: "length domain needs at least the points 0 and 1"}
	}
	if floats.HasNaN(points) {
		return &model.ConfigurationError{Option: "length_domain", Value: points,
			Msg: "length domain contains NaN"}
	}
	if points[0] != 0 || points[len(points)-1] != 1 {
		return &model.ConfigurationError{Option: "length_domain", Value: points,
			Msg: "length domain must be normalized to run between 0 and 1"}
	}
	for i := 1; i < len(points); i++ {
		if points[i] <= points[i-1] {
			return &model.ConfigurationError{Option: "length_domain", Value: points,
				Msg: "length domain points must be strictly increasing"}
		}
	}
	return nil
}

// generateFiniteElements returns at least nfe+1 element boundaries. Two end
// points are split uniformly; otherwise the widest interval, the first one
// on ties, is bisected until enough elements exist.
func generateFiniteElements(initial []float64, nfe int) []float64 {
	if len(initial)-1 >= nfe {
		return append([]float64(nil), initial...)
	}
	if len(initial) == 2 {
		b := make([]float64, nfe+1)
		for i := range b {
			b[i] = float64(i) / float64(nfe)
		}
		b[nfe] = 1
		return b
	}
	b := append([]float64(nil), initial...)
	for len(b)-1 < nfe {
		widest, w := 0, 0.
		for i := 1; i < len(b); i++ {
			if d := b[i] - b[i-1]; d > w {
				widest, w = i, d
			}
		}
		mid := (b[widest-1] + b[widest]) / 2
		b = append(b[:widest], append([]float64{mid}, b[widest:]...)...)
	}
	return b
}

func finiteDifferenceStencils(p []float64, scheme Scheme) []Stencil {
	var st []Stencil
	n := len(p)
	switch scheme {
	case BackwardDifference:
		for i := 1; i < n; i++ {
			h := p[i] - p[i-1]
			st = append(st, Stencil{Kind: Derivative, Point: i,
				Indices: []int{i - 1, i}, Weights: []float64{-1 / h, 1 / h}})
		}
	case ForwardDifference:
		for i := 0; i < n-1; i++ {
			h := p[i+1] - p[i]
			st = append(st, Stencil{Kind: Derivative, Point: i,
				Indices: []int{i, i + 1}, Weights: []float64{-1 / h, 1 / h}})
		}
	case CentralDifference:
		for i := 1; i < n-1; i++ {
			h := p[i+1] - p[i-1]
			st = append(st, Stencil{Kind: Derivative, Point: i,
				Indices: []int{i - 1, i + 1}, Weights: []float64{-1 / h, 1 / h}})
		}
	}
	return st
}

// collocate places the collocation points of family in every finite element
// and builds the per-element derivative rows, plus the end point
// interpolation rows when the family does not include the right end point.
func (g *Grid) collocate(family element.NodeFamily) error {
	ref, err := element.NewLine(family, g.CollocationPoints)
	if err != nil {
		return &model.ConfigurationError{Option: "collocation_points", Value: g.CollocationPoints,
			Msg: err.Error()}
	}
	r := ref.GetReferenceGeometry().R
	u := element.MapToUnit(r)
	ops := ref.GetReferenceOperators()
	Dr := ops.Dr
	includesRight := r[len(r)-1] == 1.

	g.Points = []float64{g.Elements[0]}
	for e := 1; e < len(g.Elements); e++ {
		a, b := g.Elements[e-1], g.Elements[e]
		h := b - a
		local := []int{len(g.Points) - 1}
		for k := 1; k < len(r); k++ {
			x := a + u[k]*h
			if k == len(r)-1 && includesRight {
				x = b
			}
			g.Points = append(g.Points, x)
			local = append(local, len(g.Points)-1)
		}
		for j := 1; j < len(r); j++ {
			g.stencils = append(g.stencils, Stencil{Kind: Derivative, Point: local[j],
				Indices: append([]int(nil), local...), Weights: scaledRow(Dr, j, 2/h)})
		}
		if !includesRight {
			g.Points = append(g.Points, b)
			g.stencils = append(g.stencils, Stencil{Kind: Continuity, Point: len(g.Points) - 1,
				Indices: append([]int(nil), local...), Weights: scaledRow(ops.InterpRight, 0, 1)})
		}
	}
	return nil
}

func scaledRow(m mat.Matrix, i int, s float64) []float64 {
	_, c := m.Dims()
	row := make([]float64, c)
	for k := range row {
		row[k] = s * m.At(i, k)
	}
	return row
}

// Stencils returns the discretization equations of the grid
func (g *Grid) Stencils() []Stencil { return g.stencils }

func (g *Grid) Len() int { return len(g.Points) }

// First is the smallest point of the domain, 0 by construction
func (g *Grid) First() float64 { return floats.Min(g.Points) }

// Last is the largest point of the domain, 1 by construction
func (g *Grid) Last() float64 { return floats.Max(g.Points) }

// IndexOf finds x in the grid, allowing for round off
func (g *Grid) IndexOf(x float64) (int, bool) {
	i := sort.SearchFloat64s(g.Points, x)
	for _, k := range []int{i - 1, i} {
		if k >= 0 && k < len(g.Points) && scalar.EqualWithinAbs(g.Points[k], x, 1.e-12) {
			return k, true
		}
	}
	return -1, false
}

// DerivativePoints reports, per point, whether a derivative stencil is
// written there
func (g *Grid) DerivativePoints() []bool {
	out := make([]bool, len(g.Points))
	for _, s := range g.stencils {
		if s.Kind == Derivative {
			out[s.Point] = true
		}
	}
	return out
}

// ExpectedPoints returns the number of points Transform produces from the
// two point domain {0,1}
func ExpectedPoints(opts Options) (int, error) {
	opts, err := opts.Resolve()
	if err != nil {
		return 0, err
	}
	nfe, ncp := opts.FiniteElements, opts.CollocationPoints
	switch opts.Scheme {
	case LagrangeRadau:
		return nfe*ncp + 1, nil
	case LagrangeLegendre:
		return nfe*(ncp+1) + 1, nil
	default:
		return nfe + 1, nil
	}
}

func (g *Grid) String() string {
	return fmt.Sprintf("%s/%s: %d finite elements, %d points, %d stencils",
		g.Method, g.Scheme, g.FiniteElements, len(g.Points), len(g.stencils))
}
