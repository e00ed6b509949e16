package element

import (
	"fmt"
	"math"

	"github.com/notargets/ChannelModel/element/library/gonudg"
	"gonum.org/v1/gonum/mat"
)

// Line is a 1D reference element on [-1,1] whose first node is always the
// left end point r=-1, followed by the collocation nodes of its family.
type Line struct {
	props ElementProperties
	geom  ReferenceGeometry
	nm    NodalModalMatrices
	ops   ReferenceOperators
}

// NewLine builds the reference line element carrying ncp collocation points
// of the given family. The element has ncp+1 nodes and polynomial order ncp.
func NewLine(family NodeFamily, ncp int) (*Line, error) {
	if ncp < 1 {
		return nil, fmt.Errorf("collocation points must be positive, got %d", ncp)
	}
	roots, err := CollocationRoots(family, ncp)
	if err != nil {
		return nil, err
	}

	N := ncp
	r := make([]float64, 0, ncp+1)
	r = append(r, -1.)
	r = append(r, roots...)

	V := gonudg.Vandermonde1D(N, r)
	Vinv := mat.NewDense(N+1, N+1, nil)
	if err = Vinv.Inverse(V); err != nil {
		return nil, fmt.Errorf("%s line order %d: singular Vandermonde: %w", family, N, err)
	}
	Dr, err := gonudg.Dmatrix1D(N, r, Vinv)
	if err != nil {
		return nil, err
	}

	geom := ReferenceGeometry{R: r, VertexPoints: []int{0}}
	for i := 1; i < len(r); i++ {
		if r[i] == 1. {
			geom.VertexPoints = append(geom.VertexPoints, i)
		} else {
			geom.InteriorPoints = append(geom.InteriorPoints, i)
		}
	}

	return &Line{
		props: ElementProperties{
			Name:       fmt.Sprintf("%s Line Order %d", family, N),
			ShortName:  fmt.Sprintf("%s%d", family, N),
			Family:     family,
			Order:      N,
			Np:         N + 1,
			NVp:        len(geom.VertexPoints),
			NIp:        len(geom.InteriorPoints),
			Dimensions: D1,
		},
		geom: geom,
		nm:   NodalModalMatrices{V: V, Vinv: Vinv},
		ops: ReferenceOperators{
			Dr:          Dr,
			InterpRight: gonudg.InterpMatrix1D(N, []float64{1.}, Vinv),
		},
	}, nil
}

// CollocationRoots returns the ncp collocation points of a family on [-1,1]
// in increasing order. Right Radau points end at +1; Legendre points are
// strictly interior.
func CollocationRoots(family NodeFamily, ncp int) ([]float64, error) {
	if ncp < 1 {
		return nil, fmt.Errorf("collocation points must be positive, got %d", ncp)
	}
	switch family {
	case RadauRight:
		if ncp == 1 {
			return []float64{1.}, nil
		}
		// interior nodes are the zeros of P^(1,0)_{ncp-1}
		x, _, err := gonudg.JacobiGQ(1, 0, ncp-2)
		if err != nil {
			return nil, err
		}
		return append(x, 1.), nil
	case Legendre:
		x, _, err := gonudg.JacobiGQ(0, 0, ncp-1)
		return x, err
	default:
		return nil, fmt.Errorf("unknown node family %d", family)
	}
}

// MapToUnit maps reference coordinates on [-1,1] to [0,1]
func MapToUnit(r []float64) []float64 {
	x := make([]float64, len(r))
	for i, ri := range r {
		x[i] = math.Max(0, math.Min(1, (ri+1)/2))
	}
	return x
}

func (l *Line) GetProperties() ElementProperties          { return l.props }
func (l *Line) GetReferenceGeometry() ReferenceGeometry   { return l.geom }
func (l *Line) GetNodalModal() NodalModalMatrices         { return l.nm }
func (l *Line) GetReferenceOperators() ReferenceOperators { return l.ops }

// String returns a short summary of the element
func (l *Line) String() string {
	return fmt.Sprintf("%s (%s): Np=%d, NVp=%d, NIp=%d",
		l.props.Name, l.props.ShortName, l.props.Np, l.props.NVp, l.props.NIp)
}
