package element

import (
	"gonum.org/v1/gonum/mat"
)

// Dimensionality represents the spatial dimension of an element
type Dimensionality uint8

const (
	D1 Dimensionality = iota + 1 // 1D elements (lines, edges)
)

// NodeFamily names the node placement used inside a reference element
type NodeFamily uint8

const (
	RadauRight NodeFamily = iota // left end point plus right Radau points, last node at +1
	Legendre                     // left end point plus interior Gauss-Legendre points
)

func (f NodeFamily) String() string {
	switch f {
	case RadauRight:
		return "Radau"
	case Legendre:
		return "Legendre"
	default:
		return "Unknown"
	}
}

// ElementProperties contains metadata describing an element type
type ElementProperties struct {
	Name       string         // Full descriptive name (e.g., "Radau Line Order 3")
	ShortName  string         // Abbreviated name (e.g., "Radau3")
	Family     NodeFamily     // Node placement
	Order      int            // Polynomial order
	Np         int            // Total number of nodes in element
	NVp        int            // Number of nodes located at element end points
	NIp        int            // Number of strictly interior nodes
	Dimensions Dimensionality // Spatial dimension
}

// ReferenceGeometry defines the layout of nodes in reference space [-1,1]
type ReferenceGeometry struct {
	R []float64 // Length Np, increasing

	VertexPoints   []int // Indices of nodes located at -1 or +1
	InteriorPoints []int // Indices of nodes strictly inside the element
}

// NodalModalMatrices contains transformation matrices between nodal and modal representations
type NodalModalMatrices struct {
	V    mat.Matrix // Vandermonde matrix: modal to nodal transformation [Np × Np]
	Vinv mat.Matrix // Inverse Vandermonde: nodal to modal transformation [Np × Np]
}

// ReferenceOperators contains operators in reference space [-1,1]
type ReferenceOperators struct {
	// Differentiation matrix with respect to r [Np × Np]
	Dr mat.Matrix

	// Interpolation from the nodes to the right end point r=+1 [1 × Np]
	InterpRight mat.Matrix
}

// ReferenceElement defines element properties and operators in reference space
// This interface is implemented once per element type
type ReferenceElement interface {
	GetProperties() ElementProperties
	GetReferenceGeometry() ReferenceGeometry
	GetNodalModal() NodalModalMatrices
	GetReferenceOperators() ReferenceOperators
}
