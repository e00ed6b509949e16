package gonudg

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Vandermonde1D initializes the 1D Vandermonde matrix V_{ij} = P_j(r_i)
// for orthonormal Legendre polynomials up to order N
func Vandermonde1D(N int, r []float64) *mat.Dense {
	V1D := mat.NewDense(len(r), N+1, nil)
	for j := 0; j <= N; j++ {
		V1D.SetCol(j, JacobiP(r, 0, 0, j))
	}
	return V1D
}

// GradVandermonde1D initializes the gradient of the modal basis at r,
// DVr_{ij} = dP_j/dr (r_i)
func GradVandermonde1D(N int, r []float64) *mat.Dense {
	DVr := mat.NewDense(len(r), N+1, nil)
	for j := 0; j <= N; j++ {
		DVr.SetCol(j, GradJacobiP(r, 0, 0, j))
	}
	return DVr
}

// Dmatrix1D computes the nodal differentiation matrix Dr = Vr * V^-1.
// V must be square, i.e. len(r) == N+1.
func Dmatrix1D(N int, r []float64, Vinv mat.Matrix) (*mat.Dense, error) {
	if len(r) != N+1 {
		return nil, fmt.Errorf("Dmatrix1D: need %d nodes for order %d, got %d", N+1, N, len(r))
	}
	Vr := GradVandermonde1D(N, r)
	Dr := mat.NewDense(N+1, N+1, nil)
	Dr.Mul(Vr, Vinv)
	return Dr, nil
}

// InterpMatrix1D computes the nodal interpolation matrix from the element
// nodes to the points rout, I = V(rout) * V^-1
func InterpMatrix1D(N int, rout []float64, Vinv mat.Matrix) *mat.Dense {
	Vout := Vandermonde1D(N, rout)
	I := mat.NewDense(len(rout), N+1, nil)
	I.Mul(Vout, Vinv)
	return I
}
