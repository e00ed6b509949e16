package gonudg

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// JacobiGQ computes the N+1 point Gauss quadrature for the Jacobi weight
// (1-x)^alpha (1+x)^beta on [-1,1] using the Golub-Welsch eigenvalue method.
// Points are returned in increasing order with their matching weights.
func JacobiGQ(alpha, beta float64, N int) (X, W []float64, err error) {
	if N < 0 {
		return nil, nil, fmt.Errorf("JacobiGQ: order must be non-negative, got %d", N)
	}
	if N == 0 {
		X = []float64{-(alpha - beta) / (alpha + beta + 2.)}
		W = []float64{2.}
		return X, W, nil
	}

	h1 := make([]float64, N+1)
	for i := range h1 {
		h1[i] = 2*float64(i) + alpha + beta
	}

	// main diagonal: d0[i] = -(α²-β²)/((2i+α+β)*(2i+α+β+2))
	d0 := make([]float64, N+1)
	fac := beta*beta - alpha*alpha
	for i := range d0 {
		d0[i] = fac / (h1[i] * (h1[i] + 2.))
	}
	// 0/0 for the Legendre weight
	if alpha+beta < 10*1.e-16 {
		d0[0] = 0.
	}

	d1 := make([]float64, N)
	for i := range d1 {
		ip1 := float64(i + 1)
		d1[i] = 2.0 / (h1[i] + 2.0) * math.Sqrt(
			ip1*(ip1+alpha+beta)*(ip1+alpha)*(ip1+beta)/(h1[i]+1)/(h1[i]+3),
		)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(NewSymTriDiagonal(d0, d1), true); !ok {
		return nil, nil, fmt.Errorf("JacobiGQ: eigenvalue decomposition failed for alpha=%g beta=%g N=%d",
			alpha, beta, N)
	}
	values := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return values[order[i]] < values[order[j]] })

	g0 := Gamma0(alpha, beta)
	X = make([]float64, len(values))
	W = make([]float64, len(values))
	for i, k := range order {
		X[i] = values[k]
		w := vecs.At(0, k)
		W[i] = w * w * g0
	}
	return X, W, nil
}

// Gamma0 is the integral of the Jacobi weight over [-1,1]
func Gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	return math.Gamma(alpha+1.) * math.Gamma(beta+1.) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

func Gamma1(alpha, beta float64) float64 {
	return (alpha + 1.) * (beta + 1.) * Gamma0(alpha, beta) / (alpha + beta + 3.0)
}

// NewSymTriDiagonal builds the symmetric tridiagonal Jacobi matrix with
// main diagonal d0 and off diagonal d1
func NewSymTriDiagonal(d0, d1 []float64) *mat.SymDense {
	n := len(d0)
	tri := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		tri.SetSym(i, i, d0[i])
		if i < n-1 {
			tri.SetSym(i, i+1, d1[i])
		}
	}
	return tri
}
