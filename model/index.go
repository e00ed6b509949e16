package model

import (
	"fmt"
	"strconv"
)

// Index addresses one cell of an indexed variable or one equation of a
// constraint family. Members a component does not use are left zero.
type Index struct {
	T float64 // time point
	X float64 // normalized length coordinate in [0,1]
	J string  // component name, for component-indexed quantities
}

// IndexSet records which members of Index are meaningful for a component
type IndexSet uint8

const (
	Scalar IndexSet = iota
	Time
	TimeSpace
	TimeSpaceComp
)

// Key returns the map key of idx under the index set, zeroing unused members
func (s IndexSet) Key(idx Index) Index {
	switch s {
	case Scalar:
		return Index{}
	case Time:
		return Index{T: idx.T}
	case TimeSpace:
		return Index{T: idx.T, X: idx.X}
	default:
		return idx
	}
}

// Format renders idx the way it appears in component names, e.g. [0,0.25,NaCl]
func (s IndexSet) Format(idx Index) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	switch s {
	case Scalar:
		return ""
	case Time:
		return fmt.Sprintf("[%s]", f(idx.T))
	case TimeSpace:
		return fmt.Sprintf("[%s,%s]", f(idx.T), f(idx.X))
	default:
		return fmt.Sprintf("[%s,%s,%s]", f(idx.T), f(idx.X), idx.J)
	}
}

// Product builds the ordered cross product of time points, length points
// and components. A nil components slice yields TimeSpace indices.
func Product(time, length []float64, comps []string) []Index {
	var out []Index
	for _, t := range time {
		for _, x := range length {
			if comps == nil {
				out = append(out, Index{T: t, X: x})
				continue
			}
			for _, j := range comps {
				out = append(out, Index{T: t, X: x, J: j})
			}
		}
	}
	return out
}
