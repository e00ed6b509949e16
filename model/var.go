package model

import (
	"fmt"
	"math"

	"github.com/ctessum/unit"
)

// Domain restricts the values a variable may take
type Domain uint8

const (
	Reals Domain = iota
	NonNegativeReals
	NegativeReals
)

// Bounds holds variable bounds; use math.Inf for an open side
type Bounds struct {
	Lower, Upper float64
}

// Unbounded has no finite bound on either side
var Unbounded = Bounds{Lower: math.Inf(-1), Upper: math.Inf(1)}

// Cell is the storage for one element of a Var. Every reference to the
// same element, including aliases, shares the same *Cell.
type Cell struct {
	Value float64
	Fixed bool
	Var   *Var
	Index Index
}

// Fix sets the value and removes the cell from the free variables
func (c *Cell) Fix(v float64) {
	c.Value = v
	c.Fixed = true
}

func (c *Cell) Unfix() { c.Fixed = false }

// Name returns the component name of the cell, e.g. deltaP[0,0.5]
func (c *Cell) Name() string {
	return c.Var.Name + c.Var.IndexSet.Format(c.Index)
}

// InBounds reports whether the value lies inside the effective bounds
func (c *Cell) InBounds() bool {
	lo, hi := c.Var.EffectiveBounds()
	return c.Value >= lo && c.Value <= hi
}

// VarOptions configures NewVar
type VarOptions struct {
	Doc        string
	Units      unit.Dimensions
	Domain     Domain
	Bounds     *Bounds // nil means Unbounded
	Initialize float64
}

// Var is an indexed continuous quantity. Cells are created for the given
// indices at construction and never added or removed afterwards.
type Var struct {
	Name     string
	Doc      string
	Units    unit.Dimensions
	Domain   Domain
	Bounds   Bounds
	IndexSet IndexSet
	keys     []Index
	cells    map[Index]*Cell
}

// NewVar creates a variable over indices. Duplicate indices are ignored.
func NewVar(name string, set IndexSet, indices []Index, opts VarOptions) *Var {
	v := &Var{
		Name:     name,
		Doc:      opts.Doc,
		Units:    opts.Units,
		Domain:   opts.Domain,
		Bounds:   Unbounded,
		IndexSet: set,
		cells:    make(map[Index]*Cell),
	}
	if opts.Bounds != nil {
		v.Bounds = *opts.Bounds
	}
	if v.Units == nil {
		v.Units = unit.Dimless
	}
	if set == Scalar {
		indices = []Index{{}}
	}
	for _, idx := range indices {
		k := set.Key(idx)
		if _, ok := v.cells[k]; ok {
			continue
		}
		v.keys = append(v.keys, k)
		v.cells[k] = &Cell{Value: opts.Initialize, Var: v, Index: k}
	}
	return v
}

// Cell returns the cell at idx, or nil if the variable has no such index
func (v *Var) Cell(idx Index) *Cell {
	return v.cells[v.IndexSet.Key(idx)]
}

// MustCell is Cell for indices known to exist by construction
func (v *Var) MustCell(idx Index) *Cell {
	c := v.Cell(idx)
	if c == nil {
		panic(fmt.Sprintf("%s has no index %s", v.Name, v.IndexSet.Format(idx)))
	}
	return c
}

// Scalar returns the only cell of a scalar variable
func (v *Var) Scalar() *Cell {
	return v.cells[Index{}]
}

// Cells returns the cells in construction order
func (v *Var) Cells() []*Cell {
	out := make([]*Cell, len(v.keys))
	for i, k := range v.keys {
		out[i] = v.cells[k]
	}
	return out
}

func (v *Var) Indices() []Index {
	out := make([]Index, len(v.keys))
	copy(out, v.keys)
	return out
}

func (v *Var) Len() int { return len(v.keys) }

// Fix fixes every cell at value
func (v *Var) Fix(value float64) {
	for _, c := range v.cells {
		c.Fix(value)
	}
}

// SetValue sets every unfixed cell to value
func (v *Var) SetValue(value float64) {
	for _, c := range v.cells {
		if !c.Fixed {
			c.Value = value
		}
	}
}

// EffectiveBounds intersects the declared bounds with the domain
func (v *Var) EffectiveBounds() (lo, hi float64) {
	lo, hi = v.Bounds.Lower, v.Bounds.Upper
	switch v.Domain {
	case NonNegativeReals:
		lo = math.Max(lo, 0)
	case NegativeReals:
		hi = math.Min(hi, 0)
	}
	return lo, hi
}

// CheckUnits returns an error if the variable's dimensions differ from d
func (v *Var) CheckUnits(d unit.Dimensions) error {
	if err := unit.New(1, v.Units).Check(d); err != nil {
		return fmt.Errorf("%s: %w", v.Name, err)
	}
	return nil
}

// Param is an immutable named value
type Param struct {
	Name  string
	Doc   string
	Value float64
	Units unit.Dimensions
}

// Int returns the value of an integer-valued parameter
func (p *Param) Int() int { return int(math.Round(p.Value)) }
