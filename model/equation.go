package model

import (
	"fmt"
	"sort"

	"github.com/Knetic/govaluate"
)

// EquationKind classifies equation records for reporting and scaling
type EquationKind uint8

const (
	Isothermal EquationKind = iota
	Discretization
	Continuity
	MaterialBalance
	MomentumBalance
	PressureChange
)

func (k EquationKind) String() string {
	switch k {
	case Isothermal:
		return "isothermal"
	case Discretization:
		return "discretization"
	case Continuity:
		return "continuity"
	case MaterialBalance:
		return "material_balance"
	case MomentumBalance:
		return "momentum_balance"
	case PressureChange:
		return "pressure_change"
	default:
		return "unknown"
	}
}

// Equation is one explicit constraint record, residual(Expr) == 0, at one
// index of a constraint family.
//
// Symbols in Expr are bound either to cells, whose current values are read
// at evaluation time, or to constants fixed at construction.
type Equation struct {
	Name   string // constraint family, e.g. eq_feed_isothermal
	Kind   EquationKind
	Index  Index
	Expr   string
	Active bool

	terms  map[string]*Cell
	consts map[string]float64
	expr   *govaluate.EvaluableExpression
}

// NewEquation parses expr and checks every symbol it uses is bound
func NewEquation(name string, kind EquationKind, idx Index, expr string,
	terms map[string]*Cell, consts map[string]float64) (*Equation, error) {
	ev, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, fmt.Errorf("%s: parse %q: %w", name, expr, err)
	}
	for _, sym := range ev.Vars() {
		c, isTerm := terms[sym]
		_, isConst := consts[sym]
		if isTerm && c == nil {
			return nil, fmt.Errorf("%s: symbol %q bound to a nil cell", name, sym)
		}
		if !isTerm && !isConst {
			return nil, fmt.Errorf("%s: symbol %q in %q is not bound", name, sym, expr)
		}
	}
	return &Equation{
		Name:   name,
		Kind:   kind,
		Index:  idx,
		Expr:   expr,
		Active: true,
		terms:  terms,
		consts: consts,
		expr:   ev,
	}, nil
}

// Residual evaluates the expression at the current cell values
func (e *Equation) Residual() (float64, error) {
	params := make(map[string]interface{}, len(e.terms)+len(e.consts))
	for k, v := range e.consts {
		params[k] = v
	}
	for k, c := range e.terms {
		params[k] = c.Value
	}
	res, err := e.expr.Evaluate(params)
	if err != nil {
		return 0, fmt.Errorf("%s: evaluate: %w", e.Name, err)
	}
	f, ok := res.(float64)
	if !ok {
		return 0, fmt.Errorf("%s: residual is %T, not a number", e.Name, res)
	}
	return f, nil
}

// Cells returns the distinct cells referenced by the equation, ordered by symbol
func (e *Equation) Cells() []*Cell {
	syms := make([]string, 0, len(e.terms))
	for s := range e.terms {
		syms = append(syms, s)
	}
	sort.Strings(syms)
	seen := make(map[*Cell]bool, len(syms))
	out := make([]*Cell, 0, len(syms))
	for _, s := range syms {
		c := e.terms[s]
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// Term returns the cell bound to sym
func (e *Equation) Term(sym string) *Cell { return e.terms[sym] }

// Const returns the constant bound to sym
func (e *Equation) Const(sym string) (float64, bool) {
	v, ok := e.consts[sym]
	return v, ok
}

func (e *Equation) String() string {
	return fmt.Sprintf("%s%s: %s == 0", e.Name, formatEquationIndex(e.Index), e.Expr)
}

func formatEquationIndex(idx Index) string {
	if idx.J != "" {
		return TimeSpaceComp.Format(idx)
	}
	return TimeSpace.Format(idx)
}
