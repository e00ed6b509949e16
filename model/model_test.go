package model

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/ctessum/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarCells(t *testing.T) {
	idx := Product([]float64{0}, []float64{0, 0.5, 1}, nil)
	v := NewVar("temperature", TimeSpace, idx, VarOptions{Units: unit.Kelvin, Initialize: 298.15})
	require.Equal(t, 3, v.Len())
	c := v.Cell(Index{T: 0, X: 0.5, J: "ignored"})
	require.NotNil(t, c)
	assert.Equal(t, 298.15, c.Value)
	assert.Equal(t, "temperature[0,0.5]", c.Name())
	assert.Nil(t, v.Cell(Index{X: 0.25}))
	assert.Panics(t, func() { v.MustCell(Index{X: 0.25}) })

	v.Cell(Index{X: 1}).Fix(300)
	v.SetValue(310)
	assert.Equal(t, 300., v.Cell(Index{X: 1}).Value)
	assert.Equal(t, 310., v.Cell(Index{X: 0}).Value)

	assert.NoError(t, v.CheckUnits(unit.Kelvin))
	assert.Error(t, v.CheckUnits(unit.Meter))
}

func TestScalarVarBounds(t *testing.T) {
	w := NewVar("width", Scalar, nil, VarOptions{
		Units: unit.Meter, Domain: NonNegativeReals,
		Bounds: &Bounds{Lower: -5, Upper: 1e3}, Initialize: 1,
	})
	require.Equal(t, 1, w.Len())
	lo, hi := w.EffectiveBounds()
	assert.Equal(t, 0., lo)
	assert.Equal(t, 1e3, hi)
	assert.True(t, w.Scalar().InBounds())
	w.Scalar().Value = 2e3
	assert.False(t, w.Scalar().InBounds())

	u := NewVar("free", Scalar, nil, VarOptions{})
	lo, hi = u.EffectiveBounds()
	assert.True(t, math.IsInf(lo, -1))
	assert.True(t, math.IsInf(hi, 1))
}

func TestBlockAliasSharesStorage(t *testing.T) {
	b := NewBlock("fs.unit.feed_side")
	deltaP := NewVar("deltaP", TimeSpace, Product([]float64{0}, []float64{0, 1}, nil), VarOptions{})
	require.NoError(t, b.AddVar(deltaP))
	require.NoError(t, b.Alias("dP_dx", "deltaP"))
	assert.Error(t, b.Alias("dP_dx", "deltaP"))
	assert.Error(t, b.Alias("other", "missing"))
	assert.Error(t, b.AddVar(NewVar("deltaP", Scalar, nil, VarOptions{})))

	alias, ok := b.Var("dP_dx")
	require.True(t, ok)
	assert.Same(t, deltaP, alias)
	assert.True(t, b.IsAlias("dP_dx"))
	assert.False(t, b.IsAlias("deltaP"))

	alias.Cell(Index{X: 1}).Value = -1234
	assert.Equal(t, -1234., deltaP.Cell(Index{X: 1}).Value)
	// references are not owned variables
	assert.Len(t, b.Vars(), 1)
}

func TestEquationResidual(t *testing.T) {
	idx := Product([]float64{0}, []float64{0, 1}, nil)
	T := NewVar("temperature", TimeSpace, idx, VarOptions{Initialize: 300})
	T.Cell(Index{X: 1}).Value = 305

	eq, err := NewEquation("eq_feed_isothermal", Isothermal, Index{X: 1},
		"temperature_first - temperature", map[string]*Cell{
			"temperature_first": T.Cell(Index{X: 0}),
			"temperature":       T.Cell(Index{X: 1}),
		}, nil)
	require.NoError(t, err)
	r, err := eq.Residual()
	require.NoError(t, err)
	assert.Equal(t, -5., r)
	assert.Len(t, eq.Cells(), 2)
	assert.Contains(t, eq.String(), "eq_feed_isothermal[0,1]")

	eq2, err := NewEquation("scaled", Discretization, Index{}, "w * y", map[string]*Cell{
		"y": T.Cell(Index{X: 1}),
	}, map[string]float64{"w": 2})
	require.NoError(t, err)
	r, err = eq2.Residual()
	require.NoError(t, err)
	assert.Equal(t, 610., r)
	w, ok := eq2.Const("w")
	assert.True(t, ok)
	assert.Equal(t, 2., w)

	_, err = NewEquation("bad", Isothermal, Index{}, "a - b", map[string]*Cell{"a": T.Cell(Index{})}, nil)
	assert.Error(t, err)
	_, err = NewEquation("bad", Isothermal, Index{}, "a - (", nil, nil)
	assert.Error(t, err)
}

func TestDegreesOfFreedom(t *testing.T) {
	b := NewBlock("b")
	x := NewVar("x", Time, Product([]float64{0, 1}, []float64{0}, nil), VarOptions{})
	y := NewVar("y", Time, Product([]float64{0, 1}, []float64{0}, nil), VarOptions{})
	require.NoError(t, b.AddVar(x))
	require.NoError(t, b.AddVar(y))

	var eqs []*Equation
	for _, c := range x.Cells() {
		eq, err := NewEquation("eq", MomentumBalance, c.Index, "x - 2 * y", map[string]*Cell{
			"x": c, "y": y.Cell(c.Index),
		}, nil)
		require.NoError(t, err)
		eqs = append(eqs, eq)
	}
	require.NoError(t, b.AddEquations("eq", eqs...))
	assert.Equal(t, 2, b.DegreesOfFreedom())

	y.Fix(1)
	assert.Equal(t, 0, b.DegreesOfFreedom())
	eqs[0].Active = false
	assert.Equal(t, 0, b.DegreesOfFreedom())
	assert.Equal(t, 1, b.ActiveEquations())

	worst, r, err := b.MaxResidual()
	require.NoError(t, err)
	assert.Same(t, eqs[1], worst)
	assert.Equal(t, 2., r)

	assert.Error(t, b.AddEquations("x"))
	assert.Error(t, b.AddEquations("eq", eqs...))
	assert.Len(t, b.Equations("eq"), 2)
	assert.Equal(t, []string{"eq"}, b.Families())
}

func TestConfigurationError(t *testing.T) {
	err := error(&ConfigurationError{Option: "finite_elements", Value: 0, Msg: "must be positive"})
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.Equal(t, "invalid argument for finite_elements: 0. must be positive", err.Error())

	err = WithBlock(err, "fs.unit")
	assert.Equal(t, "fs.unit received invalid argument for finite_elements: 0. must be positive", err.Error())

	assert.False(t, errors.Is(PhaseError("x"), ErrConfiguration))
	assert.True(t, errors.Is(PhaseError("call %s first", "AddGeometry"), ErrPhaseOrder))

	_, err = ParseFlowDirection("sideways")
	assert.ErrorIs(t, err, ErrConfiguration)
	d, err := ParseFlowDirection("Backward")
	require.NoError(t, err)
	assert.Equal(t, Backward, d)
}

type stubSolver struct{ res Result }

func (s stubSolver) Solve(context.Context, *Block, Scaling) (Result, error) { return s.res, nil }

func TestSolveSurfacesNonConvergence(t *testing.T) {
	_, err := Solve(context.Background(), stubSolver{Result{Status: Optimal}}, NewBlock("b"), nil)
	assert.NoError(t, err)

	res, err := Solve(context.Background(), stubSolver{Result{Status: Infeasible, Message: "restoration failed"}},
		NewBlock("b"), nil)
	var nce *NonConvergenceError
	require.ErrorAs(t, err, &nce)
	assert.Equal(t, Infeasible, res.Status)
	assert.Equal(t, "solver terminated with status infeasible: restoration failed", err.Error())
}
