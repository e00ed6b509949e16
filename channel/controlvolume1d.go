// Package channel builds one dimensional control volumes over a normalized
// length domain and the membrane channel built on top of them.
//
// Construction runs in a fixed order:
//
//	AddGeometry -> ApplyTransformation -> AddStateBlocks ->
//	AddMaterialBalances / AddMomentumBalances / AddTotalEnthalpyBalances /
//	AddIsothermalConditions -> CalculateScalingFactors
//
// Every step checks that the steps it depends on have run and returns an
// error wrapping model.ErrPhaseOrder otherwise.
package channel

import (
	"fmt"
	"strings"

	"github.com/ctessum/unit"
	"github.com/notargets/ChannelModel/discretization"
	"github.com/notargets/ChannelModel/model"
	"github.com/notargets/ChannelModel/properties"
	"github.com/notargets/ChannelModel/scaling"
	"github.com/sirupsen/logrus"
)

// ControlVolume1D is a control volume discretized along a normalized length
// domain. All of its variables and equations live on the embedded Block.
type ControlVolume1D struct {
	*model.Block
	Config  Config
	Scaling *scaling.Context
	Log     logrus.FieldLogger

	FlowDirection    model.FlowDirection
	InformationFlow  model.FlowDirection
	LengthDomain     []float64 // initial points until ApplyTransformation, then the grid
	Grid             *discretization.Grid
	Length           *model.Var // Scalar
	Area             *model.Var // Scalar, or TimeSpace when Variant
	Properties       *properties.StateBlock
	FlowMassCompDx   *model.Var // TimeSpaceComp
	MassTransferTerm *model.Var // TimeSpaceComp
	PressureDx       *model.Var // TimeSpace
	DeltaP           *model.Var // TimeSpace, only with pressure change
	units            map[string]unit.Dimensions
	derivative       []bool // per grid point, true where a derivative stencil is written
	momentumBalances bool
	materialBalances bool
}

// NewControlVolume1D validates cfg and returns an empty control volume. A nil
// sf gets a fresh scaling context owned by the control volume.
func NewControlVolume1D(name string, cfg Config, sf *scaling.Context) (*ControlVolume1D, error) {
	if err := cfg.Validate(); err != nil {
		return nil, model.WithBlock(err, name)
	}
	if sf == nil {
		sf = scaling.NewContext()
	}
	return &ControlVolume1D{
		Block:   model.NewBlock(name),
		Config:  cfg,
		Scaling: sf,
		Log:     logrus.StandardLogger(),
		units:   make(map[string]unit.Dimensions),
	}, nil
}

// derivedUnits looks a quantity kind up in the property package metadata.
// There is no fallback unit.
func (cv *ControlVolume1D) derivedUnits(kind string) (unit.Dimensions, error) {
	if d, ok := cv.units[kind]; ok {
		return d, nil
	}
	d, err := cv.Config.PropertyPackage.Metadata().DerivedUnits(kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cv.Name, err)
	}
	cv.units[kind] = d
	return d, nil
}

func (cv *ControlVolume1D) logger(phase string) logrus.FieldLogger {
	return cv.Log.WithFields(logrus.Fields{"block": cv.Name, "phase": phase})
}

// AddGeometry records the flow direction and creates the length domain,
// the length and, for a uniform area, the area. lengthDomain, when not nil,
// is used as is; otherwise lengthDomainSet, defaulting to {0, 1}, gives the
// initial points. The points are validated by ApplyTransformation.
func (cv *ControlVolume1D) AddGeometry(flow model.FlowDirection, lengthDomain, lengthDomainSet []float64) error {
	if cv.Length != nil {
		return model.PhaseError("%s: geometry already added", cv.Name)
	}
	if flow > model.Backward {
		return &model.ConfigurationError{Block: cv.Name, Option: "flow_direction", Value: flow,
			Msg: "argument must be one of forward, backward"}
	}
	lengthUnits, err := cv.derivedUnits(properties.Length)
	if err != nil {
		return err
	}
	areaUnits, err := cv.derivedUnits(properties.Area)
	if err != nil {
		return err
	}

	switch {
	case lengthDomain != nil:
		cv.LengthDomain = append([]float64(nil), lengthDomain...)
	case lengthDomainSet != nil:
		cv.LengthDomain = append([]float64(nil), lengthDomainSet...)
	default:
		cv.LengthDomain = []float64{0, 1}
	}
	cv.FlowDirection = flow

	length := model.NewVar("length", model.Scalar, nil, model.VarOptions{
		Doc:        "Length of control volume",
		Units:      lengthUnits,
		Domain:     model.NonNegativeReals,
		Initialize: 1,
	})
	if err = cv.AddVar(length); err != nil {
		return err
	}
	cv.Length = length

	if cv.Config.AreaDefinition == Uniform {
		cv.Area = model.NewVar("area", model.Scalar, nil, model.VarOptions{
			Doc:        "Cross-sectional area of control volume",
			Units:      areaUnits,
			Domain:     model.NonNegativeReals,
			Initialize: 1,
		})
		if err = cv.AddVar(cv.Area); err != nil {
			return err
		}
	}
	cv.logger("add_geometry").WithField("flow_direction", flow).Debug("geometry added")
	return nil
}

// ApplyTransformation discretizes the length domain. It runs once per
// control volume; a configuration error leaves the control volume unchanged.
func (cv *ControlVolume1D) ApplyTransformation(method discretization.Method, scheme discretization.Scheme,
	finiteElements, collocationPoints int) error {
	if cv.Length == nil {
		return model.PhaseError("%s: length domain not created - call AddGeometry first", cv.Name)
	}
	if cv.Grid != nil {
		return model.PhaseError("%s: length domain already discretized", cv.Name)
	}
	grid, err := discretization.Transform(cv.LengthDomain, discretization.Options{
		Method:            method,
		Scheme:            scheme,
		FiniteElements:    finiteElements,
		CollocationPoints: collocationPoints,
		FlowDirection:     cv.FlowDirection,
	})
	if err != nil {
		return model.WithBlock(err, cv.Name)
	}

	if cv.Config.AreaDefinition == Variant {
		areaUnits, err := cv.derivedUnits(properties.Area)
		if err != nil {
			return err
		}
		area := model.NewVar("area", model.TimeSpace, model.Product(cv.Config.Time, grid.Points, nil),
			model.VarOptions{
				Doc:        "Cross-sectional area of control volume",
				Units:      areaUnits,
				Domain:     model.NonNegativeReals,
				Initialize: 1,
			})
		if err = cv.AddVar(area); err != nil {
			return err
		}
		cv.Area = area
	}
	cv.Grid = grid
	cv.derivative = grid.DerivativePoints()
	cv.LengthDomain = append([]float64(nil), grid.Points...)

	cv.logger("apply_transformation").WithFields(logrus.Fields{
		"method": grid.Method,
		"scheme": grid.Scheme,
		"nfe":    grid.FiniteElements,
		"points": grid.Len(),
	}).Debug("length domain discretized")
	return nil
}

// StateIndices returns the (time, length) indices of the discretized domain
func (cv *ControlVolume1D) StateIndices() []model.Index {
	return model.Product(cv.Config.Time, cv.LengthDomain, nil)
}

// AddStateBlocks builds the bulk state block "properties" at every
// (time, length) point through the property package
func (cv *ControlVolume1D) AddStateBlocks(informationFlow model.FlowDirection, hasPhaseEquilibrium bool) error {
	if cv.Grid == nil {
		return model.PhaseError("%s: length domain not discretized - call ApplyTransformation first", cv.Name)
	}
	if cv.Properties != nil {
		return model.PhaseError("%s: state blocks already added", cv.Name)
	}
	sb, err := cv.Config.PropertyPackage.BuildStateBlock(cv.Block, "properties", cv.StateIndices(),
		properties.StateBlockOptions{DefinedState: true, HasPhaseEquilibrium: hasPhaseEquilibrium})
	if err != nil {
		return fmt.Errorf("%s: %w", cv.Name, err)
	}
	cv.Properties = sb
	cv.InformationFlow = informationFlow
	cv.logger("add_state_blocks").WithField("states", sb.Len()).Debug("state blocks added")
	return nil
}

func (cv *ControlVolume1D) requireStateBlocks(step string) error {
	if cv.Properties == nil {
		return model.PhaseError("%s: state blocks not built - call AddStateBlocks before %s", cv.Name, step)
	}
	return nil
}

// AddMaterialBalances adds the component mass flow derivatives with their
// discretization equations, the mass transfer term, and the balance
//
//	flow_mass_comp_dx[t,x,j] == length * mass_transfer_term[t,x,j]
//
// at every point that carries a derivative
func (cv *ControlVolume1D) AddMaterialBalances() error {
	if err := cv.requireStateBlocks("AddMaterialBalances"); err != nil {
		return err
	}
	if cv.materialBalances {
		return model.PhaseError("%s: material balances already added", cv.Name)
	}
	flowUnits, err := cv.derivedUnits(properties.FlowMass)
	if err != nil {
		return err
	}
	lengthUnits, err := cv.derivedUnits(properties.Length)
	if err != nil {
		return err
	}
	comps := cv.Config.PropertyPackage.ComponentList()
	idx := model.Product(cv.Config.Time, cv.LengthDomain, comps)

	dx := model.NewVar("flow_mass_comp_dx", model.TimeSpaceComp, idx, model.VarOptions{
		Doc:   "Component mass flow derivative with respect to normalized length",
		Units: flowUnits,
	})
	mtt := model.NewVar("mass_transfer_term", model.TimeSpaceComp, idx, model.VarOptions{
		Doc:   "Component mass transfer per unit length",
		Units: divide(flowUnits, lengthUnits),
	})
	for _, v := range []*model.Var{dx, mtt} {
		if err = cv.AddVar(v); err != nil {
			return err
		}
	}
	if err = cv.addDiscretization("flow_mass_comp", dx, cv.Properties.FlowMassComp, comps); err != nil {
		return err
	}

	var eqs []*model.Equation
	for _, i := range idx {
		if !cv.hasDerivative(i.X) {
			continue
		}
		eq, err := model.NewEquation("material_balances", model.MaterialBalance, i,
			"dydx - length * mtt", map[string]*model.Cell{
				"dydx":   dx.MustCell(i),
				"length": cv.Length.Scalar(),
				"mtt":    mtt.MustCell(i),
			}, nil)
		if err != nil {
			return err
		}
		eqs = append(eqs, eq)
	}
	if err = cv.AddEquations("material_balances", eqs...); err != nil {
		return err
	}
	cv.FlowMassCompDx, cv.MassTransferTerm = dx, mtt
	cv.materialBalances = true
	cv.logger("add_material_balances").WithField("equations", len(eqs)).Debug("material balances added")
	return nil
}

// AddMomentumBalances adds the pressure derivative with its discretization
// equations and the balance pressure_dx == length * deltaP, or
// pressure_dx == 0 without pressure change
func (cv *ControlVolume1D) AddMomentumBalances(hasPressureChange bool) error {
	if err := cv.requireStateBlocks("AddMomentumBalances"); err != nil {
		return err
	}
	if cv.momentumBalances {
		return model.PhaseError("%s: momentum balances already added", cv.Name)
	}
	pUnits, err := cv.derivedUnits(properties.Pressure)
	if err != nil {
		return err
	}
	lengthUnits, err := cv.derivedUnits(properties.Length)
	if err != nil {
		return err
	}
	idx := cv.StateIndices()

	pdx := model.NewVar("pressure_dx", model.TimeSpace, idx, model.VarOptions{
		Doc:   "Pressure derivative with respect to normalized length",
		Units: pUnits,
	})
	if err = cv.AddVar(pdx); err != nil {
		return err
	}
	var deltaP *model.Var
	if hasPressureChange {
		deltaP = model.NewVar("deltaP", model.TimeSpace, idx, model.VarOptions{
			Doc:   "Pressure change per unit length",
			Units: divide(pUnits, lengthUnits),
		})
		if err = cv.AddVar(deltaP); err != nil {
			return err
		}
	}
	if err = cv.addDiscretization("pressure", pdx, cv.Properties.Pressure, nil); err != nil {
		return err
	}

	var eqs []*model.Equation
	for _, i := range idx {
		if !cv.hasDerivative(i.X) {
			continue
		}
		var eq *model.Equation
		if deltaP != nil {
			eq, err = model.NewEquation("momentum_balance", model.MomentumBalance, i,
				"pdx - length * dP", map[string]*model.Cell{
					"pdx":    pdx.MustCell(i),
					"length": cv.Length.Scalar(),
					"dP":     deltaP.MustCell(i),
				}, nil)
		} else {
			eq, err = model.NewEquation("momentum_balance", model.MomentumBalance, i,
				"pdx", map[string]*model.Cell{"pdx": pdx.MustCell(i)}, nil)
		}
		if err != nil {
			return err
		}
		eqs = append(eqs, eq)
	}
	if err = cv.AddEquations("momentum_balance", eqs...); err != nil {
		return err
	}
	cv.PressureDx, cv.DeltaP = pdx, deltaP
	cv.momentumBalances = true
	cv.logger("add_momentum_balances").WithFields(logrus.Fields{
		"equations":           len(eqs),
		"has_pressure_change": hasPressureChange,
	}).Debug("momentum balances added")
	return nil
}

// AddTotalEnthalpyBalances is not available on the base control volume:
// the property packages used here carry no enthalpy
func (cv *ControlVolume1D) AddTotalEnthalpyBalances() error {
	if err := cv.requireStateBlocks("AddTotalEnthalpyBalances"); err != nil {
		return err
	}
	return &model.ConfigurationError{Block: cv.Name, Option: "energy_balance_type", Value: "enthalpyTotal",
		Msg: "property package does not define enthalpy flow terms"}
}

// AddIsothermalConditions is a hook for derived control volumes. The base
// control volume adds no equations.
func (cv *ControlVolume1D) AddIsothermalConditions() error {
	return cv.requireStateBlocks("AddIsothermalConditions")
}

// CalculateScalingFactors gives every area entry a default factor of 1
func (cv *ControlVolume1D) CalculateScalingFactors() error {
	if cv.Length == nil {
		return model.PhaseError("%s: geometry not built - call AddGeometry before CalculateScalingFactors", cv.Name)
	}
	if cv.Area != nil {
		for _, c := range cv.Area.Cells() {
			if _, err := cv.Scaling.SetIfUnset(c, 1); err != nil {
				return err
			}
		}
	}
	return nil
}

// hasDerivative reports whether the grid writes a derivative at x
func (cv *ControlVolume1D) hasDerivative(x float64) bool {
	i, ok := cv.Grid.IndexOf(x)
	return ok && cv.derivative[i]
}

// addDiscretization writes one equation per grid stencil, time point and
// component. Derivative stencils go to <name>_disc_eq and relate dydx to y;
// continuity stencils go to <name>_cont_eq and relate y at an element end
// to the interior values.
func (cv *ControlVolume1D) addDiscretization(name string, dydx, y *model.Var, comps []string) error {
	if comps == nil {
		comps = []string{""}
	}
	points := cv.Grid.Points
	var disc, cont []*model.Equation
	for _, t := range cv.Config.Time {
		for _, s := range cv.Grid.Stencils() {
			for _, j := range comps {
				terms := make(map[string]*model.Cell, len(s.Indices)+1)
				consts := make(map[string]float64, len(s.Indices))
				sum := make([]string, len(s.Indices))
				for k, p := range s.Indices {
					ys, ws := fmt.Sprintf("y%d", k), fmt.Sprintf("w%d", k)
					terms[ys] = y.MustCell(model.Index{T: t, X: points[p], J: j})
					consts[ws] = s.Weights[k]
					sum[k] = ws + " * " + ys
				}
				idx := model.Index{T: t, X: points[s.Point], J: j}
				combination := "(" + strings.Join(sum, " + ") + ")"
				switch s.Kind {
				case discretization.Derivative:
					terms["dydx"] = dydx.MustCell(idx)
					eq, err := model.NewEquation(name+"_disc_eq", model.Discretization, idx,
						"dydx - "+combination, terms, consts)
					if err != nil {
						return err
					}
					disc = append(disc, eq)
				case discretization.Continuity:
					terms["y"] = y.MustCell(idx)
					eq, err := model.NewEquation(name+"_cont_eq", model.Continuity, idx,
						"y - "+combination, terms, consts)
					if err != nil {
						return err
					}
					cont = append(cont, eq)
				}
			}
		}
	}
	if err := cv.AddEquations(name+"_disc_eq", disc...); err != nil {
		return err
	}
	if len(cont) > 0 {
		return cv.AddEquations(name+"_cont_eq", cont...)
	}
	return nil
}

// divide returns the dimensions of a / b
func divide(a, b unit.Dimensions) unit.Dimensions {
	return unit.Div(unit.New(1, a), unit.New(1, b)).Dimensions()
}
