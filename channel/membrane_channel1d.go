package channel

import (
	"fmt"
	"strings"

	"github.com/notargets/ChannelModel/discretization"
	"github.com/notargets/ChannelModel/model"
	"github.com/notargets/ChannelModel/properties"
	"github.com/notargets/ChannelModel/scaling"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Scaling factors applied by MembraneChannel1D.CalculateScalingFactors
const (
	areaScale                = 100.
	pressureChangeTotalScale = 1.e-4
	pressureGradientScale    = 1.e-5 // pressure_dx when dP_dx exists
	pressureDerivativeScale  = 1.e5  // pressure_dx otherwise
)

// MembraneChannel1D is the feed channel of a one dimensional membrane unit.
// It is isothermal along its length, writes no enthalpy balance and exposes
// deltaP under the name dP_dx.
type MembraneChannel1D struct {
	*ControlVolume1D
	FirstElement        float64
	DifferenceElements  []float64 // LengthDomain without FirstElement, in order
	NFE                 *model.Param
	Width               *model.Var
	PropertiesInterface *properties.StateBlock
	DPdx                *model.Var // same *Var as DeltaP
	PressureChangeTotal *model.Var // Time
	PressureChangeType  PressureChangeType
}

func NewMembraneChannel1D(name string, cfg Config, sf *scaling.Context) (*MembraneChannel1D, error) {
	cv, err := NewControlVolume1D(name, cfg, sf)
	if err != nil {
		return nil, err
	}
	return &MembraneChannel1D{ControlVolume1D: cv}, nil
}

// ApplyTransformation discretizes the length domain, then derives the first
// element, the difference elements and the element count nfe
func (c *MembraneChannel1D) ApplyTransformation(method discretization.Method, scheme discretization.Scheme,
	finiteElements, collocationPoints int) error {
	if err := c.ControlVolume1D.ApplyTransformation(method, scheme, finiteElements, collocationPoints); err != nil {
		return err
	}
	c.FirstElement = c.Grid.First()
	c.DifferenceElements = c.DifferenceElements[:0]
	for _, x := range c.LengthDomain {
		if x != c.FirstElement {
			c.DifferenceElements = append(c.DifferenceElements, x)
		}
	}
	c.NFE = &model.Param{Name: "nfe", Doc: "Number of finite elements", Value: float64(len(c.DifferenceElements))}
	return c.AddParam(c.NFE)
}

// AddGeometry adds the base geometry and the channel width, bounded to
// [0.1, 1000] in the length units of the property package
func (c *MembraneChannel1D) AddGeometry(flow model.FlowDirection, lengthDomain, lengthDomainSet []float64) error {
	if err := c.ControlVolume1D.AddGeometry(flow, lengthDomain, lengthDomainSet); err != nil {
		return err
	}
	lengthUnits, err := c.derivedUnits(properties.Length)
	if err != nil {
		return err
	}
	c.Width = model.NewVar("width", model.Scalar, nil, model.VarOptions{
		Doc:        "Membrane width",
		Units:      lengthUnits,
		Domain:     model.NonNegativeReals,
		Bounds:     &model.Bounds{Lower: 1.e-1, Upper: 1.e3},
		Initialize: 1,
	})
	return c.AddVar(c.Width)
}

// AddStateBlocks adds the bulk state blocks and the interface state block
// "properties_interface" at the same indices
func (c *MembraneChannel1D) AddStateBlocks(informationFlow model.FlowDirection, hasPhaseEquilibrium bool) error {
	if err := c.ControlVolume1D.AddStateBlocks(informationFlow, hasPhaseEquilibrium); err != nil {
		return err
	}
	c.FirstElement = floats.Min(c.LengthDomain)
	sb, err := c.Config.PropertyPackage.BuildStateBlock(c.Block, "properties_interface",
		c.Properties.Indices(), properties.StateBlockOptions{HasPhaseEquilibrium: hasPhaseEquilibrium})
	if err != nil {
		return fmt.Errorf("%s: %w", c.Name, err)
	}
	c.PropertiesInterface = sb
	return nil
}

// AddTotalEnthalpyBalances does nothing; temperature is set by
// AddIsothermalConditions instead
func (c *MembraneChannel1D) AddTotalEnthalpyBalances() error {
	return nil
}

// AddIsothermalConditions adds eq_feed_isothermal:
//
//	temperature[t,x] == temperature[t,FirstElement]
//
// for every time point and every x but FirstElement
func (c *MembraneChannel1D) AddIsothermalConditions() error {
	if err := c.ControlVolume1D.AddIsothermalConditions(); err != nil {
		return err
	}
	if c.HasComponent("eq_feed_isothermal") {
		return model.PhaseError("%s: isothermal conditions already added", c.Name)
	}
	var eqs []*model.Equation
	temp := c.Properties.Temperature
	for _, t := range c.Config.Time {
		first := temp.MustCell(model.Index{T: t, X: c.FirstElement})
		for _, x := range c.LengthDomain {
			if x == c.FirstElement {
				continue
			}
			idx := model.Index{T: t, X: x}
			eq, err := model.NewEquation("eq_feed_isothermal", model.Isothermal, idx, "T0 - T",
				map[string]*model.Cell{"T0": first, "T": temp.MustCell(idx)}, nil)
			if err != nil {
				return err
			}
			eqs = append(eqs, eq)
		}
	}
	if err := c.AddEquations("eq_feed_isothermal", eqs...); err != nil {
		return err
	}
	c.logger("add_isothermal_conditions").WithField("equations", len(eqs)).Debug("isothermal conditions added")
	return nil
}

// AddMomentumBalances adds the base momentum balances and, with pressure
// change, the dP_dx reference
func (c *MembraneChannel1D) AddMomentumBalances(hasPressureChange bool, pressureChangeType PressureChangeType) error {
	if err := c.checkPressureChangeType(pressureChangeType); err != nil {
		return err
	}
	if err := c.ControlVolume1D.AddMomentumBalances(hasPressureChange); err != nil {
		return err
	}
	if !hasPressureChange {
		return nil
	}
	return c.AddPressureChange(pressureChangeType)
}

// AddPressureChange exposes deltaP as dP_dx for every pressure change type.
// No variable or equation is created.
func (c *MembraneChannel1D) AddPressureChange(pressureChangeType PressureChangeType) error {
	if c.DeltaP == nil {
		return model.PhaseError("%s: deltaP not built - call AddMomentumBalances with pressure change first", c.Name)
	}
	if err := c.checkPressureChangeType(pressureChangeType); err != nil {
		return err
	}
	if err := c.Alias("dP_dx", "deltaP"); err != nil {
		return err
	}
	c.DPdx, _ = c.Var("dP_dx")
	c.PressureChangeType = pressureChangeType
	return nil
}

func (c *MembraneChannel1D) checkPressureChangeType(pressureChangeType PressureChangeType) error {
	if pressureChangeType > Calculated {
		return &model.ConfigurationError{Block: c.Name, Option: "pressure_change_type", Value: pressureChangeType,
			Msg: "argument must be one of fixed_per_stage, fixed_per_unit_length, calculated"}
	}
	return nil
}

// inletOutlet returns the inlet and outlet points for the flow direction
func (c *MembraneChannel1D) inletOutlet() (inlet, outlet float64) {
	if c.FlowDirection == model.Backward {
		return c.Grid.Last(), c.Grid.First()
	}
	return c.Grid.First(), c.Grid.Last()
}

// AddTotalPressureChange adds pressure_change_total[t] and
//
//	pressure_change_total[t] == pressure[t,outlet] - pressure[t,inlet]
func (c *MembraneChannel1D) AddTotalPressureChange() error {
	if err := c.requireStateBlocks("AddTotalPressureChange"); err != nil {
		return err
	}
	if c.PressureChangeTotal != nil {
		return model.PhaseError("%s: total pressure change already added", c.Name)
	}
	pUnits, err := c.derivedUnits(properties.Pressure)
	if err != nil {
		return err
	}
	idx := model.Product(c.Config.Time, []float64{0}, nil)
	total := model.NewVar("pressure_change_total", model.Time, idx, model.VarOptions{
		Doc:   "Total pressure change across the channel",
		Units: pUnits,
	})
	if err = c.AddVar(total); err != nil {
		return err
	}
	inlet, outlet := c.inletOutlet()
	var eqs []*model.Equation
	for _, t := range c.Config.Time {
		eq, err := model.NewEquation("eq_pressure_change_total", model.PressureChange, model.Index{T: t},
			"dP - (Pout - Pin)", map[string]*model.Cell{
				"dP":   total.MustCell(model.Index{T: t}),
				"Pout": c.Properties.Pressure.MustCell(model.Index{T: t, X: outlet}),
				"Pin":  c.Properties.Pressure.MustCell(model.Index{T: t, X: inlet}),
			}, nil)
		if err != nil {
			return err
		}
		eqs = append(eqs, eq)
	}
	if err = c.AddEquations("eq_pressure_change_total", eqs...); err != nil {
		return err
	}
	c.PressureChangeTotal = total
	return nil
}

// CalculateScalingFactors runs the base scaling pass, then
//   - sets area to 100 where its factor is still the default 1
//   - sets pressure_change_total entries to 1e-4 where unset
//   - sets every pressure_dx entry to 1e-5 when dP_dx exists and 1e5
//     otherwise, replacing any earlier factor
func (c *MembraneChannel1D) CalculateScalingFactors() error {
	if err := c.ControlVolume1D.CalculateScalingFactors(); err != nil {
		return err
	}
	sf := c.Scaling
	if c.Area != nil {
		for _, cell := range c.Area.Cells() {
			if v, ok := sf.Get(cell); ok && v == 1 {
				if err := sf.Set(cell, areaScale); err != nil {
					return err
				}
			}
		}
	}
	if c.PressureChangeTotal != nil {
		for _, cell := range c.PressureChangeTotal.Cells() {
			if _, err := sf.SetIfUnset(cell, pressureChangeTotalScale); err != nil {
				return err
			}
		}
	}
	if c.PressureDx != nil {
		scale := pressureDerivativeScale
		if c.HasVar("dP_dx") {
			scale = pressureGradientScale
		}
		for _, cell := range c.PressureDx.Cells() {
			if err := sf.Set(cell, scale); err != nil {
				return err
			}
		}
	}
	c.logger("calculate_scaling_factors").WithField("factors", sf.Len()).Debug("scaling factors set")
	return nil
}

// Initialize copies the inlet state into every unfixed cell of the bulk and
// interface state blocks
func (c *MembraneChannel1D) Initialize(inlet properties.StateValues) error {
	if err := c.requireStateBlocks("Initialize"); err != nil {
		return err
	}
	inlet.Apply(c.Properties)
	if pi := c.PropertiesInterface; pi != nil {
		// the interface does not define its state, start it at the bulk
		if pi.Options.DefinedState {
			inlet.Apply(pi)
		} else {
			pi.CopyFrom(c.Properties)
		}
	}
	c.logger("initialize").WithFields(logrus.Fields{
		"temperature": inlet.Temperature,
		"pressure":    inlet.Pressure,
	}).Debug("state initialized from inlet")
	return nil
}

// Build runs every construction step in order using the stored Config
func (c *MembraneChannel1D) Build() error {
	cfg := c.Config
	steps := []struct {
		name string
		run  func() error
	}{
		{"add_geometry", func() error { return c.AddGeometry(cfg.FlowDirection, nil, cfg.LengthDomainSet) }},
		{"apply_transformation", func() error {
			return c.ApplyTransformation(cfg.TransformationMethod, cfg.TransformationScheme,
				cfg.FiniteElements, cfg.CollocationPoints)
		}},
		{"add_state_blocks", func() error { return c.AddStateBlocks(cfg.FlowDirection, cfg.HasPhaseEquilibrium) }},
		{"add_material_balances", c.AddMaterialBalances},
		{"add_momentum_balances", func() error {
			return c.AddMomentumBalances(cfg.HasPressureChange, cfg.PressureChangeType)
		}},
		{"add_total_enthalpy_balances", c.AddTotalEnthalpyBalances},
		{"add_isothermal_conditions", c.AddIsothermalConditions},
		{"add_total_pressure_change", func() error {
			if !cfg.HasPressureChange {
				return nil
			}
			return c.AddTotalPressureChange()
		}},
		{"calculate_scaling_factors", c.CalculateScalingFactors},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	c.logger("build").WithFields(logrus.Fields{
		"points":    len(c.LengthDomain),
		"equations": c.ActiveEquations(),
		"dof":       c.DegreesOfFreedom(),
	}).Info("membrane channel built")
	return nil
}

// String returns a summary of the channel grid, variables and equations
func (c *MembraneChannel1D) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("=== MembraneChannel1D %s ===\n", c.Name))
	sb.WriteString(fmt.Sprintf("  Flow direction: %s\n", c.FlowDirection))
	sb.WriteString(fmt.Sprintf("  Area definition: %s\n", c.Config.AreaDefinition))

	sb.WriteString("\n--- Length Domain ---\n")
	if c.Grid == nil {
		sb.WriteString(fmt.Sprintf("  Not discretized, initial points %v\n", c.LengthDomain))
	} else {
		sb.WriteString(fmt.Sprintf("  %s\n", c.Grid))
		sb.WriteString(fmt.Sprintf("  Points: %d, first element %g, difference elements %d\n",
			len(c.LengthDomain), c.FirstElement, len(c.DifferenceElements)))
		if c.NFE != nil {
			sb.WriteString(fmt.Sprintf("  nfe: %d\n", c.NFE.Int()))
		}
	}

	sb.WriteString("\n--- Variables ---\n")
	for _, v := range c.Vars() {
		sb.WriteString(fmt.Sprintf("  %-36s %6d  [%s]\n", v.Name, v.Len(), v.Units))
	}
	if c.DPdx != nil {
		sb.WriteString("  dP_dx -> deltaP\n")
	}

	sb.WriteString("\n--- Equations ---\n")
	for _, name := range c.Families() {
		sb.WriteString(fmt.Sprintf("  %-36s %6d\n", name, len(c.Equations(name))))
	}
	sb.WriteString(fmt.Sprintf("  Active equations: %d\n", c.ActiveEquations()))
	sb.WriteString(fmt.Sprintf("  Degrees of freedom: %d\n", c.DegreesOfFreedom()))
	sb.WriteString(fmt.Sprintf("  Scaling factors: %d\n", c.Scaling.Len()))
	return sb.String()
}
