package channel

import (
	"fmt"
	"strings"

	"github.com/notargets/ChannelModel/discretization"
	"github.com/notargets/ChannelModel/model"
	"github.com/notargets/ChannelModel/properties"
)

// AreaDefinition selects whether the cross sectional area varies along the
// length domain
type AreaDefinition uint8

const (
	Uniform AreaDefinition = iota // one area for the whole channel
	Variant                       // area indexed by time and space
)

func (a AreaDefinition) String() string {
	switch a {
	case Uniform:
		return "uniform"
	case Variant:
		return "variant"
	default:
		return fmt.Sprintf("AreaDefinition(%d)", uint8(a))
	}
}

func ParseAreaDefinition(s string) (AreaDefinition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "uniform":
		return Uniform, nil
	case "variant":
		return Variant, nil
	}
	return Uniform, &model.ConfigurationError{Option: "area_definition", Value: s,
		Msg: "argument must be one of uniform, variant"}
}

// PressureChangeType tells how the pressure drop of a channel is specified
type PressureChangeType uint8

const (
	FixedPerStage PressureChangeType = iota
	FixedPerUnitLength
	Calculated
)

func (p PressureChangeType) String() string {
	switch p {
	case FixedPerStage:
		return "fixed_per_stage"
	case FixedPerUnitLength:
		return "fixed_per_unit_length"
	case Calculated:
		return "calculated"
	default:
		return fmt.Sprintf("PressureChangeType(%d)", uint8(p))
	}
}

func ParsePressureChangeType(s string) (PressureChangeType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "calculated":
		return Calculated, nil
	case "fixed_per_stage":
		return FixedPerStage, nil
	case "fixed_per_unit_length":
		return FixedPerUnitLength, nil
	}
	return Calculated, &model.ConfigurationError{Option: "pressure_change_type", Value: s,
		Msg: "argument must be one of fixed_per_stage, fixed_per_unit_length, calculated"}
}

// Config holds the construction options of a control volume
type Config struct {
	PropertyPackage      properties.Package
	Time                 []float64 // strictly increasing time points
	AreaDefinition       AreaDefinition
	TransformationMethod discretization.Method
	TransformationScheme discretization.Scheme
	FiniteElements       int
	CollocationPoints    int
	FlowDirection        model.FlowDirection
	LengthDomainSet      []float64 // initial points of the length domain
	HasPressureChange    bool
	PressureChangeType   PressureChangeType
	HasPhaseEquilibrium  bool
}

// DefaultConfig returns the default options for a steady state channel
// using pkg
func DefaultConfig(pkg properties.Package) Config {
	return Config{
		PropertyPackage:    pkg,
		Time:               []float64{0},
		AreaDefinition:     Uniform,
		FiniteElements:     20,
		CollocationPoints:  5,
		FlowDirection:      model.Forward,
		LengthDomainSet:    []float64{0, 1},
		HasPressureChange:  true,
		PressureChangeType: Calculated,
	}
}

// Validate checks the options that are not checked by the discretization
// layer. Counts and the method/scheme pair are validated by ApplyTransformation.
func (c Config) Validate() error {
	if c.PropertyPackage == nil {
		return &model.ConfigurationError{Option: "property_package", Value: nil,
			Msg: "a property package must be provided"}
	}
	if len(c.Time) == 0 {
		return &model.ConfigurationError{Option: "time", Value: c.Time,
			Msg: "at least one time point is required"}
	}
	for i := 1; i < len(c.Time); i++ {
		if c.Time[i] <= c.Time[i-1] {
			return &model.ConfigurationError{Option: "time", Value: c.Time,
				Msg: "time points must be strictly increasing"}
		}
	}
	if c.AreaDefinition > Variant {
		return &model.ConfigurationError{Option: "area_definition", Value: c.AreaDefinition,
			Msg: "argument must be one of uniform, variant"}
	}
	if c.FlowDirection > model.Backward {
		return &model.ConfigurationError{Option: "flow_direction", Value: c.FlowDirection,
			Msg: "argument must be one of forward, backward"}
	}
	if c.PressureChangeType > Calculated {
		return &model.ConfigurationError{Option: "pressure_change_type", Value: c.PressureChangeType,
			Msg: "argument must be one of fixed_per_stage, fixed_per_unit_length, calculated"}
	}
	return nil
}
