// Package properties defines what a control volume needs from a
// thermophysical property package: unit metadata, component sets, and
// state blocks holding the state variables at each (time, length) point.
package properties

import (
	"fmt"
	"sort"

	"github.com/ctessum/unit"
	"github.com/notargets/ChannelModel/model"
)

// Quantity kinds understood by Metadata.DerivedUnits
const (
	Length        = "length"
	Area          = "area"
	Time          = "time"
	Mass          = "mass"
	Temperature   = "temperature"
	Pressure      = "pressure"
	FlowMass      = "flow_mass"
	Dimensionless = "dimensionless"
)

// Metadata maps quantity kinds to the units of a property package
type Metadata struct {
	units map[string]unit.Dimensions
}

func NewMetadata(units map[string]unit.Dimensions) *Metadata {
	m := &Metadata{units: make(map[string]unit.Dimensions, len(units))}
	for k, v := range units {
		m.units[k] = v
	}
	return m
}

// SIMetadata is the unit set of a package working in SI base units
func SIMetadata() *Metadata {
	return NewMetadata(map[string]unit.Dimensions{
		Length:        unit.Meter,
		Area:          unit.Meter2,
		Time:          unit.Second,
		Mass:          unit.Kilogram,
		Temperature:   unit.Kelvin,
		Pressure:      unit.Pascal,
		FlowMass:      {unit.MassDim: 1, unit.TimeDim: -1},
		Dimensionless: unit.Dimless,
	})
}

// DerivedUnits returns the units of a quantity kind. There is no fallback:
// a kind the package does not declare is an error.
func (m *Metadata) DerivedUnits(kind string) (unit.Dimensions, error) {
	if m == nil {
		return nil, fmt.Errorf("property package has no metadata")
	}
	d, ok := m.units[kind]
	if !ok {
		return nil, fmt.Errorf("property package metadata does not define units for %q", kind)
	}
	return d, nil
}

// Kinds lists the declared quantity kinds, sorted
func (m *Metadata) Kinds() []string {
	out := make([]string, 0, len(m.units))
	for k := range m.units {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// StateBlockOptions are passed to Package.BuildStateBlock
type StateBlockOptions struct {
	DefinedState        bool // state variables are specified by the user, e.g. at an inlet
	HasPhaseEquilibrium bool
}

// StateBlock holds the state variables of one set of (time, length) points.
// Its variables are registered on the owning block under Name + "." + var.
type StateBlock struct {
	Name         string
	Options      StateBlockOptions
	Temperature  *model.Var // TimeSpace
	Pressure     *model.Var // TimeSpace
	FlowMassComp *model.Var // TimeSpaceComp
	indices      []model.Index
}

// Indices returns the (time, length) indices of the block in order
func (s *StateBlock) Indices() []model.Index {
	out := make([]model.Index, len(s.indices))
	copy(out, s.indices)
	return out
}

func (s *StateBlock) Len() int { return len(s.indices) }

// Has reports whether the block has a state at idx
func (s *StateBlock) Has(idx model.Index) bool {
	return s.Temperature.Cell(idx) != nil
}

// Vars returns the state variables of the block
func (s *StateBlock) Vars() []*model.Var {
	return []*model.Var{s.Temperature, s.Pressure, s.FlowMassComp}
}

// Package is the property package contract consumed by control volumes
type Package interface {
	Metadata() *Metadata
	ComponentList() []string
	SolventSet() []string
	SoluteSet() []string
	IonSet() []string
	// BuildStateBlock creates state variables at idx and registers them on b
	BuildStateBlock(b *model.Block, name string, idx []model.Index, opts StateBlockOptions) (*StateBlock, error)
}

// StateValues is a full state used to initialize state blocks
type StateValues struct {
	Temperature  float64
	Pressure     float64
	FlowMassComp map[string]float64
}

// CopyFrom copies the values of src into every unfixed cell of s that src
// also has
func (s *StateBlock) CopyFrom(src *StateBlock) {
	dst, from := s.Vars(), src.Vars()
	for i, v := range dst {
		for _, c := range v.Cells() {
			if c.Fixed {
				continue
			}
			if sc := from[i].Cell(c.Index); sc != nil {
				c.Value = sc.Value
			}
		}
	}
}

// Apply copies v into every unfixed cell of s
func (v StateValues) Apply(s *StateBlock) {
	s.Temperature.SetValue(v.Temperature)
	s.Pressure.SetValue(v.Pressure)
	for _, c := range s.FlowMassComp.Cells() {
		if f, ok := v.FlowMassComp[c.Index.J]; ok && !c.Fixed {
			c.Value = f
		}
	}
}
