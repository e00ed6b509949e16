package properties

import (
	"fmt"

	"github.com/ctessum/unit"
	"github.com/notargets/ChannelModel/model"
)

// AqueousConfig lists the components of an aqueous solution
type AqueousConfig struct {
	Solvent string   // defaults to H2O
	Solutes []string // at least one
	Ions    []string // subset of Solutes carrying charge
}

// Aqueous is a single liquid phase, multi-solute property package in SI units
type Aqueous struct {
	meta    *Metadata
	solvent string
	solutes []string
	ions    []string
}

// NewAqueous validates cfg and returns the package
func NewAqueous(cfg AqueousConfig) (*Aqueous, error) {
	if cfg.Solvent == "" {
		cfg.Solvent = "H2O"
	}
	if len(cfg.Solutes) == 0 {
		return nil, &model.ConfigurationError{Option: "solute_list", Value: cfg.Solutes,
			Msg: "at least one solute must be specified"}
	}
	seen := map[string]bool{cfg.Solvent: true}
	for i, s := range cfg.Solutes {
		if s == "" {
			return nil, &model.ConfigurationError{Option: "solute_list", Value: cfg.Solutes,
				Msg: fmt.Sprintf("item %d within 'solute_list' is empty", i)}
		}
		if seen[s] {
			return nil, &model.ConfigurationError{Option: "solute_list", Value: cfg.Solutes,
				Msg: fmt.Sprintf("item %s within 'solute_list' is duplicated", s)}
		}
		seen[s] = true
	}
	for _, ion := range cfg.Ions {
		if ion == cfg.Solvent || !seen[ion] {
			return nil, &model.ConfigurationError{Option: "ion_set", Value: cfg.Ions,
				Msg: fmt.Sprintf("item %s within 'ion_set' list is not in 'solute_list'", ion)}
		}
	}
	return &Aqueous{
		meta:    SIMetadata(),
		solvent: cfg.Solvent,
		solutes: append([]string(nil), cfg.Solutes...),
		ions:    append([]string(nil), cfg.Ions...),
	}, nil
}

func (a *Aqueous) Metadata() *Metadata { return a.meta }

// ComponentList is the solvent followed by the solutes
func (a *Aqueous) ComponentList() []string {
	return append([]string{a.solvent}, a.solutes...)
}

func (a *Aqueous) SolventSet() []string { return []string{a.solvent} }
func (a *Aqueous) SoluteSet() []string  { return append([]string(nil), a.solutes...) }
func (a *Aqueous) IonSet() []string     { return append([]string(nil), a.ions...) }

// BuildStateBlock creates temperature, pressure and component mass flows at idx
func (a *Aqueous) BuildStateBlock(b *model.Block, name string, idx []model.Index,
	opts StateBlockOptions) (*StateBlock, error) {
	if len(idx) == 0 {
		return nil, fmt.Errorf("state block %s: no indices", name)
	}
	flowUnits, err := a.meta.DerivedUnits(FlowMass)
	if err != nil {
		return nil, err
	}

	var time, length []float64
	seenT, seenX := map[float64]bool{}, map[float64]bool{}
	for _, i := range idx {
		if !seenT[i.T] {
			seenT[i.T] = true
			time = append(time, i.T)
		}
		if !seenX[i.X] {
			seenX[i.X] = true
			length = append(length, i.X)
		}
	}

	sb := &StateBlock{
		Name:    name,
		Options: opts,
		Temperature: model.NewVar(name+".temperature", model.TimeSpace, idx, model.VarOptions{
			Doc:        "State temperature",
			Units:      unit.Kelvin,
			Domain:     model.NonNegativeReals,
			Bounds:     &model.Bounds{Lower: 273.15, Upper: 373.15},
			Initialize: 298.15,
		}),
		Pressure: model.NewVar(name+".pressure", model.TimeSpace, idx, model.VarOptions{
			Doc:        "State pressure",
			Units:      unit.Pascal,
			Domain:     model.NonNegativeReals,
			Bounds:     &model.Bounds{Lower: 1e4, Upper: 1e8},
			Initialize: 101325,
		}),
		FlowMassComp: model.NewVar(name+".flow_mass_comp", model.TimeSpaceComp,
			model.Product(time, length, a.ComponentList()), model.VarOptions{
				Doc:        "Component mass flowrate",
				Units:      flowUnits,
				Domain:     model.NonNegativeReals,
				Bounds:     &model.Bounds{Lower: 0, Upper: 1e3},
				Initialize: 0,
			}),
	}
	for _, i := range idx {
		sb.indices = append(sb.indices, model.TimeSpace.Key(i))
	}
	for _, v := range sb.Vars() {
		if err := b.AddVar(v); err != nil {
			return nil, err
		}
	}
	return sb, nil
}
