package model

import (
	"fmt"
	"sort"
)

// Block owns the variables, parameters and equation records of one model
// component. Names are unique within a block; a reference added with Alias
// resolves to the same *Var as its target.
type Block struct {
	Name string

	vars      map[string]*Var
	varOrder  []string
	aliases   map[string]string
	params    map[string]*Param
	equations []*Equation
	families  map[string][]*Equation
}

func NewBlock(name string) *Block {
	return &Block{
		Name:     name,
		vars:     make(map[string]*Var),
		aliases:  make(map[string]string),
		params:   make(map[string]*Param),
		families: make(map[string][]*Equation),
	}
}

// AddVar registers v under v.Name
func (b *Block) AddVar(v *Var) error {
	if b.HasComponent(v.Name) {
		return fmt.Errorf("%s: component %s already exists", b.Name, v.Name)
	}
	b.vars[v.Name] = v
	b.varOrder = append(b.varOrder, v.Name)
	return nil
}

// Alias adds a non-owning reference named alias to the variable target
func (b *Block) Alias(alias, target string) error {
	v, ok := b.vars[target]
	if !ok {
		return fmt.Errorf("%s: cannot alias %s to missing variable %s", b.Name, alias, target)
	}
	if b.HasComponent(alias) {
		return fmt.Errorf("%s: component %s already exists", b.Name, alias)
	}
	b.vars[alias] = v
	b.aliases[alias] = target
	return nil
}

// Var looks a variable up by name or alias
func (b *Block) Var(name string) (*Var, bool) {
	v, ok := b.vars[name]
	return v, ok
}

func (b *Block) HasVar(name string) bool {
	_, ok := b.vars[name]
	return ok
}

// IsAlias reports whether name is a reference rather than an owned variable
func (b *Block) IsAlias(name string) bool {
	_, ok := b.aliases[name]
	return ok
}

// HasComponent reports whether any variable, alias, parameter or
// constraint family uses name
func (b *Block) HasComponent(name string) bool {
	if _, ok := b.vars[name]; ok {
		return true
	}
	if _, ok := b.params[name]; ok {
		return true
	}
	_, ok := b.families[name]
	return ok
}

// Vars returns the owned variables in the order they were added
func (b *Block) Vars() []*Var {
	out := make([]*Var, len(b.varOrder))
	for i, n := range b.varOrder {
		out[i] = b.vars[n]
	}
	return out
}

func (b *Block) AddParam(p *Param) error {
	if b.HasComponent(p.Name) {
		return fmt.Errorf("%s: component %s already exists", b.Name, p.Name)
	}
	b.params[p.Name] = p
	return nil
}

func (b *Block) Param(name string) (*Param, bool) {
	p, ok := b.params[name]
	return p, ok
}

// AddEquations creates the constraint family name from eqs. A family may
// be declared with no records, which still reserves its name. Families are
// written once; adding to an existing one is an error.
func (b *Block) AddEquations(name string, eqs ...*Equation) error {
	if b.HasComponent(name) {
		return fmt.Errorf("%s: component %s already exists", b.Name, name)
	}
	for _, eq := range eqs {
		if eq.Name != name {
			return fmt.Errorf("%s: equation %s added to family %s", b.Name, eq.Name, name)
		}
	}
	b.families[name] = append(b.families[name], eqs...)
	b.equations = append(b.equations, eqs...)
	return nil
}

// Equations returns the records of one constraint family
func (b *Block) Equations(name string) []*Equation {
	return b.families[name]
}

// AllEquations returns every record in insertion order
func (b *Block) AllEquations() []*Equation {
	return b.equations
}

// Families returns the constraint family names, sorted
func (b *Block) Families() []string {
	out := make([]string, 0, len(b.families))
	for n := range b.families {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ActiveEquations counts the active equation records
func (b *Block) ActiveEquations() int {
	n := 0
	for _, eq := range b.equations {
		if eq.Active {
			n++
		}
	}
	return n
}

// UnfixedVariablesInActiveEquations returns the distinct free cells that
// appear in at least one active equation
func (b *Block) UnfixedVariablesInActiveEquations() []*Cell {
	seen := make(map[*Cell]bool)
	var out []*Cell
	for _, eq := range b.equations {
		if !eq.Active {
			continue
		}
		for _, c := range eq.Cells() {
			if !c.Fixed && !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// DegreesOfFreedom is the number of free cells in active equations minus
// the number of active equations
func (b *Block) DegreesOfFreedom() int {
	return len(b.UnfixedVariablesInActiveEquations()) - b.ActiveEquations()
}

// MaxResidual returns the equation with the largest absolute residual
func (b *Block) MaxResidual() (worst *Equation, value float64, err error) {
	for _, eq := range b.equations {
		if !eq.Active {
			continue
		}
		r, err := eq.Residual()
		if err != nil {
			return nil, 0, err
		}
		if r < 0 {
			r = -r
		}
		if worst == nil || r > value {
			worst, value = eq, r
		}
	}
	return worst, value, nil
}
