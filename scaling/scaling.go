// Package scaling holds the scaling factors a nonlinear solver applies to
// variable columns and constraint rows. A Context belongs to one model
// instance and is passed explicitly to whatever assigns or reads factors.
package scaling

import (
	"fmt"
	"math"
)

// Context maps a variable or constraint handle, compared by identity, to a
// positive multiplier
type Context struct {
	factors map[interface{}]float64
}

func NewContext() *Context {
	return &Context{factors: make(map[interface{}]float64)}
}

// Get returns the factor for key and whether one has been set
func (c *Context) Get(key interface{}) (float64, bool) {
	sf, ok := c.factors[key]
	return sf, ok
}

// Set assigns sf to key, replacing any existing factor
func (c *Context) Set(key interface{}, sf float64) error {
	if key == nil {
		return fmt.Errorf("scaling factor key is nil")
	}
	if !(sf > 0) || math.IsInf(sf, 0) {
		return fmt.Errorf("scaling factor must be positive and finite, got %g", sf)
	}
	c.factors[key] = sf
	return nil
}

// SetIfUnset assigns sf only when key has no factor yet
func (c *Context) SetIfUnset(key interface{}, sf float64) (bool, error) {
	if _, ok := c.factors[key]; ok {
		return false, nil
	}
	return true, c.Set(key, sf)
}

func (c *Context) Len() int { return len(c.factors) }
