package model

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is matched by every *ConfigurationError
	ErrConfiguration = errors.New("configuration error")
	// ErrPhaseOrder is returned when a construction step runs before the
	// steps it depends on, or runs twice
	ErrPhaseOrder = errors.New("construction phase out of order")
)

// ConfigurationError reports an invalid option detected while a model is
// being constructed. It is never deferred to solve time.
type ConfigurationError struct {
	Block  string      // block that received the option, may be empty
	Option string      // option name, e.g. "transformation_scheme"
	Value  interface{} // offending value
	Msg    string
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Block != "" && e.Option != "":
		return fmt.Sprintf("%s received invalid argument for %s: %v. %s", e.Block, e.Option, e.Value, e.Msg)
	case e.Option != "":
		return fmt.Sprintf("invalid argument for %s: %v. %s", e.Option, e.Value, e.Msg)
	default:
		return e.Msg
	}
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// WithBlock returns err with the block name attached when it is a
// *ConfigurationError that does not name one yet
func WithBlock(err error, block string) error {
	var ce *ConfigurationError
	if errors.As(err, &ce) && ce.Block == "" {
		cp := *ce
		cp.Block = block
		return &cp
	}
	return err
}

// PhaseError builds an ErrPhaseOrder error
func PhaseError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrPhaseOrder, fmt.Sprintf(format, args...))
}
