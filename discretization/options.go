package discretization

import (
	"fmt"
	"strings"

	"github.com/notargets/ChannelModel/model"
)

// Method selects the discretization family
type Method uint8

const (
	DefaultMethod Method = iota // resolved to FiniteDifference
	FiniteDifference
	Collocation
)

func (m Method) String() string {
	switch m {
	case DefaultMethod:
		return "useDefault"
	case FiniteDifference:
		return "dae.finite_difference"
	case Collocation:
		return "dae.collocation"
	default:
		return fmt.Sprintf("Method(%d)", uint8(m))
	}
}

// ParseMethod converts a transformation method name. An empty string
// selects DefaultMethod.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "usedefault":
		return DefaultMethod, nil
	case "dae.finite_difference", "finite_difference":
		return FiniteDifference, nil
	case "dae.collocation", "collocation":
		return Collocation, nil
	}
	return DefaultMethod, &model.ConfigurationError{Option: "transformation_method", Value: s,
		Msg: "argument must be one of dae.finite_difference, dae.collocation"}
}

// Scheme selects the scheme within a method
type Scheme uint8

const (
	DefaultScheme Scheme = iota
	BackwardDifference
	ForwardDifference
	CentralDifference
	LagrangeRadau
	LagrangeLegendre
)

func (s Scheme) String() string {
	switch s {
	case DefaultScheme:
		return "useDefault"
	case BackwardDifference:
		return "BACKWARD"
	case ForwardDifference:
		return "FORWARD"
	case CentralDifference:
		return "CENTRAL"
	case LagrangeRadau:
		return "LAGRANGE-RADAU"
	case LagrangeLegendre:
		return "LAGRANGE-LEGENDRE"
	default:
		return fmt.Sprintf("Scheme(%d)", uint8(s))
	}
}

// ParseScheme converts a transformation scheme name. An empty string
// selects DefaultScheme.
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "USEDEFAULT":
		return DefaultScheme, nil
	case "BACKWARD":
		return BackwardDifference, nil
	case "FORWARD":
		return ForwardDifference, nil
	case "CENTRAL":
		return CentralDifference, nil
	case "LAGRANGE-RADAU":
		return LagrangeRadau, nil
	case "LAGRANGE-LEGENDRE":
		return LagrangeLegendre, nil
	}
	return DefaultScheme, &model.ConfigurationError{Option: "transformation_scheme", Value: s,
		Msg: "argument must be one of BACKWARD, FORWARD, CENTRAL, LAGRANGE-RADAU, LAGRANGE-LEGENDRE"}
}

// supported lists the valid (method, scheme) pairs
var supported = map[Method][]Scheme{
	FiniteDifference: {BackwardDifference, ForwardDifference, CentralDifference},
	Collocation:      {LagrangeRadau, LagrangeLegendre},
}

// Options parameterize Transform
type Options struct {
	Method            Method
	Scheme            Scheme
	FiniteElements    int
	CollocationPoints int // ignored by finite difference methods
	FlowDirection     model.FlowDirection
}

// Resolve fills in default method and scheme and validates the result.
// The finite difference default is BACKWARD for forward flow and FORWARD
// for backward flow; the collocation default is LAGRANGE-RADAU.
func (o Options) Resolve() (Options, error) {
	if o.FiniteElements < 1 {
		return o, &model.ConfigurationError{Option: "finite_elements", Value: o.FiniteElements,
			Msg: "number of finite elements must be a positive integer"}
	}
	// validated for every method even though only collocation reads it
	if o.CollocationPoints < 1 {
		return o, &model.ConfigurationError{Option: "collocation_points", Value: o.CollocationPoints,
			Msg: "number of collocation points must be a positive integer"}
	}
	if o.Method == DefaultMethod {
		o.Method = FiniteDifference
	}
	schemes, ok := supported[o.Method]
	if !ok {
		return o, &model.ConfigurationError{Option: "transformation_method", Value: o.Method,
			Msg: "unsupported discretization method"}
	}
	if o.Scheme == DefaultScheme {
		switch {
		case o.Method == Collocation:
			o.Scheme = LagrangeRadau
		case o.FlowDirection == model.Backward:
			o.Scheme = ForwardDifference
		default:
			o.Scheme = BackwardDifference
		}
	}
	for _, s := range schemes {
		if s == o.Scheme {
			return o, nil
		}
	}
	return o, &model.ConfigurationError{Option: "transformation_scheme", Value: o.Scheme,
		Msg: fmt.Sprintf("scheme is not valid for %s", o.Method)}
}
