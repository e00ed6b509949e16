package model

import "strings"

// FlowDirection indicates the direction of material flow relative to the
// length domain
type FlowDirection uint8

const (
	Forward  FlowDirection = iota // flow goes from 0 to 1
	Backward                      // flow goes from 1 to 0
)

func (d FlowDirection) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "unknown"
	}
}

// ParseFlowDirection converts a configuration string to a FlowDirection.
// An empty string selects Forward.
func ParseFlowDirection(s string) (FlowDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "forward":
		return Forward, nil
	case "backward":
		return Backward, nil
	}
	return Forward, &ConfigurationError{Option: "flow_direction", Value: s,
		Msg: "argument must be one of forward, backward"}
}
