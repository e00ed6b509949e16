package model

import (
	"context"
	"fmt"
)

// Status is the termination status reported by a nonlinear solver
type Status uint8

const (
	Optimal Status = iota
	Infeasible
	MaxIterations
	SolverError
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case Infeasible:
		return "infeasible"
	case MaxIterations:
		return "maxIterations"
	default:
		return "error"
	}
}

// Result is what a solve returns
type Result struct {
	Status     Status
	Iterations int
	Message    string
}

// Scaling is the read side of a scaling-factor registry handed to a solver
type Scaling interface {
	Get(key interface{}) (float64, bool)
}

// Solver is an external nonlinear equation solver. A call is blocking and
// one-shot; retries are the caller's business.
type Solver interface {
	Solve(ctx context.Context, b *Block, sf Scaling) (Result, error)
}

// NonConvergenceError carries a non-optimal solver result to the caller as is
type NonConvergenceError struct {
	Result Result
}

func (e *NonConvergenceError) Error() string {
	if e.Result.Message != "" {
		return fmt.Sprintf("solver terminated with status %s: %s", e.Result.Status, e.Result.Message)
	}
	return fmt.Sprintf("solver terminated with status %s", e.Result.Status)
}

// Solve runs s on b and turns any non-optimal termination into a
// *NonConvergenceError
func Solve(ctx context.Context, s Solver, b *Block, sf Scaling) (Result, error) {
	res, err := s.Solve(ctx, b, sf)
	if err != nil {
		return res, err
	}
	if res.Status != Optimal {
		return res, &NonConvergenceError{Result: res}
	}
	return res, nil
}
