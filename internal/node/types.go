package node

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotComputed is returned when results are requested for a method that
	// never ran on the node.
	ErrNotComputed = errors.New("not computed")
	// ErrUnknownPort is returned when a port name is not declared on the node.
	ErrUnknownPort = errors.New("unknown port")
	// ErrUnsupportedMethod is returned when the kernel lacks the capability
	// for the requested method.
	ErrUnsupportedMethod = errors.New("unsupported method")
	// ErrInvalidNode is returned when a node is constructed with a bad id or ports.
	ErrInvalidNode = errors.New("invalid node")
)

// Method is a computation entry point of a node.
type Method int

const (
	// Fit estimates kernel state from its inputs.
	Fit Method = iota
	// Predict applies the kernel to its inputs.
	Predict
)

// String returns the lower-case method name.
func (m Method) String() string {
	switch m {
	case Fit:
		return "fit"
	case Predict:
		return "predict"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// ParseMethod converts a method name into a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "fit":
		return Fit, nil
	case "predict":
		return Predict, nil
	default:
		return 0, fmt.Errorf("unknown method %q", s)
	}
}

// Values maps port names to values, typically tables.
type Values map[string]any

// Clone returns a shallow copy of the mapping.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Kernel is the computation behind a node. It must implement at least one of
// Fitter or Predictor.
type Kernel any

// Fitter is implemented by kernels that support the Fit method.
type Fitter interface {
	Fit(ctx context.Context, in Values) (Values, error)
}

// Predictor is implemented by kernels that support the Predict method.
type Predictor interface {
	Predict(ctx context.Context, in Values) (Values, error)
}

// KernelFunc adapts a stateless function into a kernel that answers both
// Fit and Predict with the same computation.
type KernelFunc func(ctx context.Context, in Values) (Values, error)

// Fit implements Fitter.
func (f KernelFunc) Fit(ctx context.Context, in Values) (Values, error) {
	return f(ctx, in)
}

// Predict implements Predictor.
func (f KernelFunc) Predict(ctx context.Context, in Values) (Values, error) {
	return f(ctx, in)
}

// State represents the execution state of a (node, method) pair.
type State int32

const (
	// Pending indicates the method has not started on the node.
	Pending State = iota
	// Running indicates the method is currently executing.
	Running
	// Done indicates the method completed and its outputs are stored.
	Done
	// Failed indicates the method returned an error.
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}
