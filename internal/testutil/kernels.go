package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vk/backgrid/internal/node"
)

// ExecutionRecord holds one kernel invocation seen by a Recorder.
type ExecutionRecord struct {
	Node   string
	Inputs node.Values
	At     time.Time
}

// Recorder is a shared journal of kernel invocations, used to assert which
// nodes ran and in which order.
type Recorder struct {
	mu      sync.Mutex
	records []ExecutionRecord
}

// NewRecorder creates an empty journal.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Kernel returns a kernel for node id that records each call and then
// delegates to fn. A nil fn returns {"out": id}.
func (r *Recorder) Kernel(id string, fn node.KernelFunc) node.KernelFunc {
	return func(ctx context.Context, in node.Values) (node.Values, error) {
		r.mu.Lock()
		r.records = append(r.records, ExecutionRecord{Node: id, Inputs: in.Clone(), At: time.Now()})
		r.mu.Unlock()
		if fn == nil {
			return node.Values{"out": id}, nil
		}
		return fn(ctx, in)
	}
}

// Node builds a node with the given input ports and a single "out" output
// whose kernel is recorded. Inputs must all be non-nil, otherwise the kernel
// fails, which makes missing upstream results visible.
func (r *Recorder) Node(id string, inputs ...string) *node.Node {
	return node.MustNew(id, inputs, []string{"out"}, r.Kernel(id, func(_ context.Context, in node.Values) (node.Values, error) {
		for _, name := range inputs {
			if in[name] == nil {
				return nil, fmt.Errorf("input %q of %q is nil", name, id)
			}
		}
		return node.Values{"out": id}, nil
	}))
}

// Ran returns the ids of recorded invocations in call order.
func (r *Recorder) Ran() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.Node)
	}
	return out
}

// Records returns a copy of the journal.
func (r *Recorder) Records() []ExecutionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ExecutionRecord(nil), r.records...)
}

// Reset clears the journal.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
}

// ErrKernelFailed is the cause returned by Failing kernels.
var ErrKernelFailed = errors.New("kernel failed")

// Failing returns a kernel that always fails with ErrKernelFailed.
func Failing() node.KernelFunc {
	return func(context.Context, node.Values) (node.Values, error) {
		return nil, ErrKernelFailed
	}
}

// PredictOnly is a kernel that supports only the Predict method.
type PredictOnly struct {
	Out node.Values
}

// Predict implements node.Predictor.
func (p PredictOnly) Predict(context.Context, node.Values) (node.Values, error) {
	return p.Out.Clone(), nil
}
