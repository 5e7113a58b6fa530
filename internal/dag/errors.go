package dag

import (
	"errors"

	"github.com/vk/backgrid/internal/node"
)

var (
	// ErrDuplicateNode is returned by AddNode in strict mode when the id exists.
	ErrDuplicateNode = errors.New("duplicate node")
	// ErrUnknownNode is returned when a referenced node is not in the graph.
	ErrUnknownNode = errors.New("unknown node")
	// ErrUnknownPort is returned when a referenced port is not declared on its node.
	ErrUnknownPort = node.ErrUnknownPort
	// ErrAmbiguousPort is returned when a bare reference names a node that
	// does not declare exactly one port on the relevant side.
	ErrAmbiguousPort = errors.New("ambiguous port")
	// ErrPortAlreadyBound is returned when an input port already has a producer.
	ErrPortAlreadyBound = errors.New("port already bound")
	// ErrCycle is returned when a binding would create a cycle.
	ErrCycle = errors.New("cycle detected")
	// ErrMultipleSinks is returned by UniqueSink when the graph has zero or
	// several sinks.
	ErrMultipleSinks = errors.New("graph does not have exactly one sink")
)
