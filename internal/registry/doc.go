// Package registry provides the central "glue" for the module system.
//
// The Registry maps node kind names used in pipeline files (e.g. "returns")
// to the compiled Go parts of that kind: its declared ports, its default
// parameters and a factory producing a kernel from merged parameters.
//
// Modules under modules/ register their kinds at application startup.
// Builders then look kinds up by name, so a pipeline can only reference kinds
// that some compiled module provides.
package registry
