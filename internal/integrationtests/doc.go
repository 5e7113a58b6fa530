// Package integration_tests exercises pipelines end to end: HCL files are
// loaded, built into a graph with real and stub node kinds, and executed
// through a local session.
package integration_tests
