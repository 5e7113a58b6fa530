// Package config defines the format-agnostic configuration surface of the
// application: nested parameter maps for pipelines, the pipeline model
// produced by loaders, and the Loader interface itself.
//
// # Why Config Exists
//
// Builders are parametrized by a nested key/value structure. Experiments are
// compared and reproduced by flattening that structure into dotted paths and
// back, so the flattening must round-trip exactly:
//
//	Unflatten(Flatten(c)) == c
//
// for every valid Config c. Keys are therefore restricted to non-empty
// strings without dots, and empty sub-configs are kept as leaves.
//
// Concrete loaders, such as the HCL one, live in separate packages.
package config
