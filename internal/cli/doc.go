// Package cli turns the backgrid command line into an app.Config.
//
// Flags win over an optional env file, which wins over the process environment.
// Usage errors are reported as an ExitError carrying exit code 2.
package cli
