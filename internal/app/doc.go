// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary execution lifecycle, decoupled
// from any specific entrypoint like a CLI or server.
//
// A run loads the pipeline, builds the node graph, opens a local session,
// simulates the portfolio over the pipeline's targets and writes the
// portfolio log, optionally publishing it to S3. While a run is in flight an
// optional healthcheck server reports liveness and progress.
package app
