// Package pipeline orchestrates an export invocation: it discovers runs,
// loads and exports each one in a bounded worker pool, and commits the
// results together with the root manifest.
//
// Every run is first written to a hidden staging directory next to its final
// location. Only when all runs succeed are the staging directories renamed
// into place and manifest.json written, so a failed invocation leaves the
// previous export untouched. An advisory lock on the output directory keeps
// two invocations from interleaving.
package pipeline
