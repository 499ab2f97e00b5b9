// Package main hosts the tbexport CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into export runs,
// read-only run inspection, and configuration scaffolding. It centralizes
// configuration resolution, flag overrides, and structured logging setup so
// subcommands can focus on output instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
