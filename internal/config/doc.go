// Package config loads, normalizes, and validates tbexport configuration data.
//
// It supplies repository defaults (the tag preference lists, the dashboard
// output directory, the experiment type), expands user paths including tilde
// shortcuts, reads TOML files, and honours environment fallbacks such as
// TBEXPORT_LOGDIR. Command-line flags are layered on top by the CLI, which
// re-runs Normalize and ValidateForExport afterwards.
package config
