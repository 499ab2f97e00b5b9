// Package preflight provides readiness checks for the filesystem paths an
// export depends on.
//
// The pipeline calls RunAll before discovering runs so a read-only output
// directory fails fast instead of after every run has been parsed. The
// "config validate" command prints the same results.
package preflight
