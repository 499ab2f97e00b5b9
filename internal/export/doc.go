// Package export turns one run's scalar series into the dashboard artifact
// set: meta.json, an optional params.json, scalars.json, and the loss.csv and
// mse.csv value dumps.
//
// An Exporter is configured once per invocation and is safe for concurrent
// use; each Export call writes only into the directory it is handed. The
// returned Bundle records which artifacts were actually written, determined
// by inspecting the directory afterwards.
package export
