// Package eventlog reads scalar samples out of TensorBoard event files.
//
// Event files are TFRecord streams: each record is a little-endian length,
// a masked CRC32C of that length, the payload, and a masked CRC32C of the
// payload. Payloads are serialized tensorflow.Event protobufs which the
// package walks with protowire instead of generated bindings, pulling out
// only wall time, step, and scalar summary values.
//
// Callers depend on the Opener and Reader interfaces so the exporter can be
// driven by any source of tagged scalar events. DirOpener is the on-disk
// implementation; Writer produces compatible files for fixtures and tooling.
package eventlog
