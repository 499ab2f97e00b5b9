package eventlog

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

const fileVersion = "brain.Event:2"

// Writer appends events to a TFRecord stream in the format DirOpener reads.
type Writer struct {
	w   io.Writer
	buf []byte
}

// NewWriter wraps w and emits the file version header event.
func NewWriter(w io.Writer, wallTime float64) (*Writer, error) {
	ew := &Writer{w: w}
	var ev []byte
	ev = protowire.AppendTag(ev, eventWallTime, protowire.Fixed64Type)
	ev = protowire.AppendFixed64(ev, math.Float64bits(wallTime))
	ev = protowire.AppendTag(ev, 3, protowire.BytesType)
	ev = protowire.AppendString(ev, fileVersion)
	if err := ew.writeRecord(ev); err != nil {
		return nil, err
	}
	return ew, nil
}

// WriteScalar records a simple_value summary, the TF1 scalar encoding.
func (w *Writer) WriteScalar(tag string, step int64, value float32, wallTime float64) error {
	var v []byte
	v = protowire.AppendTag(v, valueTag, protowire.BytesType)
	v = protowire.AppendString(v, tag)
	v = protowire.AppendTag(v, valueSimpleValue, protowire.Fixed32Type)
	v = protowire.AppendFixed32(v, math.Float32bits(value))
	return w.writeEvent(step, wallTime, v)
}

// WriteTensorScalar records a scalar-plugin tensor summary, the TF2 encoding.
// withMetadata mirrors writers that only attach plugin metadata to a tag's
// first sample.
func (w *Writer) WriteTensorScalar(tag string, step int64, value float64, wallTime float64, withMetadata bool) error {
	var t []byte
	t = protowire.AppendTag(t, tensorDtype, protowire.VarintType)
	t = protowire.AppendVarint(t, dtDouble)
	t = protowire.AppendTag(t, tensorContent, protowire.BytesType)
	t = protowire.AppendBytes(t, binary.LittleEndian.AppendUint64(nil, math.Float64bits(value)))

	var v []byte
	v = protowire.AppendTag(v, valueTag, protowire.BytesType)
	v = protowire.AppendString(v, tag)
	v = protowire.AppendTag(v, valueTensor, protowire.BytesType)
	v = protowire.AppendBytes(v, t)
	if withMetadata {
		var plugin []byte
		plugin = protowire.AppendTag(plugin, pluginDataName, protowire.BytesType)
		plugin = protowire.AppendString(plugin, scalarsPlugin)
		var meta []byte
		meta = protowire.AppendTag(meta, metadataPluginData, protowire.BytesType)
		meta = protowire.AppendBytes(meta, plugin)
		v = protowire.AppendTag(v, valueMetadata, protowire.BytesType)
		v = protowire.AppendBytes(v, meta)
	}
	return w.writeEvent(step, wallTime, v)
}

func (w *Writer) writeEvent(step int64, wallTime float64, value []byte) error {
	var summary []byte
	summary = protowire.AppendTag(summary, summaryValue, protowire.BytesType)
	summary = protowire.AppendBytes(summary, value)

	var ev []byte
	ev = protowire.AppendTag(ev, eventWallTime, protowire.Fixed64Type)
	ev = protowire.AppendFixed64(ev, math.Float64bits(wallTime))
	ev = protowire.AppendTag(ev, eventStep, protowire.VarintType)
	ev = protowire.AppendVarint(ev, uint64(step))
	ev = protowire.AppendTag(ev, eventSummary, protowire.BytesType)
	ev = protowire.AppendBytes(ev, summary)
	return w.writeRecord(ev)
}

func (w *Writer) writeRecord(data []byte) error {
	w.buf = appendRecord(w.buf[:0], data)
	if _, err := w.w.Write(w.buf); err != nil {
		return fmt.Errorf("write event record: %w", err)
	}
	return nil
}
