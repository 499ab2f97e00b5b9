package eventlog

import (
	"encoding/binary"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers from tensorflow/core/util/event.proto and summary.proto.
const (
	eventWallTime protowire.Number = 1
	eventStep     protowire.Number = 2
	eventSummary  protowire.Number = 5

	summaryValue protowire.Number = 1

	valueTag         protowire.Number = 1
	valueSimpleValue protowire.Number = 2
	valueTensor      protowire.Number = 8
	valueMetadata    protowire.Number = 9

	metadataPluginData protowire.Number = 1
	metadataDataClass  protowire.Number = 4
	pluginDataName     protowire.Number = 1

	tensorDtype     protowire.Number = 1
	tensorContent   protowire.Number = 4
	tensorFloatVal  protowire.Number = 5
	tensorDoubleVal protowire.Number = 6
)

const (
	dtFloat  = 1
	dtDouble = 2

	dataClassScalar = 1

	scalarsPlugin = "scalars"
)

type event struct {
	wallTime float64
	step     int64
	values   []summaryEntry
}

type summaryEntry struct {
	tag       string
	hasSimple bool
	simple    float64
	tensor    *tensor
	plugin    string
	dataClass uint64
}

// scalarMetadata reports whether the entry's metadata marks the tag as scalar.
func (s summaryEntry) scalarMetadata() bool {
	return s.plugin == scalarsPlugin || s.dataClass == dataClassScalar
}

type tensor struct {
	dtype   uint64
	content []byte
	floats  []float32
	doubles []float64
}

// scalar extracts the first element of a float or double tensor.
func (t *tensor) scalar() (float64, bool) {
	if t == nil {
		return 0, false
	}
	switch t.dtype {
	case dtFloat:
		if len(t.floats) > 0 {
			return float64(t.floats[0]), true
		}
		if len(t.content) >= 4 {
			return float64(math.Float32frombits(binary.LittleEndian.Uint32(t.content))), true
		}
	case dtDouble:
		if len(t.doubles) > 0 {
			return t.doubles[0], true
		}
		if len(t.content) >= 8 {
			return math.Float64frombits(binary.LittleEndian.Uint64(t.content)), true
		}
	}
	return 0, false
}

// fields iterates the top-level fields of a message, handing each one's
// number, wire type, and remaining bytes to fn. fn returns how many bytes it
// consumed; zero means skip the field.
func fields(b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		used, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if used == 0 {
			used = protowire.ConsumeFieldValue(num, typ, b)
			if used < 0 {
				return protowire.ParseError(used)
			}
		}
		b = b[used:]
	}
	return nil
}

func consumeBytes(b []byte) ([]byte, int, error) {
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func decodeEvent(b []byte) (event, error) {
	var ev event
	err := fields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == eventWallTime && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			ev.wallTime = math.Float64frombits(v)
			return n, nil
		case num == eventStep && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			ev.step = int64(v)
			return n, nil
		case num == eventSummary && typ == protowire.BytesType:
			msg, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			values, err := decodeSummary(msg)
			if err != nil {
				return 0, fmt.Errorf("summary: %w", err)
			}
			ev.values = append(ev.values, values...)
			return n, nil
		}
		return 0, nil
	})
	return ev, err
}

func decodeSummary(b []byte) ([]summaryEntry, error) {
	var out []summaryEntry
	err := fields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != summaryValue || typ != protowire.BytesType {
			return 0, nil
		}
		msg, n, err := consumeBytes(b)
		if err != nil {
			return 0, err
		}
		entry, err := decodeValue(msg)
		if err != nil {
			return 0, err
		}
		out = append(out, entry)
		return n, nil
	})
	return out, err
}

func decodeValue(b []byte) (summaryEntry, error) {
	var entry summaryEntry
	err := fields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == valueTag && typ == protowire.BytesType:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			entry.tag = string(v)
			return n, nil
		case num == valueSimpleValue && typ == protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			entry.hasSimple = true
			entry.simple = float64(math.Float32frombits(v))
			return n, nil
		case num == valueTensor && typ == protowire.BytesType:
			msg, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			t, err := decodeTensor(msg)
			if err != nil {
				return 0, fmt.Errorf("tensor: %w", err)
			}
			entry.tensor = t
			return n, nil
		case num == valueMetadata && typ == protowire.BytesType:
			msg, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			if err := decodeMetadata(msg, &entry); err != nil {
				return 0, fmt.Errorf("metadata: %w", err)
			}
			return n, nil
		}
		return 0, nil
	})
	return entry, err
}

func decodeMetadata(b []byte, entry *summaryEntry) error {
	return fields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == metadataPluginData && typ == protowire.BytesType:
			msg, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			err = fields(msg, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
				if num != pluginDataName || typ != protowire.BytesType {
					return 0, nil
				}
				v, n, err := consumeBytes(b)
				if err != nil {
					return 0, err
				}
				entry.plugin = string(v)
				return n, nil
			})
			return n, err
		case num == metadataDataClass && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			entry.dataClass = v
			return n, nil
		}
		return 0, nil
	})
}

func decodeTensor(b []byte) (*tensor, error) {
	t := &tensor{}
	err := fields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == tensorDtype && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			t.dtype = v
			return n, nil
		case num == tensorContent && typ == protowire.BytesType:
			v, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			t.content = v
			return n, nil
		case num == tensorFloatVal && typ == protowire.BytesType:
			packed, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			for len(packed) >= 4 {
				v, m := protowire.ConsumeFixed32(packed)
				if m < 0 {
					return 0, protowire.ParseError(m)
				}
				t.floats = append(t.floats, math.Float32frombits(v))
				packed = packed[m:]
			}
			return n, nil
		case num == tensorFloatVal && typ == protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			t.floats = append(t.floats, math.Float32frombits(v))
			return n, nil
		case num == tensorDoubleVal && typ == protowire.BytesType:
			packed, n, err := consumeBytes(b)
			if err != nil {
				return 0, err
			}
			for len(packed) >= 8 {
				v, m := protowire.ConsumeFixed64(packed)
				if m < 0 {
					return 0, protowire.ParseError(m)
				}
				t.doubles = append(t.doubles, math.Float64frombits(v))
				packed = packed[m:]
			}
			return n, nil
		case num == tensorDoubleVal && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			t.doubles = append(t.doubles, math.Float64frombits(v))
			return n, nil
		}
		return 0, nil
	})
	return t, err
}
