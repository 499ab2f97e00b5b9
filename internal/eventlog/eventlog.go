package eventlog

import (
	"context"
	"errors"
	"strings"
)

// FilePrefix marks files that carry TensorBoard events.
const FilePrefix = "events.out.tfevents"

// ErrCorrupt reports a record that fails framing or checksum validation.
var ErrCorrupt = errors.New("eventlog: corrupt record")

// ScalarEvent is one scalar sample for a tag.
type ScalarEvent struct {
	Step     int64
	Value    float64
	WallTime float64
}

// Reader exposes the scalar events loaded from one run directory.
type Reader interface {
	// Tags lists every tag carrying scalar data, in first-seen order.
	Tags() []string
	// Scalars returns the events recorded for tag in file order.
	Scalars(tag string) ([]ScalarEvent, error)
}

// Opener loads a Reader for a run directory.
type Opener interface {
	Open(ctx context.Context, dir string) (Reader, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, dir string) (Reader, error)

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context, dir string) (Reader, error) {
	return f(ctx, dir)
}

// IsEventFile reports whether a base file name looks like an event file.
func IsEventFile(name string) bool {
	return strings.HasPrefix(name, FilePrefix)
}
