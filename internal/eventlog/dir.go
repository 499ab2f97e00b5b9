package eventlog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// ctxCheckInterval bounds how many records are decoded between cancellation checks.
const ctxCheckInterval = 1024

// DirOpener reads every event file directly inside a run directory.
type DirOpener struct {
	Logger *slog.Logger
}

// Open loads all scalar events in dir. Files are read in lexical order, the
// order TensorBoard itself uses when a run has been restarted into several
// files.
func (o DirOpener) Open(ctx context.Context, dir string) (Reader, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list run directory %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !IsEventFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	acc := newAccumulator()
	for _, path := range files {
		if err := acc.loadFile(ctx, path); err != nil {
			return nil, err
		}
		if o.Logger != nil {
			o.Logger.Debug("event file loaded",
				slog.String("path", path),
				slog.Int("tags", len(acc.order)),
			)
		}
	}
	return acc, nil
}

// accumulator groups scalar events by tag and is itself the Reader.
type accumulator struct {
	order  []string
	events map[string][]ScalarEvent
	scalar map[string]bool
}

func newAccumulator() *accumulator {
	return &accumulator{
		events: make(map[string][]ScalarEvent),
		scalar: make(map[string]bool),
	}
}

func (a *accumulator) Tags() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

func (a *accumulator) Scalars(tag string) ([]ScalarEvent, error) {
	events, ok := a.events[tag]
	if !ok {
		return nil, fmt.Errorf("eventlog: unknown scalar tag %q", tag)
	}
	out := make([]ScalarEvent, len(events))
	copy(out, events)
	return out, nil
}

func (a *accumulator) loadFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open event file %s: %w", path, err)
	}
	defer f.Close()

	if err := a.load(ctx, bufio.NewReader(f)); err != nil {
		return fmt.Errorf("read event file %s: %w", path, err)
	}
	return nil
}

func (a *accumulator) load(ctx context.Context, r io.Reader) error {
	rr := newRecordReader(r)
	for count := 0; ; count++ {
		if count%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		data, err := rr.next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		ev, err := decodeEvent(data)
		if err != nil {
			return fmt.Errorf("%w: decode event at offset %d: %v", ErrCorrupt, rr.offset, err)
		}
		for _, value := range ev.values {
			a.add(ev, value)
		}
	}
}

// add records a summary value if it carries a scalar. Scalar-plugin metadata
// is only written with a tag's first tensor summary, so the classification is
// remembered per tag.
func (a *accumulator) add(ev event, value summaryEntry) {
	if value.tag == "" {
		return
	}
	if value.scalarMetadata() {
		a.scalar[value.tag] = true
	}

	var v float64
	switch {
	case value.hasSimple:
		v = value.simple
	case value.tensor != nil && a.scalar[value.tag]:
		scalar, ok := value.tensor.scalar()
		if !ok {
			return
		}
		v = scalar
	default:
		return
	}

	if _, seen := a.events[value.tag]; !seen {
		a.order = append(a.order, value.tag)
	}
	a.events[value.tag] = append(a.events[value.tag], ScalarEvent{
		Step:     ev.step,
		Value:    v,
		WallTime: ev.wallTime,
	})
}
