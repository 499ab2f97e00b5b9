// Package series turns the raw scalar events of a run into step-ordered
// time series keyed by tag.
package series

import (
	"context"
	"fmt"
	"sort"

	"tbexport/internal/eventlog"
)

// Point is one (step, value) sample.
type Point struct {
	Step  int64
	Value float64
}

// Series is a tag's samples sorted by step. Samples sharing a step keep
// their original order.
type Series []Point

// Values drops the steps, preserving order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Set holds every non-empty scalar series of one run.
type Set struct {
	order  []string
	series map[string]Series

	// FirstWallTime is the wall time of the first event of the first tag that
	// has any events. It is not the minimum across tags.
	FirstWallTime float64
	// HasWallTime is false when the run has no scalar events at all.
	HasWallTime bool
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{series: make(map[string]Series)}
}

// Tags returns the tags in reader order.
func (s *Set) Tags() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns the series for tag.
func (s *Set) Get(tag string) (Series, bool) {
	v, ok := s.series[tag]
	return v, ok
}

// Len reports how many tags carry data.
func (s *Set) Len() int {
	return len(s.order)
}

// Events counts samples across every tag.
func (s *Set) Events() int {
	total := 0
	for _, v := range s.series {
		total += len(v)
	}
	return total
}

// Add sorts events by step and stores them under tag. Empty input is ignored.
func (s *Set) Add(tag string, events []eventlog.ScalarEvent) {
	if len(events) == 0 {
		return
	}
	if !s.HasWallTime {
		s.FirstWallTime = events[0].WallTime
		s.HasWallTime = true
	}
	points := make(Series, len(events))
	for i, e := range events {
		points[i] = Point{Step: e.Step, Value: e.Value}
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Step < points[j].Step
	})
	if _, exists := s.series[tag]; !exists {
		s.order = append(s.order, tag)
	}
	s.series[tag] = points
}

// Load opens dir through opener and collects every scalar tag.
func Load(ctx context.Context, opener eventlog.Opener, dir string) (*Set, error) {
	reader, err := opener.Open(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("load scalars from %s: %w", dir, err)
	}
	set := NewSet()
	for _, tag := range reader.Tags() {
		events, err := reader.Scalars(tag)
		if err != nil {
			return nil, fmt.Errorf("load scalars from %s: tag %q: %w", dir, tag, err)
		}
		set.Add(tag, events)
	}
	return set, nil
}
