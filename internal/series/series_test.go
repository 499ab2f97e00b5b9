package series

import (
	"context"
	"errors"
	"testing"

	"tbexport/internal/eventlog"
)

type fakeReader struct {
	tags   []string
	events map[string][]eventlog.ScalarEvent
	err    error
}

func (f fakeReader) Tags() []string { return f.tags }

func (f fakeReader) Scalars(tag string) ([]eventlog.ScalarEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events[tag], nil
}

func openerFor(r eventlog.Reader, err error) eventlog.Opener {
	return eventlog.OpenerFunc(func(context.Context, string) (eventlog.Reader, error) {
		return r, err
	})
}

func TestLoadSortsStablyAndOmitsEmptyTags(t *testing.T) {
	reader := fakeReader{
		tags: []string{"empty", "loss", "accuracy"},
		events: map[string][]eventlog.ScalarEvent{
			"empty": nil,
			"loss": {
				{Step: 2, Value: 0.2, WallTime: 300},
				{Step: 0, Value: 1.0, WallTime: 100},
				{Step: 2, Value: 0.3, WallTime: 301},
				{Step: 1, Value: 0.5, WallTime: 200},
			},
			"accuracy": {
				{Step: 0, Value: 0.1, WallTime: 50},
			},
		},
	}

	set, err := Load(context.Background(), openerFor(reader, nil), "run")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tags := set.Tags(); len(tags) != 2 || tags[0] != "loss" || tags[1] != "accuracy" {
		t.Fatalf("unexpected tags %v", tags)
	}
	if _, ok := set.Get("empty"); ok {
		t.Fatal("empty tag must be omitted")
	}

	loss, _ := set.Get("loss")
	wantSteps := []int64{0, 1, 2, 2}
	wantValues := []float64{1.0, 0.5, 0.2, 0.3}
	for i := range loss {
		if loss[i].Step != wantSteps[i] || loss[i].Value != wantValues[i] {
			t.Fatalf("point %d: got %+v", i, loss[i])
		}
	}
	if got := loss.Values(); len(got) != 4 || got[3] != 0.3 {
		t.Fatalf("unexpected values %v", got)
	}
	if set.Events() != 5 {
		t.Fatalf("expected 5 events, got %d", set.Events())
	}
}

func TestLoadFirstWallTimeComesFromFirstNonEmptyTag(t *testing.T) {
	reader := fakeReader{
		tags: []string{"empty", "loss", "accuracy"},
		events: map[string][]eventlog.ScalarEvent{
			"loss":     {{Step: 5, Value: 1, WallTime: 500}, {Step: 0, Value: 2, WallTime: 400}},
			"accuracy": {{Step: 0, Value: 0.1, WallTime: 10}},
		},
	}
	set, err := Load(context.Background(), openerFor(reader, nil), "run")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !set.HasWallTime || set.FirstWallTime != 500 {
		t.Fatalf("expected first wall time 500, got %v (has=%v)", set.FirstWallTime, set.HasWallTime)
	}
}

func TestLoadWithoutEventsHasNoWallTime(t *testing.T) {
	set, err := Load(context.Background(), openerFor(fakeReader{}, nil), "run")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if set.HasWallTime || set.Len() != 0 {
		t.Fatalf("expected empty set, got %+v", set)
	}
}

func TestLoadPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	if _, err := Load(context.Background(), openerFor(nil, boom), "run"); !errors.Is(err, boom) {
		t.Fatalf("expected open error, got %v", err)
	}
	reader := fakeReader{tags: []string{"loss"}, err: boom}
	if _, err := Load(context.Background(), openerFor(reader, nil), "run"); !errors.Is(err, boom) {
		t.Fatalf("expected scalars error, got %v", err)
	}
}
