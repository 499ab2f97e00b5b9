package logging

import "testing"

func TestNewProgressSamplerDefaults(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 10},
		{"default bucket size for negative", -1, 10},
		{"custom bucket size", 25, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(4, tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSamplerEmitsOnBucketChange(t *testing.T) {
	s := NewProgressSampler(10, 25)
	var emitted []int
	for i := 0; i < 10; i++ {
		done, _, emit := s.Advance()
		if emit {
			emitted = append(emitted, done)
		}
	}
	// 10% (bucket 0), 30% (1), 50% (2), 80% (3), 100% (4)
	want := []int{1, 3, 5, 8, 10}
	if len(emitted) != len(want) {
		t.Fatalf("emitted at %v, want %v", emitted, want)
	}
	for i := range want {
		if emitted[i] != want[i] {
			t.Fatalf("emitted at %v, want %v", emitted, want)
		}
	}
}

func TestProgressSamplerNil(t *testing.T) {
	var s *ProgressSampler
	if _, _, emit := s.Advance(); !emit {
		t.Error("nil sampler should always emit")
	}
}

func TestProgressSamplerZeroTotal(t *testing.T) {
	s := NewProgressSampler(0, 10)
	done, percent, emit := s.Advance()
	if done != 1 || percent != 100 || !emit {
		t.Fatalf("unexpected result done=%d percent=%v emit=%v", done, percent, emit)
	}
}
