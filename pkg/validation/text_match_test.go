package validation

import (
	"math"
	"testing"
)

func TestScoreMatch(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		actual   string
		wantCER  float64
		wantWER  float64
	}{
		{
			name:     "Exact match",
			expected: "hello world",
			actual:   "hello world",
			wantCER:  0,
			wantWER:  0,
		},
		{
			name:     "One word substituted",
			expected: "hello there world",
			actual:   "hello big world",
			wantCER:  5.0 / 17.0,
			wantWER:  1.0 / 3.0,
		},
		{
			name:     "Completely different",
			expected: "abc",
			actual:   "xyz",
			wantCER:  1,
			wantWER:  1,
		},
		{
			name:     "Hangul match",
			expected: "안녕하세요",
			actual:   "안녕하세요",
			wantCER:  0,
			wantWER:  0,
		},
		{
			name:     "Both empty",
			expected: "",
			actual:   "",
			wantCER:  0,
			wantWER:  0,
		},
		{
			name:     "Empty expected, non-empty actual",
			expected: "",
			actual:   "something",
			wantCER:  1,
			wantWER:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ScoreMatch(tt.expected, tt.actual)
			if math.Abs(m.CharErrorRate-tt.wantCER) > 1e-9 {
				t.Errorf("CER: want %v, got %v", tt.wantCER, m.CharErrorRate)
			}
			if math.Abs(m.WordErrorRate-tt.wantWER) > 1e-9 {
				t.Errorf("WER: want %v, got %v", tt.wantWER, m.WordErrorRate)
			}
			if math.Abs(m.MatchScore-(1-tt.wantCER)) > 1e-9 {
				t.Errorf("score: got %v", m.MatchScore)
			}
		})
	}
}

func TestWordDistance(t *testing.T) {
	tests := []struct {
		name string
		ref  []string
		hyp  []string
		want int
	}{
		{"Identical", []string{"a", "b"}, []string{"a", "b"}, 0},
		{"Insertion", []string{"a", "b"}, []string{"a", "x", "b"}, 1},
		{"Deletion", []string{"a", "b", "c"}, []string{"a", "c"}, 1},
		{"Substitution", []string{"a", "b"}, []string{"a", "x"}, 1},
		{"Empty reference", nil, []string{"a"}, 1},
		{"Empty hypothesis", []string{"a"}, nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wordDistance(tt.ref, tt.hyp); got != tt.want {
				t.Errorf("want %d, got %d", tt.want, got)
			}
		})
	}
}
