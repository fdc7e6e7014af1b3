package align

import (
	"fmt"
	"strings"
	"testing"

	"github.com/speechmetrics/cpwer/internal/eval/metrics"
)

func TestAlignSingleStream(t *testing.T) {
	tests := []struct {
		name       string
		references []string
		hypotheses []string
		expected   metrics.Alignment
	}{
		{
			name:       "identical streams",
			references: []string{"the quick brown fox"},
			hypotheses: []string{"the quick brown fox"},
			expected:   metrics.Alignment{Length: 4},
		},
		{
			name:       "one substitution",
			references: []string{"the quick brown fox"},
			hypotheses: []string{"the quick red fox"},
			expected:   metrics.Alignment{Length: 4, Substitutions: 1},
		},
		{
			name:       "one deletion",
			references: []string{"the quick brown fox"},
			hypotheses: []string{"the quick fox"},
			expected:   metrics.Alignment{Length: 4, Deletions: 1},
		},
		{
			name:       "one insertion",
			references: []string{"the quick brown fox"},
			hypotheses: []string{"the very quick brown fox"},
			expected:   metrics.Alignment{Length: 4, Insertions: 1},
		},
		{
			name:       "empty hypothesis is all deletions",
			references: []string{"one two three"},
			hypotheses: []string{""},
			expected:   metrics.Alignment{Length: 3, Deletions: 3},
		},
		{
			name:       "empty reference is all insertions",
			references: []string{""},
			hypotheses: []string{"one two three"},
			expected:   metrics.Alignment{Length: 0, Insertions: 3},
		},
		{
			name:       "both empty",
			references: nil,
			hypotheses: nil,
			expected:   metrics.Alignment{},
		},
	}

	aligner := NewCP()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alignment, err := aligner.Align(tt.references, tt.hypotheses)
			if err != nil {
				t.Fatalf("Align failed: %v", err)
			}
			if alignment != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, alignment)
			}
		})
	}
}

func TestAlignPermutedSpeakers(t *testing.T) {
	references := []string{
		"good morning everyone",
		"thanks for joining the call",
	}

	// Hypothesis streams in the opposite order must score perfectly; the
	// permutation solver pays nothing for stream order.
	hypotheses := []string{
		"thanks for joining the call",
		"good morning everyone",
	}

	alignment, err := NewCP().Align(references, hypotheses)
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}

	expected := metrics.Alignment{Length: 8}
	if alignment != expected {
		t.Errorf("Expected %+v, got %+v", expected, alignment)
	}
}

func TestAlignPicksCheapestAssignment(t *testing.T) {
	references := []string{
		"alpha beta gamma",
		"delta epsilon",
	}
	// Stream 0 is closest to reference 1 and stream 1 to reference 0; the
	// identity assignment would cost far more.
	hypotheses := []string{
		"delta epsilon",
		"alpha beta zeta",
	}

	alignment, err := NewCP().Align(references, hypotheses)
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}

	expected := metrics.Alignment{Length: 5, Substitutions: 1}
	if alignment != expected {
		t.Errorf("Expected %+v, got %+v", expected, alignment)
	}
}

func TestAlignUnbalancedStreams(t *testing.T) {
	tests := []struct {
		name       string
		references []string
		hypotheses []string
		expected   metrics.Alignment
	}{
		{
			name:       "missed speaker counts as deletions",
			references: []string{"hello there", "how are you"},
			hypotheses: []string{"hello there"},
			expected:   metrics.Alignment{Length: 5, Deletions: 3},
		},
		{
			name:       "hallucinated speaker counts as insertions",
			references: []string{"hello there"},
			hypotheses: []string{"hello there", "extra words here"},
			expected:   metrics.Alignment{Length: 2, Insertions: 3},
		},
	}

	aligner := NewCP()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alignment, err := aligner.Align(tt.references, tt.hypotheses)
			if err != nil {
				t.Fatalf("Align failed: %v", err)
			}
			if alignment != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, alignment)
			}
		})
	}
}

func TestAlignErrorSumMatchesDistance(t *testing.T) {
	references := []string{
		"she sells sea shells by the sea shore",
		"peter piper picked a peck",
	}
	hypotheses := []string{
		"peter piper picked the peck of peppers",
		"she sells shells by the shore",
	}

	alignment, err := NewCP().Align(references, hypotheses)
	if err != nil {
		t.Fatalf("Align failed: %v", err)
	}

	// Whatever optimal decomposition is chosen, the error counts must sum
	// to the minimal total edit distance and the length must cover every
	// reference word.
	if alignment.Length != 13 {
		t.Errorf("Expected length 13, got %v", alignment.Length)
	}
	total := alignment.Substitutions + alignment.Deletions + alignment.Insertions
	if total != 5 {
		t.Errorf("Expected total error count 5, got %v (%+v)", total, alignment)
	}
}

func TestAlignTooManyStreams(t *testing.T) {
	streams := make([]string, MaxStreams+1)
	for i := range streams {
		streams[i] = fmt.Sprintf("speaker %d says words", i)
	}

	_, err := NewCP().Align(streams, []string{"hello"})
	if err == nil {
		t.Fatal("Expected an error for too many streams")
	}
	if !strings.Contains(err.Error(), "assignment limit") {
		t.Errorf("Unexpected error message: %v", err)
	}
}
