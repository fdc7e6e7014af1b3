package align

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/speechmetrics/cpwer/internal/eval/metrics"
)

// MaxStreams caps the number of speaker streams on either side. The
// assignment search is exponential in the stream count.
const MaxStreams = 12

// Unit costs at the word level; the library default penalizes substitutions
// at twice the insertion cost, which is wrong for word error rates.
var wordOptions = levenshtein.Options{
	InsCost: 1,
	DelCost: 1,
	SubCost: 1,
	Matches: func(source, target rune) bool { return source == target },
}

// CP computes the concatenated minimum-permutation alignment: each
// hypothesis stream is matched one-to-one against a reference stream so that
// the total word-level edit distance is minimal. The side with fewer streams
// is padded with empty ones, so unmatched reference words count as deletions
// and unmatched hypothesis words as insertions.
type CP struct{}

// NewCP creates the default alignment collaborator.
func NewCP() *CP { return &CP{} }

// Align computes the error decomposition for one sample. Each element of
// references and hypotheses is one speaker stream; words are split on
// whitespace, so inputs should already be normalized.
func (a *CP) Align(references, hypotheses []string) (metrics.Alignment, error) {
	refStreams := tokenize(references)
	hypStreams := tokenize(hypotheses)

	n := len(refStreams)
	if len(hypStreams) > n {
		n = len(hypStreams)
	}
	if n > MaxStreams {
		return metrics.Alignment{}, fmt.Errorf("%d speaker streams exceed the assignment limit of %d", n, MaxStreams)
	}
	for len(refStreams) < n {
		refStreams = append(refStreams, nil)
	}
	for len(hypStreams) < n {
		hypStreams = append(hypStreams, nil)
	}

	// The edit-distance library works on runes, so distinct words are
	// interned to distinct runes before comparison.
	vocabulary := newInterner()
	ref := make([][]rune, n)
	hyp := make([][]rune, n)
	for i := range refStreams {
		ref[i] = vocabulary.intern(refStreams[i])
	}
	for j := range hypStreams {
		hyp[j] = vocabulary.intern(hypStreams[j])
	}

	var alignment metrics.Alignment
	if n == 0 {
		return alignment, nil
	}

	cost := make([][]int, n)
	for i := range cost {
		cost[i] = make([]int, n)
		for j := range cost[i] {
			cost[i][j] = levenshtein.DistanceForStrings(ref[i], hyp[j], wordOptions)
		}
	}

	assignment := solveAssignment(cost)

	for i, j := range assignment {
		script := levenshtein.EditScriptForStrings(ref[i], hyp[j], wordOptions)
		for _, op := range script {
			switch op {
			case levenshtein.Sub:
				alignment.Substitutions++
			case levenshtein.Del:
				alignment.Deletions++
			case levenshtein.Ins:
				alignment.Insertions++
			}
		}
		alignment.Length += float64(len(ref[i]))
	}

	return alignment, nil
}

func tokenize(streams []string) [][]string {
	tokens := make([][]string, len(streams))
	for i, stream := range streams {
		tokens[i] = strings.Fields(stream)
	}
	return tokens
}

// interner maps distinct words to distinct runes so word sequences can be
// compared with the rune-based edit-distance API. Rune values are only ever
// compared for equality, never encoded.
type interner struct {
	ids map[string]rune
}

func newInterner() *interner {
	return &interner{ids: make(map[string]rune)}
}

func (in *interner) intern(words []string) []rune {
	runes := make([]rune, len(words))
	for i, word := range words {
		id, ok := in.ids[word]
		if !ok {
			id = rune(len(in.ids) + 1)
			in.ids[word] = id
		}
		runes[i] = id
	}
	return runes
}

// solveAssignment finds the one-to-one pairing of reference rows to
// hypothesis columns with minimal total cost, via a Held-Karp style DP over
// column subsets. Row i is assigned when the subset has i+1 members.
func solveAssignment(cost [][]int) []int {
	n := len(cost)
	size := 1 << n
	const unreachable = int(^uint(0) >> 2)

	best := make([]int, size)
	chosen := make([]int, size)
	for mask := 1; mask < size; mask++ {
		best[mask] = unreachable
		chosen[mask] = -1
	}

	for mask := 0; mask < size; mask++ {
		if best[mask] >= unreachable {
			continue
		}
		i := bits.OnesCount(uint(mask))
		if i == n {
			continue
		}
		for j := 0; j < n; j++ {
			if mask&(1<<j) != 0 {
				continue
			}
			next := mask | 1<<j
			if c := best[mask] + cost[i][j]; c < best[next] {
				best[next] = c
				chosen[next] = j
			}
		}
	}

	assignment := make([]int, n)
	mask := size - 1
	for i := n - 1; i >= 0; i-- {
		j := chosen[mask]
		assignment[i] = j
		mask ^= 1 << j
	}
	return assignment
}
