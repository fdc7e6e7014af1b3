package metrics

import (
	"log/slog"
	"sync"
)

// MetricName is the key under which the computed rate is stored in a
// sample's Components alongside the raw counts.
const MetricName = "cpwer"

// Component names. All four are always present and non-negative; Length is
// the reference word count used as the error-rate denominator.
const (
	ComponentLength        = "length"
	ComponentSubstitutions = "substitutions"
	ComponentDeletions     = "deletions"
	ComponentInsertions    = "insertions"
)

// ComponentNames returns the declared component names in a stable order.
func ComponentNames() []string {
	return []string{
		ComponentLength,
		ComponentSubstitutions,
		ComponentDeletions,
		ComponentInsertions,
	}
}

// Components maps component names to values for one sample. After evaluation
// the computed rate is stored under MetricName next to the counts.
type Components map[string]float64

// SampleResult pairs a recording URI with the components computed for it.
// Results are write-once; the history they form is append-only and ordered
// by evaluation.
type SampleResult struct {
	URI        string
	Components Components
}

// ReferenceLoader resolves a recording URI to its reference transcripts,
// one per reference annotator.
type ReferenceLoader interface {
	Load(uri string) ([]string, error)
}

// Normalizer canonicalizes a transcript before alignment.
type Normalizer interface {
	Normalize(text string) (string, error)
}

// Alignment is the additive error decomposition for a single sample, as
// produced by the alignment collaborator. Length is the total reference
// word count.
type Alignment struct {
	Length        float64
	Substitutions float64
	Deletions     float64
	Insertions    float64
}

// Aligner computes the optimal multi-stream alignment between reference and
// hypothesis transcripts for one sample.
type Aligner interface {
	Align(references, hypotheses []string) (Alignment, error)
}

// CpWER scores multi-speaker transcription hypotheses against reference
// transcripts and accumulates per-sample error components into corpus-wide
// running totals.
//
// Reference retrieval, text normalization, and the permutation-matching
// alignment are injected collaborators; this type owns only the component
// bookkeeping and the final-ratio computation.
type CpWER struct {
	refs       ReferenceLoader
	normalizer Normalizer
	aligner    Aligner

	mu          sync.Mutex
	accumulated map[string]float64
	results     []SampleResult
}

// NewCpWER creates an empty accumulator with all running totals at zero.
func NewCpWER(refs ReferenceLoader, normalizer Normalizer, aligner Aligner) *CpWER {
	return &CpWER{
		refs:        refs,
		normalizer:  normalizer,
		aligner:     aligner,
		accumulated: zeroComponents(),
	}
}

func zeroComponents() map[string]float64 {
	zeros := make(map[string]float64, len(ComponentNames()))
	for _, name := range ComponentNames() {
		zeros[name] = 0
	}
	return zeros
}

// ComputeComponents derives the error decomposition for a single sample
// without touching corpus state: load references, normalize both sides,
// align once. Values come verbatim from the aligner.
func (m *CpWER) ComputeComponents(uri string, hypotheses []string) (Components, error) {
	refs, err := m.refs.Load(uri)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, &ReferenceNotFoundError{URI: uri}
	}

	normRefs := make([]string, len(refs))
	for i, ref := range refs {
		normRefs[i], err = m.normalizer.Normalize(ref)
		if err != nil {
			return nil, &NormalizationError{URI: uri, Err: err}
		}
	}

	normHyps := make([]string, len(hypotheses))
	for i, hyp := range hypotheses {
		normHyps[i], err = m.normalizer.Normalize(hyp)
		if err != nil {
			return nil, &NormalizationError{URI: uri, Err: err}
		}
	}

	alignment, err := m.aligner.Align(normRefs, normHyps)
	if err != nil {
		return nil, &AlignmentError{URI: uri, Err: err}
	}

	return Components{
		ComponentLength:        alignment.Length,
		ComponentSubstitutions: alignment.Substitutions,
		ComponentDeletions:     alignment.Deletions,
		ComponentInsertions:    alignment.Insertions,
	}, nil
}

// Evaluate scores one sample, folds its components into the corpus totals,
// and returns the sample's error rate. The hypothesis is one transcript per
// detected speaker.
func (m *CpWER) Evaluate(uri string, hypotheses []string) (float64, error) {
	components, err := m.evaluate(uri, hypotheses)
	if err != nil {
		return 0, err
	}
	return components[MetricName], nil
}

// EvaluateDetailed is Evaluate, but returns the full components record with
// the computed rate stored under MetricName.
func (m *CpWER) EvaluateDetailed(uri string, hypotheses []string) (Components, error) {
	return m.evaluate(uri, hypotheses)
}

// EvaluateText scores a single-stream hypothesis given as a bare string.
// Equivalent to Evaluate with a one-element slice.
func (m *CpWER) EvaluateText(uri, hypothesis string) (float64, error) {
	return m.Evaluate(uri, []string{hypothesis})
}

func (m *CpWER) evaluate(uri string, hypotheses []string) (Components, error) {
	// Any failure returns before corpus state is touched, so a failed
	// sample leaves totals and history exactly as they were.
	components, err := m.ComputeComponents(uri, hypotheses)
	if err != nil {
		return nil, err
	}

	components[MetricName] = ComputeMetric(components)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, SampleResult{URI: uri, Components: components})
	for _, name := range ComponentNames() {
		m.accumulated[name] += components[name]
	}

	return components, nil
}

// ComputeMetric reduces a components record to the scalar rate:
//
//	(substitutions + deletions + insertions) / length
//
// An empty reference is a defined case: zero errors against zero words is a
// perfect 0.0, while any error against zero words saturates to 1.0 instead
// of dividing by zero.
func ComputeMetric(components Components) float64 {
	numerator := components[ComponentSubstitutions] +
		components[ComponentDeletions] +
		components[ComponentInsertions]
	denominator := components[ComponentLength]

	if denominator == 0 {
		if numerator == 0 {
			return 0.0
		}
		slog.Warn("reference length is zero with non-zero errors, saturating rate to 1.0",
			"substitutions", components[ComponentSubstitutions],
			"deletions", components[ComponentDeletions],
			"insertions", components[ComponentInsertions])
		return 1.0
	}

	return numerator / denominator
}

// CorpusValue computes the pooled corpus-level rate from the running
// component totals. This is a micro-average over summed counts, not the
// arithmetic mean of per-sample rates.
func (m *CpWER) CorpusValue() float64 {
	return ComputeMetric(m.Accumulated())
}

// Accumulated returns a copy of the running component totals.
func (m *CpWER) Accumulated() Components {
	m.mu.Lock()
	defer m.mu.Unlock()

	totals := make(Components, len(m.accumulated))
	for name, value := range m.accumulated {
		totals[name] = value
	}
	return totals
}

// Results returns the evaluated samples in call order. Failed evaluations
// contribute nothing.
func (m *CpWER) Results() []SampleResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	results := make([]SampleResult, len(m.results))
	copy(results, m.results)
	return results
}

// Reset zeroes the running totals and clears the history, returning the
// accumulator to its freshly constructed state for a new evaluation pass.
func (m *CpWER) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.accumulated = zeroComponents()
	m.results = nil
}

// Merge folds another accumulator's totals and history into this one.
// Component addition is commutative, so workers can evaluate disjoint
// subsets of a corpus on their own accumulators and merge once at the end.
func (m *CpWER) Merge(other *CpWER) {
	totals := other.Accumulated()
	results := other.Results()

	m.mu.Lock()
	defer m.mu.Unlock()
	for name, value := range totals {
		m.accumulated[name] += value
	}
	m.results = append(m.results, results...)
}
