package dataset

import "strings"

// HypothesisRecord is one evaluated recording in a hypothesis corpus: the
// recording URI plus the transcripts a system produced for it, one per
// detected speaker.
type HypothesisRecord struct {
	// URI identifies the recording and keys the reference lookup.
	URI string `json:"uri" parquet:"uri"`

	// Hypotheses holds one transcript per detected speaker stream.
	Hypotheses []string `json:"hypotheses" parquet:"hypotheses,list"`

	// System optionally names the recognizer that produced the transcripts.
	System string `json:"system,omitempty" parquet:"system,optional"`
}

// SpeakerCount returns the number of non-empty hypothesis streams.
func (r *HypothesisRecord) SpeakerCount() int {
	count := 0
	for _, hyp := range r.Hypotheses {
		if strings.TrimSpace(hyp) != "" {
			count++
		}
	}
	return count
}

// WordCount returns the total hypothesis word count across all streams.
func (r *HypothesisRecord) WordCount() int {
	count := 0
	for _, hyp := range r.Hypotheses {
		count += len(strings.Fields(hyp))
	}
	return count
}
