package models

// ProbeType partitions placement probes for scoring.
type ProbeType string

const (
	ProbeVocabulary ProbeType = "vocabulary"
	ProbeGrammar    ProbeType = "grammar"
)

// PlacementProbe is one placement-test question. Options are shuffled at
// build time; CorrectIndex points at the right answer post-shuffle.
// Transient: probes are scoped to one placement run.
type PlacementProbe struct {
	ProbeType    ProbeType `json:"probe_type"`
	Difficulty   int       `json:"difficulty"`
	ItemID       string    `json:"item_id"`
	Prompt       string    `json:"prompt"`
	Options      []string  `json:"options"`
	CorrectIndex int       `json:"correct_index"`
}

// PlacementResponse records a learner's answer to one probe.
type PlacementResponse struct {
	ProbeType  ProbeType `json:"probe_type"`
	Difficulty int       `json:"difficulty"`
	Correct    bool      `json:"correct"`
	ItemID     string    `json:"item_id"`
}

// PlacementResult is the outcome of a scored placement test.
type PlacementResult struct {
	TotalScore      float64 `json:"total_score"`
	VocabularyScore float64 `json:"vocabulary_score"`
	GrammarScore    float64 `json:"grammar_score"`
	ReadingScore    float64 `json:"reading_score"`
	StartingUnit    int     `json:"starting_unit"`
}
