package model

const (
	UnknownQuestion   = "Unknown"
	MissingAnswerText = "No answer available"
)

// EntryMetadata is the payload stored next to each vector. Either field may be
// absent in the index; defaults are applied by the accessors. Only missing or
// empty values are replaced, whitespace is kept as stored.
type EntryMetadata struct {
	Question *string `json:"question,omitempty"`
	Answer   *string `json:"answer,omitempty"`
}

func (m EntryMetadata) QuestionOrDefault() string {
	if m.Question == nil || *m.Question == "" {
		return UnknownQuestion
	}
	return *m.Question
}

func (m EntryMetadata) AnswerOrDefault() string {
	if m.Answer == nil || *m.Answer == "" {
		return MissingAnswerText
	}
	return *m.Answer
}

// RetrievedEntry is one nearest-neighbour match, already defaulted.
type RetrievedEntry struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    float32 `json:"score"`
}

// NewRetrievedEntry applies the metadata defaulting rules.
func NewRetrievedEntry(meta EntryMetadata, score float32) RetrievedEntry {
	return RetrievedEntry{
		Question: meta.QuestionOrDefault(),
		Answer:   meta.AnswerOrDefault(),
		Score:    score,
	}
}
