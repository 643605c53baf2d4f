// Package feedback turns raw model output into structured writing feedback.
package feedback

// Rating bounds shared with the prompt's "1-5 stars" scale.
const (
	MinStars     = 1
	MaxStars     = 5
	DefaultStars = 3
)

// fallbackPreviewRunes bounds the encouragement text shown when the model
// reply could not be parsed.
const fallbackPreviewRunes = 300

// Feedback is the parsed analysis of one piece of student writing.
type Feedback struct {
	OverallEncouragement string              `json:"overallEncouragement"`
	OverallStars         int                 `json:"overallStars"`
	Criteria             []CriterionFeedback `json:"criteria"`
	FunFact              string              `json:"funFact,omitempty"`
	NextChallenge        string              `json:"nextChallenge,omitempty"`

	// RawText holds the unparsed reply when the model ignored the format.
	RawText string `json:"rawText,omitempty"`
}

// CriterionFeedback is the rating and comments for one rubric criterion.
type CriterionFeedback struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Stars    int    `json:"stars"`
	Feedback string `json:"feedback"`
	Tip      string `json:"tip,omitempty"`
}

// Summary is the reduced form of Feedback kept in conversation history.
type Summary struct {
	OverallEncouragement string `json:"overallEncouragement"`
	OverallStars         int    `json:"overallStars"`
}

// Summary reduces f to the fields kept in history.
func (f *Feedback) Summary() Summary {
	return Summary{
		OverallEncouragement: f.OverallEncouragement,
		OverallStars:         f.OverallStars,
	}
}

// IsFallback reports whether f was built from an unparsable reply.
func (f *Feedback) IsFallback() bool {
	return f.RawText != ""
}
