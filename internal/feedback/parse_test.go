package feedback

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FencedJSON(t *testing.T) {
	raw := "```json\n{\"overallEncouragement\":\"Nice!\",\"overallStars\":3,\"criteria\":[]}\n```"

	fb, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Nice!", fb.OverallEncouragement)
	assert.Equal(t, 3, fb.OverallStars)
	assert.NotNil(t, fb.Criteria)
	assert.Empty(t, fb.Criteria)
	assert.Empty(t, fb.RawText)
	assert.False(t, fb.IsFallback())
}

func TestParse_FenceVariantsMatchBareJSON(t *testing.T) {
	body := `{"overallEncouragement":"Great story!","overallStars":4,"criteria":[{"id":"voice_style","name":"Voice & Word Choice","stars":5,"feedback":"Vivid verbs.","tip":"Try a simile."}],"funFact":"Shakespeare invented words.","nextChallenge":"Write a haiku."}`

	want, err := Parse(body)
	require.NoError(t, err)

	for _, raw := range []string{
		"```json\n" + body + "\n```",
		"```\n" + body + "\n```",
		"  \n```json" + body + "```\n ",
		"\t" + body + "\n",
	} {
		got, err := Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", raw)
	}
}

func TestParse_FullReply(t *testing.T) {
	raw := `{
		"overallEncouragement": "You clearly love dragons!",
		"overallStars": 4,
		"criteria": [
			{"id": "ideas_organization", "name": "Ideas & Organization", "stars": 4, "feedback": "Clear beginning.", "tip": "Add a conclusion."},
			{"id": "conventions", "name": "Language Conventions", "stars": 2, "feedback": "Watch commas."}
		],
		"funFact": "The word 'dragon' comes from Greek.",
		"nextChallenge": "Describe the dragon's lair."
	}`

	fb, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, fb.Criteria, 2)
	assert.Equal(t, CriterionFeedback{
		ID: "ideas_organization", Name: "Ideas & Organization", Stars: 4,
		Feedback: "Clear beginning.", Tip: "Add a conclusion.",
	}, fb.Criteria[0])
	assert.Empty(t, fb.Criteria[1].Tip)
	assert.Equal(t, "The word 'dragon' comes from Greek.", fb.FunFact)
	assert.Equal(t, "Describe the dragon's lair.", fb.NextChallenge)
}

func TestParse_ClampsRatings(t *testing.T) {
	raw := `{"overallEncouragement":"Keep going","overallStars":10,"criteria":[
		{"id":"a","stars":0},
		{"id":"b","stars":-2},
		{"id":"c","stars":7},
		{"id":"d"},
		{"id":"e","stars":null},
		{"id":"f","stars":"4"},
		{"id":"g","stars":"lots"}
	]}`

	fb, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, 5, fb.OverallStars)

	var got []int
	for _, c := range fb.Criteria {
		got = append(got, c.Stars)
	}
	assert.Equal(t, []int{1, 1, 5, 3, 3, 4, 3}, got)
}

func TestParse_MissingOverallStarsDefaults(t *testing.T) {
	fb, err := Parse(`{"overallEncouragement":"Hi","criteria":[]}`)
	require.NoError(t, err)
	assert.Equal(t, DefaultStars, fb.OverallStars)
}

func TestParse_NonJSONFallsBack(t *testing.T) {
	raw := "I couldn't quite read this photo, but it looks like a great start!"

	fb, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, fb.OverallEncouragement)
	assert.Equal(t, 3, fb.OverallStars)
	assert.NotNil(t, fb.Criteria)
	assert.Empty(t, fb.Criteria)
	assert.Equal(t, raw, fb.RawText)
	assert.Empty(t, fb.FunFact)
	assert.Empty(t, fb.NextChallenge)
	assert.True(t, fb.IsFallback())
}

func TestParse_FallbackTruncatesRunes(t *testing.T) {
	raw := strings.Repeat("é", 350)

	fb, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, 300, len([]rune(fb.OverallEncouragement)))
	assert.Equal(t, raw, fb.RawText)
}

func TestParse_ShapeFailuresFallBack(t *testing.T) {
	cases := map[string]string{
		"missing criteria":      `{"overallEncouragement":"Nice","overallStars":4}`,
		"criteria not array":    `{"overallEncouragement":"Nice","criteria":"none"}`,
		"missing encouragement": `{"overallStars":4,"criteria":[]}`,
		"empty encouragement":   `{"overallEncouragement":"","criteria":[]}`,
		"encouragement number":  `{"overallEncouragement":5,"criteria":[]}`,
		"top-level array":       `[{"overallEncouragement":"Nice","criteria":[]}]`,
		"truncated":             `{"overallEncouragement":"Nice","crit`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			fb, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, DefaultStars, fb.OverallStars)
			assert.Empty(t, fb.Criteria)
			assert.Equal(t, raw, fb.RawText)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t"} {
		fb, err := Parse(raw)
		assert.ErrorIs(t, err, ErrEmptyResponse)
		assert.Nil(t, fb)
	}
}

func TestParse_NonObjectCriteriaGetDefaults(t *testing.T) {
	fb, err := Parse(`{"overallEncouragement":"Hi","criteria":[null,"oops",{"id":"x","stars":9}]}`)
	require.NoError(t, err)
	assert.False(t, fb.IsFallback())
	require.Len(t, fb.Criteria, 3)
	assert.Equal(t, CriterionFeedback{Stars: DefaultStars}, fb.Criteria[0])
	assert.Equal(t, CriterionFeedback{Stars: DefaultStars}, fb.Criteria[1])
	assert.Equal(t, "x", fb.Criteria[2].ID)
	assert.Equal(t, MaxStars, fb.Criteria[2].Stars)
}

func TestParse_OverflowingStarsClamp(t *testing.T) {
	fb, err := Parse(`{"overallEncouragement":"Hi","overallStars":1e400,"criteria":[{"stars":-1e400},{"stars":1e-400}]}`)
	require.NoError(t, err)
	assert.False(t, fb.IsFallback())
	assert.Equal(t, MaxStars, fb.OverallStars)
	require.Len(t, fb.Criteria, 2)
	assert.Equal(t, MinStars, fb.Criteria[0].Stars)
	assert.Equal(t, MinStars, fb.Criteria[1].Stars)
}

func TestParse_TrailingDataFallsBack(t *testing.T) {
	fb, err := Parse(`{"overallEncouragement":"Hi","criteria":[]} extra`)
	require.NoError(t, err)
	assert.True(t, fb.IsFallback())
}

func TestClampStars(t *testing.T) {
	cases := []struct {
		in   any
		want int
	}{
		{nil, 3},
		{0.0, 1},
		{-4.0, 1},
		{1.0, 1},
		{2.4, 2},
		{2.5, 3},
		{4.6, 5},
		{10.0, 5},
		{3, 3},
		{json.Number("4"), 4},
		{json.Number("x"), 3},
		{json.Number("1e400"), 5},
		{"-1e400", 1},
		{" 2 ", 2},
		{"five", 3},
		{true, 3},
		{map[string]any{}, 3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClampStars(tc.in), "ClampStars(%#v)", tc.in)
	}
}

func TestFeedback_Summary(t *testing.T) {
	fb := &Feedback{OverallEncouragement: "Wow", OverallStars: 5, FunFact: "x"}
	assert.Equal(t, Summary{OverallEncouragement: "Wow", OverallStars: 5}, fb.Summary())
}
