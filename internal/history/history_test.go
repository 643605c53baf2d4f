package history

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/schoolbuddy/internal/feedback"
	"github.com/abhisek/schoolbuddy/internal/llm"
	"github.com/abhisek/schoolbuddy/internal/personas"
)

func TestConstructors(t *testing.T) {
	ctx := context.Background()

	u := UserText("What is a simile?")
	assert.Equal(t, TypeUser, u.Type)
	_, err := uuid.Parse(u.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), u.Timestamp, time.Minute)

	p := UserPhoto(ctx, "/tmp/essay.jpg")
	assert.Equal(t, "📸 Here's my writing!", p.Text)
	assert.Equal(t, "/tmp/essay.jpg", p.ImageURI)

	e := BotError("oops")
	assert.True(t, e.IsError)
	assert.Equal(t, TypeBot, e.Type)

	assert.NotEqual(t, UserText("a").ID, UserText("a").ID)
}

func TestBotFeedback(t *testing.T) {
	fb := &feedback.Feedback{OverallEncouragement: "Lovely story!", OverallStars: 4, Criteria: []feedback.CriterionFeedback{{ID: "conventions", Stars: 3}}}
	m := BotFeedback(fb)
	assert.Equal(t, "Lovely story!", m.Text)
	require.NotNil(t, m.Feedback)
	assert.Equal(t, feedback.Summary{OverallEncouragement: "Lovely story!", OverallStars: 4}, *m.Feedback)
	assert.Same(t, fb, m.Full)
}

func TestWelcome(t *testing.T) {
	m := Welcome(context.Background(), personas.ByID("sage"), 8)
	assert.Equal(t, WelcomeID, m.ID)
	assert.Equal(t, TypeBot, m.Type)
	assert.True(t, strings.HasPrefix(m.Text, "Hoo hoo! 🌙 I'm Sage 🦉, your Grade 8 writing buddy!"))
}

func TestReduce_DropsFullFeedback(t *testing.T) {
	fb := &feedback.Feedback{OverallEncouragement: "Great voice!", OverallStars: 5, FunFact: "fact"}
	msgs := []Message{UserText("hi"), BotFeedback(fb)}

	out := Reduce(msgs)
	require.Len(t, out, 2)
	assert.Nil(t, out[1].Full)
	assert.Equal(t, 5, out[1].Feedback.OverallStars)
	assert.NotNil(t, msgs[1].Full, "input must not be modified")

	data, err := json.Marshal(out[1])
	require.NoError(t, err)
	assert.NotContains(t, string(data), "funFact")
	assert.Contains(t, string(data), `"overallStars":5`)
}

func TestTrim(t *testing.T) {
	var msgs []Message
	for i := 0; i < 60; i++ {
		msgs = append(msgs, UserText(string(rune('a'+i%26))))
	}
	got := Trim(msgs, MaxSaved)
	require.Len(t, got, MaxSaved)
	assert.Equal(t, msgs[10].ID, got[0].ID)
	assert.Equal(t, msgs[59].ID, got[49].ID)

	assert.Len(t, Trim(msgs[:3], MaxSaved), 3)
	assert.Empty(t, Trim(msgs, 0))
}

func TestTurns(t *testing.T) {
	ctx := context.Background()
	msgs := []Message{
		Welcome(ctx, personas.ByID(""), 6),
		UserText("What is a verb?"),
		BotText("An action word!"),
		UserPhoto(ctx, "essay.png"),
		BotFeedback(&feedback.Feedback{OverallEncouragement: "Nice", OverallStars: 3}),
		UserText("Thanks"),
		BotError("quota"),
	}
	turns := Turns(msgs)
	require.Len(t, turns, 3)
	assert.Equal(t, llm.UserText("What is a verb?"), turns[0])
	assert.Equal(t, llm.AssistantText("An action word!"), turns[1])
	assert.Equal(t, llm.UserText("Thanks"), turns[2])
}

func TestMessageJSONRoundTripShape(t *testing.T) {
	data, err := json.Marshal(UserText("hello"))
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, k := range []string{"id", "type", "text", "timestamp"} {
		assert.Contains(t, m, k)
	}
	assert.NotContains(t, m, "isError")
	assert.NotContains(t, m, "imageUri")
}
