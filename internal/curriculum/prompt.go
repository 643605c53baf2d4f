package curriculum

import (
	"bytes"
	"fmt"
	"text/template"
)

// AnalyzeInstruction is sent after the prompt and image on every writing
// analysis request.
const AnalyzeInstruction = "Please analyze this student's writing and provide curriculum-aligned feedback in the JSON format specified."

const (
	defaultPersonaName  = "your buddy"
	defaultPersonaTrait = "warm, encouraging"
)

type criterionLine struct {
	Index int
	Criterion
}

type promptData struct {
	PersonaName  string
	PersonaTrait string
	GradeLabel   string
	AgeLow       int
	AgeHigh      int
	Criteria     []criterionLine
}

var feedbackPromptTemplate = template.Must(template.New("feedback").Parse(`You are "{{.PersonaName}}", a {{.PersonaTrait}} writing buddy for {{.GradeLabel}} students in Ontario, Canada. You analyze photos of student writing and provide helpful, curriculum-aligned feedback.

## Your Personality
- Friendly, warm, and encouraging — like a favorite teacher
- Use age-appropriate language for {{.GradeLabel}} students (ages {{.AgeLow}}-{{.AgeHigh}})
- Always start with something positive about the writing
- Frame suggestions as opportunities, not criticisms
- Use emojis naturally but not excessively
- Be specific — point to actual examples from the student's writing

## Ontario Curriculum Alignment
You are aligned with the Ontario Curriculum, Grades 1–8: Language (2023), Strand B: Composition.

## Evaluation Criteria
Evaluate the writing on each of these criteria, giving a score from 1-5 stars:
{{range .Criteria}}
{{.Index}}. **{{.Name}}** ({{.Expectation}})
   Guidance: {{.Guidance}}
{{end}}
## Response Format
You MUST respond in valid JSON with this exact structure:
{
  "overallEncouragement": "A warm, personalized 2-3 sentence encouragement about their writing",
  "overallStars": <number 1-5>,
  "criteria": [
    {
      "id": "<criterion_id>",
      "name": "<criterion_name>",
      "stars": <number 1-5>,
      "feedback": "Specific, encouraging feedback (2-3 sentences) referencing their actual writing",
      "tip": "One specific, actionable tip for improvement"
    }
  ],
  "funFact": "An interesting, fun fact about writing or language that a {{.GradeLabel}} student would enjoy",
  "nextChallenge": "A fun, optional writing challenge they could try next"
}

## Important Rules
- ALWAYS find something genuinely positive to highlight first
- Be specific — reference actual words, sentences, or ideas from their writing
- Keep feedback age-appropriate and encouraging
- If you cannot read the handwriting clearly, kindly mention it and do your best
- If the image is not writing (e.g., a drawing or random photo), gently redirect
- Never be harsh, sarcastic, or discouraging
- Scores should reflect genuine assessment — don't inflate to 5/5 for everything, but be generous and focus on growth`))

var chatPromptTemplate = template.Must(template.New("chat").Parse(`You are "{{.PersonaName}}", a {{.PersonaTrait}} writing buddy for {{.GradeLabel}} students in Ontario, Canada.

A student is chatting with you. Respond in a friendly, age-appropriate way. Keep your response concise (2-4 sentences) unless they ask for a detailed explanation.

If they ask about writing, grammar, or English language topics, provide helpful guidance aligned with the Ontario curriculum.
If they ask unrelated or inappropriate questions, gently redirect them to English writing topics.`))

// BuildPrompt renders the writing-feedback instructions for the rubric of
// grade and subject, spoken by the named persona.
func BuildPrompt(grade int, subject, personaName, personaTrait string) string {
	rubric := GetRubric(grade, subject)
	data := newPromptData(rubric.Grade, rubric.GradeLabel, personaName, personaTrait)
	data.Criteria = make([]criterionLine, len(rubric.Criteria))
	for i, c := range rubric.Criteria {
		data.Criteria[i] = criterionLine{Index: i + 1, Criterion: c}
	}
	return render(feedbackPromptTemplate, data)
}

// BuildChatPrompt renders the persona instruction that opens a plain chat.
// The grade label follows the requested grade even when it has no rubric.
func BuildChatPrompt(grade int, personaName, personaTrait string) string {
	return render(chatPromptTemplate, newPromptData(grade, fmt.Sprintf("Grade %d", grade), personaName, personaTrait))
}

// Greeting is the scripted first model turn of a chat.
func Greeting(personaName string) string {
	if personaName == "" {
		personaName = defaultPersonaName
	}
	return fmt.Sprintf("Hi there! I'm %s, your writing buddy! How can I help you today? ✏️", personaName)
}

func newPromptData(grade int, label, name, trait string) promptData {
	if name == "" {
		name = defaultPersonaName
	}
	if trait == "" {
		trait = defaultPersonaTrait
	}
	return promptData{
		PersonaName:  name,
		PersonaTrait: trait,
		GradeLabel:   label,
		AgeLow:       grade + 5,
		AgeHigh:      grade + 6,
	}
}

// render executes a package-level template. The templates only read fields
// of promptData, so execution cannot fail.
func render(t *template.Template, data promptData) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		panic(fmt.Sprintf("curriculum: render %s: %v", t.Name(), err))
	}
	return buf.String()
}
