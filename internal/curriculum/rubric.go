package curriculum

import (
	"slices"
	"sort"
)

// Ontario Curriculum, Grades 1–8: Language (2023)
// Strand B: Composition, Expressing Ideas and Creating Texts.

// BaselineGrade is the rubric used when a requested grade has no table entry.
const BaselineGrade = 6

// SubjectEnglish is the only subject with a rubric table today.
const SubjectEnglish = "english"

// Subject describes a school subject the buddy can give feedback on.
type Subject struct {
	ID          string
	Name        string
	Icon        string
	Description string
}

// Criterion is one named axis of evaluation within a rubric.
type Criterion struct {
	ID          string
	Name        string
	Icon        string
	Description string
	// Expectation is the curriculum reference code and its text.
	Expectation string
	// Guidance steers the model; it is never shown to the student.
	Guidance string
}

// Rubric is the fixed set of evaluation criteria for one grade.
type Rubric struct {
	Grade      int
	GradeLabel string
	Criteria   []Criterion
}

var subjects = map[string]Subject{
	SubjectEnglish: {
		ID:          SubjectEnglish,
		Name:        "English Language",
		Icon:        "📝",
		Description: "Writing analysis aligned with Ontario Language curriculum",
	},
}

// GetSubject returns the subject for id. Unknown ids resolve to English.
func GetSubject(id string) Subject {
	if s, ok := subjects[id]; ok {
		return s
	}
	return subjects[SubjectEnglish]
}

// GetRubric returns the rubric for grade and subject. Grades without a table
// entry get the baseline rubric; subjects other than English currently share
// the English table. The result is a copy; changing it leaves the table alone.
func GetRubric(grade int, subject string) Rubric {
	r, ok := englishRubrics[grade]
	if !ok {
		r = englishRubrics[BaselineGrade]
	}
	r.Criteria = slices.Clone(r.Criteria)
	return r
}

// SupportedGrades returns the grades with a rubric, ascending.
func SupportedGrades() []int {
	grades := make([]int, 0, len(englishRubrics))
	for g := range englishRubrics {
		grades = append(grades, g)
	}
	sort.Ints(grades)
	return grades
}

// IsSupportedGrade reports whether grade has its own rubric.
func IsSupportedGrade(grade int) bool {
	_, ok := englishRubrics[grade]
	return ok
}

var englishRubrics = map[int]Rubric{
	6: {
		Grade:      6,
		GradeLabel: "Grade 6",
		Criteria: []Criterion{
			{
				ID:          "ideas_organization",
				Name:        "Ideas & Organization",
				Icon:        "💡",
				Description: "Clear main idea with supporting details organized logically",
				Expectation: "B1.3 – Organize ideas and information using a variety of patterns (e.g., comparison, cause and effect, chronological order)",
				Guidance:    "Evaluate whether the writing has a clear main idea, logical paragraph structure, relevant supporting details, and uses organizational patterns appropriate for Grade 6 (comparison, cause-and-effect, chronological).",
			},
			{
				ID:          "voice_style",
				Name:        "Voice & Word Choice",
				Icon:        "🎨",
				Description: "Engaging voice with varied and precise vocabulary",
				Expectation: "B1.4 – Draft and revise writing using a variety of sentence types and appropriate vocabulary for purpose and audience",
				Guidance:    "Evaluate the variety of sentence structures, word choice precision, awareness of audience, and whether the writer's voice is developing and engaging for Grade 6 level.",
			},
			{
				ID:          "conventions",
				Name:        "Language Conventions",
				Icon:        "📏",
				Description: "Spelling, grammar, and punctuation accuracy",
				Expectation: "B2.1 – Spell familiar and frequently used words correctly; use resources to check spelling; apply knowledge of spelling patterns",
				Guidance:    "Evaluate spelling accuracy, use of grammar and punctuation conventions expected at Grade 6 level, including correct use of commas, apostrophes, and subject-verb agreement.",
			},
			{
				ID:          "reflection",
				Name:        "Thinking & Reflection",
				Icon:        "🤔",
				Description: "Evidence of thinking, revision, and self-improvement",
				Expectation: "B1.6 – Reflect on and identify strengths, areas for improvement, and strategies used in writing",
				Guidance:    "Look for evidence that the student has revised or thought critically about their writing. Note any self-corrections, crossed-out sections, or evidence of drafting. Encourage the practice of reflection.",
			},
		},
	},
	7: {
		Grade:      7,
		GradeLabel: "Grade 7",
		Criteria: []Criterion{
			{
				ID:          "ideas_organization",
				Name:        "Ideas & Organization",
				Icon:        "💡",
				Description: "Well-developed thesis with structured arguments and transitions",
				Expectation: "B1.3 – Organize ideas and information into a coherent whole using a range of organizational patterns and techniques",
				Guidance:    "Evaluate whether the writing has a clear thesis or central argument, uses transition words and phrases effectively, maintains coherent paragraph structure, and develops ideas with specific evidence appropriate for Grade 7.",
			},
			{
				ID:          "voice_style",
				Name:        "Voice & Word Choice",
				Icon:        "🎨",
				Description: "Distinctive voice with sophisticated and varied language",
				Expectation: "B1.4 – Use a range of sentence structures and vocabulary appropriate for Grade 7 to communicate ideas clearly",
				Guidance:    "Evaluate sentence variety (simple, compound, complex), vocabulary sophistication, use of figurative language or literary devices, and whether the writing demonstrates an emerging personal voice appropriate for Grade 7.",
			},
			{
				ID:          "conventions",
				Name:        "Language Conventions",
				Icon:        "📏",
				Description: "Consistent accuracy in grammar, spelling, and punctuation",
				Expectation: "B2.1 – Apply knowledge of spelling rules and conventions; use punctuation correctly including semicolons and colons in appropriate contexts",
				Guidance:    "Evaluate Grade 7-level conventions: consistent verb tenses, proper pronoun usage, comma usage in complex sentences, spelling of challenging words, and paragraph formatting.",
			},
			{
				ID:          "critical_thinking",
				Name:        "Critical Thinking",
				Icon:        "🧠",
				Description: "Analysis, evaluation, and connection of ideas",
				Expectation: "B1.1 – Generate, gather, and organize ideas for writing using a variety of strategies and tools",
				Guidance:    "Evaluate depth of thinking: Does the writing go beyond surface observation? Are ideas connected logically? Is there evidence of analysis or evaluation? Does the student consider multiple perspectives? At Grade 7, expect developing analytical skills.",
			},
		},
	},
	8: {
		Grade:      8,
		GradeLabel: "Grade 8",
		Criteria: []Criterion{
			{
				ID:          "ideas_organization",
				Name:        "Ideas & Organization",
				Icon:        "💡",
				Description: "Sophisticated structure with compelling thesis and strong evidence",
				Expectation: "B1.3 – Organize ideas using the most effective pattern for the purpose, including thesis-based structures with counterarguments",
				Guidance:    "Evaluate the clarity and strength of the thesis, logical flow of arguments, use of evidence and examples, effective introduction and conclusion, and sophisticated transitions. For Grade 8, expect well-structured multi-paragraph compositions with clear purpose.",
			},
			{
				ID:          "voice_style",
				Name:        "Voice & Word Choice",
				Icon:        "🎨",
				Description: "Strong personal voice with precise, powerful language choices",
				Expectation: "B1.4 – Use a variety of sentence types and structures and vocabulary that is precise and vivid to create specific effects",
				Guidance:    "Evaluate sophistication of sentence structures, precise vocabulary use, rhetorical techniques, tone consistency, and whether the writing demonstrates a strong and authentic voice. At Grade 8, expect purposeful stylistic choices.",
			},
			{
				ID:          "conventions",
				Name:        "Language Conventions",
				Icon:        "📏",
				Description: "Strong command of grammar, spelling, and punctuation conventions",
				Expectation: "B2.1 – Apply knowledge of conventions consistently to produce polished drafts, including complex punctuation and varied sentence patterns",
				Guidance:    "Evaluate Grade 8-level conventions: correct use of complex punctuation (semicolons, colons, dashes), consistent verb tense management across paragraphs, proper parallel structure, sophisticated spelling, and polished formatting.",
			},
			{
				ID:          "critical_literacy",
				Name:        "Critical Literacy & Perspective",
				Icon:        "🌍",
				Description: "Awareness of audience, purpose, and diverse perspectives",
				Expectation: "B1.1 – Generate, gather, evaluate, and organize ideas for writing, demonstrating awareness of purpose, audience, and context",
				Guidance:    "Evaluate the student's awareness of audience and purpose, ability to consider alternative viewpoints, evidence of research or outside knowledge, and critical thinking depth. At Grade 8, expect awareness of bias, persuasive techniques, and contextual writing choices.",
			},
		},
	},
}
