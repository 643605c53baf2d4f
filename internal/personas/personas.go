// Package personas defines the pet companions a student can pick to speak
// for the writing buddy.
package personas

// DefaultID is used when no persona has been chosen or the stored id is
// unknown.
const DefaultID = "scout"

// Persona is a selectable pet companion.
type Persona struct {
	ID          string
	Name        string
	Emoji       string
	Animal      string
	Color       string
	Personality string
	Greeting    string
	Tagline     string
}

var all = []Persona{
	{
		ID:          "scout",
		Name:        "Scout",
		Emoji:       "🐶",
		Animal:      "Dog",
		Color:       "#F59E0B",
		Personality: "loyal, encouraging, and energetic",
		Greeting:    "Woof! 🐾",
		Tagline:     "Your loyal learning pal",
	},
	{
		ID:          "whiskers",
		Name:        "Whiskers",
		Emoji:       "🐱",
		Animal:      "Cat",
		Color:       "#8B5CF6",
		Personality: "calm, curious, and thoughtful",
		Greeting:    "Purr! 🐾",
		Tagline:     "Your curious study companion",
	},
	{
		ID:          "sage",
		Name:        "Sage",
		Emoji:       "🦉",
		Animal:      "Owl",
		Color:       "#3B82F6",
		Personality: "wise, patient, and observant",
		Greeting:    "Hoo hoo! 🌙",
		Tagline:     "Your wise knowledge guide",
	},
	{
		ID:          "bamboo",
		Name:        "Bamboo",
		Emoji:       "🐼",
		Animal:      "Panda",
		Color:       "#10B981",
		Personality: "gentle, friendly, and supportive",
		Greeting:    "Hey friend! 🎋",
		Tagline:     "Your gentle study buddy",
	},
	{
		ID:          "finn",
		Name:        "Finn",
		Emoji:       "🦊",
		Animal:      "Fox",
		Color:       "#EF4444",
		Personality: "clever, playful, and adventurous",
		Greeting:    "Let's go! 🌟",
		Tagline:     "Your clever learning sidekick",
	},
}

var byID = func() map[string]Persona {
	m := make(map[string]Persona, len(all))
	for _, p := range all {
		m[p.ID] = p
	}
	return m
}()

// All returns every persona in display order. The slice is a copy.
func All() []Persona {
	out := make([]Persona, len(all))
	copy(out, all)
	return out
}

// ByID returns the persona with the given id, or the default persona.
func ByID(id string) Persona {
	if p, ok := byID[id]; ok {
		return p
	}
	return byID[DefaultID]
}

// Exists reports whether id names a known persona.
func Exists(id string) bool {
	_, ok := byID[id]
	return ok
}
