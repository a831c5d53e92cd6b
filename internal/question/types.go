package question

// Marker is the leading glyph that identifies an option line in pasted question text.
type Marker rune

// Option line markers. Word processors emit these private-use glyphs when bulleted
// answer lists are copied as plain text.
const (
	MarkerPlain   Marker = '\uf0fd'
	MarkerCorrect Marker = '\uf0fe'
)

// String returns the glyph as text, handy when composing question banks.
func (m Marker) String() string {
	return string(rune(m))
}

// Question is a single multiple-choice entry of the bank. Its prompt text is its identity.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// HasOption reports whether text is one of the question's options.
func (q Question) HasOption(text string) bool {
	for _, opt := range q.Options {
		if opt == text {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no memory with q.
func (q Question) Clone() Question {
	out := q
	out.Options = append([]string(nil), q.Options...)
	return out
}
