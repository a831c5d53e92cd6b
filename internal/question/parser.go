package question

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// \p{Zs} catches the no-break spaces that pasted documents put after the number.
	questionLinePattern   = regexp.MustCompile(`^\d+\.[\s\p{Zs}]`)
	questionPrefixPattern = regexp.MustCompile(`^\d+\.[\s\p{Zs}]*`)
)

// Parse extracts questions from pasted text.
//
// A question starts at a numbered line ("12. Prompt text") and owns every option line
// that follows it until the next numbered line. Option lines begin with MarkerPlain or
// MarkerCorrect. Any other line is ignored, as is any block that ends up without a
// prompt, without options or without a correct answer. Parse never fails; input that
// yields nothing returns an empty slice.
func Parse(raw string) []Question {
	questions := []Question{}

	var current *block
	flush := func() {
		if current == nil {
			return
		}
		if q, ok := current.question(); ok {
			questions = append(questions, q)
		}
		current = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		line = trimLine(line)
		switch {
		case isQuestionLine(line):
			flush()
			current = &block{prompt: strings.TrimSpace(questionPrefixPattern.ReplaceAllString(line, ""))}
		case isOptionLine(line):
			// Options before the first numbered line have no question to attach to.
			if current != nil {
				current.addOption(line)
			}
		}
	}
	flush()

	return questions
}

// trimLine strips surrounding whitespace and byte order marks, which editors such as
// Notepad put at the start of saved text.
func trimLine(line string) string {
	return strings.TrimFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

func isQuestionLine(line string) bool {
	return questionLinePattern.MatchString(line)
}

func isOptionLine(line string) bool {
	m, ok := leadingMarker(line)
	return ok && (m == MarkerPlain || m == MarkerCorrect)
}

func leadingMarker(line string) (Marker, bool) {
	r, size := utf8.DecodeRuneInString(line)
	if size == 0 || r == utf8.RuneError {
		return 0, false
	}
	return Marker(r), true
}

type block struct {
	prompt  string
	options []string
	correct string
}

func (b *block) addOption(line string) {
	marker, size := utf8.DecodeRuneInString(line)
	text := strings.TrimSpace(line[size:])
	b.options = append(b.options, text)
	if Marker(marker) == MarkerCorrect {
		b.correct = text
	}
}

func (b *block) question() (Question, bool) {
	if b.prompt == "" || len(b.options) == 0 || b.correct == "" {
		return Question{}, false
	}
	return Question{
		Question:      b.prompt,
		Options:       b.options,
		CorrectAnswer: b.correct,
	}, true
}
