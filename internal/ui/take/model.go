package take

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gokatarajesh/quiz-bank/internal/quiz"
)

// Model walks a taker through a generated test and grades it on submit.
type Model struct {
	test    quiz.Test
	current int
	cursor  []int
	answers map[int]string
	result  *quiz.Result

	keys    keyMap
	help    help.Model
	noColor bool
}

// Options configures the test runner.
type Options struct {
	NoColor bool
}

// NewModel starts at the first question with nothing answered.
func NewModel(t quiz.Test, opts Options) Model {
	return Model{
		test:    t,
		cursor:  make([]int, len(t.Questions)),
		answers: make(map[int]string, len(t.Questions)),
		keys:    defaultKeys(),
		help:    help.New(),
		noColor: opts.NoColor,
	}
}

// Init has nothing to start.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update moves the cursor, records answers and grades on submit.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = typed.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(typed)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.result != nil || len(m.test.Questions) == 0 {
		return m, nil
	}

	options := m.test.Questions[m.current].Options
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor[m.current] > 0 {
			m.cursor[m.current]--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor[m.current] < len(options)-1 {
			m.cursor[m.current]++
		}
	case key.Matches(msg, m.keys.Prev):
		if m.current > 0 {
			m.current--
		}
	case key.Matches(msg, m.keys.Next):
		if m.current < len(m.test.Questions)-1 {
			m.current++
		}
	case key.Matches(msg, m.keys.Choose):
		m.answers[m.current] = options[m.cursor[m.current]]
		if m.current < len(m.test.Questions)-1 {
			m.current++
		}
	case key.Matches(msg, m.keys.Submit):
		res := quiz.Grade(m.test, m.answers)
		m.result = &res
	}
	return m, nil
}

// View renders either the current question or the graded review.
func (m Model) View() string {
	if m.result != nil {
		return m.renderResult()
	}
	if len(m.test.Questions) == 0 {
		return "No questions.\n"
	}
	return m.renderQuestion()
}

// Result returns the graded result once the taker submitted.
func (m Model) Result() (quiz.Result, bool) {
	if m.result == nil {
		return quiz.Result{}, false
	}
	return *m.result, true
}

// Answered reports how many questions have an answer.
func (m Model) Answered() int {
	return len(m.answers)
}

func (m Model) renderQuestion() string {
	q := m.test.Questions[m.current]
	header := fmt.Sprintf("Question %d of %d  ·  answered %d", m.current+1, len(m.test.Questions), len(m.answers))

	lines := []string{
		stylize(header, m.noColor, lipgloss.Color("33")),
		"",
		bold(fmt.Sprintf("%d. %s", m.current+1, q.Question), m.noColor),
		"",
	}
	chosen, hasAnswer := m.answers[m.current]
	for i, opt := range q.Options {
		pointer := "  "
		if i == m.cursor[m.current] {
			pointer = "> "
		}
		mark := "( )"
		if hasAnswer && opt == chosen {
			mark = "(•)"
		}
		line := pointer + mark + " " + opt
		if i == m.cursor[m.current] {
			line = stylize(line, m.noColor, lipgloss.Color("212"))
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

func (m Model) renderResult() string {
	res := *m.result
	lines := []string{
		bold("Your score: "+res.Summary(), m.noColor),
		"",
	}
	for _, r := range res.Review {
		status := stylize("✓", m.noColor, lipgloss.Color("42"))
		if !r.Correct {
			status = stylize("✗", m.noColor, lipgloss.Color("196"))
		}
		lines = append(lines, fmt.Sprintf("%s %d. %s", status, r.Number, r.Question))
		lines = append(lines, "    Your answer: "+r.Answer)
		if !r.Correct {
			lines = append(lines, "    Correct answer: "+r.CorrectAnswer)
		}
	}
	lines = append(lines, "", stylize("press q to exit", m.noColor, lipgloss.Color("244")))
	return strings.Join(lines, "\n") + "\n"
}

func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

func bold(text string, noColor bool) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Bold(true).Render(text)
}

// Run drives the model on the given terminal streams until the taker quits.
// ok is false when the taker left without submitting.
func Run(t quiz.Test, in io.Reader, out io.Writer, opts Options) (res quiz.Result, ok bool, err error) {
	program := tea.NewProgram(NewModel(t, opts), tea.WithInput(in), tea.WithOutput(out))
	final, err := program.Run()
	if err != nil {
		return quiz.Result{}, false, fmt.Errorf("run test ui: %w", err)
	}
	res, ok = final.(Model).Result()
	return res, ok, nil
}
