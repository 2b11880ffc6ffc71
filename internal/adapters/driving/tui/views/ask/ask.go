// Package ask provides the shopping assistant conversation view for the TUI.
package ask

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kush-lhmm/sampann-search/internal/adapters/driving/tui/components/input"
	"github.com/kush-lhmm/sampann-search/internal/adapters/driving/tui/components/list"
	"github.com/kush-lhmm/sampann-search/internal/adapters/driving/tui/messages"
	"github.com/kush-lhmm/sampann-search/internal/adapters/driving/tui/styles"
	"github.com/kush-lhmm/sampann-search/internal/core/domain"
	"github.com/kush-lhmm/sampann-search/internal/core/ports/driving"
)

// ErrNoAssistant indicates that no assistant service was provided.
var ErrNoAssistant = errors.New("assistant service is required")

// maxEvidence is the number of source products shown under an answer.
const maxEvidence = 3

// Turn is one question and its answer.
type Turn struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// View is the assistant conversation view.
type View struct {
	styles    *styles.Styles
	input     *input.Prompt
	assistant driving.AssistantService
	ctx       context.Context

	turns   []Turn
	pending bool

	width  int
	height int
	ready  bool
}

// NewView creates a new ask view.
func NewView(s *styles.Styles, assistant driving.AssistantService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:    s,
		input:     input.NewPrompt(s, "Ask: ", "e.g. which dal is best for khichdi?"),
		assistant: assistant,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.AnswerReceived:
		v.pending = false
		v.turns = append(v.turns, Turn{Question: msg.Question, Answer: msg.Answer, Err: msg.Err})
		return v, nil

	case tea.KeyMsg:
		//nolint:exhaustive // handling only relevant key types
		switch msg.Type {
		case tea.KeyEsc:
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case tea.KeyEnter:
			question := strings.TrimSpace(v.input.Value())
			if question == "" || v.pending {
				return v, nil
			}
			v.input.SetValue("")
			v.pending = true
			return v, v.ask(question)
		}
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) ask(question string) tea.Cmd {
	return func() tea.Msg {
		if v.assistant == nil {
			return messages.AnswerReceived{Question: question, Err: ErrNoAssistant}
		}
		answer, err := v.assistant.Ask(v.ctx, question)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

// View renders the conversation.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	rendered := make([]string, 0, len(v.turns))
	for i := range v.turns {
		rendered = append(rendered, v.renderTurn(&v.turns[i]))
	}

	// Keep the newest turns that fit above the input.
	budget := v.height - 8
	var visible []string
	used := 0
	for i := len(rendered) - 1; i >= 0; i-- {
		h := lipgloss.Height(rendered[i]) + 1
		if used+h > budget && len(visible) > 0 {
			break
		}
		visible = append([]string{rendered[i]}, visible...)
		used += h
	}

	sections := []string{v.styles.Title.Render("Ask Sampann"), ""}
	if len(visible) == 0 {
		sections = append(sections, v.styles.Muted.Render("Ask about products, prices, pack sizes or comparisons."))
	} else {
		sections = append(sections, strings.Join(visible, "\n\n"))
	}
	if v.pending {
		sections = append(sections, "", v.styles.Muted.Render("Thinking..."))
	}
	sections = append(sections, "", v.input.View(), v.styles.Help.Render("[enter] ask  [esc] back"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderTurn(t *Turn) string {
	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render("You: "))
	b.WriteString(v.styles.Normal.Render(t.Question))
	b.WriteString("\n")

	if t.Err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + t.Err.Error()))
		return b.String()
	}
	if t.Answer == nil {
		return b.String()
	}

	b.WriteString(v.styles.Badge.Render("[" + string(t.Answer.Kind) + "]"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Width(v.width - 2).Render(t.Answer.Text))

	evidence := t.Answer.Hits
	if len(evidence) > maxEvidence {
		evidence = evidence[:maxEvidence]
	}
	for i := range evidence {
		h := &evidence[i]
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  • %s ", list.Truncate(h.Title, v.width-24))))
		b.WriteString(v.styles.Price.Render(list.FormatPrice(h.Price)))
	}
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
}

// Turns returns the conversation so far.
func (v *View) Turns() []Turn {
	return v.turns
}

// Pending reports whether a question is awaiting its answer.
func (v *View) Pending() bool {
	return v.pending
}

// Reset clears the conversation and focuses the input.
func (v *View) Reset() {
	v.turns = nil
	v.pending = false
	v.input.SetValue("")
	v.input.Focus()
}
