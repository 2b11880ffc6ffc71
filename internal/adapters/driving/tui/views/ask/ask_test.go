package ask

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kush-lhmm/sampann-search/internal/adapters/driving/tui/messages"
	"github.com/kush-lhmm/sampann-search/internal/core/domain"
)

type mockAssistant struct {
	answer *domain.Answer
	err    error
	asked  []string
}

func (m *mockAssistant) Ask(_ context.Context, message string) (*domain.Answer, error) {
	m.asked = append(m.asked, message)
	return m.answer, m.err
}

func ptrFloat(v float64) *float64 { return &v }

func newReadyView(a *mockAssistant) *View {
	v := NewView(nil, a)
	v.SetDimensions(100, 40)
	return v
}

func ask(t *testing.T, v *View, question string) {
	t.Helper()
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(question)})
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, v.Pending())
	v.Update(cmd())
}

func TestView_AskRendersAnswerAndEvidence(t *testing.T) {
	hits := make([]domain.Hit, 5)
	for i := range hits {
		hits[i] = domain.Hit{Title: "Dal " + string(rune('A'+i)), Price: ptrFloat(100 + float64(i))}
	}
	a := &mockAssistant{answer: &domain.Answer{
		Kind: domain.AnswerGrounded,
		Text: "Toor dal suits khichdi.",
		Hits: hits,
	}}
	v := newReadyView(a)

	ask(t, v, "best dal for khichdi?")

	assert.Equal(t, []string{"best dal for khichdi?"}, a.asked)
	require.Len(t, v.Turns(), 1)
	assert.False(t, v.Pending())

	view := v.View()
	assert.Contains(t, view, "best dal for khichdi?")
	assert.Contains(t, view, "[grounded]")
	assert.Contains(t, view, "Toor dal suits khichdi.")
	assert.Contains(t, view, "Dal C")
	assert.NotContains(t, view, "Dal D", "evidence is capped")
	assert.Contains(t, view, "₹100.00")
}

func TestView_AskError(t *testing.T) {
	v := newReadyView(&mockAssistant{err: domain.ErrUpstreamFailure})

	ask(t, v, "kaju price")

	require.Len(t, v.Turns(), 1)
	assert.ErrorIs(t, v.Turns()[0].Err, domain.ErrUpstreamFailure)
	assert.Contains(t, v.View(), "Error:")
}

func TestView_NoAssistant(t *testing.T) {
	v := NewView(nil, nil)
	v.SetDimensions(100, 40)

	ask(t, v, "hello")

	assert.ErrorIs(t, v.Turns()[0].Err, ErrNoAssistant)
}

func TestView_IgnoresEmptyAndPendingQuestions(t *testing.T) {
	v := newReadyView(&mockAssistant{answer: &domain.Answer{Kind: domain.AnswerSmalltalk}})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hi")})
	_, first := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, first)

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("again")})
	_, second := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, second, "one question at a time")
}

func TestView_KeepsNewestTurnsVisible(t *testing.T) {
	v := NewView(nil, &mockAssistant{answer: &domain.Answer{Kind: domain.AnswerSmalltalk, Text: "Namaste!"}})
	v.SetDimensions(80, 14)

	for _, q := range []string{"first question", "second question", "third question"} {
		ask(t, v, q)
	}

	view := v.View()
	assert.Contains(t, view, "third question")
	assert.NotContains(t, view, "first question")
}

func TestView_EscAndReset(t *testing.T) {
	v := newReadyView(&mockAssistant{answer: &domain.Answer{Kind: domain.AnswerSmalltalk}})
	ask(t, v, "hi")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())

	v.Reset()
	assert.Empty(t, v.Turns())
	assert.Contains(t, v.View(), "Ask about products")
}

func TestView_NotReady(t *testing.T) {
	assert.Equal(t, "Initialising...", NewView(nil, nil).View())
}
