package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"katutubo-llm/pkg/llm"
)

type fakeAsker struct {
	resp    llm.InferResponse
	err     error
	history []llm.History
}

func (f *fakeAsker) Infer(_ context.Context, _ string, h llm.History) (llm.InferResponse, error) {
	f.history = append(f.history, h)
	return f.resp, f.err
}

func send(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func runCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(Model)
}

func TestModel_AppendsTurnOnSuccess(t *testing.T) {
	asker := &fakeAsker{resp: llm.InferResponse{Response: "Lagnat at rashes."}}
	m := New(asker, 0, "notty")

	m, cmd := send(t, m, "Anong symptoms ng dengue?")
	assert.True(t, m.busy)
	assert.Empty(t, m.input.Value())
	m = runCmd(t, m, cmd)

	assert.False(t, m.busy)
	assert.Equal(t, llm.History{{User: "Anong symptoms ng dengue?", Assistant: "Lagnat at rashes."}}, m.History())

	asker.resp = llm.InferResponse{Response: "Oo."}
	m, cmd = send(t, m, "Delikado ba ito?")
	m = runCmd(t, m, cmd)
	require.Len(t, asker.history, 2)
	assert.Empty(t, asker.history[0])
	assert.Len(t, asker.history[1], 1, "the first turn is sent with the second prompt")
	assert.Len(t, m.History(), 2)
}

func TestModel_EmptyResponseUsesFallback(t *testing.T) {
	m := New(&fakeAsker{}, 0, "notty")
	m, cmd := send(t, m, "hello")
	m = runCmd(t, m, cmd)
	assert.Equal(t, FallbackAnswer, m.History()[0].Assistant)
}

func TestModel_ErrorKeepsHistory(t *testing.T) {
	m := New(&fakeAsker{err: errors.New("API service is not available")}, 0, "notty")
	m, cmd := send(t, m, "hello")
	m = runCmd(t, m, cmd)
	assert.Empty(t, m.History())
	assert.Contains(t, m.status, "API service is not available")
}

func TestModel_IgnoresBlankAndBusy(t *testing.T) {
	m := New(&fakeAsker{}, 0, "notty")
	m, cmd := send(t, m, "   ")
	assert.Nil(t, cmd)

	m, cmd = send(t, m, "first")
	require.NotNil(t, cmd)
	_, cmd = send(t, m, "second")
	assert.Nil(t, cmd, "no new request while one is in flight")
}

func TestModel_ViewShowsGreeting(t *testing.T) {
	m := New(&fakeAsker{}, 0, "notty")
	assert.Equal(t, "Loading...", m.View())

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(Model)
	assert.Contains(t, m.transcript(), "Anong maitutulong ko")
	assert.Contains(t, m.View(), "Katutubo Bot")
}
