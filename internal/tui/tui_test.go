package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/handiism/ydl-music/internal/config"
	"github.com/handiism/ydl-music/internal/model"
	"github.com/handiism/ydl-music/internal/pipeline"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel() Model {
	settings := config.DefaultSettings()
	settings.MusicRoot = "/music"
	return NewModel(settings, zerolog.Nop())
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"abc", "def", "ghi"}, splitIDs(" abc, def\tghi\n"))
	assert.Empty(t, splitIDs("  ,, "))
}

func TestModel_OptionToggles(t *testing.T) {
	m := newTestModel()
	playlist := m.playlist

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlE})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})

	assert.Equal(t, !playlist, m.playlist)
	assert.True(t, m.editTimes)
	assert.True(t, m.verbose)
	assert.Contains(t, m.View(), "[x] Edit chapter times")
}

func TestModel_EnterWithoutInputStaysPut(t *testing.T) {
	m := update(t, newTestModel(), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, StateInput, m.state)
}

func TestModel_ProgressFiltersVerbose(t *testing.T) {
	m := newTestModel()
	m = update(t, m, ProgressMsg{Event: pipeline.ProgressEvent{Message: "noise", Level: pipeline.LevelVerbose}})
	m = update(t, m, ProgressMsg{Event: pipeline.ProgressEvent{Message: "wrote track", Level: pipeline.LevelSuccess}})

	require.Len(t, m.logs, 1)
	assert.Equal(t, "wrote track", m.logs[0].Message)
}

func TestModel_KeepsLastTenLogs(t *testing.T) {
	m := newTestModel()
	for i := 0; i < 15; i++ {
		m = update(t, m, ProgressMsg{Event: pipeline.ProgressEvent{Message: "x"}})
	}
	assert.Len(t, m.logs, 10)
}

func TestModel_PromptAnswer(t *testing.T) {
	m := newTestModel()
	m.state = StateProcessing

	reply := make(chan promptReply, 1)
	m = update(t, m, PromptMsg{Question: "Corrected title:", reply: reply})
	assert.Equal(t, StatePrompt, m.state)
	assert.Contains(t, m.View(), "Corrected title:")

	m.answerInput.SetValue("Metallica - Black Album (1991)")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, StateProcessing, m.state)
	got := <-reply
	assert.NoError(t, got.err)
	assert.Equal(t, "Metallica - Black Album (1991)", got.answer)
}

func TestModel_PromptDismissed(t *testing.T) {
	m := newTestModel()
	reply := make(chan promptReply, 1)
	m = update(t, m, PromptMsg{Question: "q", reply: reply})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, StateProcessing, m.state)
	assert.ErrorIs(t, (<-reply).err, ErrPromptCancelled)
}

func TestModel_Done(t *testing.T) {
	album := model.NewAlbum(model.Identity{Band: "Metallica", Album: "Black Album", Year: "1991"}, "/music/Metallica/Black Album", &model.PathConfig{})
	album.Tracks = []*model.Track{model.NewTrack(album, 1, "Enter Sandman", nil, ".mp3")}

	m := newTestModel()
	m.state = StateProcessing
	m = update(t, m, DoneMsg{Albums: []*model.Album{album}})

	assert.Equal(t, StateComplete, m.state)
	assert.Contains(t, m.View(), "Black Album")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.Equal(t, StateInput, m.state)
	assert.Nil(t, m.albums)
}

func TestModel_DoneWithError(t *testing.T) {
	m := newTestModel()
	m.state = StateProcessing
	m = update(t, m, DoneMsg{Err: errors.New("yt-dlp exploded")})

	assert.Equal(t, StateError, m.state)
	assert.Contains(t, m.View(), "yt-dlp exploded")
}

func TestModel_DoneAfterCancel(t *testing.T) {
	m := newTestModel()
	m.state = StateProcessing
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = update(t, m, DoneMsg{Err: context.Canceled})

	assert.Equal(t, StateError, m.state)
	assert.EqualError(t, m.err, "cancelled by user")
}

func TestOperator_Ask(t *testing.T) {
	op := NewOperator(func(msg tea.Msg) {
		p, ok := msg.(PromptMsg)
		require.True(t, ok)
		assert.Equal(t, "Band name:", p.Question)
		p.reply <- promptReply{answer: "  Metallica \n"}
	})

	got, err := op.Ask(context.Background(), "Band name:")
	require.NoError(t, err)
	assert.Equal(t, "Metallica", got)
}

func TestOperator_AskCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	op := NewOperator(func(tea.Msg) { cancel() })

	_, err := op.Ask(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
}
