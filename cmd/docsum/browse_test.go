package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/a-h/docsum/models"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
)

var browseItems = []models.HistoryItem{
	{ID: "doc-2", FileName: "minutes.docx", Summary: "The committee agreed the budget.", CreatedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)},
	{ID: "doc-1", FileName: "notes.txt", Summary: "Shopping list for the weekend.", CreatedAt: time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)},
}

func TestFilterHistory(t *testing.T) {
	tests := []struct {
		name     string
		filter   string
		expected []string
	}{
		{
			name:     "an empty filter matches everything",
			filter:   "  ",
			expected: []string{"doc-2", "doc-1"},
		},
		{
			name:     "file names are matched",
			filter:   "NOTES",
			expected: []string{"doc-1"},
		},
		{
			name:     "summaries are matched",
			filter:   "budget",
			expected: []string{"doc-2"},
		},
		{
			name:   "no matches",
			filter: "invoice",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var actual []string
			for _, item := range filterHistory(browseItems, tt.filter) {
				actual = append(actual, item.ID)
			}
			if diff := cmp.Diff(tt.expected, actual); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func TestModel(t *testing.T) {
	load := func(ctx context.Context) ([]models.HistoryItem, error) {
		return browseItems, nil
	}

	t.Run("history is shown once loaded", func(t *testing.T) {
		var m tea.Model = newModel(context.Background(), load)
		if !strings.Contains(m.View(), "Loading...") {
			t.Errorf("expected a loading message, got:\n%s", m.View())
		}
		m, _ = m.Update(historyLoadedMsg(browseItems))
		view := m.View()
		for _, s := range []string{"2 of 2 documents", "minutes.docx", "notes.txt"} {
			if !strings.Contains(view, s) {
				t.Errorf("expected view to contain %q, got:\n%s", s, view)
			}
		}
	})
	t.Run("typing filters the history", func(t *testing.T) {
		var m tea.Model = newModel(context.Background(), load)
		m, _ = m.Update(historyLoadedMsg(browseItems))
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("budget")})
		view := m.View()
		if !strings.Contains(view, "1 of 2 documents") {
			t.Errorf("expected the history to be filtered, got:\n%s", view)
		}
		if strings.Contains(view, "notes.txt") {
			t.Errorf("expected notes.txt to be filtered out, got:\n%s", view)
		}
	})
	t.Run("load errors are shown", func(t *testing.T) {
		var m tea.Model = newModel(context.Background(), load)
		m, _ = m.Update(historyErrorMsg{err: errors.New("connection refused")})
		if !strings.Contains(m.View(), "connection refused") {
			t.Errorf("expected the error to be shown, got:\n%s", m.View())
		}
	})
	t.Run("fetch loads the history", func(t *testing.T) {
		m := newModel(context.Background(), load)
		msg := m.fetch()()
		items, ok := msg.(historyLoadedMsg)
		if !ok {
			t.Fatalf("expected historyLoadedMsg, got %T", msg)
		}
		if len(items) != 2 {
			t.Errorf("expected 2 items, got %d", len(items))
		}
	})
}
