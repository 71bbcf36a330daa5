package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/a-h/docsum/models"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestWriteHistory(t *testing.T) {
	items := []models.HistoryItem{
		{
			ID:        "doc-2",
			FileName:  "minutes.docx",
			Summary:   "The committee agreed the budget for the new library and asked the architect for revised plans.",
			CreatedAt: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		},
		{
			ID:        "doc-1",
			FileName:  "notes.txt",
			Summary:   "Notes.",
			CreatedAt: time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC),
		},
	}

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeHistory(&buf, "json", 80, items); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var actual []models.HistoryItem
		if err := json.Unmarshal(buf.Bytes(), &actual); err != nil {
			t.Fatalf("failed to decode output: %v", err)
		}
		if diff := cmp.Diff(items, actual); diff != "" {
			t.Error(diff)
		}
	})
	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeHistory(&buf, "yaml", 80, items); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "fileName: minutes.docx") {
			t.Errorf("expected camel case keys, got:\n%s", buf.String())
		}
		var actual []models.HistoryItem
		if err := yaml.Unmarshal(buf.Bytes(), &actual); err != nil {
			t.Fatalf("failed to decode output: %v", err)
		}
		if diff := cmp.Diff(items, actual); diff != "" {
			t.Error(diff)
		}
	})
	t.Run("text is wrapped", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeHistory(&buf, "text", 40, items); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		for _, s := range []string{"minutes.docx", "doc-2", "notes.txt", "doc-1", "Notes."} {
			if !strings.Contains(out, s) {
				t.Errorf("expected output to contain %q, got:\n%s", s, out)
			}
		}
		if strings.Index(out, "minutes.docx") > strings.Index(out, "notes.txt") {
			t.Errorf("expected the order of items to be kept, got:\n%s", out)
		}
		for _, line := range strings.Split(out, "\n") {
			if strings.HasPrefix(line, "The committee") && len(line) > 40 {
				t.Errorf("expected summary lines to be wrapped at 40, got %q", line)
			}
		}
	})
	t.Run("empty text history", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeHistory(&buf, "text", 80, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "No documents have been summarized yet.\n" {
			t.Errorf("unexpected output: %q", buf.String())
		}
	})
	t.Run("unknown formats are rejected", func(t *testing.T) {
		if err := writeHistory(&bytes.Buffer{}, "csv", 80, items); err == nil {
			t.Error("expected an error, got nil")
		}
	})
}
