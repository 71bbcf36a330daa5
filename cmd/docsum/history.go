package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/a-h/docsum/client"
	"github.com/a-h/docsum/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"gopkg.in/yaml.v3"
)

type HistoryCommand struct {
	ServerURL string `help:"The URL of the docsum server." env:"DOCSUM_SERVER_URL" default:"http://localhost:9020"`
	Token     string `help:"An API key or session token." env:"DOCSUM_TOKEN" default:""`
	Format    string `help:"The output format." enum:"json,yaml,text" default:"text"`
	Width     int    `help:"The width to wrap text output at." default:"80"`
}

func (c HistoryCommand) Run(ctx context.Context) (err error) {
	dsc := client.New(c.ServerURL, c.Token)
	items, err := dsc.HistoryGet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}
	return writeHistory(os.Stdout, c.Format, c.Width, items)
}

var (
	historyTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	historyMetaStyle  = lipgloss.NewStyle().Foreground(Comment)
)

const historyTimeFormat = "2006-01-02 15:04"

func writeHistory(w io.Writer, format string, width int, items []models.HistoryItem) (err error) {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(items); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		if len(items) == 0 {
			_, err = fmt.Fprintln(w, "No documents have been summarized yet.")
			return err
		}
		for i, item := range items {
			if i > 0 {
				if _, err = fmt.Fprintln(w); err != nil {
					return err
				}
			}
			if _, err = fmt.Fprintln(w, formatHistoryItem(item, width)); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

func formatHistoryItem(item models.HistoryItem, width int) string {
	var sb strings.Builder
	sb.WriteString(historyTitleStyle.Render(item.FileName))
	sb.WriteString(" ")
	sb.WriteString(historyMetaStyle.Render(item.CreatedAt.Local().Format(historyTimeFormat) + " " + item.ID))
	sb.WriteString("\n")
	sb.WriteString(wordwrap.String(strings.TrimSpace(item.Summary), width))
	return sb.String()
}
