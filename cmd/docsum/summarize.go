package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/a-h/docsum/client"
)

type SummarizeCommand struct {
	ServerURL string `help:"The URL of the docsum server." env:"DOCSUM_SERVER_URL" default:"http://localhost:9020"`
	Token     string `help:"An API key or session token." env:"DOCSUM_TOKEN" default:""`
	File      string `help:"The DOCX or TXT file to summarize." type:"existingfile" required:""`
	Pretty    bool   `help:"Pretty print the JSON output." default:"true" negatable:""`
}

func (c SummarizeCommand) Run(ctx context.Context) (err error) {
	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	dsc := client.New(c.ServerURL, c.Token)
	resp, err := dsc.SummarizePost(ctx, c.File, f)
	if err != nil {
		return fmt.Errorf("failed to summarize document: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	if c.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(resp)
}
