package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

type CLI struct {
	Serve     ServeCommand     `cmd:"serve" help:"Start the document summarization server."`
	Summarize SummarizeCommand `cmd:"summarize" help:"Upload a document and print its summary."`
	History   HistoryCommand   `cmd:"history" help:"Print previously summarized documents."`
	Browse    BrowseCommand    `cmd:"browse" help:"Browse previously summarized documents."`
	Token     TokenCommand     `cmd:"token" help:"Create a session token for a user."`
	Version   VersionCommand   `cmd:"version" help:"Print the version of docsum."`
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		getLogger("error", "").Error("failed to load .env file", slog.Any("error", err))
		os.Exit(1)
	}
	var cli CLI
	ctx := context.Background()
	kctx := kong.Parse(&cli, kong.UsageOnError(), kong.BindTo(ctx, (*context.Context)(nil)))
	if err := kctx.Run(); err != nil {
		log := getLogger("error", "")
		log.Error("error", slog.Any("error", err))
		os.Exit(1)
	}
}

// getLogger returns a JSON logger. An empty level is debug in development and info otherwise.
func getLogger(level, appEnv string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(level, appEnv),
	}))
}

func logLevel(level, appEnv string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	if appEnv == "development" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
