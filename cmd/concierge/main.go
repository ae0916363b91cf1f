package main

import (
	"context"
	"log/slog"
	"os"

	"concierge-backend/cmd/concierge/commands"
)

func main() {
	level := slog.LevelInfo
	if os.Getenv("CONCIERGE_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	commands.ExecuteContext(context.Background())
}
