package logger

import (
	"io"
	"log/slog"
)

// Init initializes the global slog logger. The writer should be stderr when
// the process serves MCP over stdio, since stdout carries the protocol.
func Init(writer io.Writer, level slog.Level) {
	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
