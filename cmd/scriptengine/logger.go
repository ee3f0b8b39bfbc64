package main

import (
	"log/slog"

	"github.com/relaygrid/scriptengine/internal/obslog"
)

// SetupLogger configures the default logger based on the provided log
// level and format ("text" or "json").
func SetupLogger(logLevel, format string) {
	var handler slog.Handler
	if format == "json" {
		handler = obslog.SetupHandlerJSON(logLevel, nil)
	} else {
		handler = obslog.SetupHandlerText(logLevel, nil)
	}
	slog.SetDefault(slog.New(handler))
}
