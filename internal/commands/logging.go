package commands

import (
	"strings"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// CommandLogger returns the logger for one command area ("publish",
// "manifest", "export"), named blog.commands.<area>.
func CommandLogger(provider interfaces.LoggerProvider, area string) interfaces.Logger {
	area = strings.TrimSpace(area)
	if area == "" {
		area = "core"
	}
	return logging.WithFields(logging.ModuleLogger(provider, "blog.commands."+area), map[string]any{
		"component":    "command",
		"command_area": area,
	})
}

// EnsureLogger falls back to a no-op logger.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	return logging.Ensure(logger)
}
