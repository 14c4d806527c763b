package bootstrap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-blog"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/publish"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Options captures the global CLI flags.
type Options struct {
	ConfigPath     string
	Root           string
	LogLevel       string
	BaseURL        string
	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the blog module and the CLI logger.
type Module struct {
	Module *blog.Module
	Logger interfaces.Logger
}

// BuildModule loads the configuration, applies flag overrides and builds the
// blog module.
func BuildModule(opts Options) (*Module, error) {
	cfg, err := blog.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if root := strings.TrimSpace(opts.Root); root != "" {
		cfg.Paths.Root = root
	}
	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Logging.Level = level
	}

	moduleOpts := []blog.Option{}
	if opts.LoggerProvider != nil {
		moduleOpts = append(moduleOpts, blog.WithLoggerProvider(opts.LoggerProvider))
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		moduleOpts = append(moduleOpts, blog.WithBaseURL(base))
	}

	module, err := blog.New(cfg, moduleOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise blog module: %w", err)
	}
	return &Module{
		Module: module,
		Logger: logging.ModuleLogger(module.Container().LoggerProvider(), "blog.cli"),
	}, nil
}

// Message returns the single line printed for a failed command. Publishing
// failures print their own message without the wrapping added by the
// command layer.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var perr *publish.Error
	if errors.As(err, &perr) {
		return perr.Message
	}
	return strings.ReplaceAll(err.Error(), "\n", " ")
}
