package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-blog/cmd/blog/internal/bootstrap"
)

type globalFlags struct {
	configPath string
	root       string
	logLevel   string
}

func (g *globalFlags) build(baseURL string) (*bootstrap.Module, error) {
	return moduleBuilder(bootstrap.Options{
		ConfigPath: g.configPath,
		Root:       g.root,
		LogLevel:   g.logLevel,
		BaseURL:    baseURL,
	})
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "blog",
		Short: "Publish and preview a static Markdown blog",
		Long: `blog publishes Markdown posts into static HTML pages, keeps the post
manifest in sync, renders pages the way the browser runtime would and exports
published posts back to Markdown.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&flags.root, "root", "", "Site root directory (overrides paths.root)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")

	root.AddCommand(
		newPublishCommand(flags),
		newManifestCommand(flags),
		newRenderCommand(flags),
		newExportCommand(flags),
	)
	return root
}
