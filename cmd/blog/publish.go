package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	publishcmd "github.com/goliatone/go-blog/internal/commands/publish"
	"github.com/goliatone/go-blog/internal/publish"
)

type publishFlags struct {
	mode       string
	slug       string
	id         string
	title      string
	manifest   bool
	noManifest bool
}

func newPublishCommand(global *globalFlags) *cobra.Command {
	flags := &publishFlags{}
	cmd := &cobra.Command{
		Use:   "publish [file.md]",
		Short: "Create, update or delete a published post",
		Long: `publish renders a Markdown file with front matter into posts/<slug>.html,
copies its local images to assets/<id>/ and regenerates the manifest.
Delete mode takes --slug or --id instead of a file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) == 1 {
				source = args[0]
			}
			return runPublish(cmd, global, flags, source)
		},
	}
	cmd.Flags().StringVar(&flags.mode, "mode", string(publish.ModeCreate), `Publishing mode: "create", "update" or "delete"`)
	cmd.Flags().StringVar(&flags.slug, "slug", "", "Post slug (overrides front matter)")
	cmd.Flags().StringVar(&flags.id, "id", "", "Numeric post id (overrides front matter)")
	cmd.Flags().StringVar(&flags.title, "title", "", "Post title (overrides front matter)")
	cmd.Flags().BoolVar(&flags.manifest, "manifest", true, "Regenerate the manifest after publishing")
	cmd.Flags().BoolVar(&flags.noManifest, "no-manifest", false, "Skip manifest regeneration")
	return cmd
}

func runPublish(cmd *cobra.Command, global *globalFlags, flags *publishFlags, source string) error {
	mode, err := publish.ParseMode(flags.mode)
	if err != nil {
		return err
	}
	if mode != publish.ModeDelete && strings.TrimSpace(source) == "" {
		return fmt.Errorf("Usage: blog publish <file.md> [--mode create|update|delete] [--slug slug] [--id id] [--title title]")
	}

	module, err := global.build("")
	if err != nil {
		return err
	}
	handlers := module.Module.Commands()
	skipManifest := flags.noManifest || !flags.manifest
	ctx := cmd.Context()

	var result *publish.Result
	capture := func(envelope publishcmd.ResultEnvelope) { result = envelope.Publish }

	switch mode {
	case publish.ModeCreate:
		err = handlers.Create.Execute(ctx, publishcmd.CreatePostCommand{
			Source: source, Slug: flags.slug, ID: flags.id, Title: flags.title,
			SkipManifest: skipManifest, ResultCallback: capture,
		})
	case publish.ModeUpdate:
		err = handlers.Update.Execute(ctx, publishcmd.UpdatePostCommand{
			Source: source, Slug: flags.slug, ID: flags.id, Title: flags.title,
			SkipManifest: skipManifest, ResultCallback: capture,
		})
	case publish.ModeDelete:
		err = handlers.Delete.Execute(ctx, publishcmd.DeletePostCommand{
			Slug: flags.slug, ID: flags.id,
			SkipManifest: skipManifest, ResultCallback: capture,
		})
	}
	if err != nil {
		return err
	}
	if result != nil {
		printPublishResult(cmd, *result)
	}
	return nil
}

func printPublishResult(cmd *cobra.Command, result publish.Result) {
	out := cmd.OutOrStdout()
	switch result.Mode {
	case publish.ModeDelete:
		fmt.Fprintf(out, "Deleted post %s (slug: %s)\n", result.Post.ID, result.Post.Slug)
		for _, removed := range result.Removed {
			fmt.Fprintf(out, "  removed %s\n", removed)
		}
	default:
		verb := "Created"
		if result.Mode == publish.ModeUpdate {
			verb = "Updated"
		}
		fmt.Fprintf(out, "%s %s (id: %s, slug: %s)\n", verb, result.Output, result.Post.ID, result.Post.Slug)
		for _, asset := range result.Assets {
			fmt.Fprintf(out, "  asset %s\n", asset)
		}
		for _, removed := range result.Removed {
			fmt.Fprintf(out, "  removed %s\n", removed)
		}
	}
	if result.ManifestWritten {
		fmt.Fprintln(out, "Manifest regenerated")
	}
}
