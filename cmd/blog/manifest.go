package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	publishcmd "github.com/goliatone/go-blog/internal/commands/publish"
	"github.com/goliatone/go-blog/internal/posts"
)

func newManifestCommand(global *globalFlags) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Regenerate posts/manifest.json from the published pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := global.build("")
			if err != nil {
				return err
			}
			var manifest *posts.Manifest
			err = module.Module.Commands().Manifest.Execute(cmd.Context(), publishcmd.GenerateManifestCommand{
				ResultCallback: func(envelope publishcmd.ResultEnvelope) { manifest = envelope.Manifest },
			})
			if err != nil {
				return err
			}
			if manifest != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Manifest written with %d posts\n", manifest.PostCount)
			}
			if !watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			fmt.Fprintln(cmd.OutOrStdout(), "Watching for changes (Ctrl+C to stop)")
			err = module.Module.Manifests().Watch(ctx, func(m posts.Manifest, err error) {
				if err != nil {
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Manifest written with %d posts\n", m.PostCount)
			})
			if err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep running and regenerate when a post changes")
	return cmd
}

