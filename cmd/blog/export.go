package main

import (
	"fmt"

	"github.com/spf13/cobra"

	publishcmd "github.com/goliatone/go-blog/internal/commands/publish"
	"github.com/goliatone/go-blog/internal/export"
)

func newExportCommand(global *globalFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <slug>",
		Short: "Convert a published post back to Markdown",
		Long: `export reads posts/<slug>.html, recovers its front matter from the
metadata block, converts the content to Markdown and writes drafts/<slug>.md
with its images copied alongside, ready for "blog publish --mode update".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := global.build("")
			if err != nil {
				return err
			}
			var result *export.Result
			err = module.Module.Commands().Export.Execute(cmd.Context(), publishcmd.ExportPostCommand{
				Slug:           args[0],
				Output:         out,
				ResultCallback: func(envelope publishcmd.ResultEnvelope) { result = envelope.Export },
			})
			if err != nil {
				return err
			}
			if result != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", result.Post.Slug, result.Output)
				for _, asset := range result.Assets {
					fmt.Fprintf(cmd.OutOrStdout(), "  asset %s\n", asset)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output path relative to the site root (default drafts/<slug>.md)")
	return cmd
}
