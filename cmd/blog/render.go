package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-blog/internal/site"
)

func newRenderCommand(global *globalFlags) *cobra.Command {
	var pageURL, out, baseURL string
	cmd := &cobra.Command{
		Use:   "render <page.html>",
		Short: "Render a page through the page runtime",
		Long: `render injects partials, expands components and fills the listing,
taxonomy and sidebar widgets of a page from the manifest, then prints the
resulting HTML. --url supplies the page path and query (for example
"/index.html?category=数学研究"); it defaults to the file path under the root.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read page: %w", err)
			}
			module, err := global.build(baseURL)
			if err != nil {
				return err
			}
			if strings.TrimSpace(pageURL) == "" {
				pageURL = pagePath(module.Module.Config().Paths.Root, args[0])
			}

			html, err := module.Module.Runtime().Render(cmd.Context(), site.Page{HTML: string(page), URL: pageURL})
			if err != nil {
				return err
			}
			if out == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), html)
				return err
			}
			return os.WriteFile(out, []byte(html), 0o644)
		},
	}
	cmd.Flags().StringVar(&pageURL, "url", "", "Page URL path and query")
	cmd.Flags().StringVar(&out, "out", "", "Write the rendered page to a file instead of stdout")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Fetch partials, components and the manifest from a deployed site")
	return cmd
}

// pagePath returns "/<file relative to root>", or "/<base name>" when file
// lies outside root.
func pagePath(root, file string) string {
	absRoot, errRoot := filepath.Abs(root)
	absFile, errFile := filepath.Abs(file)
	if errRoot == nil && errFile == nil {
		if rel, err := filepath.Rel(absRoot, absFile); err == nil && !strings.HasPrefix(rel, "..") {
			return "/" + filepath.ToSlash(rel)
		}
	}
	return "/" + filepath.Base(file)
}
