// Command blog publishes Markdown posts, maintains the post manifest, renders
// pages through the page runtime and exports published posts to Markdown.
package main

import (
	"fmt"
	"os"

	"github.com/goliatone/go-blog/cmd/blog/internal/bootstrap"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, bootstrap.Message(err))
		os.Exit(1)
	}
}
