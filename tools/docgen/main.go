// Package main generates CLI reference documentation for the rental-gateway
// server binary and the rgw client.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	server "github.com/donaldgifford/rental-gateway/cmd/rental-gateway/cmd"
	rgw "github.com/donaldgifford/rental-gateway/cmd/rgw/cmd"
)

func main() {
	output := flag.String("output", "docs/cli", "output directory for generated docs")
	format := flag.String("format", "markdown", "output format (markdown, man)")
	flag.Parse()

	roots := []*cobra.Command{server.Root(), rgw.Root()}
	if err := generate(*output, *format, roots); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("CLI docs generated in %s/\n", *output)
}

// generate writes one directory per binary under dir.
func generate(dir, format string, roots []*cobra.Command) error {
	for _, root := range roots {
		root.DisableAutoGenTag = true

		out := filepath.Join(dir, root.Name())
		if err := os.MkdirAll(out, 0o750); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		var err error
		switch format {
		case "markdown":
			err = doc.GenMarkdownTree(root, out)
		case "man":
			err = doc.GenManTree(root, &doc.GenManHeader{
				Title:   root.Name(),
				Section: "1",
				Source:  "rental-gateway",
			}, out)
		default:
			return fmt.Errorf("unknown format %q (want markdown or man)", format)
		}
		if err != nil {
			return fmt.Errorf("generating %s docs: %w", root.Name(), err)
		}
	}
	return nil
}
