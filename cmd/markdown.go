package cmd

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// printMarkdown renders markdown for the terminal, falling back to the raw
// text when rendering fails.
func printMarkdown(doc string) {
	out, err := glamour.Render(doc, "auto")
	if err != nil {
		fmt.Println(doc)
		return
	}
	fmt.Print(out)
}
