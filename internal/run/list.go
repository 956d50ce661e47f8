package run

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/recast-io/recast/internal/config"
	"github.com/recast-io/recast/internal/transform"
)

const descriptionWidth = 72

// useColor resolves the color mode: always and never are explicit,
// auto enables color only for a terminal without NO_COLOR set.
func (r *Runner) useColor() bool {
	switch r.cfg.Color {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// printDefinitions writes the transformation reference, sorted by name.
func printDefinitions(w io.Writer, defs *transform.Definitions, colored bool) {
	color.NoColor = !colored

	heading := color.New(color.FgYellow).SprintFunc()
	name := color.New(color.FgGreen).SprintFunc()

	all := append([]*transform.Definition(nil), defs.All()...)
	sort.Slice(all, func(i, j int) bool {
		return all[i].Name() < all[j].Name()
	})

	fmt.Fprintf(w, "%s\n", heading("TRANSFORMATIONS:"))

	for _, def := range all {
		fmt.Fprintf(w, "%s\n", name(def.String()))

		if aliases := def.Aliases(); len(aliases) > 0 {
			fmt.Fprintf(w, "    [aliases: %s]\n", strings.Join(aliases, ", "))
		}

		for _, line := range wrap(def.Description(), descriptionWidth) {
			fmt.Fprintf(w, "    %s\n", line)
		}

		fmt.Fprintln(w)
	}
}

// wrap splits text into lines of at most width characters on word boundaries.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	return append(lines, line)
}
