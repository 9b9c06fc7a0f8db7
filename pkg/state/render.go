package state

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/r3labs/diff"
)

var kindStyles = map[ChangeKind]struct {
	symbol string
	colour *color.Color
}{
	ChangeCreate:  {"+", color.New(color.FgGreen)},
	ChangeUpdate:  {"~", color.New(color.FgYellow)},
	ChangeReplace: {"-/+", color.New(color.FgMagenta, color.Bold)},
	ChangeDelete:  {"-", color.New(color.FgRed)},
}

// Render writes the changes of the plan to `w`, one line per changed resource or output followed by a
// summary. No-op entries are omitted.
func (p *StackPlan) Render(w io.Writer) error {
	var sb strings.Builder
	for _, c := range p.Resources {
		style, ok := kindStyles[c.Kind]
		if !ok {
			continue
		}
		sb.WriteString(style.colour.Sprintf("%s %s", style.symbol, c.LogicalId))
		fmt.Fprintf(&sb, " (%s)\n", c.Type)
		for _, change := range c.Changes {
			sb.WriteString("    ")
			sb.WriteString(renderChange(change))
			sb.WriteByte('\n')
		}
	}
	for _, c := range p.Outputs {
		style, ok := kindStyles[c.Kind]
		if !ok {
			continue
		}
		sb.WriteString(style.colour.Sprintf("%s output %s", style.symbol, c.Name))
		sb.WriteByte('\n')
	}

	if !p.HasChanges() {
		sb.WriteString("No changes.\n")
	} else {
		counts := p.Counts()
		fmt.Fprintf(&sb, "Plan: %d to create, %d to update, %d to replace, %d to delete.\n",
			counts[ChangeCreate], counts[ChangeUpdate], counts[ChangeReplace], counts[ChangeDelete])
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func renderChange(c diff.Change) string {
	path := strings.Join(c.Path, ".")
	switch c.Type {
	case diff.CREATE:
		return fmt.Sprintf("+ %s: %v", path, c.To)
	case diff.DELETE:
		return fmt.Sprintf("- %s: %v", path, c.From)
	default:
		return fmt.Sprintf("~ %s: %v -> %v", path, c.From, c.To)
	}
}
