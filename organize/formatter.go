package organize

import (
	"fmt"
	"strings"
)

// PlanFormatter defines the interface for formatting plan output.
type PlanFormatter interface {
	FormatPlan(items []Item) string
	FormatResult(result *ApplyResult) string
}

// ConsoleFormatter provides console output formatting for rename plans.
type ConsoleFormatter struct{}

// NewConsoleFormatter creates a new console formatter.
func NewConsoleFormatter() *ConsoleFormatter {
	return &ConsoleFormatter{}
}

// FormatPlan formats the renames a plan would perform.
func (f *ConsoleFormatter) FormatPlan(items []Item) string {
	if len(items) == 0 {
		return "Nothing to rename\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString("\nRename")
	if len(items) != 1 {
		sb.WriteString("s")
	}
	fmt.Fprintf(&sb, " (%d):\n\n", len(items))

	for i, item := range items {
		isLast := i == len(items)-1
		prefix := "├"
		if isLast {
			prefix = "╰"
		}

		fmt.Fprintf(&sb, "%s── %s\n", prefix, item.File.Name)

		indent := "│   "
		if isLast {
			indent = "    "
		}

		fmt.Fprintf(&sb, "%s→ %s\n", indent, item.ProposedName)

		var notes []string
		if item.MatchRef != "" {
			notes = append(notes, fmt.Sprintf("Match: %s (%.0f%%)", item.MatchRef, item.MatchConfidence*100))
		}
		if item.Traits.IsAnthology {
			notes = append(notes, fmt.Sprintf("Anthology: %d segments", item.Traits.SegmentCount))
		}
		if item.Traits.IsPremiere {
			notes = append(notes, "Premiere")
		}
		if item.Traits.IsFinale {
			notes = append(notes, "Finale")
		}
		if len(notes) > 0 {
			fmt.Fprintf(&sb, "%s%s\n", indent, strings.Join(notes, " | "))
		}

		if !isLast {
			sb.WriteString("│\n")
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatResult formats the outcome of an Apply run.
func (f *ConsoleFormatter) FormatResult(result *ApplyResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\nRenamed: %d  Skipped: %d  Failed: %d\n",
		len(result.Renamed), len(result.Skipped), len(result.Failed))

	for _, failure := range result.Failed {
		fmt.Fprintf(&sb, "  %s: %v\n", failure.Item.File.Name, failure.Err)
	}

	return sb.String()
}
