package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/organarr/organarr/namer"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the library and show what every file was parsed as",
	Long: `Scan the library root for media files and show how each one parses:
media type, title, season and episode numbering, quality and the
confidence of the parse. Use --filter or --preset to narrow the list.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	scanCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := applyFilter(); err != nil {
		return err
	}

	items, err := planner.Plan(context.Background())
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Println("No media files found.")
		return nil
	}

	fmt.Printf("\nFound %d media files:\n", len(items))
	fmt.Println(strings.Repeat("-", 80))

	var renames int
	for _, item := range items {
		fmt.Printf("• %s\n", item.File.Name)

		p := item.Parsed
		line := fmt.Sprintf("  %s: %s", p.MediaType, p.Title)
		if p.Year > 0 {
			line += fmt.Sprintf(" (%d)", p.Year)
		}
		if ref := episodeRef(p); ref != "" {
			line += " " + ref
		}
		if p.Quality != "" {
			line += " [" + p.Quality + "]"
		}
		fmt.Println(line)

		notes := []string{fmt.Sprintf("confidence %.0f%%", p.Confidence*100)}
		if item.MatchRef != "" {
			notes = append(notes, fmt.Sprintf("matched %s (%.0f%%)", item.MatchRef, item.MatchConfidence*100))
		}
		if item.Traits.IsAnthology {
			notes = append(notes, fmt.Sprintf("anthology of %d", item.Traits.SegmentCount))
		}
		if item.NeedsRename() {
			notes = append(notes, "needs rename")
			renames++
		}
		fmt.Printf("  %s\n", strings.Join(notes, ", "))
	}

	fmt.Println(strings.Repeat("-", 80))
	if renames > 0 {
		fmt.Printf("%d of %d would be renamed. Run 'organarr preview' to see the plan.\n", renames, len(items))
	} else {
		fmt.Println("Everything is already organized.")
	}

	return nil
}

// episodeRef renders the season/episode marker for the listing:
// sequential runs collapse to a range, gaps stay spelled out.
func episodeRef(p namer.ParsedName) string {
	if p.Season == 0 || len(p.Episodes) == 0 {
		return ""
	}

	ref := fmt.Sprintf("S%02dE%02d", p.Season, p.Episodes[0])
	if n := len(p.Episodes); n > 1 {
		if p.Episodes[n-1] == p.Episodes[0]+n-1 {
			ref += fmt.Sprintf("-E%02d", p.Episodes[n-1])
		} else {
			for _, e := range p.Episodes[1:] {
				ref += fmt.Sprintf("E%02d", e)
			}
		}
	}
	return ref
}
