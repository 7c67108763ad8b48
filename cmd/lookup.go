package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/organarr/organarr/namer"
)

var (
	lookupSource string
	lookupType   string
	lookupID     string
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup [query]",
	Short: "Search the metadata catalogs",
	Long: `Search every enabled metadata source for a title and list the results
with their source-qualified IDs. Those IDs are what scan and apply
report as matches; pass one to --id to fetch its full record.`,
	Args: cobra.ArbitraryArgs,
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().StringVar(&lookupSource, "source", "", "only show results from this source")
	lookupCmd.Flags().StringVar(&lookupType, "type", "", "media type to search for (tv, movie, anime, music)")
	lookupCmd.Flags().StringVar(&lookupID, "id", "", "fetch one record by source-qualified id (e.g. tvdb-121361)")
}

func runLookup(cmd *cobra.Command, args []string) error {
	if len(meta.Sources()) == 0 {
		return fmt.Errorf("no metadata sources enabled; enable at least one in the config")
	}

	if lookupID != "" {
		return lookupByID(lookupID)
	}
	if len(args) == 0 {
		return fmt.Errorf("provide a search query or --id")
	}

	mediaType, err := mediaTypeFromFlag(lookupType)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	results, err := meta.Search(context.Background(), query, mediaType)
	if err != nil {
		return err
	}

	if lookupSource != "" {
		filtered := results[:0]
		for _, r := range results {
			if r.Source == lookupSource {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	resultText := "result"
	if len(results) != 1 {
		resultText = "results"
	}
	fmt.Printf("\nFound %d %s:\n", len(results), resultText)
	fmt.Println(strings.Repeat("-", 80))

	for _, r := range results {
		fmt.Printf("• [%s] %s", r.Source, r.Title)
		if r.Year > 0 {
			fmt.Printf(" (%d)", r.Year)
		}
		if ref := r.Ref(); ref != "" {
			fmt.Printf("  %s", ref)
		}
		fmt.Println()

		if r.Overview != "" {
			overview := r.Overview
			if len(overview) > 76 {
				overview = overview[:73] + "..."
			}
			fmt.Printf("  %s\n", overview)
		}
	}

	return nil
}

// lookupByID fetches and prints the full record behind one
// source-qualified ID.
func lookupByID(ref string) error {
	details, err := meta.FetchByID(context.Background(), ref)
	if err != nil {
		return err
	}

	fmt.Printf("[%s] %s", details.Source, details.Title)
	if details.Year > 0 {
		fmt.Printf(" (%d)", details.Year)
	}
	fmt.Printf("  %s\n", details.MediaType)
	if details.Status != "" {
		fmt.Printf("  Status: %s\n", details.Status)
	}
	if details.Episodes > 0 {
		fmt.Printf("  Episodes: %d\n", details.Episodes)
	}
	if details.Overview != "" {
		fmt.Printf("  %s\n", details.Overview)
	}
	return nil
}

// mediaTypeFromFlag maps the --type flag onto the parser's media types.
func mediaTypeFromFlag(s string) (namer.MediaType, error) {
	switch strings.ToLower(s) {
	case "":
		return namer.MediaUnknown, nil
	case "tv", "show", "series":
		return namer.MediaTV, nil
	case "movie", "film":
		return namer.MediaMovie, nil
	case "anime":
		return namer.MediaAnime, nil
	case "music":
		return namer.MediaMusic, nil
	default:
		return namer.MediaUnknown, fmt.Errorf("unknown media type %q (want tv, movie, anime or music)", s)
	}
}
