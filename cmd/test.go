package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the connection to every enabled metadata source",
	Long: `Probe each metadata source enabled in the config with a real request
and report which ones answer. Nothing in the library is touched.`,
	RunE: runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	type probe struct {
		name string
		test func(context.Context) error
	}

	var probes []probe
	if tmdbClient != nil {
		probes = append(probes, probe{"TMDB", tmdbClient.TestConnection})
	}
	if tvdbClient != nil {
		probes = append(probes, probe{"TVDB", tvdbClient.TestConnection})
	}
	if tvmazeClient != nil {
		probes = append(probes, probe{"TVMaze", tvmazeClient.TestConnection})
	}
	if anidbClient != nil {
		probes = append(probes, probe{"AniDB", anidbClient.TestConnection})
	}
	if musicbrainzClient != nil {
		probes = append(probes, probe{"MusicBrainz", musicbrainzClient.TestConnection})
	}
	if llmClient != nil {
		probes = append(probes, probe{"LLM", llmClient.TestConnection})
	}

	if len(probes) == 0 {
		fmt.Println("No metadata sources enabled.")
		return nil
	}

	var failures int
	for _, p := range probes {
		fmt.Printf("Testing connection to %s... ", p.name)
		if err := p.test(ctx); err != nil {
			fmt.Printf("✗ Failed: %v\n", err)
			failures++
			continue
		}
		fmt.Println("✓ Connection successful!")
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d connection tests failed", failures, len(probes))
	}
	return nil
}
