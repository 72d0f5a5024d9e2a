package cli

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/ivrit-ai/explore/internal/core/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search transcripts",
	Long: `Searches every transcript and prints the segments containing a match.

A single word matches whole words only; several words match segments that
contain all of them. Use --substring to match anywhere inside words and
--regex for a case-insensitive regular expression.

The persisted index is loaded when it is up to date and rebuilt otherwise.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	addIndexFlags(searchCmd)
	searchCmd.Flags().Bool("regex", false, "treat the query as a regular expression")
	searchCmd.Flags().Bool("substring", false, "match anywhere, ignoring word boundaries")
	searchCmd.Flags().IntP("max-results", "n", 0, "results per page (default search.per_page)")
	searchCmd.Flags().Int("page", 1, "page number")
	searchCmd.Flags().Bool("progressive", false, "return a partial first page without scanning every episode")
	searchCmd.Flags().Bool("force-reindex", false, "rebuild the index even if the persisted one is fresh")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	flags := cmd.Flags()
	regex, _ := flags.GetBool("regex")
	substring, _ := flags.GetBool("substring")
	perPage, _ := flags.GetInt("max-results")
	page, _ := flags.GetInt("page")
	progressive, _ := flags.GetBool("progressive")
	force, _ := flags.GetBool("force-reindex")
	asJSON, _ := flags.GetBool("json")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if err := a.index.Warm(ctx, a.settings.IndexPath, force); err != nil {
		return fmt.Errorf("preparing index: %w", err)
	}

	opts := domain.SearchOptions{
		Regex:       regex,
		Substring:   substring,
		PerPage:     perPage,
		Page:        page,
		Progressive: progressive,
	}
	result, err := a.search.Search(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if asJSON {
		return outputSearchJSON(cmd, result)
	}
	newRenderer(cmd.OutOrStdout()).searchPage(query, opts, result)
	return nil
}

func outputSearchJSON(cmd *cobra.Command, page *domain.SearchPage) error {
	data, err := json.MarshalIndent(page, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
