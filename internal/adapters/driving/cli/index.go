package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivrit-ai/explore/internal/adapters/driven/storage/snapshot"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build, validate and inspect the transcript index",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the index from the transcripts directory and save it",
	Long: `Reads every *.json and *.json.gz transcript under the transcripts
directory, builds the index and saves it as a compressed container.
Documents that cannot be parsed are skipped with a warning.`,
	Args: cobra.NoArgs,
	RunE: runIndexBuild,
}

var indexValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check that a persisted index loads",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndexValidate,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the persisted index matches the transcripts directory",
	Args:  cobra.NoArgs,
	RunE:  runIndexStatus,
}

func init() {
	addIndexFlags(indexBuildCmd)
	indexBuildCmd.Flags().StringP("out", "o", "", "output path (alias for --index)")
	indexValidateCmd.Flags().String("index", "", "persisted index path (overrides index.path)")
	addIndexFlags(indexStatusCmd)
	indexStatusCmd.Flags().Int("history", 5, "number of catalog entries to show")

	indexCmd.AddCommand(indexBuildCmd, indexValidateCmd, indexStatusCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexBuild(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := a.settings.IndexPath
	if f := cmd.Flags().Lookup("out"); f.Changed {
		out = f.Value.String()
	}

	ctx := cmd.Context()
	started := time.Now()
	if err := a.index.Rebuild(ctx, true); err != nil {
		return fmt.Errorf("building index: %w", err)
	}
	if err := a.index.Save(ctx, out); err != nil {
		return err
	}

	status := a.index.Status(ctx)
	skipped := 0
	if status.LastBuild != nil {
		skipped = status.LastBuild.Skipped
	}
	cmd.Printf("Indexed %d episodes (%d skipped) in %s\n",
		status.Episodes, skipped, time.Since(started).Round(time.Millisecond))
	cmd.Printf("Saved to %s\n", out)
	return nil
}

func runIndexValidate(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	path := settings.IndexPath
	if len(args) == 1 {
		path = args[0]
	}

	idx, err := snapshot.New().Load(cmd.Context(), path)
	if err != nil {
		return err
	}

	segments := 0
	for e := range idx.IDs {
		segments += idx.SegmentCount(e)
	}
	cmd.Printf("%s: OK, %d episodes, %d segments\n", path, idx.Len(), segments)
	return nil
}

func runIndexStatus(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	path := a.settings.IndexPath
	cmd.Printf("Transcripts: %s\n", a.settings.TranscriptsDir)
	cmd.Printf("Index:       %s\n", path)

	switch {
	case !a.snapshots.Exists(path):
		cmd.Println("State:       missing")
	default:
		stale, err := a.index.Stale(ctx, path)
		if err != nil {
			return fmt.Errorf("checking index: %w", err)
		}
		if stale {
			cmd.Println("State:       stale")
		} else {
			cmd.Println("State:       fresh")
		}
	}

	history, _ := cmd.Flags().GetInt("history")
	builds, err := a.catalog.ListBuilds(ctx, history)
	if err != nil {
		return err
	}
	if len(builds) == 0 {
		return nil
	}

	cmd.Println()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tORIGIN\tEPISODES\tSKIPPED\tDURATION\tPATH")
	for _, b := range builds {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			b.CreatedAt.Local().Format(time.DateTime), b.Origin, b.Episodes, b.Skipped,
			b.Duration.Round(time.Millisecond), b.Path)
	}
	return w.Flush()
}
