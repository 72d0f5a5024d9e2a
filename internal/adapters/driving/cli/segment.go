package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ivrit-ai/explore/internal/core/domain"
	"github.com/ivrit-ai/explore/internal/core/ports/driving"
)

var segmentCmd = &cobra.Command{
	Use:   "segment <episode> <offset>",
	Short: "Show the transcript segment at a character offset",
	Long: `Resolves a character offset within an episode to the segment that
contains it. The episode may be given as its index or its id.
With --by-index the second argument is a segment index instead.`,
	Args: cobra.ExactArgs(2),
	RunE: runSegment,
}

func init() {
	addIndexFlags(segmentCmd)
	segmentCmd.Flags().Bool("by-index", false, "treat the second argument as a segment index")
	segmentCmd.Flags().Bool("json", false, "output the segment as JSON")
	rootCmd.AddCommand(segmentCmd)
}

func runSegment(cmd *cobra.Command, args []string) error {
	offset, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: offset %q is not a number", domain.ErrInvalidInput, args[1])
	}
	byIndex, _ := cmd.Flags().GetBool("by-index")
	asJSON, _ := cmd.Flags().GetBool("json")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if err := a.index.Warm(ctx, a.settings.IndexPath, false); err != nil {
		return fmt.Errorf("preparing index: %w", err)
	}
	ep, err := resolveEpisodeArg(ctx, a.index, args[0])
	if err != nil {
		return err
	}

	seg, err := a.search.Segment(ctx, domain.SegmentRequest{EpisodeIdx: ep, Offset: offset, ByIndex: byIndex})
	if err != nil {
		return err
	}

	if asJSON {
		data, err := json.MarshalIndent(seg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	newRenderer(cmd.OutOrStdout()).segment(seg)
	return nil
}

// resolveEpisodeArg accepts an episode index or an episode id.
func resolveEpisodeArg(ctx context.Context, index driving.IndexService, arg string) (int, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		return n, nil
	}
	idx, err := index.Get(ctx)
	if err != nil {
		return 0, err
	}
	for e, id := range idx.IDs {
		if id == arg {
			return e, nil
		}
	}
	return 0, fmt.Errorf("episode %q: %w", arg, domain.ErrNotFound)
}
