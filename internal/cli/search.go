package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/git-ranked/gitranked/pkg/github"
	"github.com/git-ranked/gitranked/pkg/leaderboard"
	"github.com/git-ranked/gitranked/pkg/observability"
)

// searchCommand creates the search command ranking developers by location.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		sortFlag string
		page     int
		token    string
		asJSON   bool
		noInput  bool
	)

	cmd := &cobra.Command{
		Use:   "search <location>",
		Short: "Rank developers for a location",
		Long: `Search GitHub for developers in a location and rank them.

The contributions sort accumulates result pages before ranking, which can
take a while for large cities; the other sorts return a single page fast.`,
		Example: `  gitranked search berlin
  gitranked search "phnom penh" --sort contributions
  gitranked search tokyo --sort repositories --page 2 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sortBy, err := github.ParseSort(sortFlag)
			if err != nil {
				return err
			}

			svc, err := c.newServices()
			if err != nil {
				return err
			}
			defer svc.Close()

			if token == "" {
				token = svc.cfg.GitHubToken
			}

			raw := strings.Join(args, " ")
			loc := c.chooseLocation(cmd.Context(), svc, raw, noInput)

			prog := newProgress(c.Logger)
			spin := newSpinnerWithContext(cmd.Context(), fmt.Sprintf("Searching developers in %s...", loc))
			if sortBy == github.SortContributions && !asJSON {
				observability.SetSearchHooks(&spinnerHooks{spin: spin})
				defer observability.Reset()
			}
			spin.Start()

			result, err := svc.board.Search(cmd.Context(), leaderboard.Request{
				Location: loc,
				Sort:     sortBy,
				Page:     page,
				Token:    token,
				ClientID: "cli",
			})
			spin.Stop()
			if err != nil {
				return err
			}

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(result)
			}
			if result.RateLimited {
				printRateLimited(result.ResetAt)
				return nil
			}
			if len(result.Users) == 0 {
				printInfo("No developers found in %q", loc)
				return nil
			}

			prog.done(fmt.Sprintf("Ranked %d developers", len(result.Users)))
			fmt.Println(StyleTitle.Render(fmt.Sprintf("Top developers in %s", loc)))
			printLeaderboard(result.Users, sortBy, max(page, 1), svc.cfg.Search.PageSize)
			printResultStats(result.TotalCount, len(result.Users), result.Cached, result.HasNextPage)
			if result.Partial {
				printWarning("Ranking built from a partial result set")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sortFlag, "sort", "followers", "sort order: followers, repositories, joined, contributions")
	cmd.Flags().IntVar(&page, "page", 1, "display page")
	cmd.Flags().StringVar(&token, "token", "", "GitHub API token (defaults to config / GITHUB_TOKEN)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the raw page as JSON")
	cmd.Flags().BoolVar(&noInput, "no-input", false, "never prompt, take the best location match")
	return cmd
}

// chooseLocation refines a free-text location via the geocoder. With
// several plausible matches and an interactive terminal it asks; anything
// going wrong falls back to searching the raw input.
func (c *CLI) chooseLocation(ctx context.Context, svc *services, raw string, noInput bool) string {
	suggestions, err := svc.locations.Suggest(ctx, raw, 5)
	if err != nil {
		c.Logger.Debug("geocoder unavailable", "err", err)
		return raw
	}
	if len(suggestions) == 0 {
		return raw
	}
	if len(suggestions) == 1 || noInput || !stdinIsTTY() {
		return suggestions[0].Name
	}

	picked, err := pickLocation(suggestions)
	if err != nil || picked == nil {
		return raw
	}
	printInfo("Searching %s", picked.Label())
	return picked.Name
}

func stdinIsTTY() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// spinnerHooks surfaces accumulation progress on the active spinner.
type spinnerHooks struct {
	observability.NoopSearchHooks
	spin *Spinner
}

func (h *spinnerHooks) OnAccumulatePage(_ context.Context, _ string, page, accumulated int) {
	h.spin.SetMessage(fmt.Sprintf("Accumulating results... page %d, %d developers", page, accumulated))
}
