package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/git-ranked/gitranked/pkg/github"
)

// userCommand creates the user command showing one developer profile.
func (c *CLI) userCommand() *cobra.Command {
	var (
		token  string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "user <login>",
		Short: "Show one developer profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.newServices()
			if err != nil {
				return err
			}
			defer svc.Close()

			if token == "" {
				token = svc.cfg.GitHubToken
			}

			spin := newSpinnerWithContext(cmd.Context(), fmt.Sprintf("Fetching %s...", args[0]))
			spin.Start()
			user, err := svc.board.User(cmd.Context(), args[0], token)
			spin.Stop()
			if err != nil {
				return err
			}

			if asJSON {
				return json.NewEncoder(os.Stdout).Encode(user)
			}
			printProfile(user)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "GitHub API token (defaults to config / GITHUB_TOKEN)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the profile as JSON")
	return cmd
}

func printProfile(u *github.User) {
	title := u.Login
	if u.Name != "" {
		title = fmt.Sprintf("%s (%s)", u.Name, u.Login)
	}
	fmt.Println(StyleTitle.Render(title))
	if u.Bio != "" {
		printDetail("%s", u.Bio)
	}
	fmt.Println()

	if u.Location != "" {
		printKeyValue("Location", u.Location)
	}
	if u.Company != "" {
		printKeyValue("Company", u.Company)
	}
	printKeyValue("Followers", strconv.Itoa(u.Followers))
	printKeyValue("Following", strconv.Itoa(u.Following))
	printKeyValue("Repos", strconv.Itoa(u.PublicRepos))
	printKeyValue("Stars", unknownOr(u.TotalStars))
	printKeyValue("Activity", unknownOr(u.RecentActivity))
	if !u.CreatedAt.IsZero() {
		printKeyValue("Joined", u.CreatedAt.Format("January 2006"))
	}
	if u.HTMLURL != "" {
		printKeyValue("Profile", StyleLink.Render(u.HTMLURL))
	}
}

// unknownOr renders a derived metric, distinguishing a missing value from
// a real zero.
func unknownOr(v *int) string {
	if v == nil {
		return "unknown"
	}
	return strconv.Itoa(*v)
}
