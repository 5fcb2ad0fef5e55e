package leaderboard

import (
	"sort"

	"github.com/git-ranked/gitranked/pkg/github"
)

// rankUsers orders users by the requested field, descending. The sort is
// stable so ties keep their upstream relevance order.
func rankUsers(users []github.User, by github.Sort) {
	var key func(u *github.User) int

	switch by {
	case github.SortRepositories:
		key = func(u *github.User) int { return u.PublicRepos }
	case github.SortContributions:
		key = func(u *github.User) int { return u.RecentActivityOrZero() }
	case github.SortJoined:
		sort.SliceStable(users, func(i, j int) bool {
			return users[i].CreatedAt.After(users[j].CreatedAt)
		})
		return
	default:
		key = func(u *github.User) int { return u.Followers }
	}

	sort.SliceStable(users, func(i, j int) bool {
		return key(&users[i]) > key(&users[j])
	})
}

// paginate slices a ranked set into 1-based display pages. It returns the
// page contents and whether further pages exist within the set.
func paginate(users []github.User, page, perPage int) ([]github.User, bool) {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(users) {
		return nil, false
	}
	end := min(start+perPage, len(users))
	return users[start:end], end < len(users)
}
