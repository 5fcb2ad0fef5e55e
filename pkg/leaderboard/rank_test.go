package leaderboard

import (
	"testing"
	"time"

	"github.com/git-ranked/gitranked/pkg/github"
)

func logins(users []github.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.Login
	}
	return out
}

func equalLogins(a []github.User, want ...string) bool {
	if len(a) != len(want) {
		return false
	}
	for i, u := range a {
		if u.Login != want[i] {
			return false
		}
	}
	return true
}

func TestRankUsersByFollowers(t *testing.T) {
	users := []github.User{
		{Login: "low", Followers: 1},
		{Login: "high", Followers: 100},
		{Login: "mid", Followers: 50},
	}
	rankUsers(users, github.SortFollowers)
	if !equalLogins(users, "high", "mid", "low") {
		t.Errorf("order = %v", logins(users))
	}
}

func TestRankUsersByContributionsTreatsUnknownAsZero(t *testing.T) {
	a50, a10 := 50, 10
	users := []github.User{
		{Login: "unknown"},
		{Login: "busy", RecentActivity: &a50},
		{Login: "quiet", RecentActivity: &a10},
	}
	rankUsers(users, github.SortContributions)
	if !equalLogins(users, "busy", "quiet", "unknown") {
		t.Errorf("order = %v", logins(users))
	}
}

func TestRankUsersByJoinedNewestFirst(t *testing.T) {
	users := []github.User{
		{Login: "veteran", CreatedAt: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Login: "newcomer", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	rankUsers(users, github.SortJoined)
	if !equalLogins(users, "newcomer", "veteran") {
		t.Errorf("order = %v", logins(users))
	}
}

func TestRankUsersStableOnTies(t *testing.T) {
	users := []github.User{
		{Login: "first", Followers: 10},
		{Login: "second", Followers: 10},
		{Login: "third", Followers: 10},
	}
	rankUsers(users, github.SortFollowers)
	if !equalLogins(users, "first", "second", "third") {
		t.Errorf("ties must keep input order, got %v", logins(users))
	}
}

func TestPaginate(t *testing.T) {
	users := make([]github.User, 5)
	for i := range users {
		users[i].Login = string(rune('a' + i))
	}

	tests := []struct {
		name    string
		page    int
		perPage int
		want    []string
		more    bool
	}{
		{"first page", 1, 2, []string{"a", "b"}, true},
		{"middle page", 2, 2, []string{"c", "d"}, true},
		{"short last page", 3, 2, []string{"e"}, false},
		{"past the end", 4, 2, nil, false},
		{"zero page clamps to first", 0, 2, []string{"a", "b"}, true},
		{"whole set", 1, 10, []string{"a", "b", "c", "d", "e"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, more := paginate(users, tt.page, tt.perPage)
			if !equalLogins(got, tt.want...) {
				t.Errorf("page = %v, want %v", logins(got), tt.want)
			}
			if more != tt.more {
				t.Errorf("more = %v, want %v", more, tt.more)
			}
		})
	}
}
