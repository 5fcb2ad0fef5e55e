package github

import (
	"fmt"
	"time"

	apperrors "github.com/git-ranked/gitranked/pkg/errors"
)

// Sort identifies a leaderboard ordering.
type Sort string

// Recognized sort options. Contributions has no upstream equivalent; the
// aggregator accumulates pages under a stand-in sort and ranks client-side.
const (
	SortFollowers     Sort = "followers"
	SortRepositories  Sort = "repositories"
	SortJoined        Sort = "joined"
	SortContributions Sort = "contributions"
)

// ParseSort validates a raw sort string from a request or flag.
func ParseSort(raw string) (Sort, error) {
	switch Sort(raw) {
	case SortFollowers, SortRepositories, SortJoined, SortContributions:
		return Sort(raw), nil
	case "":
		return SortFollowers, nil
	default:
		return "", apperrors.New(apperrors.ErrCodeInvalidSort, "unknown sort option %q", raw)
	}
}

// SearchQualifier returns the sort qualifier embedded in a GraphQL search
// query string. Contributions maps to the repositories stand-in.
func (s Sort) SearchQualifier() string {
	switch s {
	case SortFollowers:
		return "followers-desc"
	case SortRepositories, SortContributions:
		return "repositories-desc"
	default:
		return "joined-desc"
	}
}

// RESTParam returns the REST search endpoint's sort parameter value.
func (s Sort) RESTParam() string {
	if s == SortContributions {
		return string(SortRepositories)
	}
	return string(s)
}

// User is one developer profile. Field names follow the REST API's JSON so
// that responses pass through to clients unchanged.
//
// RecentActivity and TotalStars are best-effort derived metrics: nil means
// unknown (not fetched or the secondary lookup failed), which renderers
// must distinguish from zero.
type User struct {
	Login       string    `json:"login"`
	ID          int64     `json:"id"`
	AvatarURL   string    `json:"avatar_url"`
	HTMLURL     string    `json:"html_url"`
	Name        string    `json:"name,omitempty"`
	Company     string    `json:"company,omitempty"`
	Blog        string    `json:"blog,omitempty"`
	Location    string    `json:"location,omitempty"`
	Email       string    `json:"email,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	PublicRepos int       `json:"public_repos"`
	PublicGists int       `json:"public_gists"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	CreatedAt   time.Time `json:"created_at"`

	RecentActivity *int `json:"recent_activity_count,omitempty"`
	TotalStars     *int `json:"total_stars,omitempty"`
}

// RecentActivityOrZero returns the contribution proxy, defaulting missing
// values to 0 for arithmetic and ranking.
func (u *User) RecentActivityOrZero() int {
	if u.RecentActivity == nil {
		return 0
	}
	return *u.RecentActivity
}

// TotalStarsOrZero returns the star total, defaulting missing values to 0.
func (u *User) TotalStarsOrZero() int {
	if u.TotalStars == nil {
		return 0
	}
	return *u.TotalStars
}

// Summary is a lightweight search hit from the REST search endpoint.
// Everything beyond the login must be hydrated by a detail fetch.
type Summary struct {
	Login     string  `json:"login"`
	ID        int64   `json:"id"`
	AvatarURL string  `json:"avatar_url"`
	HTMLURL   string  `json:"html_url"`
	Score     float64 `json:"score"`
}

// SearchResult is one page of REST search output.
type SearchResult struct {
	TotalCount        int       `json:"total_count"`
	IncompleteResults bool      `json:"incomplete_results"`
	Items             []Summary `json:"items"`
}

// SearchPage is one page of GraphQL search output.
type SearchPage struct {
	Users       []User
	UserCount   int
	HasNextPage bool
	EndCursor   string
}

// LocationQuery builds the upstream search query for a normalized location
// fragment. The fragment must already be normalized; quoting here is safe
// only because normalization strips quote characters.
func LocationQuery(normalized string) string {
	return fmt.Sprintf("location:%q", normalized)
}

func intPtr(v int) *int { return &v }
