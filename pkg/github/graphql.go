package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	apperrors "github.com/git-ranked/gitranked/pkg/errors"
	"github.com/git-ranked/gitranked/pkg/httputil"
	"github.com/git-ranked/gitranked/pkg/observability"
)

const (
	defaultGraphQLURL = "https://api.github.com/graphql"

	// hydrationChunkSize bounds the aliases per hydration query so a single
	// document stays within upstream complexity limits.
	hydrationChunkSize = 10

	// topRepositories bounds the per-user repository sample used for the
	// star total.
	topRepositories = 30
)

// userFieldsFragment selects everything needed to build a [User] in one
// round trip, including the derived star and contribution metrics.
const userFieldsFragment = `fragment userFields on User {
  login
  databaseId
  avatarUrl
  url
  name
  company
  websiteUrl
  location
  email
  bio
  createdAt
  followers { totalCount }
  following { totalCount }
  gists { totalCount }
  repositories(first: 30, ownerAffiliations: OWNER, orderBy: {field: STARGAZERS, direction: DESC}) {
    totalCount
    nodes { stargazerCount }
  }
  contributionsCollection {
    contributionCalendar { totalContributions }
  }
}`

const searchUsersQuery = `query SearchUsers($query: String!, $first: Int!, $after: String) {
  search(query: $query, type: USER, first: $first, after: $after) {
    userCount
    pageInfo { hasNextPage endCursor }
    edges {
      node {
        ... on User { ...userFields }
      }
    }
  }
}
` + userFieldsFragment

const getUserQuery = `query GetUser($login: String!) {
  user(login: $login) { ...userFields }
}
` + userFieldsFragment

// GraphQLClient talks to the GitHub v4 GraphQL API. Every call requires a
// bearer token; callers without one must use [RESTClient] instead.
type GraphQLClient struct {
	http   *http.Client
	url    string
	logger *log.Logger
}

// NewGraphQLClient creates a GraphQL transport with default timeouts.
func NewGraphQLClient(logger *log.Logger) *GraphQLClient {
	if logger == nil {
		logger = log.Default()
	}
	return &GraphQLClient{
		http:   &http.Client{Timeout: defaultTimeout},
		url:    defaultGraphQLURL,
		logger: logger.With("transport", "graphql"),
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type countNode struct {
	TotalCount int `json:"totalCount"`
}

// gqlUser is the wire shape selected by userFieldsFragment.
type gqlUser struct {
	Login                   string    `json:"login"`
	DatabaseID              int64     `json:"databaseId"`
	AvatarURL               string    `json:"avatarUrl"`
	URL                     string    `json:"url"`
	Name                    string    `json:"name"`
	Company                 string    `json:"company"`
	WebsiteURL              string    `json:"websiteUrl"`
	Location                string    `json:"location"`
	Email                   string    `json:"email"`
	Bio                     string    `json:"bio"`
	CreatedAt               time.Time `json:"createdAt"`
	Followers               countNode `json:"followers"`
	Following               countNode `json:"following"`
	Gists                   countNode `json:"gists"`
	Repositories            struct {
		TotalCount int `json:"totalCount"`
		Nodes      []struct {
			StargazerCount int `json:"stargazerCount"`
		} `json:"nodes"`
	} `json:"repositories"`
	ContributionsCollection struct {
		ContributionCalendar struct {
			TotalContributions int `json:"totalContributions"`
		} `json:"contributionCalendar"`
	} `json:"contributionsCollection"`
}

func (g *gqlUser) toUser() User {
	stars := 0
	for _, repo := range g.Repositories.Nodes {
		stars += repo.StargazerCount
	}
	return User{
		Login:          g.Login,
		ID:             g.DatabaseID,
		AvatarURL:      g.AvatarURL,
		HTMLURL:        g.URL,
		Name:           g.Name,
		Company:        g.Company,
		Blog:           g.WebsiteURL,
		Location:       g.Location,
		Email:          g.Email,
		Bio:            g.Bio,
		PublicRepos:    g.Repositories.TotalCount,
		PublicGists:    g.Gists.TotalCount,
		Followers:      g.Followers.TotalCount,
		Following:      g.Following.TotalCount,
		CreatedAt:      g.CreatedAt,
		RecentActivity: intPtr(g.ContributionsCollection.ContributionCalendar.TotalContributions),
		TotalStars:     intPtr(stars),
	}
}

// SearchUsers runs one page of the GraphQL search connection. after is the
// continuation cursor from a previous page, empty for the first page.
// Results arrive fully hydrated.
func (c *GraphQLClient) SearchUsers(ctx context.Context, token, location string, sort Sort, first int, after string) (*SearchPage, error) {
	query := LocationQuery(location) + " sort:" + sort.SearchQualifier()
	vars := map[string]any{
		"query": query,
		"first": first,
	}
	if after != "" {
		vars["after"] = after
	}

	var out struct {
		Search struct {
			UserCount int `json:"userCount"`
			PageInfo  struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
			Edges []struct {
				Node gqlUser `json:"node"`
			} `json:"edges"`
		} `json:"search"`
	}
	if err := c.do(ctx, token, gqlRequest{Query: searchUsersQuery, Variables: vars}, &out); err != nil {
		return nil, err
	}

	page := &SearchPage{
		UserCount:   out.Search.UserCount,
		HasNextPage: out.Search.PageInfo.HasNextPage,
		EndCursor:   out.Search.PageInfo.EndCursor,
		Users:       make([]User, 0, len(out.Search.Edges)),
	}
	for _, edge := range out.Search.Edges {
		// Search can match organizations, which leave the User fragment empty.
		if edge.Node.Login == "" {
			continue
		}
		page.Users = append(page.Users, edge.Node.toUser())
	}
	c.logger.Debug("graphql search", "location", location, "count", page.UserCount, "page_users", len(page.Users), "more", page.HasNextPage)
	return page, nil
}

// UserDetails hydrates a batch of logins with aliased user queries, at
// most hydrationChunkSize per document. Failed chunks are logged and
// skipped so one bad batch cannot sink the whole result set; the returned
// map is keyed by lowercased login and contains only the successes.
func (c *GraphQLClient) UserDetails(ctx context.Context, token string, logins []string) (map[string]User, error) {
	users := make(map[string]User, len(logins))

	for start := 0; start < len(logins); start += hydrationChunkSize {
		end := min(start+hydrationChunkSize, len(logins))
		chunk := logins[start:end]

		resolved, err := c.userChunk(ctx, token, chunk)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("hydration chunk failed", "logins", len(chunk), "err", err)
			continue
		}
		for login, user := range resolved {
			users[strings.ToLower(login)] = user
		}
	}
	return users, nil
}

func (c *GraphQLClient) userChunk(ctx context.Context, token string, logins []string) (map[string]User, error) {
	var b strings.Builder
	b.WriteString("query {\n")
	for i, login := range logins {
		fmt.Fprintf(&b, "  u%d: user(login: %q) { ...userFields }\n", i, login)
	}
	b.WriteString("}\n")
	b.WriteString(userFieldsFragment)

	var out map[string]*gqlUser
	if err := c.do(ctx, token, gqlRequest{Query: b.String()}, &out); err != nil {
		return nil, err
	}

	users := make(map[string]User, len(out))
	for _, node := range out {
		// Deleted or renamed accounts resolve to null aliases.
		if node == nil || node.Login == "" {
			continue
		}
		users[node.Login] = node.toUser()
	}
	return users, nil
}

// User fetches a single fully hydrated profile.
func (c *GraphQLClient) User(ctx context.Context, token, login string) (*User, error) {
	var out struct {
		User *gqlUser `json:"user"`
	}
	req := gqlRequest{Query: getUserQuery, Variables: map[string]any{"login": login}}
	if err := c.do(ctx, token, req, &out); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, apperrors.New(apperrors.ErrCodeUserNotFound, "user %q not found", login)
	}
	user := out.User.toUser()
	return &user, nil
}

// do posts one GraphQL document and decodes data into out. Transport
// failures and 5xx responses are retried; document errors are mapped onto
// the error taxonomy.
func (c *GraphQLClient) do(ctx context.Context, token string, request gqlRequest, out any) error {
	body, err := json.Marshal(request)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "encoding graphql request")
	}

	err = httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "bearer "+token)

		observability.HTTP().OnRequest(ctx, http.MethodPost, req.URL.Host, "/graphql")
		start := time.Now()

		resp, err := c.http.Do(req)
		if err != nil {
			observability.HTTP().OnError(ctx, http.MethodPost, req.URL.Host, "/graphql", err)
			return httputil.Retryable(apperrors.Wrap(apperrors.ErrCodeConnection, err, "graphql request failed"))
		}
		defer resp.Body.Close()
		observability.HTTP().OnResponse(ctx, http.MethodPost, req.URL.Host, "/graphql", resp.StatusCode, time.Since(start))

		if err := statusError(resp, token); err != nil {
			return err
		}

		var envelope struct {
			Data   json.RawMessage `json:"data"`
			Errors []gqlError      `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeConnection, err, "decoding graphql response")
		}
		if err := documentError(envelope.Errors, envelope.Data); err != nil {
			return err
		}
		if len(envelope.Data) == 0 {
			return apperrors.New(apperrors.ErrCodeUpstream, "graphql response without data")
		}
		return json.Unmarshal(envelope.Data, out)
	})
	return unwrapRetryable(err)
}

// documentError maps GraphQL-level errors. Partial data with errors is
// tolerated; a fully failed document is not.
func documentError(errs []gqlError, data json.RawMessage) error {
	if len(errs) == 0 {
		return nil
	}
	for _, e := range errs {
		if e.Type == "RATE_LIMITED" {
			return &apperrors.RateLimitedError{Message: e.Message}
		}
	}
	if len(data) == 0 || string(data) == "null" {
		return apperrors.New(apperrors.ErrCodeUpstream, "graphql: %s", errs[0].Message)
	}
	return nil
}
