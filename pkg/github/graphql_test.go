package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync/atomic"
	"testing"

	apperrors "github.com/git-ranked/gitranked/pkg/errors"
)

func newTestGraphQLClient(t *testing.T, handler http.Handler) *GraphQLClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewGraphQLClient(nil)
	c.url = server.URL
	return c
}

func decodeGQLRequest(t *testing.T, r *http.Request) gqlRequest {
	t.Helper()
	var req gqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.Fatalf("decoding graphql request: %v", err)
	}
	return req
}

const searchFixture = `{
	"data": {
		"search": {
			"userCount": 321,
			"pageInfo": {"hasNextPage": true, "endCursor": "Y3Vyc29yOjUw"},
			"edges": [
				{"node": {
					"login": "alice",
					"databaseId": 1,
					"avatarUrl": "https://a",
					"url": "https://gh/alice",
					"name": "Alice",
					"location": "Berlin",
					"createdAt": "2015-04-01T12:00:00Z",
					"followers": {"totalCount": 42},
					"following": {"totalCount": 5},
					"gists": {"totalCount": 2},
					"repositories": {"totalCount": 12, "nodes": [{"stargazerCount": 100}, {"stargazerCount": 25}]},
					"contributionsCollection": {"contributionCalendar": {"totalContributions": 900}}
				}},
				{"node": {}},
				{"node": {
					"login": "bob",
					"databaseId": 2,
					"url": "https://gh/bob",
					"createdAt": "2019-01-01T00:00:00Z",
					"followers": {"totalCount": 7},
					"repositories": {"totalCount": 3, "nodes": []},
					"contributionsCollection": {"contributionCalendar": {"totalContributions": 40}}
				}}
			]
		}
	}
}`

func TestGraphQLSearchUsers(t *testing.T) {
	c := newTestGraphQLClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		req := decodeGQLRequest(t, r)
		query, _ := req.Variables["query"].(string)
		if !strings.Contains(query, `location:"berlin"`) || !strings.Contains(query, "sort:followers-desc") {
			t.Errorf("search query = %q", query)
		}
		if after, ok := req.Variables["after"]; ok {
			t.Errorf("first page must not send a cursor, got %v", after)
		}
		w.Write([]byte(searchFixture))
	}))

	page, err := c.SearchUsers(context.Background(), "secret", "berlin", SortFollowers, 50, "")
	if err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}
	if page.UserCount != 321 {
		t.Errorf("UserCount = %d", page.UserCount)
	}
	if !page.HasNextPage || page.EndCursor != "Y3Vyc29yOjUw" {
		t.Errorf("pageInfo = %+v", page)
	}
	// The empty organization node must be dropped.
	if len(page.Users) != 2 {
		t.Fatalf("got %d users, want 2", len(page.Users))
	}

	alice := page.Users[0]
	if alice.Login != "alice" || alice.Followers != 42 || alice.PublicRepos != 12 {
		t.Errorf("alice = %+v", alice)
	}
	if alice.TotalStars == nil || *alice.TotalStars != 125 {
		t.Errorf("alice stars = %v, want 125", alice.TotalStars)
	}
	if alice.RecentActivity == nil || *alice.RecentActivity != 900 {
		t.Errorf("alice activity = %v, want 900", alice.RecentActivity)
	}
}

func TestGraphQLSearchUsersSendsCursor(t *testing.T) {
	c := newTestGraphQLClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := decodeGQLRequest(t, r)
		if got := req.Variables["after"]; got != "CURSOR" {
			t.Errorf("after = %v, want CURSOR", got)
		}
		w.Write([]byte(`{"data": {"search": {"userCount": 0, "pageInfo": {}, "edges": []}}}`))
	}))

	if _, err := c.SearchUsers(context.Background(), "secret", "berlin", SortFollowers, 50, "CURSOR"); err != nil {
		t.Fatal(err)
	}
}

var loginPattern = regexp.MustCompile(`user\(login: "([^"]+)"\)`)

// hydrationHandler answers any aliased user document with synthetic
// profiles derived from the requested logins.
func hydrationHandler(t *testing.T, requests *atomic.Int32, fail func(batch int32) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		batch := requests.Add(1)
		if fail != nil && fail(batch) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		req := decodeGQLRequest(t, r)

		data := map[string]any{}
		for i, m := range loginPattern.FindAllStringSubmatch(req.Query, -1) {
			login := m[1]
			data[fmt.Sprintf("u%d", i)] = map[string]any{
				"login":        login,
				"databaseId":   i + 1,
				"createdAt":    "2020-01-01T00:00:00Z",
				"followers":    map[string]int{"totalCount": i},
				"repositories": map[string]any{"totalCount": 1, "nodes": []any{}},
				"contributionsCollection": map[string]any{
					"contributionCalendar": map[string]int{"totalContributions": 10 * i},
				},
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"data": data})
	})
}

func TestUserDetailsChunks(t *testing.T) {
	var requests atomic.Int32
	c := newTestGraphQLClient(t, hydrationHandler(t, &requests, nil))

	logins := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		logins = append(logins, fmt.Sprintf("dev%d", i))
	}

	users, err := c.UserDetails(context.Background(), "secret", logins)
	if err != nil {
		t.Fatalf("UserDetails: %v", err)
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("12 logins should hydrate in 2 chunks, got %d requests", got)
	}
	if len(users) != 12 {
		t.Errorf("got %d users, want 12", len(users))
	}
	if _, ok := users["dev11"]; !ok {
		t.Error("missing dev11 from hydrated set")
	}
}

func TestUserDetailsSkipsFailedChunk(t *testing.T) {
	var requests atomic.Int32
	c := newTestGraphQLClient(t, hydrationHandler(t, &requests, func(batch int32) bool {
		return batch == 1
	}))

	logins := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		logins = append(logins, fmt.Sprintf("dev%d", i))
	}

	users, err := c.UserDetails(context.Background(), "secret", logins)
	if err != nil {
		t.Fatalf("UserDetails must tolerate a failed chunk, got %v", err)
	}
	// First chunk of 10 lost, second chunk of 2 survives.
	if len(users) != 2 {
		t.Errorf("got %d users, want 2", len(users))
	}
}

func TestUserDetailsDropsNullAliases(t *testing.T) {
	c := newTestGraphQLClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {
			"u0": {"login": "alice", "databaseId": 1, "createdAt": "2020-01-01T00:00:00Z"},
			"u1": null
		}}`))
	}))

	users, err := c.UserDetails(context.Background(), "secret", []string{"alice", "deleted-account"})
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 {
		t.Errorf("got %d users, want 1", len(users))
	}
	if _, ok := users["alice"]; !ok {
		t.Error("alice missing from result")
	}
}

func TestGraphQLUser(t *testing.T) {
	c := newTestGraphQLClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := decodeGQLRequest(t, r)
		if got := req.Variables["login"]; got != "alice" {
			t.Errorf("login = %v", got)
		}
		w.Write([]byte(`{"data": {"user": {
			"login": "alice", "databaseId": 1, "createdAt": "2015-04-01T12:00:00Z",
			"followers": {"totalCount": 42},
			"repositories": {"totalCount": 2, "nodes": [{"stargazerCount": 9}]},
			"contributionsCollection": {"contributionCalendar": {"totalContributions": 345}}
		}}}`))
	}))

	got, err := c.User(context.Background(), "secret", "alice")
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if got.Login != "alice" || got.RecentActivityOrZero() != 345 || got.TotalStarsOrZero() != 9 {
		t.Errorf("user = %+v", got)
	}
}

func TestGraphQLUserNotFound(t *testing.T) {
	c := newTestGraphQLClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"user": null}, "errors": [{"type": "NOT_FOUND", "message": "no such user"}]}`))
	}))

	_, err := c.User(context.Background(), "secret", "ghost")
	if apperrors.GetCode(err) != apperrors.ErrCodeUserNotFound {
		t.Errorf("code = %q, want USER_NOT_FOUND", apperrors.GetCode(err))
	}
}

func TestGraphQLRateLimitedDocument(t *testing.T) {
	c := newTestGraphQLClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": null, "errors": [{"type": "RATE_LIMITED", "message": "API rate limit exceeded"}]}`))
	}))

	_, err := c.SearchUsers(context.Background(), "secret", "berlin", SortFollowers, 50, "")
	if !apperrors.IsRateLimited(err) {
		t.Errorf("expected rate-limited error, got %v", err)
	}
}
