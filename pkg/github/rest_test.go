package github

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/git-ranked/gitranked/pkg/errors"
)

func newTestRESTClient(t *testing.T, handler http.Handler) *RESTClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewRESTClient(nil)
	c.baseURL = server.URL
	return c
}

func TestSearchUsers(t *testing.T) {
	c := newTestRESTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("q"); got != `location:"berlin"` {
			t.Errorf("q = %q", got)
		}
		if got := q.Get("sort"); got != "followers" {
			t.Errorf("sort = %q", got)
		}
		if got := q.Get("order"); got != "desc" {
			t.Errorf("order = %q", got)
		}
		if got := q.Get("page"); got != "2" {
			t.Errorf("page = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "token secret" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{
			"total_count": 1234,
			"incomplete_results": false,
			"items": [
				{"login": "alice", "id": 1, "avatar_url": "https://a", "html_url": "https://gh/alice", "score": 1.0},
				{"login": "bob", "id": 2, "avatar_url": "https://b", "html_url": "https://gh/bob", "score": 0.9}
			]
		}`))
	}))

	got, err := c.SearchUsers(context.Background(), "secret", "berlin", SortFollowers, 50, 2)
	if err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}
	if got.TotalCount != 1234 {
		t.Errorf("TotalCount = %d", got.TotalCount)
	}
	if len(got.Items) != 2 || got.Items[0].Login != "alice" {
		t.Errorf("Items = %+v", got.Items)
	}
}

func TestSearchUsersAnonymousSendsNoAuth(t *testing.T) {
	c := newTestRESTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		w.Write([]byte(`{"total_count": 0, "items": []}`))
	}))

	if _, err := c.SearchUsers(context.Background(), "", "berlin", SortJoined, 50, 1); err != nil {
		t.Fatal(err)
	}
}

func TestGetUser(t *testing.T) {
	c := newTestRESTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/alice" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{
			"login": "alice", "id": 1, "name": "Alice", "location": "Berlin",
			"followers": 42, "public_repos": 7, "created_at": "2015-04-01T12:00:00Z"
		}`))
	}))

	got, err := c.GetUser(context.Background(), "", "alice")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Login != "alice" || got.Followers != 42 {
		t.Errorf("user = %+v", got)
	}
	if got.RecentActivity != nil || got.TotalStars != nil {
		t.Error("derived metrics must stay unknown until the secondary lookups run")
	}
}

func TestGetUserNotFound(t *testing.T) {
	c := newTestRESTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := c.GetUser(context.Background(), "", "ghost")
	if apperrors.GetCode(err) != apperrors.ErrCodeUserNotFound {
		t.Errorf("code = %q, want USER_NOT_FOUND", apperrors.GetCode(err))
	}
}

func TestRateLimitResponseCarriesReset(t *testing.T) {
	c := newTestRESTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Reset", "1700000000")
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := c.SearchUsers(context.Background(), "", "berlin", SortFollowers, 50, 1)
	if !apperrors.IsRateLimited(err) {
		t.Fatalf("expected rate-limited error, got %v", err)
	}
	if got := apperrors.RateLimitReset(err); !got.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("ResetAt = %v", got)
	}

	var rl *apperrors.RateLimitedError
	if !errors.As(err, &rl) || rl.Message != anonymousQuotaMessage {
		t.Errorf("anonymous 403 should carry the quota message, got %v", err)
	}
}

func TestUpstreamErrorCarriesStatus(t *testing.T) {
	c := newTestRESTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	_, err := c.SearchUsers(context.Background(), "", "berlin", SortFollowers, 50, 1)
	var ue *apperrors.UpstreamError
	if !errors.As(err, &ue) || ue.Status != http.StatusUnprocessableEntity {
		t.Errorf("err = %v, want UpstreamError with status 422", err)
	}
}

func TestRecentCommitCount(t *testing.T) {
	c := newTestRESTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/alice/events" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`[
			{"type": "PushEvent", "payload": {"size": 3}},
			{"type": "WatchEvent", "payload": {}},
			{"type": "PushEvent", "payload": {"size": 5}},
			{"type": "IssuesEvent", "payload": {}}
		]`))
	}))

	got, err := c.RecentCommitCount(context.Background(), "", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if got != 8 {
		t.Errorf("RecentCommitCount = %d, want 8", got)
	}
}

func TestTotalStars(t *testing.T) {
	c := newTestRESTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("type") != "owner" || q.Get("sort") != "pushed" {
			t.Errorf("query = %v", q)
		}
		w.Write([]byte(`[
			{"stargazers_count": 10},
			{"stargazers_count": 0},
			{"stargazers_count": 250}
		]`))
	}))

	got, err := c.TotalStars(context.Background(), "", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if got != 260 {
		t.Errorf("TotalStars = %d, want 260", got)
	}
}

func TestParseSort(t *testing.T) {
	for _, valid := range []string{"followers", "repositories", "joined", "contributions"} {
		if _, err := ParseSort(valid); err != nil {
			t.Errorf("ParseSort(%q) failed: %v", valid, err)
		}
	}
	if got, _ := ParseSort(""); got != SortFollowers {
		t.Errorf("empty sort = %q, want followers default", got)
	}
	if _, err := ParseSort("stars"); apperrors.GetCode(err) != apperrors.ErrCodeInvalidSort {
		t.Errorf("unknown sort should map to INVALID_SORT, got %v", err)
	}
}

func TestSortQualifiers(t *testing.T) {
	if got := SortContributions.SearchQualifier(); got != "repositories-desc" {
		t.Errorf("contributions qualifier = %q, want repositories stand-in", got)
	}
	if got := SortContributions.RESTParam(); got != "repositories" {
		t.Errorf("contributions REST param = %q", got)
	}
	if got := SortJoined.SearchQualifier(); got != "joined-desc" {
		t.Errorf("joined qualifier = %q", got)
	}
}
