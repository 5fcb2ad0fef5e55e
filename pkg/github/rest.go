package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	apperrors "github.com/git-ranked/gitranked/pkg/errors"
	"github.com/git-ranked/gitranked/pkg/httputil"
	"github.com/git-ranked/gitranked/pkg/observability"
)

const (
	defaultAPIBaseURL = "https://api.github.com"
	defaultTimeout    = 15 * time.Second

	// maxPerPage is the upstream cap for list endpoints.
	maxPerPage = 100
)

// anonymousQuotaMessage is surfaced to clients when the unauthenticated
// upstream quota runs out.
const anonymousQuotaMessage = "API rate limit exceeded. Add a GitHub API key to raise the limit from 60 to 5,000 requests per hour."

// RESTClient talks to the GitHub v3 REST API. The zero quota tier works
// without a token, which makes REST the only transport available to
// anonymous searches.
type RESTClient struct {
	http    *http.Client
	baseURL string
	logger  *log.Logger
}

// NewRESTClient creates a REST transport with default timeouts.
func NewRESTClient(logger *log.Logger) *RESTClient {
	if logger == nil {
		logger = log.Default()
	}
	return &RESTClient{
		http:    &http.Client{Timeout: defaultTimeout},
		baseURL: defaultAPIBaseURL,
		logger:  logger.With("transport", "rest"),
	}
}

// SearchUsers runs one page of the user search endpoint for a normalized
// location fragment. Items carry logins only and need hydration before
// ranking on anything but the upstream sort.
func (c *RESTClient) SearchUsers(ctx context.Context, token, location string, sort Sort, perPage, page int) (*SearchResult, error) {
	if perPage < 1 || perPage > maxPerPage {
		perPage = maxPerPage
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{
		"q":        {LocationQuery(location)},
		"sort":     {sort.RESTParam()},
		"order":    {"desc"},
		"per_page": {strconv.Itoa(perPage)},
		"page":     {strconv.Itoa(page)},
	}

	var result SearchResult
	if err := c.getJSON(ctx, token, "/search/users", params, &result); err != nil {
		return nil, err
	}
	c.logger.Debug("user search", "location", location, "page", page, "total", result.TotalCount, "items", len(result.Items))
	return &result, nil
}

// GetUser fetches a single profile. A 404 maps to USER_NOT_FOUND.
func (c *RESTClient) GetUser(ctx context.Context, token, login string) (*User, error) {
	var user User
	err := c.getJSON(ctx, token, "/users/"+url.PathEscape(login), nil, &user)
	if apperrors.Is(err, apperrors.ErrCodeNotFound) {
		return nil, apperrors.New(apperrors.ErrCodeUserNotFound, "user %q not found", login)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// RecentCommitCount approximates recent contribution volume by summing the
// commit counts of PushEvents in the user's public event feed. The feed
// only covers roughly the last 90 days, so this undercounts relative to
// the contribution calendar available over GraphQL.
func (c *RESTClient) RecentCommitCount(ctx context.Context, token, login string) (int, error) {
	var events []struct {
		Type    string `json:"type"`
		Payload struct {
			Size int `json:"size"`
		} `json:"payload"`
	}

	params := url.Values{"per_page": {strconv.Itoa(maxPerPage)}}
	if err := c.getJSON(ctx, token, "/users/"+url.PathEscape(login)+"/events", params, &events); err != nil {
		return 0, err
	}

	total := 0
	for _, ev := range events {
		if ev.Type == "PushEvent" {
			total += ev.Payload.Size
		}
	}
	return total, nil
}

// TotalStars sums stargazers across the user's most recently pushed owned
// repositories. Only the first page is counted; prolific users are
// undercounted rather than paid for with extra quota.
func (c *RESTClient) TotalStars(ctx context.Context, token, login string) (int, error) {
	var repos []struct {
		StargazersCount int `json:"stargazers_count"`
	}

	params := url.Values{
		"per_page": {strconv.Itoa(maxPerPage)},
		"type":     {"owner"},
		"sort":     {"pushed"},
	}
	if err := c.getJSON(ctx, token, "/users/"+url.PathEscape(login)+"/repos", params, &repos); err != nil {
		return 0, err
	}

	total := 0
	for _, repo := range repos {
		total += repo.StargazersCount
	}
	return total, nil
}

// getJSON performs a GET with retry on transient failures and decodes the
// response body into out.
func (c *RESTClient) getJSON(ctx context.Context, token, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	err := httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/vnd.github+json")
		if token != "" {
			req.Header.Set("Authorization", "token "+token)
		}

		observability.HTTP().OnRequest(ctx, http.MethodGet, req.URL.Host, path)
		start := time.Now()

		resp, err := c.http.Do(req)
		if err != nil {
			observability.HTTP().OnError(ctx, http.MethodGet, req.URL.Host, path, err)
			return httputil.Retryable(apperrors.Wrap(apperrors.ErrCodeConnection, err, "request to %s failed", path))
		}
		defer resp.Body.Close()
		observability.HTTP().OnResponse(ctx, http.MethodGet, req.URL.Host, path, resp.StatusCode, time.Since(start))

		if err := statusError(resp, token); err != nil {
			return err
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeConnection, err, "decoding %s response", path)
		}
		return nil
	})
	return unwrapRetryable(err)
}

// statusError maps a non-2xx response onto the error taxonomy. 5xx errors
// come back retryable; everything else is terminal.
func statusError(resp *http.Response, token string) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		msg := "GitHub API rate limit exceeded"
		if token == "" {
			msg = anonymousQuotaMessage
		}
		return &apperrors.RateLimitedError{
			ResetAt: parseResetHeader(resp.Header.Get("X-RateLimit-Reset")),
			Message: msg,
		}
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.New(apperrors.ErrCodeNotFound, "resource not found")
	case resp.StatusCode >= 500:
		return httputil.Retryable(&apperrors.UpstreamError{Status: resp.StatusCode, Message: resp.Status})
	default:
		return &apperrors.UpstreamError{Status: resp.StatusCode, Message: resp.Status}
	}
}

// parseResetHeader parses the epoch-seconds X-RateLimit-Reset value.
// Returns the zero time when the header is absent or malformed.
func parseResetHeader(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	epoch, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(epoch, 0)
}

// unwrapRetryable strips the retry marker so callers see the underlying
// taxonomy error after attempts are exhausted.
func unwrapRetryable(err error) error {
	var re *httputil.RetryableError
	if errors.As(err, &re) {
		return re.Err
	}
	return err
}
