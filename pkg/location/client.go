package location

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/git-ranked/gitranked/pkg/cache"
	"github.com/git-ranked/gitranked/pkg/httputil"
	"github.com/git-ranked/gitranked/pkg/observability"
)

const (
	defaultBaseURL = "https://nominatim.openstreetmap.org"
	defaultTimeout = 10 * time.Second

	// minQueryLen is the shortest query worth geocoding; anything shorter
	// returns no suggestions without an upstream call.
	minQueryLen = 2
)

// Suggestion is one geocoded candidate for a free-text location input.
type Suggestion struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"` // "city", "country", "state", "town" or "village"
	Country     string `json:"country"`
}

// Label returns the suggestion formatted for display: country names stand
// alone, everything else is qualified by its country.
func (s Suggestion) Label() string {
	if s.Type == "country" || s.Country == "" {
		return s.Name
	}
	return fmt.Sprintf("%s, %s", s.Name, s.Country)
}

// Client queries the Nominatim geocoding API for location suggestions.
// Responses are cached under the client's keyer namespace.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	cache     cache.Cache
	keyer     cache.Keyer
	ttl       time.Duration
}

// NewClient creates a geocoding client. Pass a NullCache to disable
// response caching.
func NewClient(store cache.Cache, keyer cache.Keyer, ttl time.Duration) *Client {
	if store == nil {
		store = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Client{
		http:      &http.Client{Timeout: defaultTimeout},
		baseURL:   defaultBaseURL,
		userAgent: "GitRanked/1.0 (https://github.com/git-ranked)",
		cache:     store,
		keyer:     keyer,
		ttl:       ttl,
	}
}

// SetBaseURL overrides the geocoder endpoint, for self-hosted Nominatim
// instances and tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

// nominatimResult is the upstream response shape.
type nominatimResult struct {
	PlaceID     int64  `json:"place_id"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		State   string `json:"state"`
		Country string `json:"country"`
	} `json:"address"`
}

// Suggest returns up to limit geocoded candidates for query. Queries
// shorter than two characters return an empty slice without any upstream
// call.
func (c *Client) Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	normalized := Normalize(query)
	if len([]rune(normalized)) < minQueryLen {
		return nil, nil
	}
	if limit < 1 {
		limit = 10
	}

	key := c.keyer.SuggestionKey(normalized)
	var cached []Suggestion
	if ok, _ := cache.GetJSON(ctx, c.cache, key, &cached); ok {
		observability.Cache().OnCacheHit(ctx, "location")
		return cached, nil
	}
	observability.Cache().OnCacheMiss(ctx, "location")

	results, err := c.search(ctx, normalized, limit)
	if err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(results))
	for _, r := range results {
		suggestions = append(suggestions, shape(r))
	}

	_ = cache.SetJSON(ctx, c.cache, key, suggestions, c.ttl)
	return suggestions, nil
}

// Resolve returns the best geocoded match for input, or nil when nothing
// matches.
func (c *Client) Resolve(ctx context.Context, input string) (*Suggestion, error) {
	suggestions, err := c.Suggest(ctx, input, 1)
	if err != nil {
		return nil, err
	}
	if len(suggestions) == 0 {
		return nil, nil
	}
	return &suggestions[0], nil
}

func (c *Client) search(ctx context.Context, query string, limit int) ([]nominatimResult, error) {
	params := url.Values{
		"format":          {"json"},
		"q":               {query},
		"addressdetails":  {"1"},
		"limit":           {fmt.Sprint(limit)},
		"accept-language": {"en"},
	}
	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	var results []nominatimResult
	err := httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", c.userAgent)

		observability.HTTP().OnRequest(ctx, http.MethodGet, req.URL.Host, req.URL.Path)
		start := time.Now()

		resp, err := c.http.Do(req)
		if err != nil {
			observability.HTTP().OnError(ctx, http.MethodGet, req.URL.Host, req.URL.Path, err)
			return httputil.Retryable(err)
		}
		defer resp.Body.Close()
		observability.HTTP().OnResponse(ctx, http.MethodGet, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

		if resp.StatusCode >= 500 {
			return httputil.Retryable(fmt.Errorf("geocoding error: status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("geocoding error: status %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(&results)
	})
	return results, err
}

// shape picks the most specific available name, falling back to the first
// display-name segment like the upstream UI does.
func shape(r nominatimResult) Suggestion {
	name := r.Address.City
	if name == "" {
		name = r.Address.Town
	}
	if name == "" {
		name = r.Address.Village
	}
	if name == "" {
		name = r.Address.State
	}
	if name == "" {
		name, _, _ = strings.Cut(r.DisplayName, ",")
	}

	return Suggestion{
		ID:          r.PlaceID,
		Name:        name,
		DisplayName: r.DisplayName,
		Type:        suggestionType(r.Type),
		Country:     r.Address.Country,
	}
}

func suggestionType(t string) string {
	switch t {
	case "country", "state", "town", "village":
		return t
	default:
		// "administrative" and unknown types present as cities.
		return "city"
	}
}
