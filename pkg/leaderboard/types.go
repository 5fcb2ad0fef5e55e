package leaderboard

import (
	"time"

	"github.com/git-ranked/gitranked/pkg/github"
)

// Request describes one leaderboard query.
type Request struct {
	// Location is the raw, unnormalized location input.
	Location string

	// Sort is the requested ordering. Zero value means followers.
	Sort github.Sort

	// Page is the 1-based display page. Zero means page 1.
	Page int

	// Cursor continues a previous GraphQL result set. Ignored by the REST
	// transport and by the contributions sort, which manages its own
	// cursors internally.
	Cursor string

	// Token is the caller-supplied API token. Empty means anonymous: the
	// request is gated by the rate limiter and served with the shared
	// server token.
	Token string

	// ClientID identifies the caller for rate limiting. Only consulted
	// when Token is empty.
	ClientID string
}

// Page is one display page of a leaderboard.
//
// A rate-limited page carries RateLimited plus an optional ResetAt and no
// users; it is a well-formed result, not an error, and is never cached.
type Page struct {
	Users       []github.User `json:"users"`
	TotalCount  int           `json:"total_count"`
	HasNextPage bool          `json:"hasNextPage"`
	EndCursor   string        `json:"endCursor,omitempty"`
	RateLimited bool          `json:"rateLimited,omitempty"`
	ResetAt     *time.Time    `json:"resetAt,omitempty"`

	// Partial marks a contributions page built from an incomplete
	// accumulation run (KeepPartial option only).
	Partial bool `json:"partial,omitempty"`

	// Cached reports that this page came from the result cache.
	Cached bool `json:"-"`

	// Remaining and LimiterReset describe the anonymous quota after this
	// request. Remaining is -1 when the request was not limiter-gated.
	Remaining    int       `json:"-"`
	LimiterReset time.Time `json:"-"`
}

// Options tune the aggregation pipeline. The zero value uses defaults.
type Options struct {
	// PageSize is the display page size. Default 50.
	PageSize int

	// FetchSize is the upstream page size. Default 50.
	FetchSize int

	// MaxAccumulate caps how many users a contributions search will
	// accumulate before ranking. Default 1000.
	MaxAccumulate int

	// CacheTTL is how long successful pages and user details stay cached.
	// Default 5 minutes.
	CacheTTL time.Duration

	// KeepPartial returns what accumulated so far when a contributions
	// run fails after the first page, instead of failing the request.
	KeepPartial bool

	// HydrateConcurrency bounds parallel per-user REST hydration.
	// Default 8.
	HydrateConcurrency int
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = 50
	}
	if o.FetchSize <= 0 {
		o.FetchSize = 50
	}
	if o.MaxAccumulate <= 0 {
		o.MaxAccumulate = 1000
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 5 * time.Minute
	}
	if o.HydrateConcurrency <= 0 {
		o.HydrateConcurrency = 8
	}
	return o
}
