package leaderboard

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/git-ranked/gitranked/pkg/cache"
	apperrors "github.com/git-ranked/gitranked/pkg/errors"
	"github.com/git-ranked/gitranked/pkg/github"
	"github.com/git-ranked/gitranked/pkg/location"
	"github.com/git-ranked/gitranked/pkg/observability"
	"github.com/git-ranked/gitranked/pkg/ratelimit"
)

// RESTTransport is the subset of the REST client the aggregator uses.
type RESTTransport interface {
	SearchUsers(ctx context.Context, token, location string, sort github.Sort, perPage, page int) (*github.SearchResult, error)
	GetUser(ctx context.Context, token, login string) (*github.User, error)
	RecentCommitCount(ctx context.Context, token, login string) (int, error)
	TotalStars(ctx context.Context, token, login string) (int, error)
}

// GraphQLTransport is the subset of the GraphQL client the aggregator uses.
type GraphQLTransport interface {
	SearchUsers(ctx context.Context, token, location string, sort github.Sort, first int, after string) (*github.SearchPage, error)
	UserDetails(ctx context.Context, token string, logins []string) (map[string]github.User, error)
	User(ctx context.Context, token, login string) (*github.User, error)
}

// Config wires a Service together.
type Config struct {
	REST    RESTTransport
	GraphQL GraphQLTransport

	// Cache stores successful pages and user details. Nil disables caching.
	Cache cache.Cache
	Keyer cache.Keyer

	// Limiter gates anonymous requests. Nil disables the gate.
	Limiter *ratelimit.Limiter

	// ServerToken is the shared credential used for anonymous requests.
	ServerToken string

	Logger  *log.Logger
	Options Options
}

// Service aggregates GitHub search transports into ranked leaderboards.
type Service struct {
	rest        RESTTransport
	graphql     GraphQLTransport
	store       cache.Cache
	keyer       cache.Keyer
	limiter     *ratelimit.Limiter
	serverToken string
	logger      *log.Logger
	opts        Options
}

// NewService creates the aggregator.
func NewService(cfg Config) *Service {
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}
	if cfg.Keyer == nil {
		cfg.Keyer = cache.NewDefaultKeyer()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Service{
		rest:        cfg.REST,
		graphql:     cfg.GraphQL,
		store:       cfg.Cache,
		keyer:       cfg.Keyer,
		limiter:     cfg.Limiter,
		serverToken: cfg.ServerToken,
		logger:      cfg.Logger.With("component", "leaderboard"),
		opts:        cfg.Options.withDefaults(),
	}
}

// Search runs one leaderboard query end to end: validation, the anonymous
// rate-limit gate, the result cache, transport selection, hydration, and
// ranking. Rate limiting returns a Page with RateLimited set and a nil
// error; see the package documentation for the full decision tree.
func (s *Service) Search(ctx context.Context, req Request) (*Page, error) {
	start := time.Now()

	normalized := location.Normalize(req.Location)
	if normalized == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidLocation, "location query is empty after normalization")
	}
	sortBy, err := github.ParseSort(string(req.Sort))
	if err != nil {
		return nil, err
	}
	if req.Page < 1 {
		req.Page = 1
	}

	token := req.Token
	class := cache.ClassForToken(token)
	remaining := -1
	var limiterReset time.Time

	if token == "" {
		if s.serverToken == "" {
			return nil, apperrors.New(apperrors.ErrCodeNoServerToken, "anonymous search requires a configured server token")
		}
		if s.limiter != nil {
			res := s.limiter.Check(req.ClientID)
			remaining, limiterReset = res.Remaining, res.ResetAt
			if !res.Allowed {
				observability.Search().OnRateLimited(ctx, "limiter")
				reset := res.ResetAt
				return &Page{RateLimited: true, ResetAt: &reset, Remaining: 0, LimiterReset: reset}, nil
			}
		}
		token = s.serverToken
	}

	key := s.keyer.SearchKey(normalized, string(sortBy), req.Page, req.Cursor, class)
	var cached Page
	if ok, _ := cache.GetJSON(ctx, s.store, key, &cached); ok {
		observability.Cache().OnCacheHit(ctx, "search")
		cached.Cached = true
		cached.Remaining, cached.LimiterReset = remaining, limiterReset
		return &cached, nil
	}
	observability.Cache().OnCacheMiss(ctx, "search")
	observability.Search().OnSearchStart(ctx, normalized, string(sortBy))

	var page *Page
	if sortBy == github.SortContributions {
		page, err = s.searchContributions(ctx, token, normalized, req.Page)
	} else {
		page, err = s.searchDirect(ctx, token, req.Token != "", normalized, sortBy, req)
	}
	observability.Search().OnSearchComplete(ctx, normalized, string(sortBy), pageLen(page), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	// Rate-limited pages must never shadow a later successful fetch.
	if !page.RateLimited {
		if data, err := json.Marshal(page); err == nil && s.store.Set(ctx, key, data, s.opts.CacheTTL) == nil {
			observability.Cache().OnCacheSet(ctx, "search", len(data))
		}
	}
	page.Remaining, page.LimiterReset = remaining, limiterReset
	return page, nil
}

// searchDirect serves the sorts GitHub understands natively. Callers with
// their own token get GraphQL with a single REST fallback when the search
// connection comes back empty; anonymous traffic goes straight to REST.
func (s *Service) searchDirect(ctx context.Context, token string, callerToken bool, loc string, sortBy github.Sort, req Request) (*Page, error) {
	if callerToken {
		gp, err := s.graphql.SearchUsers(ctx, token, loc, sortBy, s.opts.FetchSize, req.Cursor)
		switch {
		case apperrors.IsRateLimited(err):
			observability.Search().OnRateLimited(ctx, "upstream")
			return rateLimitedPage(err), nil
		case err != nil:
			return nil, err
		case len(gp.Users) > 0:
			return &Page{
				Users:       gp.Users,
				TotalCount:  gp.UserCount,
				HasNextPage: gp.HasNextPage,
				EndCursor:   gp.EndCursor,
			}, nil
		}
		observability.Search().OnTransportFallback(ctx, loc, "graphql search returned no users")
	}
	return s.searchREST(ctx, token, loc, sortBy, req.Page)
}

func (s *Service) searchREST(ctx context.Context, token, loc string, sortBy github.Sort, page int) (*Page, error) {
	res, err := s.rest.SearchUsers(ctx, token, loc, sortBy, s.opts.FetchSize, page)
	if apperrors.IsRateLimited(err) {
		observability.Search().OnRateLimited(ctx, "upstream")
		return rateLimitedPage(err), nil
	}
	if err != nil {
		return nil, err
	}
	if len(res.Items) == 0 {
		return &Page{TotalCount: res.TotalCount}, nil
	}

	users, err := s.hydrate(ctx, token, res.Items)
	if err != nil {
		return nil, err
	}
	rankUsers(users, sortBy)

	return &Page{
		Users:       users,
		TotalCount:  res.TotalCount,
		HasNextPage: page*s.opts.FetchSize < res.TotalCount,
	}, nil
}

// hydrate expands search summaries into full profiles. With a token the
// whole batch goes through chunked GraphQL aliases; without one each
// summary costs a REST call, fanned out with per-item isolation. Either
// way individual failures are dropped, but losing every profile while
// summaries existed is an error, not an empty success.
func (s *Service) hydrate(ctx context.Context, token string, items []github.Summary) ([]github.User, error) {
	if token != "" {
		return s.hydrateGraphQL(ctx, token, items)
	}
	return s.hydrateREST(ctx, items)
}

func (s *Service) hydrateGraphQL(ctx context.Context, token string, items []github.Summary) ([]github.User, error) {
	logins := make([]string, len(items))
	for i, it := range items {
		logins[i] = it.Login
	}

	details, err := s.graphql.UserDetails(ctx, token, logins)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeHydrationFailed, "could not hydrate any of %d search results", len(items))
	}

	// Preserve summary order; re-sorting happens after hydration.
	users := make([]github.User, 0, len(items))
	for _, it := range items {
		if u, ok := details[strings.ToLower(it.Login)]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *Service) hydrateREST(ctx context.Context, items []github.Summary) ([]github.User, error) {
	results := make([]*github.User, len(items))
	sem := make(chan struct{}, s.opts.HydrateConcurrency)
	var wg sync.WaitGroup

	for i, it := range items {
		i, it := i, it
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			u, err := s.rest.GetUser(ctx, "", it.Login)
			if err != nil {
				s.logger.Debug("dropping unhydratable result", "login", it.Login, "err", err)
				return
			}
			results[i] = u
		}()
	}
	wg.Wait()

	users := make([]github.User, 0, len(items))
	for _, u := range results {
		if u != nil {
			users = append(users, *u)
		}
	}
	if len(users) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeHydrationFailed, "could not hydrate any of %d search results", len(items))
	}
	return users, nil
}

// searchContributions serves the sort GitHub cannot do: accumulate under
// the stand-in sort, rank by recent contributions, slice locally.
func (s *Service) searchContributions(ctx context.Context, token, loc string, page int) (*Page, error) {
	all, total, partial, err := s.accumulate(ctx, token, loc)
	if err != nil {
		if apperrors.IsRateLimited(err) {
			observability.Search().OnRateLimited(ctx, "upstream")
			return rateLimitedPage(err), nil
		}
		return nil, err
	}

	rankUsers(all, github.SortContributions)
	slice, more := paginate(all, page, s.opts.PageSize)

	return &Page{
		Users:       slice,
		TotalCount:  total,
		HasNextPage: more,
		Partial:     partial,
	}, nil
}

// accumulate follows the search connection's cursors until the cap, the
// end of the result set, or a repeated cursor. A failure after the first
// page fails the whole run unless KeepPartial is set.
func (s *Service) accumulate(ctx context.Context, token, loc string) (users []github.User, total int, partial bool, err error) {
	var (
		cursor string
		pages  int
		seen   = make(map[string]bool)
	)

	for len(users) < s.opts.MaxAccumulate {
		gp, err := s.graphql.SearchUsers(ctx, token, loc, github.SortContributions, s.opts.FetchSize, cursor)
		if err != nil {
			if pages > 0 && s.opts.KeepPartial {
				s.logger.Warn("accumulation stopped early", "pages", pages, "collected", len(users), "err", err)
				return users, total, true, nil
			}
			return nil, 0, false, err
		}

		pages++
		total = gp.UserCount
		users = append(users, gp.Users...)
		observability.Search().OnAccumulatePage(ctx, loc, pages, len(users))

		if !gp.HasNextPage || gp.EndCursor == "" || seen[gp.EndCursor] {
			break
		}
		seen[gp.EndCursor] = true
		cursor = gp.EndCursor
	}

	if len(users) > s.opts.MaxAccumulate {
		users = users[:s.opts.MaxAccumulate]
	}
	return users, total, false, nil
}

func rateLimitedPage(err error) *Page {
	p := &Page{RateLimited: true}
	if reset := apperrors.RateLimitReset(err); !reset.IsZero() {
		p.ResetAt = &reset
	}
	return p
}

func pageLen(p *Page) int {
	if p == nil {
		return 0
	}
	return len(p.Users)
}
