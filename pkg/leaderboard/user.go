package leaderboard

import (
	"context"
	"strings"

	"github.com/git-ranked/gitranked/pkg/cache"
	apperrors "github.com/git-ranked/gitranked/pkg/errors"
	"github.com/git-ranked/gitranked/pkg/github"
	"github.com/git-ranked/gitranked/pkg/observability"
)

// User fetches one fully hydrated profile. With a usable token the whole
// profile comes from a single GraphQL query; otherwise the REST base
// profile is enriched with best-effort event and repository lookups whose
// failures leave the derived metrics unknown rather than zero.
//
// USER_NOT_FOUND is returned only when the base profile lookup itself
// fails; a missing metric never fails the request.
func (s *Service) User(ctx context.Context, login, token string) (*github.User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "login is required")
	}

	class := cache.ClassForToken(token)
	key := s.keyer.UserKey(strings.ToLower(login), class)

	var cached github.User
	if ok, _ := cache.GetJSON(ctx, s.store, key, &cached); ok {
		observability.Cache().OnCacheHit(ctx, "user")
		return &cached, nil
	}
	observability.Cache().OnCacheMiss(ctx, "user")

	effective := token
	if effective == "" {
		effective = s.serverToken
	}

	var user *github.User
	if effective != "" {
		u, err := s.graphql.User(ctx, effective, login)
		switch {
		case err == nil:
			user = u
		case apperrors.Is(err, apperrors.ErrCodeUserNotFound):
			return nil, err
		default:
			s.logger.Debug("graphql profile fetch failed, using rest", "login", login, "err", err)
		}
	}

	if user == nil {
		u, err := s.fetchUserREST(ctx, effective, login)
		if err != nil {
			return nil, err
		}
		user = u
	}

	if err := cache.SetJSON(ctx, s.store, key, user, s.opts.CacheTTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "user", 0)
	}
	return user, nil
}

func (s *Service) fetchUserREST(ctx context.Context, token, login string) (*github.User, error) {
	user, err := s.rest.GetUser(ctx, token, login)
	if err != nil {
		return nil, err
	}

	if commits, err := s.rest.RecentCommitCount(ctx, token, login); err == nil {
		user.RecentActivity = &commits
	} else {
		s.logger.Debug("recent activity unavailable", "login", login, "err", err)
	}
	if stars, err := s.rest.TotalStars(ctx, token, login); err == nil {
		user.TotalStars = &stars
	} else {
		s.logger.Debug("star total unavailable", "login", login, "err", err)
	}
	return user, nil
}
