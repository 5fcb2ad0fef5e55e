// Package github provides the two GitHub API transports used by the
// leaderboard aggregator.
//
// [RESTClient] wraps the v3 REST API: user search (lightweight summaries),
// single-user profiles, and the best-effort event/repository lookups that
// approximate contribution counts and star totals for anonymous callers.
//
// [GraphQLClient] wraps the v4 GraphQL API: batch search returning full
// profiles in one round trip, multi-alias hydration of REST summaries, and
// single-user detail queries. GraphQL needs a bearer token; the REST API
// works unauthenticated at a much lower quota.
//
// Both transports map upstream failures onto the shared error taxonomy:
// 403/429 becomes a rate-limit error carrying the reset instant from the
// X-RateLimit-Reset header when present, 404 becomes NOT_FOUND, other
// non-2xx statuses become UPSTREAM_ERROR, and network or decode failures
// become CONNECTION_ERROR. 5xx responses and network errors are retried
// with backoff; rate limits and 404s are terminal.
package github
