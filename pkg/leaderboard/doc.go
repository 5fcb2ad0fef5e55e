// Package leaderboard turns raw GitHub search transports into ranked,
// paginated developer leaderboards.
//
// [Service.Search] is the aggregation entry point. It normalizes the
// location query, gates anonymous callers through the shared-quota rate
// limiter, consults the result cache, picks a transport (GraphQL when the
// caller brought a token, REST on the shared server token otherwise, with
// a single REST fallback when GraphQL finds nobody), hydrates lightweight
// summaries into full profiles, and re-sorts client-side.
//
// The contributions sort has no upstream equivalent, so the service
// accumulates result pages under a stand-in sort by cursor continuation,
// ranks the accumulated set by recent contribution count, and slices it
// into fixed display pages.
//
// Rate limiting is a result, not an error: limiter denials and upstream
// 403/429 responses produce a Page with RateLimited set and a nil error.
// Everything else surfaces as a typed error from pkg/errors.
package leaderboard
