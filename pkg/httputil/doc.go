// Package httputil provides HTTP client helpers shared by the GitHub and
// geocoding transports: retryable-error tagging and retry with exponential
// backoff.
//
// Transient failures (network errors, 5xx responses) are wrapped with
// [RetryableError] at the transport layer; [Retry] re-attempts only those.
// Rate-limit responses (403/429) and 404s are never retried; they are
// terminal outcomes the aggregator maps to result values.
package httputil
