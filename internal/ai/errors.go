package ai

import "errors"

// Upstream failures are classified, never retried, and never leave a
// partial batch behind.
var (
	ErrUpstreamCredentials = errors.New("generation service rejected credentials")
	ErrUpstreamRateLimit   = errors.New("generation service rate limit exceeded")
	ErrUpstreamGeneration  = errors.New("generation failed")
)
