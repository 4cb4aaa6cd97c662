package sourcing

import "errors"

// Source adapter errors. Adapters log these and degrade to empty results;
// they are never propagated raw to the reconciliation engine.
var (
	ErrSourceNotConfigured   = errors.New("sourcing: source platform not configured")
	ErrSourceUnavailable     = errors.New("sourcing: source temporarily unavailable")
	ErrSourceRequestFailed   = errors.New("sourcing: source request failed")
	ErrSourceInvalidResponse = errors.New("sourcing: invalid source response")
	ErrSourceAuthFailed      = errors.New("sourcing: source authentication failed")
	ErrSourceRateLimited     = errors.New("sourcing: source rate limited")
)
