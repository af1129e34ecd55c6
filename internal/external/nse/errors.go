package nse

import "errors"

// ErrSourceUnavailable marks an upstream endpoint that failed after all
// retries, or a file that permanently does not exist for the requested
// date. It fails only that endpoint's contribution to the run.
var ErrSourceUnavailable = errors.New("upstream source unavailable")
