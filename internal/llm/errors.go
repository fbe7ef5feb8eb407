package llm

import "errors"

// ErrService marks failures of the upstream model service (transport
// errors, non-200 responses, malformed replies). Callers map it to a
// bad-gateway style response.
var ErrService = errors.New("llm service error")
