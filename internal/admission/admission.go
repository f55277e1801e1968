// package admission decides whether an inbound request may enter the
// request pipeline at all.
//
// The [Protector] interface is the boundary the pipeline sees: a request goes
// in, an allow/deny [Decision] comes out. The shipped [Engine] combines three
// checks in order: a shield pass over the request payload, automated-client
// detection, and a fixed-window rate limit bound to the playlist generation
// path. Any other implementation (a hosted protection service, for example)
// can stand in behind the same interface.
package admission

import (
	"context"
	"net/http"
)

// Denial reasons reported in [Decision.Reason].
const (
	ReasonShield      = "suspicious request"
	ReasonBot         = "automated client"
	ReasonRateLimited = "rate limit exceeded"
)

// Decision is the outcome of an admission check for one request.
//
// It is ephemeral; nothing about it is persisted beyond the request.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the decision that lets a request through.
var Allow = Decision{Allowed: true}

// Deny constructs a denial with the given reason.
func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Protector classifies a request as admissible or not.
//
// Implementations must treat the request as read-only. An error return means
// the check itself failed; callers are expected to fail closed.
type Protector interface {
	Decide(ctx context.Context, r *http.Request) (Decision, error)
}
