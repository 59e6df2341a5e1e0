package tokenclient

import (
	"context"

	"cosmossdk.io/math"
)

// TokenInterface submits transfer requests to the token ledger. Submission
// is fire-and-forget from the ledger's point of view: a nil error only means
// the request was accepted for execution, and the actual outcome arrives
// later as a settlement event on the queue.
type TokenInterface interface {
	Transfer(ctx context.Context, requestID, recipient string, amount math.Uint) error
}
