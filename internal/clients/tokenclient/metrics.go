package tokenclient

import (
	"context"
	"time"

	"cosmossdk.io/math"

	"github.com/PublicAI01/publicai-staking/internal/observability/metrics"
)

type TokenClientWithMetrics struct {
	client TokenInterface
}

func NewTokenClientWithMetrics(client TokenInterface) *TokenClientWithMetrics {
	return &TokenClientWithMetrics{client: client}
}

func (t *TokenClientWithMetrics) Transfer(
	ctx context.Context, requestID, recipient string, amount math.Uint,
) error {
	startTime := time.Now()
	err := t.client.Transfer(ctx, requestID, recipient, amount)
	metrics.RecordTokenClientLatency(time.Since(startTime), "Transfer", err != nil)
	return err
}
