package tokenclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"cosmossdk.io/math"
	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/PublicAI01/publicai-staking/internal/config"
)

const transferPath = "/v1/transfer"

type TokenClient struct {
	httpClient *http.Client
	cfg        *config.TokenConfig
}

func NewTokenClient(cfg *config.TokenConfig) TokenInterface {
	return &TokenClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

type transferRequest struct {
	RequestID string `json:"request_id"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

// Transfer submits an asynchronous transfer request to the token ledger.
// Request ids make resubmission after a transport-level retry idempotent on
// the ledger side.
func (c *TokenClient) Transfer(
	ctx context.Context, requestID, recipient string, amount math.Uint,
) error {
	body, err := json.Marshal(transferRequest{
		RequestID: requestID,
		Recipient: recipient,
		Amount:    amount.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal transfer request: %w", err)
	}

	callForTransfer := func() error {
		req, err := http.NewRequestWithContext(
			ctx, http.MethodPost, c.cfg.Endpoint+transferPath, bytes.NewReader(body),
		)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return fmt.Errorf(
				"token ledger rejected transfer request: status %d, body %q",
				resp.StatusCode, respBody,
			)
		}
		return nil
	}

	if err := clientCallWithRetry(ctx, callForTransfer, c.cfg); err != nil {
		return fmt.Errorf("failed to submit transfer %s to %s: %w", requestID, recipient, err)
	}
	return nil
}

func clientCallWithRetry(
	ctx context.Context, call retry.RetryableFunc, cfg *config.TokenConfig,
) error {
	return retry.Do(call,
		retry.Context(ctx),
		retry.Attempts(cfg.MaxRetryTimes),
		retry.Delay(cfg.RetryInterval),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Debug().
				Uint("attempt", n+1).
				Uint("max_attempts", cfg.MaxRetryTimes).
				Err(err).
				Msg("failed to call token ledger, retrying with exponential backoff")
		}))
}
