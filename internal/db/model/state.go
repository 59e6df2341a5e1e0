package model

import (
	"time"

	"github.com/PublicAI01/publicai-staking/internal/types"
)

const OperationStateCollection = "operation_states"

// OperationStateDocument is the per-account mutual-exclusion tag. A missing
// document is equivalent to StateIdle.
type OperationStateDocument struct {
	Account   string               `bson:"_id"`
	State     types.OperationState `bson:"state"`
	UpdatedAt time.Time            `bson:"updated_at"`
}
