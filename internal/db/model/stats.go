package model

import (
	"cosmossdk.io/math"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const OverallStatsCollection = "overall_stats"

// OverallStatsID is the _id of the singleton aggregate counters document.
const OverallStatsID = "overall_stats"

// OverallStatsDocument carries the derived aggregates. Invariants:
// TotalStaked equals the sum of all stake record amounts and TotalAccounts
// equals the number of stake records. Both are maintained incrementally with
// $inc so each completed operation applies exactly once even when operations
// on different accounts finish concurrently. TotalStaked is a Decimal128 so
// $inc works on it server-side.
type OverallStatsDocument struct {
	ID            string               `bson:"_id"`
	TotalStaked   primitive.Decimal128 `bson:"total_staked"`
	TotalAccounts int64                `bson:"total_accounts"`
	LastUpdated   int64                `bson:"last_updated"`
}

func (d *OverallStatsDocument) TotalStakedUint() math.Uint {
	s := d.TotalStaked.String()
	if s == "" || s == "0" {
		return math.ZeroUint()
	}
	return math.NewUintFromString(s)
}
