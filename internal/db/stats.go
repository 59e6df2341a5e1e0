package db

import (
	"context"
	"errors"
	"time"

	"cosmossdk.io/math"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/PublicAI01/publicai-staking/internal/db/model"
)

// GetOverallStats returns the aggregate counters. A missing document reads
// as all-zero, matching a ledger that has never seen a deposit.
func (db *Database) GetOverallStats(ctx context.Context) (*model.OverallStatsDocument, error) {
	filter := bson.M{"_id": model.OverallStatsID}
	res := db.collection(model.OverallStatsCollection).FindOne(ctx, filter)

	var doc model.OverallStatsDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			zero, _ := primitive.ParseDecimal128("0")
			return &model.OverallStatsDocument{
				ID:          model.OverallStatsID,
				TotalStaked: zero,
			}, nil
		}
		return nil, err
	}

	return &doc, nil
}

// AddToOverallStats applies a completed deposit to the aggregates.
func (db *Database) AddToOverallStats(
	ctx context.Context, amount math.Uint, accountsDelta int64,
) error {
	return db.incOverallStats(ctx, amount.String(), accountsDelta)
}

// SubtractFromOverallStats applies a committed withdrawal to the aggregates.
func (db *Database) SubtractFromOverallStats(
	ctx context.Context, amount math.Uint, accountsDelta int64,
) error {
	return db.incOverallStats(ctx, "-"+amount.String(), -accountsDelta)
}

// incOverallStats uses $inc so concurrent completions on different accounts
// each apply exactly once.
func (db *Database) incOverallStats(
	ctx context.Context, stakedDelta string, accountsDelta int64,
) error {
	delta, err := primitive.ParseDecimal128(stakedDelta)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": model.OverallStatsID}
	update := bson.M{
		"$inc": bson.M{
			"total_staked":   delta,
			"total_accounts": accountsDelta,
		},
		"$set": bson.M{
			"last_updated": time.Now().Unix(),
		},
	}
	opts := options.Update().SetUpsert(true)

	_, err = db.collection(model.OverallStatsCollection).
		UpdateOne(ctx, filter, update, opts)
	return err
}
