package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/PublicAI01/publicai-staking/internal/db/model"
)

// InitGlobalParams seeds the singleton parameters document if it does not
// exist yet. An already-initialized ledger is left untouched, so config
// changes never silently override owner-set values.
func (db *Database) InitGlobalParams(
	ctx context.Context, params *model.GlobalParamsDocument,
) error {
	params.ID = model.GlobalParamsID

	filter := bson.M{"_id": model.GlobalParamsID}
	update := bson.M{"$setOnInsert": params}
	opts := options.Update().SetUpsert(true)

	_, err := db.collection(model.GlobalParamsCollection).
		UpdateOne(ctx, filter, update, opts)
	return err
}

func (db *Database) GetGlobalParams(ctx context.Context) (*model.GlobalParamsDocument, error) {
	filter := bson.M{"_id": model.GlobalParamsID}
	res := db.collection(model.GlobalParamsCollection).FindOne(ctx, filter)

	var doc model.GlobalParamsDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     model.GlobalParamsID,
				Message: "global params not initialized",
			}
		}
		return nil, err
	}

	return &doc, nil
}

func (db *Database) SetStakePaused(ctx context.Context, paused bool) error {
	return db.setGlobalParamsField(ctx, "stake_paused", paused)
}

func (db *Database) SetLockDuration(ctx context.Context, lockDurationSecs int64) error {
	return db.setGlobalParamsField(ctx, "lock_duration_secs", lockDurationSecs)
}

func (db *Database) SetRequiredStakeAmount(ctx context.Context, amount string) error {
	return db.setGlobalParamsField(ctx, "required_stake_amount", amount)
}

func (db *Database) SetOwner(ctx context.Context, owner string) error {
	return db.setGlobalParamsField(ctx, "owner", owner)
}

func (db *Database) setGlobalParamsField(
	ctx context.Context, field string, value any,
) error {
	filter := bson.M{"_id": model.GlobalParamsID}
	update := bson.M{"$set": bson.M{field: value}}

	res, err := db.collection(model.GlobalParamsCollection).
		UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return &NotFoundError{
			Key:     model.GlobalParamsID,
			Message: "global params not initialized",
		}
	}
	return nil
}
