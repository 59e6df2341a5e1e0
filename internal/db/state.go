package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/PublicAI01/publicai-staking/internal/db/model"
	"github.com/PublicAI01/publicai-staking/internal/types"
	"github.com/PublicAI01/publicai-staking/internal/utils"
)

// GetOperationState returns the account's operation state. A missing
// document reads as StateIdle.
func (db *Database) GetOperationState(
	ctx context.Context, account string,
) (types.OperationState, error) {
	filter := bson.M{"_id": account}
	res := db.collection(model.OperationStateCollection).FindOne(ctx, filter)

	var doc model.OperationStateDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return types.StateIdle, nil
		}
		return "", err
	}

	return doc.State, nil
}

// UpdateOperationState transitions the account's operation state to newState
// if and only if the current state is one of qualifiedPreviousStates. The
// transition is a single conditional update, so two racing operations on the
// same account cannot both pass; the loser gets a StateConflictError.
//
// When StateIdle qualifies, a missing document also qualifies: the update is
// an upsert and a losing race surfaces as a duplicate key on _id.
func (db *Database) UpdateOperationState(
	ctx context.Context,
	account string,
	qualifiedPreviousStates []types.OperationState,
	newState types.OperationState,
) error {
	qualifiedStateStrs := make([]string, len(qualifiedPreviousStates))
	for i, state := range qualifiedPreviousStates {
		qualifiedStateStrs[i] = state.String()
	}

	filter := bson.M{
		"_id":   account,
		"state": bson.M{"$in": qualifiedStateStrs},
	}
	update := bson.M{
		"$set": bson.M{
			"state":      newState.String(),
			"updated_at": time.Now(),
		},
	}

	upsert := utils.Contains(qualifiedPreviousStates, types.StateIdle)
	opts := options.FindOneAndUpdate().
		SetUpsert(upsert).
		SetReturnDocument(options.After)

	res := db.collection(model.OperationStateCollection).
		FindOneAndUpdate(ctx, filter, update, opts)

	err := res.Err()
	if err == nil {
		return nil
	}
	// With upsert the conditional filter cannot match a document holding a
	// non-qualified state, so the insert collides on _id instead. Without
	// upsert a non-qualified current state simply matches nothing.
	if mongo.IsDuplicateKeyError(err) || errors.Is(err, mongo.ErrNoDocuments) {
		return &StateConflictError{
			Account: account,
			Message: fmt.Sprintf(
				"operation state of %s is not in %v, cannot transition to %s",
				account, qualifiedStateStrs, newState,
			),
		}
	}

	return err
}
