package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/PublicAI01/publicai-staking/internal/db/model"
)

// SavePendingWithdrawal records the withdrawal intent before the stake
// record is optimistically removed. The per-account operation lock makes a
// duplicate here impossible in normal operation; it is still surfaced as a
// typed error rather than swallowed.
func (db *Database) SavePendingWithdrawal(
	ctx context.Context, doc *model.PendingWithdrawalDocument,
) error {
	_, err := db.collection(model.PendingWithdrawalCollection).InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &DuplicateKeyError{
				Key:     doc.Account,
				Message: "pending withdrawal already exists for this account",
			}
		}
		return err
	}
	return nil
}

func (db *Database) GetPendingWithdrawal(
	ctx context.Context, account string,
) (*model.PendingWithdrawalDocument, error) {
	filter := bson.M{"_id": account}
	res := db.collection(model.PendingWithdrawalCollection).FindOne(ctx, filter)

	var doc model.PendingWithdrawalDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     account,
				Message: "no pending withdrawal found for this account",
			}
		}
		return nil, err
	}

	return &doc, nil
}

func (db *Database) DeletePendingWithdrawal(ctx context.Context, account string) error {
	filter := bson.M{"_id": account}
	res, err := db.collection(model.PendingWithdrawalCollection).DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return &NotFoundError{
			Key:     account,
			Message: "no pending withdrawal found when deleting",
		}
	}
	return nil
}
