package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/PublicAI01/publicai-staking/internal/db/model"
)

func (db *Database) GetStakeRecord(
	ctx context.Context, account string,
) (*model.StakeRecordDocument, error) {
	filter := bson.M{"_id": account}
	res := db.collection(model.StakeRecordCollection).FindOne(ctx, filter)

	var doc model.StakeRecordDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     account,
				Message: "no stake record found for this account",
			}
		}
		return nil, err
	}

	return &doc, nil
}

func (db *Database) UpsertStakeRecord(
	ctx context.Context, record *model.StakeRecordDocument,
) error {
	filter := bson.M{"_id": record.Account}
	update := bson.M{"$set": record}
	opts := options.Update().SetUpsert(true)

	_, err := db.collection(model.StakeRecordCollection).
		UpdateOne(ctx, filter, update, opts)
	return err
}

func (db *Database) DeleteStakeRecord(ctx context.Context, account string) error {
	filter := bson.M{"_id": account}
	res, err := db.collection(model.StakeRecordCollection).DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return &NotFoundError{
			Key:     account,
			Message: "no stake record found when deleting",
		}
	}
	return nil
}

// FindStakeRecords returns one page of stake records ordered by account, so
// repeated queries with increasing offsets walk a stable sequence. An offset
// beyond the collection size yields an empty page.
func (db *Database) FindStakeRecords(
	ctx context.Context, offset, limit int64,
) ([]model.StakeRecordDocument, error) {
	opts := options.Find().
		SetSort(bson.M{"_id": 1}).
		SetSkip(offset).
		SetLimit(limit)

	cursor, err := db.collection(model.StakeRecordCollection).
		Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := make([]model.StakeRecordDocument, 0, limit)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	return records, nil
}
