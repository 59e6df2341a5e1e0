package model

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/PublicAI01/publicai-staking/internal/config"
)

var collections = []string{
	StakeRecordCollection,
	OperationStateCollection,
	GlobalParamsCollection,
	OverallStatsCollection,
	PendingWithdrawalCollection,
}

// Setup creates the ledger collections if they do not exist yet. All lookups
// are by _id, so no secondary indexes are needed.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	credential := options.Credential{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	clientOps := options.Client().ApplyURI(cfg.Address).SetAuth(credential)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	database := client.Database(cfg.DbName)
	existing, err := database.ListCollectionNames(ctx, map[string]any{})
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(existing))
	for _, name := range existing {
		known[name] = true
	}

	for _, name := range collections {
		if known[name] {
			continue
		}
		if err := database.CreateCollection(ctx, name); err != nil {
			return err
		}
		log.Ctx(ctx).Debug().Str("collection", name).Msg("Collection created")
	}

	return client.Disconnect(ctx)
}
