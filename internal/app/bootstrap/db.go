// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	documentstore "github.com/dalemusser/teamspace/internal/app/store/documents"
	identitystore "github.com/dalemusser/teamspace/internal/app/store/identities"
	memberstore "github.com/dalemusser/teamspace/internal/app/store/members"
	modulestore "github.com/dalemusser/teamspace/internal/app/store/modules"
	notificationstore "github.com/dalemusser/teamspace/internal/app/store/notifications"
	"github.com/dalemusser/teamspace/internal/app/store/oauthstate"
	organizationstore "github.com/dalemusser/teamspace/internal/app/store/organizations"
	partnerstore "github.com/dalemusser/teamspace/internal/app/store/partners"
	"github.com/dalemusser/teamspace/internal/app/store/passwordreset"
	teamstore "github.com/dalemusser/teamspace/internal/app/store/teams"
	workspacestore "github.com/dalemusser/teamspace/internal/app/store/workspaces"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection and verifies it with a
// ping before any schema or handler work begins.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connecting to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return DBDeps{}, fmt.Errorf("pinging MongoDB: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the indexes every store declares. Index creation
// is idempotent; running it on every boot keeps new deployments and
// existing ones aligned.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	ensurers := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"identities", identitystore.New(db).EnsureIndexes},
		{"organizations", organizationstore.New(db).EnsureIndexes},
		{"teams", teamstore.New(db).EnsureIndexes},
		{"partners", partnerstore.New(db).EnsureIndexes},
		{"workspaces", workspacestore.New(db).EnsureIndexes},
		{"modules", modulestore.New(db).EnsureIndexes},
		{"documents", documentstore.New(db).EnsureIndexes},
		{"members", memberstore.New(db).EnsureIndexes},
		{"notifications", notificationstore.New(db).EnsureIndexes},
		{"oauth_states", oauthstate.New(db).EnsureIndexes},
		{"password_resets", passwordreset.New(db, appCfg.PasswordResetExpiry).EnsureIndexes},
	}

	for _, e := range ensurers {
		if err := e.fn(ctx); err != nil {
			return fmt.Errorf("ensuring %s indexes: %w", e.name, err)
		}
	}

	logger.Info("MongoDB indexes ensured", zap.Int("stores", len(ensurers)))
	return nil
}
