package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// DefaultDatabase is used when neither MONGO_DB nor the URI names a database.
const DefaultDatabase = "niknak_chat"

// Mongo owns the process-wide client and the selected database.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// ConnectMongo dials MongoDB, pings it and selects the database.
// dbName wins over the database in the URI path.
func ConnectMongo(ctx context.Context, mongoURI, dbName string) (*Mongo, error) {
	name, err := DatabaseName(mongoURI, dbName)
	if err != nil {
		return nil, err
	}

	// Atlas clusters can take a while to answer the first handshake
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(mongoURI).
		SetServerSelectionTimeout(10 * time.Second).
		SetTimeout(15 * time.Second)

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	slog.Info("✅ Connected to MongoDB", "database", name)
	return &Mongo{Client: client, DB: client.Database(name)}, nil
}

// DatabaseName picks the database: explicit name, then URI path, then DefaultDatabase.
func DatabaseName(mongoURI, dbName string) (string, error) {
	if dbName != "" {
		return dbName, nil
	}
	cs, err := connstring.Parse(mongoURI)
	if err != nil {
		return "", fmt.Errorf("parse mongo uri: %w", err)
	}
	if cs.Database != "" {
		return cs.Database, nil
	}
	return DefaultDatabase, nil
}

func (m *Mongo) Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

// Ping checks the server is reachable; used by the health endpoint.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, nil)
}
