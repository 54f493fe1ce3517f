package database

import (
	"context"
	"fmt"
	"time"

	"github.com/256dpi/lungo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/lighttribe-backend/internal/config"
	"github.com/AnshRaj112/lighttribe-backend/internal/logging"
)

// Collection names.
const (
	UsersCollection    = "users"
	PostsCollection    = "posts"
	CommentsCollection = "comments"
	ImagesCollection   = "images"
	ReviewsCollection  = "reviews"
)

// Store holds the document database handle. It talks to MongoDB through
// lungo's driver-compatible interfaces so the same code can run on lungo's
// embedded engine.
type Store struct {
	Client lungo.IClient
	DB     lungo.IDatabase
	engine *lungo.Engine
}

// C returns the named collection.
func (s *Store) C(name string) lungo.ICollection {
	return s.DB.Collection(name)
}

// Connect opens the store described by cfg: MongoDB for a mongodb:// URI, the
// in-memory engine for memory://.
func Connect(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg.UseMemoryStore() {
		logging.Warn().Msg("using in-memory document store; data is lost on exit")
		return OpenMemory(cfg.DatabaseName())
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := options.Client().ApplyURI(cfg.Mongo.URI)
	opts.SetServerSelectionTimeout(10 * time.Second)

	client, err := lungo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	name := cfg.DatabaseName()
	logging.Info().Str("database", name).Msg("connected to MongoDB")
	return &Store{Client: client, DB: client.Database(name)}, nil
}

// OpenMemory opens a fresh lungo engine backed by a memory store.
func OpenMemory(dbName string) (*Store, error) {
	client, engine, err := lungo.Open(context.Background(), lungo.Options{
		Store: lungo.NewMemoryStore(),
	})
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}
	return &Store{Client: client, DB: client.Database(dbName), engine: engine}, nil
}

// Close disconnects the client and stops the embedded engine if any.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.Client.Disconnect(ctx)
	if s.engine != nil {
		s.engine.Close()
	}
	return err
}
