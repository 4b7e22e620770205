package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/qmodel/backend/pkg/logger"
)

// ErrCollectionNotFound reports a query against a project/level whose
// backing collection has not been provisioned.
var ErrCollectionNotFound = errors.New("collection does not exist")

type Options struct {
	URI               string
	Host              string
	Port              int
	Database          string
	Username          string
	Password          string
	ConnectTimeoutSec int
}

func (o Options) uri() string {
	if o.URI != "" {
		return o.URI
	}
	if o.Username != "" && o.Password != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%d", o.Username, o.Password, o.Host, o.Port)
	}
	return fmt.Sprintf("mongodb://%s:%d", o.Host, o.Port)
}

type Client struct {
	client   *mongo.Client
	database *mongo.Database
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	timeout := time.Duration(opts.ConnectTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	clientOpts := options.Client().ApplyURI(opts.uri()).SetConnectTimeout(timeout)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	database := client.Database(opts.Database)
	if err := database.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logger.Info("Mongo client initialized",
		zap.String("host", opts.Host),
		zap.String("database", opts.Database),
	)

	return &Client{client: client, database: database}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

func (c *Client) Database() *mongo.Database {
	return c.database
}

// ListCollectionNames returns the names of all collections in the database.
func (c *Client) ListCollectionNames(ctx context.Context) ([]string, error) {
	names, err := c.database.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return names, nil
}

// CollectionExists reports whether the named collection has been created.
func (c *Client) CollectionExists(ctx context.Context, name string) (bool, error) {
	names, err := c.database.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, fmt.Errorf("failed to list collections: %w", err)
	}
	return len(names) > 0, nil
}

// RequireCollection fails fast when the named collection is missing. A
// missing collection is a configuration error, never a silent empty result.
func (c *Client) RequireCollection(ctx context.Context, name string) error {
	exists, err := c.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("collection %q: %w", name, ErrCollectionNotFound)
	}
	return nil
}

// CreateCollectionWithValidator provisions a collection guarded by a
// JSON-schema validator. Returns false without error when the collection
// already exists.
func (c *Client) CreateCollectionWithValidator(ctx context.Context, name string, schema bson.M) (bool, error) {
	exists, err := c.CollectionExists(ctx, name)
	if err != nil {
		return false, err
	}
	if exists {
		logger.Debug("Collection already exists", zap.String("collection", name))
		return false, nil
	}

	opts := options.CreateCollection().SetValidator(bson.M{"$jsonSchema": schema})
	if err := c.database.CreateCollection(ctx, name, opts); err != nil {
		return false, fmt.Errorf("failed to create collection %q: %w", name, err)
	}

	logger.Info("Collection created", zap.String("collection", name))
	return true, nil
}
