package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDriver implements Driver on the official MongoDB driver.
// One client serves both the startup ping and the application.
type MongoDriver struct {
	uri    string
	config Config

	mu     sync.RWMutex
	client *mongo.Client
}

func newMongoDriver(uri string, config Config) *MongoDriver {
	return &MongoDriver{uri: uri, config: config}
}

// clientOptions pins the Stable API v1 in strict mode with deprecation errors.
func (d *MongoDriver) clientOptions() *options.ClientOptions {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	opts := options.Client().
		ApplyURI(d.uri).
		SetServerAPIOptions(serverAPI)

	if d.config.ConnectTimeout > 0 {
		opts.SetConnectTimeout(d.config.ConnectTimeout)
	}
	if d.config.ServerSelectionTimeout > 0 {
		opts.SetServerSelectionTimeout(d.config.ServerSelectionTimeout)
	}
	if d.config.MaxOpenConns > 0 {
		opts.SetMaxPoolSize(uint64(d.config.MaxOpenConns))
	}
	if d.config.ConnMaxLifetime > 0 {
		opts.SetMaxConnIdleTime(d.config.ConnMaxLifetime)
	}

	return opts
}

// Connect creates the client. Settings the driver cannot parse are a
// configuration problem; reachability is checked by Ping.
func (d *MongoDriver) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		return nil
	}

	if d.config.DatabaseName == "" {
		return &BootstrapError{Kind: ConfigurationMissing, Err: errors.New("mongodb database name is empty")}
	}

	opts := d.clientOptions()
	if err := opts.Validate(); err != nil {
		return classifyOptionsError(err)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	d.client = client
	return nil
}

// classifyOptionsError separates SRV lookups that failed on the network
// from settings that can never parse.
func classifyOptionsError(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Errorf("failed to resolve mongodb seed list: %w", err)
	}
	return &BootstrapError{Kind: ConfigurationMissing, Err: fmt.Errorf("invalid mongodb connection settings: %w", err)}
}

// Ping runs {ping: 1} against the configured database.
func (d *MongoDriver) Ping(ctx context.Context) error {
	d.mu.RLock()
	client := d.client
	d.mu.RUnlock()

	if client == nil {
		return ErrNotConnected
	}

	return client.Database(d.config.DatabaseName).
		RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).
		Err()
}

// Close disconnects the client.
func (d *MongoDriver) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client == nil {
		return nil
	}
	err := d.client.Disconnect(ctx)
	d.client = nil
	return err
}

// Dialect returns DialectMongoDB.
func (d *MongoDriver) Dialect() DialectType {
	return DialectMongoDB
}

// DatabaseName returns the configured database.
func (d *MongoDriver) DatabaseName() string {
	return d.config.DatabaseName
}

// Client returns the underlying client, nil before Connect.
func (d *MongoDriver) Client() *mongo.Client {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.client
}

// Database returns the application-facing database handle, nil before Connect.
func (d *MongoDriver) Database() *mongo.Database {
	client := d.Client()
	if client == nil {
		return nil
	}
	return client.Database(d.config.DatabaseName)
}
