// Package database provides database abstraction and connection management.
// MongoDB is the production store; PostgreSQL, MySQL and SQLite are accepted
// for local development. The dialect is detected from the connection string.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// DialectType represents the type of database dialect
type DialectType string

const (
	DialectMongoDB  DialectType = "mongodb"
	DialectPostgres DialectType = "postgres"
	DialectMySQL    DialectType = "mysql"
	DialectSQLite   DialectType = "sqlite"
)

// Driver defines the lifecycle of a database connection.
type Driver interface {
	// Connect opens the connection. It does not prove the deployment is reachable.
	Connect(ctx context.Context) error

	// Ping issues a lightweight reachability probe.
	Ping(ctx context.Context) error

	// Close releases the connection. Closing twice is a no-op.
	Close(ctx context.Context) error

	// Dialect returns the database dialect type
	Dialect() DialectType

	// DatabaseName returns the database the probe and application use.
	DatabaseName() string
}

// Config holds database connection configuration
type Config struct {
	ConnectionString string

	// DatabaseName is the MongoDB database. SQL dialects derive it from the DSN.
	DatabaseName string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
}

// SQLDriver implements Driver on database/sql.
type SQLDriver struct {
	mu      sync.RWMutex
	db      *sql.DB
	dialect DialectType
	dsn     string
	name    string
	config  Config
}

// Connect opens the pool. database/sql connects lazily, so the first real
// contact with the server happens in Ping.
func (d *SQLDriver) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db != nil {
		return nil
	}

	driverName := string(d.dialect)
	db, err := sql.Open(driverName, d.dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(d.config.MaxOpenConns)
	db.SetMaxIdleConns(d.config.MaxIdleConns)
	db.SetConnMaxLifetime(d.config.ConnMaxLifetime)

	d.db = db
	return nil
}

// Ping verifies the connection to the database is alive
func (d *SQLDriver) Ping(ctx context.Context) error {
	db := d.DB()
	if db == nil {
		return ErrNotConnected
	}
	return db.PingContext(ctx)
}

// Close closes the database connection
func (d *SQLDriver) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

// Dialect returns the database dialect type
func (d *SQLDriver) Dialect() DialectType {
	return d.dialect
}

// DatabaseName returns the configured name, or the DSN when none was set.
func (d *SQLDriver) DatabaseName() string {
	return d.name
}

// DB returns the underlying *sql.DB instance, nil before Connect.
func (d *SQLDriver) DB() *sql.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db
}

// NewDriver creates a new database driver based on the connection string
func NewDriver(config Config) (Driver, error) {
	dialect, dsn, err := detectDialect(config.ConnectionString)
	if err != nil {
		return nil, err
	}

	if dialect == DialectMongoDB {
		return newMongoDriver(dsn, config), nil
	}

	name := config.DatabaseName
	if name == "" {
		name = dsnName(dialect, dsn)
	}

	return &SQLDriver{
		dialect: dialect,
		dsn:     dsn,
		name:    name,
		config:  config,
	}, nil
}

// dsnName picks a printable database name out of a SQL DSN without ever
// returning credentials.
func dsnName(dialect DialectType, dsn string) string {
	switch dialect {
	case DialectSQLite:
		return dsn
	case DialectMySQL:
		if _, after, ok := strings.Cut(dsn, "/"); ok {
			name, _, _ := strings.Cut(after, "?")
			return name
		}
	case DialectPostgres:
		for _, field := range strings.Fields(dsn) {
			if name, ok := strings.CutPrefix(field, "dbname="); ok {
				return name
			}
		}
		if i := strings.LastIndex(dsn, "/"); i >= 0 {
			name, _, _ := strings.Cut(dsn[i+1:], "?")
			return name
		}
	}
	return ""
}

// detectDialect detects the database dialect from the connection string
func detectDialect(connectionString string) (DialectType, string, error) {
	if connectionString == "" {
		return "", "", fmt.Errorf("connection string is empty")
	}

	lower := strings.ToLower(connectionString)

	if strings.HasPrefix(lower, "mongodb://") || strings.HasPrefix(lower, "mongodb+srv://") {
		return DialectMongoDB, connectionString, nil
	}

	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return DialectPostgres, connectionString, nil
	}

	if strings.HasPrefix(lower, "mysql://") {
		// go-sql-driver expects a bare DSN
		dsn := connectionString[len("mysql://"):]
		return DialectMySQL, dsn, nil
	}

	if strings.HasPrefix(lower, "sqlite://") {
		dsn := connectionString[len("sqlite://"):]

		// share one in-memory database between pooled connections
		if dsn == ":memory:" {
			dsn = "file::memory:?mode=memory&cache=shared"
		}

		return DialectSQLite, dsn, nil
	}

	// user:password@tcp(host:port)/database
	if strings.Contains(lower, "@tcp(") || strings.Contains(lower, "charset=") {
		return DialectMySQL, connectionString, nil
	}

	if lower == ":memory:" || strings.HasSuffix(lower, ".db") || strings.HasSuffix(lower, ".sqlite") || strings.HasSuffix(lower, ".sqlite3") {
		return DialectSQLite, connectionString, nil
	}

	if strings.Contains(lower, "host=") || strings.Contains(lower, "dbname=") {
		return DialectPostgres, connectionString, nil
	}

	return "", "", fmt.Errorf("unable to detect database dialect from connection string: %s", Redact(connectionString))
}
