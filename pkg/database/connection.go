// -----------------------------------------------------------------------------
// Database Connection
// -----------------------------------------------------------------------------
// The connection is the root object of the package: it owns the database
// handle, resolves the dialect from the driver name, wires the logger and
// the optional query cache, and hands out builders. Builders ask it for
// collaborators lazily and never mutate it.
//
// Open follows the usual steps: resolve the dialect, open the pool, apply
// the pool limits from the configuration, ping to verify reachability, then
// assemble the connection. The first successfully opened connection becomes
// the package default, which standalone expressions use to resolve their
// dialect.
// -----------------------------------------------------------------------------

package database

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/goragodwiriya/nowjs-crm-sub005/pkg/database/dialect"
)

// Connection bundles a database handle with the collaborators the builder
// needs: dialect, driver, logger, query cache and table-name prefixing.
type Connection struct {
	id          string
	driverName  string
	db          *sql.DB
	driver      Driver
	dialect     dialect.Dialect
	logger      Logger
	cache       QueryCache
	tablePrefix string
}

// defaultConn is used by standalone expressions to resolve a dialect and by
// Table/Builder package-level shortcuts. Set by the first Open or
// explicitly via SetDefaultConnection.
var defaultConn *Connection

// Open connects to the database described by the configuration and returns
// a ready connection. A nil configuration loads from the environment.
func Open(cfg *Config) (*Connection, error) {
	if cfg == nil {
		cfg = LoadConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d, err := dialect.ForDriver(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(sqlDriverName(cfg.Driver), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("database open failed: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Println("🔄 Connecting to database...")
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	conn := &Connection{
		id:          shortID(),
		driverName:  d.DriverName(),
		db:          db,
		driver:      NewSQLDriver(db, d),
		dialect:     d,
		logger:      NewStdLogger(nil, cfg.SlowQueryThreshold),
		tablePrefix: cfg.TablePrefix,
	}
	log.Printf("✅ Database connection established [%s, driver: %s]", conn.id, conn.driverName)

	if defaultConn == nil {
		defaultConn = conn
	}
	return conn, nil
}

// NewConnection builds a connection around a dialect only, with no
// database handle. Useful for rendering SQL without a live database and for
// tests that plug in a fake driver.
func NewConnection(d dialect.Dialect) *Connection {
	return &Connection{
		id:         shortID(),
		driverName: d.DriverName(),
		dialect:    d,
	}
}

// SetDefaultConnection replaces the package default connection.
func SetDefaultConnection(conn *Connection) {
	defaultConn = conn
}

// DefaultConnection returns the package default connection, nil when none
// was opened or set.
func DefaultConnection() *Connection {
	return defaultConn
}

// ID returns the short connection id used in logs.
func (c *Connection) ID() string {
	return c.id
}

// DriverName returns the canonical driver family name.
func (c *Connection) DriverName() string {
	return c.driverName
}

// DB returns the underlying database handle, nil for dialect-only
// connections.
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Dialect returns the SQL dialect of this connection.
func (c *Connection) Dialect() dialect.Dialect {
	return c.dialect
}

// Driver returns the statement driver.
func (c *Connection) Driver() Driver {
	return c.driver
}

// SetDriver replaces the statement driver. Tests use this to substitute a
// fake.
func (c *Connection) SetDriver(d Driver) *Connection {
	c.driver = d
	return c
}

// Logger returns the query logger, nil when logging is disabled.
func (c *Connection) Logger() Logger {
	return c.logger
}

// SetLogger replaces the query logger. A nil logger disables query
// logging.
func (c *Connection) SetLogger(l Logger) *Connection {
	c.logger = l
	return c
}

// QueryCache returns the result cache, nil when caching is disabled.
func (c *Connection) QueryCache() QueryCache {
	return c.cache
}

// SetQueryCache attaches a result cache. Builders only consult it when
// caching is requested per statement.
func (c *Connection) SetQueryCache(cache QueryCache) *Connection {
	c.cache = cache
	return c
}

// SetTablePrefix sets the physical table-name prefix applied by TableName.
func (c *Connection) SetTablePrefix(prefix string) *Connection {
	c.tablePrefix = prefix
	return c
}

// TableName maps a logical table name to its physical name.
func (c *Connection) TableName(name string) string {
	return c.tablePrefix + name
}

// Builder returns a fresh builder bound to this connection.
func (c *Connection) Builder() *QueryBuilder {
	return NewBuilder(c)
}

// Table returns a builder targeting a logical table, prefix applied.
//
// Example:
//
//	rows, err := conn.Table("orders").Where("status", "=", "paid").FetchAll()
func (c *Connection) Table(name string) *QueryBuilder {
	return NewBuilder(c).From(c.TableName(name))
}

// Close releases the database handle.
func (c *Connection) Close() error {
	if c.db == nil {
		return nil
	}
	if err := c.db.Close(); err != nil {
		log.Printf("❌ Database close failed [%s]: %v", c.id, err)
		return err
	}
	log.Printf("✅ Database connection closed [%s]", c.id)
	return nil
}

// sqlDriverName maps a dialect family name to the registered database/sql
// driver name.
func sqlDriverName(driver string) string {
	switch driver {
	case "mysql", "mariadb":
		return "mysql"
	case "sqlite", "sqlite3":
		return "sqlite3"
	case "postgres", "postgresql", "pgsql", "pgx":
		return "postgres"
	default:
		return driver
	}
}

// shortID returns a short unique id for log correlation.
func shortID() string {
	return uuid.NewString()[:8]
}
