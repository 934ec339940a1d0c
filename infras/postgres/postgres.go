package postgres

//nolint:revive
import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"deskhub/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	driverName         = "postgres"
	maxIdleConnections = 10
	maxOpenConnections = 10
)

// Connection holds separate pools for reads and writes. Transactions always use Write.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func New(cfg *config.Config) *Connection {
	pg := cfg.DB.Postgres
	retry := retryPolicy{attempts: pg.MaxRetry, wait: time.Duration(pg.RetryWaitTime) * time.Second}

	return &Connection{
		Read:  connect("read", DSN(pg.Read, pg.Prefix, nil), retry),
		Write: connect("write", DSN(pg.Write, pg.Prefix, nil), retry),
	}
}

// Close releases both pools.
func (c *Connection) Close() error {
	var errs []error

	for _, db := range []*sqlx.DB{c.Read, c.Write} {
		if db == nil {
			continue
		}

		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to close database connections: %w", err)
	}

	return nil
}

// DSN renders a node as a postgres URL. prefix is prepended to the database name, extra is merged into the query.
func DSN(node config.PostgresNode, prefix string, extra url.Values) string {
	query := url.Values{}
	query.Set("sslmode", node.SSLMode)

	if node.Timezone != "" {
		query.Set("timezone", node.Timezone)
	}

	for key, values := range extra {
		query[key] = values
	}

	return (&url.URL{
		Scheme:   driverName,
		User:     url.UserPassword(node.Username, node.Password),
		Host:     net.JoinHostPort(node.Host, node.Port),
		Path:     "/" + prefix + node.Name,
		RawQuery: query.Encode(),
	}).String()
}

type retryPolicy struct {
	attempts int
	wait     time.Duration
}

// connect retries until the database answers and exits the process when it never does.
func connect(name, dsn string, retry retryPolicy) *sqlx.DB {
	attempts := max(retry.attempts, 1)

	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := sqlx.Connect(driverName, dsn)
		if err == nil {
			db.SetMaxIdleConns(maxIdleConnections)
			db.SetMaxOpenConns(maxOpenConnections)

			log.Info().Str("pool", name).Msg("Connected to database")

			return db
		}

		log.Error().Err(err).Str("pool", name).Int("attempt", attempt).Msg("Failed connecting to database, retrying")

		time.Sleep(retry.wait)
	}

	log.Fatal().Str("pool", name).Int("attempts", attempts).Msg("Giving up connecting to database")

	return nil
}
