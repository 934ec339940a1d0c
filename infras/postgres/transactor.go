package postgres

//go:generate go run go.uber.org/mock/mockgen -source=./transactor.go -destination=./mocks/transactor_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"deskhub/config"
	"deskhub/infras/otel"
	"deskhub/shared/constant"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	otelTransactorSpan      = "postgres.transaction"
	maxSerializableAttempts = 3
)

// TxFunc runs inside an open transaction. Returning an error rolls it back.
type TxFunc func(ctx context.Context, tx *sqlx.Tx) error

type Transactor interface {
	// WithinTransaction runs fn in one transaction bounded by the configured lock timeout.
	WithinTransaction(ctx context.Context, fn TxFunc) error
	// LockKeys takes transaction scoped advisory locks in a stable order.
	LockKeys(ctx context.Context, tx *sqlx.Tx, keys ...string) error
}

type transactor struct {
	db           *sqlx.DB
	otel         otel.Otel
	lockTimeout  int
	serializable bool
}

func NewTransactor(conn *Connection, cfg *config.Config, otl otel.Otel) Transactor {
	return &transactor{
		db:           conn.Write,
		otel:         otl,
		lockTimeout:  cfg.DB.Postgres.LockTimeoutMillis,
		serializable: cfg.DB.Postgres.Serializable,
	}
}

// WithinTransaction retries fn on serialization failures when SERIALIZABLE is on. There the snapshot is
// taken by the first statement, before any advisory lock wait ends, so the loser of a race reads a stale
// active set and is only stopped by SSI at write or commit time. Rerunning it reads the winner's booking.
func (t *transactor) WithinTransaction(ctx context.Context, fn TxFunc) (err error) {
	ctx, scope := t.otel.NewScope(ctx, constant.OtelRepositoryScopeName, otelTransactorSpan)
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	isolation := sql.LevelReadCommitted
	if t.serializable {
		isolation = sql.LevelSerializable
	}

	for attempt := 1; ; attempt++ {
		err = t.run(ctx, isolation, fn)
		if err == nil || !t.serializable || attempt == maxSerializableAttempts || !isSerializationFailure(err) {
			return TranslateError(err)
		}

		scope.AddEvent(fmt.Sprintf("serialization failure, attempt %d", attempt))
		log.Warn().Err(err).Int("attempt", attempt).Msg("retrying serializable transaction")
	}
}

func (t *transactor) run(ctx context.Context, isolation sql.IsolationLevel, fn TxFunc) (err error) {
	tx, err := t.db.BeginTxx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		log.Error().Err(err).Msg("failed to begin transaction")

		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}

		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			log.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
	}()

	if t.lockTimeout > 0 {
		// SET LOCAL does not accept bind parameters.
		_, err = tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", t.lockTimeout))
		if err != nil {
			log.Error().Err(err).Msg("failed to set lock timeout")

			return fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	if err = fn(ctx, tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		log.Error().Err(err).Msg("failed to commit transaction")

		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (t *transactor) LockKeys(ctx context.Context, tx *sqlx.Tx, keys ...string) (err error) {
	ctx, scope := t.otel.NewScope(ctx, constant.OtelRepositoryScopeName, otelTransactorSpan+".LockKeys")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	ordered := make([]string, 0, len(keys))

	seen := map[string]struct{}{}
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		ordered = append(ordered, key)
	}

	sort.Strings(ordered)

	for _, key := range ordered {
		scope.AddEvent("lock " + key)

		if _, err = tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key); err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to acquire advisory lock")

			return TranslateError(fmt.Errorf("failed to acquire lock %s: %w", key, err))
		}
	}

	return nil
}
