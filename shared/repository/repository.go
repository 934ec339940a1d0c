package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"deskhub/infras/otel"
	"deskhub/infras/postgres"
	"deskhub/shared/constant"
	"deskhub/shared/dto"
	"deskhub/shared/logger"

	"github.com/jmoiron/sqlx"
)

const (
	lockForUpdate = "FOR UPDATE"
	lockForShare  = "FOR SHARE"
	setArgPrefix  = "set_"
)

var errRequiredFilter = errors.New("required filter")

type execer interface {
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}

// preparer is satisfied by both *sqlx.DB and *sqlx.Tx.
type preparer interface {
	PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
}

// Repository maps T onto one table. Columns come from the db tags of T, embedded structs included.
type Repository[T any] struct {
	db            *postgres.Connection
	otel          otel.Otel
	table         string
	entity        string
	primaryColumn string
	columns       []string
}

func NewRepository[T any](entityName, tableName, primaryColumn string, dbConnection *postgres.Connection, otl otel.Otel) Repository[T] {
	var zero T

	return Repository[T]{
		db:            dbConnection,
		otel:          otl,
		table:         tableName,
		entity:        entityName,
		primaryColumn: primaryColumn,
		columns:       dbColumns(reflect.TypeOf(zero)),
	}
}

func (repo *Repository[T]) scope(ctx context.Context, operation string) (context.Context, otel.Scope) {
	return repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, fmt.Sprintf("%s.%s.%s", constant.OtelRepositoryScopeName, repo.entity, operation))
}

// fail logs and traces err, then wraps it with the action that failed.
func (repo *Repository[T]) fail(scope otel.Scope, action string, err error) error {
	logger.ErrorWithStack(err)
	scope.TraceError(err)

	return fmt.Errorf("failed to %s (%s): %w", action, repo.entity, err)
}

// query builds a statement from its non-empty parts.
func query(parts ...string) string {
	return strings.Join(slices.DeleteFunc(parts, func(part string) bool { return part == "" }), " ")
}

func (repo *Repository[T]) Insert(ctx context.Context, model T) error {
	ctx, scope := repo.scope(ctx, "Insert")
	defer scope.End()

	return repo.insert(ctx, scope, repo.db.Write, model)
}

func (repo *Repository[T]) InsertTx(ctx context.Context, sqltx *sqlx.Tx, model T) error {
	ctx, scope := repo.scope(ctx, "InsertTx")
	defer scope.End()

	return repo.insert(ctx, scope, sqltx, model)
}

func (repo *Repository[T]) insert(ctx context.Context, scope otel.Scope, exec execer, model T) error {
	placeholders := make([]string, len(repo.columns))
	for i, col := range repo.columns {
		placeholders[i] = ":" + col
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", repo.table, strings.Join(repo.columns, ", "), strings.Join(placeholders, ", "))
	scope.SetAttribute(constant.OtelQueryAttributeKey, stmt)

	if _, err := exec.NamedExecContext(ctx, stmt, model); err != nil {
		return repo.fail(scope, "insert data", err)
	}

	return nil
}

// Get returns the zero value of T when no row matches.
func (repo *Repository[T]) Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (T, error) {
	ctx, scope := repo.scope(ctx, "Get")
	defer scope.End()

	return repo.get(ctx, scope, repo.db.Read, filter, "", columns...)
}

func (repo *Repository[T]) GetTx(ctx context.Context, sqltx *sqlx.Tx, filter dto.FilterGroup, columns ...string) (T, error) {
	ctx, scope := repo.scope(ctx, "GetTx")
	defer scope.End()

	return repo.get(ctx, scope, sqltx, filter, "", columns...)
}

// GetForUpdateTx reads a row and holds its row lock until the transaction ends.
func (repo *Repository[T]) GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, filter dto.FilterGroup, columns ...string) (T, error) {
	ctx, scope := repo.scope(ctx, "GetForUpdateTx")
	defer scope.End()

	return repo.get(ctx, scope, sqltx, filter, lockForUpdate, columns...)
}

// GetForShareTx reads a row and blocks writers to it until the transaction ends.
func (repo *Repository[T]) GetForShareTx(ctx context.Context, sqltx *sqlx.Tx, filter dto.FilterGroup, columns ...string) (T, error) {
	ctx, scope := repo.scope(ctx, "GetForShareTx")
	defer scope.End()

	return repo.get(ctx, scope, sqltx, filter, lockForShare, columns...)
}

func (repo *Repository[T]) get(ctx context.Context, scope otel.Scope, prep preparer, filter dto.FilterGroup, lock string, columns ...string) (T, error) {
	var model T

	where, args := buildWhere(filter)
	stmt := query("SELECT", repo.selectList(columns), "FROM", repo.table, where, lock)

	err := repo.prepared(ctx, scope, prep, stmt, func(named *sqlx.NamedStmt) error {
		return named.GetContext(ctx, &model, args)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return model, nil
	}

	if err != nil {
		return model, repo.fail(scope, "get data", err)
	}

	return model, nil
}

func (repo *Repository[T]) GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error) {
	ctx, scope := repo.scope(ctx, "GetAll")
	defer scope.End()

	return repo.getAll(ctx, scope, repo.db.Read, params, filter, columns...)
}

func (repo *Repository[T]) GetAllTx(ctx context.Context, sqltx *sqlx.Tx, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error) {
	ctx, scope := repo.scope(ctx, "GetAllTx")
	defer scope.End()

	return repo.getAll(ctx, scope, sqltx, params, filter, columns...)
}

func (repo *Repository[T]) getAll(ctx context.Context, scope otel.Scope, prep preparer, params dto.QueryParams, filter dto.FilterGroup, columns ...string) ([]T, error) {
	var models []T

	where, args := buildWhere(filter)
	stmt := query("SELECT", repo.selectList(columns), "FROM", repo.table, where, repo.ordering(params), paginate(params, args))

	err := repo.prepared(ctx, scope, prep, stmt, func(named *sqlx.NamedStmt) error {
		return named.SelectContext(ctx, &models, args)
	})
	if err != nil {
		return models, repo.fail(scope, "get all data", err)
	}

	return models, nil
}

func (repo *Repository[T]) Count(ctx context.Context, filter dto.FilterGroup) (int, error) {
	ctx, scope := repo.scope(ctx, "Count")
	defer scope.End()

	return repo.count(ctx, scope, repo.db.Read, filter)
}

func (repo *Repository[T]) CountTx(ctx context.Context, sqltx *sqlx.Tx, filter dto.FilterGroup) (int, error) {
	ctx, scope := repo.scope(ctx, "CountTx")
	defer scope.End()

	return repo.count(ctx, scope, sqltx, filter)
}

func (repo *Repository[T]) count(ctx context.Context, scope otel.Scope, prep preparer, filter dto.FilterGroup) (int, error) {
	var total int

	where, args := buildWhere(filter)
	stmt := query(fmt.Sprintf("SELECT COUNT(%s.%s) FROM", repo.table, repo.primaryColumn), repo.table, where)

	err := repo.prepared(ctx, scope, prep, stmt, func(named *sqlx.NamedStmt) error {
		return named.GetContext(ctx, &total, args)
	})
	if err != nil {
		return 0, repo.fail(scope, "count data", err)
	}

	return total, nil
}

func (repo *Repository[T]) Delete(ctx context.Context, filter dto.FilterGroup) error {
	ctx, scope := repo.scope(ctx, "Delete")
	defer scope.End()

	return repo.delete(ctx, scope, repo.db.Write, filter)
}

func (repo *Repository[T]) DeleteTx(ctx context.Context, sqltx *sqlx.Tx, filter dto.FilterGroup) error {
	ctx, scope := repo.scope(ctx, "DeleteTx")
	defer scope.End()

	return repo.delete(ctx, scope, sqltx, filter)
}

func (repo *Repository[T]) delete(ctx context.Context, scope otel.Scope, exec execer, filter dto.FilterGroup) error {
	where, args := buildWhere(filter)
	if where == "" {
		return errRequiredFilter
	}

	stmt := query("DELETE FROM", repo.table, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, stmt)

	if _, err := exec.NamedExecContext(ctx, stmt, args); err != nil {
		return repo.fail(scope, "delete data", err)
	}

	return nil
}

func (repo *Repository[T]) Update(ctx context.Context, mod map[string]any, filter dto.FilterGroup) error {
	ctx, scope := repo.scope(ctx, "Update")
	defer scope.End()

	return repo.update(ctx, scope, repo.db.Write, mod, filter)
}

func (repo *Repository[T]) UpdateTx(ctx context.Context, sqltx *sqlx.Tx, mod map[string]any, filter dto.FilterGroup) error {
	ctx, scope := repo.scope(ctx, "UpdateTx")
	defer scope.End()

	return repo.update(ctx, scope, sqltx, mod, filter)
}

// update binds new values under a prefix so a column may appear in both SET and WHERE.
func (repo *Repository[T]) update(ctx context.Context, scope otel.Scope, exec execer, mod map[string]any, filter dto.FilterGroup) error {
	where, args := buildWhere(filter)
	if where == "" {
		return errRequiredFilter
	}

	assignments := make([]string, 0, len(mod))

	for _, col := range slices.Sorted(maps.Keys(mod)) {
		assignments = append(assignments, fmt.Sprintf("%s = :%s%s", col, setArgPrefix, col))
		args[setArgPrefix+col] = mod[col]
	}

	stmt := query("UPDATE", repo.table, "SET", strings.Join(assignments, ", "), where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, stmt)

	if _, err := exec.NamedExecContext(ctx, stmt, args); err != nil {
		return repo.fail(scope, "update data", err)
	}

	return nil
}

// prepared runs fn against a named statement and closes it afterwards. Prepare errors are returned as is.
func (repo *Repository[T]) prepared(ctx context.Context, scope otel.Scope, prep preparer, stmt string, fn func(*sqlx.NamedStmt) error) error {
	scope.SetAttribute(constant.OtelQueryAttributeKey, stmt)

	named, err := prep.PrepareNamedContext(ctx, stmt)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer named.Close()

	return fn(named)
}

// selectList keeps the requested columns in mapping order, every column when none is requested.
func (repo *Repository[T]) selectList(requested []string) string {
	selected := make([]string, 0, len(repo.columns))

	for _, col := range repo.columns {
		if len(requested) > 0 && !slices.Contains(requested, col) {
			continue
		}

		selected = append(selected, repo.table+"."+col)
	}

	return strings.Join(selected, ", ")
}

// ordering accepts plain or table qualified names of mapped columns only.
func (repo *Repository[T]) ordering(params dto.QueryParams) string {
	if params.SortBy == "" || params.SortDir == "" {
		return ""
	}

	name := strings.TrimPrefix(params.SortBy, repo.table+".")
	if !slices.Contains(repo.columns, name) {
		return ""
	}

	return fmt.Sprintf("ORDER BY %s %s", params.SortBy, params.SortDir)
}

func paginate(params dto.QueryParams, args map[string]any) string {
	if params.Limit <= 0 {
		return ""
	}

	args["limit"] = params.Limit

	if params.Page <= 0 {
		return "LIMIT :limit"
	}

	args["offset"] = params.Offset()

	return "LIMIT :limit OFFSET :offset"
}

func buildWhere(filter dto.FilterGroup) (string, map[string]any) {
	where, args := filter.GetWhereClause()
	if where == "" {
		return "", map[string]any{}
	}

	return "WHERE " + where, args
}

func dbColumns(reflectType reflect.Type) []string {
	var columns []string

	for i := range reflectType.NumField() {
		field := reflectType.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			columns = append(columns, dbColumns(field.Type)...)

			continue
		}

		if tag := field.Tag.Get("db"); tag != "" && tag != "-" {
			columns = append(columns, tag)
		}
	}

	return columns
}
