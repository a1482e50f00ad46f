// Package mysqlstore implements lending.Store on MySQL (InnoDB). Rows read
// inside RunInTx are taken with SELECT ... FOR UPDATE, so two borrows of the
// same item queue on its availability counter.
package mysqlstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	mysql "github.com/go-sql-driver/mysql"

	"lendingdesk/internal/lending"
	"lendingdesk/internal/platform/db"
)

//go:embed schema.sql
var schema string

// MySQL server error numbers
const (
	erDupEntry        = 1062
	erRowIsReferenced = 1451
	erNoReferencedRow = 1452
	erLockDeadlock    = 1213
	erLockWaitTimeout = 1205
	erOutOfRange      = 1264
	erDataTooLong     = 1406
)

type Store struct {
	db *sql.DB
}

func New(conn *sql.DB) *Store { return &Store{db: conn} }

// EnsureSchema creates the tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx lending.Tx) error) error {
	err := db.RunInTx(ctx, s.db, &sql.TxOptions{Isolation: sql.LevelSerializable}, func(ctx context.Context, q db.DBTX) error {
		return fn(ctx, &tx{q: q, lock: true})
	})
	return mapErr(err)
}

func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context, tx lending.Tx) error) error {
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, q db.DBTX) error {
		return fn(ctx, &tx{q: q})
	})
	return mapErr(err)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// mapErr translates driver errors into the lending sentinels. Anything
// already mapped, or unknown, is returned as is.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return lending.ErrRecordNotFound
	}
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return err
	}
	switch me.Number {
	case erDupEntry:
		return fmt.Errorf("%w: %s", lending.ErrDuplicate, me.Message)
	case erRowIsReferenced, erNoReferencedRow:
		return fmt.Errorf("%w: %s", lending.ErrReferenced, me.Message)
	case erOutOfRange, erDataTooLong:
		return fmt.Errorf("%w: %s", lending.ErrOutOfRange, me.Message)
	case erLockDeadlock, erLockWaitTimeout:
		return fmt.Errorf("%w: %s", lending.ErrSerialization, me.Message)
	default:
		return err
	}
}

var _ lending.Store = (*Store)(nil)
