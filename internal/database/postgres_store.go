package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

var (
	_ Store = (*PostgresStore)(nil)
	_ Tx    = (*postgresTx)(nil)
)

// PostgresStore implements Store on PostgreSQL. Every scope runs in a
// SERIALIZABLE transaction; Lock maps to transaction-scoped advisory locks.
type PostgresStore struct {
	db     DB
	logger *logrus.Logger
}

// NewPostgresStore creates a new PostgresStore
func NewPostgresStore(db DB, logger *logrus.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// InTx implements Store
func (s *PostgresStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return classify("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(newPostgresTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.WithError(err).Warn("Transaction commit failed")
		return classify("commit transaction", err)
	}
	return nil
}

// Ping implements Store
func (s *PostgresStore) Ping(ctx context.Context) error {
	return classify("ping", s.db.PingContext(ctx))
}

// Close implements Store
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// postgresTx binds every repository to one transaction
type postgresTx struct {
	*UserRepository
	*StudentRepository
	*BusRepository
	*RouteRepository
	*RouteAssignmentRepository
	*TravelTimeRepository
	tx *sqlx.Tx
}

func newPostgresTx(tx *sqlx.Tx) *postgresTx {
	return &postgresTx{
		UserRepository:            NewUserRepository(tx),
		StudentRepository:         NewStudentRepository(tx),
		BusRepository:             NewBusRepository(tx),
		RouteRepository:           NewRouteRepository(tx),
		RouteAssignmentRepository: NewRouteAssignmentRepository(tx),
		TravelTimeRepository:      NewTravelTimeRepository(tx),
		tx:                        tx,
	}
}

// Lock takes pg_advisory_xact_lock on each key, released at commit or rollback
func (t *postgresTx) Lock(ctx context.Context, keys ...string) error {
	for _, key := range lockOrder(keys) {
		if _, err := t.tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return classify("acquire lock "+key, err)
		}
	}
	return nil
}
