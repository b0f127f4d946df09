package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/schoolbus-scheduler/internal/config"
	"github.com/smarttransit/schoolbus-scheduler/internal/database"
	"github.com/smarttransit/schoolbus-scheduler/pkg/validator"
)

// ConsistencyEngine accepts or rejects mutations of the scheduling data.
// Every mutation runs its read-check-write sequence inside one store
// transaction bounded by the configured store timeout, so a rejected or
// timed-out request never leaves a partial write behind.
type ConsistencyEngine struct {
	store      database.Store
	policy     config.SchedulingConfig
	phones     *validator.PhoneValidator
	conflicts  *ConflictDetector
	estimator  *TravelTimeEstimator
	propagator *SchedulePropagator
	logger     *logrus.Logger
}

// NewConsistencyEngine creates a new ConsistencyEngine
func NewConsistencyEngine(store database.Store, policy config.SchedulingConfig, logger *logrus.Logger) *ConsistencyEngine {
	estimator := NewTravelTimeEstimator()
	return &ConsistencyEngine{
		store:      store,
		policy:     policy,
		phones:     validator.NewPhoneValidator(),
		conflicts:  NewConflictDetector(),
		estimator:  estimator,
		propagator: NewSchedulePropagator(estimator),
		logger:     logger,
	}
}

// mutation is the per-request handle passed to a mutation body
type mutation struct {
	tx  database.Tx
	log *logrus.Entry
}

// validated marks the Received -> Validated transition
func (m *mutation) validated() {
	m.log.Debug("Mutation validated")
}

// mutate runs fn as one mutation request: Received -> Validated -> Committed | Rejected
func (e *ConsistencyEngine) mutate(ctx context.Context, op string, fields logrus.Fields, fn func(ctx context.Context, m *mutation) error) error {
	log := e.logger.WithFields(logrus.Fields{
		"request_id": uuid.New().String(),
		"operation":  op,
	}).WithFields(fields)
	log.Debug("Mutation received")

	ctx, cancel := context.WithTimeout(ctx, e.policy.StoreTimeout)
	defer cancel()

	err := e.store.InTx(ctx, func(tx database.Tx) error {
		return fn(ctx, &mutation{tx: tx, log: log})
	})
	if err != nil {
		err = translateError(op, err)
		entry := log.WithError(err).WithField("code", CodeOf(err))
		if IsRetryable(err) {
			entry.Error("Mutation rejected")
		} else {
			entry.Warn("Mutation rejected")
		}
		return err
	}

	log.Info("Mutation committed")
	return nil
}

// read runs fn in a bounded transaction without state logging
func (e *ConsistencyEngine) read(ctx context.Context, op string, fn func(ctx context.Context, tx database.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.policy.StoreTimeout)
	defer cancel()

	err := e.store.InTx(ctx, func(tx database.Tx) error {
		return fn(ctx, tx)
	})
	if err != nil {
		return translateError(op, err)
	}
	return nil
}

// translateError passes typed rejections through and turns store
// unavailability into a retryable InfrastructureError
func translateError(op string, err error) error {
	if CodeOf(err) != "" {
		return err
	}
	if errors.Is(err, database.ErrStoreUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return &InfrastructureError{Code: StoreUnavailable, Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// reference maps a failed lookup of a referenced entity to UnknownReference
func reference(field string, id int64, err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return validationErrorf(UnknownReference, field, "%s %d does not exist", field, id)
	}
	return err
}

// normalisePhone validates a phone number and returns its canonical digits
func (e *ConsistencyEngine) normalisePhone(field, phone string) (string, error) {
	digits, err := e.phones.Validate(phone)
	if err != nil {
		return "", validationErrorf(InvalidField, field, "%v", err)
	}
	return digits, nil
}
