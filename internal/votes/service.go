// Package votes records user votes on posts and comments and keeps each
// target's karma equal to the sum of its votes.
package votes

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/apperr"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/models"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/store"
)

const maxAttempts = 3

// Result is the outcome of a cast or removal. Vote is nil after a removal.
type Result struct {
	Vote   *models.Vote
	Status Status
	Karma  int
}

// Service applies vote requests. Each request runs in one transaction that locks
// the target row, changes the ledger and recomputes karma, so the ledger and the
// stored karma are never observed out of step.
type Service struct {
	db      *gorm.DB
	ledger  *Ledger
	karma   *Aggregator
	targets *store.Targets
	log     logrus.FieldLogger
	tracer  trace.Tracer
}

func NewService(db *gorm.DB, log logrus.FieldLogger) *Service {
	return &Service{
		db:      db,
		ledger:  NewLedger(),
		karma:   NewAggregator(db, log),
		targets: store.NewTargets(),
		log:     log,
		tracer:  otel.Tracer("github.com/LucioFurnari/Reddit-clone-backend/internal/votes"),
	}
}

// Cast records an upvote or downvote by userID on target.
func (s *Service) Cast(ctx context.Context, userID uuid.UUID, target models.Target, action Action) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "votes.Cast", trace.WithAttributes(
		attribute.String("vote.target", target.String()),
		attribute.String("vote.action", string(action)),
	))
	defer span.End()

	if userID == uuid.Nil {
		return Result{}, fail(span, apperr.Unauthorized("Unauthorized"))
	}
	value, err := action.Value()
	if err != nil {
		return Result{}, fail(span, err)
	}

	var result Result
	err = s.inTx(ctx, func(tx *gorm.DB) error {
		info, err := s.targets.Lock(tx, target)
		if err != nil {
			return err
		}

		current, found, err := s.ledger.Find(tx, userID, target)
		if err != nil {
			return err
		}
		var existing *models.Vote
		if found {
			existing = &current
		}

		status := decide(existing, value)
		var vote models.Vote
		switch status {
		case StatusUnchanged:
			result = Result{Vote: existing, Status: status, Karma: info.Karma}
			return nil
		case StatusCreated:
			vote, err = s.ledger.Create(tx, userID, target, value)
		default:
			vote, err = s.ledger.UpdateValue(tx, userID, target, value)
		}
		if err != nil {
			return err
		}

		karma, err := s.karma.Recompute(tx, target)
		if err != nil {
			return err
		}
		result = Result{Vote: &vote, Status: status, Karma: karma}
		return nil
	})
	if err != nil {
		return Result{}, fail(span, err)
	}

	span.SetAttributes(attribute.String("vote.status", string(result.Status)), attribute.Int("vote.karma", result.Karma))
	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"target":  target.String(),
		"status":  result.Status,
		"karma":   result.Karma,
	}).Debug("vote cast")
	return result, nil
}

// Remove deletes userID's vote on target. Removing a vote that does not exist
// is a NotFound error.
func (s *Service) Remove(ctx context.Context, userID uuid.UUID, target models.Target) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "votes.Remove", trace.WithAttributes(
		attribute.String("vote.target", target.String()),
	))
	defer span.End()

	if userID == uuid.Nil {
		return Result{}, fail(span, apperr.Unauthorized("Unauthorized"))
	}

	var result Result
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.targets.Lock(tx, target); err != nil {
			return err
		}
		if err := s.ledger.Delete(tx, userID, target); err != nil {
			return err
		}
		karma, err := s.karma.Recompute(tx, target)
		if err != nil {
			return err
		}
		result = Result{Status: StatusRemoved, Karma: karma}
		return nil
	})
	if err != nil {
		return Result{}, fail(span, err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"target":  target.String(),
		"karma":   result.Karma,
	}).Debug("vote removed")
	return result, nil
}

// inTx runs fn in a transaction, starting over when the ledger reports a
// uniqueness conflict. Cast and Remove lock the target row first, which already
// serialises writers of one (user, target) pair; the retry only backs that lock
// up against ledger writes that bypass it. A retried attempt re-reads the
// ledger, so a racing insert turns into an update or a no-op.
func (s *Service) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(fn)
		if !errors.Is(err, apperr.ErrConflict) {
			return err
		}
		s.log.WithField("attempt", attempt).Warn("vote write conflicted, retrying")
	}
	return err
}

func fail(span trace.Span, err error) error {
	if apperr.Status(err) >= 500 {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
