package votes

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/LucioFurnari/Reddit-clone-backend/internal/apperr"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/models"
	"github.com/LucioFurnari/Reddit-clone-backend/internal/store"
)

// Aggregator derives a target's karma from the ledger. Karma is never adjusted
// by deltas: it is always the sum of the target's vote values.
type Aggregator struct {
	db      *gorm.DB
	targets *store.Targets
	log     logrus.FieldLogger
}

func NewAggregator(db *gorm.DB, log logrus.FieldLogger) *Aggregator {
	return &Aggregator{db: db, targets: store.NewTargets(), log: log}
}

// Recompute sums the votes on target and stores the result on its row. Run it in
// the transaction that changed the ledger, after locking the target.
func (a *Aggregator) Recompute(tx *gorm.DB, target models.Target) (int, error) {
	var sum int
	err := tx.Model(&models.Vote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("target_type = ? AND target_id = ?", target.Kind, target.ID).
		Scan(&sum).Error
	if err != nil {
		return 0, apperr.Internal(err, "sum votes on %s", target)
	}

	// UpdateColumn leaves updated_at alone; a vote is not an edit.
	res := tx.Table(target.Table()).Where("id = ?", target.ID).UpdateColumn("karma", sum)
	if res.Error != nil {
		return 0, apperr.Internal(res.Error, "store karma on %s", target)
	}
	if res.RowsAffected == 0 {
		if target.Kind == models.TargetComment {
			return 0, apperr.NotFound("Comment not found")
		}
		return 0, apperr.NotFound("Post not found")
	}
	return sum, nil
}

// RecomputeAll rebuilds the karma of every post and comment, one locked
// transaction per target. Targets deleted while it runs are skipped. It returns
// the number of targets recomputed.
func (a *Aggregator) RecomputeAll(ctx context.Context) (int, error) {
	done := 0
	for _, kind := range []models.TargetKind{models.TargetPost, models.TargetComment} {
		var ids []uuid.UUID
		table := models.Target{Kind: kind}.Table()
		if err := a.db.WithContext(ctx).Table(table).Order("created_at").Pluck("id", &ids).Error; err != nil {
			return done, apperr.Internal(err, "list %s", table)
		}

		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return done, err
			}

			target := models.Target{Kind: kind, ID: id}
			err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				if _, err := a.targets.Lock(tx, target); err != nil {
					return err
				}
				_, err := a.Recompute(tx, target)
				return err
			})
			if errors.Is(err, apperr.ErrNotFound) {
				continue
			}
			if err != nil {
				return done, err
			}
			done++
		}

		a.log.WithFields(logrus.Fields{"kind": kind, "targets": len(ids)}).Info("karma recomputed")
	}
	return done, nil
}
