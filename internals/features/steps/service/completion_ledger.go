package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	database "sfformation_backend/internals/databases"
	"sfformation_backend/internals/features/steps/model"
	helper "sfformation_backend/internals/helpers"
)

const MsgAlreadyCompleted = "Déjà complété"

// CompletionLedger is the append-only log of per-enrollment completions.
// The unique index on (enrollment, step type, slot key) is the only arbiter
// between concurrent identical writes.
type CompletionLedger struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCompletionLedger(db *gorm.DB) *CompletionLedger {
	return &CompletionLedger{db: db, now: time.Now}
}

func (l *CompletionLedger) WithClock(now func() time.Time) *CompletionLedger {
	l.now = now
	return l
}

// RecordCompletion writes the completion key once. A repeat returns a
// DuplicateError; callers treat it as "already completed".
func (l *CompletionLedger) RecordCompletion(ctx context.Context, enrollmentID uuid.UUID, stepType model.StepType, slotID *uuid.UUID) (*model.CompletionModel, error) {
	return l.RecordCompletionBy(ctx, nil, enrollmentID, stepType, slotID)
}

// RecordCompletionBy is RecordCompletion with the acting user stored.
func (l *CompletionLedger) RecordCompletionBy(ctx context.Context, actorUserID *uuid.UUID, enrollmentID uuid.UUID, stepType model.StepType, slotID *uuid.UUID) (*model.CompletionModel, error) {
	if !stepType.Valid() {
		return nil, helper.NewValidationError("step_type invalide")
	}
	if slotID != nil && *slotID == uuid.Nil {
		slotID = nil
	}
	if stepType.IsSignIn() {
		if slotID == nil {
			return nil, helper.NewValidationError("creneau_id requis pour l'émargement")
		}
	} else {
		slotID = nil
	}

	c := model.CompletionModel{
		CompletionEnrollmentID: enrollmentID,
		CompletionStepType:     stepType,
		CompletionSlotID:       slotID,
		CompletionCompletedBy:  actorUserID,
		CompletionCompletedAt:  l.now().UTC(),
	}
	if err := l.db.WithContext(ctx).Create(&c).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, helper.NewDuplicateError(MsgAlreadyCompleted, err)
		}
		return nil, err
	}
	return &c, nil
}

func (l *CompletionLedger) ListCompletions(ctx context.Context, enrollmentIDs ...uuid.UUID) ([]model.CompletionModel, error) {
	if len(enrollmentIDs) == 0 {
		return nil, nil
	}
	var rows []model.CompletionModel
	err := l.db.WithContext(ctx).
		Where("completion_enrollment_id IN ?", enrollmentIDs).
		Order("completion_completed_at ASC, completion_id ASC").
		Find(&rows).Error
	return rows, err
}

// CompletedKeys indexes the completions of the given enrollments by key.
func (l *CompletionLedger) CompletedKeys(ctx context.Context, enrollmentIDs ...uuid.UUID) (map[model.CompletionKey]struct{}, error) {
	rows, err := l.ListCompletions(ctx, enrollmentIDs...)
	if err != nil {
		return nil, err
	}
	return indexCompletions(rows), nil
}

func indexCompletions(rows []model.CompletionModel) map[model.CompletionKey]struct{} {
	done := make(map[model.CompletionKey]struct{}, len(rows))
	for _, c := range rows {
		done[c.Key()] = struct{}{}
	}
	return done
}
