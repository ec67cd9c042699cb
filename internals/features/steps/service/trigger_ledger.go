package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	sessionModel "sfformation_backend/internals/features/sessions/model"
	"sfformation_backend/internals/features/steps/model"
	helper "sfformation_backend/internals/helpers"
)

// TriggerLedger is the append-only log of step activations. It never rejects
// a repeated trigger; the progress view collapses repeats.
type TriggerLedger struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTriggerLedger(db *gorm.DB) *TriggerLedger {
	return &TriggerLedger{db: db, now: time.Now}
}

// WithClock replaces the timestamp source.
func (l *TriggerLedger) WithClock(now func() time.Time) *TriggerLedger {
	l.now = now
	return l
}

// RecordTrigger appends a trigger for sessionID. Sign-in needs a slot of the
// same session; every other step type drops the slot.
func (l *TriggerLedger) RecordTrigger(ctx context.Context, sessionID uuid.UUID, stepType model.StepType, slotID *uuid.UUID) (*model.TriggerModel, error) {
	if !stepType.Valid() {
		return nil, helper.NewValidationError("step_type invalide")
	}
	if slotID != nil && *slotID == uuid.Nil {
		slotID = nil
	}

	db := l.db.WithContext(ctx)
	if stepType.IsSignIn() {
		if slotID == nil {
			return nil, helper.NewValidationError("creneau_id requis pour l'émargement")
		}
		var n int64
		if err := db.Model(&sessionModel.SlotModel{}).
			Where("slot_id = ? AND slot_session_id = ?", *slotID, sessionID).
			Count(&n).Error; err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, helper.NewValidationError("Créneau inconnu pour cette session")
		}
	} else {
		slotID = nil
	}

	t := model.TriggerModel{
		TriggerSessionID:   sessionID,
		TriggerStepType:    stepType,
		TriggerSlotID:      slotID,
		TriggerTriggeredAt: l.now().UTC(),
	}
	if err := db.Create(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTriggers returns the triggers of the given sessions in global trigger
// order (triggered_at, then id). Ids are random UUIDs, so triggers sharing the
// exact same instant come back in a stable order that is not creation order.
func (l *TriggerLedger) ListTriggers(ctx context.Context, sessionIDs ...uuid.UUID) ([]model.TriggerModel, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	var rows []model.TriggerModel
	err := l.db.WithContext(ctx).
		Where("trigger_session_id IN ?", sessionIDs).
		Order("trigger_triggered_at ASC, trigger_id ASC").
		Find(&rows).Error
	return rows, err
}

// HasTrigger reports whether (stepType, slot) was triggered for the session.
func (l *TriggerLedger) HasTrigger(ctx context.Context, sessionID uuid.UUID, stepType model.StepType, slotID *uuid.UUID) (bool, error) {
	q := l.db.WithContext(ctx).Model(&model.TriggerModel{}).
		Where("trigger_session_id = ? AND trigger_step_type = ?", sessionID, stepType)
	if slotID != nil {
		q = q.Where("trigger_slot_id = ?", *slotID)
	} else {
		q = q.Where("trigger_slot_id IS NULL")
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}
