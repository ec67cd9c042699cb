package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	sessionModel "sfformation_backend/internals/features/sessions/model"
	"sfformation_backend/internals/features/steps/model"
	userModel "sfformation_backend/internals/features/users/user/model"
)

// PendingStep is the one step a trainee has to do next.
type PendingStep struct {
	TriggerID    uuid.UUID      `json:"trigger_id"`
	EnrollmentID uuid.UUID      `json:"inscription_id"`
	SessionID    uuid.UUID      `json:"session_id"`
	SessionName  string         `json:"session_nom"`
	StepType     model.StepType `json:"step_type"`
	StepLabel    string         `json:"step_label"`
	SlotID       *uuid.UUID     `json:"creneau_id"`
	SlotOrder    *int           `json:"creneau_ordre"`
	TriggeredAt  time.Time      `json:"triggered_at"`
}

type PendingResolver struct {
	db          *gorm.DB
	triggers    *TriggerLedger
	completions *CompletionLedger
}

func NewPendingResolver(db *gorm.DB, triggers *TriggerLedger, completions *CompletionLedger) *PendingResolver {
	return &PendingResolver{db: db, triggers: triggers, completions: completions}
}

// ResolvePending returns the earliest-triggered step, across all of the
// trainee's sessions, that has no completion yet. nil means nothing pending.
func (r *PendingResolver) ResolvePending(ctx context.Context, traineeUserID uuid.UUID) (*PendingStep, error) {
	db := r.db.WithContext(ctx)

	var trainee userModel.TraineeModel
	err := db.Where("trainee_user_id = ?", traineeUserID).First(&trainee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var enrollments []sessionModel.EnrollmentModel
	if err := db.Where("enrollment_trainee_id = ?", trainee.TraineeID).Find(&enrollments).Error; err != nil {
		return nil, err
	}
	if len(enrollments) == 0 {
		return nil, nil
	}

	enrollmentBySession := make(map[uuid.UUID]uuid.UUID, len(enrollments))
	sessionIDs := make([]uuid.UUID, 0, len(enrollments))
	enrollmentIDs := make([]uuid.UUID, 0, len(enrollments))
	for _, e := range enrollments {
		enrollmentBySession[e.EnrollmentSessionID] = e.EnrollmentID
		sessionIDs = append(sessionIDs, e.EnrollmentSessionID)
		enrollmentIDs = append(enrollmentIDs, e.EnrollmentID)
	}

	triggers, err := r.triggers.ListTriggers(ctx, sessionIDs...)
	if err != nil {
		return nil, err
	}
	if len(triggers) == 0 {
		return nil, nil
	}
	done, err := r.completions.CompletedKeys(ctx, enrollmentIDs...)
	if err != nil {
		return nil, err
	}

	t, enrollmentID, ok := FirstPending(triggers, enrollmentBySession, done)
	if !ok {
		return nil, nil
	}
	return r.enrich(ctx, t, enrollmentID)
}

// FirstPending walks triggers in the given order and returns the first one
// whose completion key is absent from done.
func FirstPending(triggers []model.TriggerModel, enrollmentBySession map[uuid.UUID]uuid.UUID, done map[model.CompletionKey]struct{}) (model.TriggerModel, uuid.UUID, bool) {
	for _, t := range triggers {
		enrollmentID, ok := enrollmentBySession[t.TriggerSessionID]
		if !ok {
			continue
		}
		key := model.NewCompletionKey(enrollmentID, t.TriggerStepType, t.TriggerSlotID)
		if _, completed := done[key]; !completed {
			return t, enrollmentID, true
		}
	}
	return model.TriggerModel{}, uuid.Nil, false
}

func (r *PendingResolver) enrich(ctx context.Context, t model.TriggerModel, enrollmentID uuid.UUID) (*PendingStep, error) {
	db := r.db.WithContext(ctx)
	p := &PendingStep{
		TriggerID:    t.TriggerID,
		EnrollmentID: enrollmentID,
		SessionID:    t.TriggerSessionID,
		StepType:     t.TriggerStepType,
		StepLabel:    t.TriggerStepType.Label(),
		SlotID:       t.TriggerSlotID,
		TriggeredAt:  t.TriggerTriggeredAt,
	}

	var sess sessionModel.SessionModel
	if err := db.Select("session_id", "session_name").
		Where("session_id = ?", t.TriggerSessionID).
		First(&sess).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	p.SessionName = sess.SessionName

	if t.TriggerSlotID != nil {
		var slot sessionModel.SlotModel
		err := db.Select("slot_id", "slot_order").Where("slot_id = ?", *t.TriggerSlotID).First(&slot).Error
		if err == nil {
			order := slot.SlotOrder
			p.SlotOrder = &order
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return p, nil
}
