package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	sessionModel "sfformation_backend/internals/features/sessions/model"
	"sfformation_backend/internals/features/steps/model"
)

type TraineeProgress struct {
	EnrollmentID uuid.UUID `json:"inscription_id"`
	TraineeName  string    `json:"stagiaire_nom"`
	Done         bool      `json:"done"`
}

// StepProgress is one (step type, slot) row of the trainer dashboard.
type StepProgress struct {
	StepType       model.StepType    `json:"step_type"`
	StepLabel      string            `json:"step_label"`
	SlotID         *uuid.UUID        `json:"creneau_id"`
	SlotOrder      *int              `json:"creneau_ordre"`
	CompletedCount int               `json:"completed_count"`
	PendingCount   int               `json:"pending_count"`
	PerTrainee     []TraineeProgress `json:"per_trainee"`
}

// EnrollmentRef is the minimal enrollment data the progress view needs.
type EnrollmentRef struct {
	EnrollmentID uuid.UUID
	TraineeName  string
}

type ProgressView struct {
	db          *gorm.DB
	triggers    *TriggerLedger
	completions *CompletionLedger
}

func NewProgressView(db *gorm.DB, triggers *TriggerLedger, completions *CompletionLedger) *ProgressView {
	return &ProgressView{db: db, triggers: triggers, completions: completions}
}

// ProgressForSession is read-only and recomputed on every call.
func (v *ProgressView) ProgressForSession(ctx context.Context, sessionID uuid.UUID) ([]StepProgress, error) {
	triggers, err := v.triggers.ListTriggers(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var enrollments []sessionModel.EnrollmentModel
	if err := v.db.WithContext(ctx).
		Preload("Trainee").
		Where("enrollment_session_id = ?", sessionID).
		Order("enrollment_created_at ASC, enrollment_id ASC").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}
	refs := make([]EnrollmentRef, 0, len(enrollments))
	ids := make([]uuid.UUID, 0, len(enrollments))
	for _, e := range enrollments {
		ref := EnrollmentRef{EnrollmentID: e.EnrollmentID}
		if e.Trainee != nil {
			ref.TraineeName = e.Trainee.FullName()
		}
		refs = append(refs, ref)
		ids = append(ids, e.EnrollmentID)
	}

	done, err := v.completions.CompletedKeys(ctx, ids...)
	if err != nil {
		return nil, err
	}

	var slots []sessionModel.SlotModel
	if err := v.db.WithContext(ctx).
		Where("slot_session_id = ?", sessionID).
		Find(&slots).Error; err != nil {
		return nil, err
	}
	slotOrder := make(map[uuid.UUID]int, len(slots))
	for _, s := range slots {
		slotOrder[s.SlotID] = s.SlotOrder
	}

	return BuildProgress(triggers, refs, done, slotOrder), nil
}

// BuildProgress collapses repeated (step type, slot) triggers into one row,
// kept in first-trigger order, and checks every enrollment against done.
func BuildProgress(triggers []model.TriggerModel, enrollments []EnrollmentRef, done map[model.CompletionKey]struct{}, slotOrder map[uuid.UUID]int) []StepProgress {
	type pair struct {
		step model.StepType
		slot string
	}
	seen := make(map[pair]struct{}, len(triggers))
	out := make([]StepProgress, 0, len(triggers))

	for _, t := range triggers {
		p := pair{step: t.TriggerStepType, slot: model.SlotKey(t.TriggerSlotID)}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}

		row := StepProgress{
			StepType:   t.TriggerStepType,
			StepLabel:  t.TriggerStepType.Label(),
			SlotID:     t.TriggerSlotID,
			PerTrainee: make([]TraineeProgress, 0, len(enrollments)),
		}
		if t.TriggerSlotID != nil {
			if o, ok := slotOrder[*t.TriggerSlotID]; ok {
				order := o
				row.SlotOrder = &order
			}
		}
		for _, e := range enrollments {
			_, isDone := done[model.NewCompletionKey(e.EnrollmentID, t.TriggerStepType, t.TriggerSlotID)]
			if isDone {
				row.CompletedCount++
			} else {
				row.PendingCount++
			}
			row.PerTrainee = append(row.PerTrainee, TraineeProgress{
				EnrollmentID: e.EnrollmentID,
				TraineeName:  e.TraineeName,
				Done:         isDone,
			})
		}
		out = append(out, row)
	}
	return out
}
