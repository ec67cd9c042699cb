package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TriggerModel is one step activation issued by the session's trainer.
// Append-only; SlotID is set only for sign-in.
type TriggerModel struct {
	TriggerID          uuid.UUID  `gorm:"type:uuid;primaryKey;column:trigger_id" json:"id"`
	TriggerSessionID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_triggers_session_time,priority:1;column:trigger_session_id" json:"session_id"`
	TriggerStepType    StepType   `gorm:"type:varchar(32);not null;column:trigger_step_type" json:"step_type"`
	TriggerSlotID      *uuid.UUID `gorm:"type:uuid;column:trigger_slot_id" json:"creneau_id"`
	TriggerTriggeredAt time.Time  `gorm:"not null;index:idx_triggers_session_time,priority:2;column:trigger_triggered_at" json:"triggered_at"`
}

func (TriggerModel) TableName() string { return "session_step_triggers" }

func (t *TriggerModel) BeforeCreate(tx *gorm.DB) error {
	if t.TriggerID == uuid.Nil {
		t.TriggerID = uuid.New()
	}
	return nil
}

// CompletionModel records that one enrollment finished one triggered step.
// CompletionSlotKey mirrors CompletionSlotID ("" when null) so the unique
// index also covers non-sign-in steps.
type CompletionModel struct {
	CompletionID           uuid.UUID  `gorm:"type:uuid;primaryKey;column:completion_id" json:"id"`
	CompletionEnrollmentID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_completion_key,priority:1;column:completion_enrollment_id" json:"inscription_id"`
	CompletionStepType     StepType   `gorm:"type:varchar(32);not null;uniqueIndex:uq_completion_key,priority:2;column:completion_step_type" json:"step_type"`
	CompletionSlotKey      string     `gorm:"type:varchar(36);not null;default:'';uniqueIndex:uq_completion_key,priority:3;column:completion_slot_key" json:"-"`
	CompletionSlotID       *uuid.UUID `gorm:"type:uuid;column:completion_slot_id" json:"creneau_id"`
	CompletionCompletedBy  *uuid.UUID `gorm:"type:uuid;column:completion_completed_by" json:"completed_by,omitempty"`
	CompletionCompletedAt  time.Time  `gorm:"not null;column:completion_completed_at" json:"completed_at"`
}

func (CompletionModel) TableName() string { return "step_completions" }

func (c *CompletionModel) BeforeCreate(tx *gorm.DB) error {
	if c.CompletionID == uuid.Nil {
		c.CompletionID = uuid.New()
	}
	c.CompletionSlotKey = SlotKey(c.CompletionSlotID)
	return nil
}

// SlotKey is the string form of an optional slot used in completion keys.
func SlotKey(slotID *uuid.UUID) string {
	if slotID == nil || *slotID == uuid.Nil {
		return ""
	}
	return slotID.String()
}

// CompletionKey identifies a completion: (enrollment, step type, slot-or-null).
type CompletionKey struct {
	EnrollmentID uuid.UUID
	StepType     StepType
	SlotKey      string
}

func NewCompletionKey(enrollmentID uuid.UUID, st StepType, slotID *uuid.UUID) CompletionKey {
	return CompletionKey{EnrollmentID: enrollmentID, StepType: st, SlotKey: SlotKey(slotID)}
}

func (c CompletionModel) Key() CompletionKey {
	return NewCompletionKey(c.CompletionEnrollmentID, c.CompletionStepType, c.CompletionSlotID)
}
