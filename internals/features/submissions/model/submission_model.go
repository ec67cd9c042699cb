package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ResponseModel (réponse): one answer of an enrollment to a question.
// Upserted on (enrollment, question).
type ResponseModel struct {
	ResponseID           uuid.UUID      `gorm:"type:uuid;primaryKey;column:response_id" json:"id"`
	ResponseEnrollmentID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uq_response_enrollment_question,priority:1;column:response_enrollment_id" json:"inscription_id"`
	ResponseQuestionID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uq_response_enrollment_question,priority:2;index;column:response_question_id" json:"question_id"`
	ResponseValue        *string        `gorm:"type:text;column:response_value" json:"valeur"`
	ResponseValueJSON    datatypes.JSON `gorm:"column:response_value_json" json:"valeur_json"`
	ResponseCreatedAt    time.Time      `gorm:"autoCreateTime;column:response_created_at" json:"created_at"`
	ResponseUpdatedAt    time.Time      `gorm:"autoUpdateTime;column:response_updated_at" json:"updated_at"`
}

func (ResponseModel) TableName() string { return "reponses" }

func (r *ResponseModel) BeforeCreate(tx *gorm.DB) error {
	if r.ResponseID == uuid.Nil {
		r.ResponseID = uuid.New()
	}
	return nil
}

// SignatureModel (émargement): one attendance signature per (enrollment, slot).
type SignatureModel struct {
	SignatureID           uuid.UUID `gorm:"type:uuid;primaryKey;column:signature_id" json:"id"`
	SignatureEnrollmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_signature_enrollment_slot,priority:1;column:signature_enrollment_id" json:"inscription_id"`
	SignatureSlotID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_signature_enrollment_slot,priority:2;column:signature_slot_id" json:"creneau_id"`
	SignatureSignedAt     time.Time `gorm:"not null;column:signature_signed_at" json:"signed_at"`
	SignatureData         string    `gorm:"type:text;not null;column:signature_data" json:"signature_data"`
	SignatureCreatedAt    time.Time `gorm:"autoCreateTime;column:signature_created_at" json:"created_at"`
}

func (SignatureModel) TableName() string { return "emargements" }

func (s *SignatureModel) BeforeCreate(tx *gorm.DB) error {
	if s.SignatureID == uuid.Nil {
		s.SignatureID = uuid.New()
	}
	return nil
}
