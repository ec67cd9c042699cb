package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	stepModel "sfformation_backend/internals/features/steps/model"
)

type FormationModel struct {
	FormationID        uuid.UUID `gorm:"type:uuid;primaryKey;column:formation_id" json:"id"`
	FormationName      string    `gorm:"type:varchar(200);not null;column:formation_name" json:"nom"`
	FormationCreatedAt time.Time `gorm:"autoCreateTime;column:formation_created_at" json:"created_at"`
}

func (FormationModel) TableName() string { return "formations" }

func (f *FormationModel) BeforeCreate(tx *gorm.DB) error {
	if f.FormationID == uuid.Nil {
		f.FormationID = uuid.New()
	}
	return nil
}

/* ===== Documents ===== */

type FilledBy string

const (
	FilledByTrainee FilledBy = "stagiaire"
	FilledByTrainer FilledBy = "formateur"
)

func (f FilledBy) Valid() bool { return f == FilledByTrainee || f == FilledByTrainer }

// FormationDocumentModel: display name + order of one questionnaire of a formation.
type FormationDocumentModel struct {
	FormationDocumentID          uuid.UUID              `gorm:"type:uuid;primaryKey;column:formation_document_id" json:"id"`
	FormationDocumentFormationID uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:uq_formation_document,priority:1;column:formation_document_formation_id" json:"formation_id"`
	FormationDocumentType        stepModel.DocumentType `gorm:"type:varchar(32);not null;uniqueIndex:uq_formation_document,priority:2;column:formation_document_type" json:"document_type"`
	FormationDocumentDisplayName string                 `gorm:"type:varchar(200);not null;column:formation_document_display_name" json:"nom_affiche"`
	FormationDocumentOrder       int                    `gorm:"not null;default:0;column:formation_document_order" json:"ordre"`
	FormationDocumentFilledBy    FilledBy               `gorm:"type:varchar(20);not null;default:'stagiaire';column:formation_document_filled_by" json:"rempli_par"`
}

func (FormationDocumentModel) TableName() string { return "formation_documents" }

func (d *FormationDocumentModel) BeforeCreate(tx *gorm.DB) error {
	if d.FormationDocumentID == uuid.Nil {
		d.FormationDocumentID = uuid.New()
	}
	if d.FormationDocumentFilledBy == "" {
		d.FormationDocumentFilledBy = FilledByTrainee
	}
	return nil
}

// DefaultDocuments builds the five documents every new formation starts with.
func DefaultDocuments(formationID uuid.UUID) []FormationDocumentModel {
	out := make([]FormationDocumentModel, 0, len(stepModel.DocumentTypes))
	for _, dt := range stepModel.DocumentTypes {
		filledBy := FilledByTrainee
		if dt == stepModel.DocFinalReview {
			filledBy = FilledByTrainer
		}
		out = append(out, FormationDocumentModel{
			FormationDocumentFormationID: formationID,
			FormationDocumentType:        dt,
			FormationDocumentDisplayName: dt.Label(),
			FormationDocumentOrder:       dt.DefaultOrder(),
			FormationDocumentFilledBy:    filledBy,
		})
	}
	return out
}

/* ===== Questions ===== */

type AnswerKind string

const (
	AnswerMultipleChoice AnswerKind = "qcm"
	AnswerFreeText       AnswerKind = "texte_libre"
	AnswerList           AnswerKind = "liste"
	AnswerScale          AnswerKind = "echelle"
)

func (k AnswerKind) Valid() bool {
	switch k {
	case AnswerMultipleChoice, AnswerFreeText, AnswerList, AnswerScale:
		return true
	}
	return false
}

// NeedsOptions: every kind except free text carries an options payload.
func (k AnswerKind) NeedsOptions() bool { return k != AnswerFreeText }

type QuestionModel struct {
	QuestionID           uuid.UUID              `gorm:"type:uuid;primaryKey;column:question_id" json:"id"`
	QuestionFormationID  uuid.UUID              `gorm:"type:uuid;not null;index:idx_questions_formation_doc,priority:1;column:question_formation_id" json:"formation_id"`
	QuestionDocumentType stepModel.DocumentType `gorm:"type:varchar(32);not null;index:idx_questions_formation_doc,priority:2;column:question_document_type" json:"document_type"`
	QuestionOrder        int                    `gorm:"not null;default:0;column:question_order" json:"ordre"`
	QuestionLabel        string                 `gorm:"type:text;not null;column:question_label" json:"libelle"`
	QuestionAnswerKind   AnswerKind             `gorm:"type:varchar(20);not null;column:question_answer_kind" json:"type_reponse"`
	QuestionOptions      datatypes.JSON         `gorm:"column:question_options" json:"options"`
	QuestionCreatedAt    time.Time              `gorm:"autoCreateTime;column:question_created_at" json:"created_at"`
}

func (QuestionModel) TableName() string { return "questions" }

func (q *QuestionModel) BeforeCreate(tx *gorm.DB) error {
	if q.QuestionID == uuid.Nil {
		q.QuestionID = uuid.New()
	}
	return nil
}
