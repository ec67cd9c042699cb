package dto

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	submissionService "sfformation_backend/internals/features/submissions/service"
	helper "sfformation_backend/internals/helpers"
)

/* =======================================================
   REQUEST DTOs
   ======================================================= */

// TriggerStepRequest: POST /api/formateur/sessions/:id/steps
type TriggerStepRequest struct {
	StepType string  `json:"step_type" validate:"required"`
	SlotID   *string `json:"creneau_id"`
}

func (r *TriggerStepRequest) Normalize() {
	r.StepType = strings.TrimSpace(r.StepType)
}

// CompleteStepRequest: POST /api/stagiaire/complete-step
type CompleteStepRequest struct {
	EnrollmentID string  `json:"inscription_id" validate:"required,uuid"`
	StepType     string  `json:"step_type" validate:"required"`
	SlotID       *string `json:"creneau_id"`
}

func (r *CompleteStepRequest) Normalize() {
	r.EnrollmentID = strings.TrimSpace(r.EnrollmentID)
	r.StepType = strings.TrimSpace(r.StepType)
}

// SignInRequest: POST /api/stagiaire/emargement
type SignInRequest struct {
	EnrollmentID  string `json:"inscription_id" validate:"required,uuid"`
	SlotID        string `json:"creneau_id" validate:"required,uuid"`
	SignatureData string `json:"signature_data" validate:"required"`
}

type AnswerItem struct {
	QuestionID string          `json:"question_id" validate:"required,uuid"`
	Value      *string         `json:"valeur"`
	ValueJSON  json.RawMessage `json:"valeur_json"`
}

// AnswersRequest: POST /api/stagiaire/reponses
type AnswersRequest struct {
	EnrollmentID string       `json:"inscription_id" validate:"required,uuid"`
	Answers      []AnswerItem `json:"reponses" validate:"required,min=1,dive"`
}

// FinalReviewRequest: POST /api/formateur/sessions/:id/bilan-final/:inscription_id
type FinalReviewRequest struct {
	Answers []AnswerItem `json:"reponses" validate:"dive"`
}

/* =======================================================
   CONVERSIONS
   ======================================================= */

// ParseOptionalUUID treats nil, "" and "null" as absent.
func ParseOptionalUUID(field string, s *string) (*uuid.UUID, error) {
	if s == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	if v == "" || v == "null" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, helper.NewValidationError(field + " invalide")
	}
	return &id, nil
}

func ToAnswerInputs(items []AnswerItem) ([]submissionService.AnswerInput, error) {
	out := make([]submissionService.AnswerInput, 0, len(items))
	for _, it := range items {
		qid, err := uuid.Parse(strings.TrimSpace(it.QuestionID))
		if err != nil {
			return nil, helper.NewValidationError("question_id invalide")
		}
		out = append(out, submissionService.AnswerInput{
			QuestionID: qid,
			Value:      it.Value,
			ValueJSON:  it.ValueJSON,
		})
	}
	return out, nil
}
