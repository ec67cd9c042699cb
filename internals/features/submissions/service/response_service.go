package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	formationModel "sfformation_backend/internals/features/formations/model"
	stepModel "sfformation_backend/internals/features/steps/model"
	"sfformation_backend/internals/features/submissions/model"
	helper "sfformation_backend/internals/helpers"
)

type AnswerInput struct {
	QuestionID uuid.UUID       `json:"question_id"`
	Value      *string         `json:"valeur"`
	ValueJSON  json.RawMessage `json:"valeur_json"`
}

type QuestionAnswer struct {
	formationModel.QuestionModel
	Response *model.ResponseModel `json:"reponse"`
}

func ListQuestions(ctx context.Context, db *gorm.DB, formationID uuid.UUID, docType stepModel.DocumentType) ([]formationModel.QuestionModel, error) {
	var rows []formationModel.QuestionModel
	err := db.WithContext(ctx).
		Where("question_formation_id = ? AND question_document_type = ?", formationID, docType).
		Order("question_order ASC, question_created_at ASC").
		Find(&rows).Error
	return rows, err
}

// QuestionsWithAnswers pairs each question of a document with the enrollment's
// current answer, if any.
func QuestionsWithAnswers(ctx context.Context, db *gorm.DB, formationID uuid.UUID, docType stepModel.DocumentType, enrollmentID uuid.UUID) ([]QuestionAnswer, error) {
	questions, err := ListQuestions(ctx, db, formationID, docType)
	if err != nil {
		return nil, err
	}
	out := make([]QuestionAnswer, 0, len(questions))
	if len(questions) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.QuestionID)
	}
	var responses []model.ResponseModel
	if err := db.WithContext(ctx).
		Where("response_enrollment_id = ? AND response_question_id IN ?", enrollmentID, ids).
		Find(&responses).Error; err != nil {
		return nil, err
	}
	byQuestion := make(map[uuid.UUID]*model.ResponseModel, len(responses))
	for i := range responses {
		byQuestion[responses[i].ResponseQuestionID] = &responses[i]
	}
	for _, q := range questions {
		out = append(out, QuestionAnswer{QuestionModel: q, Response: byQuestion[q.QuestionID]})
	}
	return out, nil
}

// UpsertResponses writes answers for one enrollment. Every question must belong
// to the formation (and to docType when given). Rows already written stay even
// if a later step fails.
func UpsertResponses(ctx context.Context, db *gorm.DB, enrollmentID, formationID uuid.UUID, docType *stepModel.DocumentType, answers []AnswerInput) ([]model.ResponseModel, error) {
	if len(answers) == 0 {
		return nil, helper.NewValidationError("reponses requis")
	}

	ids := make([]uuid.UUID, 0, len(answers))
	seen := make(map[uuid.UUID]struct{}, len(answers))
	for _, a := range answers {
		if a.QuestionID == uuid.Nil {
			return nil, helper.NewValidationError("question_id requis")
		}
		if _, dup := seen[a.QuestionID]; dup {
			return nil, helper.NewValidationError("question_id en double")
		}
		seen[a.QuestionID] = struct{}{}
		ids = append(ids, a.QuestionID)
	}

	q := db.WithContext(ctx).Model(&formationModel.QuestionModel{}).
		Where("question_id IN ? AND question_formation_id = ?", ids, formationID)
	if docType != nil {
		q = q.Where("question_document_type = ?", *docType)
	}
	var known int64
	if err := q.Count(&known).Error; err != nil {
		return nil, err
	}
	if int(known) != len(ids) {
		return nil, helper.NewValidationError("Question inconnue pour cette formation")
	}

	now := time.Now().UTC()
	rows := make([]model.ResponseModel, 0, len(answers))
	for _, a := range answers {
		var value *string
		if a.Value != nil {
			v := strings.TrimSpace(*a.Value)
			value = &v
		}
		var raw datatypes.JSON
		if len(a.ValueJSON) > 0 && string(a.ValueJSON) != "null" {
			if !json.Valid(a.ValueJSON) {
				return nil, helper.NewValidationError("valeur_json invalide")
			}
			raw = datatypes.JSON(a.ValueJSON)
		}
		rows = append(rows, model.ResponseModel{
			ResponseEnrollmentID: enrollmentID,
			ResponseQuestionID:   a.QuestionID,
			ResponseValue:        value,
			ResponseValueJSON:    raw,
			ResponseCreatedAt:    now,
			ResponseUpdatedAt:    now,
		})
	}

	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "response_enrollment_id"}, {Name: "response_question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"response_value",
			"response_value_json",
			"response_updated_at",
		}),
	}).Create(&rows).Error
	if err != nil {
		return nil, err
	}

	// On conflict the stored row keeps its own id and created_at.
	var stored []model.ResponseModel
	if err := db.WithContext(ctx).
		Where("response_enrollment_id = ? AND response_question_id IN ?", enrollmentID, ids).
		Find(&stored).Error; err != nil {
		return nil, err
	}
	byQuestion := make(map[uuid.UUID]model.ResponseModel, len(stored))
	for _, r := range stored {
		byQuestion[r.ResponseQuestionID] = r
	}
	out := make([]model.ResponseModel, 0, len(ids))
	for _, id := range ids {
		if r, ok := byQuestion[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func ListResponses(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID) ([]model.ResponseModel, error) {
	var rows []model.ResponseModel
	err := db.WithContext(ctx).
		Where("response_enrollment_id = ?", enrollmentID).
		Find(&rows).Error
	return rows, err
}
