package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"sfformation_backend/internals/features/formations/model"
	stepModel "sfformation_backend/internals/features/steps/model"
	submissionModel "sfformation_backend/internals/features/submissions/model"
	helper "sfformation_backend/internals/helpers"
)

/* ===== Formations ===== */

// CreateFormation also seeds the five default documents.
func CreateFormation(ctx context.Context, db *gorm.DB, name string) (*model.FormationModel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, helper.NewValidationError("Le nom de la formation est requis")
	}
	f := model.FormationModel{FormationName: name}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&f).Error; err != nil {
			return err
		}
		docs := model.DefaultDocuments(f.FormationID)
		return tx.Create(&docs).Error
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] Formation créée id=%s nom=%q", f.FormationID, f.FormationName)
	return &f, nil
}

func ListFormations(ctx context.Context, db *gorm.DB) ([]model.FormationModel, error) {
	var rows []model.FormationModel
	err := db.WithContext(ctx).Order("formation_name ASC").Find(&rows).Error
	return rows, err
}

func GetFormation(ctx context.Context, db *gorm.DB, formationID uuid.UUID) (*model.FormationModel, error) {
	var f model.FormationModel
	err := db.WithContext(ctx).Where("formation_id = ?", formationID).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, helper.NewNotFoundError("Formation non trouvée")
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

/* ===== Documents ===== */

func ListDocuments(ctx context.Context, db *gorm.DB, formationID uuid.UUID) ([]model.FormationDocumentModel, error) {
	var rows []model.FormationDocumentModel
	err := db.WithContext(ctx).
		Where("formation_document_formation_id = ?", formationID).
		Order("formation_document_order ASC").
		Find(&rows).Error
	return rows, err
}

// GetDocument falls back to the default document when the row is missing.
func GetDocument(ctx context.Context, db *gorm.DB, formationID uuid.UUID, docType stepModel.DocumentType) (model.FormationDocumentModel, error) {
	var d model.FormationDocumentModel
	err := db.WithContext(ctx).
		Where("formation_document_formation_id = ? AND formation_document_type = ?", formationID, docType).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		for _, def := range model.DefaultDocuments(formationID) {
			if def.FormationDocumentType == docType {
				return def, nil
			}
		}
		return d, helper.NewNotFoundError("Document non trouvé")
	}
	return d, err
}

type DocumentPatch struct {
	DisplayName *string
	Order       *int
	FilledBy    *model.FilledBy
}

func UpdateDocument(ctx context.Context, db *gorm.DB, formationID uuid.UUID, docType stepModel.DocumentType, p DocumentPatch) (*model.FormationDocumentModel, error) {
	if _, err := GetFormation(ctx, db, formationID); err != nil {
		return nil, err
	}
	doc, err := GetDocument(ctx, db, formationID, docType)
	if err != nil {
		return nil, err
	}
	if p.DisplayName != nil {
		name := strings.TrimSpace(*p.DisplayName)
		if name == "" {
			return nil, helper.NewValidationError("nom_affiche ne peut pas être vide")
		}
		doc.FormationDocumentDisplayName = name
	}
	if p.Order != nil {
		if *p.Order < 0 {
			return nil, helper.NewValidationError("ordre doit être positif")
		}
		doc.FormationDocumentOrder = *p.Order
	}
	if p.FilledBy != nil {
		if !p.FilledBy.Valid() {
			return nil, helper.NewValidationError("rempli_par invalide")
		}
		doc.FormationDocumentFilledBy = *p.FilledBy
	}
	// Save inserts the default row when it did not exist yet.
	if err := db.WithContext(ctx).Save(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

/* ===== Questions ===== */

type QuestionInput struct {
	DocumentType stepModel.DocumentType
	Order        int
	Label        string
	AnswerKind   model.AnswerKind
	Options      json.RawMessage
}

func validateQuestion(in *QuestionInput) error {
	in.Label = strings.TrimSpace(in.Label)
	switch {
	case !in.DocumentType.Valid():
		return helper.NewValidationError("document_type invalide")
	case in.Label == "":
		return helper.NewValidationError("libelle requis")
	case in.Order < 0:
		return helper.NewValidationError("ordre doit être positif")
	case !in.AnswerKind.Valid():
		return helper.NewValidationError("type_reponse invalide")
	}
	hasOptions := len(in.Options) > 0 && string(in.Options) != "null"
	if hasOptions && !json.Valid(in.Options) {
		return helper.NewValidationError("options invalides")
	}
	if in.AnswerKind.NeedsOptions() && !hasOptions {
		return helper.NewValidationError("options requises pour ce type de réponse")
	}
	if !in.AnswerKind.NeedsOptions() {
		in.Options = nil
	}
	return nil
}

func ListQuestions(ctx context.Context, db *gorm.DB, formationID uuid.UUID, docType *stepModel.DocumentType) ([]model.QuestionModel, error) {
	q := db.WithContext(ctx).Where("question_formation_id = ?", formationID)
	if docType != nil {
		q = q.Where("question_document_type = ?", *docType)
	}
	var rows []model.QuestionModel
	err := q.Order("question_document_type ASC, question_order ASC, question_created_at ASC").Find(&rows).Error
	return rows, err
}

func CreateQuestion(ctx context.Context, db *gorm.DB, formationID uuid.UUID, in QuestionInput) (*model.QuestionModel, error) {
	if err := validateQuestion(&in); err != nil {
		return nil, err
	}
	if _, err := GetFormation(ctx, db, formationID); err != nil {
		return nil, err
	}
	q := model.QuestionModel{
		QuestionFormationID:  formationID,
		QuestionDocumentType: in.DocumentType,
		QuestionOrder:        in.Order,
		QuestionLabel:        in.Label,
		QuestionAnswerKind:   in.AnswerKind,
		QuestionOptions:      datatypes.JSON(in.Options),
	}
	if err := db.WithContext(ctx).Create(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

type QuestionPatch struct {
	Order      *int
	Label      *string
	AnswerKind *model.AnswerKind
	Options    json.RawMessage
}

func UpdateQuestion(ctx context.Context, db *gorm.DB, questionID uuid.UUID, p QuestionPatch) (*model.QuestionModel, error) {
	var q model.QuestionModel
	err := db.WithContext(ctx).Where("question_id = ?", questionID).First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, helper.NewNotFoundError("Question non trouvée")
	}
	if err != nil {
		return nil, err
	}

	in := QuestionInput{
		DocumentType: q.QuestionDocumentType,
		Order:        q.QuestionOrder,
		Label:        q.QuestionLabel,
		AnswerKind:   q.QuestionAnswerKind,
		Options:      json.RawMessage(q.QuestionOptions),
	}
	if p.Order != nil {
		in.Order = *p.Order
	}
	if p.Label != nil {
		in.Label = *p.Label
	}
	if p.AnswerKind != nil {
		in.AnswerKind = *p.AnswerKind
	}
	if p.Options != nil {
		in.Options = p.Options
	}
	if err := validateQuestion(&in); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"question_order":       in.Order,
		"question_label":       in.Label,
		"question_answer_kind": in.AnswerKind,
		"question_options":     datatypes.JSON(in.Options),
	}
	if err := db.WithContext(ctx).Model(&q).Updates(updates).Error; err != nil {
		return nil, err
	}
	q.QuestionOrder = in.Order
	q.QuestionLabel = in.Label
	q.QuestionAnswerKind = in.AnswerKind
	q.QuestionOptions = datatypes.JSON(in.Options)
	return &q, nil
}

// DeleteQuestion removes the question and its responses.
func DeleteQuestion(ctx context.Context, db *gorm.DB, questionID uuid.UUID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("response_question_id = ?", questionID).Delete(&submissionModel.ResponseModel{}).Error; err != nil {
			return err
		}
		res := tx.Where("question_id = ?", questionID).Delete(&model.QuestionModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return helper.NewNotFoundError("Question non trouvée")
		}
		return nil
	})
}
