package dto

import (
	"encoding/json"
	"strings"

	"sfformation_backend/internals/features/formations/model"
	"sfformation_backend/internals/features/formations/service"
	stepModel "sfformation_backend/internals/features/steps/model"
)

/* =======================================================
   FORMATIONS
   ======================================================= */

type CreateFormationRequest struct {
	Name string `json:"nom" validate:"required,max=200"`
}

func (r *CreateFormationRequest) Normalize() { r.Name = strings.TrimSpace(r.Name) }

/* =======================================================
   DOCUMENTS
   ======================================================= */

// UpdateDocumentRequest: pointers so omitted fields stay unchanged.
type UpdateDocumentRequest struct {
	DisplayName *string `json:"nom_affiche" validate:"omitempty,min=1,max=200"`
	Order       *int    `json:"ordre" validate:"omitempty,min=0"`
	FilledBy    *string `json:"rempli_par" validate:"omitempty,oneof=stagiaire formateur"`
}

func (r *UpdateDocumentRequest) ToPatch() service.DocumentPatch {
	p := service.DocumentPatch{DisplayName: r.DisplayName, Order: r.Order}
	if r.FilledBy != nil {
		fb := model.FilledBy(*r.FilledBy)
		p.FilledBy = &fb
	}
	return p
}

/* =======================================================
   QUESTIONS
   ======================================================= */

type CreateQuestionRequest struct {
	DocumentType string          `json:"document_type" validate:"required,oneof=test_pre points_cles test_fin enquete_satisfaction bilan_final"`
	Order        int             `json:"ordre" validate:"min=0"`
	Label        string          `json:"libelle" validate:"required"`
	AnswerKind   string          `json:"type_reponse" validate:"required,oneof=qcm texte_libre liste echelle"`
	Options      json.RawMessage `json:"options"`
}

func (r *CreateQuestionRequest) ToInput() service.QuestionInput {
	return service.QuestionInput{
		DocumentType: stepModel.DocumentType(r.DocumentType),
		Order:        r.Order,
		Label:        strings.TrimSpace(r.Label),
		AnswerKind:   model.AnswerKind(r.AnswerKind),
		Options:      r.Options,
	}
}

type UpdateQuestionRequest struct {
	Order      *int            `json:"ordre" validate:"omitempty,min=0"`
	Label      *string         `json:"libelle" validate:"omitempty,min=1"`
	AnswerKind *string         `json:"type_reponse" validate:"omitempty,oneof=qcm texte_libre liste echelle"`
	Options    json.RawMessage `json:"options"`
}

func (r *UpdateQuestionRequest) ToPatch() service.QuestionPatch {
	p := service.QuestionPatch{Order: r.Order, Label: r.Label, Options: r.Options}
	if r.AnswerKind != nil {
		k := model.AnswerKind(*r.AnswerKind)
		p.AnswerKind = &k
	}
	return p
}
