package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sfformation_backend/internals/features/formations/model"
	stepModel "sfformation_backend/internals/features/steps/model"
	submissionModel "sfformation_backend/internals/features/submissions/model"
	helper "sfformation_backend/internals/helpers"
	"sfformation_backend/internals/testutil"
)

func TestCreateFormation_SeedsDocuments(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	_, err := CreateFormation(ctx, db, "   ")
	assert.True(t, helper.IsValidation(err))

	f, err := CreateFormation(ctx, db, " Hygiène alimentaire ")
	require.NoError(t, err)
	assert.Equal(t, "Hygiène alimentaire", f.FormationName)

	docs, err := ListDocuments(ctx, db, f.FormationID)
	require.NoError(t, err)
	require.Len(t, docs, len(stepModel.DocumentTypes))
	for i, d := range docs {
		assert.Equal(t, stepModel.DocumentTypes[i], d.FormationDocumentType)
		assert.Equal(t, i+1, d.FormationDocumentOrder)
	}
	assert.Equal(t, model.FilledByTrainer, docs[len(docs)-1].FormationDocumentFilledBy)
}

func TestUpdateDocument(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	f, err := CreateFormation(ctx, db, "HACCP")
	require.NoError(t, err)

	name := "Quiz d'entrée"
	doc, err := UpdateDocument(ctx, db, f.FormationID, stepModel.DocPreTest, DocumentPatch{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, name, doc.FormationDocumentDisplayName)

	got, err := GetDocument(ctx, db, f.FormationID, stepModel.DocPreTest)
	require.NoError(t, err)
	assert.Equal(t, name, got.FormationDocumentDisplayName)

	bad := model.FilledBy("admin")
	_, err = UpdateDocument(ctx, db, f.FormationID, stepModel.DocPreTest, DocumentPatch{FilledBy: &bad})
	assert.True(t, helper.IsValidation(err))

	_, err = UpdateDocument(ctx, db, uuid.New(), stepModel.DocPreTest, DocumentPatch{DisplayName: &name})
	assert.True(t, helper.IsNotFound(err))
}

func TestGetDocument_FallsBackToDefault(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	f := model.FormationModel{FormationName: "Sans documents"}
	require.NoError(t, db.Create(&f).Error)

	doc, err := GetDocument(ctx, db, f.FormationID, stepModel.DocFinalReview)
	require.NoError(t, err)
	assert.Equal(t, model.FilledByTrainer, doc.FormationDocumentFilledBy)
	assert.Equal(t, stepModel.DocFinalReview.Label(), doc.FormationDocumentDisplayName)
}

func TestQuestions_CRUD(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	f, err := CreateFormation(ctx, db, "HACCP")
	require.NoError(t, err)

	_, err = CreateQuestion(ctx, db, f.FormationID, QuestionInput{
		DocumentType: stepModel.DocPreTest, Label: "Température ?", AnswerKind: model.AnswerMultipleChoice,
	})
	assert.True(t, helper.IsValidation(err), "qcm needs options")

	q, err := CreateQuestion(ctx, db, f.FormationID, QuestionInput{
		DocumentType: stepModel.DocPreTest,
		Order:        1,
		Label:        "Température de la chambre froide ?",
		AnswerKind:   model.AnswerMultipleChoice,
		Options:      json.RawMessage(`["0-3°C","4-8°C"]`),
	})
	require.NoError(t, err)

	free, err := CreateQuestion(ctx, db, f.FormationID, QuestionInput{
		DocumentType: stepModel.DocSatisfaction,
		Label:        "Commentaires",
		AnswerKind:   model.AnswerFreeText,
		Options:      json.RawMessage(`["ignoré"]`),
	})
	require.NoError(t, err)
	assert.Empty(t, free.QuestionOptions)

	pre := stepModel.DocPreTest
	rows, err := ListQuestions(ctx, db, f.FormationID, &pre)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	label := "Température de stockage ?"
	updated, err := UpdateQuestion(ctx, db, q.QuestionID, QuestionPatch{Label: &label})
	require.NoError(t, err)
	assert.Equal(t, label, updated.QuestionLabel)

	value := "0-3°C"
	resp := submissionModel.ResponseModel{ResponseQuestionID: q.QuestionID, ResponseEnrollmentID: uuid.New(), ResponseValue: &value}
	require.NoError(t, db.Create(&resp).Error)

	require.NoError(t, DeleteQuestion(ctx, db, q.QuestionID))
	var n int64
	require.NoError(t, db.Model(&submissionModel.ResponseModel{}).Where("response_question_id = ?", q.QuestionID).Count(&n).Error)
	assert.Zero(t, n)

	assert.True(t, helper.IsNotFound(DeleteQuestion(ctx, db, q.QuestionID)))
}
