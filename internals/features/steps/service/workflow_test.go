package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	formationModel "sfformation_backend/internals/features/formations/model"
	"sfformation_backend/internals/features/steps/model"
	submissionService "sfformation_backend/internals/features/submissions/service"
	helper "sfformation_backend/internals/helpers"
	"sfformation_backend/internals/testutil"
)

func signaturePNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	img.Set(5, 5, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func setFinalReviewFilledBy(t *testing.T, db *gorm.DB, formationID uuid.UUID, by formationModel.FilledBy) {
	t.Helper()
	require.NoError(t, db.Model(&formationModel.FormationDocumentModel{}).
		Where("formation_document_formation_id = ? AND formation_document_type = ?", formationID, model.DocFinalReview).
		Update("formation_document_filled_by", by).Error)
}

func TestTriggerStep_OwnershipAndValidation(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedSession(t, db, 1, 1)
	other := testutil.SeedSession(t, db, 1, 0)
	w := NewWorkflow(db)
	ctx := context.Background()

	_, err := w.TriggerStep(ctx, fx.TrainerUser.ID, fx.Session.SessionID, "etape_inconnue", nil)
	assert.True(t, helper.IsValidation(err))

	_, err = w.TriggerStep(ctx, other.TrainerUser.ID, fx.Session.SessionID, string(model.StepPreTest), nil)
	assert.True(t, helper.IsNotFound(err))

	tr, err := w.TriggerStep(ctx, fx.TrainerUser.ID, fx.Session.SessionID, string(model.StepPreTest), nil)
	require.NoError(t, err)
	assert.Equal(t, fx.Session.SessionID, tr.TriggerSessionID)
}

func TestCompleteStep_RequiresTrigger(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedSession(t, db, 1, 1)
	trainee := fx.Trainees[0]
	w := NewWorkflow(db).WithClock(testutil.Clock(t0))
	ctx := context.Background()

	_, err := w.CompleteStep(ctx, trainee.User.ID, trainee.Enrollment.EnrollmentID, string(model.StepPreTest), nil)
	assert.True(t, helper.IsValidation(err))

	_, err = w.TriggerStep(ctx, fx.TrainerUser.ID, fx.Session.SessionID, string(model.StepPreTest), nil)
	require.NoError(t, err)

	c, err := w.CompleteStep(ctx, trainee.User.ID, trainee.Enrollment.EnrollmentID, string(model.StepPreTest), nil)
	require.NoError(t, err)
	require.NotNil(t, c.CompletionCompletedBy)
	assert.Equal(t, trainee.User.ID, *c.CompletionCompletedBy)

	_, err = w.CompleteStep(ctx, trainee.User.ID, trainee.Enrollment.EnrollmentID, string(model.StepPreTest), nil)
	assert.True(t, helper.IsDuplicate(err))
}

func TestCompleteStep_ForeignEnrollment(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedSession(t, db, 1, 2)
	w := NewWorkflow(db)

	_, err := w.CompleteStep(context.Background(), fx.Trainees[0].User.ID,
		fx.Trainees[1].Enrollment.EnrollmentID, string(model.StepPreTest), nil)
	assert.True(t, helper.IsNotFound(err))
}

func TestCompleteStep_SignInNeedsSignature(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedSession(t, db, 2, 1)
	trainee := fx.Trainees[0]
	w := NewWorkflow(db).WithClock(testutil.Clock(t0))
	ctx := context.Background()
	slot := fx.Slots[0].SlotID

	_, err := w.TriggerStep(ctx, fx.TrainerUser.ID, fx.Session.SessionID, string(model.StepSignIn), &slot)
	require.NoError(t, err)

	_, err = w.CompleteStep(ctx, trainee.User.ID, trainee.Enrollment.EnrollmentID, string(model.StepSignIn), nil)
	assert.True(t, helper.IsValidation(err))

	_, err = w.CompleteStep(ctx, trainee.User.ID, trainee.Enrollment.EnrollmentID, string(model.StepSignIn), &slot)
	assert.True(t, helper.IsValidation(err))

	sig, err := w.SignIn(ctx, trainee.User.ID, trainee.Enrollment.EnrollmentID, slot, signaturePNG(t))
	require.NoError(t, err)
	assert.Equal(t, slot, sig.SignatureSlotID)

	_, err = w.SignIn(ctx, trainee.User.ID, trainee.Enrollment.EnrollmentID, slot, signaturePNG(t))
	assert.True(t, helper.IsDuplicate(err))

	c, err := w.CompleteStep(ctx, trainee.User.ID, trainee.Enrollment.EnrollmentID, string(model.StepSignIn), &slot)
	require.NoError(t, err)
	require.NotNil(t, c.CompletionSlotID)
	assert.Equal(t, slot, *c.CompletionSlotID)

	// Second slot was never triggered.
	slot2 := fx.Slots[1].SlotID
	_, err = w.SignIn(ctx, trainee.User.ID, trainee.Enrollment.EnrollmentID, slot2, signaturePNG(t))
	require.NoError(t, err)
	_, err = w.CompleteStep(ctx, trainee.User.ID, trainee.Enrollment.EnrollmentID, string(model.StepSignIn), &slot2)
	assert.True(t, helper.IsValidation(err))
}

func TestCompleteStep_FinalReviewFilledByTrainer(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedSession(t, db, 1, 1)
	trainee := fx.Trainees[0]
	w := NewWorkflow(db).WithClock(testutil.Clock(t0))
	ctx := context.Background()

	_, err := w.TriggerStep(ctx, fx.TrainerUser.ID, fx.Session.SessionID, string(model.StepFinalReview), nil)
	require.NoError(t, err)

	_, err = w.CompleteStep(ctx, trainee.User.ID, trainee.Enrollment.EnrollmentID, string(model.StepFinalReview), nil)
	assert.ErrorIs(t, err, helper.ErrAuthorization)

	// still the trainee's pending step while the trainer has not filled it
	p, err := w.PendingStep(ctx, trainee.User.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, model.StepFinalReview, p.StepType)

	setFinalReviewFilledBy(t, db, fx.Formation.FormationID, formationModel.FilledByTrainee)
	_, err = w.CompleteStep(ctx, trainee.User.ID, trainee.Enrollment.EnrollmentID, string(model.StepFinalReview), nil)
	require.NoError(t, err)
}

func TestSubmitFinalReview(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedSession(t, db, 1, 1)
	trainee := fx.Trainees[0]
	w := NewWorkflow(db).WithClock(testutil.Clock(t0))
	ctx := context.Background()

	q := formationModel.QuestionModel{
		QuestionFormationID:  fx.Formation.FormationID,
		QuestionDocumentType: model.DocFinalReview,
		QuestionOrder:        1,
		QuestionLabel:        "Objectifs atteints ?",
		QuestionAnswerKind:   formationModel.AnswerFreeText,
	}
	require.NoError(t, db.Create(&q).Error)

	value := "Oui"
	answers := []submissionService.AnswerInput{{QuestionID: q.QuestionID, Value: &value}}

	c, err := w.SubmitFinalReview(ctx, fx.TrainerUser.ID, fx.Session.SessionID, trainee.Enrollment.EnrollmentID, answers)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, model.StepFinalReview, c.CompletionStepType)

	again, err := w.SubmitFinalReview(ctx, fx.TrainerUser.ID, fx.Session.SessionID, trainee.Enrollment.EnrollmentID, nil)
	require.NoError(t, err)
	assert.Nil(t, again)

	form, err := w.FinalReview(ctx, fx.TrainerUser.ID, fx.Session.SessionID, trainee.Enrollment.EnrollmentID)
	require.NoError(t, err)
	assert.Equal(t, formationModel.FilledByTrainer, form.FilledBy)
	require.Len(t, form.Questions, 1)
	require.NotNil(t, form.Questions[0].Response)
	assert.Equal(t, "Oui", *form.Questions[0].Response.ResponseValue)

	setFinalReviewFilledBy(t, db, fx.Formation.FormationID, formationModel.FilledByTrainee)
	_, err = w.SubmitFinalReview(ctx, fx.TrainerUser.ID, fx.Session.SessionID, trainee.Enrollment.EnrollmentID, nil)
	assert.True(t, helper.IsValidation(err))
}

func TestSaveAnswers_FinalReviewFilledByTrainer(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedSession(t, db, 1, 1)
	trainee := fx.Trainees[0]
	w := NewWorkflow(db).WithClock(testutil.Clock(t0))
	ctx := context.Background()

	review := formationModel.QuestionModel{
		QuestionFormationID:  fx.Formation.FormationID,
		QuestionDocumentType: model.DocFinalReview,
		QuestionOrder:        1,
		QuestionLabel:        "Avis du formateur",
		QuestionAnswerKind:   formationModel.AnswerFreeText,
	}
	require.NoError(t, db.Create(&review).Error)
	keyPoints := formationModel.QuestionModel{
		QuestionFormationID:  fx.Formation.FormationID,
		QuestionDocumentType: model.DocMidTest,
		QuestionOrder:        1,
		QuestionLabel:        "Point retenu",
		QuestionAnswerKind:   formationModel.AnswerFreeText,
	}
	require.NoError(t, db.Create(&keyPoints).Error)

	trainerValue := "avis formateur"
	_, err := w.SubmitFinalReview(ctx, fx.TrainerUser.ID, fx.Session.SessionID, trainee.Enrollment.EnrollmentID,
		[]submissionService.AnswerInput{{QuestionID: review.QuestionID, Value: &trainerValue}})
	require.NoError(t, err)

	overwrite := "réponse du stagiaire"
	_, err = w.SaveAnswers(ctx, trainee.User.ID, trainee.Enrollment.EnrollmentID,
		[]submissionService.AnswerInput{{QuestionID: review.QuestionID, Value: &overwrite}})
	assert.ErrorIs(t, err, helper.ErrAuthorization)

	// mixed batches are refused as a whole
	_, err = w.SaveAnswers(ctx, trainee.User.ID, trainee.Enrollment.EnrollmentID, []submissionService.AnswerInput{
		{QuestionID: keyPoints.QuestionID, Value: &overwrite},
		{QuestionID: review.QuestionID, Value: &overwrite},
	})
	assert.ErrorIs(t, err, helper.ErrAuthorization)

	form, err := w.FinalReview(ctx, fx.TrainerUser.ID, fx.Session.SessionID, trainee.Enrollment.EnrollmentID)
	require.NoError(t, err)
	require.Len(t, form.Questions, 1)
	require.NotNil(t, form.Questions[0].Response)
	assert.Equal(t, trainerValue, *form.Questions[0].Response.ResponseValue)

	saved, err := w.SaveAnswers(ctx, trainee.User.ID, trainee.Enrollment.EnrollmentID,
		[]submissionService.AnswerInput{{QuestionID: keyPoints.QuestionID, Value: &overwrite}})
	require.NoError(t, err)
	require.Len(t, saved, 1)

	setFinalReviewFilledBy(t, db, fx.Formation.FormationID, formationModel.FilledByTrainee)
	_, err = w.SaveAnswers(ctx, trainee.User.ID, trainee.Enrollment.EnrollmentID,
		[]submissionService.AnswerInput{{QuestionID: review.QuestionID, Value: &overwrite}})
	require.NoError(t, err)
}

func TestSaveAnswers_ReturnsStoredRows(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedSession(t, db, 1, 1)
	trainee := fx.Trainees[0]
	w := NewWorkflow(db)
	ctx := context.Background()

	q := formationModel.QuestionModel{
		QuestionFormationID:  fx.Formation.FormationID,
		QuestionDocumentType: model.DocPreTest,
		QuestionLabel:        "Question",
		QuestionAnswerKind:   formationModel.AnswerFreeText,
	}
	require.NoError(t, db.Create(&q).Error)

	a, b := "premier", "second"
	first, err := w.SaveAnswers(ctx, trainee.User.ID, trainee.Enrollment.EnrollmentID,
		[]submissionService.AnswerInput{{QuestionID: q.QuestionID, Value: &a}})
	require.NoError(t, err)
	second, err := w.SaveAnswers(ctx, trainee.User.ID, trainee.Enrollment.EnrollmentID,
		[]submissionService.AnswerInput{{QuestionID: q.QuestionID, Value: &b}})
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ResponseID, second[0].ResponseID)
	assert.Equal(t, "second", *second[0].ResponseValue)
}

func TestSnapshot(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedSession(t, db, 1, 2)
	w := NewWorkflow(db).WithClock(testutil.Clock(t0))
	ctx := context.Background()

	empty, err := w.Snapshot(ctx, fx.TrainerUser.ID, fx.Session.SessionID)
	require.NoError(t, err)
	assert.NotNil(t, empty.Triggers)
	assert.NotNil(t, empty.Completions)
	assert.Len(t, empty.Enrollments, 2)

	_, err = w.TriggerStep(ctx, fx.TrainerUser.ID, fx.Session.SessionID, string(model.StepMidTest), nil)
	require.NoError(t, err)
	_, err = w.CompleteStep(ctx, fx.Trainees[0].User.ID, fx.Trainees[0].Enrollment.EnrollmentID, string(model.StepMidTest), nil)
	require.NoError(t, err)

	snap, err := w.Snapshot(ctx, fx.TrainerUser.ID, fx.Session.SessionID)
	require.NoError(t, err)
	assert.Len(t, snap.Triggers, 1)
	assert.Len(t, snap.Completions, 1)
	require.Len(t, snap.Progress, 1)
	assert.Equal(t, 1, snap.Progress[0].CompletedCount)
	assert.Equal(t, 1, snap.Progress[0].PendingCount)
}

func TestTraineeSessions_WithoutProfile(t *testing.T) {
	db := testutil.NewDB(t)
	rows, err := NewWorkflow(db).TraineeSessions(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, rows)
}
