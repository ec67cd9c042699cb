package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	formationModel "sfformation_backend/internals/features/formations/model"
	formationService "sfformation_backend/internals/features/formations/service"
	sessionModel "sfformation_backend/internals/features/sessions/model"
	sessionService "sfformation_backend/internals/features/sessions/service"
	"sfformation_backend/internals/features/steps/model"
	submissionModel "sfformation_backend/internals/features/submissions/model"
	submissionService "sfformation_backend/internals/features/submissions/service"
	userService "sfformation_backend/internals/features/users/user/service"
	helper "sfformation_backend/internals/helpers"
)

// Workflow ties the ledgers to ownership checks. Role checks happen in the
// route middleware before any of these run.
type Workflow struct {
	db          *gorm.DB
	Triggers    *TriggerLedger
	Completions *CompletionLedger
	Resolver    *PendingResolver
	Progress    *ProgressView
	now         func() time.Time
}

func NewWorkflow(db *gorm.DB) *Workflow {
	triggers := NewTriggerLedger(db)
	completions := NewCompletionLedger(db)
	return &Workflow{
		db:          db,
		Triggers:    triggers,
		Completions: completions,
		Resolver:    NewPendingResolver(db, triggers, completions),
		Progress:    NewProgressView(db, triggers, completions),
		now:         time.Now,
	}
}

// WithClock sets the timestamp source of the workflow and both ledgers.
func (w *Workflow) WithClock(now func() time.Time) *Workflow {
	w.now = now
	w.Triggers.WithClock(now)
	w.Completions.WithClock(now)
	return w
}

func parseStep(raw string) (model.StepType, error) {
	st, err := model.ParseStepType(raw)
	if err != nil {
		return "", helper.NewValidationError("step_type invalide")
	}
	return st, nil
}

/* ===== Trainer side ===== */

func (w *Workflow) ownedSession(ctx context.Context, trainerUserID, sessionID uuid.UUID) (*sessionModel.SessionModel, error) {
	trainer, err := userService.FindTrainerByUserID(ctx, w.db, trainerUserID)
	if err != nil {
		return nil, err
	}
	return sessionService.FindOwnedSession(ctx, w.db, trainer.TrainerID, sessionID)
}

// TriggerStep records a trigger on a session the trainer runs.
func (w *Workflow) TriggerStep(ctx context.Context, trainerUserID, sessionID uuid.UUID, rawStep string, slotID *uuid.UUID) (*model.TriggerModel, error) {
	stepType, err := parseStep(rawStep)
	if err != nil {
		return nil, err
	}
	if _, err := w.ownedSession(ctx, trainerUserID, sessionID); err != nil {
		return nil, err
	}
	return w.Triggers.RecordTrigger(ctx, sessionID, stepType, slotID)
}

type SessionSnapshot struct {
	Session     *sessionModel.SessionModel     `json:"session"`
	Triggers    []model.TriggerModel           `json:"session_step_triggers"`
	Completions []model.CompletionModel        `json:"step_completions"`
	Enrollments []sessionModel.EnrollmentModel `json:"inscriptions"`
	Progress    []StepProgress                 `json:"progress"`
}

// Snapshot loads everything the trainer dashboard shows for one session.
func (w *Workflow) Snapshot(ctx context.Context, trainerUserID, sessionID uuid.UUID) (*SessionSnapshot, error) {
	sess, err := w.ownedSession(ctx, trainerUserID, sessionID)
	if err != nil {
		return nil, err
	}
	return w.SessionSnapshot(ctx, sess)
}

// SessionSnapshot skips the ownership check; admin routes use it directly.
func (w *Workflow) SessionSnapshot(ctx context.Context, sess *sessionModel.SessionModel) (*SessionSnapshot, error) {
	triggers, err := w.Triggers.ListTriggers(ctx, sess.SessionID)
	if err != nil {
		return nil, err
	}
	enrollments, err := sessionService.ListEnrollments(ctx, w.db, sess.SessionID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.EnrollmentID)
	}
	completions, err := w.Completions.ListCompletions(ctx, ids...)
	if err != nil {
		return nil, err
	}
	progress, err := w.Progress.ProgressForSession(ctx, sess.SessionID)
	if err != nil {
		return nil, err
	}
	if triggers == nil {
		triggers = []model.TriggerModel{}
	}
	if completions == nil {
		completions = []model.CompletionModel{}
	}
	return &SessionSnapshot{
		Session:     sess,
		Triggers:    triggers,
		Completions: completions,
		Enrollments: enrollments,
		Progress:    progress,
	}, nil
}

type FinalReviewForm struct {
	EnrollmentID uuid.UUID                          `json:"inscription_id"`
	TraineeName  string                             `json:"stagiaire_nom"`
	FilledBy     formationModel.FilledBy            `json:"rempli_par"`
	Questions    []submissionService.QuestionAnswer `json:"questions"`
}

// FinalReview returns the bilan_final questions of one enrollment with the
// answers already given.
func (w *Workflow) FinalReview(ctx context.Context, trainerUserID, sessionID, enrollmentID uuid.UUID) (*FinalReviewForm, error) {
	sess, err := w.ownedSession(ctx, trainerUserID, sessionID)
	if err != nil {
		return nil, err
	}
	enrollment, err := sessionService.FindEnrollmentInSession(ctx, w.db, sessionID, enrollmentID)
	if err != nil {
		return nil, err
	}
	doc, err := formationService.GetDocument(ctx, w.db, sess.SessionFormationID, model.DocFinalReview)
	if err != nil {
		return nil, err
	}
	questions, err := submissionService.QuestionsWithAnswers(ctx, w.db, sess.SessionFormationID, model.DocFinalReview, enrollmentID)
	if err != nil {
		return nil, err
	}
	form := &FinalReviewForm{
		EnrollmentID: enrollmentID,
		FilledBy:     doc.FormationDocumentFilledBy,
		Questions:    questions,
	}
	if enrollment.Trainee != nil {
		form.TraineeName = enrollment.Trainee.FullName()
	}
	return form, nil
}

// SubmitFinalReview stores the trainer's bilan_final answers and completes
// the step. A completion that already exists counts as success and returns nil.
func (w *Workflow) SubmitFinalReview(ctx context.Context, trainerUserID, sessionID, enrollmentID uuid.UUID, answers []submissionService.AnswerInput) (*model.CompletionModel, error) {
	sess, err := w.ownedSession(ctx, trainerUserID, sessionID)
	if err != nil {
		return nil, err
	}
	if _, err := sessionService.FindEnrollmentInSession(ctx, w.db, sessionID, enrollmentID); err != nil {
		return nil, err
	}
	doc, err := formationService.GetDocument(ctx, w.db, sess.SessionFormationID, model.DocFinalReview)
	if err != nil {
		return nil, err
	}
	if doc.FormationDocumentFilledBy != formationModel.FilledByTrainer {
		return nil, helper.NewValidationError("Le bilan final n'est pas à remplir par le formateur pour cette formation")
	}

	docType := model.DocFinalReview
	if len(answers) > 0 {
		if _, err := submissionService.UpsertResponses(ctx, w.db, enrollmentID, sess.SessionFormationID, &docType, answers); err != nil {
			return nil, err
		}
	}

	actor := trainerUserID
	c, err := w.Completions.RecordCompletionBy(ctx, &actor, enrollmentID, model.StepFinalReview, nil)
	if helper.IsDuplicate(err) {
		return nil, nil
	}
	return c, err
}

/* ===== Trainee side ===== */

func (w *Workflow) ownedEnrollment(ctx context.Context, traineeUserID, enrollmentID uuid.UUID) (*sessionModel.EnrollmentModel, error) {
	trainee, err := userService.FindTraineeByUserID(ctx, w.db, traineeUserID)
	if err != nil {
		return nil, err
	}
	return sessionService.FindTraineeEnrollment(ctx, w.db, trainee.TraineeID, enrollmentID)
}

// PendingStep is the resolver result for the calling trainee.
func (w *Workflow) PendingStep(ctx context.Context, traineeUserID uuid.UUID) (*PendingStep, error) {
	return w.Resolver.ResolvePending(ctx, traineeUserID)
}

// SignIn stores the trainee's signature for one slot of their session.
func (w *Workflow) SignIn(ctx context.Context, traineeUserID, enrollmentID, slotID uuid.UUID, signatureData string) (*submissionModel.SignatureModel, error) {
	enrollment, err := w.ownedEnrollment(ctx, traineeUserID, enrollmentID)
	if err != nil {
		return nil, err
	}
	if _, err := sessionService.FindSlotInSession(ctx, w.db, enrollment.EnrollmentSessionID, slotID); err != nil {
		return nil, err
	}
	return submissionService.RecordSignature(ctx, w.db, enrollmentID, slotID, signatureData, w.now())
}

// CompleteStep records the trainee's completion once the step was triggered
// and its prerequisites are met. A bilan_final filled by the trainer is refused
// here and stays the trainee's pending step until SubmitFinalReview completes it.
func (w *Workflow) CompleteStep(ctx context.Context, traineeUserID, enrollmentID uuid.UUID, rawStep string, slotID *uuid.UUID) (*model.CompletionModel, error) {
	stepType, err := parseStep(rawStep)
	if err != nil {
		return nil, err
	}
	enrollment, err := w.ownedEnrollment(ctx, traineeUserID, enrollmentID)
	if err != nil {
		return nil, err
	}
	sessionID := enrollment.EnrollmentSessionID

	if slotID != nil && *slotID == uuid.Nil {
		slotID = nil
	}
	if !stepType.IsSignIn() {
		slotID = nil
	}

	switch stepType {
	case model.StepSignIn:
		if slotID == nil {
			return nil, helper.NewValidationError("creneau_id requis pour l'émargement")
		}
		signed, err := submissionService.HasSignature(ctx, w.db, enrollmentID, *slotID)
		if err != nil {
			return nil, err
		}
		if !signed {
			return nil, helper.NewValidationError("Signature requise avant de valider l'émargement")
		}
	case model.StepFinalReview:
		if enrollment.Session == nil {
			return nil, helper.NewNotFoundError("Session non trouvée")
		}
		doc, err := formationService.GetDocument(ctx, w.db, enrollment.Session.SessionFormationID, model.DocFinalReview)
		if err != nil {
			return nil, err
		}
		if doc.FormationDocumentFilledBy == formationModel.FilledByTrainer {
			return nil, helper.NewAuthorizationError("Le bilan final est rempli par le formateur")
		}
	}

	triggered, err := w.Triggers.HasTrigger(ctx, sessionID, stepType, slotID)
	if err != nil {
		return nil, err
	}
	if !triggered {
		return nil, helper.NewValidationError("Étape non déclenchée")
	}

	actor := traineeUserID
	return w.Completions.RecordCompletionBy(ctx, &actor, enrollmentID, stepType, slotID)
}

// Questions lists the questions of a document for the trainee's formation,
// with the trainee's current answers.
func (w *Workflow) Questions(ctx context.Context, traineeUserID, enrollmentID uuid.UUID, rawDoc string) ([]submissionService.QuestionAnswer, error) {
	docType, err := model.ParseDocumentType(rawDoc)
	if err != nil {
		return nil, helper.NewValidationError("document_type invalide")
	}
	formationID, err := w.enrollmentFormation(ctx, traineeUserID, enrollmentID)
	if err != nil {
		return nil, err
	}
	return submissionService.QuestionsWithAnswers(ctx, w.db, formationID, docType, enrollmentID)
}

// SaveAnswers upserts the trainee's answers for questions of their formation.
// bilan_final answers are refused when the formation has the trainer fill it.
func (w *Workflow) SaveAnswers(ctx context.Context, traineeUserID, enrollmentID uuid.UUID, answers []submissionService.AnswerInput) ([]submissionModel.ResponseModel, error) {
	formationID, err := w.enrollmentFormation(ctx, traineeUserID, enrollmentID)
	if err != nil {
		return nil, err
	}
	if err := w.guardFinalReviewAnswers(ctx, formationID, answers); err != nil {
		return nil, err
	}
	return submissionService.UpsertResponses(ctx, w.db, enrollmentID, formationID, nil, answers)
}

func (w *Workflow) guardFinalReviewAnswers(ctx context.Context, formationID uuid.UUID, answers []submissionService.AnswerInput) error {
	if len(answers) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.QuestionID)
	}
	var n int64
	if err := w.db.WithContext(ctx).Model(&formationModel.QuestionModel{}).
		Where("question_id IN ? AND question_formation_id = ? AND question_document_type = ?", ids, formationID, model.DocFinalReview).
		Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	doc, err := formationService.GetDocument(ctx, w.db, formationID, model.DocFinalReview)
	if err != nil {
		return err
	}
	if doc.FormationDocumentFilledBy == formationModel.FilledByTrainer {
		return helper.NewAuthorizationError("Le bilan final est rempli par le formateur")
	}
	return nil
}

func (w *Workflow) enrollmentFormation(ctx context.Context, traineeUserID, enrollmentID uuid.UUID) (uuid.UUID, error) {
	enrollment, err := w.ownedEnrollment(ctx, traineeUserID, enrollmentID)
	if err != nil {
		return uuid.Nil, err
	}
	if enrollment.Session == nil {
		return uuid.Nil, helper.NewNotFoundError("Session non trouvée")
	}
	return enrollment.Session.SessionFormationID, nil
}

// TraineeSessions lists the caller's enrollments with session details.
func (w *Workflow) TraineeSessions(ctx context.Context, traineeUserID uuid.UUID) ([]sessionModel.EnrollmentModel, error) {
	trainee, err := userService.FindTraineeByUserID(ctx, w.db, traineeUserID)
	if errors.Is(err, helper.ErrNotFound) {
		return []sessionModel.EnrollmentModel{}, nil
	}
	if err != nil {
		return nil, err
	}
	return sessionService.ListTraineeEnrollments(ctx, w.db, trainee.TraineeID)
}

// TrainerSessions lists the sessions the caller runs.
func (w *Workflow) TrainerSessions(ctx context.Context, trainerUserID uuid.UUID) ([]sessionModel.SessionModel, error) {
	trainer, err := userService.FindTrainerByUserID(ctx, w.db, trainerUserID)
	if err != nil {
		return nil, err
	}
	return sessionService.ListTrainerSessions(ctx, w.db, trainer.TrainerID)
}

// UpdateSlot edits slot times on a session the trainer runs.
func (w *Workflow) UpdateSlot(ctx context.Context, trainerUserID, sessionID, slotID uuid.UUID, startsAt, endsAt *time.Time) (*sessionModel.SlotModel, error) {
	if _, err := w.ownedSession(ctx, trainerUserID, sessionID); err != nil {
		return nil, err
	}
	return sessionService.UpdateSlotTimes(ctx, w.db, sessionID, slotID, startsAt, endsAt)
}
