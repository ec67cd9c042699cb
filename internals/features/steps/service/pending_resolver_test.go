package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessionModel "sfformation_backend/internals/features/sessions/model"
	"sfformation_backend/internals/features/steps/model"
	"sfformation_backend/internals/testutil"
)

func TestResolvePending_NothingToDo(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedSession(t, db, 1, 1)
	w := NewWorkflow(db)
	ctx := context.Background()

	p, err := w.Resolver.ResolvePending(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = w.Resolver.ResolvePending(ctx, fx.Trainees[0].User.ID)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestResolvePending_EarliestAcrossSessions(t *testing.T) {
	db := testutil.NewDB(t)
	a := testutil.SeedSession(t, db, 1, 1)
	b := testutil.SeedSession(t, db, 1, 0)
	trainee := a.Trainees[0]

	second := sessionModel.EnrollmentModel{
		EnrollmentSessionID: b.Session.SessionID,
		EnrollmentTraineeID: trainee.Trainee.TraineeID,
	}
	require.NoError(t, db.Create(&second).Error)

	w := NewWorkflow(db).WithClock(testutil.Clock(t0))
	ctx := context.Background()

	// B is triggered first even though the trainee enrolled in A first.
	_, err := w.Triggers.RecordTrigger(ctx, b.Session.SessionID, model.StepMidTest, nil)
	require.NoError(t, err)
	_, err = w.Triggers.RecordTrigger(ctx, a.Session.SessionID, model.StepPreTest, nil)
	require.NoError(t, err)

	p, err := w.Resolver.ResolvePending(ctx, trainee.User.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, model.StepMidTest, p.StepType)
	assert.Equal(t, second.EnrollmentID, p.EnrollmentID)
	assert.Equal(t, b.Session.SessionName, p.SessionName)
	assert.Equal(t, "Test Points clés", p.StepLabel)

	_, err = w.Completions.RecordCompletion(ctx, second.EnrollmentID, model.StepMidTest, nil)
	require.NoError(t, err)

	p, err = w.Resolver.ResolvePending(ctx, trainee.User.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, model.StepPreTest, p.StepType)
	assert.Equal(t, trainee.Enrollment.EnrollmentID, p.EnrollmentID)

	_, err = w.Completions.RecordCompletion(ctx, trainee.Enrollment.EnrollmentID, model.StepPreTest, nil)
	require.NoError(t, err)

	p, err = w.Resolver.ResolvePending(ctx, trainee.User.ID)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestResolvePending_SignInWalksSlots(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedSession(t, db, 2, 1)
	trainee := fx.Trainees[0]
	w := NewWorkflow(db).WithClock(testutil.Clock(t0))
	ctx := context.Background()

	s1, s2 := fx.Slots[0].SlotID, fx.Slots[1].SlotID
	_, err := w.Triggers.RecordTrigger(ctx, fx.Session.SessionID, model.StepSignIn, &s1)
	require.NoError(t, err)
	_, err = w.Triggers.RecordTrigger(ctx, fx.Session.SessionID, model.StepSignIn, &s2)
	require.NoError(t, err)

	p, err := w.Resolver.ResolvePending(ctx, trainee.User.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, p.SlotOrder)
	assert.Equal(t, 1, *p.SlotOrder)

	_, err = w.Completions.RecordCompletion(ctx, trainee.Enrollment.EnrollmentID, model.StepSignIn, &s1)
	require.NoError(t, err)

	p, err = w.Resolver.ResolvePending(ctx, trainee.User.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.NotNil(t, p.SlotID)
	assert.Equal(t, s2, *p.SlotID)
	assert.Equal(t, 2, *p.SlotOrder)
}

func TestResolvePending_RepeatedTriggerNeedsOneCompletion(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedSession(t, db, 1, 1)
	trainee := fx.Trainees[0]
	w := NewWorkflow(db).WithClock(testutil.Clock(t0))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := w.Triggers.RecordTrigger(ctx, fx.Session.SessionID, model.StepSatisfaction, nil)
		require.NoError(t, err)
	}
	_, err := w.Completions.RecordCompletion(ctx, trainee.Enrollment.EnrollmentID, model.StepSatisfaction, nil)
	require.NoError(t, err)

	p, err := w.Resolver.ResolvePending(ctx, trainee.User.ID)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestFirstPending_SkipsUnknownSessions(t *testing.T) {
	enrollment := uuid.New()
	known, unknown := uuid.New(), uuid.New()
	triggers := []model.TriggerModel{
		{TriggerID: uuid.New(), TriggerSessionID: unknown, TriggerStepType: model.StepPreTest},
		{TriggerID: uuid.New(), TriggerSessionID: known, TriggerStepType: model.StepPreTest},
		{TriggerID: uuid.New(), TriggerSessionID: known, TriggerStepType: model.StepFinalTest},
	}
	done := map[model.CompletionKey]struct{}{
		model.NewCompletionKey(enrollment, model.StepPreTest, nil): {},
	}

	got, gotEnrollment, ok := FirstPending(triggers, map[uuid.UUID]uuid.UUID{known: enrollment}, done)
	require.True(t, ok)
	assert.Equal(t, triggers[2].TriggerID, got.TriggerID)
	assert.Equal(t, enrollment, gotEnrollment)

	done[model.NewCompletionKey(enrollment, model.StepFinalTest, nil)] = struct{}{}
	_, _, ok = FirstPending(triggers, map[uuid.UUID]uuid.UUID{known: enrollment}, done)
	assert.False(t, ok)
}
