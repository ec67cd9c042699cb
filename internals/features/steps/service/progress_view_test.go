package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sfformation_backend/internals/features/steps/model"
	"sfformation_backend/internals/testutil"
)

func TestBuildProgress_CollapsesRepeatsInFirstTriggerOrder(t *testing.T) {
	session := uuid.New()
	slot1, slot2 := uuid.New(), uuid.New()
	alice := EnrollmentRef{EnrollmentID: uuid.New(), TraineeName: "Alice Durand"}
	bob := EnrollmentRef{EnrollmentID: uuid.New(), TraineeName: "Bob Petit"}

	triggers := []model.TriggerModel{
		{TriggerSessionID: session, TriggerStepType: model.StepPreTest},
		{TriggerSessionID: session, TriggerStepType: model.StepSignIn, TriggerSlotID: &slot1},
		{TriggerSessionID: session, TriggerStepType: model.StepPreTest},
		{TriggerSessionID: session, TriggerStepType: model.StepSignIn, TriggerSlotID: &slot2},
		{TriggerSessionID: session, TriggerStepType: model.StepSignIn, TriggerSlotID: &slot1},
	}
	done := map[model.CompletionKey]struct{}{
		model.NewCompletionKey(alice.EnrollmentID, model.StepPreTest, nil):   {},
		model.NewCompletionKey(bob.EnrollmentID, model.StepPreTest, nil):     {},
		model.NewCompletionKey(alice.EnrollmentID, model.StepSignIn, &slot1): {},
	}
	slotOrder := map[uuid.UUID]int{slot1: 1, slot2: 2}

	rows := BuildProgress(triggers, []EnrollmentRef{alice, bob}, done, slotOrder)
	require.Len(t, rows, 3)

	assert.Equal(t, model.StepPreTest, rows[0].StepType)
	assert.Equal(t, 2, rows[0].CompletedCount)
	assert.Equal(t, 0, rows[0].PendingCount)

	assert.Equal(t, model.StepSignIn, rows[1].StepType)
	require.NotNil(t, rows[1].SlotOrder)
	assert.Equal(t, 1, *rows[1].SlotOrder)
	assert.Equal(t, 1, rows[1].CompletedCount)
	assert.Equal(t, 1, rows[1].PendingCount)
	require.Len(t, rows[1].PerTrainee, 2)
	assert.True(t, rows[1].PerTrainee[0].Done)
	assert.False(t, rows[1].PerTrainee[1].Done)
	assert.Equal(t, "Bob Petit", rows[1].PerTrainee[1].TraineeName)

	require.NotNil(t, rows[2].SlotOrder)
	assert.Equal(t, 2, *rows[2].SlotOrder)
	assert.Equal(t, 0, rows[2].CompletedCount)
	assert.Equal(t, 2, rows[2].PendingCount)
}

func TestBuildProgress_Empty(t *testing.T) {
	rows := BuildProgress(nil, nil, nil, nil)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestProgressForSession_CountsAndIsRepeatable(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedSession(t, db, 1, 2)
	w := NewWorkflow(db).WithClock(testutil.Clock(t0))
	ctx := context.Background()

	_, err := w.Triggers.RecordTrigger(ctx, fx.Session.SessionID, model.StepFinalTest, nil)
	require.NoError(t, err)
	_, err = w.Completions.RecordCompletion(ctx, fx.Trainees[1].Enrollment.EnrollmentID, model.StepFinalTest, nil)
	require.NoError(t, err)

	first, err := w.Progress.ProgressForSession(ctx, fx.Session.SessionID)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, first[0].CompletedCount)
	assert.Equal(t, 1, first[0].PendingCount)
	assert.Equal(t, first[0].CompletedCount+first[0].PendingCount, len(fx.Trainees))

	again, err := w.Progress.ProgressForSession(ctx, fx.Session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}
