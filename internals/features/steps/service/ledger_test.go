package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"sfformation_backend/internals/features/steps/model"
	helper "sfformation_backend/internals/helpers"
	"sfformation_backend/internals/testutil"
)

var t0 = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func TestRecordTrigger_SignInNeedsSlotOfSession(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedSession(t, db, 2, 0)
	other := testutil.SeedSession(t, db, 1, 0)
	ledger := NewTriggerLedger(db).WithClock(testutil.Clock(t0))
	ctx := context.Background()

	_, err := ledger.RecordTrigger(ctx, fx.Session.SessionID, model.StepSignIn, nil)
	assert.True(t, helper.IsValidation(err))

	nilSlot := uuid.Nil
	_, err = ledger.RecordTrigger(ctx, fx.Session.SessionID, model.StepSignIn, &nilSlot)
	assert.True(t, helper.IsValidation(err))

	foreign := other.Slots[0].SlotID
	_, err = ledger.RecordTrigger(ctx, fx.Session.SessionID, model.StepSignIn, &foreign)
	assert.True(t, helper.IsValidation(err))

	slot := fx.Slots[1].SlotID
	tr, err := ledger.RecordTrigger(ctx, fx.Session.SessionID, model.StepSignIn, &slot)
	require.NoError(t, err)
	require.NotNil(t, tr.TriggerSlotID)
	assert.Equal(t, slot, *tr.TriggerSlotID)
	assert.Equal(t, t0, tr.TriggerTriggeredAt)
}

func TestRecordTrigger_DropsSlotForOtherSteps(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedSession(t, db, 1, 0)
	ledger := NewTriggerLedger(db)

	slot := fx.Slots[0].SlotID
	tr, err := ledger.RecordTrigger(context.Background(), fx.Session.SessionID, model.StepPreTest, &slot)
	require.NoError(t, err)
	assert.Nil(t, tr.TriggerSlotID)

	_, err = ledger.RecordTrigger(context.Background(), fx.Session.SessionID, model.StepType("inconnu"), nil)
	assert.True(t, helper.IsValidation(err))
}

func TestRecordTrigger_RepeatsAreKeptInOrder(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedSession(t, db, 1, 0)
	ledger := NewTriggerLedger(db).WithClock(testutil.Clock(t0))
	ctx := context.Background()

	first, err := ledger.RecordTrigger(ctx, fx.Session.SessionID, model.StepPreTest, nil)
	require.NoError(t, err)
	second, err := ledger.RecordTrigger(ctx, fx.Session.SessionID, model.StepMidTest, nil)
	require.NoError(t, err)
	third, err := ledger.RecordTrigger(ctx, fx.Session.SessionID, model.StepPreTest, nil)
	require.NoError(t, err)

	rows, err := ledger.ListTriggers(ctx, fx.Session.SessionID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, first.TriggerID, rows[0].TriggerID)
	assert.Equal(t, second.TriggerID, rows[1].TriggerID)
	assert.Equal(t, third.TriggerID, rows[2].TriggerID)

	ok, err := ledger.HasTrigger(ctx, fx.Session.SessionID, model.StepPreTest, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = ledger.HasTrigger(ctx, fx.Session.SessionID, model.StepFinalTest, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListTriggers_SameInstantOrderedByID(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedSession(t, db, 1, 0)
	ledger := NewTriggerLedger(db).WithClock(func() time.Time { return t0 })
	ctx := context.Background()

	a, err := ledger.RecordTrigger(ctx, fx.Session.SessionID, model.StepPreTest, nil)
	require.NoError(t, err)
	b, err := ledger.RecordTrigger(ctx, fx.Session.SessionID, model.StepMidTest, nil)
	require.NoError(t, err)

	rows, err := ledger.ListTriggers(ctx, fx.Session.SessionID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	lo, hi := a.TriggerID, b.TriggerID
	if hi.String() < lo.String() {
		lo, hi = hi, lo
	}
	assert.Equal(t, lo, rows[0].TriggerID)
	assert.Equal(t, hi, rows[1].TriggerID)
}

func TestListTriggers_NoSessions(t *testing.T) {
	db := testutil.NewDB(t)
	rows, err := NewTriggerLedger(db).ListTriggers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRecordCompletion_SecondWriteIsDuplicate(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedSession(t, db, 1, 1)
	ledger := NewCompletionLedger(db)
	ctx := context.Background()
	enrollmentID := fx.Trainees[0].Enrollment.EnrollmentID

	_, err := ledger.RecordCompletion(ctx, enrollmentID, model.StepPreTest, nil)
	require.NoError(t, err)

	_, err = ledger.RecordCompletion(ctx, enrollmentID, model.StepPreTest, nil)
	require.Error(t, err)
	assert.True(t, helper.IsDuplicate(err))

	var n int64
	require.NoError(t, db.Model(&model.CompletionModel{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestRecordCompletion_SignInIsPerSlot(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedSession(t, db, 2, 1)
	ledger := NewCompletionLedger(db)
	ctx := context.Background()
	enrollmentID := fx.Trainees[0].Enrollment.EnrollmentID

	_, err := ledger.RecordCompletion(ctx, enrollmentID, model.StepSignIn, nil)
	assert.True(t, helper.IsValidation(err))

	s1, s2 := fx.Slots[0].SlotID, fx.Slots[1].SlotID
	_, err = ledger.RecordCompletion(ctx, enrollmentID, model.StepSignIn, &s1)
	require.NoError(t, err)
	_, err = ledger.RecordCompletion(ctx, enrollmentID, model.StepSignIn, &s2)
	require.NoError(t, err)
	_, err = ledger.RecordCompletion(ctx, enrollmentID, model.StepSignIn, &s1)
	assert.True(t, helper.IsDuplicate(err))

	keys, err := ledger.CompletedKeys(ctx, enrollmentID)
	require.NoError(t, err)
	assert.Len(t, keys, 2)
	assert.Contains(t, keys, model.NewCompletionKey(enrollmentID, model.StepSignIn, &s2))
}

func TestRecordCompletion_ConcurrentWritesKeepOneRow(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.SeedSession(t, db, 1, 1)
	ledger := NewCompletionLedger(db)
	enrollmentID := fx.Trainees[0].Enrollment.EnrollmentID

	var created, duplicates int32
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := ledger.RecordCompletion(context.Background(), enrollmentID, model.StepFinalTest, nil)
			switch {
			case err == nil:
				atomic.AddInt32(&created, 1)
			case helper.IsDuplicate(err):
				atomic.AddInt32(&duplicates, 1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.EqualValues(t, 1, created)
	assert.EqualValues(t, 7, duplicates)
}
