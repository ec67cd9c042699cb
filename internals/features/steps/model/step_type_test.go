package model

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStepType(t *testing.T) {
	for _, st := range StepTypes {
		got, err := ParseStepType(" " + string(st) + " ")
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}
	_, err := ParseStepType("signature")
	assert.ErrorIs(t, err, ErrInvalidStepType)
}

func TestStepDocumentMapping(t *testing.T) {
	for _, st := range StepTypes {
		dt, ok := st.DocumentType()
		if st.IsSignIn() {
			assert.False(t, ok)
			continue
		}
		require.True(t, ok, st)
		assert.Equal(t, st, dt.StepType())
		assert.Equal(t, st.Label(), dt.Label())
	}
	assert.Equal(t, 1, DocPreTest.DefaultOrder())
	assert.Equal(t, 5, DocFinalReview.DefaultOrder())
}

func TestStepTypeJSON(t *testing.T) {
	var v struct {
		Step StepType `json:"step_type"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"step_type":"emargement"}`), &v))
	assert.Equal(t, StepSignIn, v.Step)
	assert.Error(t, json.Unmarshal([]byte(`{"step_type":"autre"}`), &v))
}

func TestStepTypeScanValue(t *testing.T) {
	var st StepType
	require.NoError(t, st.Scan([]byte("test_fin")))
	assert.Equal(t, StepFinalTest, st)
	assert.Error(t, st.Scan(nil))
	assert.Error(t, st.Scan(42))

	_, err := StepType("x").Value()
	assert.Error(t, err)
}

func TestCompletionKey(t *testing.T) {
	enrollment := uuid.New()
	slot := uuid.New()
	nilSlot := uuid.Nil

	assert.Equal(t, "", SlotKey(nil))
	assert.Equal(t, "", SlotKey(&nilSlot))
	assert.Equal(t, slot.String(), SlotKey(&slot))

	c := CompletionModel{CompletionEnrollmentID: enrollment, CompletionStepType: StepSignIn, CompletionSlotID: &slot}
	assert.Equal(t, NewCompletionKey(enrollment, StepSignIn, &slot), c.Key())
	assert.NotEqual(t, NewCompletionKey(enrollment, StepSignIn, nil), c.Key())
}
