package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedSource struct {
	mu    sync.Mutex
	steps []*PendingStep
	errs  []error
	calls int
}

func (s *scriptedSource) ResolvePending(_ context.Context, _ uuid.UUID) (*PendingStep, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.steps) {
		i = len(s.steps) - 1
	}
	s.calls++
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return s.steps[i], err
}

func step() *PendingStep { return &PendingStep{TriggerID: uuid.New()} }

func TestPendingPoller_EmitsOnlyChanges(t *testing.T) {
	a, b := step(), step()
	src := &scriptedSource{steps: []*PendingStep{nil, nil, a, a, b, nil}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []*PendingStep
	heartbeats := 0
	p := NewPendingPoller(src, uuid.New(), time.Millisecond).
		WithHeartbeat(func() error { heartbeats++; return nil })

	err := p.Run(ctx, func(ps *PendingStep) error {
		got = append(got, ps)
		if len(got) == 4 {
			cancel()
		}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Nil(t, got[0])
	assert.Equal(t, a.TriggerID, got[1].TriggerID)
	assert.Equal(t, b.TriggerID, got[2].TriggerID)
	assert.Nil(t, got[3])
	assert.Equal(t, 2, heartbeats)
}

func TestPendingPoller_RetriesAfterResolveError(t *testing.T) {
	a := step()
	src := &scriptedSource{
		steps: []*PendingStep{nil, a},
		errs:  []error{errors.New("db down")},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []*PendingStep
	err := NewPendingPoller(src, uuid.New(), time.Millisecond).Run(ctx, func(ps *PendingStep) error {
		got = append(got, ps)
		cancel()
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.TriggerID, got[0].TriggerID)
}

func TestPendingPoller_EmitErrorStopsRun(t *testing.T) {
	src := &scriptedSource{steps: []*PendingStep{step()}}
	boom := errors.New("client gone")

	err := NewPendingPoller(src, uuid.New(), time.Millisecond).Run(context.Background(), func(*PendingStep) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestPendingPoller_DefaultInterval(t *testing.T) {
	p := NewPendingPoller(&scriptedSource{steps: []*PendingStep{nil}}, uuid.New(), 0)
	assert.Equal(t, 15*time.Second, p.interval)
}
