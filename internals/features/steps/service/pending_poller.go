package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

type PendingSource interface {
	ResolvePending(ctx context.Context, traineeUserID uuid.UUID) (*PendingStep, error)
}

// PendingPoller re-resolves a trainee's pending step on a fixed interval and
// emits only when it changes. Run stops when ctx is cancelled.
type PendingPoller struct {
	source    PendingSource
	userID    uuid.UUID
	interval  time.Duration
	heartbeat func() error
}

func NewPendingPoller(source PendingSource, traineeUserID uuid.UUID, interval time.Duration) *PendingPoller {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &PendingPoller{source: source, userID: traineeUserID, interval: interval}
}

// WithHeartbeat registers fn to run on ticks that emit nothing. A heartbeat
// error ends Run like an emit error.
func (p *PendingPoller) WithHeartbeat(fn func() error) *PendingPoller {
	p.heartbeat = fn
	return p
}

// Run resolves once immediately, then on every tick. A resolve error is logged
// and retried on the next tick; an emit error ends the loop and is returned.
// Cancellation returns nil.
func (p *PendingPoller) Run(ctx context.Context, emit func(*PendingStep) error) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	first := true
	var last *uuid.UUID

	for {
		pending, err := p.source.ResolvePending(ctx, p.userID)
		switch {
		case ctx.Err() != nil:
			return nil
		case err != nil:
			log.Printf("[POLLER] user=%s resolve error: %v", p.userID, err)
		case first || changed(last, pending):
			if err := emit(pending); err != nil {
				return err
			}
			first = false
			last = nil
			if pending != nil {
				id := pending.TriggerID
				last = &id
			}
		case p.heartbeat != nil:
			if err := p.heartbeat(); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func changed(last *uuid.UUID, current *PendingStep) bool {
	if last == nil || current == nil {
		return (last == nil) != (current == nil)
	}
	return *last != current.TriggerID
}
