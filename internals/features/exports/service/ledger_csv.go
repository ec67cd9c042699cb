package service

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	sessionModel "sfformation_backend/internals/features/sessions/model"
	stepModel "sfformation_backend/internals/features/steps/model"
)

// LedgerRows is a read snapshot of one session's two ledgers.
type LedgerRows struct {
	Slots       []sessionModel.SlotModel
	Enrollments []sessionModel.EnrollmentModel
	Triggers    []stepModel.TriggerModel
	Completions []stepModel.CompletionModel
}

// WriteLedgerCSV writes triggers then completions, one event per line, in the
// same ';' dialect as the satisfaction export.
func WriteLedgerCSV(w io.Writer, l LedgerRows) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return err
	}
	slotOrder := make(map[uuid.UUID]int, len(l.Slots))
	for _, s := range l.Slots {
		slotOrder[s.SlotID] = s.SlotOrder
	}
	trainee := make(map[uuid.UUID]string, len(l.Enrollments))
	for _, e := range l.Enrollments {
		if e.Trainee != nil {
			trainee[e.EnrollmentID] = e.Trainee.FullName()
		}
	}
	slotCell := func(id *uuid.UUID) string {
		if id == nil {
			return ""
		}
		if o, ok := slotOrder[*id]; ok {
			return strconv.Itoa(o)
		}
		return id.String()
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write([]string{"evenement", "horodatage", "step_type", "etape", "creneau", "inscription_id", "stagiaire"}); err != nil {
		return err
	}
	for _, t := range l.Triggers {
		if err := cw.Write([]string{
			"declenchement",
			t.TriggerTriggeredAt.UTC().Format(time.RFC3339),
			string(t.TriggerStepType),
			t.TriggerStepType.Label(),
			slotCell(t.TriggerSlotID),
			"",
			"",
		}); err != nil {
			return err
		}
	}
	for _, c := range l.Completions {
		if err := cw.Write([]string{
			"completion",
			c.CompletionCompletedAt.UTC().Format(time.RFC3339),
			string(c.CompletionStepType),
			c.CompletionStepType.Label(),
			slotCell(c.CompletionSlotID),
			c.CompletionEnrollmentID.String(),
			trainee[c.CompletionEnrollmentID],
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
