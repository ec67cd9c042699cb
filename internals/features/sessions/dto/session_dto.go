package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"sfformation_backend/internals/features/sessions/service"
	helper "sfformation_backend/internals/helpers"
)

/* =======================================================
   REQUEST DTOs
   ======================================================= */

// CreateSessionRequest: POST /api/admin/sessions
type CreateSessionRequest struct {
	Name        string   `json:"nom" validate:"required,max=200"`
	FormationID string   `json:"formation_id" validate:"required,uuid"`
	TrainerID   string   `json:"formateur_id" validate:"required,uuid"`
	SlotCount   int      `json:"nb_creneaux" validate:"required,min=1,max=50"`
	Dates       []string `json:"dates" validate:"omitempty,dive,datetime=2006-01-02"`
}

func (r *CreateSessionRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.FormationID = strings.TrimSpace(r.FormationID)
	r.TrainerID = strings.TrimSpace(r.TrainerID)
}

// ToInput expects a validated request.
func (r *CreateSessionRequest) ToInput() (service.CreateSessionInput, error) {
	in := service.CreateSessionInput{
		Name:        r.Name,
		FormationID: uuid.MustParse(r.FormationID),
		TrainerID:   uuid.MustParse(r.TrainerID),
		SlotCount:   r.SlotCount,
	}
	for _, d := range r.Dates {
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			return in, helper.NewValidationError("date invalide: " + d)
		}
		in.Dates = append(in.Dates, day)
	}
	return in, nil
}

// SlotTimesRequest: PATCH .../creneaux/:creneau_id. Omitted fields stay unchanged.
type SlotTimesRequest struct {
	StartsAt *time.Time `json:"heure_debut"`
	EndsAt   *time.Time `json:"heure_fin"`
}

// EnrollRequest: POST /api/admin/sessions/:id/inscriptions
type EnrollRequest struct {
	TraineeID string `json:"stagiaire_id" validate:"required,uuid"`
}

// NeedsAnalysisRequest: PATCH /api/admin/inscriptions/:id
type NeedsAnalysisRequest struct {
	NeedsAnalysis *string `json:"analyse_besoins_texte"`
}
