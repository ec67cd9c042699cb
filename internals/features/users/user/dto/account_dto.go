package dto

import (
	"strings"

	"sfformation_backend/internals/features/users/user/model"
	"sfformation_backend/internals/features/users/user/service"
)

// CreateAccountRequest: POST /api/admin/formateurs and /api/admin/stagiaires
type CreateAccountRequest struct {
	LastName  string `json:"nom" validate:"required,max=120"`
	FirstName string `json:"prenom" validate:"required,max=120"`
}

func (r *CreateAccountRequest) Normalize() {
	r.LastName = strings.TrimSpace(r.LastName)
	r.FirstName = strings.TrimSpace(r.FirstName)
}

func (r *CreateAccountRequest) ToInput() service.NewAccount {
	return service.NewAccount{FirstName: r.FirstName, LastName: r.LastName}
}

/* ===== Responses ===== */

type ProfileResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	LastName  string `json:"nom"`
	FirstName string `json:"prenom"`
	UserName  string `json:"username"`
}

// CreatedAccountResponse exposes the temporary password once, at creation.
type CreatedAccountResponse struct {
	ProfileResponse
	TempPassword string `json:"mot_de_passe_temporaire"`
}

func FromTrainer(t model.TrainerModel) ProfileResponse {
	out := ProfileResponse{
		ID:        t.TrainerID.String(),
		UserID:    t.TrainerUserID.String(),
		LastName:  t.TrainerLastName,
		FirstName: t.TrainerFirstName,
	}
	if t.User != nil {
		out.UserName = t.User.UserName
	}
	return out
}

func FromTrainee(t model.TraineeModel) ProfileResponse {
	out := ProfileResponse{
		ID:        t.TraineeID.String(),
		UserID:    t.TraineeUserID.String(),
		LastName:  t.TraineeLastName,
		FirstName: t.TraineeFirstName,
	}
	if t.User != nil {
		out.UserName = t.User.UserName
	}
	return out
}

func FromCreated(a *service.CreatedAccount) CreatedAccountResponse {
	var p ProfileResponse
	switch {
	case a.Trainer != nil:
		p = FromTrainer(*a.Trainer)
	case a.Trainee != nil:
		p = FromTrainee(*a.Trainee)
	}
	p.UserName = a.User.UserName
	return CreatedAccountResponse{ProfileResponse: p, TempPassword: a.TempPassword}
}
