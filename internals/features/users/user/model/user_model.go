package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserModel is the login account; role is admin | formateur | stagiaire.
type UserModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;column:id" json:"id"`
	UserName       string    `gorm:"type:varchar(120);not null;uniqueIndex:uq_users_username;column:username" json:"username"`
	PasswordHash   string    `gorm:"type:text;not null;default:'';column:password_hash" json:"-"`
	Role           string    `gorm:"type:varchar(20);not null;column:role" json:"role"`
	FirstLoginDone bool      `gorm:"not null;default:false;column:first_login_done" json:"first_login_done"`
	IsActive       bool      `gorm:"not null;default:true;column:is_active" json:"is_active"`
	CreatedAt      time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (UserModel) TableName() string { return "users" }

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.UserName = strings.ToLower(strings.TrimSpace(u.UserName))
	return nil
}

/* ===== Profiles ===== */

type TrainerModel struct {
	TrainerID        uuid.UUID `gorm:"type:uuid;primaryKey;column:trainer_id" json:"id"`
	TrainerUserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_trainers_user;column:trainer_user_id" json:"user_id"`
	TrainerLastName  string    `gorm:"type:varchar(120);not null;column:trainer_last_name" json:"nom"`
	TrainerFirstName string    `gorm:"type:varchar(120);not null;column:trainer_first_name" json:"prenom"`
	TrainerCreatedAt time.Time `gorm:"autoCreateTime;column:trainer_created_at" json:"created_at"`

	User *UserModel `gorm:"foreignKey:TrainerUserID;references:ID" json:"user,omitempty"`
}

func (TrainerModel) TableName() string { return "formateurs" }

func (t *TrainerModel) BeforeCreate(tx *gorm.DB) error {
	if t.TrainerID == uuid.Nil {
		t.TrainerID = uuid.New()
	}
	return nil
}

func (t TrainerModel) FullName() string {
	return strings.TrimSpace(t.TrainerFirstName + " " + t.TrainerLastName)
}

type TraineeModel struct {
	TraineeID        uuid.UUID `gorm:"type:uuid;primaryKey;column:trainee_id" json:"id"`
	TraineeUserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_trainees_user;column:trainee_user_id" json:"user_id"`
	TraineeLastName  string    `gorm:"type:varchar(120);not null;column:trainee_last_name" json:"nom"`
	TraineeFirstName string    `gorm:"type:varchar(120);not null;column:trainee_first_name" json:"prenom"`
	TraineeCreatedAt time.Time `gorm:"autoCreateTime;column:trainee_created_at" json:"created_at"`

	User *UserModel `gorm:"foreignKey:TraineeUserID;references:ID" json:"user,omitempty"`
}

func (TraineeModel) TableName() string { return "stagiaires" }

func (t *TraineeModel) BeforeCreate(tx *gorm.DB) error {
	if t.TraineeID == uuid.Nil {
		t.TraineeID = uuid.New()
	}
	return nil
}

func (t TraineeModel) FullName() string {
	return strings.TrimSpace(t.TraineeFirstName + " " + t.TraineeLastName)
}
