package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	formationModel "sfformation_backend/internals/features/formations/model"
	userModel "sfformation_backend/internals/features/users/user/model"
)

type SessionModel struct {
	SessionID          uuid.UUID `gorm:"type:uuid;primaryKey;column:session_id" json:"id"`
	SessionFormationID uuid.UUID `gorm:"type:uuid;not null;index;column:session_formation_id" json:"formation_id"`
	SessionTrainerID   uuid.UUID `gorm:"type:uuid;not null;index;column:session_trainer_id" json:"formateur_id"`
	SessionName        string    `gorm:"type:varchar(200);not null;column:session_name" json:"nom"`
	SessionSlotCount   int       `gorm:"not null;column:session_slot_count" json:"nb_creneaux"`
	SessionCreatedAt   time.Time `gorm:"autoCreateTime;column:session_created_at" json:"created_at"`

	Formation *formationModel.FormationModel `gorm:"foreignKey:SessionFormationID;references:FormationID" json:"formation,omitempty"`
	Trainer   *userModel.TrainerModel        `gorm:"foreignKey:SessionTrainerID;references:TrainerID" json:"formateur,omitempty"`
	Slots     []SlotModel                    `gorm:"foreignKey:SlotSessionID;references:SessionID" json:"creneaux,omitempty"`
	Dates     []SessionDateModel             `gorm:"foreignKey:SessionDateSessionID;references:SessionID" json:"dates,omitempty"`
}

func (SessionModel) TableName() string { return "sessions" }

func (s *SessionModel) BeforeCreate(tx *gorm.DB) error {
	if s.SessionID == uuid.Nil {
		s.SessionID = uuid.New()
	}
	return nil
}

// SlotModel: one créneau of a session, ordered 1..N.
type SlotModel struct {
	SlotID        uuid.UUID  `gorm:"type:uuid;primaryKey;column:slot_id" json:"id"`
	SlotSessionID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_slot_session_order,priority:1;column:slot_session_id" json:"session_id"`
	SlotOrder     int        `gorm:"not null;uniqueIndex:uq_slot_session_order,priority:2;column:slot_order" json:"ordre"`
	SlotStartsAt  *time.Time `gorm:"column:slot_starts_at" json:"heure_debut"`
	SlotEndsAt    *time.Time `gorm:"column:slot_ends_at" json:"heure_fin"`
	SlotCreatedAt time.Time  `gorm:"autoCreateTime;column:slot_created_at" json:"created_at"`
}

func (SlotModel) TableName() string { return "session_creneaux" }

func (s *SlotModel) BeforeCreate(tx *gorm.DB) error {
	if s.SlotID == uuid.Nil {
		s.SlotID = uuid.New()
	}
	return nil
}

// SessionDateModel is informational only.
type SessionDateModel struct {
	SessionDateID        uuid.UUID `gorm:"type:uuid;primaryKey;column:session_date_id" json:"id"`
	SessionDateSessionID uuid.UUID `gorm:"type:uuid;not null;index;column:session_date_session_id" json:"session_id"`
	SessionDateDay       time.Time `gorm:"type:date;not null;column:session_date_day" json:"date"`
}

func (SessionDateModel) TableName() string { return "session_dates" }

func (d *SessionDateModel) BeforeCreate(tx *gorm.DB) error {
	if d.SessionDateID == uuid.Nil {
		d.SessionDateID = uuid.New()
	}
	return nil
}

// EnrollmentModel (inscription): unique per (session, trainee).
type EnrollmentModel struct {
	EnrollmentID            uuid.UUID `gorm:"type:uuid;primaryKey;column:enrollment_id" json:"id"`
	EnrollmentSessionID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_enrollment_session_trainee,priority:1;column:enrollment_session_id" json:"session_id"`
	EnrollmentTraineeID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_enrollment_session_trainee,priority:2;index;column:enrollment_trainee_id" json:"stagiaire_id"`
	EnrollmentNeedsAnalysis *string   `gorm:"type:text;column:enrollment_needs_analysis" json:"analyse_besoins_texte"`
	EnrollmentCreatedAt     time.Time `gorm:"autoCreateTime;column:enrollment_created_at" json:"created_at"`

	Trainee *userModel.TraineeModel `gorm:"foreignKey:EnrollmentTraineeID;references:TraineeID" json:"stagiaire,omitempty"`
	Session *SessionModel           `gorm:"foreignKey:EnrollmentSessionID;references:SessionID" json:"session,omitempty"`
}

func (EnrollmentModel) TableName() string { return "inscriptions" }

func (e *EnrollmentModel) BeforeCreate(tx *gorm.DB) error {
	if e.EnrollmentID == uuid.Nil {
		e.EnrollmentID = uuid.New()
	}
	return nil
}
