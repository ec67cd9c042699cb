// Package testutil builds throwaway sqlite databases and fixtures for tests.
package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sfformation_backend/internals/constants"
	"sfformation_backend/internals/databases/migrations"
	formationModel "sfformation_backend/internals/features/formations/model"
	sessionModel "sfformation_backend/internals/features/sessions/model"
	userModel "sfformation_backend/internals/features/users/user/model"
)

// NewDB opens a private in-memory database with every table migrated.
// One connection only: ":memory:" is per-connection in sqlite.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migrations.AutoMigrate(db))
	return db
}

// Clock returns a time source that advances one second per call, starting at
// start. Safe for concurrent use.
func Clock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start.UTC()
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Second)
		return now
	}
}

/* ===== Fixtures ===== */

type Fixture struct {
	Formation   formationModel.FormationModel
	TrainerUser userModel.UserModel
	Trainer     userModel.TrainerModel
	Session     sessionModel.SessionModel
	Slots       []sessionModel.SlotModel
	Trainees    []Enrolled
}

// Enrolled is one trainee account with its enrollment in the fixture session.
type Enrolled struct {
	User       userModel.UserModel
	Trainee    userModel.TraineeModel
	Enrollment sessionModel.EnrollmentModel
}

func CreateUser(t *testing.T, db *gorm.DB, username, role string, firstLoginDone bool) userModel.UserModel {
	t.Helper()
	u := userModel.UserModel{
		UserName:       username,
		PasswordHash:   "",
		Role:           role,
		FirstLoginDone: firstLoginDone,
		IsActive:       true,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func CreateFormation(t *testing.T, db *gorm.DB, name string) formationModel.FormationModel {
	t.Helper()
	f := formationModel.FormationModel{FormationName: name}
	require.NoError(t, db.Create(&f).Error)
	docs := formationModel.DefaultDocuments(f.FormationID)
	require.NoError(t, db.Create(&docs).Error)
	return f
}

// SeedSession creates a formation, a trainer, a session with slotCount slots
// and trainees enrolled trainees.
func SeedSession(t *testing.T, db *gorm.DB, slotCount, trainees int) *Fixture {
	t.Helper()
	fx := &Fixture{}
	fx.Formation = CreateFormation(t, db, "HACCP "+fmt.Sprint(time.Now().UnixNano()))

	fx.TrainerUser = CreateUser(t, db, "formateur."+fmt.Sprint(time.Now().UnixNano()), constants.RoleTrainer, true)
	fx.Trainer = userModel.TrainerModel{
		TrainerUserID:    fx.TrainerUser.ID,
		TrainerLastName:  "Martin",
		TrainerFirstName: "Claire",
	}
	require.NoError(t, db.Create(&fx.Trainer).Error)

	fx.Session = sessionModel.SessionModel{
		SessionFormationID: fx.Formation.FormationID,
		SessionTrainerID:   fx.Trainer.TrainerID,
		SessionName:        "Session test",
		SessionSlotCount:   slotCount,
	}
	require.NoError(t, db.Create(&fx.Session).Error)

	fx.Slots = make([]sessionModel.SlotModel, slotCount)
	for i := range fx.Slots {
		fx.Slots[i] = sessionModel.SlotModel{SlotSessionID: fx.Session.SessionID, SlotOrder: i + 1}
	}
	if slotCount > 0 {
		require.NoError(t, db.Create(&fx.Slots).Error)
	}

	for i := 0; i < trainees; i++ {
		fx.Trainees = append(fx.Trainees, Enroll(t, db, fx.Session.SessionID, fmt.Sprintf("Stagiaire%d", i+1), "Dupont"))
	}
	return fx
}

// Enroll creates a trainee account and enrolls it in sessionID.
func Enroll(t *testing.T, db *gorm.DB, sessionID uuid.UUID, firstName, lastName string) Enrolled {
	t.Helper()
	var e Enrolled
	e.User = CreateUser(t, db, fmt.Sprintf("%s.%s.%d", firstName, lastName, time.Now().UnixNano()), constants.RoleTrainee, true)
	e.Trainee = userModel.TraineeModel{
		TraineeUserID:    e.User.ID,
		TraineeLastName:  lastName,
		TraineeFirstName: firstName,
	}
	require.NoError(t, db.Create(&e.Trainee).Error)
	e.Enrollment = sessionModel.EnrollmentModel{
		EnrollmentSessionID: sessionID,
		EnrollmentTraineeID: e.Trainee.TraineeID,
	}
	require.NoError(t, db.Create(&e.Enrollment).Error)
	return e
}
