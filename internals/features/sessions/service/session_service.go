package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	database "sfformation_backend/internals/databases"
	formationModel "sfformation_backend/internals/features/formations/model"
	"sfformation_backend/internals/features/sessions/model"
	userModel "sfformation_backend/internals/features/users/user/model"
	helper "sfformation_backend/internals/helpers"
)

const MaxSlotCount = 50

type CreateSessionInput struct {
	Name        string
	FormationID uuid.UUID
	TrainerID   uuid.UUID
	SlotCount   int
	Dates       []time.Time
}

func orderedSlots(db *gorm.DB) *gorm.DB { return db.Order("slot_order ASC") }

func orderedDates(db *gorm.DB) *gorm.DB { return db.Order("session_date_day ASC") }

/* ===== Sessions ===== */

// CreateSession writes the session, its SlotCount slots (order 1..N) and the
// optional dates in one transaction.
func CreateSession(ctx context.Context, db *gorm.DB, in CreateSessionInput) (*model.SessionModel, error) {
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Name == "":
		return nil, helper.NewValidationError("Le nom de la session est requis")
	case in.FormationID == uuid.Nil:
		return nil, helper.NewValidationError("formation_id requis")
	case in.TrainerID == uuid.Nil:
		return nil, helper.NewValidationError("formateur_id requis")
	case in.SlotCount < 1:
		return nil, helper.NewValidationError("nb_creneaux doit être au moins 1")
	case in.SlotCount > MaxSlotCount:
		return nil, helper.NewValidationError("nb_creneaux trop élevé")
	}

	var sess model.SessionModel
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustExist(tx, &formationModel.FormationModel{}, "formation_id = ?", in.FormationID, "Formation non trouvée"); err != nil {
			return err
		}
		if err := mustExist(tx, &userModel.TrainerModel{}, "trainer_id = ?", in.TrainerID, "Formateur non trouvé"); err != nil {
			return err
		}

		sess = model.SessionModel{
			SessionFormationID: in.FormationID,
			SessionTrainerID:   in.TrainerID,
			SessionName:        in.Name,
			SessionSlotCount:   in.SlotCount,
		}
		if err := tx.Create(&sess).Error; err != nil {
			return err
		}

		slots := make([]model.SlotModel, in.SlotCount)
		for i := range slots {
			slots[i] = model.SlotModel{SlotSessionID: sess.SessionID, SlotOrder: i + 1}
		}
		if err := tx.Create(&slots).Error; err != nil {
			return err
		}
		sess.Slots = slots

		if len(in.Dates) > 0 {
			dates := make([]model.SessionDateModel, 0, len(in.Dates))
			for _, d := range in.Dates {
				day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
				dates = append(dates, model.SessionDateModel{SessionDateSessionID: sess.SessionID, SessionDateDay: day})
			}
			if err := tx.Create(&dates).Error; err != nil {
				return err
			}
			sess.Dates = dates
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] Session créée id=%s créneaux=%d dates=%d", sess.SessionID, len(sess.Slots), len(sess.Dates))
	return &sess, nil
}

func mustExist(tx *gorm.DB, dst any, where string, id uuid.UUID, msg string) error {
	var n int64
	if err := tx.Model(dst).Where(where, id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return helper.NewNotFoundError(msg)
	}
	return nil
}

func ListSessions(ctx context.Context, db *gorm.DB, p helper.Paging) ([]model.SessionModel, int64, error) {
	var (
		rows  []model.SessionModel
		total int64
	)
	base := db.WithContext(ctx)
	if err := base.Model(&model.SessionModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := base.Preload("Formation").Preload("Trainer").Preload("Slots", orderedSlots).
		Order("session_created_at DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&rows).Error
	return rows, total, err
}

func GetSession(ctx context.Context, db *gorm.DB, sessionID uuid.UUID) (*model.SessionModel, error) {
	var s model.SessionModel
	err := db.WithContext(ctx).
		Preload("Formation").Preload("Trainer").
		Preload("Slots", orderedSlots).Preload("Dates", orderedDates).
		Where("session_id = ?", sessionID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, helper.NewNotFoundError("Session non trouvée")
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindOwnedSession loads a session only if trainerID runs it.
func FindOwnedSession(ctx context.Context, db *gorm.DB, trainerID, sessionID uuid.UUID) (*model.SessionModel, error) {
	var s model.SessionModel
	err := db.WithContext(ctx).
		Preload("Formation").Preload("Slots", orderedSlots).Preload("Dates", orderedDates).
		Where("session_id = ? AND session_trainer_id = ?", sessionID, trainerID).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, helper.NewNotFoundError("Session non trouvée")
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func ListTrainerSessions(ctx context.Context, db *gorm.DB, trainerID uuid.UUID) ([]model.SessionModel, error) {
	var rows []model.SessionModel
	err := db.WithContext(ctx).
		Preload("Formation").Preload("Slots", orderedSlots).
		Where("session_trainer_id = ?", trainerID).
		Order("session_created_at DESC").
		Find(&rows).Error
	return rows, err
}

/* ===== Slots ===== */

func FindSlotInSession(ctx context.Context, db *gorm.DB, sessionID, slotID uuid.UUID) (*model.SlotModel, error) {
	var slot model.SlotModel
	err := db.WithContext(ctx).
		Where("slot_id = ? AND slot_session_id = ?", slotID, sessionID).
		First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, helper.NewNotFoundError("Créneau non trouvé")
	}
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// UpdateSlotTimes sets start/end of one slot; nil leaves a field unchanged.
func UpdateSlotTimes(ctx context.Context, db *gorm.DB, sessionID, slotID uuid.UUID, startsAt, endsAt *time.Time) (*model.SlotModel, error) {
	slot, err := FindSlotInSession(ctx, db, sessionID, slotID)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if startsAt != nil {
		updates["slot_starts_at"] = startsAt.UTC()
	}
	if endsAt != nil {
		updates["slot_ends_at"] = endsAt.UTC()
	}
	start, end := slot.SlotStartsAt, slot.SlotEndsAt
	if startsAt != nil {
		start = startsAt
	}
	if endsAt != nil {
		end = endsAt
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, helper.NewValidationError("heure_fin doit être après heure_debut")
	}
	if len(updates) == 0 {
		return slot, nil
	}
	if err := db.WithContext(ctx).Model(slot).Updates(updates).Error; err != nil {
		return nil, err
	}
	return FindSlotInSession(ctx, db, sessionID, slotID)
}

/* ===== Enrollments ===== */

func Enroll(ctx context.Context, db *gorm.DB, sessionID, traineeID uuid.UUID) (*model.EnrollmentModel, error) {
	if err := mustExist(db.WithContext(ctx), &model.SessionModel{}, "session_id = ?", sessionID, "Session non trouvée"); err != nil {
		return nil, err
	}
	if err := mustExist(db.WithContext(ctx), &userModel.TraineeModel{}, "trainee_id = ?", traineeID, "Stagiaire non trouvé"); err != nil {
		return nil, err
	}
	e := model.EnrollmentModel{EnrollmentSessionID: sessionID, EnrollmentTraineeID: traineeID}
	if err := db.WithContext(ctx).Create(&e).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, helper.NewDuplicateError("Ce stagiaire est déjà inscrit à cette session", err)
		}
		return nil, err
	}
	return &e, nil
}

func ListEnrollments(ctx context.Context, db *gorm.DB, sessionID uuid.UUID) ([]model.EnrollmentModel, error) {
	var rows []model.EnrollmentModel
	err := db.WithContext(ctx).
		Preload("Trainee").
		Where("enrollment_session_id = ?", sessionID).
		Order("enrollment_created_at ASC, enrollment_id ASC").
		Find(&rows).Error
	return rows, err
}

func GetEnrollment(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID) (*model.EnrollmentModel, error) {
	var e model.EnrollmentModel
	err := db.WithContext(ctx).
		Preload("Trainee").Preload("Session").Preload("Session.Formation").
		Where("enrollment_id = ?", enrollmentID).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, helper.NewNotFoundError("Inscription non trouvée")
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// FindTraineeEnrollment loads an enrollment only if it belongs to traineeID.
func FindTraineeEnrollment(ctx context.Context, db *gorm.DB, traineeID, enrollmentID uuid.UUID) (*model.EnrollmentModel, error) {
	var e model.EnrollmentModel
	err := db.WithContext(ctx).
		Preload("Session").
		Where("enrollment_id = ? AND enrollment_trainee_id = ?", enrollmentID, traineeID).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, helper.NewNotFoundError("Inscription non trouvée")
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func FindEnrollmentInSession(ctx context.Context, db *gorm.DB, sessionID, enrollmentID uuid.UUID) (*model.EnrollmentModel, error) {
	var e model.EnrollmentModel
	err := db.WithContext(ctx).
		Preload("Trainee").Preload("Session").
		Where("enrollment_id = ? AND enrollment_session_id = ?", enrollmentID, sessionID).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, helper.NewNotFoundError("Inscription non trouvée")
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func ListTraineeEnrollments(ctx context.Context, db *gorm.DB, traineeID uuid.UUID) ([]model.EnrollmentModel, error) {
	var rows []model.EnrollmentModel
	err := db.WithContext(ctx).
		Preload("Session").Preload("Session.Formation").
		Preload("Session.Slots", orderedSlots).Preload("Session.Dates", orderedDates).
		Where("enrollment_trainee_id = ?", traineeID).
		Order("enrollment_created_at DESC").
		Find(&rows).Error
	return rows, err
}

func UpdateNeedsAnalysis(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID, text *string) (*model.EnrollmentModel, error) {
	res := db.WithContext(ctx).Model(&model.EnrollmentModel{}).
		Where("enrollment_id = ?", enrollmentID).
		Update("enrollment_needs_analysis", text)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, helper.NewNotFoundError("Inscription non trouvée")
	}
	return GetEnrollment(ctx, db, enrollmentID)
}
