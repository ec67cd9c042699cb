package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"gorm.io/gorm"

	database "sfformation_backend/internals/databases"
	"sfformation_backend/internals/features/submissions/model"
	helper "sfformation_backend/internals/helpers"
)

const (
	signatureDataURLPrefix = "data:image/png;base64,"
	maxSignatureBytes      = 2 << 20
	signatureMaxWidth      = 600
	signatureMaxHeight     = 200
)

// NormalizeSignature decodes a PNG data URL, shrinks it to fit 600x200 and
// re-encodes it as a PNG data URL.
func NormalizeSignature(dataURL string) (string, error) {
	dataURL = strings.TrimSpace(dataURL)
	if !strings.HasPrefix(dataURL, signatureDataURLPrefix) {
		return "", helper.NewValidationError("signature_data doit être une image PNG (data URL)")
	}
	raw, err := base64.StdEncoding.DecodeString(dataURL[len(signatureDataURLPrefix):])
	if err != nil {
		return "", helper.NewValidationError("signature_data invalide")
	}
	if len(raw) == 0 || len(raw) > maxSignatureBytes {
		return "", helper.NewValidationError("signature_data vide ou trop volumineuse")
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", helper.NewValidationError("signature_data illisible")
	}
	b := img.Bounds()
	if b.Dx() > signatureMaxWidth || b.Dy() > signatureMaxHeight {
		img = imaging.Fit(img, signatureMaxWidth, signatureMaxHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", err
	}
	return signatureDataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeSignatureImage turns a stored data URL back into an image (PDF export).
func DecodeSignatureImage(dataURL string) (image.Image, error) {
	if !strings.HasPrefix(dataURL, signatureDataURLPrefix) {
		return nil, helper.NewValidationError("signature_data invalide")
	}
	raw, err := base64.StdEncoding.DecodeString(dataURL[len(signatureDataURLPrefix):])
	if err != nil {
		return nil, err
	}
	return imaging.Decode(bytes.NewReader(raw))
}

// RecordSignature stores one émargement; the (enrollment, slot) unique index
// turns a second attempt into a DuplicateError.
func RecordSignature(ctx context.Context, db *gorm.DB, enrollmentID, slotID uuid.UUID, dataURL string, signedAt time.Time) (*model.SignatureModel, error) {
	normalized, err := NormalizeSignature(dataURL)
	if err != nil {
		return nil, err
	}
	sig := model.SignatureModel{
		SignatureEnrollmentID: enrollmentID,
		SignatureSlotID:       slotID,
		SignatureSignedAt:     signedAt.UTC(),
		SignatureData:         normalized,
	}
	if err := db.WithContext(ctx).Create(&sig).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, helper.NewDuplicateError("Émargement déjà enregistré", err)
		}
		return nil, err
	}
	return &sig, nil
}

func HasSignature(ctx context.Context, db *gorm.DB, enrollmentID, slotID uuid.UUID) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.SignatureModel{}).
		Where("signature_enrollment_id = ? AND signature_slot_id = ?", enrollmentID, slotID).
		Count(&n).Error
	return n > 0, err
}

type SignatureWithSlot struct {
	model.SignatureModel
	SlotOrder int `json:"creneau_ordre"`
}

func ListSignatures(ctx context.Context, db *gorm.DB, enrollmentID uuid.UUID) ([]SignatureWithSlot, error) {
	var rows []SignatureWithSlot
	err := db.WithContext(ctx).
		Table("emargements AS e").
		Select("e.*, c.slot_order AS slot_order").
		Joins("JOIN session_creneaux AS c ON c.slot_id = e.signature_slot_id").
		Where("e.signature_enrollment_id = ?", enrollmentID).
		Order("c.slot_order ASC").
		Scan(&rows).Error
	return rows, err
}
