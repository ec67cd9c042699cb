package helper

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

var (
	ErrPasswordTooShort = errors.New("Le mot de passe doit contenir au moins 6 caractères")
	ErrPasswordMismatch = errors.New("Les mots de passe ne correspondent pas")
)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPasswordHash(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// ValidateNewPassword checks the first-login password pair.
func ValidateNewPassword(password, confirm string) error {
	if len(strings.TrimSpace(password)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// TemporaryPassword is stored for accounts created by an admin; it is never
// checked before the first login.
func TemporaryPassword() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "ChangeMe000000"
	}
	return "ChangeMe" + hex.EncodeToString(b)
}
