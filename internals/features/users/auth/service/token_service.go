package service

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"sfformation_backend/internals/configs"
	userModel "sfformation_backend/internals/features/users/user/model"
)

var ErrMissingSecret = errors.New("JWT_SECRET manquant")

// Claims is the session token payload; the subject is the user id.
type Claims struct {
	Username       string `json:"username"`
	Role           string `json:"role"`
	FirstLoginDone bool   `json:"firstLoginDone"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Subject))
}

func secret() ([]byte, error) {
	s := strings.TrimSpace(configs.JWTSecret)
	if s == "" {
		return nil, ErrMissingSecret
	}
	return []byte(s), nil
}

// IssueToken signs an HS256 token valid for configs.TokenTTL.
func IssueToken(u userModel.UserModel, firstLoginDone bool, now time.Time) (string, time.Time, error) {
	key, err := secret()
	if err != nil {
		return "", time.Time{}, err
	}
	exp := now.Add(configs.TokenTTL)
	claims := Claims{
		Username:       u.UserName,
		Role:           u.Role,
		FirstLoginDone: firstLoginDone,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	return signed, exp, err
}

// ParseToken verifies the signature, the algorithm and the expiry.
func ParseToken(raw string) (*Claims, error) {
	key, err := secret()
	if err != nil {
		return nil, err
	}
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("algorithme de signature inattendu")
		}
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, errors.New("token invalide")
	}
	return claims, nil
}

/* ===== Cookie ===== */

func SetAuthCookie(c *fiber.Ctx, token string, exp time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     configs.CookieName,
		Value:    token,
		HTTPOnly: true,
		Secure:   configs.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		Expires:  exp,
	})
}

func ClearAuthCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     configs.CookieName,
		Value:    "",
		HTTPOnly: true,
		Secure:   configs.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		MaxAge:   -1,
	})
}
