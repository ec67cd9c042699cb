package controller

import (
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sfformation_backend/internals/features/users/auth/service"
	helper "sfformation_backend/internals/helpers"
)

type AuthController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db, Validator: helper.NewValidator()}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type requestFirstLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=formateur stagiaire"`
}

type firstLoginRequest struct {
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm"`
}

// bind parses and validates the body; on failure the response is already written.
func (ac *AuthController) bind(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, helper.JsonError(c, fiber.StatusBadRequest, "Corps de requête invalide")
	}
	if err := ac.Validator.Struct(dst); err != nil {
		return false, helper.JsonValidationError(c, helper.ValidationFieldErrors(err))
	}
	return true, nil
}

func sessionPayload(s *service.Session) fiber.Map {
	out := fiber.Map{
		"ok":             true,
		"role":           s.User.Role,
		"firstLoginDone": s.User.FirstLoginDone,
	}
	if r := s.Redirect(); r != "" {
		out["redirect"] = r
	}
	return out
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req loginRequest
	if ok, err := ac.bind(c, &req); !ok {
		return err
	}
	s, err := service.Login(c.UserContext(), ac.DB, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	service.SetAuthCookie(c, s.Token, s.ExpiresAt)
	return helper.JsonOK(c, "Connexion réussie", sessionPayload(s))
}

// POST /api/auth/request-first-login
func (ac *AuthController) RequestFirstLogin(c *fiber.Ctx) error {
	var req requestFirstLoginRequest
	if ok, err := ac.bind(c, &req); !ok {
		return err
	}
	s, err := service.RequestFirstLogin(c.UserContext(), ac.DB, strings.TrimSpace(req.Username), req.Role)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	service.SetAuthCookie(c, s.Token, s.ExpiresAt)
	return helper.JsonOK(c, "Première connexion", sessionPayload(s))
}

// POST /api/auth/first-login
func (ac *AuthController) FirstLogin(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	var req firstLoginRequest
	if ok, err := ac.bind(c, &req); !ok {
		return err
	}
	s, err := service.FirstLogin(c.UserContext(), ac.DB, userID, req.Password, req.PasswordConfirm)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	if raw := helper.GetRawAccessToken(c); raw != "" {
		if err := service.Logout(c.UserContext(), ac.DB, raw, helper.GetTokenExpiry(c)); err != nil {
			log.Printf("[WARN] blacklist ancien token: %v", err)
		}
	}
	service.SetAuthCookie(c, s.Token, s.ExpiresAt)
	return helper.JsonOK(c, "Mot de passe défini", fiber.Map{"ok": true})
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	if err := service.Logout(c.UserContext(), ac.DB, helper.GetRawAccessToken(c), helper.GetTokenExpiry(c)); err != nil {
		log.Printf("[WARN] Échec blacklist token: %v", err)
	}
	service.ClearAuthCookie(c)
	return helper.JsonOK(c, "Déconnexion réussie", fiber.Map{"ok": true})
}

// GET /api/auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	me, err := service.GetMe(c.UserContext(), ac.DB, userID)
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonOK(c, "Profil", me)
}
