package controller

import (
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sfformation_backend/internals/constants"
	"sfformation_backend/internals/features/users/user/dto"
	"sfformation_backend/internals/features/users/user/service"
	helper "sfformation_backend/internals/helpers"
)

type AccountController struct {
	DB        *gorm.DB
	Validator *validator.Validate
}

func NewAccountController(db *gorm.DB) *AccountController {
	return &AccountController{DB: db, Validator: helper.NewValidator()}
}

// GET /api/admin/formateurs
func (ac *AccountController) ListTrainers(c *fiber.Ctx) error {
	rows, err := service.ListTrainers(c.UserContext(), ac.DB)
	if err != nil {
		log.Println("[ERROR] ListTrainers:", err)
		return helper.JsonAppError(c, err)
	}
	out := make([]dto.ProfileResponse, 0, len(rows))
	for _, t := range rows {
		out = append(out, dto.FromTrainer(t))
	}
	return helper.JsonOK(c, "Liste des formateurs", out)
}

// GET /api/admin/stagiaires
func (ac *AccountController) ListTrainees(c *fiber.Ctx) error {
	rows, err := service.ListTrainees(c.UserContext(), ac.DB)
	if err != nil {
		log.Println("[ERROR] ListTrainees:", err)
		return helper.JsonAppError(c, err)
	}
	out := make([]dto.ProfileResponse, 0, len(rows))
	for _, t := range rows {
		out = append(out, dto.FromTrainee(t))
	}
	return helper.JsonOK(c, "Liste des stagiaires", out)
}

// POST /api/admin/formateurs
func (ac *AccountController) CreateTrainer(c *fiber.Ctx) error {
	return ac.create(c, constants.RoleTrainer, "Formateur créé")
}

// POST /api/admin/stagiaires
func (ac *AccountController) CreateTrainee(c *fiber.Ctx) error {
	return ac.create(c, constants.RoleTrainee, "Stagiaire créé")
}

func (ac *AccountController) create(c *fiber.Ctx, role, msg string) error {
	var req dto.CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Corps de requête invalide")
	}
	req.Normalize()
	if err := ac.Validator.Struct(&req); err != nil {
		return helper.JsonValidationError(c, helper.ValidationFieldErrors(err))
	}
	acc, err := service.CreateAccount(c.UserContext(), ac.DB, role, req.ToInput())
	if err != nil {
		return helper.JsonAppError(c, err)
	}
	return helper.JsonCreated(c, msg, dto.FromCreated(acc))
}
