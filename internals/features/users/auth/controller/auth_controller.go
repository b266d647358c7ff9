package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authDTO "bimbelku_backend/internals/features/users/auth/dto"
	"bimbelku_backend/internals/features/users/auth/service"
	"bimbelku_backend/internals/features/users/auth/session"
	userModel "bimbelku_backend/internals/features/users/user/model"
	helpers "bimbelku_backend/internals/helpers"
)

type AuthController struct {
	DB       *gorm.DB
	Sessions *session.Registry
}

func NewAuthController(db *gorm.DB, sessions *session.Registry) *AuthController {
	return &AuthController{DB: db, Sessions: sessions}
}

func (ac *AuthController) Register(c *fiber.Ctx) error {
	return service.Register(ac.DB, c)
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	return service.Login(ac.DB, ac.Sessions, c)
}

func (ac *AuthController) LoginGoogle(c *fiber.Ctx) error {
	return service.LoginGoogle(ac.DB, ac.Sessions, c)
}

func (ac *AuthController) Logout(c *fiber.Ctx) error {
	return service.Logout(ac.Sessions, c)
}

func (ac *AuthController) RefreshToken(c *fiber.Ctx) error {
	return service.RefreshToken(ac.DB, ac.Sessions, c)
}

func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	return service.ChangePassword(ac.DB, ac.Sessions, c)
}

// Me mengembalikan profil user yang sedang login
func (ac *AuthController) Me(c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var user userModel.UserModel
	if err := ac.DB.First(&user, "id = ?", userID).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusNotFound, "User not found")
	}

	return helpers.JsonOK(c, "OK", authDTO.ToUserResponse(&user))
}
