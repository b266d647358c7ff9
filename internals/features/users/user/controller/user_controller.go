package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	authDTO "bimbelku_backend/internals/features/users/auth/dto"
	"bimbelku_backend/internals/features/users/auth/session"
	"bimbelku_backend/internals/features/users/user/dto"
	"bimbelku_backend/internals/features/users/user/model"
	helpers "bimbelku_backend/internals/helpers"
)

type UserController struct {
	DB       *gorm.DB
	Sessions *session.Registry
	validate *validator.Validate
}

func NewUserController(db *gorm.DB, sessions *session.Registry) *UserController {
	return &UserController{DB: db, Sessions: sessions, validate: validator.New()}
}

// UpdateProfile memperbarui user_name / phone milik user yang login
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := uc.validate.Struct(req); err != nil {
		return helpers.JsonValidationError(c, helpers.ValidatorErrors(err))
	}

	updates := map[string]any{}
	if req.UserName != nil {
		updates["user_name"] = *req.UserName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if len(updates) == 0 {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Tidak ada field yang diubah")
	}

	if err := uc.DB.Model(&model.UserModel{}).
		Where("id = ?", userID).
		Updates(updates).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal update profil")
	}

	var user model.UserModel
	if err := uc.DB.First(&user, "id = ?", userID).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusNotFound, "User not found")
	}

	return helpers.JsonUpdated(c, "Profil berhasil diperbarui", authDTO.ToUserResponse(&user))
}

// DeactivateAccount menonaktifkan akun dan mencabut sesinya
func (uc *UserController) DeactivateAccount(c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	if err := uc.DB.Model(&model.UserModel{}).
		Where("id = ?", userID).
		Update("is_active", false).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal menonaktifkan akun")
	}

	uc.Sessions.Remove(userID)

	return helpers.JsonOK(c, "Akun berhasil dinonaktifkan", nil)
}
