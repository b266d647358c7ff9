package service

import (
	"strings"
	"time"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bimbelku_backend/internals/configs"
	authDTO "bimbelku_backend/internals/features/users/auth/dto"
	"bimbelku_backend/internals/features/users/auth/session"
	userModel "bimbelku_backend/internals/features/users/user/model"
	helpers "bimbelku_backend/internals/helpers"
)

var validate = validator.New()

func nowUTC() time.Time { return time.Now().UTC() }

/* ==========================
   REGISTER
========================== */

func Register(db *gorm.DB, c *fiber.Ctx) error {
	var req authDTO.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helpers.JsonValidationError(c, helpers.ValidatorErrors(err))
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Password hashing failed")
	}

	user := userModel.UserModel{
		UserName: req.UserName,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: hash,
		Role:     req.Role,
	}
	if p := strings.TrimSpace(req.Phone); p != "" {
		user.Phone = &p
	}
	user.SetDefaultValues()

	if err := db.Create(&user).Error; err != nil {
		if helpers.IsUniqueViolation(err) {
			return helpers.JsonError(c, fiber.StatusBadRequest, "Email already registered")
		}
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Failed to create user")
	}

	return helpers.JsonCreated(c, "Registration successful", authDTO.ToUserResponse(&user))
}

/* ==========================
   LOGIN
========================== */

func Login(db *gorm.DB, sessions *session.Registry, c *fiber.Ctx) error {
	var req authDTO.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helpers.JsonValidationError(c, helpers.ValidatorErrors(err))
	}

	var user userModel.UserModel
	if err := db.
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(req.Email))).
		First(&user).Error; err != nil {
		// jangan bocorkan email mana yang terdaftar
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Email atau password salah")
	}
	if !CheckPassword(user.Password, req.Password) {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Email atau password salah")
	}
	if !user.IsActive {
		return helpers.JsonError(c, fiber.StatusForbidden, "Akun dinonaktifkan")
	}

	accessToken, err := GenerateAccessToken(&user)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Failed to generate token")
	}
	refreshToken, err := GenerateRefreshToken(&user)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Failed to generate token")
	}

	// satu sesi aktif per user: login baru menggantikan sesi lama
	sessions.Create(user.ID, accessToken)

	now := nowUTC()
	_ = db.Model(&userModel.UserModel{}).
		Where("id = ?", user.ID).
		Update("last_login_at", now).Error
	user.LastLoginAt = &now

	return helpers.JsonOK(c, "Login successful", authDTO.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         authDTO.ToUserResponse(&user),
	})
}

/* ==========================
   LOGIN GOOGLE
========================== */

func LoginGoogle(db *gorm.DB, sessions *session.Registry, c *fiber.Ctx) error {
	var input struct {
		IDToken string `json:"id_token"`
	}
	if err := c.BodyParser(&input); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(input.IDToken) == "" {
		return helpers.JsonError(c, fiber.StatusBadRequest, "id_token wajib diisi")
	}

	// Verifikasi token Google
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(input.IDToken, []string{configs.GoogleClientID}); err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Invalid Google ID Token")
	}

	claimSet, err := googleAuthIDTokenVerifier.Decode(input.IDToken)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Failed to decode ID Token")
	}
	email := strings.ToLower(strings.TrimSpace(claimSet.Email))
	name, googleID := claimSet.Name, claimSet.Sub

	var user userModel.UserModel
	if err := db.Where("google_id = ?", googleID).First(&user).Error; err != nil {
		// user belum ada: buat baru, role default student.
		// Password dummy acak; login selalu lewat Google.
		hash, err := HashPassword(uuid.NewString())
		if err != nil {
			return helpers.JsonError(c, fiber.StatusInternalServerError, "Failed to create Google user")
		}
		user = userModel.UserModel{
			UserName: name,
			Email:    email,
			Password: hash,
			GoogleID: &googleID,
		}
		user.SetDefaultValues()
		if err := db.Create(&user).Error; err != nil {
			if helpers.IsUniqueViolation(err) {
				return helpers.JsonError(c, fiber.StatusBadRequest, "Email already registered")
			}
			return helpers.JsonError(c, fiber.StatusInternalServerError, "Failed to create Google user")
		}
	}
	if !user.IsActive {
		return helpers.JsonError(c, fiber.StatusForbidden, "Akun dinonaktifkan")
	}

	accessToken, err := GenerateAccessToken(&user)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Failed to generate token")
	}
	refreshToken, err := GenerateRefreshToken(&user)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Failed to generate token")
	}

	sessions.Create(user.ID, accessToken)

	now := nowUTC()
	_ = db.Model(&userModel.UserModel{}).
		Where("id = ?", user.ID).
		Update("last_login_at", now).Error
	user.LastLoginAt = &now

	return helpers.JsonOK(c, "Login successful", authDTO.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         authDTO.ToUserResponse(&user),
	})
}

/* ==========================
   LOGOUT
========================== */

func Logout(sessions *session.Registry, c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	sessions.Remove(userID)
	return helpers.JsonOK(c, "Logout successful", nil)
}

/* ==========================
   REFRESH TOKEN
========================== */

func RefreshToken(db *gorm.DB, sessions *session.Registry, c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		return helpers.JsonError(c, fiber.StatusBadRequest, "refresh_token wajib diisi")
	}

	idStr, err := ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Invalid refresh token")
	}
	userID, err := uuid.Parse(idStr)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Invalid refresh token")
	}

	var user userModel.UserModel
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "User not found")
	}
	if !user.IsActive {
		return helpers.JsonError(c, fiber.StatusForbidden, "Akun dinonaktifkan")
	}

	accessToken, err := GenerateAccessToken(&user)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Failed to generate token")
	}

	// refresh juga menghidupkan kembali sesi (window baru)
	sessions.Create(user.ID, accessToken)

	return helpers.JsonOK(c, "Token refreshed", fiber.Map{
		"access_token": accessToken,
	})
}

/* ==========================
   CHANGE PASSWORD
========================== */

func ChangePassword(db *gorm.DB, sessions *session.Registry, c *fiber.Ctx) error {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req authDTO.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helpers.JsonValidationError(c, helpers.ValidatorErrors(err))
	}

	var user userModel.UserModel
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusNotFound, "User not found")
	}
	if !CheckPassword(user.Password, req.OldPassword) {
		return helpers.JsonError(c, fiber.StatusUnauthorized, "Password lama salah")
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Password hashing failed")
	}
	if err := db.Model(&userModel.UserModel{}).
		Where("id = ?", user.ID).
		Update("password", hash).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal update password")
	}

	// paksa login ulang setelah ganti password
	sessions.Remove(user.ID)

	return helpers.JsonOK(c, "Password berhasil diubah. Silakan login ulang.", nil)
}
