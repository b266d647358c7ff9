package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"bimbelku_backend/internals/features/users/auth/controller"
	"bimbelku_backend/internals/features/users/auth/session"
	"bimbelku_backend/internals/middlewares"
)

// AuthPublicRoutes: endpoint tanpa token (register, login, refresh).
// Login & register dibatasi per IP.
func AuthPublicRoutes(api fiber.Router, db *gorm.DB, sessions *session.Registry) {
	ctrl := controller.NewAuthController(db, sessions)

	auth := api.Group("/auth")
	auth.Post("/register", middlewares.RegisterRateLimiter(), ctrl.Register)
	auth.Post("/login", middlewares.LoginRateLimiter(), ctrl.Login)
	auth.Post("/login-google", middlewares.LoginRateLimiter(), ctrl.LoginGoogle)
	auth.Post("/refresh-token", ctrl.RefreshToken)
}

// AuthProtectedRoutes: endpoint yang butuh sesi aktif
func AuthProtectedRoutes(api fiber.Router, db *gorm.DB, sessions *session.Registry) {
	ctrl := controller.NewAuthController(db, sessions)

	auth := api.Group("/auth")
	auth.Post("/logout", ctrl.Logout)
	auth.Post("/change-password", ctrl.ChangePassword)
	auth.Get("/me", ctrl.Me)
}
