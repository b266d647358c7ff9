package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"bimbelku_backend/internals/features/users/auth/session"
	"bimbelku_backend/internals/features/users/user/controller"
)

// UserRoutes: profil milik user yang sedang login
func UserRoutes(api fiber.Router, db *gorm.DB, sessions *session.Registry) {
	ctrl := controller.NewUserController(db, sessions)

	user := api.Group("/users")
	user.Put("/profile", ctrl.UpdateProfile)
	user.Post("/deactivate", ctrl.DeactivateAccount)
}
