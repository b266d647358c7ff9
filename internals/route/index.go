package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"bimbelku_backend/internals/configs"
	"bimbelku_backend/internals/constants"
	attendanceRoute "bimbelku_backend/internals/features/tutoring/attendance/route"
	batchRoute "bimbelku_backend/internals/features/tutoring/batches/route"
	feeRoute "bimbelku_backend/internals/features/tutoring/fees/route"
	studentRoute "bimbelku_backend/internals/features/tutoring/students/route"
	testRoute "bimbelku_backend/internals/features/tutoring/tests/route"
	authRoute "bimbelku_backend/internals/features/users/auth/route"
	"bimbelku_backend/internals/features/users/auth/session"
	userRoute "bimbelku_backend/internals/features/users/user/route"
	authMiddleware "bimbelku_backend/internals/middlewares/auth"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB, sessions *session.Registry) {
	startTime = time.Now()

	BaseRoutes(app)

	// ===================== PUBLIC =====================
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api")
	authRoute.AuthPublicRoutes(public, db, sessions)
	feeRoute.FeeWebhookRoutes(public, db) // notifikasi Midtrans, diverifikasi via signature

	// ===================== PRIVATE (semua role) =====================
	log.Println("[INFO] Setting up PRIVATE group...")
	private := app.Group("/api",
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret:              configs.GetEnv("JWT_SECRET"),
			Sessions:            sessions,
			AllowCookieFallback: true,
		}),
	)
	authRoute.AuthProtectedRoutes(private, db, sessions)
	userRoute.UserRoutes(private, db, sessions)

	// ===================== TUTOR =====================
	log.Println("[INFO] Setting up TUTOR group...")
	tutor := private.Group("/t",
		authMiddleware.OnlyRole(constants.RoleErrorTutor("manajemen bimbel"), constants.RoleTutor),
	)
	batchRoute.BatchTutorRoutes(tutor, db)
	studentRoute.StudentTutorRoutes(tutor, db)
	attendanceRoute.AttendanceTutorRoutes(tutor, db)
	feeRoute.FeeTutorRoutes(tutor, db)
	testRoute.TestTutorRoutes(tutor, db)

	// ===================== STUDENT (self-service) =====================
	log.Println("[INFO] Setting up STUDENT group...")
	studentArea := private.Group("/s",
		authMiddleware.OnlyRole(constants.RoleErrorStudent("portal siswa"), constants.RoleStudent),
	)
	studentRoute.StudentSelfRoutes(studentArea, db)
}
