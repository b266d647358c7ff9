package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"bimbelku_backend/internals/features/tutoring/attendance/controller"
)

// AttendanceTutorRoutes: absensi, khusus role tutor
func AttendanceTutorRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewAttendanceController(db)

	attendance := api.Group("/attendance")
	attendance.Post("/", ctrl.MarkAttendance)
	attendance.Get("/", ctrl.GetAttendanceList)
	attendance.Get("/summary", ctrl.Summary)
	attendance.Get("/batches/:batch_id/stats", ctrl.BatchStats)
	attendance.Get("/batches/:batch_id/date/:date", ctrl.GetSheetByDate)
	attendance.Get("/students/:student_id/history", ctrl.StudentHistory)
}
