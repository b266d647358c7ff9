package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"bimbelku_backend/internals/features/tutoring/students/controller"
)

// StudentTutorRoutes: manajemen siswa + roster, khusus role tutor
func StudentTutorRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewStudentController(db)

	students := api.Group("/students")
	students.Post("/", ctrl.CreateStudent)
	students.Get("/", ctrl.GetStudents)
	students.Get("/:id", ctrl.GetStudentByID)
	students.Put("/:id", ctrl.UpdateStudent)
	students.Delete("/:id", ctrl.DeleteStudent)
	students.Post("/:id/enroll", ctrl.EnrollStudent)
	students.Delete("/:id/batches/:batch_id", ctrl.RemoveFromBatch)
}

// StudentSelfRoutes: endpoint self-service, khusus role student
func StudentSelfRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewStudentSelfController(db)

	me := api.Group("/me")
	me.Get("/profile", ctrl.MyProfile)
	me.Get("/schedule", ctrl.MySchedule)
	me.Get("/stats", ctrl.MyStats)
}
