package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"bimbelku_backend/internals/features/tutoring/tests/controller"
)

// TestTutorRoutes — manajemen test & grading (scope tutor)
func TestTutorRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewTestController(db)

	tests := api.Group("/tests")
	tests.Post("/", ctrl.CreateTest)
	tests.Get("/", ctrl.GetTests)
	tests.Get("/batches/:batch_id/analytics", ctrl.BatchAnalytics)
	tests.Get("/students/:student_id/performance", ctrl.StudentPerformance)
	tests.Get("/:id", ctrl.GetTestByID)
	tests.Put("/:id", ctrl.UpdateTest)
	tests.Delete("/:id", ctrl.DeleteTest)
	tests.Post("/:id/results", ctrl.UploadMarks)
	tests.Post("/:id/publish", ctrl.Publish)
}
