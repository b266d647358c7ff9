package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"bimbelku_backend/internals/features/tutoring/batches/controller"
)

// BatchTutorRoutes: seluruh manajemen batch, khusus role tutor
func BatchTutorRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewBatchController(db)

	batches := api.Group("/batches")
	batches.Post("/", ctrl.CreateBatch)
	batches.Get("/", ctrl.GetBatches)
	batches.Get("/schedule", ctrl.ScheduleOverview)
	batches.Get("/:id", ctrl.GetBatchByID)
	batches.Put("/:id", ctrl.UpdateBatch)
	batches.Delete("/:id", ctrl.DeleteBatch)
	batches.Get("/:id/analytics", ctrl.BatchAnalytics)
}
