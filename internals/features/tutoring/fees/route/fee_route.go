package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"bimbelku_backend/internals/configs"
	"bimbelku_backend/internals/features/tutoring/fees/controller"
)

// FeeTutorRoutes: manajemen fee, khusus role tutor
func FeeTutorRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewFeeController(db)
	payCtrl := controller.NewPaymentController(db, configs.GetEnv("MIDTRANS_SERVER_KEY"))

	fees := api.Group("/fees")
	fees.Post("/", ctrl.CreateFee)
	fees.Post("/generate-monthly", ctrl.GenerateMonthlyFees)
	fees.Get("/", ctrl.GetFees)
	fees.Get("/dashboard", ctrl.Dashboard)
	fees.Get("/report", ctrl.CollectionReport)
	fees.Get("/report/export", ctrl.ExportCollectionReport)
	fees.Get("/students/:student_id", ctrl.StudentFeeHistory)
	fees.Get("/:id", ctrl.GetFeeByID)
	fees.Post("/:id/pay", ctrl.Pay)
	fees.Post("/:id/cancel", ctrl.CancelFee)
	fees.Post("/:id/snap-token", payCtrl.CreateSnapToken)
}

// FeeWebhookRoutes: endpoint publik untuk notifikasi payment gateway
func FeeWebhookRoutes(api fiber.Router, db *gorm.DB) {
	payCtrl := controller.NewPaymentController(db, configs.GetEnv("MIDTRANS_SERVER_KEY"))
	api.Post("/payments/midtrans/webhook", payCtrl.MidtransWebhook)
}
