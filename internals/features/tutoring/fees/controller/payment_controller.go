package controller

import (
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"bimbelku_backend/internals/apperr"
	"bimbelku_backend/internals/features/tutoring/fees/dto"
	"bimbelku_backend/internals/features/tutoring/fees/model"
	"bimbelku_backend/internals/features/tutoring/fees/service"
	studentModel "bimbelku_backend/internals/features/tutoring/students/model"
	helpers "bimbelku_backend/internals/helpers"
)

// PaymentController menangani pembayaran online lewat Midtrans Snap.
type PaymentController struct {
	DB                *gorm.DB
	MidtransServerKey string // dipakai untuk verify signature di webhook
}

func NewPaymentController(db *gorm.DB, serverKey string) *PaymentController {
	return &PaymentController{DB: db, MidtransServerKey: serverKey}
}

/* =========================
   Snap token
========================= */

func (pc *PaymentController) CreateSnapToken(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	feeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Fee ID tidak valid")
	}

	var fee model.FeeModel
	if err := pc.DB.
		Where("fee_id = ? AND fee_tutor_id = ?", feeID, tutorID).
		First(&fee).Error; err != nil {
		return helpers.JsonAppError(c, apperr.NotFound("Fee tidak ditemukan"))
	}

	now := time.Now().UTC()
	service.ReconcileStatus(&fee, now)
	if fee.FeeStatus == model.FeeStatusPaid {
		return helpers.JsonAppError(c, apperr.InvalidState("Fee sudah dibayar"))
	}
	if fee.FeeStatus == model.FeeStatusCancelled {
		return helpers.JsonAppError(c, apperr.InvalidState("Fee sudah dibatalkan"))
	}

	cust := service.CustomerInput{Name: "Orang Tua Siswa"}
	var student studentModel.StudentModel
	if err := pc.DB.First(&student, "student_id = ?", fee.FeeStudentID).Error; err == nil {
		cust.Name = student.StudentParentName
		cust.Phone = student.StudentParentPhone
		if student.StudentParentEmail != nil {
			cust.Email = *student.StudentParentEmail
		}
	}

	token, redirectURL, err := service.GenerateSnapToken(&fee, cust)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadGateway, "Gagal membuat transaksi pembayaran")
	}

	return helpers.JsonOK(c, "Snap token berhasil dibuat", dto.SnapTokenResponse{
		OrderID:     service.OrderIDForFee(&fee),
		Token:       token,
		RedirectURL: redirectURL,
	})
}

/* =========================
   Webhook Midtrans
========================= */

type midtransNotif struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"` // capture, settlement, pending, deny, cancel, expire, failure
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"` // string dari Midtrans
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"` // accept / challenge / deny
	TransactionID     string `json:"transaction_id"`
	SettlementTime    string `json:"settlement_time"`
}

func (pc *PaymentController) MidtransWebhook(c *fiber.Ctx) error {
	var notif midtransNotif
	if err := c.BodyParser(&notif); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
	}

	// Verify signature — SHA512(order_id + status_code + gross_amount + ServerKey)
	want := strings.ToLower(notif.SignatureKey)
	got := sha512sum(notif.OrderID + notif.StatusCode + notif.GrossAmount + pc.MidtransServerKey)
	if want == "" || got != want {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid signature")
	}

	feeID, ok := feeIDFromOrderID(notif.OrderID)
	if !ok {
		// order id bukan dari sistem ini; balas 200 supaya Midtrans berhenti retry
		return c.JSON(fiber.Map{"status": "ignored", "reason": "unknown order_id"})
	}

	var fee model.FeeModel
	if err := pc.DB.First(&fee, "fee_id = ?", feeID).Error; err != nil {
		return c.JSON(fiber.Map{"status": "ignored", "reason": "fee not found"})
	}

	// simpan snapshot event untuk audit, apa pun hasil mappingnya
	payloadJSON, _ := json.Marshal(notif)
	_ = pc.DB.Create(&model.PaymentEventModel{
		PaymentEventFeeID:   fee.FeeID,
		PaymentEventOrderID: notif.OrderID,
		PaymentEventStatus:  notif.TransactionStatus,
		PaymentEventPayload: datatypes.JSON(payloadJSON),
	}).Error

	now := time.Now().UTC()
	ts := strings.ToLower(notif.TransactionStatus)
	fraud := strings.ToLower(notif.FraudStatus)
	settled := ts == "settlement" || (ts == "capture" && fraud == "accept")

	if settled {
		service.ReconcileStatus(&fee, now)
		if err := service.RecordPayment(&fee, "online", notif.TransactionID, now); err != nil {
			// sudah paid (notifikasi dobel) atau dibatalkan — jangan minta retry
			return c.JSON(fiber.Map{"status": "ignored", "reason": err.Error()})
		}
		if err := pc.DB.Model(&model.FeeModel{}).
			Where("fee_id = ?", fee.FeeID).
			Updates(map[string]any{
				"fee_status":         fee.FeeStatus,
				"fee_paid_date":      fee.FeePaidDate,
				"fee_payment_method": fee.FeePaymentMethod,
				"fee_transaction_id": fee.FeeTransactionID,
			}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "update fee failed")
		}
	}

	return c.JSON(fiber.Map{
		"status":             "ok",
		"fee_id":             fee.FeeID,
		"fee_status":         fee.FeeStatus,
		"transaction_status": notif.TransactionStatus,
	})
}

func sha512sum(s string) string {
	h := sha512.Sum512([]byte(s))
	return hex.EncodeToString(h[:])
}

func feeIDFromOrderID(orderID string) (uuid.UUID, bool) {
	if !strings.HasPrefix(orderID, "FEE-") {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimPrefix(orderID, "FEE-"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
