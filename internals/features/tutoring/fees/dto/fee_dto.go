package dto

import (
	"time"

	"github.com/google/uuid"

	"bimbelku_backend/internals/features/tutoring/fees/model"
)

/* =========================
   Request
========================= */

type CreateFeeRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid4"`
	BatchID   string `json:"batch_id" validate:"required,uuid4"`
	Amount    int64  `json:"amount" validate:"required,min=0"`
	FeeType   string `json:"fee_type" validate:"omitempty,oneof=monthly registration exam material other"`
	Month     string `json:"month" validate:"omitempty,len=7"` // YYYY-MM, wajib untuk monthly
	DueDate   string `json:"due_date" validate:"required"`     // YYYY-MM-DD
	Remarks   string `json:"remarks" validate:"omitempty,max=200"`
}

// GenerateMonthlyRequest membuat fee bulanan untuk seluruh roster satu batch.
type GenerateMonthlyRequest struct {
	BatchID string `json:"batch_id" validate:"required,uuid4"`
	Month   string `json:"month" validate:"required,len=7"`    // YYYY-MM
	DueDate string `json:"due_date" validate:"required"`       // YYYY-MM-DD
}

type RecordPaymentRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=cash card bank_transfer cheque online"`
	TransactionID string `json:"transaction_id" validate:"omitempty,max=100"`
}

/* =========================
   Response
========================= */

type FeeResponse struct {
	FeeID         uuid.UUID  `json:"fee_id"`
	StudentID     uuid.UUID  `json:"student_id"`
	BatchID       uuid.UUID  `json:"batch_id"`
	Amount        int64      `json:"amount"`
	FeeType       string     `json:"fee_type"`
	Month         *string    `json:"month,omitempty"`
	DueDate       time.Time  `json:"due_date"`
	PaidDate      *time.Time `json:"paid_date,omitempty"`
	Status        string     `json:"status"`
	PaymentMethod *string    `json:"payment_method,omitempty"`
	TransactionID *string    `json:"transaction_id,omitempty"`
	Remarks       *string    `json:"remarks,omitempty"`
	DaysOverdue   int        `json:"days_overdue"`
	CreatedAt     time.Time  `json:"created_at"`
}

func ToFeeResponse(f *model.FeeModel, daysOverdue int) FeeResponse {
	return FeeResponse{
		FeeID:         f.FeeID,
		StudentID:     f.FeeStudentID,
		BatchID:       f.FeeBatchID,
		Amount:        f.FeeAmount,
		FeeType:       f.FeeType,
		Month:         f.FeeMonth,
		DueDate:       f.FeeDueDate,
		PaidDate:      f.FeePaidDate,
		Status:        f.FeeStatus,
		PaymentMethod: f.FeePaymentMethod,
		TransactionID: f.FeeTransactionID,
		Remarks:       f.FeeRemarks,
		DaysOverdue:   daysOverdue,
		CreatedAt:     f.FeeCreatedAt,
	}
}

type SnapTokenResponse struct {
	OrderID     string `json:"order_id"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}
