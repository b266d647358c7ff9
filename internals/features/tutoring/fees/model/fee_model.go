package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	FeeStatusPending   = "pending"
	FeeStatusPaid      = "paid"
	FeeStatusOverdue   = "overdue"
	FeeStatusCancelled = "cancelled"
)

const (
	FeeTypeMonthly      = "monthly"
	FeeTypeRegistration = "registration"
	FeeTypeExam         = "exam"
	FeeTypeMaterial     = "material"
	FeeTypeOther        = "other"
)

// FeeModel merepresentasikan tabel fees. Untuk fee_type='monthly',
// keunikan (student, batch, month) dijaga partial unique index
// uq_fees_monthly_student_batch_month di database.
//
// Transisi pending→overdue BUKAN hook tersembunyi: service.ReconcileStatus
// dipanggil eksplisit sebelum record dikembalikan atau diagregasi.
type FeeModel struct {
	FeeID        uuid.UUID `gorm:"column:fee_id;type:uuid;default:gen_random_uuid();primaryKey" json:"fee_id"`
	FeeTutorID   uuid.UUID `gorm:"column:fee_tutor_id;type:uuid;not null;index" json:"fee_tutor_id"`
	FeeStudentID uuid.UUID `gorm:"column:fee_student_id;type:uuid;not null;index" json:"fee_student_id"`
	FeeBatchID   uuid.UUID `gorm:"column:fee_batch_id;type:uuid;not null;index" json:"fee_batch_id"`

	FeeAmount int64   `gorm:"column:fee_amount;not null" json:"fee_amount"`
	FeeType   string  `gorm:"column:fee_type;type:varchar(15);not null;default:'monthly'" json:"fee_type"`
	FeeMonth  *string `gorm:"column:fee_month;type:varchar(7)" json:"fee_month,omitempty"` // "YYYY-MM", wajib untuk monthly

	FeeDueDate  time.Time  `gorm:"column:fee_due_date;type:date;not null;index" json:"fee_due_date"`
	FeePaidDate *time.Time `gorm:"column:fee_paid_date" json:"fee_paid_date,omitempty"`

	FeeStatus        string  `gorm:"column:fee_status;type:varchar(10);not null;default:'pending';index" json:"fee_status"`
	FeePaymentMethod *string `gorm:"column:fee_payment_method;type:varchar(20)" json:"fee_payment_method,omitempty"`
	FeeTransactionID *string `gorm:"column:fee_transaction_id;size:100" json:"fee_transaction_id,omitempty"`
	FeeRemarks       *string `gorm:"column:fee_remarks;size:200" json:"fee_remarks,omitempty"`

	FeeCreatedAt time.Time      `gorm:"column:fee_created_at;autoCreateTime" json:"fee_created_at"`
	FeeUpdatedAt time.Time      `gorm:"column:fee_updated_at;autoUpdateTime" json:"fee_updated_at"`
	FeeDeletedAt gorm.DeletedAt `gorm:"column:fee_deleted_at;index" json:"-"`
}

func (FeeModel) TableName() string {
	return "fees"
}

// PaymentEventModel menyimpan snapshot setiap notifikasi dari payment
// gateway (webhook), payload mentah disimpan sebagai JSONB untuk audit.
type PaymentEventModel struct {
	PaymentEventID      uuid.UUID      `gorm:"column:payment_event_id;type:uuid;default:gen_random_uuid();primaryKey" json:"payment_event_id"`
	PaymentEventFeeID   uuid.UUID      `gorm:"column:payment_event_fee_id;type:uuid;not null;index" json:"payment_event_fee_id"`
	PaymentEventOrderID string         `gorm:"column:payment_event_order_id;size:100;not null;index" json:"payment_event_order_id"`
	PaymentEventStatus  string         `gorm:"column:payment_event_status;size:30;not null" json:"payment_event_status"`
	PaymentEventPayload datatypes.JSON `gorm:"column:payment_event_payload;type:jsonb" json:"payment_event_payload"`

	PaymentEventCreatedAt time.Time `gorm:"column:payment_event_created_at;autoCreateTime" json:"payment_event_created_at"`
}

func (PaymentEventModel) TableName() string {
	return "payment_events"
}
