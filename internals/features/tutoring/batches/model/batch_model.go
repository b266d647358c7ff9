package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Hari valid untuk jadwal mingguan (set, bukan urutan)
var ValidDays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

func IsValidDay(day string) bool {
	for _, d := range ValidDays {
		if d == day {
			return true
		}
	}
	return false
}

const (
	BatchStatusActive   = "active"
	BatchStatusInactive = "inactive"
)

// BatchModel merepresentasikan tabel batches: satu kelompok kelas mingguan
// milik satu tutor. Jadwal disimpan sebagai set hari + jam HH:MM;
// duration informasional, tidak diturunkan ulang dari start/end.
type BatchModel struct {
	BatchID          uuid.UUID      `gorm:"column:batch_id;type:uuid;default:gen_random_uuid();primaryKey" json:"batch_id"`
	BatchTutorID     uuid.UUID      `gorm:"column:batch_tutor_id;type:uuid;not null;index" json:"batch_tutor_id"`
	BatchName        string         `gorm:"column:batch_name;size:100;not null" json:"batch_name"`
	BatchSubject     string         `gorm:"column:batch_subject;size:100;not null" json:"batch_subject"`
	BatchDescription *string        `gorm:"column:batch_description;size:500" json:"batch_description,omitempty"`
	BatchDays        pq.StringArray `gorm:"column:batch_days;type:text[];not null" json:"batch_days"`
	BatchStartTime   string         `gorm:"column:batch_start_time;type:varchar(5);not null" json:"batch_start_time"`
	BatchEndTime     string         `gorm:"column:batch_end_time;type:varchar(5);not null" json:"batch_end_time"`
	BatchDuration    int            `gorm:"column:batch_duration_minutes;not null" json:"batch_duration_minutes"`
	BatchCapacity    int            `gorm:"column:batch_capacity;not null" json:"batch_capacity"`

	BatchMonthlyFee      int64  `gorm:"column:batch_monthly_fee;not null" json:"batch_monthly_fee"`
	BatchRegistrationFee int64  `gorm:"column:batch_registration_fee;not null;default:0" json:"batch_registration_fee"`
	BatchCurrency        string `gorm:"column:batch_currency;type:varchar(3);not null;default:'IDR'" json:"batch_currency"`

	BatchStatus string `gorm:"column:batch_status;type:varchar(10);not null;default:'active'" json:"batch_status"`

	BatchCreatedAt time.Time      `gorm:"column:batch_created_at;autoCreateTime" json:"batch_created_at"`
	BatchUpdatedAt time.Time      `gorm:"column:batch_updated_at;autoUpdateTime" json:"batch_updated_at"`
	BatchDeletedAt gorm.DeletedAt `gorm:"column:batch_deleted_at;index" json:"-"`
}

func (BatchModel) TableName() string {
	return "batches"
}

func (b *BatchModel) IsActive() bool {
	return b.BatchStatus == BatchStatusActive
}

// BatchStudentModel adalah baris roster: satu siswa terdaftar di satu batch.
// Kapasitas dijaga di layer service; duplikat dijaga unique index.
type BatchStudentModel struct {
	BatchStudentID         uuid.UUID `gorm:"column:batch_student_id;type:uuid;default:gen_random_uuid();primaryKey" json:"batch_student_id"`
	BatchStudentBatchID    uuid.UUID `gorm:"column:batch_student_batch_id;type:uuid;not null;uniqueIndex:uq_batch_students_batch_student" json:"batch_student_batch_id"`
	BatchStudentStudentID  uuid.UUID `gorm:"column:batch_student_student_id;type:uuid;not null;uniqueIndex:uq_batch_students_batch_student" json:"batch_student_student_id"`
	BatchStudentEnrolledAt time.Time `gorm:"column:batch_student_enrolled_at;autoCreateTime" json:"batch_student_enrolled_at"`
}

func (BatchStudentModel) TableName() string {
	return "batch_students"
}
