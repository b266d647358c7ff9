package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
)

func IsValidStatus(s string) bool {
	return s == StatusPresent || s == StatusAbsent || s == StatusLate
}

// AttendanceDayModel: satu lembar absensi per (batch, tanggal).
// Keunikan pasangan itu dijaga partial unique index di database
// (uq_attendance_days_batch_date) — penjaga balapan antar penulis,
// bukan logika aplikasi.
type AttendanceDayModel struct {
	AttendanceDayID      uuid.UUID `gorm:"column:attendance_day_id;type:uuid;default:gen_random_uuid();primaryKey" json:"attendance_day_id"`
	AttendanceDayTutorID uuid.UUID `gorm:"column:attendance_day_tutor_id;type:uuid;not null;index" json:"attendance_day_tutor_id"`
	AttendanceDayBatchID uuid.UUID `gorm:"column:attendance_day_batch_id;type:uuid;not null;index" json:"attendance_day_batch_id"`
	AttendanceDayDate    time.Time `gorm:"column:attendance_day_date;type:date;not null;index" json:"attendance_day_date"`

	AttendanceDayCreatedAt time.Time      `gorm:"column:attendance_day_created_at;autoCreateTime" json:"attendance_day_created_at"`
	AttendanceDayUpdatedAt time.Time      `gorm:"column:attendance_day_updated_at;autoUpdateTime" json:"attendance_day_updated_at"`
	AttendanceDayDeletedAt gorm.DeletedAt `gorm:"column:attendance_day_deleted_at;index" json:"-"`

	Records []AttendanceRecordModel `gorm:"foreignKey:AttendanceRecordDayID;references:AttendanceDayID" json:"records,omitempty"`
}

func (AttendanceDayModel) TableName() string {
	return "attendance_days"
}

// AttendanceRecordModel: satu baris status per siswa di satu lembar absensi.
type AttendanceRecordModel struct {
	AttendanceRecordID        uuid.UUID `gorm:"column:attendance_record_id;type:uuid;default:gen_random_uuid();primaryKey" json:"attendance_record_id"`
	AttendanceRecordDayID     uuid.UUID `gorm:"column:attendance_record_day_id;type:uuid;not null;uniqueIndex:uq_attendance_records_day_student" json:"attendance_record_day_id"`
	AttendanceRecordStudentID uuid.UUID `gorm:"column:attendance_record_student_id;type:uuid;not null;uniqueIndex:uq_attendance_records_day_student;index" json:"attendance_record_student_id"`
	AttendanceRecordStatus    string    `gorm:"column:attendance_record_status;type:varchar(10);not null" json:"attendance_record_status"`
	AttendanceRecordRemarks   *string   `gorm:"column:attendance_record_remarks;size:200" json:"attendance_record_remarks,omitempty"`

	AttendanceRecordCreatedAt time.Time `gorm:"column:attendance_record_created_at;autoCreateTime" json:"attendance_record_created_at"`
	AttendanceRecordUpdatedAt time.Time `gorm:"column:attendance_record_updated_at;autoUpdateTime" json:"attendance_record_updated_at"`
}

func (AttendanceRecordModel) TableName() string {
	return "attendance_records"
}
