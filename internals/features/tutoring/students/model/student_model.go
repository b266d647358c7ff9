package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StudentStatusActive    = "active"
	StudentStatusInactive  = "inactive"
	StudentStatusSuspended = "suspended"
)

// StudentModel merepresentasikan tabel students: data siswa yang dikelola
// satu tutor. StudentUserID menghubungkan ke akun login (opsional — siswa
// boleh terdaftar tanpa akun).
type StudentModel struct {
	StudentID      uuid.UUID  `gorm:"column:student_id;type:uuid;default:gen_random_uuid();primaryKey" json:"student_id"`
	StudentTutorID uuid.UUID  `gorm:"column:student_tutor_id;type:uuid;not null;index;uniqueIndex:uq_students_tutor_code" json:"student_tutor_id"`
	StudentUserID  *uuid.UUID `gorm:"column:student_user_id;type:uuid;uniqueIndex:uq_students_user" json:"student_user_id,omitempty"`

	// kode siswa pendek, berurutan per tutor (STU0001, ...). Unik per
	// (tutor, kode) — tutor lain boleh punya STU0001 sendiri. Index
	// sengaja ikut menahan baris soft-delete supaya kode tidak terpakai ulang.
	StudentCode string `gorm:"column:student_code;size:10;not null;uniqueIndex:uq_students_tutor_code" json:"student_code"`
	StudentName string `gorm:"column:student_name;size:100;not null" json:"student_name"`

	StudentParentName  string  `gorm:"column:student_parent_name;size:50;not null" json:"student_parent_name"`
	StudentParentPhone string  `gorm:"column:student_parent_phone;size:20;not null" json:"student_parent_phone"`
	StudentParentEmail *string `gorm:"column:student_parent_email;size:255" json:"student_parent_email,omitempty"`

	StudentDateOfBirth time.Time `gorm:"column:student_date_of_birth;not null" json:"student_date_of_birth"`
	StudentClass       string    `gorm:"column:student_class;size:50;not null" json:"student_class"`
	StudentSchool      *string   `gorm:"column:student_school;size:100" json:"student_school,omitempty"`

	StudentEnrollmentDate time.Time `gorm:"column:student_enrollment_date;autoCreateTime" json:"student_enrollment_date"`
	StudentStatus         string    `gorm:"column:student_status;type:varchar(10);not null;default:'active'" json:"student_status"`

	StudentCreatedAt time.Time      `gorm:"column:student_created_at;autoCreateTime" json:"student_created_at"`
	StudentUpdatedAt time.Time      `gorm:"column:student_updated_at;autoUpdateTime" json:"student_updated_at"`
	StudentDeletedAt gorm.DeletedAt `gorm:"column:student_deleted_at;index" json:"-"`
}

func (StudentModel) TableName() string {
	return "students"
}
