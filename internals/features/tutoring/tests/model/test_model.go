package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TestStatusScheduled = "scheduled"
	TestStatusCompleted = "completed"
	TestStatusPublished = "published"
)

// TestModel merepresentasikan tabel tests: satu ujian milik satu batch.
// Lifecycle: scheduled → completed (butuh hasil) → published (terminal;
// setelah publish, total marks dan batch tidak boleh berubah, dan test
// tidak boleh dihapus).
type TestModel struct {
	TestID      uuid.UUID `gorm:"column:test_id;type:uuid;default:gen_random_uuid();primaryKey" json:"test_id"`
	TestTutorID uuid.UUID `gorm:"column:test_tutor_id;type:uuid;not null;index" json:"test_tutor_id"`
	TestBatchID uuid.UUID `gorm:"column:test_batch_id;type:uuid;not null;index" json:"test_batch_id"`

	TestName       string    `gorm:"column:test_name;size:100;not null" json:"test_name"`
	TestSubject    string    `gorm:"column:test_subject;size:100;not null" json:"test_subject"`
	TestDate       time.Time `gorm:"column:test_date;type:date;not null" json:"test_date"`
	TestTotalMarks int       `gorm:"column:test_total_marks;not null" json:"test_total_marks"`

	TestStatus string `gorm:"column:test_status;type:varchar(10);not null;default:'scheduled'" json:"test_status"`

	TestCreatedAt time.Time      `gorm:"column:test_created_at;autoCreateTime" json:"test_created_at"`
	TestUpdatedAt time.Time      `gorm:"column:test_updated_at;autoUpdateTime" json:"test_updated_at"`
	TestDeletedAt gorm.DeletedAt `gorm:"column:test_deleted_at;index" json:"-"`

	Results []TestResultModel `gorm:"foreignKey:TestResultTestID;references:TestID" json:"results,omitempty"`
}

func (TestModel) TableName() string {
	return "tests"
}

func (t *TestModel) IsPublished() bool {
	return t.TestStatus == TestStatusPublished
}

// TestResultModel: satu baris nilai per siswa. Percentage, grade, dan rank
// adalah hasil turunan pipeline penilaian yang disimpan saat upload —
// bukan dihitung diam-diam oleh layer persistence.
type TestResultModel struct {
	TestResultID        uuid.UUID `gorm:"column:test_result_id;type:uuid;default:gen_random_uuid();primaryKey" json:"test_result_id"`
	TestResultTestID    uuid.UUID `gorm:"column:test_result_test_id;type:uuid;not null;uniqueIndex:uq_test_results_test_student" json:"test_result_test_id"`
	TestResultStudentID uuid.UUID `gorm:"column:test_result_student_id;type:uuid;not null;uniqueIndex:uq_test_results_test_student;index" json:"test_result_student_id"`

	TestResultMarks      int    `gorm:"column:test_result_marks;not null" json:"test_result_marks"`
	TestResultPercentage int    `gorm:"column:test_result_percentage;not null" json:"test_result_percentage"`
	TestResultGrade      string `gorm:"column:test_result_grade;type:varchar(2);not null" json:"test_result_grade"`
	TestResultRank       int    `gorm:"column:test_result_rank;not null" json:"test_result_rank"`

	TestResultCreatedAt time.Time `gorm:"column:test_result_created_at;autoCreateTime" json:"test_result_created_at"`
	TestResultUpdatedAt time.Time `gorm:"column:test_result_updated_at;autoUpdateTime" json:"test_result_updated_at"`
}

func (TestResultModel) TableName() string {
	return "test_results"
}
