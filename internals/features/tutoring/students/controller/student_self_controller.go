package controller

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"bimbelku_backend/internals/apperr"
	attendanceService "bimbelku_backend/internals/features/tutoring/attendance/service"
	batchDTO "bimbelku_backend/internals/features/tutoring/batches/dto"
	batchModel "bimbelku_backend/internals/features/tutoring/batches/model"
	"bimbelku_backend/internals/features/tutoring/students/dto"
	"bimbelku_backend/internals/features/tutoring/students/model"
	helpers "bimbelku_backend/internals/helpers"
)

// StudentSelfController melayani siswa yang login dengan akunnya sendiri.
// Resolusi selalu lewat student_user_id, tidak pernah menerima student_id
// dari request — siswa tidak bisa melihat data siswa lain.
type StudentSelfController struct {
	DB *gorm.DB
}

func NewStudentSelfController(db *gorm.DB) *StudentSelfController {
	return &StudentSelfController{DB: db}
}

func (sc *StudentSelfController) resolveStudent(c *fiber.Ctx) (*model.StudentModel, error) {
	userID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return nil, err
	}
	var student model.StudentModel
	if err := sc.DB.Where("student_user_id = ?", userID).First(&student).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Data siswa untuk akun ini tidak ditemukan")
		}
		return nil, err
	}
	return &student, nil
}

func (sc *StudentSelfController) MyProfile(c *fiber.Ctx) error {
	student, err := sc.resolveStudent(c)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}
	return helpers.JsonOK(c, "OK", dto.ToStudentResponse(student))
}

func (sc *StudentSelfController) MySchedule(c *fiber.Ctx) error {
	student, err := sc.resolveStudent(c)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}

	var batches []batchModel.BatchModel
	if err := sc.DB.Model(&batchModel.BatchModel{}).
		Joins("JOIN batch_students ON batch_student_batch_id = batch_id").
		Where("batch_student_student_id = ? AND batch_status = ?", student.StudentID, batchModel.BatchStatusActive).
		Order("batch_start_time ASC").
		Find(&batches).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil jadwal")
	}

	items := make([]batchDTO.BatchResponse, 0, len(batches))
	for i := range batches {
		items = append(items, batchDTO.ToBatchResponse(&batches[i], 0))
	}
	return helpers.JsonOK(c, "OK", items)
}

// MyStats: ringkasan kehadiran si siswa di semua batch-nya
func (sc *StudentSelfController) MyStats(c *fiber.Ctx) error {
	student, err := sc.resolveStudent(c)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}

	var counts struct {
		Total   int `gorm:"column:total"`
		Present int `gorm:"column:present"`
		Absent  int `gorm:"column:absent"`
		Late    int `gorm:"column:late"`
	}
	err = sc.DB.Table("attendance_records").
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE attendance_record_status = 'present') AS present,
			COUNT(*) FILTER (WHERE attendance_record_status = 'absent') AS absent,
			COUNT(*) FILTER (WHERE attendance_record_status = 'late') AS late`).
		Joins("JOIN attendance_days ON attendance_day_id = attendance_record_day_id").
		Where("attendance_record_student_id = ? AND attendance_day_deleted_at IS NULL", student.StudentID).
		Scan(&counts).Error
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil statistik kehadiran")
	}

	var testsTaken int64
	_ = sc.DB.Table("test_results").
		Where("test_result_student_id = ?", student.StudentID).
		Count(&testsTaken).Error

	return helpers.JsonOK(c, "OK", fiber.Map{
		"attendance": fiber.Map{
			"total_sessions": counts.Total,
			"present":        counts.Present,
			"absent":         counts.Absent,
			"late":           counts.Late,
			"percentage":     attendanceService.Percentage(counts.Present, counts.Total),
		},
		"tests_taken": testsTaken,
	})
}
