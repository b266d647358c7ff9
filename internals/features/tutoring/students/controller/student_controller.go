package controller

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bimbelku_backend/internals/apperr"
	batchDTO "bimbelku_backend/internals/features/tutoring/batches/dto"
	batchModel "bimbelku_backend/internals/features/tutoring/batches/model"
	"bimbelku_backend/internals/features/tutoring/students/dto"
	"bimbelku_backend/internals/features/tutoring/students/model"
	"bimbelku_backend/internals/features/tutoring/students/service"
	helpers "bimbelku_backend/internals/helpers"
)

type StudentController struct {
	DB       *gorm.DB
	validate *validator.Validate
}

func NewStudentController(db *gorm.DB) *StudentController {
	return &StudentController{DB: db, validate: validator.New()}
}

func (sc *StudentController) findOwnedStudent(tutorID, studentID uuid.UUID) (*model.StudentModel, error) {
	var student model.StudentModel
	err := sc.DB.
		Where("student_id = ? AND student_tutor_id = ?", studentID, tutorID).
		First(&student).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Siswa tidak ditemukan")
		}
		return nil, err
	}
	return &student, nil
}

/* =========================
   CRUD (tutor)
========================= */

func (sc *StudentController) CreateStudent(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := sc.validate.Struct(req); err != nil {
		return helpers.JsonValidationError(c, helpers.ValidatorErrors(err))
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return helpers.JsonValidationError(c, map[string][]string{
			"date_of_birth": {"format harus YYYY-MM-DD"},
		})
	}

	student := model.StudentModel{
		StudentTutorID:     tutorID,
		StudentName:        req.Name,
		StudentParentName:  req.ParentName,
		StudentParentPhone: req.ParentPhone,
		StudentDateOfBirth: dob,
		StudentClass:       req.Class,
		StudentStatus:      model.StudentStatusActive,
	}
	if e := strings.TrimSpace(req.ParentEmail); e != "" {
		student.StudentParentEmail = &e
	}
	if s := strings.TrimSpace(req.School); s != "" {
		student.StudentSchool = &s
	}
	if req.UserID != nil {
		uid, err := uuid.Parse(*req.UserID)
		if err != nil {
			return helpers.JsonError(c, fiber.StatusBadRequest, "user_id tidak valid")
		}
		student.StudentUserID = &uid
	}

	// kode siswa lanjut dari kode tertinggi milik tutor ini, termasuk baris
	// soft-delete (Unscoped) supaya kode bekas tidak dipakai ulang. Balapan
	// antar request satu tutor diserahkan ke unique index, lalu coba ulang.
	for attempt := 0; attempt < 3; attempt++ {
		err = sc.DB.Transaction(func(tx *gorm.DB) error {
			var lastCodes []string
			if err := tx.Unscoped().Model(&model.StudentModel{}).
				Where("student_tutor_id = ?", tutorID).
				Order("LENGTH(student_code) DESC, student_code DESC").
				Limit(1).
				Pluck("student_code", &lastCodes).Error; err != nil {
				return err
			}
			last := ""
			if len(lastCodes) > 0 {
				last = lastCodes[0]
			}
			student.StudentCode = service.NextStudentCode(last)
			return tx.Create(&student).Error
		})
		if !helpers.IsUniqueViolationOn(err, "uq_students_tutor_code") {
			break
		}
	}
	if err != nil {
		if helpers.IsUniqueViolation(err) {
			// sisa kemungkinan: student_user_id sudah dipakai siswa lain
			return helpers.JsonError(c, fiber.StatusConflict, "Siswa dengan akun tersebut sudah terdaftar")
		}
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat data siswa")
	}

	return helpers.JsonCreated(c, "Siswa berhasil didaftarkan", dto.ToStudentResponse(&student))
}

func (sc *StudentController) GetStudents(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	p := helpers.ResolvePaging(c, 20, 100)

	q := sc.DB.Model(&model.StudentModel{}).Where("student_tutor_id = ?", tutorID)
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		q = q.Where("student_status = ?", status)
	}
	if class := strings.TrimSpace(c.Query("class")); class != "" {
		q = q.Where("student_class = ?", class)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q = q.Where("student_name ILIKE ? OR student_code ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data siswa")
	}

	var students []model.StudentModel
	if err := q.
		Order("student_created_at ASC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&students).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data siswa")
	}

	items := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		items = append(items, dto.ToStudentResponse(&students[i]))
	}

	return helpers.JsonList(c, "OK", items, helpers.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

func (sc *StudentController) GetStudentByID(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	studentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Student ID tidak valid")
	}

	student, err := sc.findOwnedStudent(tutorID, studentID)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}

	batches, err := sc.enrolledBatches(student.StudentID)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data batch")
	}

	return helpers.JsonOK(c, "OK", fiber.Map{
		"student": dto.ToStudentResponse(student),
		"batches": batches,
	})
}

func (sc *StudentController) UpdateStudent(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	studentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Student ID tidak valid")
	}

	var req dto.UpdateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := sc.validate.Struct(req); err != nil {
		return helpers.JsonValidationError(c, helpers.ValidatorErrors(err))
	}

	student, err := sc.findOwnedStudent(tutorID, studentID)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["student_name"] = *req.Name
	}
	if req.ParentName != nil {
		updates["student_parent_name"] = *req.ParentName
	}
	if req.ParentPhone != nil {
		updates["student_parent_phone"] = *req.ParentPhone
	}
	if req.ParentEmail != nil {
		updates["student_parent_email"] = *req.ParentEmail
	}
	if req.Class != nil {
		updates["student_class"] = *req.Class
	}
	if req.School != nil {
		updates["student_school"] = *req.School
	}
	if req.Status != nil {
		updates["student_status"] = *req.Status
	}
	if len(updates) == 0 {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Tidak ada field yang diubah")
	}

	if err := sc.DB.Model(&model.StudentModel{}).
		Where("student_id = ?", student.StudentID).
		Updates(updates).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal update data siswa")
	}

	fresh, err := sc.findOwnedStudent(tutorID, studentID)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}

	return helpers.JsonUpdated(c, "Data siswa berhasil diperbarui", dto.ToStudentResponse(fresh))
}

func (sc *StudentController) DeleteStudent(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	studentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Student ID tidak valid")
	}

	student, err := sc.findOwnedStudent(tutorID, studentID)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}

	err = sc.DB.Transaction(func(tx *gorm.DB) error {
		// keluarkan dari semua roster dulu
		if err := tx.
			Where("batch_student_student_id = ?", student.StudentID).
			Delete(&batchModel.BatchStudentModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.StudentModel{}, "student_id = ?", student.StudentID).Error
	})
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus data siswa")
	}

	return helpers.JsonDeleted(c, "Data siswa berhasil dihapus", nil)
}

/* =========================
   Enrollment (roster)
========================= */

func (sc *StudentController) EnrollStudent(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	studentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Student ID tidak valid")
	}

	var req dto.EnrollRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := sc.validate.Struct(req); err != nil {
		return helpers.JsonValidationError(c, helpers.ValidatorErrors(err))
	}
	batchID, err := uuid.Parse(req.BatchID)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "batch_id tidak valid")
	}

	student, err := sc.findOwnedStudent(tutorID, studentID)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}

	var batch batchModel.BatchModel
	if err := sc.DB.
		Where("batch_id = ? AND batch_tutor_id = ?", batchID, tutorID).
		First(&batch).Error; err != nil {
		return helpers.JsonAppError(c, apperr.NotFound("Batch tidak ditemukan"))
	}
	if !batch.IsActive() {
		return helpers.JsonAppError(c, apperr.InvalidState("Batch sudah non-aktif"))
	}

	err = sc.DB.Transaction(func(tx *gorm.DB) error {
		var enrolled int64
		if err := tx.Model(&batchModel.BatchStudentModel{}).
			Where("batch_student_batch_id = ?", batch.BatchID).
			Count(&enrolled).Error; err != nil {
			return err
		}
		if int(enrolled) >= batch.BatchCapacity {
			return apperr.Conflict("Batch sudah penuh", batchDTO.ToBatchResponse(&batch, int(enrolled)))
		}
		return tx.Create(&batchModel.BatchStudentModel{
			BatchStudentBatchID:   batch.BatchID,
			BatchStudentStudentID: student.StudentID,
		}).Error
	})
	if err != nil {
		if helpers.IsUniqueViolation(err) {
			return helpers.JsonError(c, fiber.StatusConflict, "Siswa sudah terdaftar di batch ini")
		}
		if _, ok := apperr.AsError(err); ok {
			return helpers.JsonAppError(c, err)
		}
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mendaftarkan siswa ke batch")
	}

	return helpers.JsonCreated(c, "Siswa berhasil didaftarkan ke batch", nil)
}

func (sc *StudentController) RemoveFromBatch(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	studentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Student ID tidak valid")
	}
	batchID, err := uuid.Parse(c.Params("batch_id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Batch ID tidak valid")
	}

	student, err := sc.findOwnedStudent(tutorID, studentID)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}
	var batch batchModel.BatchModel
	if err := sc.DB.
		Where("batch_id = ? AND batch_tutor_id = ?", batchID, tutorID).
		First(&batch).Error; err != nil {
		return helpers.JsonAppError(c, apperr.NotFound("Batch tidak ditemukan"))
	}

	res := sc.DB.
		Where("batch_student_batch_id = ? AND batch_student_student_id = ?", batch.BatchID, student.StudentID).
		Delete(&batchModel.BatchStudentModel{})
	if res.Error != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengeluarkan siswa")
	}
	if res.RowsAffected == 0 {
		return helpers.JsonAppError(c, apperr.NotFound("Siswa tidak terdaftar di batch ini"))
	}

	return helpers.JsonDeleted(c, "Siswa berhasil dikeluarkan dari batch", nil)
}

func (sc *StudentController) enrolledBatches(studentID uuid.UUID) ([]batchDTO.BatchResponse, error) {
	var batches []batchModel.BatchModel
	err := sc.DB.Model(&batchModel.BatchModel{}).
		Joins("JOIN batch_students ON batch_student_batch_id = batch_id").
		Where("batch_student_student_id = ?", studentID).
		Order("batch_created_at ASC").
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	out := make([]batchDTO.BatchResponse, 0, len(batches))
	for i := range batches {
		out = append(out, batchDTO.ToBatchResponse(&batches[i], 0))
	}
	return out, nil
}
