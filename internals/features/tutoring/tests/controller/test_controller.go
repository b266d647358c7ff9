package controller

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bimbelku_backend/internals/apperr"
	batchModel "bimbelku_backend/internals/features/tutoring/batches/model"
	"bimbelku_backend/internals/features/tutoring/tests/dto"
	"bimbelku_backend/internals/features/tutoring/tests/model"
	"bimbelku_backend/internals/features/tutoring/tests/service"
	helpers "bimbelku_backend/internals/helpers"
)

type TestController struct {
	DB       *gorm.DB
	validate *validator.Validate
}

func NewTestController(db *gorm.DB) *TestController {
	return &TestController{DB: db, validate: validator.New()}
}

/* =========================
   Helpers
========================= */

func (tc *TestController) findOwnedTest(tutorID, testID uuid.UUID, withResults bool) (*model.TestModel, error) {
	q := tc.DB.Where("test_id = ? AND test_tutor_id = ?", testID, tutorID)
	if withResults {
		q = q.Preload("Results")
	}
	var test model.TestModel
	if err := q.First(&test).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Test tidak ditemukan")
		}
		return nil, err
	}
	return &test, nil
}

func (tc *TestController) resultCount(testID uuid.UUID) (int64, error) {
	var n int64
	err := tc.DB.Model(&model.TestResultModel{}).
		Where("test_result_test_id = ?", testID).
		Count(&n).Error
	return n, err
}

func (tc *TestController) rosterFor(batchID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := tc.DB.Model(&batchModel.BatchStudentModel{}).
		Where("batch_student_batch_id = ?", batchID).
		Pluck("batch_student_student_id", &ids).Error
	return ids, err
}

// gradingError menerjemahkan error pipeline ke taksonomi apperr
func gradingError(err error) error {
	var ime *service.InvalidMarksError
	if errors.As(err, &ime) {
		ids := make([]string, 0, len(ime.StudentIDs))
		for _, id := range ime.StudentIDs {
			ids = append(ids, id.String())
		}
		return apperr.Validation("Beberapa nilai di luar rentang",
			map[string][]string{"student_ids": ids})
	}
	var nee *service.NotEnrolledError
	if errors.As(err, &nee) {
		ids := make([]string, 0, len(nee.StudentIDs))
		for _, id := range nee.StudentIDs {
			ids = append(ids, id.String())
		}
		return apperr.Validation("Beberapa siswa tidak terdaftar di batch",
			map[string][]string{"student_ids": ids})
	}
	return err
}

/* =========================
   CRUD
========================= */

func (tc *TestController) CreateTest(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CreateTestRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := tc.validate.Struct(req); err != nil {
		return helpers.JsonValidationError(c, helpers.ValidatorErrors(err))
	}

	batchID, err := uuid.Parse(req.BatchID)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "batch_id tidak valid")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return helpers.JsonValidationError(c, map[string][]string{"date": {"format harus YYYY-MM-DD"}})
	}

	var batch batchModel.BatchModel
	if err := tc.DB.
		Where("batch_id = ? AND batch_tutor_id = ?", batchID, tutorID).
		First(&batch).Error; err != nil {
		return helpers.JsonAppError(c, apperr.NotFound("Batch tidak ditemukan"))
	}

	test := model.TestModel{
		TestTutorID:    tutorID,
		TestBatchID:    batch.BatchID,
		TestName:       req.Name,
		TestSubject:    req.Subject,
		TestDate:       date,
		TestTotalMarks: req.TotalMarks,
		TestStatus:     model.TestStatusScheduled,
	}
	if err := tc.DB.Create(&test).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat test")
	}

	return helpers.JsonCreated(c, "Test berhasil dibuat", dto.ToTestResponse(&test, false))
}

func (tc *TestController) GetTests(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	p := helpers.ResolvePaging(c, 20, 100)

	q := tc.DB.Model(&model.TestModel{}).Where("test_tutor_id = ?", tutorID)
	if s := c.Query("batch_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return helpers.JsonError(c, fiber.StatusBadRequest, "batch_id tidak valid")
		}
		q = q.Where("test_batch_id = ?", id)
	}
	if s := c.Query("status"); s != "" {
		q = q.Where("test_status = ?", s)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data test")
	}

	var tests []model.TestModel
	if err := q.Order("test_date DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&tests).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data test")
	}

	items := make([]dto.TestResponse, 0, len(tests))
	for i := range tests {
		items = append(items, dto.ToTestResponse(&tests[i], false))
	}
	return helpers.JsonList(c, "OK", items, helpers.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

func (tc *TestController) GetTestByID(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	testID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Test ID tidak valid")
	}

	test, err := tc.findOwnedTest(tutorID, testID, true)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}
	return helpers.JsonOK(c, "OK", dto.ToTestResponse(test, true))
}

func (tc *TestController) UpdateTest(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	testID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Test ID tidak valid")
	}

	var req dto.UpdateTestRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := tc.validate.Struct(req); err != nil {
		return helpers.JsonValidationError(c, helpers.ValidatorErrors(err))
	}

	test, err := tc.findOwnedTest(tutorID, testID, false)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}
	if test.IsPublished() {
		return helpers.JsonAppError(c, apperr.InvalidState("Test sudah dipublish dan tidak bisa diubah"))
	}

	// total marks terkunci begitu ada hasil (persentase lama jadi tak bermakna)
	if req.TotalMarks != nil {
		n, err := tc.resultCount(test.TestID)
		if err != nil {
			return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data hasil")
		}
		if n > 0 {
			return helpers.JsonAppError(c, apperr.InvalidState(
				"Total marks tidak bisa diubah setelah hasil diunggah"))
		}
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["test_name"] = *req.Name
	}
	if req.Subject != nil {
		updates["test_subject"] = *req.Subject
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return helpers.JsonValidationError(c, map[string][]string{"date": {"format harus YYYY-MM-DD"}})
		}
		updates["test_date"] = date
	}
	if req.TotalMarks != nil {
		updates["test_total_marks"] = *req.TotalMarks
	}
	if len(updates) == 0 {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Tidak ada field yang diubah")
	}

	if err := tc.DB.Model(&model.TestModel{}).
		Where("test_id = ?", test.TestID).
		Updates(updates).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal update test")
	}

	fresh, err := tc.findOwnedTest(tutorID, testID, false)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}
	return helpers.JsonUpdated(c, "Test berhasil diperbarui", dto.ToTestResponse(fresh, false))
}

func (tc *TestController) DeleteTest(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	testID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Test ID tidak valid")
	}

	test, err := tc.findOwnedTest(tutorID, testID, false)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}
	if test.IsPublished() {
		return helpers.JsonAppError(c, apperr.InvalidState("Test yang sudah dipublish tidak bisa dihapus"))
	}

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_result_test_id = ?", test.TestID).
			Delete(&model.TestResultModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.TestModel{}, "test_id = ?", test.TestID).Error
	})
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus test")
	}

	return helpers.JsonDeleted(c, "Test berhasil dihapus", nil)
}

/* =========================
   Upload marks & publish
========================= */

// UploadMarks menjalankan pipeline penilaian lalu MENGGANTI seluruh set
// hasil test — tidak pernah merge dengan hasil lama.
func (tc *TestController) UploadMarks(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	testID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Test ID tidak valid")
	}

	var req dto.UploadMarksRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := tc.validate.Struct(req); err != nil {
		return helpers.JsonValidationError(c, helpers.ValidatorErrors(err))
	}

	test, err := tc.findOwnedTest(tutorID, testID, false)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}
	if test.IsPublished() {
		return helpers.JsonAppError(c, apperr.InvalidState("Hasil test yang sudah dipublish tidak bisa diubah"))
	}

	raw := make([]service.RawResult, 0, len(req.Results))
	for _, r := range req.Results {
		sid, err := uuid.Parse(r.StudentID)
		if err != nil {
			return helpers.JsonError(c, fiber.StatusBadRequest, "student_id tidak valid: "+r.StudentID)
		}
		raw = append(raw, service.RawResult{StudentID: sid, Marks: r.Marks})
	}

	roster, err := tc.rosterFor(test.TestBatchID)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data roster")
	}

	graded, err := service.Grade(test.TestTotalMarks, roster, raw)
	if err != nil {
		return helpers.JsonAppError(c, gradingError(err))
	}

	rows := make([]model.TestResultModel, 0, len(graded))
	for _, g := range graded {
		rows = append(rows, model.TestResultModel{
			TestResultTestID:     test.TestID,
			TestResultStudentID:  g.StudentID,
			TestResultMarks:      g.Marks,
			TestResultPercentage: g.Percentage,
			TestResultGrade:      g.Grade,
			TestResultRank:       g.Rank,
		})
	}

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_result_test_id = ?", test.TestID).
			Delete(&model.TestResultModel{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		// ada hasil → test boleh dianggap selesai
		return tx.Model(&model.TestModel{}).
			Where("test_id = ?", test.TestID).
			Update("test_status", model.TestStatusCompleted).Error
	})
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan hasil test")
	}

	fresh, err := tc.findOwnedTest(tutorID, testID, true)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}
	return helpers.JsonUpdated(c, "Hasil test berhasil disimpan", dto.ToTestResponse(fresh, true))
}

// Publish: completed → published (terminal). Butuh hasil non-kosong.
func (tc *TestController) Publish(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	testID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Test ID tidak valid")
	}

	test, err := tc.findOwnedTest(tutorID, testID, false)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}
	if test.IsPublished() {
		return helpers.JsonAppError(c, apperr.InvalidState("Test sudah dipublish"))
	}

	n, err := tc.resultCount(test.TestID)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data hasil")
	}
	if n == 0 {
		return helpers.JsonAppError(c, apperr.InvalidState("Test belum memiliki hasil, tidak bisa dipublish"))
	}

	if err := tc.DB.Model(&model.TestModel{}).
		Where("test_id = ?", test.TestID).
		Update("test_status", model.TestStatusPublished).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal publish test")
	}

	fresh, err := tc.findOwnedTest(tutorID, testID, true)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}
	return helpers.JsonUpdated(c, "Test berhasil dipublish", dto.ToTestResponse(fresh, true))
}

/* =========================
   Analytics
========================= */

// BatchAnalytics: statistik kelas per test + overall grade per siswa.
// Statistik kelas dihitung dari MARKS MENTAH; overall grade dari rata-rata
// persentase — dua perhitungan yang sengaja dipisah.
func (tc *TestController) BatchAnalytics(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	batchID, err := uuid.Parse(c.Params("batch_id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Batch ID tidak valid")
	}

	var batch batchModel.BatchModel
	if err := tc.DB.
		Where("batch_id = ? AND batch_tutor_id = ?", batchID, tutorID).
		First(&batch).Error; err != nil {
		return helpers.JsonAppError(c, apperr.NotFound("Batch tidak ditemukan"))
	}

	var tests []model.TestModel
	if err := tc.DB.Preload("Results").
		Where("test_batch_id = ? AND test_status IN ?", batch.BatchID,
			[]string{model.TestStatusCompleted, model.TestStatusPublished}).
		Order("test_date ASC").
		Find(&tests).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data test")
	}

	type testStats struct {
		Test  dto.TestResponse   `json:"test"`
		Stats service.ClassStats `json:"stats"`
	}
	perTest := make([]testStats, 0, len(tests))
	perStudent := map[uuid.UUID][]int{}
	for i := range tests {
		t := &tests[i]
		marks := make([]int, 0, len(t.Results))
		for _, r := range t.Results {
			marks = append(marks, r.TestResultMarks)
			perStudent[r.TestResultStudentID] = append(perStudent[r.TestResultStudentID], r.TestResultPercentage)
		}
		perTest = append(perTest, testStats{
			Test:  dto.ToTestResponse(t, false),
			Stats: service.ClassStatistics(marks),
		})
	}

	type studentOverall struct {
		StudentID         uuid.UUID `json:"student_id"`
		TestsTaken        int       `json:"tests_taken"`
		AveragePercentage int       `json:"average_percentage"`
		OverallGrade      string    `json:"overall_grade"`
	}
	overall := make([]studentOverall, 0, len(perStudent))
	for sid, pcts := range perStudent {
		avg, grade := service.OverallGrade(pcts)
		overall = append(overall, studentOverall{
			StudentID:         sid,
			TestsTaken:        len(pcts),
			AveragePercentage: avg,
			OverallGrade:      grade,
		})
	}

	return helpers.JsonOK(c, "OK", fiber.Map{
		"per_test":    perTest,
		"per_student": overall,
	})
}

// StudentPerformance: hasil satu siswa lintas test + overall grade
func (tc *TestController) StudentPerformance(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	studentID, err := uuid.Parse(c.Params("student_id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Student ID tidak valid")
	}

	type performanceRow struct {
		TestID     uuid.UUID `gorm:"column:test_id" json:"test_id"`
		TestName   string    `gorm:"column:test_name" json:"test_name"`
		Subject    string    `gorm:"column:test_subject" json:"subject"`
		Date       time.Time `gorm:"column:test_date" json:"date"`
		Marks      int       `gorm:"column:test_result_marks" json:"marks"`
		TotalMarks int       `gorm:"column:test_total_marks" json:"total_marks"`
		Percentage int       `gorm:"column:test_result_percentage" json:"percentage"`
		Grade      string    `gorm:"column:test_result_grade" json:"grade"`
		Rank       int       `gorm:"column:test_result_rank" json:"rank"`
	}
	var rows []performanceRow
	err = tc.DB.Table("test_results").
		Select(`test_id, test_name, test_subject, test_date, test_total_marks,
			test_result_marks, test_result_percentage, test_result_grade, test_result_rank`).
		Joins("JOIN tests ON test_id = test_result_test_id").
		Where("test_result_student_id = ? AND test_tutor_id = ? AND test_deleted_at IS NULL", studentID, tutorID).
		Order("test_date DESC").
		Scan(&rows).Error
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data hasil")
	}

	pcts := make([]int, 0, len(rows))
	for _, r := range rows {
		pcts = append(pcts, r.Percentage)
	}
	avg, grade := service.OverallGrade(pcts)

	return helpers.JsonOK(c, "OK", fiber.Map{
		"results":            rows,
		"tests_taken":        len(rows),
		"average_percentage": avg,
		"overall_grade":      grade,
	})
}
