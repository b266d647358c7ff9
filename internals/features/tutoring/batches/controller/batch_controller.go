package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"bimbelku_backend/internals/apperr"
	"bimbelku_backend/internals/features/tutoring/batches/dto"
	"bimbelku_backend/internals/features/tutoring/batches/model"
	"bimbelku_backend/internals/features/tutoring/batches/service"
	helpers "bimbelku_backend/internals/helpers"
)

type BatchController struct {
	DB       *gorm.DB
	validate *validator.Validate
}

func NewBatchController(db *gorm.DB) *BatchController {
	return &BatchController{DB: db, validate: validator.New()}
}

/* =========================
   Helpers
========================= */

func (bc *BatchController) tutorBatches(tutorID uuid.UUID) *gorm.DB {
	// setiap query di-scope ke tutor pemilik: batas multi-tenant, bukan optimasi
	return bc.DB.Model(&model.BatchModel{}).Where("batch_tutor_id = ?", tutorID)
}

func (bc *BatchController) findOwnedBatch(tutorID, batchID uuid.UUID) (*model.BatchModel, error) {
	var batch model.BatchModel
	err := bc.DB.
		Where("batch_id = ? AND batch_tutor_id = ?", batchID, tutorID).
		First(&batch).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Batch tidak ditemukan")
		}
		return nil, err
	}
	return &batch, nil
}

func (bc *BatchController) enrollmentCount(batchID uuid.UUID) (int, error) {
	var n int64
	err := bc.DB.Model(&model.BatchStudentModel{}).
		Where("batch_student_batch_id = ?", batchID).
		Count(&n).Error
	return int(n), err
}

// enrollmentCounts mengambil jumlah roster banyak batch sekaligus (hindari N+1)
func (bc *BatchController) enrollmentCounts(batchIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int, len(batchIDs))
	if len(batchIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		BatchID uuid.UUID `gorm:"column:batch_student_batch_id"`
		Total   int       `gorm:"column:total"`
	}
	err := bc.DB.Model(&model.BatchStudentModel{}).
		Select("batch_student_batch_id, COUNT(*) AS total").
		Where("batch_student_batch_id IN ?", batchIDs).
		Group("batch_student_batch_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.BatchID] = r.Total
	}
	return out, nil
}

func (bc *BatchController) conflictCheck(tutorID uuid.UUID, cand service.WeeklySchedule, excludeID *uuid.UUID) error {
	var existing []model.BatchModel
	if err := bc.tutorBatches(tutorID).
		Where("batch_status = ?", model.BatchStatusActive).
		Order("batch_created_at ASC").
		Find(&existing).Error; err != nil {
		return err
	}
	hit, err := service.FindConflict(existing, cand, excludeID)
	if err != nil {
		return apperr.New(apperr.KindValidation, err.Error())
	}
	if hit != nil {
		return apperr.Conflict("Jadwal bentrok dengan batch lain", dto.ToBatchResponse(hit, 0))
	}
	return nil
}

/* =========================
   CRUD
========================= */

func (bc *BatchController) CreateBatch(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CreateBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := bc.validate.Struct(req); err != nil {
		return helpers.JsonValidationError(c, helpers.ValidatorErrors(err))
	}

	cand := service.WeeklySchedule{Days: req.Days, StartTime: req.StartTime, EndTime: req.EndTime}
	if err := bc.conflictCheck(tutorID, cand, nil); err != nil {
		return helpers.JsonAppError(c, err)
	}

	batch := model.BatchModel{
		BatchTutorID:         tutorID,
		BatchName:            req.Name,
		BatchSubject:         req.Subject,
		BatchDays:            pq.StringArray(req.Days),
		BatchStartTime:       req.StartTime,
		BatchEndTime:         req.EndTime,
		BatchDuration:        req.Duration,
		BatchCapacity:        req.Capacity,
		BatchMonthlyFee:      req.MonthlyFee,
		BatchRegistrationFee: req.RegistrationFee,
		BatchCurrency:        "IDR",
		BatchStatus:          model.BatchStatusActive,
	}
	if d := strings.TrimSpace(req.Description); d != "" {
		batch.BatchDescription = &d
	}
	if req.Currency != "" {
		batch.BatchCurrency = req.Currency
	}

	if err := bc.DB.Create(&batch).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat batch")
	}

	return helpers.JsonCreated(c, "Batch berhasil dibuat", dto.ToBatchResponse(&batch, 0))
}

func (bc *BatchController) GetBatches(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	p := helpers.ResolvePaging(c, 20, 100)

	q := bc.tutorBatches(tutorID)
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		q = q.Where("batch_status = ?", status)
	}
	if subject := strings.TrimSpace(c.Query("subject")); subject != "" {
		q = q.Where("batch_subject ILIKE ?", "%"+subject+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data batch")
	}

	var batches []model.BatchModel
	if err := q.
		Order("batch_created_at ASC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&batches).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data batch")
	}

	ids := make([]uuid.UUID, 0, len(batches))
	for i := range batches {
		ids = append(ids, batches[i].BatchID)
	}
	counts, err := bc.enrollmentCounts(ids)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data roster")
	}

	items := make([]dto.BatchResponse, 0, len(batches))
	for i := range batches {
		items = append(items, dto.ToBatchResponse(&batches[i], counts[batches[i].BatchID]))
	}

	return helpers.JsonList(c, "OK", items, helpers.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

func (bc *BatchController) GetBatchByID(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	batchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Batch ID tidak valid")
	}

	batch, err := bc.findOwnedBatch(tutorID, batchID)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}
	enrolled, err := bc.enrollmentCount(batch.BatchID)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data roster")
	}

	return helpers.JsonOK(c, "OK", dto.ToBatchResponse(batch, enrolled))
}

func (bc *BatchController) UpdateBatch(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	batchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Batch ID tidak valid")
	}

	var req dto.UpdateBatchRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := bc.validate.Struct(req); err != nil {
		return helpers.JsonValidationError(c, helpers.ValidatorErrors(err))
	}

	batch, err := bc.findOwnedBatch(tutorID, batchID)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}

	// jadwal baru harus dicek bentrok terhadap batch aktif lain (self excluded)
	if req.TouchesSchedule() {
		cand := service.WeeklySchedule{
			Days:      batch.BatchDays,
			StartTime: batch.BatchStartTime,
			EndTime:   batch.BatchEndTime,
		}
		if req.Days != nil {
			cand.Days = *req.Days
		}
		if req.StartTime != nil {
			cand.StartTime = *req.StartTime
		}
		if req.EndTime != nil {
			cand.EndTime = *req.EndTime
		}
		if err := bc.conflictCheck(tutorID, cand, &batch.BatchID); err != nil {
			return helpers.JsonAppError(c, err)
		}
	}

	// kapasitas baru tidak boleh lebih kecil dari roster yang sudah terdaftar
	if req.Capacity != nil {
		enrolled, err := bc.enrollmentCount(batch.BatchID)
		if err != nil {
			return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data roster")
		}
		if *req.Capacity < enrolled {
			return helpers.JsonAppError(c, apperr.Newf(apperr.KindInvalidState,
				"Kapasitas %d lebih kecil dari jumlah siswa terdaftar (%d)", *req.Capacity, enrolled))
		}
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["batch_name"] = *req.Name
	}
	if req.Subject != nil {
		updates["batch_subject"] = *req.Subject
	}
	if req.Description != nil {
		updates["batch_description"] = *req.Description
	}
	if req.Days != nil {
		updates["batch_days"] = pq.StringArray(*req.Days)
	}
	if req.StartTime != nil {
		updates["batch_start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		updates["batch_end_time"] = *req.EndTime
	}
	if req.Duration != nil {
		updates["batch_duration_minutes"] = *req.Duration
	}
	if req.Capacity != nil {
		updates["batch_capacity"] = *req.Capacity
	}
	if req.MonthlyFee != nil {
		updates["batch_monthly_fee"] = *req.MonthlyFee
	}
	if req.RegistrationFee != nil {
		updates["batch_registration_fee"] = *req.RegistrationFee
	}
	if req.Status != nil {
		updates["batch_status"] = *req.Status
	}
	if len(updates) == 0 {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Tidak ada field yang diubah")
	}

	if err := bc.DB.Model(&model.BatchModel{}).
		Where("batch_id = ?", batch.BatchID).
		Updates(updates).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal update batch")
	}

	fresh, err := bc.findOwnedBatch(tutorID, batchID)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}
	enrolled, _ := bc.enrollmentCount(fresh.BatchID)

	return helpers.JsonUpdated(c, "Batch berhasil diperbarui", dto.ToBatchResponse(fresh, enrolled))
}

func (bc *BatchController) DeleteBatch(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	batchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Batch ID tidak valid")
	}

	batch, err := bc.findOwnedBatch(tutorID, batchID)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}

	enrolled, err := bc.enrollmentCount(batch.BatchID)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data roster")
	}
	if enrolled > 0 {
		return helpers.JsonAppError(c, apperr.Newf(apperr.KindInvalidState,
			"Batch masih memiliki %d siswa terdaftar. Keluarkan semua siswa dulu.", enrolled))
	}

	if err := bc.DB.Delete(&model.BatchModel{}, "batch_id = ?", batch.BatchID).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal menghapus batch")
	}

	return helpers.JsonDeleted(c, "Batch berhasil dihapus", nil)
}

/* =========================
   Schedule overview & analytics
========================= */

// ScheduleOverview mengelompokkan batch aktif per hari (urutan Senin..Minggu)
func (bc *BatchController) ScheduleOverview(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var batches []model.BatchModel
	if err := bc.tutorBatches(tutorID).
		Where("batch_status = ?", model.BatchStatusActive).
		Order("batch_start_time ASC").
		Find(&batches).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil jadwal")
	}

	type slot struct {
		BatchID   uuid.UUID `json:"batch_id"`
		Name      string    `json:"name"`
		Subject   string    `json:"subject"`
		StartTime string    `json:"start_time"`
		EndTime   string    `json:"end_time"`
	}
	overview := make(map[string][]slot, len(model.ValidDays))
	for _, day := range model.ValidDays {
		overview[day] = []slot{}
	}
	for i := range batches {
		b := &batches[i]
		for _, day := range b.BatchDays {
			overview[day] = append(overview[day], slot{
				BatchID:   b.BatchID,
				Name:      b.BatchName,
				Subject:   b.BatchSubject,
				StartTime: b.BatchStartTime,
				EndTime:   b.BatchEndTime,
			})
		}
	}

	return helpers.JsonOK(c, "OK", overview)
}

// BatchAnalytics: utilisasi kapasitas + ringkasan kehadiran per batch
func (bc *BatchController) BatchAnalytics(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	batchID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Batch ID tidak valid")
	}

	batch, err := bc.findOwnedBatch(tutorID, batchID)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}
	enrolled, err := bc.enrollmentCount(batch.BatchID)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data roster")
	}

	utilization := 0
	if batch.BatchCapacity > 0 {
		utilization = enrolled * 100 / batch.BatchCapacity
	}

	var attendanceDays int64
	_ = bc.DB.Table("attendance_days").
		Where("attendance_day_batch_id = ? AND attendance_day_deleted_at IS NULL", batch.BatchID).
		Count(&attendanceDays).Error

	var testCount int64
	_ = bc.DB.Table("tests").
		Where("test_batch_id = ? AND test_deleted_at IS NULL", batch.BatchID).
		Count(&testCount).Error

	return helpers.JsonOK(c, "OK", fiber.Map{
		"batch":               dto.ToBatchResponse(batch, enrolled),
		"utilization_percent": utilization,
		"attendance_days":     attendanceDays,
		"tests_held":          testCount,
	})
}
