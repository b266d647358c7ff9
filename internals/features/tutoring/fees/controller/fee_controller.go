package controller

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bimbelku_backend/internals/apperr"
	"bimbelku_backend/internals/configs"
	batchModel "bimbelku_backend/internals/features/tutoring/batches/model"
	"bimbelku_backend/internals/features/tutoring/fees/dto"
	"bimbelku_backend/internals/features/tutoring/fees/model"
	"bimbelku_backend/internals/features/tutoring/fees/service"
	studentModel "bimbelku_backend/internals/features/tutoring/students/model"
	helpers "bimbelku_backend/internals/helpers"
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

type FeeController struct {
	DB       *gorm.DB
	validate *validator.Validate
}

func NewFeeController(db *gorm.DB) *FeeController {
	return &FeeController{DB: db, validate: validator.New()}
}

/* =========================
   Helpers
========================= */

func (fc *FeeController) findOwnedFee(tutorID, feeID uuid.UUID) (*model.FeeModel, error) {
	var fee model.FeeModel
	err := fc.DB.
		Where("fee_id = ? AND fee_tutor_id = ?", feeID, tutorID).
		First(&fee).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Fee tidak ditemukan")
		}
		return nil, err
	}
	return &fee, nil
}

// reconcileAndPersist menjalankan transisi pending→overdue lalu menyimpan
// perubahan status — titik eksplisit, bukan hook save.
func (fc *FeeController) reconcileAndPersist(fees []model.FeeModel, now time.Time) error {
	for i := range fees {
		if service.ReconcileStatus(&fees[i], now) {
			if err := fc.DB.Model(&model.FeeModel{}).
				Where("fee_id = ?", fees[i].FeeID).
				Update("fee_status", fees[i].FeeStatus).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

/* =========================
   Create
========================= */

func (fc *FeeController) CreateFee(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.CreateFeeRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := fc.validate.Struct(req); err != nil {
		return helpers.JsonValidationError(c, helpers.ValidatorErrors(err))
	}

	feeType := req.FeeType
	if feeType == "" {
		feeType = model.FeeTypeMonthly
	}
	if feeType == model.FeeTypeMonthly && !monthPattern.MatchString(req.Month) {
		return helpers.JsonValidationError(c, map[string][]string{
			"month": {"wajib diisi untuk fee bulanan, format YYYY-MM"},
		})
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return helpers.JsonValidationError(c, map[string][]string{"due_date": {"format harus YYYY-MM-DD"}})
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "student_id tidak valid")
	}
	batchID, err := uuid.Parse(req.BatchID)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "batch_id tidak valid")
	}

	// siswa dan batch harus milik tutor yang sama
	var student studentModel.StudentModel
	if err := fc.DB.
		Where("student_id = ? AND student_tutor_id = ?", studentID, tutorID).
		First(&student).Error; err != nil {
		return helpers.JsonAppError(c, apperr.NotFound("Siswa tidak ditemukan"))
	}
	var batch batchModel.BatchModel
	if err := fc.DB.
		Where("batch_id = ? AND batch_tutor_id = ?", batchID, tutorID).
		First(&batch).Error; err != nil {
		return helpers.JsonAppError(c, apperr.NotFound("Batch tidak ditemukan"))
	}

	fee := model.FeeModel{
		FeeTutorID:   tutorID,
		FeeStudentID: student.StudentID,
		FeeBatchID:   batch.BatchID,
		FeeAmount:    req.Amount,
		FeeType:      feeType,
		FeeDueDate:   dueDate,
		FeeStatus:    model.FeeStatusPending,
	}
	if feeType == model.FeeTypeMonthly {
		m := req.Month
		fee.FeeMonth = &m
	}
	if r := strings.TrimSpace(req.Remarks); r != "" {
		fee.FeeRemarks = &r
	}

	if err := fc.DB.Create(&fee).Error; err != nil {
		if helpers.IsUniqueViolation(err) {
			// partial unique index (student, batch, month, monthly) yang menolak
			return helpers.JsonError(c, fiber.StatusConflict, "Fee bulanan untuk siswa/batch/bulan tersebut sudah ada")
		}
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal membuat fee")
	}

	now := time.Now().UTC()
	_ = fc.reconcileAndPersist([]model.FeeModel{fee}, now)

	return helpers.JsonCreated(c, "Fee berhasil dibuat", dto.ToFeeResponse(&fee, service.DaysOverdue(&fee, now)))
}

// GenerateMonthlyFees membuat fee bulanan untuk seluruh roster satu batch.
// Siswa yang sudah punya fee bulan itu dilewati (ON CONFLICT DO NOTHING).
func (fc *FeeController) GenerateMonthlyFees(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.GenerateMonthlyRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := fc.validate.Struct(req); err != nil {
		return helpers.JsonValidationError(c, helpers.ValidatorErrors(err))
	}
	if !monthPattern.MatchString(req.Month) {
		return helpers.JsonValidationError(c, map[string][]string{"month": {"format harus YYYY-MM"}})
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		return helpers.JsonValidationError(c, map[string][]string{"due_date": {"format harus YYYY-MM-DD"}})
	}
	batchID, err := uuid.Parse(req.BatchID)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "batch_id tidak valid")
	}

	var batch batchModel.BatchModel
	if err := fc.DB.
		Where("batch_id = ? AND batch_tutor_id = ?", batchID, tutorID).
		First(&batch).Error; err != nil {
		return helpers.JsonAppError(c, apperr.NotFound("Batch tidak ditemukan"))
	}

	var rosterIDs []uuid.UUID
	if err := fc.DB.Model(&batchModel.BatchStudentModel{}).
		Where("batch_student_batch_id = ?", batch.BatchID).
		Pluck("batch_student_student_id", &rosterIDs).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data roster")
	}
	if len(rosterIDs) == 0 {
		return helpers.JsonAppError(c, apperr.InvalidState("Batch belum memiliki siswa"))
	}

	month := req.Month
	fees := make([]model.FeeModel, 0, len(rosterIDs))
	for _, sid := range rosterIDs {
		fees = append(fees, model.FeeModel{
			FeeTutorID:   tutorID,
			FeeStudentID: sid,
			FeeBatchID:   batch.BatchID,
			FeeAmount:    batch.BatchMonthlyFee,
			FeeType:      model.FeeTypeMonthly,
			FeeMonth:     &month,
			FeeDueDate:   dueDate,
			FeeStatus:    model.FeeStatusPending,
		})
	}

	res := fc.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&fees)
	if res.Error != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal generate fee bulanan")
	}

	return helpers.JsonCreated(c, "Fee bulanan berhasil digenerate", fiber.Map{
		"batch_id":  batch.BatchID,
		"month":     month,
		"roster":    len(rosterIDs),
		"generated": res.RowsAffected,
		"skipped":   int64(len(rosterIDs)) - res.RowsAffected,
	})
}

/* =========================
   Read
========================= */

func (fc *FeeController) GetFees(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	p := helpers.ResolvePaging(c, 20, 100)
	now := time.Now().UTC()

	q := fc.DB.Model(&model.FeeModel{}).Where("fee_tutor_id = ?", tutorID)
	if s := strings.TrimSpace(c.Query("status")); s != "" {
		q = q.Where("fee_status = ?", s)
	}
	if s := strings.TrimSpace(c.Query("batch_id")); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return helpers.JsonError(c, fiber.StatusBadRequest, "batch_id tidak valid")
		}
		q = q.Where("fee_batch_id = ?", id)
	}
	if s := strings.TrimSpace(c.Query("student_id")); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return helpers.JsonError(c, fiber.StatusBadRequest, "student_id tidak valid")
		}
		q = q.Where("fee_student_id = ?", id)
	}
	if s := strings.TrimSpace(c.Query("month")); s != "" {
		q = q.Where("fee_month = ?", s)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data fee")
	}

	var fees []model.FeeModel
	if err := q.Order("fee_due_date DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&fees).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data fee")
	}

	if err := fc.reconcileAndPersist(fees, now); err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal memperbarui status fee")
	}

	items := make([]dto.FeeResponse, 0, len(fees))
	for i := range fees {
		items = append(items, dto.ToFeeResponse(&fees[i], service.DaysOverdue(&fees[i], now)))
	}
	return helpers.JsonList(c, "OK", items, helpers.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

func (fc *FeeController) GetFeeByID(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	feeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Fee ID tidak valid")
	}

	fee, err := fc.findOwnedFee(tutorID, feeID)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}

	now := time.Now().UTC()
	if err := fc.reconcileAndPersist([]model.FeeModel{*fee}, now); err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal memperbarui status fee")
	}
	service.ReconcileStatus(fee, now)

	return helpers.JsonOK(c, "OK", dto.ToFeeResponse(fee, service.DaysOverdue(fee, now)))
}

/* =========================
   Mutations
========================= */

func (fc *FeeController) Pay(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	feeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Fee ID tidak valid")
	}

	var req dto.RecordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := fc.validate.Struct(req); err != nil {
		return helpers.JsonValidationError(c, helpers.ValidatorErrors(err))
	}

	fee, err := fc.findOwnedFee(tutorID, feeID)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}

	now := time.Now().UTC()
	service.ReconcileStatus(fee, now)
	if err := service.RecordPayment(fee, req.PaymentMethod, req.TransactionID, now); err != nil {
		return helpers.JsonAppError(c, err)
	}

	if err := fc.DB.Model(&model.FeeModel{}).
		Where("fee_id = ?", fee.FeeID).
		Updates(map[string]any{
			"fee_status":         fee.FeeStatus,
			"fee_paid_date":      fee.FeePaidDate,
			"fee_payment_method": fee.FeePaymentMethod,
			"fee_transaction_id": fee.FeeTransactionID,
		}).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan pembayaran")
	}

	return helpers.JsonUpdated(c, "Pembayaran berhasil dicatat", dto.ToFeeResponse(fee, 0))
}

func (fc *FeeController) CancelFee(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	feeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Fee ID tidak valid")
	}

	fee, err := fc.findOwnedFee(tutorID, feeID)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}
	if err := service.Cancel(fee); err != nil {
		return helpers.JsonAppError(c, err)
	}

	if err := fc.DB.Model(&model.FeeModel{}).
		Where("fee_id = ?", fee.FeeID).
		Update("fee_status", fee.FeeStatus).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal membatalkan fee")
	}

	return helpers.JsonUpdated(c, "Fee berhasil dibatalkan", dto.ToFeeResponse(fee, 0))
}

/* =========================
   Dashboard & laporan
========================= */

func (fc *FeeController) Dashboard(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	var fees []model.FeeModel
	if err := fc.DB.
		Where("fee_tutor_id = ?", tutorID).
		Find(&fees).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data fee")
	}
	if err := fc.reconcileAndPersist(fees, now); err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal memperbarui status fee")
	}

	var recent []model.FeeModel
	if err := fc.DB.
		Where("fee_tutor_id = ? AND fee_status = ?", tutorID, model.FeeStatusPaid).
		Order("fee_paid_date DESC").
		Limit(5).
		Find(&recent).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data fee")
	}
	recentItems := make([]dto.FeeResponse, 0, len(recent))
	for i := range recent {
		recentItems = append(recentItems, dto.ToFeeResponse(&recent[i], 0))
	}

	return helpers.JsonOK(c, "OK", fiber.Map{
		"by_status":       service.SummarizeByStatus(fees),
		"overdue_top":     service.OverdueReport(fees, now, configs.OverdueReportLimit()),
		"recent_payments": recentItems,
	})
}

// CollectionReport: total penagihan terbayar per bulan kalender dalam satu tahun
func (fc *FeeController) CollectionReport(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	year, err := strconv.Atoi(c.Query("year", strconv.Itoa(time.Now().UTC().Year())))
	if err != nil || year < 2000 || year > 2100 {
		return helpers.JsonError(c, fiber.StatusBadRequest, "year tidak valid")
	}

	var rows []struct {
		Month  int   `gorm:"column:month" json:"month"`
		Count  int   `gorm:"column:count" json:"count"`
		Amount int64 `gorm:"column:amount" json:"amount"`
	}
	err = fc.DB.Model(&model.FeeModel{}).
		Select("EXTRACT(MONTH FROM fee_paid_date)::int AS month, COUNT(*) AS count, COALESCE(SUM(fee_amount),0) AS amount").
		Where("fee_tutor_id = ? AND fee_status = ?", tutorID, model.FeeStatusPaid).
		Where("fee_paid_date >= ? AND fee_paid_date < ?",
			time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC)).
		Group("EXTRACT(MONTH FROM fee_paid_date)").
		Order("month ASC").
		Scan(&rows).Error
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal menyusun laporan")
	}

	return helpers.JsonOK(c, "OK", fiber.Map{
		"year":    year,
		"monthly": rows,
	})
}

// ExportCollectionReport: laporan penagihan sebagai file XLSX
func (fc *FeeController) ExportCollectionReport(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	month := strings.TrimSpace(c.Query("month"))
	if month != "" && !monthPattern.MatchString(month) {
		return helpers.JsonError(c, fiber.StatusBadRequest, "month harus berformat YYYY-MM")
	}

	var fees []model.FeeModel
	q := fc.DB.Where("fee_tutor_id = ?", tutorID)
	if month != "" {
		q = q.Where("fee_month = ?", month)
	}
	if err := q.Order("fee_due_date ASC").Find(&fees).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data fee")
	}
	if err := fc.reconcileAndPersist(fees, now); err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal memperbarui status fee")
	}

	// join nama siswa & batch untuk isi laporan
	studentNames := map[uuid.UUID]studentModel.StudentModel{}
	batchNames := map[uuid.UUID]string{}
	{
		var students []studentModel.StudentModel
		if err := fc.DB.Where("student_tutor_id = ?", tutorID).Find(&students).Error; err != nil {
			return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data siswa")
		}
		for i := range students {
			studentNames[students[i].StudentID] = students[i]
		}
		var batches []batchModel.BatchModel
		if err := fc.DB.Where("batch_tutor_id = ?", tutorID).Find(&batches).Error; err != nil {
			return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data batch")
		}
		for i := range batches {
			batchNames[batches[i].BatchID] = batches[i].BatchName
		}
	}

	rows := make([]service.ReportRow, 0, len(fees))
	for i := range fees {
		f := &fees[i]
		s := studentNames[f.FeeStudentID]
		m := ""
		if f.FeeMonth != nil {
			m = *f.FeeMonth
		}
		rows = append(rows, service.ReportRow{
			StudentCode: s.StudentCode,
			StudentName: s.StudentName,
			BatchName:   batchNames[f.FeeBatchID],
			FeeType:     f.FeeType,
			Month:       m,
			Amount:      f.FeeAmount,
			Status:      f.FeeStatus,
			DueDate:     f.FeeDueDate,
			PaidDate:    f.FeePaidDate,
		})
	}

	title := "Laporan Penagihan"
	if month != "" {
		title += " " + month
	}
	buf, err := service.BuildCollectionReportXLSX(title, rows)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal menyusun file laporan")
	}

	filename := "laporan-penagihan"
	if month != "" {
		filename += "-" + month
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`.xlsx"`)
	return c.Send(buf.Bytes())
}

// StudentFeeHistory: seluruh fee satu siswa, terbaru dulu
func (fc *FeeController) StudentFeeHistory(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	studentID, err := uuid.Parse(c.Params("student_id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Student ID tidak valid")
	}
	now := time.Now().UTC()

	var fees []model.FeeModel
	if err := fc.DB.
		Where("fee_tutor_id = ? AND fee_student_id = ?", tutorID, studentID).
		Order("fee_due_date DESC").
		Find(&fees).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data fee")
	}
	if err := fc.reconcileAndPersist(fees, now); err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal memperbarui status fee")
	}

	items := make([]dto.FeeResponse, 0, len(fees))
	for i := range fees {
		items = append(items, dto.ToFeeResponse(&fees[i], service.DaysOverdue(&fees[i], now)))
	}
	return helpers.JsonOK(c, "OK", items)
}
