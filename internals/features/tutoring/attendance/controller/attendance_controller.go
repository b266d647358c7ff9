package controller

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bimbelku_backend/internals/apperr"
	"bimbelku_backend/internals/configs"
	"bimbelku_backend/internals/features/tutoring/attendance/dto"
	"bimbelku_backend/internals/features/tutoring/attendance/model"
	"bimbelku_backend/internals/features/tutoring/attendance/service"
	batchModel "bimbelku_backend/internals/features/tutoring/batches/model"
	helpers "bimbelku_backend/internals/helpers"
)

type AttendanceController struct {
	DB       *gorm.DB
	validate *validator.Validate
}

func NewAttendanceController(db *gorm.DB) *AttendanceController {
	return &AttendanceController{DB: db, validate: validator.New()}
}

func (ac *AttendanceController) findOwnedBatch(tutorID, batchID uuid.UUID) (*batchModel.BatchModel, error) {
	var batch batchModel.BatchModel
	err := ac.DB.
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

func (ac *AttendanceController) rosterIDs(batchID uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	err := ac.DB.Model(&batchModel.BatchStudentModel{}).
		Where("batch_student_batch_id = ?", batchID).
		Pluck("batch_student_student_id", &ids).Error
	if err != nil {
		return nil, err
	}
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}

// rentang tanggal dari query ?from=&to=; default 30 hari terakhir
func resolveRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -30)

	if s := strings.TrimSpace(c.Query("from")); s != "" {
		d, err := parseDate(s)
		if err != nil {
			return from, to, err
		}
		from = d
	}
	if s := strings.TrimSpace(c.Query("to")); s != "" {
		d, err := parseDate(s)
		if err != nil {
			return from, to, err
		}
		to = d
	}
	return from, to, nil
}

/* =========================
   Mark (upsert per batch+tanggal)
========================= */

// MarkAttendance membuat lembar absensi hari itu kalau belum ada, atau
// memperbarui in-place: satu lembar per (batch, tanggal), tidak pernah dobel.
func (ac *AttendanceController) MarkAttendance(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	var req dto.MarkAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ac.validate.Struct(req); err != nil {
		return helpers.JsonValidationError(c, helpers.ValidatorErrors(err))
	}

	batchID, err := uuid.Parse(req.BatchID)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "batch_id tidak valid")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return helpers.JsonValidationError(c, map[string][]string{"date": {"format harus YYYY-MM-DD"}})
	}

	batch, err := ac.findOwnedBatch(tutorID, batchID)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}

	// validasi roster: laporkan SEMUA siswa yang tidak terdaftar, bukan cuma yang pertama
	roster, err := ac.rosterIDs(batch.BatchID)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data roster")
	}
	var offenders []string
	records := make([]model.AttendanceRecordModel, 0, len(req.Records))
	for _, r := range req.Records {
		sid, err := uuid.Parse(r.StudentID)
		if err != nil {
			offenders = append(offenders, r.StudentID)
			continue
		}
		if !roster[sid] {
			offenders = append(offenders, sid.String())
			continue
		}
		rec := model.AttendanceRecordModel{
			AttendanceRecordStudentID: sid,
			AttendanceRecordStatus:    r.Status,
		}
		if rm := strings.TrimSpace(r.Remarks); rm != "" {
			rec.AttendanceRecordRemarks = &rm
		}
		records = append(records, rec)
	}
	if len(offenders) > 0 {
		return helpers.JsonAppError(c, apperr.Validation(
			"Beberapa siswa tidak terdaftar di batch ini",
			map[string][]string{"student_ids": offenders},
		))
	}

	var day model.AttendanceDayModel
	err = ac.DB.Transaction(func(tx *gorm.DB) error {
		// insert idempoten: kalau kalah balapan, DO NOTHING menjaga
		// transaksi tetap hidup (insert yang gagal unique membatalkan
		// seluruh transaksi di Postgres), lalu ambil baris pemenang.
		candidate := model.AttendanceDayModel{
			AttendanceDayTutorID: tutorID,
			AttendanceDayBatchID: batch.BatchID,
			AttendanceDayDate:    date,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&candidate).Error; err != nil {
			return err
		}
		if err := tx.
			Where("attendance_day_batch_id = ? AND attendance_day_date = ?", batch.BatchID, date).
			First(&day).Error; err != nil {
			return err
		}

		for i := range records {
			records[i].AttendanceRecordDayID = day.AttendanceDayID
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "attendance_record_day_id"},
				{Name: "attendance_record_student_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"attendance_record_status",
				"attendance_record_remarks",
				"attendance_record_updated_at",
			}),
		}).Create(&records).Error
	})
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan absensi")
	}

	if err := ac.DB.Preload("Records").
		First(&day, "attendance_day_id = ?", day.AttendanceDayID).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil absensi")
	}

	return helpers.JsonOK(c, "Absensi berhasil disimpan", dto.ToAttendanceDayResponse(&day))
}

/* =========================
   Read
========================= */

func (ac *AttendanceController) GetAttendanceList(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	p := helpers.ResolvePaging(c, 20, 100)
	from, to, err := resolveRange(c)
	if err != nil {
		return helpers.JsonValidationError(c, map[string][]string{"from/to": {"format harus YYYY-MM-DD"}})
	}

	q := ac.DB.Model(&model.AttendanceDayModel{}).
		Where("attendance_day_tutor_id = ?", tutorID).
		Where("attendance_day_date BETWEEN ? AND ?", from, to)
	if s := strings.TrimSpace(c.Query("batch_id")); s != "" {
		batchID, err := uuid.Parse(s)
		if err != nil {
			return helpers.JsonError(c, fiber.StatusBadRequest, "batch_id tidak valid")
		}
		q = q.Where("attendance_day_batch_id = ?", batchID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil absensi")
	}

	var days []model.AttendanceDayModel
	if err := q.Preload("Records").
		Order("attendance_day_date DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&days).Error; err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil absensi")
	}

	items := make([]dto.AttendanceDayResponse, 0, len(days))
	for i := range days {
		items = append(items, dto.ToAttendanceDayResponse(&days[i]))
	}
	return helpers.JsonList(c, "OK", items, helpers.BuildPaginationFromPage(total, p.Page, p.PerPage))
}

// GetSheetByDate: lembar absensi batch di satu tanggal, ditambah template
// siswa roster yang belum ditandai (untuk form di UI).
func (ac *AttendanceController) GetSheetByDate(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	batchID, err := uuid.Parse(c.Params("batch_id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Batch ID tidak valid")
	}
	date, err := parseDate(c.Params("date"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Tanggal tidak valid (YYYY-MM-DD)")
	}

	batch, err := ac.findOwnedBatch(tutorID, batchID)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}

	var day model.AttendanceDayModel
	marked := map[uuid.UUID]bool{}
	var sheet *dto.AttendanceDayResponse
	err = ac.DB.Preload("Records").
		Where("attendance_day_batch_id = ? AND attendance_day_date = ?", batch.BatchID, date).
		First(&day).Error
	if err == nil {
		resp := dto.ToAttendanceDayResponse(&day)
		sheet = &resp
		for _, r := range day.Records {
			marked[r.AttendanceRecordStudentID] = true
		}
	} else if err != gorm.ErrRecordNotFound {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil absensi")
	}

	var unmarked []uuid.UUID
	roster, err := ac.rosterIDs(batch.BatchID)
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil data roster")
	}
	for sid := range roster {
		if !marked[sid] {
			unmarked = append(unmarked, sid)
		}
	}

	return helpers.JsonOK(c, "OK", fiber.Map{
		"sheet":    sheet,
		"unmarked": unmarked,
	})
}

/* =========================
   Stats
========================= */

// BatchStats: bucket harian present/absent/late dalam rentang tanggal
func (ac *AttendanceController) BatchStats(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	batchID, err := uuid.Parse(c.Params("batch_id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Batch ID tidak valid")
	}
	from, to, err := resolveRange(c)
	if err != nil {
		return helpers.JsonValidationError(c, map[string][]string{"from/to": {"format harus YYYY-MM-DD"}})
	}

	batch, err := ac.findOwnedBatch(tutorID, batchID)
	if err != nil {
		return helpers.JsonAppError(c, err)
	}

	var rows []service.DatedStatus
	err = ac.DB.Table("attendance_records").
		Select("attendance_day_date AS date, attendance_record_status AS status").
		Joins("JOIN attendance_days ON attendance_day_id = attendance_record_day_id").
		Where("attendance_day_batch_id = ? AND attendance_day_deleted_at IS NULL", batch.BatchID).
		Where("attendance_day_date BETWEEN ? AND ?", from, to).
		Scan(&rows).Error
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil statistik")
	}

	return helpers.JsonOK(c, "OK", fiber.Map{
		"from":  from,
		"to":    to,
		"daily": service.DailyBuckets(rows),
	})
}

// StudentHistory: riwayat absensi satu siswa + persentase kehadirannya
func (ac *AttendanceController) StudentHistory(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}
	studentID, err := uuid.Parse(c.Params("student_id"))
	if err != nil {
		return helpers.JsonError(c, fiber.StatusBadRequest, "Student ID tidak valid")
	}
	from, to, err := resolveRange(c)
	if err != nil {
		return helpers.JsonValidationError(c, map[string][]string{"from/to": {"format harus YYYY-MM-DD"}})
	}

	type historyRow struct {
		Date    time.Time `gorm:"column:date" json:"date"`
		BatchID uuid.UUID `gorm:"column:batch_id" json:"batch_id"`
		Status  string    `gorm:"column:status" json:"status"`
		Remarks *string   `gorm:"column:remarks" json:"remarks,omitempty"`
	}
	var rows []historyRow
	err = ac.DB.Table("attendance_records").
		Select(`attendance_day_date AS date,
			attendance_day_batch_id AS batch_id,
			attendance_record_status AS status,
			attendance_record_remarks AS remarks`).
		Joins("JOIN attendance_days ON attendance_day_id = attendance_record_day_id").
		Where("attendance_record_student_id = ? AND attendance_day_tutor_id = ?", studentID, tutorID).
		Where("attendance_day_deleted_at IS NULL").
		Where("attendance_day_date BETWEEN ? AND ?", from, to).
		Order("attendance_day_date DESC").
		Scan(&rows).Error
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil riwayat absensi")
	}

	present := 0
	for _, r := range rows {
		if r.Status == model.StatusPresent {
			present++
		}
	}

	return helpers.JsonOK(c, "OK", fiber.Map{
		"from":       from,
		"to":         to,
		"history":    rows,
		"present":    present,
		"total":      len(rows),
		"percentage": service.Percentage(present, len(rows)),
	})
}

// Summary: dashboard kehadiran 30 hari terakhir + siswa berisiko
func (ac *AttendanceController) Summary(c *fiber.Ctx) error {
	tutorID, err := helpers.GetUserIDFromToken(c)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	from := to.AddDate(0, 0, -30)

	var totals struct {
		Total   int `gorm:"column:total"`
		Present int `gorm:"column:present"`
		Absent  int `gorm:"column:absent"`
		Late    int `gorm:"column:late"`
	}
	err = ac.DB.Table("attendance_records").
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE attendance_record_status = 'present') AS present,
			COUNT(*) FILTER (WHERE attendance_record_status = 'absent') AS absent,
			COUNT(*) FILTER (WHERE attendance_record_status = 'late') AS late`).
		Joins("JOIN attendance_days ON attendance_day_id = attendance_record_day_id").
		Where("attendance_day_tutor_id = ? AND attendance_day_deleted_at IS NULL", tutorID).
		Where("attendance_day_date BETWEEN ? AND ?", from, to).
		Scan(&totals).Error
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil ringkasan")
	}

	// kehadiran per siswa di jendela 30 hari, untuk deteksi kehadiran rendah
	var perStudent []struct {
		StudentID   uuid.UUID `gorm:"column:student_id"`
		StudentName string    `gorm:"column:student_name"`
		Present     int       `gorm:"column:present"`
		Total       int       `gorm:"column:total"`
	}
	err = ac.DB.Table("attendance_records").
		Select(`attendance_record_student_id AS student_id,
			student_name,
			COUNT(*) FILTER (WHERE attendance_record_status = 'present') AS present,
			COUNT(*) AS total`).
		Joins("JOIN attendance_days ON attendance_day_id = attendance_record_day_id").
		Joins("JOIN students ON student_id = attendance_record_student_id").
		Where("attendance_day_tutor_id = ? AND attendance_day_deleted_at IS NULL", tutorID).
		Where("attendance_day_date BETWEEN ? AND ?", from, to).
		Group("attendance_record_student_id, student_name").
		Scan(&perStudent).Error
	if err != nil {
		return helpers.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil ringkasan")
	}

	stats := make([]service.StudentAttendance, 0, len(perStudent))
	for _, s := range perStudent {
		stats = append(stats, service.StudentAttendance{
			StudentID:   s.StudentID,
			StudentName: s.StudentName,
			Present:     s.Present,
			Total:       s.Total,
		})
	}

	return helpers.JsonOK(c, "OK", fiber.Map{
		"from": from,
		"to":   to,
		"totals": fiber.Map{
			"sessions_marked": totals.Total,
			"present":         totals.Present,
			"absent":          totals.Absent,
			"late":            totals.Late,
			"percentage":      service.Percentage(totals.Present, totals.Total),
		},
		"low_attendance": service.FlagLowAttendance(
			stats, service.LowAttendanceThreshold, configs.LowAttendanceLimit()),
	})
}
