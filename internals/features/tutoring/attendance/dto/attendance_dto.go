package dto

import (
	"time"

	"github.com/google/uuid"

	"bimbelku_backend/internals/features/tutoring/attendance/model"
)

/* =========================
   Request
========================= */

type MarkRecordRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid4"`
	Status    string `json:"status" validate:"required,oneof=present absent late"`
	Remarks   string `json:"remarks" validate:"omitempty,max=200"`
}

type MarkAttendanceRequest struct {
	BatchID string              `json:"batch_id" validate:"required,uuid4"`
	Date    string              `json:"date" validate:"required"` // YYYY-MM-DD
	Records []MarkRecordRequest `json:"records" validate:"required,min=1,dive"`
}

/* =========================
   Response
========================= */

type RecordResponse struct {
	StudentID uuid.UUID `json:"student_id"`
	Status    string    `json:"status"`
	Remarks   *string   `json:"remarks,omitempty"`
}

type AttendanceDayResponse struct {
	AttendanceDayID uuid.UUID        `json:"attendance_day_id"`
	BatchID         uuid.UUID        `json:"batch_id"`
	Date            time.Time        `json:"date"`
	Records         []RecordResponse `json:"records"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func ToRecordResponse(r *model.AttendanceRecordModel) RecordResponse {
	return RecordResponse{
		StudentID: r.AttendanceRecordStudentID,
		Status:    r.AttendanceRecordStatus,
		Remarks:   r.AttendanceRecordRemarks,
	}
}

func ToAttendanceDayResponse(d *model.AttendanceDayModel) AttendanceDayResponse {
	records := make([]RecordResponse, 0, len(d.Records))
	for i := range d.Records {
		records = append(records, ToRecordResponse(&d.Records[i]))
	}
	return AttendanceDayResponse{
		AttendanceDayID: d.AttendanceDayID,
		BatchID:         d.AttendanceDayBatchID,
		Date:            d.AttendanceDayDate,
		Records:         records,
		CreatedAt:       d.AttendanceDayCreatedAt,
		UpdatedAt:       d.AttendanceDayUpdatedAt,
	}
}
