package dto

import (
	"time"

	"github.com/google/uuid"

	"bimbelku_backend/internals/features/tutoring/batches/model"
)

/* =========================
   Request
========================= */

type CreateBatchRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Subject     string `json:"subject" validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`

	Days      []string `json:"days" validate:"required,min=1,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime string   `json:"start_time" validate:"required"`
	EndTime   string   `json:"end_time" validate:"required"`
	Duration  int      `json:"duration" validate:"required,min=30,max=300"`

	Capacity        int    `json:"capacity" validate:"required,min=1,max=100"`
	MonthlyFee      int64  `json:"monthly_fee" validate:"required,min=0"`
	RegistrationFee int64  `json:"registration_fee" validate:"omitempty,min=0"`
	Currency        string `json:"currency" validate:"omitempty,oneof=IDR USD EUR"`
}

// UpdateBatchRequest: semua field opsional; jadwal hanya dicek bentrok
// kalau salah satu field jadwal ikut diubah.
type UpdateBatchRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Subject     *string `json:"subject" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`

	Days      *[]string `json:"days" validate:"omitempty,min=1,dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime *string   `json:"start_time"`
	EndTime   *string   `json:"end_time"`
	Duration  *int      `json:"duration" validate:"omitempty,min=30,max=300"`

	Capacity        *int    `json:"capacity" validate:"omitempty,min=1,max=100"`
	MonthlyFee      *int64  `json:"monthly_fee" validate:"omitempty,min=0"`
	RegistrationFee *int64  `json:"registration_fee" validate:"omitempty,min=0"`
	Status          *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (r *UpdateBatchRequest) TouchesSchedule() bool {
	return r.Days != nil || r.StartTime != nil || r.EndTime != nil
}

/* =========================
   Response
========================= */

type BatchResponse struct {
	BatchID     uuid.UUID `json:"batch_id"`
	Name        string    `json:"name"`
	Subject     string    `json:"subject"`
	Description *string   `json:"description,omitempty"`

	Days      []string `json:"days"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Duration  int      `json:"duration"`

	Capacity        int    `json:"capacity"`
	MonthlyFee      int64  `json:"monthly_fee"`
	RegistrationFee int64  `json:"registration_fee"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`

	CurrentEnrollment int `json:"current_enrollment"`
	AvailableSpots    int `json:"available_spots"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToBatchResponse(b *model.BatchModel, enrolled int) BatchResponse {
	return BatchResponse{
		BatchID:           b.BatchID,
		Name:              b.BatchName,
		Subject:           b.BatchSubject,
		Description:       b.BatchDescription,
		Days:              b.BatchDays,
		StartTime:         b.BatchStartTime,
		EndTime:           b.BatchEndTime,
		Duration:          b.BatchDuration,
		Capacity:          b.BatchCapacity,
		MonthlyFee:        b.BatchMonthlyFee,
		RegistrationFee:   b.BatchRegistrationFee,
		Currency:          b.BatchCurrency,
		Status:            b.BatchStatus,
		CurrentEnrollment: enrolled,
		AvailableSpots:    b.BatchCapacity - enrolled,
		CreatedAt:         b.BatchCreatedAt,
		UpdatedAt:         b.BatchUpdatedAt,
	}
}
