package dto

import (
	"time"

	"github.com/google/uuid"

	"bimbelku_backend/internals/features/tutoring/tests/model"
)

/* =========================
   Request
========================= */

type CreateTestRequest struct {
	BatchID    string `json:"batch_id" validate:"required,uuid4"`
	Name       string `json:"name" validate:"required,max=100"`
	Subject    string `json:"subject" validate:"required,max=100"`
	Date       string `json:"date" validate:"required"` // YYYY-MM-DD
	TotalMarks int    `json:"total_marks" validate:"required,min=1"`
}

type UpdateTestRequest struct {
	Name       *string `json:"name" validate:"omitempty,max=100"`
	Subject    *string `json:"subject" validate:"omitempty,max=100"`
	Date       *string `json:"date"`
	TotalMarks *int    `json:"total_marks" validate:"omitempty,min=1"`
}

type UploadMarkRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid4"`
	Marks     int    `json:"marks"`
}

// UploadMarksRequest mengganti SELURUH set hasil test (replace, bukan merge).
type UploadMarksRequest struct {
	Results []UploadMarkRequest `json:"results" validate:"required,min=1,dive"`
}

/* =========================
   Response
========================= */

type TestResultResponse struct {
	StudentID  uuid.UUID `json:"student_id"`
	Marks      int       `json:"marks"`
	Percentage int       `json:"percentage"`
	Grade      string    `json:"grade"`
	Rank       int       `json:"rank"`
}

type TestResponse struct {
	TestID     uuid.UUID            `json:"test_id"`
	BatchID    uuid.UUID            `json:"batch_id"`
	Name       string               `json:"name"`
	Subject    string               `json:"subject"`
	Date       time.Time            `json:"date"`
	TotalMarks int                  `json:"total_marks"`
	Status     string               `json:"status"`
	Results    []TestResultResponse `json:"results,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

func ToTestResultResponse(r *model.TestResultModel) TestResultResponse {
	return TestResultResponse{
		StudentID:  r.TestResultStudentID,
		Marks:      r.TestResultMarks,
		Percentage: r.TestResultPercentage,
		Grade:      r.TestResultGrade,
		Rank:       r.TestResultRank,
	}
}

func ToTestResponse(t *model.TestModel, withResults bool) TestResponse {
	resp := TestResponse{
		TestID:     t.TestID,
		BatchID:    t.TestBatchID,
		Name:       t.TestName,
		Subject:    t.TestSubject,
		Date:       t.TestDate,
		TotalMarks: t.TestTotalMarks,
		Status:     t.TestStatus,
		CreatedAt:  t.TestCreatedAt,
		UpdatedAt:  t.TestUpdatedAt,
	}
	if withResults {
		resp.Results = make([]TestResultResponse, 0, len(t.Results))
		for i := range t.Results {
			resp.Results = append(resp.Results, ToTestResultResponse(&t.Results[i]))
		}
	}
	return resp
}
