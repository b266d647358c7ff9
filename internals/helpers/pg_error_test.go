package helper

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: "23505", Constraint: "uq_students_tutor_code"}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "pelanggaran unique", err: dup, want: true},
		{name: "terbungkus fmt.Errorf", err: fmt.Errorf("insert gagal: %w", dup), want: true},
		{name: "kode pq lain (FK)", err: &pq.Error{Code: "23503"}, want: false},
		{
			// pesan mirip tapi bukan *pq.Error: deteksi string lama salah mengenali ini
			name: "error biasa dengan pesan duplicate key",
			err:  errors.New(`duplicate key value violates unique constraint "users_email_key"`),
			want: false,
		},
		{name: "nil", err: nil, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsUniqueViolation(tc.err))
		})
	}
}

func TestIsUniqueViolationOn(t *testing.T) {
	dup := &pq.Error{Code: "23505", Constraint: "uq_students_tutor_code"}

	assert.True(t, IsUniqueViolationOn(dup, "uq_students_tutor_code"))
	assert.False(t, IsUniqueViolationOn(dup, "uq_fees_monthly_student_batch_month"))
	assert.False(t, IsUniqueViolationOn(&pq.Error{Code: "23503", Constraint: "uq_students_tutor_code"}, "uq_students_tutor_code"))
	assert.False(t, IsUniqueViolationOn(nil, "uq_students_tutor_code"))
}
