package helper

import (
	"errors"

	"github.com/lib/pq"
)

// pgUniqueViolation = SQLSTATE 23505
const pgUniqueViolation = "23505"

// IsUniqueViolation mengecek apakah err adalah pelanggaran unique
// constraint Postgres. Deteksi lewat tipe *pq.Error, bukan string
// pesan, supaya tidak rapuh terhadap perubahan format pesan driver.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}

// IsUniqueViolationOn: seperti IsUniqueViolation, tapi hanya untuk
// constraint tertentu. Dipakai saat satu insert dijaga lebih dari satu
// unique index dan penanganannya beda per constraint.
func IsUniqueViolationOn(err error, constraint string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) &&
		pqErr.Code == pgUniqueViolation &&
		pqErr.Constraint == constraint
}
