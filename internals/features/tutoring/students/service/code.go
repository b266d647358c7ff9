package service

import (
	"fmt"
	"strconv"
	"strings"
)

const studentCodePrefix = "STU"

// NextStudentCode menghitung kode siswa berikutnya dari kode tertinggi
// yang sudah ada untuk satu tutor (termasuk siswa yang sudah dihapus,
// supaya kode tidak pernah terpakai ulang). Kode kosong atau tidak
// dikenali mulai dari STU0001.
func NextStudentCode(last string) string {
	n := 0
	if rest, ok := strings.CutPrefix(last, studentCodePrefix); ok {
		if v, err := strconv.Atoi(rest); err == nil && v > 0 {
			n = v
		}
	}
	return fmt.Sprintf("%s%04d", studentCodePrefix, n+1)
}
