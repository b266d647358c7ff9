package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStudentCode(t *testing.T) {
	tests := []struct {
		name string
		last string
		want string
	}{
		{name: "tutor baru tanpa siswa", last: "", want: "STU0001"},
		{name: "lanjut dari kode terakhir", last: "STU0001", want: "STU0002"},
		{name: "tidak reset setelah ada yang dihapus", last: "STU0042", want: "STU0043"},
		{name: "lewat empat digit", last: "STU9999", want: "STU10000"},
		{name: "kode tak dikenali mulai dari awal", last: "ABC123", want: "STU0001"},
		{name: "angka rusak mulai dari awal", last: "STUxxxx", want: "STU0001"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextStudentCode(tc.last))
		})
	}
}

// Dua tutor berbeda sama-sama mulai dari STU0001: kode hanya unik per
// tutor, bukan global.
func TestNextStudentCodePerTutor(t *testing.T) {
	assert.Equal(t, "STU0001", NextStudentCode(""))
	assert.Equal(t, "STU0001", NextStudentCode(""))
}
