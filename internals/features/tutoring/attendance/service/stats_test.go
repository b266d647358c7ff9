package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPercentageRoundHalfUp(t *testing.T) {
	cases := []struct {
		present, total, want int
	}{
		{2, 3, 67},  // 66.67 dibulatkan ke atas
		{1, 3, 33},  // 33.33 dibulatkan ke bawah
		{1, 2, 50},  //
		{3, 8, 38},  // 37.5 half-up
		{0, 5, 0},   //
		{5, 5, 100}, //
		{0, 0, 0},   // belum ada sesi: 0, bukan error
	}
	for _, tc := range cases {
		got := Percentage(tc.present, tc.total)
		assert.Equal(t, tc.want, got, "present=%d total=%d", tc.present, tc.total)
	}
}

func TestDailyBuckets(t *testing.T) {
	d1 := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

	rows := []DatedStatus{
		{Date: d2, Status: "present"},
		{Date: d1, Status: "present"},
		{Date: d1, Status: "absent"},
		{Date: d1, Status: "late"},
		{Date: d2, Status: "present"},
	}

	got := DailyBuckets(rows)
	if assert.Len(t, got, 2) {
		// urut tanggal naik
		assert.Equal(t, d1, got[0].Date)
		assert.Equal(t, DailyStat{Date: d1, Present: 1, Absent: 1, Late: 1}, got[0])
		assert.Equal(t, DailyStat{Date: d2, Present: 2, Absent: 0, Late: 0}, got[1])
	}
}

func TestDailyBucketsEmpty(t *testing.T) {
	assert.Empty(t, DailyBuckets(nil))
}

func TestFlagLowAttendanceCapAndOrder(t *testing.T) {
	// 20 siswa semuanya di bawah 75%
	perStudent := make([]StudentAttendance, 0, 20)
	for i := 0; i < 20; i++ {
		perStudent = append(perStudent, StudentAttendance{
			StudentID:   uuid.New(),
			StudentName: fmt.Sprintf("Siswa %02d", i),
			Present:     i, // 0..19 dari 100 sesi → 0%..19%
			Total:       100,
		})
	}

	got := FlagLowAttendance(perStudent, LowAttendanceThreshold, 5)
	if assert.Len(t, got, 5, "dashboard hanya menampilkan 5 teratas") {
		for i := 1; i < len(got); i++ {
			assert.LessOrEqual(t, got[i-1].Percentage, got[i].Percentage, "harus urut naik")
		}
		assert.Equal(t, 0, got[0].Percentage, "yang terburuk tampil pertama")
	}
}

func TestFlagLowAttendanceThresholdStrict(t *testing.T) {
	sID := uuid.New()
	perStudent := []StudentAttendance{
		{StudentID: sID, StudentName: "Pas 75", Present: 75, Total: 100},
		{StudentID: uuid.New(), StudentName: "74", Present: 74, Total: 100},
		{StudentID: uuid.New(), StudentName: "Tanpa sesi", Present: 0, Total: 0},
	}

	got := FlagLowAttendance(perStudent, LowAttendanceThreshold, 5)
	if assert.Len(t, got, 1, "tepat 75%% tidak ditandai; tanpa sesi tidak ditandai") {
		assert.Equal(t, "74", got[0].StudentName)
	}
}

func TestFlagLowAttendanceNoLimit(t *testing.T) {
	perStudent := []StudentAttendance{
		{StudentID: uuid.New(), Present: 1, Total: 10},
		{StudentID: uuid.New(), Present: 2, Total: 10},
	}
	got := FlagLowAttendance(perStudent, LowAttendanceThreshold, 0)
	assert.Len(t, got, 2, "limit 0 berarti tanpa pemotongan")
}
