package service

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// LowAttendanceThreshold: siswa di bawah persentase ini ditandai "berisiko".
const LowAttendanceThreshold = 75

// Percentage = present/total*100 dibulatkan half-up; 0 kalau belum ada
// sesi sama sekali (tidak pernah division-by-zero).
func Percentage(present, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(float64(present)/float64(total)*100 + 0.5))
}

/* =========================
   Bucket harian
========================= */

// DatedStatus: satu baris status absensi yang sudah diberi tanggal lembarnya.
type DatedStatus struct {
	Date   time.Time
	Status string
}

type DailyStat struct {
	Date    time.Time `json:"date"`
	Present int       `json:"present"`
	Absent  int       `json:"absent"`
	Late    int       `json:"late"`
}

// DailyBuckets mengelompokkan baris per hari kalender, urut tanggal naik.
// Input tidak pernah dimutasi.
func DailyBuckets(rows []DatedStatus) []DailyStat {
	byDay := map[time.Time]*DailyStat{}
	for _, r := range rows {
		day := time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), 0, 0, 0, 0, time.UTC)
		stat, ok := byDay[day]
		if !ok {
			stat = &DailyStat{Date: day}
			byDay[day] = stat
		}
		switch r.Status {
		case "present":
			stat.Present++
		case "absent":
			stat.Absent++
		case "late":
			stat.Late++
		}
	}

	out := make([]DailyStat, 0, len(byDay))
	for _, s := range byDay {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

/* =========================
   Deteksi kehadiran rendah
========================= */

type StudentAttendance struct {
	StudentID   uuid.UUID
	StudentName string
	Present     int
	Total       int
}

type LowAttendanceFlag struct {
	StudentID   uuid.UUID `json:"student_id"`
	StudentName string    `json:"student_name"`
	Present     int       `json:"present"`
	Total       int       `json:"total"`
	Percentage  int       `json:"percentage"`
}

// FlagLowAttendance menandai siswa dengan persentase < threshold, urut naik
// (terburuk dulu), dipotong maksimal limit entri. Limit hanyalah kebijakan
// tampilan dashboard, bukan batas data — nilainya bisa diatur lewat config.
// Siswa tanpa sesi sama sekali tidak ditandai (belum ada data, bukan bolos).
func FlagLowAttendance(perStudent []StudentAttendance, threshold, limit int) []LowAttendanceFlag {
	flags := make([]LowAttendanceFlag, 0)
	for _, s := range perStudent {
		if s.Total == 0 {
			continue
		}
		pct := Percentage(s.Present, s.Total)
		if pct < threshold {
			flags = append(flags, LowAttendanceFlag{
				StudentID:   s.StudentID,
				StudentName: s.StudentName,
				Present:     s.Present,
				Total:       s.Total,
				Percentage:  pct,
			})
		}
	}

	sort.SliceStable(flags, func(i, j int) bool {
		return flags[i].Percentage < flags[j].Percentage
	})

	if limit > 0 && len(flags) > limit {
		flags = flags[:limit]
	}
	return flags
}
