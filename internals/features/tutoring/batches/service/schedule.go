package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"bimbelku_backend/internals/features/tutoring/batches/model"
)

// WeeklySchedule adalah kandidat jadwal yang dicek terhadap batch lain.
type WeeklySchedule struct {
	Days      []string
	StartTime string // "HH:MM"
	EndTime   string // "HH:MM"
}

// ParseClock mengubah "HH:MM" menjadi menit-sejak-tengah-malam.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("format jam tidak valid: %q (harus HH:MM)", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("format jam tidak valid: %q (harus HH:MM)", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("format jam tidak valid: %q (harus HH:MM)", s)
	}
	return h*60 + m, nil
}

// intervalsOverlap: interval setengah-terbuka [s1,e1) vs [s2,e2).
// Jadwal yang menempel batas (e1 == s2) BUKAN bentrok — kelas back-to-back sah.
func intervalsOverlap(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

func daysIntersect(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// FindConflict mengembalikan batch aktif pertama (urutan natural) yang
// jadwalnya bentrok dengan kandidat, atau nil kalau tidak ada.
// excludeBatchID dipakai saat update jadwal agar batch tidak bentrok dengan
// dirinya sendiri. Batch non-aktif tidak pernah ikut dicek.
func FindConflict(existing []model.BatchModel, candidate WeeklySchedule, excludeBatchID *uuid.UUID) (*model.BatchModel, error) {
	candStart, err := ParseClock(candidate.StartTime)
	if err != nil {
		return nil, err
	}
	candEnd, err := ParseClock(candidate.EndTime)
	if err != nil {
		return nil, err
	}
	if candStart >= candEnd {
		return nil, fmt.Errorf("jam mulai harus sebelum jam selesai")
	}

	for i := range existing {
		b := &existing[i]
		if !b.IsActive() {
			continue
		}
		if excludeBatchID != nil && b.BatchID == *excludeBatchID {
			continue
		}
		if !daysIntersect(b.BatchDays, candidate.Days) {
			continue
		}
		s, err := ParseClock(b.BatchStartTime)
		if err != nil {
			continue
		}
		e, err := ParseClock(b.BatchEndTime)
		if err != nil {
			continue
		}
		if intervalsOverlap(s, e, candStart, candEnd) {
			return b, nil
		}
	}
	return nil, nil
}
