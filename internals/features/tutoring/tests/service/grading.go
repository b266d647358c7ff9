package service

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// RawResult: nilai mentah satu siswa seperti dikirim tutor.
type RawResult struct {
	StudentID uuid.UUID
	Marks     int
}

// GradedResult: hasil pipeline — persentase, grade huruf, dan rank.
type GradedResult struct {
	StudentID  uuid.UUID
	Marks      int
	Percentage int
	Grade      string
	Rank       int
}

// InvalidMarksError melaporkan SEMUA entri yang nilainya di luar
// [0, totalMarks], bukan cuma pelanggar pertama.
type InvalidMarksError struct {
	TotalMarks int
	StudentIDs []uuid.UUID
}

func (e *InvalidMarksError) Error() string {
	ids := make([]string, 0, len(e.StudentIDs))
	for _, id := range e.StudentIDs {
		ids = append(ids, id.String())
	}
	return fmt.Sprintf("nilai di luar rentang 0..%d untuk siswa: %s",
		e.TotalMarks, strings.Join(ids, ", "))
}

// NotEnrolledError melaporkan SEMUA entri yang siswanya tidak ada di roster.
type NotEnrolledError struct {
	StudentIDs []uuid.UUID
}

func (e *NotEnrolledError) Error() string {
	ids := make([]string, 0, len(e.StudentIDs))
	for _, id := range e.StudentIDs {
		ids = append(ids, id.String())
	}
	return "siswa tidak terdaftar di batch: " + strings.Join(ids, ", ")
}

// GradeForPercentage: tabel threshold tetap, dievaluasi dari atas,
// first match wins.
func GradeForPercentage(pct int) string {
	switch {
	case pct >= 90:
		return "A+"
	case pct >= 80:
		return "A"
	case pct >= 70:
		return "B+"
	case pct >= 60:
		return "B"
	case pct >= 50:
		return "C+"
	case pct >= 40:
		return "C"
	case pct >= 33:
		return "D"
	default:
		return "F"
	}
}

// Grade menjalankan pipeline penilaian atas satu set hasil utuh (hasil test
// selalu di-replace seluruhnya, tidak pernah di-merge):
//  1. tolak wholesale nilai di luar rentang (semua pelanggar dilaporkan),
//  2. tolak wholesale siswa di luar roster (semua pelanggar dilaporkan),
//  3. percentage = round-half-up(marks/total*100),
//  4. grade dari tabel threshold,
//  5. rank = posisi 1-based pada salinan yang diurut marks menurun.
//
// Catatan rank: sort yang dipakai stabil, jadi nilai kembar mendapat rank
// BERBEDA berurutan mengikuti urutan input ("yang diunggah duluan menang"),
// bukan competition ranking. Perilaku ini disengaja dipertahankan.
func Grade(totalMarks int, roster []uuid.UUID, raw []RawResult) ([]GradedResult, error) {
	if totalMarks < 1 {
		return nil, fmt.Errorf("total marks harus >= 1")
	}

	var invalid []uuid.UUID
	for _, r := range raw {
		if r.Marks < 0 || r.Marks > totalMarks {
			invalid = append(invalid, r.StudentID)
		}
	}
	if len(invalid) > 0 {
		return nil, &InvalidMarksError{TotalMarks: totalMarks, StudentIDs: invalid}
	}

	onRoster := make(map[uuid.UUID]bool, len(roster))
	for _, id := range roster {
		onRoster[id] = true
	}
	var notEnrolled []uuid.UUID
	for _, r := range raw {
		if !onRoster[r.StudentID] {
			notEnrolled = append(notEnrolled, r.StudentID)
		}
	}
	if len(notEnrolled) > 0 {
		return nil, &NotEnrolledError{StudentIDs: notEnrolled}
	}

	graded := make([]GradedResult, 0, len(raw))
	for _, r := range raw {
		pct := int(math.Floor(float64(r.Marks)/float64(totalMarks)*100 + 0.5))
		graded = append(graded, GradedResult{
			StudentID:  r.StudentID,
			Marks:      r.Marks,
			Percentage: pct,
			Grade:      GradeForPercentage(pct),
		})
	}

	// rank dihitung pada salinan terurut; output tetap urutan input
	order := make([]int, len(graded))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return graded[order[a]].Marks > graded[order[b]].Marks
	})
	for pos, idx := range order {
		graded[idx].Rank = pos + 1
	}

	return graded, nil
}

/* =========================
   Statistik kelas & overall grade
========================= */

type ClassStats struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Highest int     `json:"highest"`
	Lowest  int     `json:"lowest"`
}

// ClassStatistics: rata-rata/tertinggi/terendah dari MARKS MENTAH —
// bukan dari persentase per siswa (dua perhitungan itu sengaja dipisah).
func ClassStatistics(marks []int) ClassStats {
	if len(marks) == 0 {
		return ClassStats{}
	}
	sum := 0
	highest := marks[0]
	lowest := marks[0]
	for _, m := range marks {
		sum += m
		if m > highest {
			highest = m
		}
		if m < lowest {
			lowest = m
		}
	}
	return ClassStats{
		Count:   len(marks),
		Average: float64(sum) / float64(len(marks)),
		Highest: highest,
		Lowest:  lowest,
	}
}

// OverallGrade: nilai keseluruhan lintas test — rata-ratakan dulu persentase
// semua test, baru petakan ke tabel threshold yang sama.
func OverallGrade(percentages []int) (int, string) {
	if len(percentages) == 0 {
		return 0, "F"
	}
	sum := 0
	for _, p := range percentages {
		sum += p
	}
	avg := int(math.Floor(float64(sum)/float64(len(percentages)) + 0.5))
	return avg, GradeForPercentage(avg)
}
