package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGradeDeterministicWithDistinctRanksForTies(t *testing.T) {
	s1, s2, s3 := uuid.New(), uuid.New(), uuid.New()
	roster := []uuid.UUID{s1, s2, s3}

	got, err := Grade(100, roster, []RawResult{
		{StudentID: s1, Marks: 90},
		{StudentID: s2, Marks: 90},
		{StudentID: s3, Marks: 80},
	})
	assert.NoError(t, err)
	if !assert.Len(t, got, 3) {
		return
	}

	// output mengikuti urutan input
	assert.Equal(t, []int{90, 90, 80}, []int{got[0].Percentage, got[1].Percentage, got[2].Percentage})
	assert.Equal(t, []string{"A+", "A+", "A"}, []string{got[0].Grade, got[1].Grade, got[2].Grade})

	// nilai kembar mendapat rank BERBEDA, yang diunggah duluan menang
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, 2, got[1].Rank)
	assert.Equal(t, 3, got[2].Rank)
}

func TestGradeRankOrderIndependentOfInputOrder(t *testing.T) {
	s1, s2, s3 := uuid.New(), uuid.New(), uuid.New()
	roster := []uuid.UUID{s1, s2, s3}

	// nilai tertinggi diunggah terakhir: tetap rank 1
	got, err := Grade(50, roster, []RawResult{
		{StudentID: s1, Marks: 10},
		{StudentID: s2, Marks: 30},
		{StudentID: s3, Marks: 45},
	})
	assert.NoError(t, err)
	if assert.Len(t, got, 3) {
		assert.Equal(t, 3, got[0].Rank)
		assert.Equal(t, 2, got[1].Rank)
		assert.Equal(t, 1, got[2].Rank)
	}
}

func TestGradePercentageRoundHalfUp(t *testing.T) {
	s1 := uuid.New()
	got, err := Grade(3, []uuid.UUID{s1}, []RawResult{{StudentID: s1, Marks: 2}})
	assert.NoError(t, err)
	if assert.Len(t, got, 1) {
		assert.Equal(t, 67, got[0].Percentage, "2/3 = 66.67 dibulatkan half-up")
		assert.Equal(t, "B", got[0].Grade)
	}
}

func TestGradeInvalidMarksRejectedWholesale(t *testing.T) {
	s1, s2, s3 := uuid.New(), uuid.New(), uuid.New()
	roster := []uuid.UUID{s1, s2, s3}

	got, err := Grade(50, roster, []RawResult{
		{StudentID: s1, Marks: 60}, // di atas total
		{StudentID: s2, Marks: 40},
		{StudentID: s3, Marks: -1}, // negatif
	})
	assert.Nil(t, got, "tidak boleh ada daftar parsial")

	var ime *InvalidMarksError
	if assert.True(t, errors.As(err, &ime)) {
		assert.ElementsMatch(t, []uuid.UUID{s1, s3}, ime.StudentIDs, "semua pelanggar dilaporkan")
	}
}

func TestGradeNotEnrolledRejectedWholesale(t *testing.T) {
	s1, s2 := uuid.New(), uuid.New()
	outsider1, outsider2 := uuid.New(), uuid.New()

	got, err := Grade(100, []uuid.UUID{s1, s2}, []RawResult{
		{StudentID: s1, Marks: 80},
		{StudentID: outsider1, Marks: 70},
		{StudentID: outsider2, Marks: 60},
	})
	assert.Nil(t, got)

	var nee *NotEnrolledError
	if assert.True(t, errors.As(err, &nee)) {
		assert.ElementsMatch(t, []uuid.UUID{outsider1, outsider2}, nee.StudentIDs)
	}
}

func TestGradeInvalidMarksCheckedBeforeRoster(t *testing.T) {
	outsider := uuid.New()

	// entri sekaligus invalid marks DAN di luar roster: invalid marks menang
	_, err := Grade(50, nil, []RawResult{{StudentID: outsider, Marks: 99}})
	var ime *InvalidMarksError
	assert.True(t, errors.As(err, &ime))
}

func TestGradeForPercentageThresholds(t *testing.T) {
	cases := []struct {
		pct  int
		want string
	}{
		{100, "A+"}, {90, "A+"}, {89, "A"}, {80, "A"},
		{79, "B+"}, {70, "B+"}, {69, "B"}, {60, "B"},
		{59, "C+"}, {50, "C+"}, {49, "C"}, {40, "C"},
		{39, "D"}, {33, "D"}, {32, "F"}, {0, "F"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, GradeForPercentage(tc.pct), "pct=%d", tc.pct)
	}
}

func TestClassStatisticsUsesRawMarks(t *testing.T) {
	got := ClassStatistics([]int{40, 35, 45})
	assert.Equal(t, 3, got.Count)
	assert.InDelta(t, 40.0, got.Average, 0.001, "rata-rata dari marks mentah, bukan persentase")
	assert.Equal(t, 45, got.Highest)
	assert.Equal(t, 35, got.Lowest)
}

func TestClassStatisticsEmpty(t *testing.T) {
	assert.Equal(t, ClassStats{}, ClassStatistics(nil))
}

func TestOverallGradeAveragesPercentagesFirst(t *testing.T) {
	// rata-rata 89.5 → half-up 90 → A+
	avg, grade := OverallGrade([]int{89, 90})
	assert.Equal(t, 90, avg)
	assert.Equal(t, "A+", grade)

	avg, grade = OverallGrade([]int{70, 50})
	assert.Equal(t, 60, avg)
	assert.Equal(t, "B", grade)

	avg, grade = OverallGrade(nil)
	assert.Equal(t, 0, avg)
	assert.Equal(t, "F", grade)
}
