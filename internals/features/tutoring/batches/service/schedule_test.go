package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"bimbelku_backend/internals/features/tutoring/batches/model"
)

func mkBatch(name, status string, days []string, start, end string) model.BatchModel {
	return model.BatchModel{
		BatchID:        uuid.New(),
		BatchName:      name,
		BatchStatus:    status,
		BatchDays:      pq.StringArray(days),
		BatchStartTime: start,
		BatchEndTime:   end,
	}
}

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:00", 540, false},
		{"23:59", 1439, false},
		{"9:30", 570, false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"0900", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		assert.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestFindConflictSymmetry(t *testing.T) {
	a := mkBatch("A", model.BatchStatusActive, []string{"Monday", "Wednesday"}, "09:00", "10:30")
	b := mkBatch("B", model.BatchStatusActive, []string{"Wednesday", "Friday"}, "10:00", "11:00")

	// A sebagai existing, B sebagai kandidat
	got, err := FindConflict([]model.BatchModel{a}, WeeklySchedule{
		Days: b.BatchDays, StartTime: b.BatchStartTime, EndTime: b.BatchEndTime,
	}, nil)
	assert.NoError(t, err)
	if assert.NotNil(t, got) {
		assert.Equal(t, a.BatchID, got.BatchID)
	}

	// dan sebaliknya
	got, err = FindConflict([]model.BatchModel{b}, WeeklySchedule{
		Days: a.BatchDays, StartTime: a.BatchStartTime, EndTime: a.BatchEndTime,
	}, nil)
	assert.NoError(t, err)
	if assert.NotNil(t, got) {
		assert.Equal(t, b.BatchID, got.BatchID)
	}
}

func TestFindConflictBoundaryTouchIsNotConflict(t *testing.T) {
	existing := mkBatch("Pagi", model.BatchStatusActive, []string{"Monday"}, "09:00", "10:00")

	got, err := FindConflict([]model.BatchModel{existing}, WeeklySchedule{
		Days: []string{"Monday"}, StartTime: "10:00", EndTime: "11:00",
	}, nil)
	assert.NoError(t, err)
	assert.Nil(t, got, "jadwal yang menempel batas tidak boleh dianggap bentrok")
}

func TestFindConflictSkipsInactiveAndExcluded(t *testing.T) {
	inactive := mkBatch("Libur", model.BatchStatusInactive, []string{"Monday"}, "09:00", "11:00")
	self := mkBatch("Self", model.BatchStatusActive, []string{"Monday"}, "09:00", "11:00")

	cand := WeeklySchedule{Days: []string{"Monday"}, StartTime: "09:30", EndTime: "10:30"}

	got, err := FindConflict([]model.BatchModel{inactive}, cand, nil)
	assert.NoError(t, err)
	assert.Nil(t, got, "batch non-aktif tidak pernah ikut dicek")

	got, err = FindConflict([]model.BatchModel{self}, cand, &self.BatchID)
	assert.NoError(t, err)
	assert.Nil(t, got, "batch yang dikecualikan tidak boleh bentrok dengan dirinya sendiri")
}

func TestFindConflictDisjointDaysOrTimes(t *testing.T) {
	existing := mkBatch("A", model.BatchStatusActive, []string{"Monday"}, "09:00", "10:00")

	// hari beda
	got, err := FindConflict([]model.BatchModel{existing}, WeeklySchedule{
		Days: []string{"Tuesday"}, StartTime: "09:00", EndTime: "10:00",
	}, nil)
	assert.NoError(t, err)
	assert.Nil(t, got)

	// jam beda
	got, err = FindConflict([]model.BatchModel{existing}, WeeklySchedule{
		Days: []string{"Monday"}, StartTime: "11:00", EndTime: "12:00",
	}, nil)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindConflictReturnsFirstInNaturalOrder(t *testing.T) {
	b1 := mkBatch("Pertama", model.BatchStatusActive, []string{"Monday"}, "09:00", "11:00")
	b2 := mkBatch("Kedua", model.BatchStatusActive, []string{"Monday"}, "09:00", "11:00")

	got, err := FindConflict([]model.BatchModel{b1, b2}, WeeklySchedule{
		Days: []string{"Monday"}, StartTime: "10:00", EndTime: "12:00",
	}, nil)
	assert.NoError(t, err)
	if assert.NotNil(t, got) {
		assert.Equal(t, b1.BatchID, got.BatchID)
	}
}

func TestFindConflictRejectsMalformedCandidate(t *testing.T) {
	_, err := FindConflict(nil, WeeklySchedule{
		Days: []string{"Monday"}, StartTime: "10:00", EndTime: "09:00",
	}, nil)
	assert.Error(t, err)

	_, err = FindConflict(nil, WeeklySchedule{
		Days: []string{"Monday"}, StartTime: "morning", EndTime: "10:00",
	}, nil)
	assert.Error(t, err)
}
