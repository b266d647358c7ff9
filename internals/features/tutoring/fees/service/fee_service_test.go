package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"bimbelku_backend/internals/apperr"
	"bimbelku_backend/internals/features/tutoring/fees/model"
)

var baseNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func mkFee(status string, dueDate time.Time) model.FeeModel {
	return model.FeeModel{
		FeeID:        uuid.New(),
		FeeStudentID: uuid.New(),
		FeeBatchID:   uuid.New(),
		FeeAmount:    500000,
		FeeType:      model.FeeTypeMonthly,
		FeeStatus:    status,
		FeeDueDate:   dueDate,
	}
}

func TestReconcileStatusPendingPastDueBecomesOverdue(t *testing.T) {
	f := mkFee(model.FeeStatusPending, baseNow.AddDate(0, 0, -3))

	changed := ReconcileStatus(&f, baseNow)
	assert.True(t, changed)
	assert.Equal(t, model.FeeStatusOverdue, f.FeeStatus)

	// idempoten: panggilan kedua tidak mengubah apa-apa
	assert.False(t, ReconcileStatus(&f, baseNow))
}

func TestReconcileStatusLeavesOtherStatesAlone(t *testing.T) {
	pastDue := baseNow.AddDate(0, 0, -3)

	for _, status := range []string{model.FeeStatusPaid, model.FeeStatusCancelled, model.FeeStatusOverdue} {
		f := mkFee(status, pastDue)
		assert.False(t, ReconcileStatus(&f, baseNow), "status %s", status)
		assert.Equal(t, status, f.FeeStatus)
	}

	// pending yang belum jatuh tempo tetap pending
	f := mkFee(model.FeeStatusPending, baseNow.AddDate(0, 0, 3))
	assert.False(t, ReconcileStatus(&f, baseNow))
	assert.Equal(t, model.FeeStatusPending, f.FeeStatus)
}

func TestRecordPayment(t *testing.T) {
	f := mkFee(model.FeeStatusOverdue, baseNow.AddDate(0, 0, -3))

	err := RecordPayment(&f, "cash", "TRX-001", baseNow)
	assert.NoError(t, err)
	assert.Equal(t, model.FeeStatusPaid, f.FeeStatus)
	if assert.NotNil(t, f.FeePaidDate) {
		assert.Equal(t, baseNow, *f.FeePaidDate)
	}
	if assert.NotNil(t, f.FeePaymentMethod) {
		assert.Equal(t, "cash", *f.FeePaymentMethod)
	}

	// membayar fee yang sudah paid = invalid state
	err = RecordPayment(&f, "cash", "", baseNow)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestRecordPaymentRequiresMethod(t *testing.T) {
	f := mkFee(model.FeeStatusPending, baseNow)
	err := RecordPayment(&f, "  ", "", baseNow)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Equal(t, model.FeeStatusPending, f.FeeStatus, "gagal validasi tidak boleh mengubah status")
}

func TestRecordPaymentOnCancelled(t *testing.T) {
	f := mkFee(model.FeeStatusCancelled, baseNow)
	err := RecordPayment(&f, "cash", "", baseNow)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestCancel(t *testing.T) {
	f := mkFee(model.FeeStatusPending, baseNow)
	assert.NoError(t, Cancel(&f))
	assert.Equal(t, model.FeeStatusCancelled, f.FeeStatus)

	err := Cancel(&f)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestDaysOverdueCeil(t *testing.T) {
	// jatuh tempo 1,5 hari lalu → dibulatkan ke atas jadi 2
	f := mkFee(model.FeeStatusOverdue, baseNow.Add(-36*time.Hour))
	assert.Equal(t, 2, DaysOverdue(&f, baseNow))

	// tepat 1 hari
	f = mkFee(model.FeeStatusPending, baseNow.Add(-24*time.Hour))
	assert.Equal(t, 1, DaysOverdue(&f, baseNow))

	// belum jatuh tempo
	f = mkFee(model.FeeStatusPending, baseNow.Add(24*time.Hour))
	assert.Equal(t, 0, DaysOverdue(&f, baseNow))

	// paid tidak pernah dihitung menunggak
	f = mkFee(model.FeeStatusPaid, baseNow.Add(-72*time.Hour))
	assert.Equal(t, 0, DaysOverdue(&f, baseNow))
}

func TestOverdueReportOrderAndCap(t *testing.T) {
	fees := make([]model.FeeModel, 0, 15)
	for i := 1; i <= 15; i++ {
		fees = append(fees, mkFee(model.FeeStatusPending, baseNow.AddDate(0, 0, -i)))
	}
	// yang tidak ikut: paid, dan pending belum jatuh tempo
	fees = append(fees, mkFee(model.FeeStatusPaid, baseNow.AddDate(0, 0, -30)))
	fees = append(fees, mkFee(model.FeeStatusPending, baseNow.AddDate(0, 0, 5)))

	got := OverdueReport(fees, baseNow, 10)
	if assert.Len(t, got, 10, "dashboard dipotong 10 entri") {
		assert.Equal(t, 15, got[0].DaysOverdue, "paling lama menunggak tampil pertama")
		for i := 1; i < len(got); i++ {
			assert.GreaterOrEqual(t, got[i-1].DaysOverdue, got[i].DaysOverdue)
		}
	}
}

func TestSummarizeByStatus(t *testing.T) {
	fees := []model.FeeModel{
		mkFee(model.FeeStatusPaid, baseNow),
		mkFee(model.FeeStatusPaid, baseNow),
		mkFee(model.FeeStatusPending, baseNow.AddDate(0, 0, 7)),
	}

	got := SummarizeByStatus(fees)
	assert.Equal(t, StatusSummary{Count: 2, Amount: 1000000}, got[model.FeeStatusPaid])
	assert.Equal(t, StatusSummary{Count: 1, Amount: 500000}, got[model.FeeStatusPending])
}
