package service

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"bimbelku_backend/internals/apperr"
	"bimbelku_backend/internals/features/tutoring/fees/model"
)

/* =========================
   State machine
========================= */

// ReconcileStatus menurunkan pending→overdue kalau jatuh tempo sudah lewat.
// Dipanggil eksplisit di titik baca/agregasi, bukan efek samping save.
// Return true kalau status berubah (caller yang memutuskan persist).
func ReconcileStatus(f *model.FeeModel, now time.Time) bool {
	if f.FeeStatus == model.FeeStatusPending && f.FeeDueDate.Before(now) {
		f.FeeStatus = model.FeeStatusOverdue
		return true
	}
	return false
}

// RecordPayment: pending/overdue → paid. Metode pembayaran wajib;
// membayar fee yang sudah paid atau cancelled adalah invalid state.
func RecordPayment(f *model.FeeModel, method, transactionID string, now time.Time) error {
	if strings.TrimSpace(method) == "" {
		return apperr.Validation("Metode pembayaran wajib diisi",
			map[string][]string{"payment_method": {"wajib diisi"}})
	}
	switch f.FeeStatus {
	case model.FeeStatusPaid:
		return apperr.InvalidState("Fee sudah dibayar")
	case model.FeeStatusCancelled:
		return apperr.InvalidState("Fee sudah dibatalkan")
	}

	f.FeeStatus = model.FeeStatusPaid
	f.FeePaidDate = &now
	f.FeePaymentMethod = &method
	if t := strings.TrimSpace(transactionID); t != "" {
		f.FeeTransactionID = &t
	}
	return nil
}

// Cancel: status apa pun → cancelled.
func Cancel(f *model.FeeModel) error {
	if f.FeeStatus == model.FeeStatusCancelled {
		return apperr.InvalidState("Fee sudah dibatalkan")
	}
	f.FeeStatus = model.FeeStatusCancelled
	return nil
}

/* =========================
   Laporan tunggakan
========================= */

// DaysOverdue: hari keterlambatan dibulatkan ke atas; 0 kalau belum lewat
// jatuh tempo atau sudah paid/cancelled.
func DaysOverdue(f *model.FeeModel, now time.Time) int {
	if f.FeeStatus != model.FeeStatusPending && f.FeeStatus != model.FeeStatusOverdue {
		return 0
	}
	if !f.FeeDueDate.Before(now) {
		return 0
	}
	return int(math.Ceil(now.Sub(f.FeeDueDate).Hours() / 24))
}

type OverdueEntry struct {
	FeeID       uuid.UUID `json:"fee_id"`
	StudentID   uuid.UUID `json:"student_id"`
	BatchID     uuid.UUID `json:"batch_id"`
	Amount      int64     `json:"amount"`
	Month       *string   `json:"month,omitempty"`
	DueDate     time.Time `json:"due_date"`
	DaysOverdue int       `json:"days_overdue"`
}

// OverdueReport memilih fee pending/overdue yang sudah lewat jatuh tempo,
// urut turun berdasar lama tunggakan, dipotong maksimal limit entri
// (kebijakan tampilan dashboard, bisa diatur lewat config).
// Input tidak dimutasi.
func OverdueReport(fees []model.FeeModel, now time.Time, limit int) []OverdueEntry {
	entries := make([]OverdueEntry, 0)
	for i := range fees {
		f := &fees[i]
		days := DaysOverdue(f, now)
		if days <= 0 {
			continue
		}
		entries = append(entries, OverdueEntry{
			FeeID:       f.FeeID,
			StudentID:   f.FeeStudentID,
			BatchID:     f.FeeBatchID,
			Amount:      f.FeeAmount,
			Month:       f.FeeMonth,
			DueDate:     f.FeeDueDate,
			DaysOverdue: days,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DaysOverdue > entries[j].DaysOverdue
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

/* =========================
   Ringkasan per status
========================= */

type StatusSummary struct {
	Count  int   `json:"count"`
	Amount int64 `json:"amount"`
}

// SummarizeByStatus menjumlahkan count dan nominal per status.
// Panggil ReconcileStatus pada tiap record SEBELUM fungsi ini.
func SummarizeByStatus(fees []model.FeeModel) map[string]StatusSummary {
	out := map[string]StatusSummary{}
	for i := range fees {
		s := out[fees[i].FeeStatus]
		s.Count++
		s.Amount += fees[i].FeeAmount
		out[fees[i].FeeStatus] = s
	}
	return out
}
