package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// ReportRow: satu baris laporan penagihan yang sudah di-join nama
// siswa/batch-nya (controller yang menyiapkan join-nya).
type ReportRow struct {
	StudentCode string
	StudentName string
	BatchName   string
	FeeType     string
	Month       string
	Amount      int64
	Status      string
	DueDate     time.Time
	PaidDate    *time.Time
}

// BuildCollectionReportXLSX menyusun laporan penagihan sebagai workbook
// XLSX satu sheet dan mengembalikannya sebagai buffer siap kirim.
func BuildCollectionReportXLSX(title string, rows []ReportRow) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Laporan"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"No", "Kode Siswa", "Nama Siswa", "Batch", "Jenis", "Bulan", "Nominal", "Status", "Jatuh Tempo", "Tanggal Bayar"}

	f.SetCellValue(sheet, "A1", title)
	if err := f.MergeCell(sheet, "A1", "J1"); err != nil {
		return nil, err
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err == nil {
		_ = f.SetCellStyle(sheet, "A2", "J2", headerStyle)
	}

	for i, r := range rows {
		rowIdx := i + 3
		paid := ""
		if r.PaidDate != nil {
			paid = r.PaidDate.Format("2006-01-02")
		}
		values := []any{
			i + 1, r.StudentCode, r.StudentName, r.BatchName, r.FeeType,
			r.Month, r.Amount, r.Status, r.DueDate.Format("2006-01-02"), paid,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(sheet, cell, v)
		}
	}

	// baris total nominal terbayar
	var totalPaid int64
	for _, r := range rows {
		if r.Status == "paid" {
			totalPaid += r.Amount
		}
	}
	totalRow := len(rows) + 4
	f.SetCellValue(sheet, fmt.Sprintf("F%d", totalRow), "Total terbayar")
	f.SetCellValue(sheet, fmt.Sprintf("G%d", totalRow), totalPaid)

	_ = f.SetColWidth(sheet, "B", "D", 20)
	_ = f.SetColWidth(sheet, "G", "J", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf, nil
}
