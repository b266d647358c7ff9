package service

import (
	"errors"
	"fmt"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"bimbelku_backend/internals/features/tutoring/fees/model"
)

/* =========================================================
   Midtrans Client
========================================================= */

var SnapClient snap.Client

// InitMidtrans harus dipanggil saat bootstrap app.
// useProduction=true untuk Production, false untuk Sandbox.
func InitMidtrans(serverKey string, useProduction bool) {
	if useProduction {
		SnapClient.New(serverKey, midtrans.Production)
	} else {
		SnapClient.New(serverKey, midtrans.Sandbox)
	}
}

type CustomerInput struct {
	Name  string
	Email string
	Phone string
}

// OrderIDForFee: order id gateway dideterminasi dari fee id supaya webhook
// bisa dipetakan balik tanpa tabel mapping terpisah.
func OrderIDForFee(f *model.FeeModel) string {
	return "FEE-" + f.FeeID.String()
}

// GenerateSnapToken membuat Snap transaction untuk satu fee.
// Return (token, redirectURL, error).
func GenerateSnapToken(f *model.FeeModel, cust CustomerInput) (string, string, error) {
	if f.FeeAmount <= 0 {
		return "", "", errors.New("invalid fee_amount")
	}

	itemName := "Biaya bimbel"
	if f.FeeMonth != nil && *f.FeeMonth != "" {
		itemName = fmt.Sprintf("Biaya bimbel %s", *f.FeeMonth)
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  OrderIDForFee(f),
			GrossAmt: f.FeeAmount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: cust.Name,
			Email: cust.Email,
			Phone: cust.Phone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:       f.FeeID.String(),
				Price:    f.FeeAmount,
				Qty:      1,
				Name:     truncate(itemName, 50),
				Category: f.FeeType,
			},
		},
		CreditCard: &snap.CreditCardDetails{Secure: true},
	}

	resp, err := SnapClient.CreateTransaction(req)
	if err != nil {
		return "", "", err
	}
	return resp.Token, resp.RedirectURL, nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
