package domain

import "strings"

// RatePerMB is the fixed backup billing rate in currency units per MB.
const RatePerMB int64 = 50

// CalculateBackupBill derives the backup cost for the given size.
// Negative sizes bill as zero.
func CalculateBackupBill(sizeMB int64) int64 {
	if sizeMB <= 0 {
		return 0
	}
	return sizeMB * RatePerMB
}

type BillID string

type BillStatus string

const (
	BillStatusPending BillStatus = "pending"
	BillStatusPaid    BillStatus = "paid"
)

type Bill struct {
	ID            BillID
	VMID          VMID
	SizeMB        int64
	Amount        int64
	Status        BillStatus
	TransactionID string
}

// NewBackupBill builds a pending bill with the amount derived from the
// size; the amount is never stored independently of the rate.
func NewBackupBill(id BillID, vmID VMID, sizeMB int64) Bill {
	return Bill{
		ID:     id,
		VMID:   vmID,
		SizeMB: sizeMB,
		Amount: CalculateBackupBill(sizeMB),
		Status: BillStatusPending,
	}
}

type CardBrand string

const (
	CardVisa            CardBrand = "Visa"
	CardMasterCard      CardBrand = "MasterCard"
	CardAmericanExpress CardBrand = "American Express"
	CardUnknown         CardBrand = "Unknown"
)

// ClassifyCard matches a card number against the supported brand
// patterns. It is total: anything that does not match is Unknown.
//
//	Visa:             prefix 4, length 13 or 16
//	MasterCard:       prefix 51-55, length 16
//	American Express: prefix 34 or 37, length 15
func ClassifyCard(number string) CardBrand {
	number = strings.TrimSpace(number)
	for _, r := range number {
		if r < '0' || r > '9' {
			return CardUnknown
		}
	}

	switch {
	case strings.HasPrefix(number, "4") && (len(number) == 13 || len(number) == 16):
		return CardVisa
	case len(number) == 16 && number[0] == '5' && number[1] >= '1' && number[1] <= '5':
		return CardMasterCard
	case len(number) == 15 && (strings.HasPrefix(number, "34") || strings.HasPrefix(number, "37")):
		return CardAmericanExpress
	default:
		return CardUnknown
	}
}
