package domain

import "time"

// BankRate is one bank's USD buy/sell quote in soum.
type BankRate struct {
	Bank string
	Buy  int
	Sell int
}

// RateBoard is a scraped set of bank quotes.
type RateBoard struct {
	FetchedAt time.Time
	Rates     []BankRate
}
