package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Listing struct {
	ID          string
	Title       string
	Description string
	Price       decimal.Decimal
	Location    string
	Condition   string
	Category    string
	Images      []string
	DatePosted  time.Time
	SellerID    string
	SellerName  string
}
