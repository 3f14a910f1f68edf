package model

import (
	"github.com/shopspring/decimal"
)

// OutflowEntry is an append-only record of one stock issue. Name, unit,
// category and price are a snapshot of the product at issue time.
//
// Price and TotalPrice are nullable so rows written before those columns
// existed can still be read; use ResolvedPrice and ResolvedTotal for display.
type OutflowEntry struct {
	ID          int64               `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	DateTime    Timestamp           `gorm:"column:date_time;not null" json:"date_time"`
	User        string              `gorm:"column:user;not null" json:"user"`
	SKU         string              `gorm:"column:sku;not null" json:"sku"`
	ProductName string              `gorm:"column:product_name;not null" json:"product_name"`
	Unit        string              `gorm:"column:unit;not null" json:"unit"`
	Qty         int                 `gorm:"column:qty;not null" json:"qty"`
	Category    string              `gorm:"column:category;not null;default:''" json:"category"`
	Price       decimal.NullDecimal `gorm:"column:price;type:real;not null;default:0" json:"price"`
	TotalPrice  decimal.NullDecimal `gorm:"column:total_price;type:real;not null;default:0" json:"total_price"`
}

func (OutflowEntry) TableName() string {
	return "outflow"
}

// ResolvedPrice prefers the stored price, then total/qty, then zero.
func (e OutflowEntry) ResolvedPrice() decimal.Decimal {
	if e.Price.Valid && !e.Price.Decimal.IsZero() {
		return RoundMoney(e.Price.Decimal)
	}
	if e.TotalPrice.Valid && !e.TotalPrice.Decimal.IsZero() && e.Qty > 0 {
		return e.TotalPrice.Decimal.DivRound(decimal.NewFromInt(int64(e.Qty)), MoneyPlaces)
	}
	return decimal.Zero
}

// ResolvedTotal prefers the stored total, otherwise price × qty.
func (e OutflowEntry) ResolvedTotal() decimal.Decimal {
	if e.TotalPrice.Valid && !e.TotalPrice.Decimal.IsZero() {
		return RoundMoney(e.TotalPrice.Decimal)
	}
	return RoundMoney(e.ResolvedPrice().Mul(decimal.NewFromInt(int64(e.Qty))))
}

// NewOutflowEntry snapshots p for an issue of qty units.
func NewOutflowEntry(at Timestamp, user string, p Product, qty int) OutflowEntry {
	price := RoundMoney(p.Price)
	return OutflowEntry{
		DateTime:    at,
		User:        user,
		SKU:         p.SKU,
		ProductName: p.Name,
		Unit:        string(p.Unit),
		Qty:         qty,
		Category:    string(p.Category),
		Price:       decimal.NewNullDecimal(price),
		TotalPrice:  decimal.NewNullDecimal(RoundMoney(price.Mul(decimal.NewFromInt(int64(qty))))),
	}
}
