package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the fixed-point scale of every stored amount.
const MoneyPlaces = 2

// MaxPrice is the largest unit price accepted. Amounts are stored as REAL,
// so cents stay exact only well below 2^53.
const MaxPrice = 1e12

// RoundMoney rounds half away from zero to two places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

type Unit string

const (
	UnitEach     Unit = "EACH"
	UnitBox      Unit = "BOX"
	UnitPack     Unit = "PACK"
	UnitCarton   Unit = "CARTON"
	UnitReam     Unit = "REAM"
	UnitRoll     Unit = "ROLL"
	UnitBottle   Unit = "BOTTLE"
	UnitLiter    Unit = "LITER"
	UnitKilogram Unit = "KILOGRAM"
	UnitSet      Unit = "SET"
	UnitPair     Unit = "PAIR"
)

var Units = []Unit{
	UnitEach, UnitBox, UnitPack, UnitCarton, UnitReam, UnitRoll,
	UnitBottle, UnitLiter, UnitKilogram, UnitSet, UnitPair,
}

func (u Unit) IsValid() bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}

// ParseUnit normalizes user input; the result still needs IsValid.
func ParseUnit(s string) Unit {
	return Unit(strings.ToUpper(strings.TrimSpace(s)))
}

type Category string

const (
	CategoryOfficeSupplies Category = "OFFICE_SUPPLIES"
	CategoryStationery     Category = "STATIONERY"
	CategoryPrinting       Category = "PRINTING"
	CategoryITEquipment    Category = "IT_EQUIPMENT"
	CategoryElectronics    Category = "ELECTRONICS"
	CategoryFurniture      Category = "FURNITURE"
	CategoryCleaning       Category = "CLEANING"
	CategoryPantry         Category = "PANTRY"
	CategoryMaintenance    Category = "MAINTENANCE"
	CategoryMedical        Category = "MEDICAL"
	CategoryOther          Category = "OTHER"
)

var Categories = []Category{
	CategoryOfficeSupplies, CategoryStationery, CategoryPrinting, CategoryITEquipment,
	CategoryElectronics, CategoryFurniture, CategoryCleaning, CategoryPantry,
	CategoryMaintenance, CategoryMedical, CategoryOther,
}

func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func ParseCategory(s string) Category {
	return Category(strings.ToUpper(strings.TrimSpace(s)))
}

type Product struct {
	SKU      string          `gorm:"column:sku;primaryKey" json:"sku" validate:"required"`
	Name     string          `gorm:"column:name;not null" json:"name" validate:"required"`
	Price    decimal.Decimal `gorm:"column:price;type:real;not null" json:"price" validate:"gte=0,money"`
	Qty      int             `gorm:"column:qty;not null" json:"qty" validate:"gte=0"`
	Unit     Unit            `gorm:"column:unit;not null" json:"unit" validate:"required,unit"`
	Category Category        `gorm:"column:category;not null" json:"category" validate:"required,category"`
	AddedOn  Timestamp       `gorm:"column:added_on;not null" json:"added_on"`
}

func (Product) TableName() string {
	return "products"
}

// TotalPrice is price × qty at two places.
func (p Product) TotalPrice() decimal.Decimal {
	return RoundMoney(p.Price.Mul(decimal.NewFromInt(int64(p.Qty))))
}
