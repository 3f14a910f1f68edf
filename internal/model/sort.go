package model

import (
	"cmp"
	"slices"
	"strings"
)

// splitSortKey normalizes keys such as "total_price_desc", "TOTALPRICE_DESC"
// or a bare "SKU" into a field token without underscores and a direction.
// ok is false when the key carries an unknown direction suffix.
func splitSortKey(key string) (field string, desc bool, ok bool) {
	k := strings.ToUpper(strings.TrimSpace(key))
	switch {
	case strings.HasSuffix(k, "_DESC"):
		k, desc = strings.TrimSuffix(k, "_DESC"), true
	case strings.HasSuffix(k, "_ASC"):
		k = strings.TrimSuffix(k, "_ASC")
	case strings.HasSuffix(k, "_NEWEST"):
		k, desc = strings.TrimSuffix(k, "_NEWEST"), true
	case strings.HasSuffix(k, "_OLDEST"):
		k = strings.TrimSuffix(k, "_OLDEST")
	}
	k = strings.ReplaceAll(k, "_", "")
	return k, desc, k != ""
}

func direction(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}

type ProductSortField string

const (
	ProductSortSKU        ProductSortField = "SKU"
	ProductSortName       ProductSortField = "NAME"
	ProductSortPrice      ProductSortField = "PRICE"
	ProductSortQty        ProductSortField = "QTY"
	ProductSortCategory   ProductSortField = "CATEGORY"
	ProductSortDate       ProductSortField = "DATE"
	ProductSortTotalPrice ProductSortField = "TOTALPRICE"
)

var productSortFields = map[string]ProductSortField{
	"SKU":        ProductSortSKU,
	"NAME":       ProductSortName,
	"PRICE":      ProductSortPrice,
	"QTY":        ProductSortQty,
	"CATEGORY":   ProductSortCategory,
	"DATE":       ProductSortDate,
	"ADDEDON":    ProductSortDate,
	"TOTALPRICE": ProductSortTotalPrice,
}

// ProductSort is one allow-listed ordering of the catalog.
type ProductSort struct {
	Field ProductSortField
	Desc  bool
}

var DefaultProductSort = ProductSort{Field: ProductSortSKU}

// ParseProductSort never fails: unknown keys give DefaultProductSort.
func ParseProductSort(key string) ProductSort {
	token, desc, ok := splitSortKey(key)
	if !ok {
		return DefaultProductSort
	}
	field, known := productSortFields[token]
	if !known {
		return DefaultProductSort
	}
	return ProductSort{Field: field, Desc: desc}
}

func (s ProductSort) String() string {
	return string(s.Field) + "_" + direction(s.Desc)
}

// Compare orders a and b by the sort field, breaking ties by SKU ascending.
func (s ProductSort) Compare(a, b Product) int {
	var c int
	switch s.Field {
	case ProductSortSKU:
		c = compareSKU(a.SKU, b.SKU)
	case ProductSortName:
		c = cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case ProductSortPrice:
		c = a.Price.Cmp(b.Price)
	case ProductSortQty:
		c = cmp.Compare(a.Qty, b.Qty)
	case ProductSortCategory:
		c = cmp.Compare(a.Category, b.Category)
	case ProductSortDate:
		c = a.AddedOn.Compare(b.AddedOn.Time)
	case ProductSortTotalPrice:
		c = a.TotalPrice().Cmp(b.TotalPrice())
	}
	if s.Desc {
		c = -c
	}
	if c != 0 {
		return c
	}
	return compareSKU(a.SKU, b.SKU)
}

func compareSKU(a, b string) int {
	if c := cmp.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}

// SortProducts sorts in place.
func SortProducts(products []Product, s ProductSort) {
	slices.SortStableFunc(products, s.Compare)
}

type OutflowSortField string

const (
	OutflowSortDate       OutflowSortField = "DATE"
	OutflowSortUser       OutflowSortField = "USER"
	OutflowSortSKU        OutflowSortField = "SKU"
	OutflowSortName       OutflowSortField = "NAME"
	OutflowSortUnit       OutflowSortField = "UNIT"
	OutflowSortCategory   OutflowSortField = "CATEGORY"
	OutflowSortQty        OutflowSortField = "QTY"
	OutflowSortPrice      OutflowSortField = "PRICE"
	OutflowSortTotalPrice OutflowSortField = "TOTALPRICE"
)

var outflowSortColumns = map[OutflowSortField]string{
	OutflowSortDate:       "date_time",
	OutflowSortUser:       "user",
	OutflowSortSKU:        "sku",
	OutflowSortName:       "product_name",
	OutflowSortUnit:       "unit",
	OutflowSortCategory:   "category",
	OutflowSortQty:        "qty",
	OutflowSortPrice:      "price",
	OutflowSortTotalPrice: "total_price",
}

var outflowSortAliases = map[string]OutflowSortField{
	"DATE":       OutflowSortDate,
	"DATETIME":   OutflowSortDate,
	"USER":       OutflowSortUser,
	"SKU":        OutflowSortSKU,
	"NAME":       OutflowSortName,
	"PRODUCT":    OutflowSortName,
	"UNIT":       OutflowSortUnit,
	"CATEGORY":   OutflowSortCategory,
	"QTY":        OutflowSortQty,
	"PRICE":      OutflowSortPrice,
	"TOTALPRICE": OutflowSortTotalPrice,
}

// OutflowSort is one allow-listed ordering of the ledger.
type OutflowSort struct {
	Field OutflowSortField
	Desc  bool
}

var DefaultOutflowSort = OutflowSort{Field: OutflowSortDate, Desc: true}

// ParseOutflowSort never fails: unknown keys give DefaultOutflowSort.
func ParseOutflowSort(key string) OutflowSort {
	token, desc, ok := splitSortKey(key)
	if !ok {
		return DefaultOutflowSort
	}
	field, known := outflowSortAliases[token]
	if !known {
		return DefaultOutflowSort
	}
	return OutflowSort{Field: field, Desc: desc}
}

func (s OutflowSort) String() string {
	return string(s.Field) + "_" + direction(s.Desc)
}

// Column is the fixed column name backing the sort field.
func (s OutflowSort) Column() string {
	if col, ok := outflowSortColumns[s.Field]; ok {
		return col
	}
	return outflowSortColumns[OutflowSortDate]
}
