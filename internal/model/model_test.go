package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestProductTotalPrice(t *testing.T) {
	p := Product{Price: decimal.RequireFromString("10.00"), Qty: 10}
	require.Equal(t, "100.00", p.TotalPrice().StringFixed(2))

	p = Product{Price: decimal.RequireFromString("0.335"), Qty: 3}
	require.Equal(t, "1.01", p.TotalPrice().StringFixed(2))
}

func TestRoundMoneyHalfUp(t *testing.T) {
	require.Equal(t, "10.00", RoundMoney(decimal.RequireFromString("9.999")).StringFixed(2))
	require.Equal(t, "2.13", RoundMoney(decimal.RequireFromString("2.125")).StringFixed(2))
	require.Equal(t, "2.12", RoundMoney(decimal.RequireFromString("2.1249")).StringFixed(2))
}

func TestUnitAndCategory(t *testing.T) {
	require.True(t, ParseUnit(" each ").IsValid())
	require.False(t, ParseUnit("DOZEN").IsValid())
	require.False(t, Unit("").IsValid())

	require.True(t, ParseCategory("it_equipment").IsValid())
	require.False(t, Category("").IsValid())
}

func TestOutflowResolvedPrice(t *testing.T) {
	tests := []struct {
		name      string
		entry     OutflowEntry
		wantPrice string
		wantTotal string
	}{
		{
			name:      "explicit price and total",
			entry:     OutflowEntry{Qty: 3, Price: decimal.NewNullDecimal(decimal.RequireFromString("10")), TotalPrice: decimal.NewNullDecimal(decimal.RequireFromString("30"))},
			wantPrice: "10.00",
			wantTotal: "30.00",
		},
		{
			name:      "price derived from total",
			entry:     OutflowEntry{Qty: 4, TotalPrice: decimal.NewNullDecimal(decimal.RequireFromString("10"))},
			wantPrice: "2.50",
			wantTotal: "10.00",
		},
		{
			name:      "total derived from price",
			entry:     OutflowEntry{Qty: 4, Price: decimal.NewNullDecimal(decimal.RequireFromString("1.25")), TotalPrice: decimal.NewNullDecimal(decimal.Zero)},
			wantPrice: "1.25",
			wantTotal: "5.00",
		},
		{
			name:      "nothing known",
			entry:     OutflowEntry{Qty: 4},
			wantPrice: "0.00",
			wantTotal: "0.00",
		},
		{
			name:      "zero qty cannot derive price",
			entry:     OutflowEntry{Qty: 0, TotalPrice: decimal.NewNullDecimal(decimal.RequireFromString("9"))},
			wantPrice: "0.00",
			wantTotal: "9.00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.wantPrice, tt.entry.ResolvedPrice().StringFixed(2))
			require.Equal(t, tt.wantTotal, tt.entry.ResolvedTotal().StringFixed(2))
		})
	}
}

func TestNewOutflowEntrySnapshot(t *testing.T) {
	at := NewTimestamp(time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local))
	p := Product{SKU: "A1", Name: "Widget", Price: decimal.RequireFromString("10.00"), Qty: 7, Unit: UnitEach, Category: CategoryOther}

	e := NewOutflowEntry(at, "finance", p, 3)

	require.Equal(t, "A1", e.SKU)
	require.Equal(t, "Widget", e.ProductName)
	require.Equal(t, "EACH", e.Unit)
	require.Equal(t, "OTHER", e.Category)
	require.Equal(t, 3, e.Qty)
	require.Equal(t, "10.00", e.Price.Decimal.StringFixed(2))
	require.Equal(t, "30.00", e.TotalPrice.Decimal.StringFixed(2))
	require.Equal(t, "2025-01-02T03:04:05", e.DateTime.ISO())
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-01-02T03:04:05", "2025-01-02T03:04:05"},
		{"2025-01-02 03:04:05", "2025-01-02T03:04:05"},
		{"2025-01-02T03:04:05.123456", "2025-01-02T03:04:05"},
		{"2025-01-02T03:04", "2025-01-02T03:04:00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ts, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, ts.Format(isoLayout))
		})
	}

	_, err := ParseTimestamp("yesterday")
	require.Error(t, err)
}

func TestTimestampScanValue(t *testing.T) {
	var ts Timestamp
	require.NoError(t, ts.Scan([]byte("2024-12-31 23:59:00")))
	require.Equal(t, "2024-12-31 23:59", ts.Display())

	v, err := ts.Value()
	require.NoError(t, err)
	require.Equal(t, "2024-12-31T23:59:00", v)

	require.NoError(t, ts.Scan(nil))
	require.True(t, ts.IsZero())
	require.Equal(t, "", ts.Display())

	require.Error(t, ts.Scan(42))
}
