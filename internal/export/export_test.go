package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"embassy-inventory/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var exportTime = time.Date(2024, 3, 1, 14, 5, 9, 0, time.Local)

func newTestExporter(t *testing.T) *Exporter {
	t.Helper()
	e := New(filepath.Join(t.TempDir(), "exports"))
	e.now = func() time.Time { return exportTime }
	return e
}

func sampleProducts() []model.Product {
	return []model.Product{
		{
			SKU: "A1", Name: `Acme, Inc."X"`, Price: decimal.RequireFromString("1234.5"), Qty: 2,
			Unit: model.UnitEach, Category: model.CategoryOther,
			AddedOn: model.NewTimestamp(time.Date(2024, 2, 29, 8, 7, 6, 0, time.Local)),
		},
	}
}

func TestFormatMoney(t *testing.T) {
	tests := map[string]string{
		"0":          "0.00",
		"9.999":      "10.00",
		"999.994":    "999.99",
		"1234.5":     "1,234.50",
		"1000000":    "1,000,000.00",
		"-1234567.8": "-1,234,567.80",
		"100":        "100.00",
	}
	for in, want := range tests {
		require.Equal(t, want, FormatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestSanitizeTag(t *testing.T) {
	require.Equal(t, "PRICE_DESC", SanitizeTag("PRICE_DESC"))
	require.Equal(t, "a_b_c-1", SanitizeTag(" a/b c-1 "))
	require.Equal(t, "", SanitizeTag("  "))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatCSV, f)

	f, err = ParseFormat("XLSX")
	require.NoError(t, err)
	require.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pdf")
	require.Error(t, err)
}

func TestInventoryCSV(t *testing.T) {
	e := newTestExporter(t)
	path, err := e.Inventory(sampleProducts(), "", FormatCSV)
	require.NoError(t, err)
	require.Equal(t, "inventory_SKU_ASC_20240301_140509.csv", filepath.Base(path))

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(body), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "SKU,Name,Qty,Price,Total Price,Unit,Category,AddedOn", lines[0])
	require.Equal(t, `A1,"Acme, Inc.""X""",2,"1,234.50","2,469.00",EACH,OTHER,2024-02-29 08:07`, lines[1])

	entries, err := os.ReadDir(e.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp file left behind")
}

func TestOutflowCSVNaming(t *testing.T) {
	e := newTestExporter(t)
	legacy := model.OutflowEntry{
		DateTime: model.NewTimestamp(time.Date(2024, 1, 5, 16, 45, 0, 0, time.Local)),
		User:     "finance", SKU: "B2", ProductName: "Bolt", Unit: "BOX", Qty: 4,
		TotalPrice: decimal.NewNullDecimal(decimal.RequireFromString("10")),
	}

	path, err := e.Outflow([]model.OutflowEntry{legacy}, "", FormatCSV)
	require.NoError(t, err)
	require.Equal(t, "outflow_20240301_140509.csv", filepath.Base(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Equal(t, OutflowHeader, records[0])
	require.Equal(t, []string{"2024-01-05 16:45", "finance", "B2", "Bolt", "", "BOX", "4", "2.50", "10.00"}, records[1])

	path, err = e.Outflow(nil, "user asc", FormatCSV)
	require.NoError(t, err)
	require.Equal(t, "outflow_user_asc_20240301_140509.csv", filepath.Base(path))
}

func TestInventoryXLSX(t *testing.T) {
	e := newTestExporter(t)
	path, err := e.Inventory(sampleProducts(), "PRICE_DESC", FormatXLSX)
	require.NoError(t, err)
	require.Equal(t, "inventory_PRICE_DESC_20240301_140509.xlsx", filepath.Base(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, InventoryHeader, rows[0])
	require.Equal(t, `Acme, Inc."X"`, rows[1][1])
	require.Equal(t, "2", rows[1][2])
	require.Equal(t, "1234.5", rows[1][3])

	entries, err := os.ReadDir(e.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestWriteFailureRemovesTemp(t *testing.T) {
	e := newTestExporter(t)
	_, err := e.Inventory(sampleProducts(), "", Format("pdf"))
	require.Error(t, err)

	entries, err := os.ReadDir(e.Dir())
	require.NoError(t, err)
	require.Empty(t, entries)
}
