// Package export writes catalog and ledger snapshots to CSV or XLSX files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"embassy-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv or xlsx)", s)
	}
}

const (
	dateLayout      = "2006-01-02 15:04"
	timestampLayout = "20060102_150405"
)

var (
	InventoryHeader = []string{"SKU", "Name", "Qty", "Price", "Total Price", "Unit", "Category", "AddedOn"}
	OutflowHeader   = []string{"DateTime", "User", "SKU", "Product", "Category", "Unit", "Qty", "Price", "Total Price"}
)

// cell carries the CSV text and the typed value used for spreadsheets.
type cell struct {
	text  string
	value interface{}
}

func textCell(s string) cell {
	return cell{text: s, value: s}
}

func intCell(n int) cell {
	return cell{text: fmt.Sprint(n), value: n}
}

func moneyCell(d decimal.Decimal) cell {
	return cell{text: FormatMoney(d), value: model.RoundMoney(d).InexactFloat64()}
}

type Exporter struct {
	dir string
	now func() time.Time
}

func New(dir string) *Exporter {
	return &Exporter{dir: dir, now: time.Now}
}

func (e *Exporter) Dir() string {
	return e.dir
}

// Inventory writes products to inventory_<sortTag>_<timestamp>.<ext> and
// returns the path. A blank sortTag becomes the default catalog order name.
func (e *Exporter) Inventory(products []model.Product, sortTag string, format Format) (string, error) {
	tag := SanitizeTag(sortTag)
	if tag == "" {
		tag = model.DefaultProductSort.String()
	}
	rows := make([][]cell, 0, len(products))
	for _, p := range products {
		rows = append(rows, []cell{
			textCell(p.SKU),
			textCell(p.Name),
			intCell(p.Qty),
			moneyCell(p.Price),
			moneyCell(p.TotalPrice()),
			textCell(string(p.Unit)),
			textCell(string(p.Category)),
			textCell(formatTimestamp(p.AddedOn)),
		})
	}
	name := fmt.Sprintf("inventory_%s_%s.%s", tag, e.now().Format(timestampLayout), format)
	return e.write(name, InventoryHeader, rows, format)
}

// Outflow writes ledger rows to outflow_[<sortTag>_]<timestamp>.<ext>.
func (e *Exporter) Outflow(entries []model.OutflowEntry, sortTag string, format Format) (string, error) {
	prefix := "outflow_"
	if tag := SanitizeTag(sortTag); tag != "" {
		prefix += tag + "_"
	}
	rows := make([][]cell, 0, len(entries))
	for _, o := range entries {
		rows = append(rows, []cell{
			textCell(formatTimestamp(o.DateTime)),
			textCell(o.User),
			textCell(o.SKU),
			textCell(o.ProductName),
			textCell(o.Category),
			textCell(o.Unit),
			intCell(o.Qty),
			moneyCell(o.ResolvedPrice()),
			moneyCell(o.ResolvedTotal()),
		})
	}
	name := fmt.Sprintf("%s%s.%s", prefix, e.now().Format(timestampLayout), format)
	return e.write(name, OutflowHeader, rows, format)
}

// write renders into a uniquely named temp file beside the target, syncs it
// and renames it into place. The temp file never outlives a failure.
func (e *Exporter) write(name string, header []string, rows [][]cell, format Format) (path string, err error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	target := filepath.Join(e.dir, name)

	tmp, err := os.OpenFile(filepath.Join(e.dir, "."+uuid.NewString()+".tmp"), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	switch format {
	case FormatCSV:
		err = writeCSV(tmp, header, rows)
	case FormatXLSX:
		err = writeXLSX(tmp, header, rows)
	default:
		err = fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return "", err
	}
	if err = tmp.Sync(); err != nil {
		return "", fmt.Errorf("sync export: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("close export: %w", err)
	}
	if err = os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("move export into place: %w", err)
	}
	return target, nil
}

func writeCSV(w io.Writer, header []string, rows [][]cell) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(header))
	for _, row := range rows {
		for i, c := range row {
			record[i] = c.text
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(w io.Writer, header []string, rows [][]cell) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for r, row := range rows {
		values := make([]interface{}, len(row))
		for i, c := range row {
			values[i] = c.value
		}
		cellName, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cellName, &values); err != nil {
			return fmt.Errorf("write xlsx row %d: %w", r+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func formatTimestamp(t model.Timestamp) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// FormatMoney renders d at two places with comma thousands separators.
func FormatMoney(d decimal.Decimal) string {
	s := model.RoundMoney(d).StringFixed(model.MoneyPlaces)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// SanitizeTag keeps letters, digits, '_' and '-', replacing anything else with '_'.
func SanitizeTag(tag string) string {
	tag = strings.TrimSpace(tag)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, tag)
}
