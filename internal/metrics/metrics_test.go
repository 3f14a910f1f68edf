package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"embassy-inventory/internal/apperr"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	require.Equal(t, "validation", Kind(apperr.Validation("bad")))
	require.Equal(t, "not_found", Kind(apperr.NotFound("A1")))
	require.Equal(t, "insufficient_stock", Kind(apperr.InsufficientStock("A1", 1, 2)))
	require.Equal(t, "storage", Kind(apperr.Storage("op", errors.New("disk"))))
	require.Equal(t, "other", Kind(errors.New("boom")))
}

func TestObserveAndWrite(t *testing.T) {
	m := New()
	m.UnitsIssued.Add(3)
	m.ObserveError(apperr.NotFound("A1"))
	m.ObserveError(nil)

	require.InDelta(t, 3, testutil.ToFloat64(m.UnitsIssued), 0)
	require.InDelta(t, 1, testutil.ToFloat64(m.Errors.WithLabelValues("not_found")), 0)

	path := filepath.Join(t.TempDir(), "inventory.prom")
	require.NoError(t, m.WriteTextfile(path))
	body, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(body), "embassy_inventory_units_issued_total 3")
	require.Contains(t, string(body), `embassy_inventory_errors_total{kind="not_found"} 1`)

	require.NoError(t, m.WriteTextfile(""))
}
