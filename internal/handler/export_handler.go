package handler

import (
	"embassy-inventory/internal/export"
	"embassy-inventory/internal/metrics"
	"embassy-inventory/internal/model"
	"embassy-inventory/internal/service"

	"github.com/spf13/cobra"
)

type ExportHandler struct {
	inventory service.InventoryService
	outflow   service.OutflowService
	exporter  *export.Exporter
	metrics   *metrics.Metrics
}

func NewExportHandler(inv service.InventoryService, out service.OutflowService, exporter *export.Exporter, m *metrics.Metrics) *ExportHandler {
	return &ExportHandler{inventory: inv, outflow: out, exporter: exporter, metrics: m}
}

func (h *ExportHandler) ExportInventory() *cobra.Command {
	var sortKey, filter, format string
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Write the catalog to a CSV or XLSX file",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return usageError{err: err}
			}

			products, err := h.inventory.ListProducts(cmd.Context(), sortKey)
			if err != nil {
				return err
			}
			products = service.FilterProducts(products, filter)

			path, err := h.exporter.Inventory(products, model.ParseProductSort(sortKey).String(), f)
			if err != nil {
				return err
			}
			h.metrics.Exports.WithLabelValues("inventory", string(f)).Inc()
			printf(cmd, "Exported %d product(s) to %s\n", len(products), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&sortKey, "sort", model.DefaultProductSort.String(), "sort key")
	cmd.Flags().StringVar(&filter, "filter", "", "only SKUs or names containing this text")
	cmd.Flags().StringVar(&format, "format", string(export.FormatCSV), "csv or xlsx")
	return cmd
}

// ExportOutflow names the file after the sort only when --sort was given.
func (h *ExportHandler) ExportOutflow() *cobra.Command {
	var sortKey, format string
	cmd := &cobra.Command{
		Use:   "outflow",
		Short: "Write the outflow ledger to a CSV or XLSX file",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return usageError{err: err}
			}

			entries, err := h.outflow.ListSorted(cmd.Context(), sortKey)
			if err != nil {
				return err
			}

			tag := ""
			if cmd.Flags().Changed("sort") {
				tag = model.ParseOutflowSort(sortKey).String()
			}
			path, err := h.exporter.Outflow(entries, tag, f)
			if err != nil {
				return err
			}
			h.metrics.Exports.WithLabelValues("outflow", string(f)).Inc()
			printf(cmd, "Exported %d outflow entr%s to %s\n", len(entries), plural(len(entries), "y", "ies"), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&sortKey, "sort", model.DefaultOutflowSort.String(), "sort key")
	cmd.Flags().StringVar(&format, "format", string(export.FormatCSV), "csv or xlsx")
	return cmd
}
