package handler

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"embassy-inventory/internal/export"
	"embassy-inventory/internal/service"

	"github.com/spf13/cobra"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetSummary prints catalog totals, or JSON with --json.
func (h *DashboardHandler) GetSummary() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show item count, quantity, valuation and low stock",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			sum, err := h.service.Summary(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(sum)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Items\t%d\n", sum.Items)
			fmt.Fprintf(tw, "Total Qty\t%d\n", sum.TotalQty)
			fmt.Fprintf(tw, "Total Value\t%s\n", export.FormatMoney(sum.TotalValuation))
			fmt.Fprintf(tw, "Low Stock (< %d)\t%d\n", sum.LowStockThreshold, sum.LowStockCount)
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
