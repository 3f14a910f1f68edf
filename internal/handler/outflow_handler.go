package handler

import (
	"fmt"
	"text/tabwriter"

	"embassy-inventory/internal/export"
	"embassy-inventory/internal/model"
	"embassy-inventory/internal/service"

	"github.com/spf13/cobra"
)

type OutflowHandler struct {
	service service.OutflowService
}

func NewOutflowHandler(s service.OutflowService) *OutflowHandler {
	return &OutflowHandler{service: s}
}

func (h *OutflowHandler) GetOutflow() *cobra.Command {
	var sortKey string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded stock issues",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := h.service.ListSorted(cmd.Context(), sortKey)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "Date\tUser\tSKU\tProduct\tCategory\tUnit\tQty\tPrice\tTotal Price\t")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\t\n",
					e.DateTime.Display(), e.User, e.SKU, e.ProductName, e.Category, e.Unit, e.Qty,
					export.FormatMoney(e.ResolvedPrice()), export.FormatMoney(e.ResolvedTotal()))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			printf(cmd, "%d entr%s\n", len(entries), plural(len(entries), "y", "ies"))
			return nil
		},
	}
	cmd.Flags().StringVar(&sortKey, "sort", model.DefaultOutflowSort.String(), "sort key, e.g. USER_ASC")
	return cmd
}

func (h *OutflowHandler) Backfill() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Fill category and prices on legacy outflow rows",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := h.service.Backfill(cmd.Context())
			if err != nil {
				return err
			}
			printf(cmd, "Backfilled %d category, %d price and %d total price value(s)\n",
				report.Category, report.Price, report.TotalPrice)
			return nil
		},
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
