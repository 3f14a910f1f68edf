package handler

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"embassy-inventory/internal/apperr"
	"embassy-inventory/internal/export"
	"embassy-inventory/internal/model"
	"embassy-inventory/internal/service"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// parsePrice returns nil for blank input so validation reports it as required.
func parsePrice(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, apperr.Validation("price %q is not a number", s)
	}
	return &d, nil
}

// skuArg takes the SKU from --sku or the first positional argument.
func skuArg(flagValue string, positional []string) (string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue, nil
	}
	if len(positional) > 0 {
		return positional[0], nil
	}
	return "", usageErrorf("a SKU is required")
}

func (h *InventoryHandler) CreateProduct() *cobra.Command {
	var (
		sku, name, price, unit, category string
		qty                              int
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product to the catalog",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := parsePrice(price)
			if err != nil {
				return err
			}
			product, err := h.service.CreateProduct(cmd.Context(), service.CreateProductRequest{
				SKU:      sku,
				Name:     name,
				Price:    p,
				Qty:      qty,
				Unit:     model.ParseUnit(unit),
				Category: model.ParseCategory(category),
			})
			if err != nil {
				return err
			}

			printf(cmd, "Created %s (%s): %d %s at %s\n",
				product.SKU, product.Name, product.Qty, product.Unit, export.FormatMoney(product.Price))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&sku, "sku", "", "product SKU")
	f.StringVar(&name, "name", "", "product name")
	f.StringVar(&price, "price", "", "unit price")
	f.IntVar(&qty, "qty", 0, "opening quantity")
	f.StringVar(&unit, "unit", string(model.UnitEach), "unit: "+joinUnits())
	f.StringVar(&category, "category", string(model.CategoryOther), "category: "+joinCategories())
	return cmd
}

// UpdateProduct keeps the current value of any field not given on the command line.
func (h *InventoryHandler) UpdateProduct() *cobra.Command {
	var skuFlag, name, price, unit, category string
	cmd := &cobra.Command{
		Use:   "update [SKU]",
		Short: "Change a product's name, price, unit or category",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sku, err := skuArg(skuFlag, args)
			if err != nil {
				return err
			}

			current, err := h.service.FindProduct(cmd.Context(), sku)
			if err != nil {
				return err
			}
			if current == nil {
				return apperr.NotFound(strings.TrimSpace(sku))
			}

			req := service.UpdateProductRequest{
				SKU:      current.SKU,
				Name:     current.Name,
				Price:    &current.Price,
				Unit:     current.Unit,
				Category: current.Category,
			}
			f := cmd.Flags()
			if f.Changed("name") {
				req.Name = name
			}
			if f.Changed("price") {
				if req.Price, err = parsePrice(price); err != nil {
					return err
				}
			}
			if f.Changed("unit") {
				req.Unit = model.ParseUnit(unit)
			}
			if f.Changed("category") {
				req.Category = model.ParseCategory(category)
			}

			product, err := h.service.UpdateProduct(cmd.Context(), req)
			if err != nil {
				return err
			}
			printf(cmd, "Updated %s (%s): %s per %s, %s\n",
				product.SKU, product.Name, export.FormatMoney(product.Price), product.Unit, product.Category)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&skuFlag, "sku", "", "product SKU")
	f.StringVar(&name, "name", "", "new name")
	f.StringVar(&price, "price", "", "new unit price")
	f.StringVar(&unit, "unit", "", "new unit")
	f.StringVar(&category, "category", "", "new category")
	return cmd
}

func (h *InventoryHandler) DeleteProduct() *cobra.Command {
	var skuFlag string
	cmd := &cobra.Command{
		Use:   "delete [SKU]",
		Short: "Remove a product from the catalog",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sku, err := skuArg(skuFlag, args)
			if err != nil {
				return err
			}

			removed, err := h.service.DeleteProduct(cmd.Context(), sku)
			if err != nil {
				return err
			}
			if !removed {
				printf(cmd, "No product with SKU %s\n", strings.TrimSpace(sku))
				return nil
			}
			printf(cmd, "Deleted %s\n", strings.TrimSpace(sku))
			return nil
		},
	}
	cmd.Flags().StringVar(&skuFlag, "sku", "", "product SKU")
	return cmd
}

func (h *InventoryHandler) GetProduct() *cobra.Command {
	var skuFlag string
	cmd := &cobra.Command{
		Use:   "show [SKU]",
		Short: "Show one product",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sku, err := skuArg(skuFlag, args)
			if err != nil {
				return err
			}

			product, err := h.service.FindProduct(cmd.Context(), sku)
			if err != nil {
				return err
			}
			if product == nil {
				return apperr.NotFound(strings.TrimSpace(sku))
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "SKU\t%s\n", product.SKU)
			fmt.Fprintf(tw, "Name\t%s\n", product.Name)
			fmt.Fprintf(tw, "Qty\t%d\n", product.Qty)
			fmt.Fprintf(tw, "Unit\t%s\n", product.Unit)
			fmt.Fprintf(tw, "Price\t%s\n", export.FormatMoney(product.Price))
			fmt.Fprintf(tw, "Total Price\t%s\n", export.FormatMoney(product.TotalPrice()))
			fmt.Fprintf(tw, "Category\t%s\n", product.Category)
			fmt.Fprintf(tw, "Added On\t%s\n", product.AddedOn.Display())
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&skuFlag, "sku", "", "product SKU")
	return cmd
}

func (h *InventoryHandler) GetProducts() *cobra.Command {
	var sortKey, filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the catalog",
		Args:  maxArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			products, err := h.service.ListProducts(cmd.Context(), sortKey)
			if err != nil {
				return err
			}
			return writeProducts(cmd, service.FilterProducts(products, filter))
		},
	}
	cmd.Flags().StringVar(&sortKey, "sort", model.DefaultProductSort.String(), "sort key, e.g. PRICE_DESC")
	cmd.Flags().StringVar(&filter, "filter", "", "only SKUs or names containing this text")
	return cmd
}

func writeProducts(cmd *cobra.Command, products []model.Product) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "SKU\tName\tQty\tUnit\tPrice\tTotal Price\tCategory\tAdded On\t")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\t\n",
			p.SKU, p.Name, p.Qty, p.Unit,
			export.FormatMoney(p.Price), export.FormatMoney(p.TotalPrice()),
			p.Category, p.AddedOn.Display())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	printf(cmd, "%d product(s)\n", len(products))
	return nil
}

func (h *InventoryHandler) Receive() *cobra.Command {
	var (
		skuFlag string
		qty     int
	)
	cmd := &cobra.Command{
		Use:   "receive [SKU]",
		Short: "Add units to stock",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sku, err := skuArg(skuFlag, args)
			if err != nil {
				return err
			}

			product, err := h.service.Receive(cmd.Context(), sku, qty)
			if err != nil {
				return err
			}
			printf(cmd, "Received %d %s of %s, now %d on hand\n", qty, product.Unit, product.SKU, product.Qty)
			return nil
		},
	}
	cmd.Flags().StringVar(&skuFlag, "sku", "", "product SKU")
	cmd.Flags().IntVar(&qty, "qty", 0, "units to add")
	return cmd
}

// Issue takes stock out and records the outflow under the session user.
func (h *InventoryHandler) Issue() *cobra.Command {
	var (
		skuFlag string
		qty     int
	)
	cmd := &cobra.Command{
		Use:   "issue [SKU]",
		Short: "Take units out of stock and record the outflow",
		Args:  maxArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sku, err := skuArg(skuFlag, args)
			if err != nil {
				return err
			}

			product, entry, err := h.service.IssueAndLog(cmd.Context(), sku, qty, User(cmd.Context()))
			if err != nil {
				return err
			}
			printf(cmd, "Issued %d %s of %s (%s) to %s, now %d on hand\n",
				entry.Qty, product.Unit, product.SKU, export.FormatMoney(entry.ResolvedTotal()), entry.User, product.Qty)
			return nil
		},
	}
	cmd.Flags().StringVar(&skuFlag, "sku", "", "product SKU")
	cmd.Flags().IntVar(&qty, "qty", 0, "units to issue")
	return cmd
}

func joinUnits() string {
	parts := make([]string, len(model.Units))
	for i, u := range model.Units {
		parts[i] = string(u)
	}
	return strings.Join(parts, ", ")
}

func joinCategories() string {
	parts := make([]string, len(model.Categories))
	for i, cat := range model.Categories {
		parts[i] = string(cat)
	}
	return strings.Join(parts, ", ")
}
