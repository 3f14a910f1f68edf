package main

import (
	"embassy-inventory/internal/export"
	"embassy-inventory/internal/handler"
	"embassy-inventory/internal/metrics"
	"embassy-inventory/internal/middleware"
	"embassy-inventory/internal/service"

	"github.com/spf13/cobra"
)

type routeDeps struct {
	inventory service.InventoryService
	outflow   service.OutflowService
	dashboard service.DashboardService
	auth      service.AuthService
	username  string
	exporter  *export.Exporter
	metrics   *metrics.Metrics
}

func newRootCommand(d routeDeps) *cobra.Command {
	invHandler := handler.NewInventoryHandler(d.inventory)
	outHandler := handler.NewOutflowHandler(d.outflow)
	dashHandler := handler.NewDashboardHandler(d.dashboard)
	authHandler := handler.NewAuthHandler(d.auth, d.username)
	exportHandler := handler.NewExportHandler(d.inventory, d.outflow, d.exporter, d.metrics)

	root := handler.NewRoot()
	requireSession := middleware.RequireSession(d.auth)

	// ============ PUBLIC COMMANDS ============
	root.AddCommand(
		authHandler.Login(),
		authHandler.Logout(),
		authHandler.Whoami(),
		dashHandler.GetSummary(),
	)

	product := handler.Group(root, "product", "Manage the product catalog")
	product.AddCommand(invHandler.GetProduct(), invHandler.GetProducts())

	outflow := handler.Group(root, "outflow", "Read or repair the outflow ledger")
	outflow.AddCommand(outHandler.GetOutflow())

	// ============ SESSION COMMANDS ============
	product.AddCommand(
		handler.Use(invHandler.CreateProduct(), requireSession),
		handler.Use(invHandler.UpdateProduct(), requireSession),
		handler.Use(invHandler.DeleteProduct(), requireSession),
	)
	outflow.AddCommand(handler.Use(outHandler.Backfill(), requireSession))

	stock := handler.Group(root, "stock", "Receive or issue stock", requireSession)
	stock.AddCommand(invHandler.Receive(), invHandler.Issue())

	exports := handler.Group(root, "export", "Write the catalog or ledger to a file", requireSession)
	exports.AddCommand(exportHandler.ExportInventory(), exportHandler.ExportOutflow())

	return root
}
